// Package auth resolves the caller account for each request.
//
// It deliberately resolves identity only: the account id ends up on the
// request context and every authorization decision downstream goes through
// the role registry, never through token claims.
package auth

import "context"

type contextKey string

// AccountIDKey is the request-context key holding the caller account id.
const AccountIDKey contextKey = "account_id"

// WithAccount returns a context carrying the caller account id.
func WithAccount(ctx context.Context, account string) context.Context {
	return context.WithValue(ctx, AccountIDKey, account)
}

// AccountFromContext extracts the caller account id set by the middleware.
func AccountFromContext(ctx context.Context) (string, bool) {
	account, ok := ctx.Value(AccountIDKey).(string)
	return account, ok && account != ""
}
