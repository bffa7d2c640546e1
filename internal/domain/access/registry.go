package access

import (
	"context"
	"sync"

	"github.com/medichain/medichain/internal/platform/audit"
	"github.com/medichain/medichain/internal/platform/clock"
)

// RoleRegistry is the single source of truth for account → role. A global
// mutex covers both the mapping and the audit append so entries land in
// commit order.
type RoleRegistry struct {
	mu    sync.RWMutex
	roles map[string]Role
	log   audit.Log
	clock clock.Source
}

// NewRoleRegistry creates an empty registry writing to the given audit log.
func NewRoleRegistry(log audit.Log, clk clock.Source) *RoleRegistry {
	return &RoleRegistry{
		roles: make(map[string]Role),
		log:   log,
		clock: clk,
	}
}

// Bootstrap installs admin roles for the configured genesis accounts. It
// bypasses the admin gate and writes no audit entries: it runs before any
// request is served and admin is otherwise unassignable.
func (r *RoleRegistry) Bootstrap(admins []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range admins {
		if a != "" {
			r.roles[a] = RoleAdmin
		}
	}
}

// Assign gives target a role. Only admins may assign; admin itself is never
// assignable; an account with any existing role must be revoked first.
func (r *RoleRegistry) Assign(ctx context.Context, caller, target string, role Role) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.roles[caller] != RoleAdmin {
		return ErrInsufficientRole
	}
	if role == RoleAdmin {
		return ErrCannotAssignAdmin
	}
	if _, exists := r.roles[target]; exists {
		return ErrRoleAlreadyAssigned
	}

	r.roles[target] = role
	return r.log.Append(ctx, &audit.Entry{
		Actor:     caller,
		ActorRole: string(RoleAdmin),
		Action:    audit.ActionRoleAssigned,
		Patient:   target,
		Timestamp: r.clock.Now(),
	})
}

// Revoke removes target's role. Admins cannot revoke their own role, which
// keeps at least the acting admin in place.
func (r *RoleRegistry) Revoke(ctx context.Context, caller, target string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.roles[caller] != RoleAdmin {
		return ErrInsufficientRole
	}
	if target == caller {
		return ErrCannotRevokeOwnRole
	}
	if _, exists := r.roles[target]; !exists {
		return ErrNoRoleToRevoke
	}

	delete(r.roles, target)
	return r.log.Append(ctx, &audit.Entry{
		Actor:     caller,
		ActorRole: string(RoleAdmin),
		Action:    audit.ActionRoleRevoked,
		Patient:   target,
		Timestamp: r.clock.Now(),
	})
}

// RoleOf looks up the role of an account. The second return is false when the
// account holds no role.
func (r *RoleRegistry) RoleOf(account string) (Role, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	role, ok := r.roles[account]
	return role, ok
}
