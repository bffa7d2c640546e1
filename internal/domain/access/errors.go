package access

import "errors"

// Errors returned by role management and access grant operations. All are
// validation or authorization failures: the caller can correct and retry, and
// none of them leave partial state behind.
var (
	ErrInsufficientRole     = errors.New("caller role does not permit this operation")
	ErrCannotAssignAdmin    = errors.New("admin role cannot be assigned")
	ErrRoleAlreadyAssigned  = errors.New("account already has a role")
	ErrNoRoleToRevoke       = errors.New("account has no role to revoke")
	ErrCannotRevokeOwnRole  = errors.New("cannot revoke own role")
	ErrAccessAlreadyGranted = errors.New("access already granted for this patient and accessor")
	ErrAccessNotFound       = errors.New("access grant not found")
	ErrAlreadyRevoked       = errors.New("access grant already revoked")
	ErrTooManyAccesses      = errors.New("patient has reached the maximum number of active accesses")
	ErrNotAuthorized        = errors.New("caller is not a party to this access grant")
)
