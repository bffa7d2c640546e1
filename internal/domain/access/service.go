package access

import (
	"context"

	"github.com/medichain/medichain/internal/platform/clock"
)

// Service is the call surface for role management and access grants. Every
// operation resolves the caller's role first, checks the capability policy,
// and only then lets the underlying store perform its transition.
type Service struct {
	registry *RoleRegistry
	grants   *GrantStore
	clock    clock.Source
}

// NewService wires the registry and grant store behind one service.
func NewService(registry *RoleRegistry, grants *GrantStore, clk clock.Source) *Service {
	return &Service{registry: registry, grants: grants, clock: clk}
}

// AssignRole assigns a role to target on behalf of caller.
func (s *Service) AssignRole(ctx context.Context, caller, target string, role Role) error {
	return s.registry.Assign(ctx, caller, target, role)
}

// RevokeRole removes target's role on behalf of caller.
func (s *Service) RevokeRole(ctx context.Context, caller, target string) error {
	return s.registry.Revoke(ctx, caller, target)
}

// RoleOf looks up an account's role.
func (s *Service) RoleOf(account string) (Role, bool) {
	return s.registry.RoleOf(account)
}

// HasCapability reports whether the account's current role holds the
// capability. Accounts without a role hold no capabilities.
func (s *Service) HasCapability(account string, cap Capability) bool {
	role, ok := s.registry.RoleOf(account)
	return ok && role.Can(cap)
}

// GrantEmergencyAccess grants the caller time-bounded access to the patient's
// data. The reason hash is an opaque digest computed by the caller; plaintext
// justifications never reach this layer.
func (s *Service) GrantEmergencyAccess(ctx context.Context, caller, patient, reasonHash string) (*AccessGrant, error) {
	role, ok := s.registry.RoleOf(caller)
	if !ok || !role.Can(CapGrantEmergencyAccess) {
		return nil, ErrInsufficientRole
	}
	return s.grants.Grant(ctx, caller, role, patient, reasonHash, s.clock.Now())
}

// RevokeAccess revokes the grant for (patient, accessor). Only the patient or
// the accessor may revoke.
func (s *Service) RevokeAccess(ctx context.Context, caller, patient, accessor string) error {
	role, _ := s.registry.RoleOf(caller)
	return s.grants.Revoke(ctx, caller, role, patient, accessor, s.clock.Now())
}

// CleanupExpiredAccess removes a revoked or expired grant. Callable by any
// account since it only discards provably dead state.
func (s *Service) CleanupExpiredAccess(ctx context.Context, caller, patient, accessor string) error {
	role, _ := s.registry.RoleOf(caller)
	return s.grants.Cleanup(ctx, caller, role, patient, accessor, s.clock.Now())
}

// IsValidAccess reports whether accessor currently holds valid access to the
// patient's data.
func (s *Service) IsValidAccess(patient, accessor string) bool {
	return s.grants.IsValid(patient, accessor, s.clock.Now())
}

// GrantsFor lists all grants recorded for a patient.
func (s *Service) GrantsFor(patient string) []AccessGrant {
	return s.grants.GrantsFor(patient)
}

// MayViewPatientData reports whether caller may read the patient's data: the
// patient themselves, any provider, or the holder of a valid grant.
func (s *Service) MayViewPatientData(caller, patient string) bool {
	if caller == patient {
		return true
	}
	if role, ok := s.registry.RoleOf(caller); ok && role.IsProvider() {
		return true
	}
	return s.IsValidAccess(patient, caller)
}
