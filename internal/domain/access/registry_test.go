package access

import (
	"context"
	"errors"
	"testing"

	"github.com/medichain/medichain/internal/platform/audit"
	"github.com/medichain/medichain/internal/platform/clock"
)

func newTestRegistry() (*RoleRegistry, *audit.MemLog, *clock.ManualSource) {
	log := audit.NewMemLog()
	clk := clock.NewManualSource(1000)
	reg := NewRoleRegistry(log, clk)
	reg.Bootstrap([]string{"ADM-001"})
	return reg, log, clk
}

func TestRegistry_AssignByAdmin(t *testing.T) {
	reg, log, _ := newTestRegistry()
	ctx := context.Background()

	if err := reg.Assign(ctx, "ADM-001", "DOC-002", RoleDoctor); err != nil {
		t.Fatalf("Assign: %v", err)
	}
	role, ok := reg.RoleOf("DOC-002")
	if !ok || role != RoleDoctor {
		t.Errorf("expected doctor role, got %q (ok=%v)", role, ok)
	}
	if log.Len() != 1 {
		t.Errorf("expected 1 audit entry, got %d", log.Len())
	}

	entries, _ := log.QueryByActor(context.Background(), "ADM-001")
	if len(entries) != 1 || entries[0].Action != audit.ActionRoleAssigned {
		t.Errorf("unexpected audit entries: %+v", entries)
	}
}

func TestRegistry_AssignByNonAdminFails(t *testing.T) {
	reg, log, _ := newTestRegistry()
	ctx := context.Background()

	reg.Assign(ctx, "ADM-001", "DOC-002", RoleDoctor)
	before := log.Len()

	if err := reg.Assign(ctx, "DOC-002", "NUR-001", RoleNurse); !errors.Is(err, ErrInsufficientRole) {
		t.Errorf("expected ErrInsufficientRole, got %v", err)
	}
	if err := reg.Assign(ctx, "NOBODY", "NUR-001", RoleNurse); !errors.Is(err, ErrInsufficientRole) {
		t.Errorf("expected ErrInsufficientRole for unknown caller, got %v", err)
	}
	if log.Len() != before {
		t.Error("failed assignments must not produce audit entries")
	}
}

func TestRegistry_AdminNeverAssignable(t *testing.T) {
	reg, _, _ := newTestRegistry()

	if err := reg.Assign(context.Background(), "ADM-001", "DOC-002", RoleAdmin); !errors.Is(err, ErrCannotAssignAdmin) {
		t.Errorf("expected ErrCannotAssignAdmin, got %v", err)
	}
}

func TestRegistry_DoubleAssignFails(t *testing.T) {
	reg, _, _ := newTestRegistry()
	ctx := context.Background()

	if err := reg.Assign(ctx, "ADM-001", "DOC-002", RoleDoctor); err != nil {
		t.Fatalf("first Assign: %v", err)
	}
	if err := reg.Assign(ctx, "ADM-001", "DOC-002", RoleNurse); !errors.Is(err, ErrRoleAlreadyAssigned) {
		t.Errorf("expected ErrRoleAlreadyAssigned, got %v", err)
	}
}

func TestRegistry_Revoke(t *testing.T) {
	reg, log, _ := newTestRegistry()
	ctx := context.Background()

	reg.Assign(ctx, "ADM-001", "DOC-002", RoleDoctor)
	if err := reg.Revoke(ctx, "ADM-001", "DOC-002"); err != nil {
		t.Fatalf("Revoke: %v", err)
	}
	if _, ok := reg.RoleOf("DOC-002"); ok {
		t.Error("role should be gone after revoke")
	}
	if log.Len() != 2 {
		t.Errorf("expected 2 audit entries, got %d", log.Len())
	}

	// Revoked account can receive a new role.
	if err := reg.Assign(ctx, "ADM-001", "DOC-002", RoleNurse); err != nil {
		t.Errorf("reassign after revoke: %v", err)
	}
}

func TestRegistry_RevokeGuards(t *testing.T) {
	reg, _, _ := newTestRegistry()
	ctx := context.Background()

	if err := reg.Revoke(ctx, "ADM-001", "ADM-001"); !errors.Is(err, ErrCannotRevokeOwnRole) {
		t.Errorf("expected ErrCannotRevokeOwnRole, got %v", err)
	}
	if err := reg.Revoke(ctx, "ADM-001", "DOC-002"); !errors.Is(err, ErrNoRoleToRevoke) {
		t.Errorf("expected ErrNoRoleToRevoke, got %v", err)
	}
	reg.Assign(ctx, "ADM-001", "DOC-002", RoleDoctor)
	if err := reg.Revoke(ctx, "DOC-002", "ADM-001"); !errors.Is(err, ErrInsufficientRole) {
		t.Errorf("expected ErrInsufficientRole, got %v", err)
	}
}

func TestRegistry_RoleOfIsIdempotent(t *testing.T) {
	reg, _, _ := newTestRegistry()
	reg.Assign(context.Background(), "ADM-001", "DOC-002", RoleDoctor)

	for i := 0; i < 3; i++ {
		role, ok := reg.RoleOf("DOC-002")
		if !ok || role != RoleDoctor {
			t.Fatalf("lookup %d: got %q (ok=%v)", i, role, ok)
		}
	}
}
