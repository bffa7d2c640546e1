package access

import (
	"context"
	"errors"
	"testing"

	"github.com/medichain/medichain/internal/platform/audit"
	"github.com/medichain/medichain/internal/platform/clock"
)

func newTestService() (*Service, *clock.ManualSource, *audit.MemLog) {
	log := audit.NewMemLog()
	clk := clock.NewManualSource(1000)
	reg := NewRoleRegistry(log, clk)
	reg.Bootstrap([]string{"ADM-001"})
	svc := NewService(reg, NewGrantStore(log), clk)

	ctx := context.Background()
	svc.AssignRole(ctx, "ADM-001", "DOC-001", RoleDoctor)
	svc.AssignRole(ctx, "ADM-001", "PAT-001", RolePatient)
	return svc, clk, log
}

func TestService_GrantRequiresProviderRole(t *testing.T) {
	svc, _, _ := newTestService()
	ctx := context.Background()

	if _, err := svc.GrantEmergencyAccess(ctx, "PAT-001", "PAT-002", "abc"); !errors.Is(err, ErrInsufficientRole) {
		t.Errorf("patient grant: expected ErrInsufficientRole, got %v", err)
	}
	if _, err := svc.GrantEmergencyAccess(ctx, "NOBODY", "PAT-001", "abc"); !errors.Is(err, ErrInsufficientRole) {
		t.Errorf("roleless grant: expected ErrInsufficientRole, got %v", err)
	}
	if _, err := svc.GrantEmergencyAccess(ctx, "DOC-001", "PAT-001", "abc"); err != nil {
		t.Errorf("doctor grant: %v", err)
	}
}

func TestService_AccessExpiresWithClock(t *testing.T) {
	svc, clk, _ := newTestService()
	ctx := context.Background()

	if _, err := svc.GrantEmergencyAccess(ctx, "DOC-001", "PAT-001", "abc"); err != nil {
		t.Fatalf("grant: %v", err)
	}
	if !svc.IsValidAccess("PAT-001", "DOC-001") {
		t.Error("access should be valid right after grant")
	}

	clk.Set(1000 + DefaultAccessDuration)
	if !svc.IsValidAccess("PAT-001", "DOC-001") {
		t.Error("access should be valid at the expiry tick")
	}
	clk.Advance(1)
	if svc.IsValidAccess("PAT-001", "DOC-001") {
		t.Error("access should be invalid past expiry")
	}

	// Expired now, so anyone can clean it up.
	if err := svc.CleanupExpiredAccess(ctx, "PAT-002", "PAT-001", "DOC-001"); err != nil {
		t.Errorf("cleanup: %v", err)
	}
}

func TestService_MayViewPatientData(t *testing.T) {
	svc, clk, _ := newTestService()
	ctx := context.Background()

	if !svc.MayViewPatientData("PAT-001", "PAT-001") {
		t.Error("patient may view their own data")
	}
	if !svc.MayViewPatientData("DOC-001", "PAT-001") {
		t.Error("provider may view patient data")
	}
	if svc.MayViewPatientData("PAT-002", "PAT-001") {
		t.Error("unrelated account may not view patient data")
	}

	// A valid grant opens access for a non-provider accessor; here the
	// grant is created on behalf of a provider and then checked after
	// expiry to confirm it closes again.
	svc.GrantEmergencyAccess(ctx, "DOC-001", "PAT-002", "abc")
	if !svc.MayViewPatientData("DOC-001", "PAT-002") {
		t.Error("grant holder may view patient data")
	}
	clk.Advance(DefaultAccessDuration + 1)
	// DOC-001 is still a provider so access stays open through the role
	// path even though the grant expired.
	if !svc.MayViewPatientData("DOC-001", "PAT-002") {
		t.Error("provider role alone should be sufficient")
	}
}

func TestService_HasCapability(t *testing.T) {
	svc, _, _ := newTestService()

	if !svc.HasCapability("ADM-001", CapAssignRole) {
		t.Error("admin should hold CapAssignRole")
	}
	if svc.HasCapability("DOC-001", CapAssignRole) {
		t.Error("doctor should not hold CapAssignRole")
	}
	if svc.HasCapability("NOBODY", CapRegisterPatient) {
		t.Error("roleless account holds no capabilities")
	}
}
