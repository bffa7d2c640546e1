package access

import "testing"

func TestRoleCan_PolicyTable(t *testing.T) {
	tests := []struct {
		cap     Capability
		allowed []Role
	}{
		{CapRegisterPatient, []Role{RoleAdmin, RoleDoctor, RoleNurse, RoleLabTechnician, RolePharmacist}},
		{CapEditRecord, []Role{RoleAdmin, RoleDoctor, RoleNurse}},
		{CapReviewLab, []Role{RoleAdmin, RoleDoctor, RoleNurse}},
		{CapSubmitLab, []Role{RoleAdmin, RoleDoctor, RoleNurse, RoleLabTechnician}},
		{CapAssignRole, []Role{RoleAdmin}},
		{CapGrantEmergencyAccess, []Role{RoleAdmin, RoleDoctor, RoleNurse, RoleLabTechnician, RolePharmacist}},
	}

	all := []Role{RoleAdmin, RoleDoctor, RoleNurse, RoleLabTechnician, RolePharmacist, RolePatient}

	for _, tt := range tests {
		allowed := make(map[Role]bool)
		for _, r := range tt.allowed {
			allowed[r] = true
		}
		for _, r := range all {
			if got := r.Can(tt.cap); got != allowed[r] {
				t.Errorf("role %s cap %d: got %v, want %v", r, tt.cap, got, allowed[r])
			}
		}
	}
}

func TestRoleCan_NoRoleHasNoCapabilities(t *testing.T) {
	caps := []Capability{CapRegisterPatient, CapEditRecord, CapReviewLab, CapSubmitLab, CapAssignRole, CapGrantEmergencyAccess}
	for _, cap := range caps {
		if Role("").Can(cap) {
			t.Errorf("empty role should not hold capability %d", cap)
		}
	}
}

func TestParseRole(t *testing.T) {
	if _, err := ParseRole("doctor"); err != nil {
		t.Errorf("expected doctor to parse, got %v", err)
	}
	if _, err := ParseRole("superuser"); err == nil {
		t.Error("expected error for unknown role")
	}
	if _, err := ParseRole(""); err == nil {
		t.Error("expected error for empty role")
	}
}

func TestIsProvider(t *testing.T) {
	if RolePatient.IsProvider() {
		t.Error("patient is not a provider")
	}
	if !RolePharmacist.IsProvider() {
		t.Error("pharmacist is a provider")
	}
	if Role("").IsProvider() {
		t.Error("empty role is not a provider")
	}
}
