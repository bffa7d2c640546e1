package access

// Capability is a named permission derived from a role. Capabilities are
// never stored; every check re-derives them from the caller's current role.
type Capability int

const (
	CapRegisterPatient Capability = iota
	CapEditRecord
	CapReviewLab
	CapSubmitLab
	CapAssignRole
	CapGrantEmergencyAccess
)

// Can reports whether the role holds the capability. The mapping is the
// system's entire authorization policy; every privileged operation consults
// it before mutating state.
func (r Role) Can(cap Capability) bool {
	switch cap {
	case CapRegisterPatient:
		return r.IsProvider()
	case CapEditRecord:
		return r == RoleAdmin || r == RoleDoctor || r == RoleNurse
	case CapReviewLab:
		return r == RoleAdmin || r == RoleDoctor || r == RoleNurse
	case CapSubmitLab:
		return r == RoleAdmin || r == RoleDoctor || r == RoleNurse || r == RoleLabTechnician
	case CapAssignRole:
		return r == RoleAdmin
	case CapGrantEmergencyAccess:
		return r.IsProvider()
	}
	return false
}
