// Package access implements the authority model: who holds which role, what
// each role may do, and the time-bounded emergency access grants that let a
// provider read a patient's data outside the normal consent flow.
package access

import (
	"fmt"

	"github.com/medichain/medichain/internal/platform/clock"
)

// Role is the single authority label held by an account. An account has at
// most one role; absence means no privileges.
type Role string

const (
	RoleAdmin         Role = "admin"
	RoleDoctor        Role = "doctor"
	RoleNurse         Role = "nurse"
	RoleLabTechnician Role = "lab_technician"
	RolePharmacist    Role = "pharmacist"
	RolePatient       Role = "patient"
)

// ParseRole maps an external role name to a Role.
func ParseRole(s string) (Role, error) {
	switch Role(s) {
	case RoleAdmin, RoleDoctor, RoleNurse, RoleLabTechnician, RolePharmacist, RolePatient:
		return Role(s), nil
	}
	return "", fmt.Errorf("unknown role %q", s)
}

// IsProvider reports whether the role belongs to healthcare staff, as opposed
// to a patient or an unprivileged account.
func (r Role) IsProvider() bool {
	switch r {
	case RoleAdmin, RoleDoctor, RoleNurse, RoleLabTechnician, RolePharmacist:
		return true
	}
	return false
}

// AccessType classifies an access grant.
type AccessType string

const (
	AccessEmergency AccessType = "emergency"
	AccessRegular   AccessType = "regular"
	AccessFull      AccessType = "full"
)

// AccessGrant links one accessor to one patient's data for a bounded time
// window. At most one grant exists per (patient, accessor) pair; a stale or
// revoked grant keeps occupying the pair until cleaned up.
type AccessGrant struct {
	Patient    string     `json:"patient"`
	Accessor   string     `json:"accessor"`
	Kind       AccessType `json:"kind"`
	GrantedAt  clock.Tick `json:"granted_at"`
	ExpiresAt  clock.Tick `json:"expires_at"`
	ReasonHash string     `json:"reason_hash"`
	Revoked    bool       `json:"revoked"`
}

// Valid reports whether the grant authorizes access at the given tick. The
// expiry boundary is inclusive: a grant expiring at tick N is still valid at N.
func (g *AccessGrant) Valid(now clock.Tick) bool {
	return !g.Revoked && now <= g.ExpiresAt
}

// Expired reports whether the grant's window has passed.
func (g *AccessGrant) Expired(now clock.Tick) bool {
	return now > g.ExpiresAt
}
