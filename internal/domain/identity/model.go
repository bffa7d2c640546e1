// Package identity holds the patient registry: the demographic and
// emergency-care profile created when a provider registers a patient. Other
// workflows check this registry before touching patient-scoped state.
package identity

import (
	"github.com/medichain/medichain/internal/platform/clock"
)

// EmergencyContact is one person to notify in an emergency.
type EmergencyContact struct {
	Name         string `json:"name"`
	Phone        string `json:"phone"`
	Relationship string `json:"relationship"`
}

// Patient is a registered patient profile. The ID is generated at
// registration and serves as the patient's account everywhere else.
type Patient struct {
	ID                 string             `json:"id"`
	FullName           string             `json:"full_name"`
	DateOfBirth        string             `json:"date_of_birth"`
	NationalID         string             `json:"national_id"`
	BloodType          string             `json:"blood_type"`
	Allergies          []string           `json:"allergies"`
	CurrentMedications []string           `json:"current_medications"`
	ChronicConditions  []string           `json:"chronic_conditions"`
	EmergencyContacts  []EmergencyContact `json:"emergency_contacts"`
	OrganDonor         bool               `json:"organ_donor"`
	DNRStatus          bool               `json:"dnr_status"`
	CreatedBy          string             `json:"created_by"`
	CreatedAt          clock.Tick         `json:"created_at"`
}

// RegisterRequest is the payload for registering a new patient.
type RegisterRequest struct {
	FullName                     string   `json:"full_name"`
	DateOfBirth                  string   `json:"date_of_birth"`
	NationalID                   string   `json:"national_id"`
	BloodType                    string   `json:"blood_type"`
	Allergies                    []string `json:"allergies"`
	CurrentMedications           []string `json:"current_medications"`
	ChronicConditions            []string `json:"chronic_conditions"`
	EmergencyContactName         string   `json:"emergency_contact_name"`
	EmergencyContactPhone        string   `json:"emergency_contact_phone"`
	EmergencyContactRelationship string   `json:"emergency_contact_relationship"`
	OrganDonor                   bool     `json:"organ_donor"`
	DNRStatus                    bool     `json:"dnr_status"`
}
