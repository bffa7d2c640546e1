package identity

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/medichain/medichain/internal/domain/access"
	"github.com/medichain/medichain/internal/platform/audit"
	"github.com/medichain/medichain/internal/platform/clock"
)

// ErrInvalidRequest is returned when a registration payload is missing
// required fields.
var ErrInvalidRequest = errors.New("full_name, date_of_birth and national_id are required")

// AccessPolicy resolves caller roles and patient-data visibility. Implemented
// by the access service.
type AccessPolicy interface {
	RoleOf(account string) (access.Role, bool)
	MayViewPatientData(caller, patient string) bool
}

// Service registers and serves patient profiles.
type Service struct {
	repo   Repository
	policy AccessPolicy
	log    audit.Log
	clock  clock.Source
}

// NewService creates a new identity Service.
func NewService(repo Repository, policy AccessPolicy, log audit.Log, clk clock.Source) *Service {
	return &Service{repo: repo, policy: policy, log: log, clock: clk}
}

// newPatientID generates a short patient identifier like PAT-3f1a9b2c.
func newPatientID() string {
	id := uuid.New().String()
	return "PAT-" + strings.SplitN(id, "-", 2)[0]
}

// Register creates a new patient profile. Only providers may register
// patients.
func (s *Service) Register(ctx context.Context, caller string, req RegisterRequest) (*Patient, error) {
	role, ok := s.policy.RoleOf(caller)
	if !ok || !role.Can(access.CapRegisterPatient) {
		return nil, access.ErrInsufficientRole
	}
	if req.FullName == "" || req.DateOfBirth == "" || req.NationalID == "" {
		return nil, ErrInvalidRequest
	}

	p := &Patient{
		ID:                 newPatientID(),
		FullName:           req.FullName,
		DateOfBirth:        req.DateOfBirth,
		NationalID:         req.NationalID,
		BloodType:          req.BloodType,
		Allergies:          req.Allergies,
		CurrentMedications: req.CurrentMedications,
		ChronicConditions:  req.ChronicConditions,
		OrganDonor:         req.OrganDonor,
		DNRStatus:          req.DNRStatus,
		CreatedBy:          caller,
		CreatedAt:          s.clock.Now(),
	}
	if req.EmergencyContactName != "" {
		p.EmergencyContacts = []EmergencyContact{{
			Name:         req.EmergencyContactName,
			Phone:        req.EmergencyContactPhone,
			Relationship: req.EmergencyContactRelationship,
		}}
	}

	if err := s.repo.Insert(ctx, p); err != nil {
		return nil, err
	}
	if err := s.log.Append(ctx, &audit.Entry{
		Actor:     caller,
		ActorRole: string(role),
		Action:    audit.ActionPatientRegistered,
		Patient:   p.ID,
		Timestamp: p.CreatedAt,
	}); err != nil {
		return nil, err
	}
	return p, nil
}

// Get returns the patient profile. Visible to the patient themselves, any
// provider, and holders of a valid access grant.
func (s *Service) Get(ctx context.Context, caller, id string) (*Patient, error) {
	if !s.policy.MayViewPatientData(caller, id) {
		return nil, access.ErrInsufficientRole
	}
	return s.repo.Get(ctx, id)
}

// List returns all registered patients. Provider-only.
func (s *Service) List(ctx context.Context, caller string) ([]Patient, error) {
	role, ok := s.policy.RoleOf(caller)
	if !ok || !role.IsProvider() {
		return nil, access.ErrInsufficientRole
	}
	return s.repo.List(ctx)
}

// Exists reports whether a patient is registered. Used by workflows that must
// not create patient-scoped state for unknown patients.
func (s *Service) Exists(ctx context.Context, id string) (bool, error) {
	return s.repo.Exists(ctx, id)
}

// FullName returns the registered patient's display name. Internal lookup for
// workflows that label patient-scoped records; not exposed over HTTP.
func (s *Service) FullName(ctx context.Context, id string) (string, error) {
	p, err := s.repo.Get(ctx, id)
	if err != nil {
		return "", err
	}
	return p.FullName, nil
}
