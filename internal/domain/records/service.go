package records

import (
	"context"
	"errors"

	"github.com/medichain/medichain/internal/domain/access"
	"github.com/medichain/medichain/internal/domain/identity"
	"github.com/medichain/medichain/internal/platform/audit"
	"github.com/medichain/medichain/internal/platform/clock"
)

// ErrInvalidReference is returned when an upload acknowledgement is missing
// the storage collaborator's hashes.
var ErrInvalidReference = errors.New("patient_id, content_hash and checksum are required")

// AccessPolicy resolves caller roles and patient-data visibility. Implemented
// by the access service.
type AccessPolicy interface {
	RoleOf(account string) (access.Role, bool)
	MayViewPatientData(caller, patient string) bool
}

// PatientDirectory answers whether a patient is registered. Implemented by
// the identity service.
type PatientDirectory interface {
	Exists(ctx context.Context, id string) (bool, error)
}

// AppendRequest is an upload acknowledgement from the storage collaborator.
type AppendRequest struct {
	PatientID    string `json:"patient_id"`
	ContentHash  string `json:"content_hash"`
	MetadataHash string `json:"metadata_hash"`
	RecordType   string `json:"record_type"`
	Checksum     string `json:"checksum"`
}

// Service guards the record reference store behind the capability policy.
type Service struct {
	store    Store
	policy   AccessPolicy
	patients PatientDirectory
	log      audit.Log
	clock    clock.Source
}

// NewService creates a new records Service.
func NewService(store Store, policy AccessPolicy, patients PatientDirectory, log audit.Log, clk clock.Source) *Service {
	return &Service{store: store, policy: policy, patients: patients, log: log, clock: clk}
}

// Append records an upload acknowledgement as a new reference for the
// patient. Requires record-editing capability and a registered patient.
func (s *Service) Append(ctx context.Context, caller string, req AppendRequest) (*Reference, error) {
	role, ok := s.policy.RoleOf(caller)
	if !ok || !role.Can(access.CapEditRecord) {
		return nil, access.ErrInsufficientRole
	}
	if req.PatientID == "" || req.ContentHash == "" || req.Checksum == "" {
		return nil, ErrInvalidReference
	}

	exists, err := s.patients.Exists(ctx, req.PatientID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, identity.ErrPatientNotFound
	}

	ref := &Reference{
		PatientID:    req.PatientID,
		ContentHash:  req.ContentHash,
		MetadataHash: req.MetadataHash,
		RecordType:   req.RecordType,
		Checksum:     req.Checksum,
		UploadedBy:   caller,
		CreatedAt:    s.clock.Now(),
	}
	if err := s.store.Append(ctx, ref); err != nil {
		return nil, err
	}
	if err := s.log.Append(ctx, &audit.Entry{
		Actor:     caller,
		ActorRole: string(role),
		Action:    audit.ActionRecordUploaded,
		Patient:   req.PatientID,
		Timestamp: ref.CreatedAt,
	}); err != nil {
		return nil, err
	}
	return ref, nil
}

// List returns the patient's references in upload order. Visible to the
// patient, providers, and valid grant holders.
func (s *Service) List(ctx context.Context, caller, patientID string) ([]Reference, error) {
	if !s.policy.MayViewPatientData(caller, patientID) {
		return nil, access.ErrInsufficientRole
	}
	return s.store.List(ctx, patientID)
}
