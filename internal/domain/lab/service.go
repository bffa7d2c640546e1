package lab

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/medichain/medichain/internal/domain/access"
	"github.com/medichain/medichain/internal/domain/records"
	"github.com/medichain/medichain/internal/platform/audit"
	"github.com/medichain/medichain/internal/platform/clock"
)

// AccessPolicy resolves caller roles. Implemented by the access service.
type AccessPolicy interface {
	RoleOf(account string) (access.Role, bool)
}

// PatientDirectory resolves registered patients. Implemented by the identity
// service.
type PatientDirectory interface {
	FullName(ctx context.Context, id string) (string, error)
}

// Service owns the submission table. One mutex covers the status check, the
// transition, the record reference publish and the audit append, so two
// concurrent reviewers cannot both win and approval publishes exactly one
// reference.
type Service struct {
	mu          sync.Mutex
	submissions map[string]*Submission
	order       []string

	policy   AccessPolicy
	patients PatientDirectory
	store    records.Store
	log      audit.Log
	clock    clock.Source
}

// NewService creates a new lab Service.
func NewService(policy AccessPolicy, patients PatientDirectory, store records.Store, log audit.Log, clk clock.Source) *Service {
	return &Service{
		submissions: make(map[string]*Submission),
		policy:      policy,
		patients:    patients,
		store:       store,
		log:         log,
		clock:       clk,
	}
}

// newSubmissionID generates a short submission identifier like LAB-3f1a9b2c.
func newSubmissionID() string {
	id := uuid.New().String()
	return "LAB-" + strings.SplitN(id, "-", 2)[0]
}

// resultsChecksum derives the content checksum published on approval from
// the serialized results.
func resultsChecksum(results []TestResult) (string, error) {
	data, err := json.Marshal(results)
	if err != nil {
		return "", fmt.Errorf("lab: serialize results: %w", err)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

// Submit creates a Pending submission for a registered patient.
func (s *Service) Submit(ctx context.Context, submitter string, req SubmitRequest) (*Submission, error) {
	role, ok := s.policy.RoleOf(submitter)
	if !ok || !role.Can(access.CapSubmitLab) {
		return nil, access.ErrInsufficientRole
	}
	if len(req.Results) == 0 {
		return nil, ErrInvalidRequest
	}

	patientName, err := s.patients.FullName(ctx, req.PatientID)
	if err != nil {
		return nil, err
	}

	sub := &Submission{
		ID:           newSubmissionID(),
		PatientID:    req.PatientID,
		PatientName:  patientName,
		TestName:     req.TestName,
		TestCategory: req.TestCategory,
		Results:      req.Results,
		Notes:        req.Notes,
		SubmittedBy:  submitter,
		SubmittedAt:  s.clock.Now(),
		Status:       StatusPending,
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.submissions[sub.ID] = sub
	s.order = append(s.order, sub.ID)

	if err := s.log.Append(ctx, &audit.Entry{
		Actor:     submitter,
		ActorRole: string(role),
		Action:    audit.ActionLabSubmission,
		Patient:   sub.PatientID,
		Timestamp: sub.SubmittedAt,
	}); err != nil {
		return nil, err
	}
	out := *sub
	return &out, nil
}

// Review transitions a Pending submission to Approved or Rejected. Approval
// publishes exactly one record reference carrying the results checksum;
// rejection requires a reason and publishes nothing.
func (s *Service) Review(ctx context.Context, reviewer, submissionID string, req ReviewRequest) (*Submission, error) {
	role, ok := s.policy.RoleOf(reviewer)
	if !ok || !role.Can(access.CapReviewLab) {
		return nil, access.ErrInsufficientRole
	}
	if req.Action != ActionApprove && req.Action != ActionReject {
		return nil, fmt.Errorf("lab: unknown review action %q", req.Action)
	}
	if req.Action == ActionReject && req.RejectionReason == "" {
		return nil, ErrRejectionReasonRequired
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sub, exists := s.submissions[submissionID]
	if !exists {
		return nil, ErrSubmissionNotFound
	}
	if sub.Status != StatusPending {
		return nil, ErrAlreadyReviewed
	}

	// The submission is only stamped once the outcome is committed, so a
	// failed publish leaves it exactly as it was: still pending, no reviewer.
	now := s.clock.Now()

	var action audit.Action
	if req.Action == ActionApprove {
		checksum, err := resultsChecksum(sub.Results)
		if err != nil {
			return nil, err
		}
		if err := s.store.Append(ctx, &records.Reference{
			PatientID:    sub.PatientID,
			ContentHash:  "lab-" + sub.ID,
			MetadataHash: "meta-" + sub.ID,
			RecordType:   records.RecordTypeLabResult,
			Checksum:     checksum,
			UploadedBy:   reviewer,
			CreatedAt:    now,
		}); err != nil {
			return nil, err
		}
		sub.Status = StatusApproved
		sub.ReviewedBy = reviewer
		sub.ReviewedAt = &now
		action = audit.ActionLabApproved
	} else {
		sub.Status = StatusRejected
		sub.ReviewedBy = reviewer
		sub.ReviewedAt = &now
		sub.RejectionReason = req.RejectionReason
		action = audit.ActionLabRejected
	}

	if err := s.log.Append(ctx, &audit.Entry{
		Actor:     reviewer,
		ActorRole: string(role),
		Action:    action,
		Patient:   sub.PatientID,
		Timestamp: now,
	}); err != nil {
		return nil, err
	}
	out := *sub
	return &out, nil
}

// ListPending returns all Pending submissions in submission order. Reviewers
// only.
func (s *Service) ListPending(ctx context.Context, caller string) ([]Submission, error) {
	role, ok := s.policy.RoleOf(caller)
	if !ok || !role.Can(access.CapReviewLab) {
		return nil, access.ErrInsufficientRole
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var out []Submission
	for _, id := range s.order {
		if sub := s.submissions[id]; sub.Status == StatusPending {
			out = append(out, *sub)
		}
	}
	return out, nil
}

// ListByPatient returns a patient's submissions in submission order.
// Providers see everything; the patient sees only their own approved results.
func (s *Service) ListByPatient(ctx context.Context, caller, patientID string) ([]Submission, error) {
	role, hasRole := s.policy.RoleOf(caller)
	isProvider := hasRole && role.IsProvider()
	if !isProvider && caller != patientID {
		return nil, access.ErrInsufficientRole
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var out []Submission
	for _, id := range s.order {
		sub := s.submissions[id]
		if sub.PatientID != patientID {
			continue
		}
		if !isProvider && sub.Status != StatusApproved {
			continue
		}
		out = append(out, *sub)
	}
	return out, nil
}

// Get returns one submission. Reviewers, the submitter, and the patient (once
// approved) may read it.
func (s *Service) Get(ctx context.Context, caller, submissionID string) (*Submission, error) {
	role, hasRole := s.policy.RoleOf(caller)

	s.mu.Lock()
	defer s.mu.Unlock()

	sub, exists := s.submissions[submissionID]
	if !exists {
		return nil, ErrSubmissionNotFound
	}
	switch {
	case hasRole && role.IsProvider():
	case caller == sub.PatientID && sub.Status == StatusApproved:
	default:
		return nil, access.ErrInsufficientRole
	}
	out := *sub
	return &out, nil
}
