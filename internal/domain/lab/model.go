// Package lab implements the lab result review workflow: a technician
// submits results, a reviewer approves or rejects them, and approval
// publishes a record reference the patient can see.
package lab

import (
	"errors"

	"github.com/medichain/medichain/internal/platform/clock"
)

// Status is the review state of a submission. Pending transitions exactly
// once, to Approved or Rejected, and is terminal thereafter.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// Errors returned by the lab workflow.
var (
	ErrInvalidRequest          = errors.New("at least one test result is required")
	ErrSubmissionNotFound      = errors.New("lab submission not found")
	ErrAlreadyReviewed         = errors.New("lab submission has already been reviewed")
	ErrRejectionReasonRequired = errors.New("a rejection reason is required")
)

// TestResult is one measured parameter within a submission.
type TestResult struct {
	Parameter      string  `json:"parameter"`
	Value          string  `json:"value"`
	Unit           string  `json:"unit"`
	ReferenceRange string  `json:"reference_range"`
	Flag           *string `json:"flag,omitempty"`
}

// Submission is one set of lab results awaiting or past review.
type Submission struct {
	ID              string       `json:"id"`
	PatientID       string       `json:"patient_id"`
	PatientName     string       `json:"patient_name"`
	TestName        string       `json:"test_name"`
	TestCategory    string       `json:"test_category"`
	Results         []TestResult `json:"results"`
	Notes           string       `json:"notes,omitempty"`
	SubmittedBy     string       `json:"submitted_by"`
	SubmittedAt     clock.Tick   `json:"submitted_at"`
	Status          Status       `json:"status"`
	ReviewedBy      string       `json:"reviewed_by,omitempty"`
	ReviewedAt      *clock.Tick  `json:"reviewed_at,omitempty"`
	RejectionReason string       `json:"rejection_reason,omitempty"`
}

// SubmitRequest is the payload for submitting lab results.
type SubmitRequest struct {
	PatientID    string       `json:"patient_id"`
	TestName     string       `json:"test_name"`
	TestCategory string       `json:"test_category"`
	Results      []TestResult `json:"results"`
	Notes        string       `json:"notes,omitempty"`
}

// ReviewAction selects the review outcome.
type ReviewAction string

const (
	ActionApprove ReviewAction = "approve"
	ActionReject  ReviewAction = "reject"
)

// ReviewRequest is the payload for reviewing a submission.
type ReviewRequest struct {
	Action          ReviewAction `json:"action"`
	RejectionReason string       `json:"rejection_reason,omitempty"`
}
