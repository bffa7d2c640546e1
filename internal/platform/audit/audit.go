// Package audit provides the append-only trail of privileged actions.
//
// Every successful role change, access grant, lab transition and record
// upload produces exactly one Entry. Entries are never mutated or deleted,
// and their order is the commit order of the mutations that produced them.
// Failed operations leave no trace here.
package audit

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/medichain/medichain/internal/platform/clock"
)

// Action identifies the privileged operation an Entry records.
type Action string

const (
	ActionRoleAssigned      Action = "role_assigned"
	ActionRoleRevoked       Action = "role_revoked"
	ActionEmergencyAccess   Action = "emergency_access_granted"
	ActionAccessRevoked     Action = "access_revoked"
	ActionAccessCleaned     Action = "expired_access_cleaned"
	ActionLabSubmission     Action = "lab_submission"
	ActionLabApproved       Action = "lab_approved"
	ActionLabRejected       Action = "lab_rejected"
	ActionRecordUploaded    Action = "record_uploaded"
	ActionPatientRegistered Action = "patient_registered"
)

// Entry is one immutable audit record.
type Entry struct {
	ID        uuid.UUID  `json:"id"`
	Seq       uint64     `json:"seq"`
	Actor     string     `json:"actor"`
	ActorRole string     `json:"actor_role"`
	Action    Action     `json:"action"`
	Patient   string     `json:"patient,omitempty"`
	Timestamp clock.Tick `json:"timestamp"`
	Emergency bool       `json:"emergency"`
}

// Log is the append-only store. Append assigns ID and Seq; it fails only on
// storage exhaustion, which callers treat as fatal. QueryByPatient returns
// entries in insertion order and is free of side effects, so repeated calls
// with no intervening Append return identical results.
type Log interface {
	Append(ctx context.Context, e *Entry) error
	QueryByPatient(ctx context.Context, patient string) ([]Entry, error)
	QueryByActor(ctx context.Context, actor string) ([]Entry, error)
}

// MemLog is the in-process Log. A single mutex orders appends; Seq reflects
// that order.
type MemLog struct {
	mu      sync.RWMutex
	entries []Entry
	nextSeq uint64
}

// NewMemLog creates an empty in-memory audit log.
func NewMemLog() *MemLog {
	return &MemLog{nextSeq: 1}
}

func (l *MemLog) Append(_ context.Context, e *Entry) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	e.ID = uuid.New()
	e.Seq = l.nextSeq
	l.nextSeq++
	l.entries = append(l.entries, *e)
	return nil
}

func (l *MemLog) QueryByPatient(_ context.Context, patient string) ([]Entry, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var out []Entry
	for _, e := range l.entries {
		if e.Patient == patient {
			out = append(out, e)
		}
	}
	return out, nil
}

func (l *MemLog) QueryByActor(_ context.Context, actor string) ([]Entry, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var out []Entry
	for _, e := range l.entries {
		if e.Actor == actor {
			out = append(out, e)
		}
	}
	return out, nil
}

// Len reports the number of entries, for tests and diagnostics.
func (l *MemLog) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}
