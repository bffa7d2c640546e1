package access

import (
	"context"
	"sort"
	"sync"

	"github.com/medichain/medichain/internal/platform/audit"
	"github.com/medichain/medichain/internal/platform/clock"
)

const (
	// DefaultAccessDuration is how long an emergency grant stays valid,
	// in ticks, measured inclusively from the grant tick.
	DefaultAccessDuration clock.Tick = 150

	// MaxActiveAccesses bounds the number of live (not revoked, not
	// cleaned) grants per patient.
	MaxActiveAccesses = 10
)

// GrantStore owns all access grants. One mutex covers the count check, the
// insert and the audit append, so the per-patient bound holds under
// concurrent grant attempts and audit order matches commit order.
type GrantStore struct {
	mu     sync.Mutex
	grants map[string]map[string]*AccessGrant // patient -> accessor -> grant
	live   map[string]int                     // patient -> live grant count
	log    audit.Log
}

// NewGrantStore creates an empty grant store writing to the given audit log.
func NewGrantStore(log audit.Log) *GrantStore {
	return &GrantStore{
		grants: make(map[string]map[string]*AccessGrant),
		live:   make(map[string]int),
		log:    log,
	}
}

// Grant creates an emergency access grant for (patient, accessor). Any
// existing grant for the pair blocks a new one, even an expired or revoked
// grant, until it is cleaned up. accessorRole is recorded on the audit entry.
func (s *GrantStore) Grant(ctx context.Context, accessor string, accessorRole Role, patient, reasonHash string, now clock.Tick) (*AccessGrant, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.grants[patient][accessor]; exists {
		return nil, ErrAccessAlreadyGranted
	}
	if s.live[patient] >= MaxActiveAccesses {
		return nil, ErrTooManyAccesses
	}

	g := &AccessGrant{
		Patient:    patient,
		Accessor:   accessor,
		Kind:       AccessEmergency,
		GrantedAt:  now,
		ExpiresAt:  now + DefaultAccessDuration,
		ReasonHash: reasonHash,
	}
	if s.grants[patient] == nil {
		s.grants[patient] = make(map[string]*AccessGrant)
	}
	s.grants[patient][accessor] = g
	s.live[patient]++

	err := s.log.Append(ctx, &audit.Entry{
		Actor:     accessor,
		ActorRole: string(accessorRole),
		Action:    audit.ActionEmergencyAccess,
		Patient:   patient,
		Timestamp: now,
		Emergency: true,
	})
	if err != nil {
		return nil, err
	}
	out := *g
	return &out, nil
}

// Revoke marks the grant revoked. Only the patient or the accessor may
// revoke. The row stays in place so the pair remains occupied and the audit
// trail stays reconstructible; cleanup removes it later.
func (s *GrantStore) Revoke(ctx context.Context, caller string, callerRole Role, patient, accessor string, now clock.Tick) error {
	if caller != patient && caller != accessor {
		return ErrNotAuthorized
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	g, exists := s.grants[patient][accessor]
	if !exists {
		return ErrAccessNotFound
	}
	if g.Revoked {
		return ErrAlreadyRevoked
	}

	g.Revoked = true
	s.live[patient]--

	return s.log.Append(ctx, &audit.Entry{
		Actor:     caller,
		ActorRole: string(callerRole),
		Action:    audit.ActionAccessRevoked,
		Patient:   patient,
		Timestamp: now,
		Emergency: true,
	})
}

// Cleanup removes a provably dead grant: one that is revoked or past its
// expiry. Anyone may call it. The live count drops only for grants that were
// never revoked, since Revoke already decremented for the others.
func (s *GrantStore) Cleanup(ctx context.Context, caller string, callerRole Role, patient, accessor string, now clock.Tick) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, exists := s.grants[patient][accessor]
	if !exists {
		return ErrAccessNotFound
	}
	if !g.Revoked && !g.Expired(now) {
		return ErrAccessNotFound
	}

	if !g.Revoked {
		s.live[patient]--
	}
	delete(s.grants[patient], accessor)
	if len(s.grants[patient]) == 0 {
		delete(s.grants, patient)
	}

	return s.log.Append(ctx, &audit.Entry{
		Actor:     caller,
		ActorRole: string(callerRole),
		Action:    audit.ActionAccessCleaned,
		Patient:   patient,
		Timestamp: now,
		Emergency: true,
	})
}

// IsValid reports whether the accessor holds a live, unexpired grant for the
// patient at the given tick.
func (s *GrantStore) IsValid(patient, accessor string, now clock.Tick) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	g, exists := s.grants[patient][accessor]
	return exists && g.Valid(now)
}

// GrantsFor returns all grants recorded for a patient, including revoked and
// expired ones not yet cleaned, sorted by grant tick then accessor.
func (s *GrantStore) GrantsFor(patient string) []AccessGrant {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []AccessGrant
	for _, g := range s.grants[patient] {
		out = append(out, *g)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].GrantedAt != out[j].GrantedAt {
			return out[i].GrantedAt < out[j].GrantedAt
		}
		return out[i].Accessor < out[j].Accessor
	})
	return out
}

// LiveCount reports the number of live grants for a patient, for tests and
// diagnostics. The count reflects "granted and not revoked or cleaned", not
// expiry: callers must use IsValid for liveness.
func (s *GrantStore) LiveCount(patient string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.live[patient]
}
