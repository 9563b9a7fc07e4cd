// Package session holds per-dashboard-session analysis results. Records live
// in memory only; each field stays nil until its analysis has run.
package session

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound reports an unknown session ID.
var ErrNotFound = errors.New("session: not found")

// Record is the flat result sheet one review session accumulates.
type Record struct {
	ID        string
	CreatedAt time.Time
	UpdatedAt time.Time

	ForgeryScore   *float64
	SignatureScore *float64

	AadhaarText   *string
	AadhaarNumber *string
	AadhaarValid  *bool

	PANText   *string
	PANNumber *string
	PANValid  *bool

	FaceDistance *float64
	FaceVerified *bool

	FraudCount     *int
	FraudThreshold *float64
}

// Clone returns a deep copy so callers can read a snapshot without holding
// store locks.
func (r *Record) Clone() Record {
	out := *r
	out.ForgeryScore = cloneVal(r.ForgeryScore)
	out.SignatureScore = cloneVal(r.SignatureScore)
	out.AadhaarText = cloneVal(r.AadhaarText)
	out.AadhaarNumber = cloneVal(r.AadhaarNumber)
	out.AadhaarValid = cloneVal(r.AadhaarValid)
	out.PANText = cloneVal(r.PANText)
	out.PANNumber = cloneVal(r.PANNumber)
	out.PANValid = cloneVal(r.PANValid)
	out.FaceDistance = cloneVal(r.FaceDistance)
	out.FaceVerified = cloneVal(r.FaceVerified)
	out.FraudCount = cloneVal(r.FraudCount)
	out.FraudThreshold = cloneVal(r.FraudThreshold)
	return out
}

func cloneVal[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// Ptr is a convenience for populating optional record fields.
func Ptr[T any](v T) *T { return &v }

// Store is an in-memory session registry safe for concurrent handlers.
type Store struct {
	mu      sync.RWMutex
	records map[string]*Record
	now     func() time.Time
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{records: make(map[string]*Record), now: time.Now}
}

// Create registers a new session and returns its snapshot.
func (s *Store) Create() Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	rec := &Record{ID: uuid.NewString(), CreatedAt: now, UpdatedAt: now}
	s.records[rec.ID] = rec
	return rec.Clone()
}

// Get returns a snapshot of the session.
func (s *Store) Get(id string) (Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.records[id]
	if !ok {
		return Record{}, ErrNotFound
	}
	return rec.Clone(), nil
}

// Update applies fn to the session under the store lock and returns the
// resulting snapshot.
func (s *Store) Update(id string, fn func(*Record)) (Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	rec, ok := s.records[id]
	if !ok {
		return Record{}, ErrNotFound
	}
	fn(rec)
	rec.UpdatedAt = s.now()
	return rec.Clone(), nil
}
