package provenance

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore is an in-process Store for development and tests.
// Records are lost when the process exits.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[uuid.UUID]Record
	now     func() time.Time
}

// NewMemoryStore returns an empty MemoryStore
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		records: make(map[uuid.UUID]Record),
		now:     time.Now,
	}
}

// WithClock sets the function used to timestamp new records
func (s *MemoryStore) WithClock(now func() time.Time) *MemoryStore {
	s.now = now
	return s
}

func (s *MemoryStore) Create(ctx context.Context, params CreateRecordParams) (Record, error) {
	if err := ctx.Err(); err != nil {
		return Record{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id := uuid.New()
	for _, exists := s.records[id]; exists; _, exists = s.records[id] {
		id = uuid.New()
	}

	record := Record{
		Identifier:     id,
		Fingerprint:    params.Fingerprint,
		SignerIdentity: params.SignerIdentity,
		Signature:      params.Signature,
		BoundAt:        s.now().UTC(),
		Status:         StatusActive,
	}
	s.records[id] = record
	return record, nil
}

func (s *MemoryStore) Read(ctx context.Context, id uuid.UUID) (Record, error) {
	if err := ctx.Err(); err != nil {
		return Record{}, err
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.records[id]
	if !ok {
		return Record{}, ErrRecordNotFound
	}
	return record, nil
}

func (s *MemoryStore) Revoke(ctx context.Context, id uuid.UUID) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.records[id]
	if !ok {
		return false, nil
	}
	record.Status = StatusRevoked
	s.records[id] = record
	return true, nil
}

func (s *MemoryStore) Ping(ctx context.Context) error {
	return ctx.Err()
}

// Len returns the number of stored records
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}
