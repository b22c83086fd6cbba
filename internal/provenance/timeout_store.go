package provenance

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// TimeoutStore bounds every call to the wrapped Store by a fixed timeout
type TimeoutStore struct {
	next    Store
	timeout time.Duration
}

// WithTimeout wraps store so that each operation is cancelled after timeout.
// A non-positive timeout returns store unchanged.
func WithTimeout(store Store, timeout time.Duration) Store {
	if timeout <= 0 {
		return store
	}
	return &TimeoutStore{next: store, timeout: timeout}
}

func (s *TimeoutStore) Create(ctx context.Context, params CreateRecordParams) (Record, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.next.Create(ctx, params)
}

func (s *TimeoutStore) Read(ctx context.Context, id uuid.UUID) (Record, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.next.Read(ctx, id)
}

func (s *TimeoutStore) Revoke(ctx context.Context, id uuid.UUID) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.next.Revoke(ctx, id)
}

func (s *TimeoutStore) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	return s.next.Ping(ctx)
}
