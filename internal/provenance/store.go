package provenance

import (
	"context"

	"github.com/google/uuid"
)

// CreateRecordParams holds the fields supplied when a record is created.
// The store assigns the identifier, the binding time and the initial ACTIVE status.
type CreateRecordParams struct {
	Fingerprint    string
	SignerIdentity string
	Signature      string
}

// Store is the durable record store used by the Binder and Verifier.
//
// Each operation is atomic for a single record. There is no operation that
// updates a fingerprint or deletes a record.
type Store interface {
	// Create stores a new ACTIVE record under a freshly generated identifier
	Create(ctx context.Context, params CreateRecordParams) (Record, error)

	// Read returns the record for id, or ErrRecordNotFound
	Read(ctx context.Context, id uuid.UUID) (Record, error)

	// Revoke marks the record REVOKED. It returns true if the record exists,
	// including when it was already revoked.
	Revoke(ctx context.Context, id uuid.UUID) (bool, error)

	// Ping reports whether the store is reachable
	Ping(ctx context.Context) error
}
