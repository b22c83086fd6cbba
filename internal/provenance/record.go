package provenance

import (
	"time"

	"github.com/google/uuid"
)

// Status of a document record. The only allowed transition is ACTIVE to REVOKED.
type Status string

const (
	StatusActive  Status = "ACTIVE"
	StatusRevoked Status = "REVOKED"
)

// Record is the stored binding between an identifier and a document fingerprint.
// Every field except Status is immutable once created.
type Record struct {
	Identifier     uuid.UUID
	Fingerprint    string
	SignerIdentity string
	BoundAt        time.Time
	Status         Status

	// Signature is the JWS attestation over Fingerprint and SignerIdentity.
	// Empty for records created without one.
	Signature string
}

// Revoked reports whether the record has been revoked
func (r Record) Revoked() bool { return r.Status == StatusRevoked }

// ParseIdentifier parses the string form of an identifier.
// The nil UUID is rejected since it is never issued.
func ParseIdentifier(s string) (uuid.UUID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, NewInvalidIdentifierError("identifier is not a valid UUID")
	}
	if id == uuid.Nil {
		return uuid.Nil, NewInvalidIdentifierError("identifier must not be the nil UUID")
	}
	return id, nil
}
