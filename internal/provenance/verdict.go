package provenance

import (
	"time"

	"github.com/google/uuid"
)

// Confidence is the label attached to every verdict
type Confidence string

const (
	ConfidenceValid    Confidence = "VALID"
	ConfidenceInvalid  Confidence = "INVALID"
	ConfidenceTampered Confidence = "TAMPERED"
	ConfidenceRevoked  Confidence = "REVOKED"
	ConfidenceError    Confidence = "ERROR"
)

// Outcome names the verdict case
type Outcome string

const (
	OutcomeNoIdentity        Outcome = "NO_IDENTITY"
	OutcomeUnknownIdentity   Outcome = "UNKNOWN_IDENTITY"
	OutcomeRevoked           Outcome = "REVOKED"
	OutcomeTampered          Outcome = "TAMPERED"
	OutcomeValid             Outcome = "VALID"
	OutcomeVerificationError Outcome = "VERIFICATION_ERROR"
)

// Verdict is the result of verifying a document. The set of implementations is closed:
// NoIdentity, UnknownIdentity, RevokedDocument, TamperedDocument, ValidDocument and
// VerificationFailure. Use a type switch to reach the fields of a particular case.
type Verdict interface {
	Outcome() Outcome
	Confidence() Confidence
	Valid() bool
	Reason() string

	verdict()
}

// NoIdentity: the document carries no usable identifier
type NoIdentity struct{}

func (NoIdentity) Outcome() Outcome       { return OutcomeNoIdentity }
func (NoIdentity) Confidence() Confidence { return ConfidenceInvalid }
func (NoIdentity) Valid() bool            { return false }
func (NoIdentity) Reason() string         { return "No InkCrypt signature found" }
func (NoIdentity) verdict()               {}

// UnknownIdentity: the identifier was never issued by this store
type UnknownIdentity struct {
	Identifier uuid.UUID
}

func (UnknownIdentity) Outcome() Outcome       { return OutcomeUnknownIdentity }
func (UnknownIdentity) Confidence() Confidence { return ConfidenceInvalid }
func (UnknownIdentity) Valid() bool            { return false }
func (UnknownIdentity) Reason() string         { return "Document UUID not found in database" }
func (UnknownIdentity) verdict()               {}

// RevokedDocument: the record exists but has been revoked.
// Reported regardless of whether the content still matches.
type RevokedDocument struct {
	Identifier uuid.UUID
}

func (RevokedDocument) Outcome() Outcome       { return OutcomeRevoked }
func (RevokedDocument) Confidence() Confidence { return ConfidenceRevoked }
func (RevokedDocument) Valid() bool            { return false }
func (RevokedDocument) Reason() string         { return "Document has been revoked" }
func (RevokedDocument) verdict()               {}

// TamperCause says which check found the tampering
type TamperCause string

const (
	// TamperContent: the content fingerprint differs from the record
	TamperContent TamperCause = "content"

	// TamperSignature: the record's attestation is missing or does not verify
	TamperSignature TamperCause = "signature"
)

// TamperedDocument: the record is active but the document or the record has been altered
type TamperedDocument struct {
	Identifier uuid.UUID
	Cause      TamperCause

	// Detail is a diagnostic for logs; it is not part of Reason
	Detail string
}

func (TamperedDocument) Outcome() Outcome       { return OutcomeTampered }
func (TamperedDocument) Confidence() Confidence { return ConfidenceTampered }
func (TamperedDocument) Valid() bool            { return false }
func (t TamperedDocument) Reason() string {
	if t.Cause == TamperSignature {
		return "Document record signature does not match"
	}
	return "Document content has been modified"
}
func (TamperedDocument) verdict() {}

// ValidDocument: the document matches an active record
type ValidDocument struct {
	Identifier     uuid.UUID
	BoundAt        time.Time
	SignerIdentity string
}

func (ValidDocument) Outcome() Outcome       { return OutcomeValid }
func (ValidDocument) Confidence() Confidence { return ConfidenceValid }
func (ValidDocument) Valid() bool            { return true }
func (ValidDocument) Reason() string         { return "Document is authentic" }
func (ValidDocument) verdict()               {}

// VerificationFailure: verification could not be completed (store unavailable, internal error)
type VerificationFailure struct {
	Err error
}

func (VerificationFailure) Outcome() Outcome       { return OutcomeVerificationError }
func (VerificationFailure) Confidence() Confidence { return ConfidenceError }
func (VerificationFailure) Valid() bool            { return false }
func (f VerificationFailure) Reason() string {
	if f.Err == nil {
		return "Verification error"
	}
	return "Verification error: " + f.Err.Error()
}
func (VerificationFailure) verdict() {}
