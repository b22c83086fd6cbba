package provenance

import (
	"errors"
	"fmt"
)

// ErrRecordNotFound is returned by a Store when no record exists for an identifier
var ErrRecordNotFound = errors.New("record not found")

type ErrorCode string

const (
	// ErrCodeMalformedDocument: the input could not be parsed where parsing is required
	ErrCodeMalformedDocument ErrorCode = "malformed_document"

	// ErrCodeRecordNotFound: read or revoke of an unknown identifier
	ErrCodeRecordNotFound ErrorCode = "record_not_found"

	// ErrCodeStoreUnavailable: the record store failed or timed out
	ErrCodeStoreUnavailable ErrorCode = "store_unavailable"

	// ErrCodeInvalidIdentifier: the identifier is not a well formed UUID
	ErrCodeInvalidIdentifier ErrorCode = "invalid_identifier"

	// ErrCodeSignature: the record attestation could not be produced
	ErrCodeSignature ErrorCode = "signature"

	ErrCodeInternal ErrorCode = "internal"
)

// ProvenanceError is the structured error returned by bind and revoke
type ProvenanceError struct {
	code    ErrorCode
	message string
	wrapped error
}

func (e *ProvenanceError) Error() string {
	if e.wrapped != nil {
		return fmt.Sprintf("%s: %v", e.message, e.wrapped)
	}
	return e.message
}

func (e *ProvenanceError) Code() ErrorCode { return e.code }
func (e *ProvenanceError) Unwrap() error   { return e.wrapped }

// NewMalformedDocumentError creates an error for input that is not a usable PDF
func NewMalformedDocumentError(msg string) error {
	return &ProvenanceError{code: ErrCodeMalformedDocument, message: msg}
}

// WrapMalformedDocumentError wraps a parser error
func WrapMalformedDocumentError(err error, msg string) error {
	return &ProvenanceError{code: ErrCodeMalformedDocument, message: msg, wrapped: err}
}

// WrapRecordNotFoundError wraps ErrRecordNotFound (or a store error equivalent to it)
func WrapRecordNotFoundError(err error, msg string) error {
	return &ProvenanceError{code: ErrCodeRecordNotFound, message: msg, wrapped: err}
}

// WrapStoreUnavailableError wraps a record store failure
func WrapStoreUnavailableError(err error, msg string) error {
	return &ProvenanceError{code: ErrCodeStoreUnavailable, message: msg, wrapped: err}
}

// NewInvalidIdentifierError creates an error for a malformed identifier
func NewInvalidIdentifierError(msg string) error {
	return &ProvenanceError{code: ErrCodeInvalidIdentifier, message: msg}
}

// WrapSignatureError wraps a failure to sign a record attestation
func WrapSignatureError(err error, msg string) error {
	return &ProvenanceError{code: ErrCodeSignature, message: msg, wrapped: err}
}

// WrapInternalError wraps an unexpected failure
func WrapInternalError(err error, msg string) error {
	return &ProvenanceError{code: ErrCodeInternal, message: msg, wrapped: err}
}

// HasCode reports whether err is a ProvenanceError with the given code
func HasCode(err error, code ErrorCode) bool {
	var pErr *ProvenanceError
	return errors.As(err, &pErr) && pErr.code == code
}
