package api

// errors.go defines the error codes returned by the InkCrypt HTTP API

import "fmt"

// APIError is a structured error raised by the handlers and middleware.
type APIError struct {
	// code is the API error code
	code ErrorCode

	// message is a human-readable error message
	message string

	// wrapped is the optional underlying error
	wrapped error
}

func (e *APIError) Error() string {
	if e.wrapped != nil {
		return fmt.Sprintf("%s: %v", e.message, e.wrapped)
	}
	return e.message
}

func (e *APIError) Code() ErrorCode { return e.code }
func (e *APIError) Unwrap() error   { return e.wrapped }

// ErrorCode is used in the errors array of an ErrorResponse.
//
//   - 7000-7999 technical errors: the request could not be processed because of a problem with the supplied data or the service.
//   - 8000-8999 functional errors: the request is technically valid but refers to something that does not exist.
type ErrorCode int

const (
	// ErrCodeMalformedRequest is used when the multipart form or a form field is missing or unreadable
	ErrCodeMalformedRequest ErrorCode = 7001

	// ErrCodeInvalidDocument is used when the upload is not a PDF or cannot be parsed where parsing is required
	ErrCodeInvalidDocument ErrorCode = 7002

	// ErrCodeStoreUnavailable is used when the record store fails or times out
	ErrCodeStoreUnavailable ErrorCode = 7003

	// ErrCodeSignatureError is used when the record attestation cannot be signed
	ErrCodeSignatureError ErrorCode = 7004

	// ErrCodeInternalError is used when an internal server error occurs
	ErrCodeInternalError ErrorCode = 7005

	// ErrCodeRateLimitExceeded is used when the rate limit is exceeded
	// - this is only used in the middleware
	ErrCodeRateLimitExceeded ErrorCode = 7009

	// ErrCodeRequestTooLarge is used when the request body is too large
	// - this is only used in the middleware
	ErrCodeRequestTooLarge ErrorCode = 7010

	// ErrCodeDocumentNotFound is used when no record exists for the supplied identifier
	ErrCodeDocumentNotFound ErrorCode = 8001
)

// NewMalformedRequestError creates an error for malformed requests.
func NewMalformedRequestError(msg string) error {
	return &APIError{code: ErrCodeMalformedRequest, message: msg}
}

// WrapMalformedRequestError wraps an existing error as a malformed request error.
func WrapMalformedRequestError(err error, msg string) error {
	return &APIError{code: ErrCodeMalformedRequest, message: msg, wrapped: err}
}

// NewInvalidDocumentError creates an error for uploads that are not PDF documents.
func NewInvalidDocumentError(msg string) error {
	return &APIError{code: ErrCodeInvalidDocument, message: msg}
}

// NewDocumentNotFoundError creates an error for an unknown document identifier.
func NewDocumentNotFoundError(msg string) error {
	return &APIError{code: ErrCodeDocumentNotFound, message: msg}
}

// WrapInternalError wraps an existing error as an internal error.
// Use this for failures that should not normally occur (e.g. writing the response).
func WrapInternalError(err error, msg string) error {
	return &APIError{code: ErrCodeInternalError, message: msg, wrapped: err}
}

// NewRateLimitError creates a rate limit exceeded error.
func NewRateLimitError(msg string) error {
	return &APIError{code: ErrCodeRateLimitExceeded, message: msg}
}

// NewRequestTooLargeError creates a request too large error.
func NewRequestTooLargeError(msg string) error {
	return &APIError{code: ErrCodeRequestTooLarge, message: msg}
}
