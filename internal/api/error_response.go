package api

// error_response.go maps lower level errors to the JSON error response returned to the client

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/radwayousryyy/InkCrypt/internal/crypto"
	"github.com/radwayousryyy/InkCrypt/internal/logger"
	"github.com/radwayousryyy/InkCrypt/internal/provenance"
)

// ErrorResponse is the body of every non-2xx response
type ErrorResponse struct {

	// The HTTP method used to make the request e.g. GET, POST, etc
	HTTPMethod string `json:"httpMethod" example:"POST"`

	// The URI that was requested
	RequestURI string `json:"requestUri" example:"/revoke"`

	// The HTTP status code returned
	StatusCode int `json:"statusCode" example:"404"`

	// A standard short description corresponding to the HTTP status code
	StatusCodeText string `json:"statusCodeText" example:"Not Found"`

	// A long description corresponding to the HTTP status code with additional information
	StatusCodeMessage string `json:"statusCodeMessage,omitempty" example:"Document not found"`

	// The request id assigned by the server
	ProviderCorrelationReference string `json:"providerCorrelationReference,omitempty"`

	// The DateTime corresponding to the error occurring
	ErrorDateTime string `json:"errorDateTime" example:"2025-01-28T10:00:00Z"`

	// An array of errors providing more detail about the root cause
	Errors []DetailedError `json:"errors"`
}

// DetailedError is a single entry in the errors array of an ErrorResponse
type DetailedError struct {
	// 7000-7999 for technical errors, 8000-8999 for functional errors
	ErrorCode        ErrorCode `json:"errorCode" example:"8001"`
	Property         string    `json:"property,omitempty"`
	Value            string    `json:"value,omitempty"`
	ErrorCodeText    string    `json:"errorCodeText" example:"Document not found"`
	ErrorCodeMessage string    `json:"errorCodeMessage"`
}

// MapErrorToResponse maps api, provenance, crypto or generic errors to an ErrorResponse.
//
// The mapping also establishes the HTTP status code. Errors that are not 4xx have their
// message replaced with a generic one; the full error is logged by RespondWithErrorResponse.
func MapErrorToResponse(err error, r *http.Request) *ErrorResponse {
	requestID := middleware.GetReqID(r.Context())

	var apiErr *APIError
	if errors.As(err, &apiErr) {
		statusCode, errorCode, text := mapAPIError(apiErr)
		return newErrorResponse(r, requestID, statusCode, errorCode, text, err)
	}

	var provErr *provenance.ProvenanceError
	if errors.As(err, &provErr) {
		statusCode, errorCode, text := mapProvenanceError(provErr)
		return newErrorResponse(r, requestID, statusCode, errorCode, text, err)
	}

	var cryptoErr *crypto.CryptoError
	if errors.As(err, &cryptoErr) {
		statusCode, errorCode, text := mapCryptoError(cryptoErr)
		return newErrorResponse(r, requestID, statusCode, errorCode, text, err)
	}

	// not expected - return an internal error response and log the unmapped error
	reqLogger := logger.ContextRequestLogger(r.Context())
	reqLogger.Error("BUG: Unmapped error type in MapErrorToResponse",
		slog.String("error_type", fmt.Sprintf("%T", err)),
		slog.String("error", err.Error()),
		slog.String("request_id", requestID),
	)
	return newErrorResponse(r, requestID, http.StatusInternalServerError, ErrCodeInternalError, "Internal Error", err)
}

func mapAPIError(err *APIError) (int, ErrorCode, string) {
	switch err.Code() {
	case ErrCodeMalformedRequest:
		return http.StatusBadRequest, err.Code(), "Malformed request"
	case ErrCodeInvalidDocument:
		return http.StatusBadRequest, err.Code(), "Invalid document"
	case ErrCodeDocumentNotFound:
		return http.StatusNotFound, err.Code(), "Document not found"
	case ErrCodeRateLimitExceeded:
		return http.StatusTooManyRequests, err.Code(), "Rate limit exceeded"
	case ErrCodeRequestTooLarge:
		return http.StatusRequestEntityTooLarge, err.Code(), "Request too large"
	case ErrCodeStoreUnavailable:
		return http.StatusServiceUnavailable, err.Code(), "Record store unavailable"
	default:
		return http.StatusInternalServerError, ErrCodeInternalError, "Internal Error"
	}
}

func mapProvenanceError(err *provenance.ProvenanceError) (int, ErrorCode, string) {
	switch err.Code() {
	case provenance.ErrCodeMalformedDocument:
		return http.StatusBadRequest, ErrCodeInvalidDocument, "Invalid document"
	case provenance.ErrCodeRecordNotFound, provenance.ErrCodeInvalidIdentifier:
		return http.StatusNotFound, ErrCodeDocumentNotFound, "Document not found"
	case provenance.ErrCodeStoreUnavailable:
		return http.StatusServiceUnavailable, ErrCodeStoreUnavailable, "Record store unavailable"
	case provenance.ErrCodeSignature:
		return http.StatusInternalServerError, ErrCodeSignatureError, "Signing error"
	default:
		return http.StatusInternalServerError, ErrCodeInternalError, "Internal Error"
	}
}

func mapCryptoError(err *crypto.CryptoError) (int, ErrorCode, string) {
	switch err.Code() {
	case crypto.ErrCodeValidation:
		return http.StatusBadRequest, ErrCodeMalformedRequest, "Malformed request"
	case crypto.ErrCodeInvalidSignature, crypto.ErrCodeCertificate, crypto.ErrCodeKeyManagement:
		return http.StatusInternalServerError, ErrCodeSignatureError, "Signing error"
	default:
		return http.StatusInternalServerError, ErrCodeInternalError, "Internal Error"
	}
}

// newErrorResponse builds the response. The error text is only returned for client errors.
func newErrorResponse(r *http.Request, requestID string, statusCode int, errorCode ErrorCode, errorCodeText string, err error) *ErrorResponse {
	message := errorCodeText
	if statusCode < http.StatusInternalServerError {
		message = err.Error()
	}

	return &ErrorResponse{
		HTTPMethod:                   r.Method,
		RequestURI:                   r.RequestURI,
		StatusCode:                   statusCode,
		StatusCodeText:               http.StatusText(statusCode),
		StatusCodeMessage:            errorCodeText,
		ProviderCorrelationReference: requestID,
		ErrorDateTime:                time.Now().UTC().Format(time.RFC3339),
		Errors: []DetailedError{
			{
				ErrorCode:        errorCode,
				ErrorCodeText:    errorCodeText,
				ErrorCodeMessage: message,
			},
		},
	}
}
