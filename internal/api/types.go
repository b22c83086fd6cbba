package api

import (
	"mime"
	"time"

	"github.com/radwayousryyy/InkCrypt/internal/provenance"
)

// IdentifierHeader carries the identifier assigned to a signed document
const IdentifierHeader = "X-InkCrypt-UUID"

// VerifyResponse is returned by POST /verify
type VerifyResponse struct {
	Valid      bool   `json:"valid" example:"true"`
	Reason     string `json:"reason" example:"Document is authentic"`
	Confidence string `json:"confidence" enums:"VALID,INVALID,TAMPERED,REVOKED,ERROR" example:"VALID"`

	// set for VALID verdicts only
	UUID     string     `json:"uuid,omitempty" example:"0b8f6c1e-5d0a-4c4e-9a57-3e0d6f3b8a21"`
	SignedAt *time.Time `json:"signed_at,omitempty" example:"2025-01-28T10:00:00Z"`
	Signer   string     `json:"signer,omitempty" example:"InkCrypt Signer"`
}

// NewVerifyResponse converts a verdict to its wire form
func NewVerifyResponse(verdict provenance.Verdict) VerifyResponse {
	resp := VerifyResponse{
		Valid:      verdict.Valid(),
		Reason:     verdict.Reason(),
		Confidence: string(verdict.Confidence()),
	}

	if valid, ok := verdict.(provenance.ValidDocument); ok {
		signedAt := valid.BoundAt.UTC()
		resp.UUID = valid.Identifier.String()
		resp.SignedAt = &signedAt
		resp.Signer = valid.SignerIdentity
	}
	return resp
}

// RevokeResponse is returned by POST /revoke
type RevokeResponse struct {
	Success bool   `json:"success" example:"true"`
	Message string `json:"message" example:"Document revoked"`
}

// MessageResponse is returned by GET /
type MessageResponse struct {
	Message string `json:"message" example:"InkCrypt API is running"`
}

// ReadinessResponse is returned by GET /health/ready
type ReadinessResponse struct {
	Status string `json:"status" example:"ready"`
	Reason string `json:"reason,omitempty" example:"record store unavailable"`
}

func mimeAttachment(filename string) string {
	return mime.FormatMediaType("attachment", map[string]string{"filename": filename})
}
