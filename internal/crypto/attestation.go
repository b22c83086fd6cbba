package crypto

import (
	"encoding/json"
	"fmt"
)

// Attestation is the payload signed when a document record is created.
// It binds the content fingerprint to the signer identity so that a record whose
// fingerprint or signer has been rewritten in the store no longer verifies.
type Attestation struct {
	Fingerprint string `json:"fingerprint"`
	Signer      string `json:"signer"`
}

// canonicalPayload returns the RFC 8785 form of the attestation
func (a Attestation) canonicalPayload() ([]byte, error) {
	if !IsFingerprint(a.Fingerprint) {
		return nil, NewValidationError(fmt.Sprintf("invalid fingerprint %q", a.Fingerprint))
	}
	if a.Signer == "" {
		return nil, NewValidationError("signer is required")
	}

	data, err := json.Marshal(a)
	if err != nil {
		return nil, WrapInternalError(err, "failed to marshal attestation")
	}
	return CanonicalizeJSON(data)
}

// parseAttestation decodes a verified JWS payload
func parseAttestation(payload []byte) (Attestation, error) {
	var a Attestation
	if err := json.Unmarshal(payload, &a); err != nil {
		return Attestation{}, WrapSignatureError(err, "attestation payload is not valid JSON")
	}
	return a, nil
}
