package api

import (
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/radwayousryyy/InkCrypt/internal/provenance"
)

func TestNewVerifyResponse(t *testing.T) {
	id := uuid.MustParse("0b8f6c1e-5d0a-4c4e-9a57-3e0d6f3b8a21")
	boundAt := time.Date(2025, 1, 28, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		verdict    provenance.Verdict
		wantFields []string
		noFields   []string
	}{
		{
			name:       "valid",
			verdict:    provenance.ValidDocument{Identifier: id, BoundAt: boundAt, SignerIdentity: "InkCrypt Signer"},
			wantFields: []string{"valid", "reason", "confidence", "uuid", "signed_at", "signer"},
		},
		{
			name:       "revoked",
			verdict:    provenance.RevokedDocument{Identifier: id},
			wantFields: []string{"valid", "reason", "confidence"},
			noFields:   []string{"uuid", "signed_at", "signer"},
		},
		{
			name:       "no identity",
			verdict:    provenance.NoIdentity{},
			wantFields: []string{"valid", "reason", "confidence"},
			noFields:   []string{"uuid", "signed_at", "signer"},
		},
		{
			name:       "error",
			verdict:    provenance.VerificationFailure{Err: errors.New("boom")},
			wantFields: []string{"valid", "reason", "confidence"},
			noFields:   []string{"uuid"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := NewVerifyResponse(tt.verdict)
			if resp.Valid != tt.verdict.Valid() || resp.Reason != tt.verdict.Reason() ||
				resp.Confidence != string(tt.verdict.Confidence()) {
				t.Errorf("response %+v does not match verdict", resp)
			}

			data, err := json.Marshal(resp)
			if err != nil {
				t.Fatalf("json.Marshal() error: %v", err)
			}
			var fields map[string]any
			if err := json.Unmarshal(data, &fields); err != nil {
				t.Fatalf("json.Unmarshal() error: %v", err)
			}
			for _, f := range tt.wantFields {
				if _, ok := fields[f]; !ok {
					t.Errorf("field %q missing from %s", f, data)
				}
			}
			for _, f := range tt.noFields {
				if _, ok := fields[f]; ok {
					t.Errorf("field %q should be omitted from %s", f, data)
				}
			}
		})
	}

	resp := NewVerifyResponse(provenance.ValidDocument{Identifier: id, BoundAt: boundAt, SignerIdentity: "Signer"})
	if resp.UUID != id.String() || !resp.SignedAt.Equal(boundAt) {
		t.Errorf("valid response = %+v", resp)
	}
}

func TestRespondWithPDF(t *testing.T) {
	tests := []struct {
		filename string
		want     string
	}{
		{"signed_report.pdf", "attachment; filename=signed_report.pdf"},
		{"signed_my report.pdf", `attachment; filename="signed_my report.pdf"`},
	}
	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			rr := httptest.NewRecorder()
			RespondWithPDF(rr, tt.filename, []byte("%PDF-1.7"))

			if got := rr.Header().Get("Content-Disposition"); got != tt.want {
				t.Errorf("Content-Disposition = %q, want %q", got, tt.want)
			}
			if got := rr.Header().Get("Content-Type"); got != "application/pdf" {
				t.Errorf("Content-Type = %q", got)
			}
			if rr.Body.String() != "%PDF-1.7" {
				t.Errorf("body = %q", rr.Body.String())
			}
		})
	}
}
