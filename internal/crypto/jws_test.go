package crypto

import (
	"crypto"
	"crypto/x509"
	"strings"
	"testing"
	"time"
)

func newTestSigner(t *testing.T, keyType KeyType) (crypto.Signer, *x509.Certificate) {
	t.Helper()

	signer, err := GenerateKeyPair(keyType, 2048)
	if err != nil {
		t.Fatalf("GenerateKeyPair() error: %v", err)
	}
	cert, err := CreateSelfSignedCertificate(signer, CertificateRequest{
		CommonName:   "Test Signer",
		Organization: "InkCrypt Test",
		Validity:     time.Hour,
	})
	if err != nil {
		t.Fatalf("CreateSelfSignedCertificate() error: %v", err)
	}
	return signer, cert
}

func TestSignAndVerifyJWS(t *testing.T) {
	payload, err := CanonicalizeJSON([]byte(`{ "message": "Hello, World!" }`))
	if err != nil {
		t.Fatalf("could not canonicalize test payload: %v", err)
	}

	for _, keyType := range []KeyType{KeyTypeEd25519, KeyTypeRSA} {
		t.Run(string(keyType), func(t *testing.T) {
			signer, cert := newTestSigner(t, keyType)
			otherSigner, otherCert := newTestSigner(t, keyType)

			jws, err := SignWithX5C(payload, signer, "kid-1", []*x509.Certificate{cert})
			if err != nil {
				t.Fatalf("SignWithX5C() error: %v", err)
			}

			verified, err := VerifyJWS(jws, signer.Public())
			if err != nil {
				t.Fatalf("VerifyJWS() error: %v", err)
			}
			if string(verified.Payload) != string(payload) {
				t.Errorf("payload = %s, want %s", verified.Payload, payload)
			}
			if verified.KeyID != "kid-1" {
				t.Errorf("kid = %q, want kid-1", verified.KeyID)
			}
			wantAlg, _ := keyType.Algorithm()
			if verified.Algorithm != wantAlg {
				t.Errorf("alg = %q, want %q", verified.Algorithm, wantAlg)
			}
			if len(verified.CertChain) != 1 || !verified.CertChain[0].Equal(cert) {
				t.Error("x5c chain does not contain the signer certificate")
			}

			if _, err := VerifyJWS(jws, otherSigner.Public()); err == nil {
				t.Error("expected verification with the wrong key to fail")
			}

			// signature is valid but the x5c certificate belongs to another key
			mismatched, err := SignWithX5C(payload, signer, "kid-1", []*x509.Certificate{otherCert})
			if err != nil {
				t.Fatalf("SignWithX5C() error: %v", err)
			}
			if _, err := VerifyJWS(mismatched, signer.Public()); err == nil {
				t.Error("expected x5c key mismatch to be rejected")
			}
		})
	}
}

func TestSignWithX5CValidation(t *testing.T) {
	signer, cert := newTestSigner(t, KeyTypeEd25519)

	if _, err := SignWithX5C([]byte("{}"), signer, "", []*x509.Certificate{cert}); err == nil {
		t.Error("expected error for empty key ID")
	}
	if _, err := SignWithX5C([]byte("{}"), signer, "kid", nil); err == nil {
		t.Error("expected error for missing certificate chain")
	}
}

func TestParseX5CFromJWS(t *testing.T) {
	tests := []struct {
		name    string
		jws     string
		wantErr string
	}{
		{
			name:    "not a JWS",
			jws:     "abc",
			wantErr: "invalid JWS format",
		},
		{
			name:    "invalid base64 header",
			jws:     "!invalidbase64!.payload.signature",
			wantErr: "failed to decode JWS header",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseX5CFromJWS(tt.jws)
			if err == nil {
				t.Fatalf("expected error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not contain %q", err.Error(), tt.wantErr)
			}
		})
	}
}
