//go:build integration

package integration

import (
	"crypto/ed25519"
	"crypto/rsa"
	"io"
	"net/http"
	"testing"

	"github.com/lestrrat-go/jwx/v3/jwk"

	"github.com/radwayousryyy/InkCrypt/internal/crypto"
)

func TestJWKSEndpoint(t *testing.T) {

	testEnv := startInProcessServer(t)
	defer testEnv.shutdown()

	// the jwk returned by the endpoint should match the public key written to the keys directory
	expectedKey, err := crypto.ReadPublicKeyFromJWKFile(testEnv.cfg.KeysDir, crypto.PublicKeyFile)
	if err != nil {
		t.Fatalf("failed to read public key file: %v", err)
	}
	expectedKeyID := testEnv.identity.KeyID()

	jwksURL := testEnv.baseURL + "/.well-known/jwks.json"

	resp, err := http.Get(jwksURL)
	if err != nil {
		t.Fatalf("failed to fetch JWKS endpoint: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected status 200, got %d", resp.StatusCode)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType != "application/json" {
		t.Errorf("expected Content-Type application/json, got %s", contentType)
	}

	// Read and parse as JWKS
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read response body: %v", err)
	}

	set, err := jwk.Parse(body)
	if err != nil {
		t.Fatalf("failed to parse JWKS: %v", err)
	}

	if set.Len() != 1 {
		t.Fatalf("expected 1 key in JWKS, got %d", set.Len())
	}

	key, _ := set.Key(0)

	keyID, ok := key.KeyID()
	if !ok || keyID != expectedKeyID {
		t.Errorf("expected key id %s, got %s", expectedKeyID, keyID)
	}

	if keyUsage, ok := key.KeyUsage(); !ok || keyUsage == "" {
		t.Error("use is empty")
	}

	if alg, ok := key.Algorithm(); !ok || alg.String() != string(testEnv.identity.Algorithm()) {
		t.Errorf("expected alg %s, got %v", testEnv.identity.Algorithm(), alg)
	}

	var rawKey any
	if err := jwk.Export(key, &rawKey); err != nil {
		t.Fatalf("failed to convert to raw key: %v", err)
	}

	switch rawKey.(type) {
	case *rsa.PublicKey, ed25519.PublicKey:
	default:
		t.Fatalf("not a valid RSA or Ed25519 public key: %T", rawKey)
	}

	if !crypto.PublicKeysEqual(rawKey, expectedKey) {
		t.Error("published key does not match the key in the keys directory")
	}
}
