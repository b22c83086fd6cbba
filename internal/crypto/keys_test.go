package crypto

import (
	"crypto/ed25519"
	"crypto/rsa"
	"os"
	"path/filepath"
	"testing"
)

// test that only valid RSA key sizes are accepted
func TestGenerateRSAKeyPair(t *testing.T) {
	tests := []struct {
		name    string
		bits    int
		wantErr bool
	}{
		{
			name:    "generate 2048-bit key",
			bits:    2048,
			wantErr: false,
		},
		{
			name:    "generate key with too small size",
			bits:    1024,
			wantErr: true,
		},
		{
			name:    "generate key with invalid size",
			bits:    2500,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			privateKey, err := GenerateRSAKeyPair(tt.bits)
			if tt.wantErr {
				if err == nil {
					t.Error("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if privateKey.N.BitLen() != tt.bits {
				t.Errorf("key bit length = %d, want %d", privateKey.N.BitLen(), tt.bits)
			}
		})
	}
}

// generate key pairs, save the private and public keys to JWK files, read them back and compare
func TestSaveAndReadJWKFiles(t *testing.T) {
	tests := []struct {
		name    string
		keyType KeyType
	}{
		{"ed25519", KeyTypeEd25519},
		{"rsa", KeyTypeRSA},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()

			signer, err := GenerateKeyPair(tt.keyType, 2048)
			if err != nil {
				t.Fatalf("GenerateKeyPair() error: %v", err)
			}
			keyID, err := GenerateKeyID(signer.Public())
			if err != nil {
				t.Fatalf("GenerateKeyID() error: %v", err)
			}
			if len(keyID) != 16 {
				t.Errorf("key ID length = %d, want 16", len(keyID))
			}

			if err := SaveKeyToJWKFile(signer, keyID, dir, "private.jwk"); err != nil {
				t.Fatalf("SaveKeyToJWKFile(private) error: %v", err)
			}
			if err := SaveKeyToJWKFile(signer.Public(), keyID, dir, "public.jwk"); err != nil {
				t.Fatalf("SaveKeyToJWKFile(public) error: %v", err)
			}

			info, err := os.Stat(filepath.Join(dir, "private.jwk"))
			if err != nil {
				t.Fatalf("stat private key: %v", err)
			}
			if info.Mode().Perm() != 0600 {
				t.Errorf("private key permissions = %o, want 600", info.Mode().Perm())
			}

			loaded, loadedKeyID, err := ReadPrivateKeyFromJWKFile(dir, "private.jwk")
			if err != nil {
				t.Fatalf("ReadPrivateKeyFromJWKFile() error: %v", err)
			}
			if loadedKeyID != keyID {
				t.Errorf("kid = %q, want %q", loadedKeyID, keyID)
			}
			if !PublicKeysEqual(loaded.Public(), signer.Public()) {
				t.Error("loaded private key does not match the original")
			}

			pub, err := ReadPublicKeyFromJWKFile(dir, "public.jwk")
			if err != nil {
				t.Fatalf("ReadPublicKeyFromJWKFile() error: %v", err)
			}
			switch pub.(type) {
			case ed25519.PublicKey:
				if tt.keyType != KeyTypeEd25519 {
					t.Errorf("got Ed25519 public key for %s", tt.keyType)
				}
			case *rsa.PublicKey:
				if tt.keyType != KeyTypeRSA {
					t.Errorf("got RSA public key for %s", tt.keyType)
				}
			}
			if !PublicKeysEqual(pub, signer.Public()) {
				t.Error("loaded public key does not match the original")
			}
		})
	}
}

func TestReadPrivateKeyFromPublicJWKFile(t *testing.T) {
	dir := t.TempDir()
	signer, err := GenerateEd25519KeyPair()
	if err != nil {
		t.Fatalf("GenerateEd25519KeyPair() error: %v", err)
	}
	if err := SaveKeyToJWKFile(signer.Public(), "kid", dir, "public.jwk"); err != nil {
		t.Fatalf("SaveKeyToJWKFile() error: %v", err)
	}

	if _, _, err := ReadPrivateKeyFromJWKFile(dir, "public.jwk"); err == nil {
		t.Fatal("expected error reading a public key as a private key")
	}
}

func TestKeyToJWKRejectsBadInput(t *testing.T) {
	signer, err := GenerateEd25519KeyPair()
	if err != nil {
		t.Fatalf("GenerateEd25519KeyPair() error: %v", err)
	}

	if _, err := KeyToJWK(signer, ""); err == nil {
		t.Error("expected error for empty key ID")
	}
	if _, err := KeyToJWK("not a key", "kid"); err == nil {
		t.Error("expected error for unsupported key type")
	}
}
