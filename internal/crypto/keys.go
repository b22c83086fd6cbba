// Signer key pairs.
//
// Ed25519 is the default key type; RSA (RS256) is supported for deployments that require it.
// Keys are saved as single-key JWK sets. Private key files are written with mode 0600.
// All file access is scoped to the keys directory with os.OpenRoot.
package crypto

import (
	"crypto"
	"crypto/ed25519"
	"crypto/rand"
	"crypto/rsa"
	"encoding/json"
	"fmt"
	"os"

	"github.com/lestrrat-go/jwx/v3/jwk"
)

// GenerateEd25519KeyPair generates a new Ed25519 private key
func GenerateEd25519KeyPair() (ed25519.PrivateKey, error) {
	_, privateKey, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		return nil, WrapKeyManagementError(err, "failed to generate key pair")
	}

	return privateKey, nil
}

// GenerateRSAKeyPair generates a new RSA key pair with the specified bit size
// minimum key size is 2048 bits - key size must be a multiple of 256
func GenerateRSAKeyPair(bits int) (*rsa.PrivateKey, error) {
	if bits < 2048 {
		return nil, NewValidationError("key size must be at least 2048 bits")
	}

	if bits%256 != 0 {
		return nil, NewValidationError("key size should be a multiple of 256")
	}

	privateKey, err := rsa.GenerateKey(rand.Reader, bits)
	if err != nil {
		return nil, WrapKeyManagementError(err, "failed to generate key pair")
	}

	return privateKey, nil
}

// GenerateKeyPair generates a signer key of the given type
func GenerateKeyPair(keyType KeyType, rsaBits int) (crypto.Signer, error) {
	switch keyType {
	case KeyTypeEd25519:
		return GenerateEd25519KeyPair()
	case KeyTypeRSA:
		return GenerateRSAKeyPair(rsaBits)
	default:
		return nil, NewValidationError(fmt.Sprintf("unsupported key type: %s", keyType))
	}
}

// SaveKeyToJWKFile saves an Ed25519 or RSA key to a JWK file in baseDir.
// Private keys are written 0600, public keys 0644. The key is not encrypted.
//
// Parameters:
//   - baseDir: The base directory to scope file access (e.g., "./certs")
//   - filename: The filename within the base directory (e.g., "signer.private.jwk")
func SaveKeyToJWKFile(rawKey any, keyID, baseDir, filename string) error {
	jwkKey, err := KeyToJWK(rawKey, keyID)
	if err != nil {
		return err
	}

	jwkSet := jwk.NewSet()
	if err := jwkSet.AddKey(jwkKey); err != nil {
		return WrapInternalError(err, "failed to add key to JWK set")
	}

	jsonBytes, err := json.MarshalIndent(jwkSet, "", "  ")
	if err != nil {
		return WrapInternalError(err, "failed to marshal JWK set")
	}

	perm := os.FileMode(0644)
	if _, private := rawKey.(crypto.Signer); private {
		perm = 0600
	}

	root, err := os.OpenRoot(baseDir)
	if err != nil {
		return WrapKeyManagementError(err, fmt.Sprintf("failed to open root directory %s", baseDir))
	}
	defer root.Close()

	if err := root.WriteFile(filename, jsonBytes, perm); err != nil {
		return WrapKeyManagementError(err, "failed to write file")
	}

	return nil
}

// readJWKFile reads the first key from the JWK set in baseDir/filename
func readJWKFile(baseDir, filename string) (jwk.Key, error) {
	root, err := os.OpenRoot(baseDir)
	if err != nil {
		return nil, WrapKeyManagementError(err, fmt.Sprintf("failed to open root directory %s", baseDir))
	}
	defer root.Close()

	jsonBytes, err := root.ReadFile(filename)
	if err != nil {
		return nil, WrapKeyManagementError(err, "failed to read file")
	}

	jwkSet, err := jwk.Parse(jsonBytes)
	if err != nil {
		return nil, WrapKeyManagementError(err, "failed to parse JWK set")
	}

	if jwkSet.Len() == 0 {
		return nil, NewKeyManagementError("JWK set is empty")
	}

	jwkKey, ok := jwkSet.Key(0)
	if !ok {
		return nil, NewKeyManagementError("failed to get key from JWK set")
	}
	return jwkKey, nil
}

// ReadPrivateKeyFromJWKFile loads an Ed25519 or RSA private key from a JWK file.
// The returned key id is the JWK's kid.
func ReadPrivateKeyFromJWKFile(baseDir, filename string) (crypto.Signer, string, error) {
	jwkKey, err := readJWKFile(baseDir, filename)
	if err != nil {
		return nil, "", err
	}

	raw, err := JWKToKey(jwkKey)
	if err != nil {
		return nil, "", err
	}

	var signer crypto.Signer
	switch k := raw.(type) {
	case ed25519.PrivateKey:
		signer = k
	case *rsa.PrivateKey:
		signer = k
	default:
		return nil, "", NewKeyManagementError(fmt.Sprintf("%s does not contain an Ed25519 or RSA private key (got %T)", filename, raw))
	}

	keyID, _ := jwkKey.KeyID()
	return signer, keyID, nil
}

// ReadPublicKeyFromJWKFile loads an Ed25519 or RSA public key from a JWK file
func ReadPublicKeyFromJWKFile(baseDir, filename string) (any, error) {
	jwkKey, err := readJWKFile(baseDir, filename)
	if err != nil {
		return nil, err
	}

	raw, err := JWKToKey(jwkKey)
	if err != nil {
		return nil, err
	}

	switch raw.(type) {
	case ed25519.PublicKey, *rsa.PublicKey:
		return raw, nil
	default:
		return nil, NewKeyManagementError(fmt.Sprintf("%s does not contain an Ed25519 or RSA public key (got %T)", filename, raw))
	}
}

// PublicKeysEqual reports whether two Ed25519 or RSA public keys are the same key
func PublicKeysEqual(a, b any) bool {
	type equaler interface {
		Equal(crypto.PublicKey) bool
	}
	ea, ok := a.(equaler)
	if !ok {
		return false
	}
	return ea.Equal(b)
}
