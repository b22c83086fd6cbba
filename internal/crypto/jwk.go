// JWK (JSON Web Key) helpers, RFC 7517.
//
// Signer keys are stored on disk as single-key JWK sets and the public key is
// published at /.well-known/jwks.json so that records can be checked independently.
package crypto

import (
	"crypto"
	"crypto/ed25519"
	"crypto/rsa"
	"fmt"

	"github.com/lestrrat-go/jwx/v3/jwa"
	"github.com/lestrrat-go/jwx/v3/jwk"
)

// KeyToJWK converts a raw Ed25519 or RSA key (public or private) to a JWK
// with the kid, alg and use=sig fields set.
func KeyToJWK(rawKey any, keyID string) (jwk.Key, error) {
	if rawKey == nil {
		return nil, NewValidationError("key is nil")
	}
	if keyID == "" {
		return nil, NewValidationError("keyID is required")
	}

	var alg jwa.SignatureAlgorithm
	switch rawKey.(type) {
	case ed25519.PrivateKey, ed25519.PublicKey:
		alg = jwa.EdDSA()
	case *rsa.PrivateKey, *rsa.PublicKey:
		alg = jwa.RS256()
	default:
		return nil, NewValidationError(fmt.Sprintf("unsupported key type: %T", rawKey))
	}

	key, err := jwk.Import(rawKey)
	if err != nil {
		return nil, WrapKeyManagementError(err, "failed to create JWK")
	}
	if err := key.Set(jwk.KeyIDKey, keyID); err != nil {
		return nil, WrapInternalError(err, "failed to set key ID")
	}
	if err := key.Set(jwk.AlgorithmKey, alg); err != nil {
		return nil, WrapInternalError(err, "failed to set algorithm")
	}
	if err := key.Set(jwk.KeyUsageKey, jwk.ForSignature); err != nil {
		return nil, WrapInternalError(err, "failed to set key usage")
	}

	return key, nil
}

// JWKToKey exports a JWK to its raw Go key (ed25519.PrivateKey, *rsa.PublicKey etc)
func JWKToKey(key jwk.Key) (any, error) {
	if key == nil {
		return nil, NewValidationError("jwk is nil")
	}

	var raw any
	if err := jwk.Export(key, &raw); err != nil {
		return nil, WrapKeyManagementError(err, "failed to export JWK")
	}
	return raw, nil
}

// GenerateKeyID generates a key ID from a public key using its RFC 7638 thumbprint.
// Returns the first 16 characters of the hex-encoded SHA-256 thumbprint.
func GenerateKeyID(publicKey any) (string, error) {
	switch k := publicKey.(type) {
	case ed25519.PublicKey:
		if len(k) != ed25519.PublicKeySize {
			return "", NewValidationError("invalid Ed25519 public key length")
		}
	case *rsa.PublicKey:
		if k == nil {
			return "", NewValidationError("public key is nil")
		}
	default:
		return "", NewValidationError(fmt.Sprintf("unsupported public key type: %T", publicKey))
	}

	jwkKey, err := jwk.Import(publicKey)
	if err != nil {
		return "", WrapKeyManagementError(err, "failed to import key")
	}

	thumbprint, err := jwkKey.Thumbprint(crypto.SHA256)
	if err != nil {
		return "", WrapInternalError(err, "failed to generate thumbprint")
	}

	return fmt.Sprintf("%x", thumbprint)[:16], nil
}

// NewPublicJWKSet returns a JWK set holding the public half of signer,
// suitable for serving from /.well-known/jwks.json
func NewPublicJWKSet(signer crypto.Signer, keyID string) (jwk.Set, error) {
	key, err := KeyToJWK(signer.Public(), keyID)
	if err != nil {
		return nil, err
	}
	set := jwk.NewSet()
	if err := set.AddKey(key); err != nil {
		return nil, WrapInternalError(err, "failed to add key to JWK set")
	}
	return set, nil
}
