// JWS compact serialization signing and verification.
//
// Signing uses github.com/go-jose/go-jose/v4. The kid and x5c headers are part of the
// protected header and therefore covered by the signature.
package crypto

import (
	"crypto"
	"crypto/ed25519"
	"crypto/rsa"
	"crypto/x509"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/go-jose/go-jose/v4"
)

var supportedAlgorithms = []jose.SignatureAlgorithm{jose.EdDSA, jose.RS256}

// SignWithX5C signs payload with an Ed25519 or RSA key and returns a JWS compact serialization
// whose header carries kid and the x5c certificate chain.
func SignWithX5C(payload []byte, signer crypto.Signer, keyID string, certChain []*x509.Certificate) (string, error) {
	if keyID == "" {
		return "", NewValidationError("keyID is required")
	}
	if len(certChain) == 0 {
		return "", NewValidationError("certificate chain is required")
	}

	var signingKey jose.SigningKey
	switch k := signer.(type) {
	case ed25519.PrivateKey:
		signingKey = jose.SigningKey{Algorithm: jose.EdDSA, Key: k}
	case *rsa.PrivateKey:
		signingKey = jose.SigningKey{Algorithm: jose.RS256, Key: k}
	default:
		return "", NewValidationError(fmt.Sprintf("unsupported signing key type: %T", signer))
	}

	opts := (&jose.SignerOptions{}).
		WithHeader("kid", keyID).
		WithHeader("x5c", CertChainToX5C(certChain))

	joseSigner, err := jose.NewSigner(signingKey, opts)
	if err != nil {
		return "", WrapInternalError(err, "failed to create signer")
	}

	jws, err := joseSigner.Sign(payload)
	if err != nil {
		return "", WrapInternalError(err, "failed to sign payload")
	}

	compact, err := jws.CompactSerialize()
	if err != nil {
		return "", WrapInternalError(err, "failed to serialize JWS")
	}

	return compact, nil
}

// VerifiedJWS is the result of a successful JWS verification
type VerifiedJWS struct {
	Payload   []byte
	KeyID     string
	Algorithm Algorithm
	CertChain []*x509.Certificate
}

// VerifyJWS verifies a compact JWS against publicKey (ed25519.PublicKey or *rsa.PublicKey).
// The x5c chain in the header, when present, must hold the same public key.
func VerifyJWS(jwsString string, publicKey any) (*VerifiedJWS, error) {
	jws, err := jose.ParseSigned(jwsString, supportedAlgorithms)
	if err != nil {
		return nil, WrapSignatureError(err, "failed to parse JWS")
	}
	if len(jws.Signatures) != 1 {
		return nil, NewSignatureError(fmt.Sprintf("expected exactly one signature, got %d", len(jws.Signatures)))
	}

	payload, err := jws.Verify(publicKey)
	if err != nil {
		return nil, WrapSignatureError(err, "failed to verify JWS")
	}

	certChain, err := ParseX5CFromJWS(jwsString)
	if err != nil {
		return nil, err
	}

	header := jws.Signatures[0].Protected
	result := &VerifiedJWS{
		Payload:   payload,
		KeyID:     header.KeyID,
		Algorithm: Algorithm(header.Algorithm),
		CertChain: certChain,
	}

	if len(result.CertChain) > 0 {
		if err := ValidateX5CMatchesKey(result.CertChain, publicKey); err != nil {
			return nil, err
		}
	}

	return result, nil
}

// ParseX5CFromJWS extracts the X.509 certificate chain from a JWS token's x5c header
// without validating the signature.
//
// Returns nil if x5c is not present.
func ParseX5CFromJWS(jwsString string) ([]*x509.Certificate, error) {
	parts := strings.Split(jwsString, ".")
	if len(parts) != 3 {
		return nil, NewValidationError(fmt.Sprintf("invalid JWS format: expected 3 parts, got %d", len(parts)))
	}

	headerBytes, err := base64.RawURLEncoding.DecodeString(parts[0])
	if err != nil {
		return nil, WrapValidationError(err, "failed to decode JWS header")
	}

	var header struct {
		X5C []string `json:"x5c"`
	}
	if err := json.Unmarshal(headerBytes, &header); err != nil {
		return nil, WrapValidationError(err, "failed to parse JWS header JSON")
	}

	if len(header.X5C) == 0 {
		return nil, nil
	}

	certs := make([]*x509.Certificate, 0, len(header.X5C))
	for i, certStr := range header.X5C {
		// NB: standard encoding, not URL encoding
		certDER, err := base64.StdEncoding.DecodeString(certStr)
		if err != nil {
			return nil, WrapValidationError(err, fmt.Sprintf("failed to decode certificate %d", i))
		}

		cert, err := x509.ParseCertificate(certDER)
		if err != nil {
			return nil, WrapCertificateError(err, fmt.Sprintf("failed to parse certificate %d", i))
		}

		certs = append(certs, cert)
	}

	return certs, nil
}
