package crypto

import (
	"crypto"
	"crypto/ed25519"
	"crypto/rsa"
	"crypto/x509"
	"fmt"
	"time"

	"github.com/lestrrat-go/jwx/v3/jwk"
)

// SigningIdentity is the key and certificate InkCrypt signs record attestations with.
// It is safe for concurrent use.
type SigningIdentity struct {
	signer    crypto.Signer
	keyID     string
	algorithm Algorithm
	cert      *x509.Certificate
	jwks      jwk.Set
}

// NewSigningIdentity pairs a signer key with its certificate.
// The certificate must hold the signer's public key.
func NewSigningIdentity(signer crypto.Signer, cert *x509.Certificate) (*SigningIdentity, error) {
	if signer == nil || cert == nil {
		return nil, NewValidationError("signer and certificate are required")
	}
	if err := ValidateX5CMatchesKey([]*x509.Certificate{cert}, signer.Public()); err != nil {
		return nil, WrapKeyManagementError(err, "signer certificate does not match the signer key")
	}

	keyID, err := GenerateKeyID(signer.Public())
	if err != nil {
		return nil, err
	}

	var algorithm Algorithm
	switch signer.(type) {
	case ed25519.PrivateKey:
		algorithm = AlgorithmEd25519
	case *rsa.PrivateKey:
		algorithm = AlgorithmRSA
	default:
		return nil, NewValidationError(fmt.Sprintf("unsupported signing key type: %T", signer))
	}

	jwks, err := NewPublicJWKSet(signer, keyID)
	if err != nil {
		return nil, err
	}

	return &SigningIdentity{
		signer:    signer,
		keyID:     keyID,
		algorithm: algorithm,
		cert:      cert,
		jwks:      jwks,
	}, nil
}

// SignerIdentity is the display name of the signer (certificate common name)
func (s *SigningIdentity) SignerIdentity() string { return SignerIdentity(s.cert) }

func (s *SigningIdentity) KeyID() string                  { return s.keyID }
func (s *SigningIdentity) Algorithm() Algorithm           { return s.algorithm }
func (s *SigningIdentity) Certificate() *x509.Certificate { return s.cert }
func (s *SigningIdentity) PublicKey() crypto.PublicKey    { return s.signer.Public() }

// JWKSet returns the public key set served at /.well-known/jwks.json
func (s *SigningIdentity) JWKSet() jwk.Set { return s.jwks }

// Attest signs the attestation for a new record and returns the JWS
func (s *SigningIdentity) Attest(fingerprint string) (string, error) {
	payload, err := Attestation{Fingerprint: fingerprint, Signer: s.SignerIdentity()}.canonicalPayload()
	if err != nil {
		return "", err
	}
	return SignWithX5C(payload, s.signer, s.keyID, []*x509.Certificate{s.cert})
}

// VerifyAttestation checks that jwsString is an attestation made by this identity
// for exactly this fingerprint and signer.
//
// The certificate's validity period is not checked: records signed before the
// certificate expired remain verifiable.
func (s *SigningIdentity) VerifyAttestation(jwsString, fingerprint, signer string) error {
	verified, err := VerifyJWS(jwsString, s.signer.Public())
	if err != nil {
		return err
	}
	if len(verified.CertChain) == 0 {
		return NewSignatureError("attestation has no x5c certificate chain")
	}

	attestation, err := parseAttestation(verified.Payload)
	if err != nil {
		return err
	}
	if !FingerprintsEqual(attestation.Fingerprint, fingerprint) {
		return NewSignatureError("attested fingerprint does not match the record")
	}
	if attestation.Signer != signer {
		return NewSignatureError(fmt.Sprintf("attested signer %q does not match the record signer %q", attestation.Signer, signer))
	}
	return nil
}

// CheckCertificateValidity returns an error when the signer certificate is not valid at t
func (s *SigningIdentity) CheckCertificateValidity(t time.Time) error {
	return CheckValidity(s.cert, t)
}
