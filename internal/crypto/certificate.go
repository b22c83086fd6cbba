// The signer certificate.
//
// InkCrypt issues itself a self-signed X.509 certificate for the signer key.
// The certificate subject is the signer identity recorded against every document and
// the certificate is carried in the x5c header of each record attestation.
package crypto

import (
	"crypto"
	"crypto/ed25519"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/base64"
	"encoding/pem"
	"fmt"
	"math/big"
	"os"
	"time"
)

// CertificateRequest describes the self-signed signer certificate to create
type CertificateRequest struct {
	CommonName   string
	Organization string
	Validity     time.Duration

	// NotBefore defaults to now
	NotBefore time.Time
}

// CreateSelfSignedCertificate issues a self-signed certificate for signer's public key.
// The certificate is usable for digital signatures only.
func CreateSelfSignedCertificate(signer crypto.Signer, req CertificateRequest) (*x509.Certificate, error) {
	if signer == nil {
		return nil, NewValidationError("signer is nil")
	}
	if req.CommonName == "" {
		return nil, NewValidationError("common name is required")
	}
	if req.Validity <= 0 {
		return nil, NewValidationError("validity must be greater than zero")
	}

	serial, err := rand.Int(rand.Reader, new(big.Int).Lsh(big.NewInt(1), 128))
	if err != nil {
		return nil, WrapInternalError(err, "failed to generate serial number")
	}

	notBefore := req.NotBefore
	if notBefore.IsZero() {
		notBefore = time.Now().UTC().Add(-time.Minute)
	}

	subject := pkix.Name{CommonName: req.CommonName}
	if req.Organization != "" {
		subject.Organization = []string{req.Organization}
	}

	template := &x509.Certificate{
		SerialNumber:          serial,
		Subject:               subject,
		NotBefore:             notBefore,
		NotAfter:              notBefore.Add(req.Validity),
		KeyUsage:              x509.KeyUsageDigitalSignature,
		BasicConstraintsValid: true,
	}

	der, err := x509.CreateCertificate(rand.Reader, template, template, signer.Public(), signer)
	if err != nil {
		return nil, WrapCertificateError(err, "failed to create certificate")
	}

	cert, err := x509.ParseCertificate(der)
	if err != nil {
		return nil, WrapCertificateError(err, "failed to parse created certificate")
	}
	return cert, nil
}

// SignerIdentity returns the display name recorded against signed documents
// (the certificate subject common name, or the full subject when there is none)
func SignerIdentity(cert *x509.Certificate) string {
	if cert.Subject.CommonName != "" {
		return cert.Subject.CommonName
	}
	return cert.Subject.String()
}

// SaveCertificateToPEMFile writes cert to baseDir/filename in PEM format
func SaveCertificateToPEMFile(cert *x509.Certificate, baseDir, filename string) error {
	root, err := os.OpenRoot(baseDir)
	if err != nil {
		return WrapKeyManagementError(err, fmt.Sprintf("failed to open root directory %s", baseDir))
	}
	defer root.Close()

	data := pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: cert.Raw})
	if err := root.WriteFile(filename, data, 0644); err != nil {
		return WrapKeyManagementError(err, "failed to write certificate")
	}
	return nil
}

// ReadCertificateFromPEMFile reads a single X.509 certificate from a PEM file.
// If the file contains multiple certificates, only the first one is returned (this will be the leaf cert).
//
// Parameters:
//   - baseDir: The base directory to scope file access (e.g., "./certs")
//   - filename: The filename within the base directory (e.g., "signer.crt")
func ReadCertificateFromPEMFile(baseDir, filename string) (*x509.Certificate, error) {
	root, err := os.OpenRoot(baseDir)
	if err != nil {
		return nil, WrapKeyManagementError(err, fmt.Sprintf("failed to open root directory %s", baseDir))
	}
	defer root.Close()

	pemData, err := root.ReadFile(filename)
	if err != nil {
		return nil, WrapKeyManagementError(err, "failed to read file")
	}

	certs, err := ParseCertificateChain(pemData)
	if err != nil {
		return nil, err
	}
	return certs[0], nil
}

// ParseCertificateChain parses one or more X.509 certificates from PEM-encoded data.
// The certificates are returned in the order they appear in the PEM data.
func ParseCertificateChain(pemData []byte) ([]*x509.Certificate, error) {
	var certs []*x509.Certificate
	var block *pem.Block
	remaining := pemData

	for {
		block, remaining = pem.Decode(remaining)
		if block == nil {
			break
		}

		// Skip non-certificate blocks
		if block.Type != "CERTIFICATE" {
			continue
		}

		cert, err := x509.ParseCertificate(block.Bytes)
		if err != nil {
			return nil, WrapCertificateError(err, "failed to parse certificate")
		}

		certs = append(certs, cert)
	}

	if len(certs) == 0 {
		return nil, NewValidationError("no certificates found in PEM data")
	}

	return certs, nil
}

// CertChainToX5C converts an X.509 certificate chain to x5c format
// (an array of standard base64 encoded DER certificates)
func CertChainToX5C(certChain []*x509.Certificate) []string {
	x5c := make([]string, len(certChain))
	for i, cert := range certChain {
		x5c[i] = base64.StdEncoding.EncodeToString(cert.Raw)
	}
	return x5c
}

// ValidateX5CMatchesKey checks that the leaf certificate of an x5c chain holds publicKey.
//
// Returns error if:
//   - certChain is empty
//   - publicKey type is unsupported
//   - Public keys don't match
func ValidateX5CMatchesKey(certChain []*x509.Certificate, publicKey any) error {
	if len(certChain) == 0 {
		return NewCertificateError("empty certificate chain")
	}

	certPublicKey := certChain[0].PublicKey

	switch key := publicKey.(type) {
	case ed25519.PublicKey:
		certKey, ok := certPublicKey.(ed25519.PublicKey)
		if !ok {
			return NewCertificateError(fmt.Sprintf("x5c certificate contains %T key, but expected ed25519.PublicKey", certPublicKey))
		}
		if !key.Equal(certKey) {
			return NewCertificateError("x5c certificate public key does not match provided Ed25519 key")
		}

	case *rsa.PublicKey:
		certKey, ok := certPublicKey.(*rsa.PublicKey)
		if !ok {
			return NewCertificateError(fmt.Sprintf("x5c certificate contains %T key, but expected *rsa.PublicKey", certPublicKey))
		}
		if certKey.N.Cmp(key.N) != 0 || certKey.E != key.E {
			return NewCertificateError("x5c certificate public key does not match provided RSA key")
		}

	default:
		return NewValidationError(fmt.Sprintf("unsupported public key type: %T (expected ed25519.PublicKey or *rsa.PublicKey)", publicKey))
	}

	return nil
}

// CheckValidity returns a certificate error if cert is not valid at t
func CheckValidity(cert *x509.Certificate, t time.Time) error {
	if t.Before(cert.NotBefore) {
		return NewCertificateError(fmt.Sprintf("certificate is not valid before %s", cert.NotBefore.Format(time.RFC3339)))
	}
	if t.After(cert.NotAfter) {
		return NewCertificateError(fmt.Sprintf("certificate expired at %s", cert.NotAfter.Format(time.RFC3339)))
	}
	return nil
}
