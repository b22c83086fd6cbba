package crypto

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

// file names used for the signer key material in the keys directory
const (
	PrivateKeyFile  = "signer.private.jwk"
	PublicKeyFile   = "signer.public.jwk"
	CertificateFile = "signer.crt"
)

// KeyManagerConfig describes where the signer key material lives and how to create it
type KeyManagerConfig struct {
	KeysDir      string
	KeyType      KeyType
	RSAKeySize   int
	CommonName   string
	Organization string
	Validity     time.Duration
}

// GenerateSigningIdentity creates a new key pair and self-signed certificate
func GenerateSigningIdentity(cfg KeyManagerConfig) (*SigningIdentity, error) {
	signer, err := GenerateKeyPair(cfg.KeyType, cfg.RSAKeySize)
	if err != nil {
		return nil, err
	}

	cert, err := CreateSelfSignedCertificate(signer, CertificateRequest{
		CommonName:   cfg.CommonName,
		Organization: cfg.Organization,
		Validity:     cfg.Validity,
	})
	if err != nil {
		return nil, err
	}

	return NewSigningIdentity(signer, cert)
}

// SaveSigningIdentity writes the private key, public key and certificate to dir.
// dir is created (0700) if it does not exist.
func SaveSigningIdentity(id *SigningIdentity, dir string) error {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return WrapKeyManagementError(err, fmt.Sprintf("failed to create keys directory %s", dir))
	}
	if err := SaveKeyToJWKFile(id.signer, id.keyID, dir, PrivateKeyFile); err != nil {
		return err
	}
	if err := SaveKeyToJWKFile(id.signer.Public(), id.keyID, dir, PublicKeyFile); err != nil {
		return err
	}
	return SaveCertificateToPEMFile(id.cert, dir, CertificateFile)
}

// LoadSigningIdentity reads the signer key and certificate from dir
func LoadSigningIdentity(dir string) (*SigningIdentity, error) {
	signer, keyID, err := ReadPrivateKeyFromJWKFile(dir, PrivateKeyFile)
	if err != nil {
		return nil, err
	}

	cert, err := ReadCertificateFromPEMFile(dir, CertificateFile)
	if err != nil {
		return nil, err
	}

	id, err := NewSigningIdentity(signer, cert)
	if err != nil {
		return nil, err
	}
	if keyID != "" && keyID != id.keyID {
		return nil, NewKeyManagementError(fmt.Sprintf("%s kid %q does not match the key thumbprint %q", PrivateKeyFile, keyID, id.keyID))
	}
	return id, nil
}

// EnsureSigningIdentity loads the signing identity from cfg.KeysDir, creating the key pair
// and certificate on first use. It is idempotent: once the files exist they are always reused.
//
// A partially populated keys directory (for example a certificate without its private key)
// is an error rather than a reason to generate new material.
func EnsureSigningIdentity(cfg KeyManagerConfig, logger *slog.Logger) (*SigningIdentity, error) {
	privateExists, err := fileExists(filepath.Join(cfg.KeysDir, PrivateKeyFile))
	if err != nil {
		return nil, err
	}
	certExists, err := fileExists(filepath.Join(cfg.KeysDir, CertificateFile))
	if err != nil {
		return nil, err
	}

	switch {
	case privateExists && certExists:
		id, err := LoadSigningIdentity(cfg.KeysDir)
		if err != nil {
			return nil, err
		}
		if err := id.CheckCertificateValidity(time.Now()); err != nil {
			return nil, WrapKeyManagementError(err, "signer certificate cannot be used")
		}
		logger.Info("loaded signing identity",
			slog.String("signer", id.SignerIdentity()),
			slog.String("kid", id.KeyID()),
			slog.String("alg", string(id.Algorithm())),
			slog.Time("cert_not_after", id.Certificate().NotAfter),
		)
		return id, nil

	case privateExists != certExists:
		return nil, NewKeyManagementError(fmt.Sprintf("keys directory %s is incomplete: both %s and %s are required",
			cfg.KeysDir, PrivateKeyFile, CertificateFile))
	}

	id, err := GenerateSigningIdentity(cfg)
	if err != nil {
		return nil, err
	}
	if err := SaveSigningIdentity(id, cfg.KeysDir); err != nil {
		return nil, err
	}

	logger.Warn("generated new signing identity",
		slog.String("keys_dir", cfg.KeysDir),
		slog.String("signer", id.SignerIdentity()),
		slog.String("kid", id.KeyID()),
		slog.String("alg", string(id.Algorithm())),
	)
	return id, nil
}

func fileExists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, WrapKeyManagementError(err, fmt.Sprintf("failed to stat %s", path))
}
