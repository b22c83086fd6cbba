package crypto

// Algorithm is the JWS algorithm used to sign record attestations
type Algorithm string

const (
	// AlgorithmEd25519: EdDSA with Ed25519 curve (default)
	AlgorithmEd25519 Algorithm = "EdDSA"

	// AlgorithmRSA: RS256 (RSA with SHA-256)
	AlgorithmRSA Algorithm = "RS256"
)

// KeyType is the configured signer key type ("ed25519" or "rsa")
type KeyType string

const (
	KeyTypeEd25519 KeyType = "ed25519"
	KeyTypeRSA     KeyType = "rsa"
)

// Algorithm returns the JWS algorithm used with keys of this type
func (k KeyType) Algorithm() (Algorithm, error) {
	switch k {
	case KeyTypeEd25519:
		return AlgorithmEd25519, nil
	case KeyTypeRSA:
		return AlgorithmRSA, nil
	default:
		return "", NewValidationError("unsupported key type: " + string(k))
	}
}
