// Package crypto provides the signing identity used by InkCrypt.
//
// It covers document fingerprints (SHA-256), signer key pairs stored as JWK files,
// the self-signed signer certificate and the JWS attestations that bind a record's
// fingerprint to the signer. Higher level code should use SigningIdentity rather than
// calling the low level key functions directly.
package crypto
