// Package handlers provides the HTTP handlers of the InkCrypt service.
//
// documents.go implements the provenance endpoints (sign, verify, revoke).
// The remaining files are general infrastructure handlers (health, version, jwks).
//
// Handlers carry swag annotations; errors are returned with api.RespondWithErrorResponse.
package handlers
