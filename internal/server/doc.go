// Package server provides the HTTP server for InkCrypt.
//
// the server is configured through environment variables
// (see internal/config/config.go for details)
//
// Routes:
//   - POST /sign, /verify, /revoke: the provenance endpoints (internal/server/handlers/documents.go)
//   - GET /, /health/live, /health/ready, /version, /.well-known/jwks.json, /metrics: infrastructure endpoints
//
// middleware is in internal/server/middleware
package server
