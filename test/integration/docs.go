// Package integration contains end-to-end tests for the InkCrypt server.
//
// These tests verify the server handles API requests correctly against PostgreSQL
// (expected responses, error handling, record persistence and the append-only record table).
// Each test runs against a temporary database with migrations applied, and the server is started in-process.
//
// These tests assume the pdf, crypto and provenance packages are working correctly (tested separately).
// If bugs are introduced in lower-level packages, there will be cascading failures here -
// fix the low-level problems first.
package integration
