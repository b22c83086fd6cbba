// Package provenance binds documents to identifiers and verifies them.
//
// A Binder fingerprints the page content of a PDF, stores a Record under a new
// identifier and embeds that identifier in the document's metadata. A Verifier
// reads the identifier back, looks up the Record and compares fingerprints to
// produce a Verdict. A Revoker marks Records revoked.
//
// Records are kept in a Store: MemoryStore for development and tests,
// PostgresStore for deployments.
package provenance
