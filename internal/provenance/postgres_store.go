package provenance

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/radwayousryyy/InkCrypt/internal/database"
)

// PostgresStore is the durable Store backed by the documents table
type PostgresStore struct {
	queries *database.Queries
}

func NewPostgresStore(queries *database.Queries) *PostgresStore {
	return &PostgresStore{queries: queries}
}

func (s *PostgresStore) Create(ctx context.Context, params CreateRecordParams) (Record, error) {
	var signature *string
	if params.Signature != "" {
		signature = &params.Signature
	}

	doc, err := s.queries.CreateDocument(ctx, database.CreateDocumentParams{
		DocHash:   params.Fingerprint,
		Signature: signature,
		SignerDn:  params.SignerIdentity,
	})
	if err != nil {
		return Record{}, err
	}
	return documentToRecord(doc), nil
}

func (s *PostgresStore) Read(ctx context.Context, id uuid.UUID) (Record, error) {
	doc, err := s.queries.GetDocumentByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Record{}, ErrRecordNotFound
		}
		return Record{}, err
	}
	return documentToRecord(doc), nil
}

// Revoke sets status to REVOKED. Re-revoking matches the row again, so it also returns true.
func (s *PostgresStore) Revoke(ctx context.Context, id uuid.UUID) (bool, error) {
	rows, err := s.queries.RevokeDocument(ctx, id)
	if err != nil {
		return false, err
	}
	return rows > 0, nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	_, err := s.queries.IsDatabaseRunning(ctx)
	return err
}

func documentToRecord(doc database.Document) Record {
	record := Record{
		Identifier:     doc.ID,
		Fingerprint:    doc.DocHash,
		SignerIdentity: doc.SignerDn,
		BoundAt:        doc.SignedAt.UTC(),
		Status:         Status(doc.Status),
	}
	if doc.Signature != nil {
		record.Signature = *doc.Signature
	}
	return record
}
