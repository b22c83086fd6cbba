package provenance

import (
	"context"
	"log/slog"

	"github.com/radwayousryyy/InkCrypt/internal/metrics"
	"github.com/radwayousryyy/InkCrypt/internal/pdf"
)

// Attester signs record attestations. *crypto.SigningIdentity implements it.
type Attester interface {
	SignerIdentity() string
	Attest(fingerprint string) (string, error)
}

// BindResult is returned by a successful bind
type BindResult struct {
	// Artifact is the input document with the identifier embedded as an incremental update
	Artifact   []byte
	Identifier string
	Record     Record
}

// Binder assigns identifiers to documents and records their fingerprints
type Binder struct {
	store    Store
	attester Attester
	logger   *slog.Logger
	metrics  *metrics.Metrics
}

func NewBinder(store Store, attester Attester, opts ...Option) *Binder {
	o := applyOptions(opts)
	return &Binder{
		store:    store,
		attester: attester,
		logger:   o.logger,
		metrics:  o.metrics,
	}
}

// Bind fingerprints the document, creates an ACTIVE record for it and returns a copy
// of the document with the new identifier embedded in its metadata.
//
// The input is never modified. The document must parse: a malformed or encrypted
// document returns a malformed_document error and no record is created.
// A store failure returns a store_unavailable error and no artifact.
func (b *Binder) Bind(ctx context.Context, data []byte) (BindResult, error) {
	result, err := b.bind(ctx, data)
	switch {
	case err == nil:
		b.metrics.IncrementBind(metrics.BindOutcomeBound)
	case HasCode(err, ErrCodeMalformedDocument):
		b.metrics.IncrementBind(metrics.BindOutcomeMalformed)
	case HasCode(err, ErrCodeStoreUnavailable):
		b.metrics.IncrementBind(metrics.BindOutcomeStoreUnavailable)
	default:
		b.metrics.IncrementBind(metrics.BindOutcomeError)
	}
	return result, err
}

func (b *Binder) bind(ctx context.Context, data []byte) (BindResult, error) {
	if len(data) == 0 {
		return BindResult{}, NewMalformedDocumentError("document is empty")
	}

	doc, err := pdf.Parse(data)
	if err != nil {
		return BindResult{}, WrapMalformedDocumentError(err, "document is not a readable PDF")
	}

	embedding, err := doc.PrepareEmbedding()
	if err != nil {
		return BindResult{}, WrapMalformedDocumentError(err, "cannot embed an identifier in this document")
	}

	digest, err := pdf.Fingerprint(data, pdf.FailOnParseError)
	if err != nil {
		return BindResult{}, WrapMalformedDocumentError(err, "failed to normalize document content")
	}

	var signature string
	if b.attester != nil {
		signature, err = b.attester.Attest(digest.Fingerprint)
		if err != nil {
			return BindResult{}, WrapSignatureError(err, "failed to sign record attestation")
		}
	}

	record, err := b.store.Create(ctx, CreateRecordParams{
		Fingerprint:    digest.Fingerprint,
		SignerIdentity: b.signerIdentity(),
		Signature:      signature,
	})
	if err != nil {
		return BindResult{}, WrapStoreUnavailableError(err, "failed to create document record")
	}

	identifier := record.Identifier.String()
	artifact := embedding.Apply(identifier)

	b.logger.Info("document bound",
		slog.String("identifier", identifier),
		slog.String("fingerprint", digest.Fingerprint),
		slog.String("signer", record.SignerIdentity),
	)

	return BindResult{
		Artifact:   artifact,
		Identifier: identifier,
		Record:     record,
	}, nil
}

func (b *Binder) signerIdentity() string {
	if b.attester == nil {
		return DefaultSignerIdentity
	}
	return b.attester.SignerIdentity()
}
