package provenance

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/radwayousryyy/InkCrypt/internal/crypto"
	"github.com/radwayousryyy/InkCrypt/internal/metrics"
	"github.com/radwayousryyy/InkCrypt/internal/pdf"
)

// DefaultSignerIdentity is recorded when a Binder has no Attester
const DefaultSignerIdentity = "InkCrypt"

// AttestationVerifier checks record attestations. *crypto.SigningIdentity implements it.
type AttestationVerifier interface {
	VerifyAttestation(jws, fingerprint, signer string) error
}

// Verifier produces a Verdict for a document
type Verifier struct {
	store            Store
	attestations     AttestationVerifier
	requireSignature bool
	logger           *slog.Logger
	metrics          *metrics.Metrics
}

// NewVerifier returns a Verifier backed by store.
// When attestations is nil record signatures are not checked.
func NewVerifier(store Store, attestations AttestationVerifier, opts ...Option) *Verifier {
	o := applyOptions(opts)
	return &Verifier{
		store:            store,
		attestations:     attestations,
		requireSignature: o.requireSignature,
		logger:           o.logger,
		metrics:          o.metrics,
	}
}

// Verify returns the verdict for data. It never returns an error: failures that stop
// verification from completing are reported as a VerificationFailure verdict.
//
// Checks are applied in order: identifier present, record exists, record not revoked,
// fingerprint matches, attestation verifies. The first failing check decides the verdict.
// A document whose content cannot be parsed is fingerprinted over its raw bytes.
func (v *Verifier) Verify(ctx context.Context, data []byte) (verdict Verdict) {
	start := time.Now()

	defer func() {
		if r := recover(); r != nil {
			verdict = VerificationFailure{Err: fmt.Errorf("internal error: %v", r)}
		}
		v.metrics.ObserveVerify(string(verdict.Confidence()), time.Since(start))
		v.logVerdict(verdict)
	}()

	return v.verify(ctx, data)
}

func (v *Verifier) verify(ctx context.Context, data []byte) Verdict {
	raw, ok := pdf.ReadIdentifier(data)
	if !ok {
		return NoIdentity{}
	}

	id, err := ParseIdentifier(raw)
	if err != nil {
		return NoIdentity{}
	}

	record, err := v.store.Read(ctx, id)
	if err != nil {
		if errors.Is(err, ErrRecordNotFound) {
			return UnknownIdentity{Identifier: id}
		}
		return VerificationFailure{Err: WrapStoreUnavailableError(err, "record store unavailable")}
	}

	if record.Revoked() {
		return RevokedDocument{Identifier: id}
	}

	digest, err := pdf.Fingerprint(data, pdf.FallbackToRaw)
	if err != nil {
		return VerificationFailure{Err: WrapInternalError(err, "failed to fingerprint document")}
	}
	if digest.FellBack {
		v.metrics.IncrementNormalizeFallback()
		v.logger.Debug("content normalization failed, fingerprinting raw bytes", slog.String("identifier", id.String()))
	}

	if !crypto.FingerprintsEqual(digest.Fingerprint, record.Fingerprint) {
		return TamperedDocument{
			Identifier: id,
			Cause:      TamperContent,
			Detail:     fmt.Sprintf("expected fingerprint %s, got %s", record.Fingerprint, digest.Fingerprint),
		}
	}

	if tampered, ok := v.checkAttestation(record); !ok {
		return tampered
	}

	return ValidDocument{
		Identifier:     id,
		BoundAt:        record.BoundAt,
		SignerIdentity: record.SignerIdentity,
	}
}

func (v *Verifier) checkAttestation(record Record) (TamperedDocument, bool) {
	if record.Signature == "" {
		if v.requireSignature {
			return TamperedDocument{
				Identifier: record.Identifier,
				Cause:      TamperSignature,
				Detail:     "record has no attestation",
			}, false
		}
		return TamperedDocument{}, true
	}

	if v.attestations == nil {
		return TamperedDocument{}, true
	}

	if err := v.attestations.VerifyAttestation(record.Signature, record.Fingerprint, record.SignerIdentity); err != nil {
		return TamperedDocument{
			Identifier: record.Identifier,
			Cause:      TamperSignature,
			Detail:     err.Error(),
		}, false
	}
	return TamperedDocument{}, true
}

func (v *Verifier) logVerdict(verdict Verdict) {
	attrs := []any{
		slog.String("outcome", string(verdict.Outcome())),
		slog.String("confidence", string(verdict.Confidence())),
	}

	switch vd := verdict.(type) {
	case TamperedDocument:
		v.logger.Warn("document failed verification", append(attrs,
			slog.String("identifier", vd.Identifier.String()),
			slog.String("cause", string(vd.Cause)),
			slog.String("detail", vd.Detail),
		)...)
	case VerificationFailure:
		v.logger.Error("verification error", append(attrs, slog.Any("error", vd.Err))...)
	case ValidDocument:
		v.logger.Info("document verified", append(attrs, slog.String("identifier", vd.Identifier.String()))...)
	default:
		v.logger.Info("document verified", attrs...)
	}
}
