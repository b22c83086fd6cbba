package provenance

import (
	"context"
	"log/slog"

	"github.com/radwayousryyy/InkCrypt/internal/metrics"
)

// Revoker marks records revoked. Revocation is one way and idempotent.
type Revoker struct {
	store   Store
	logger  *slog.Logger
	metrics *metrics.Metrics
}

func NewRevoker(store Store, opts ...Option) *Revoker {
	o := applyOptions(opts)
	return &Revoker{
		store:   store,
		logger:  o.logger,
		metrics: o.metrics,
	}
}

// Revoke revokes the record for identifier.
//
// Returns an invalid_identifier error if identifier is not a UUID, record_not_found if
// no record exists and store_unavailable if the store fails. Revoking an already
// revoked record succeeds.
func (r *Revoker) Revoke(ctx context.Context, identifier string) error {
	id, err := ParseIdentifier(identifier)
	if err != nil {
		r.metrics.IncrementRevoke(metrics.RevokeOutcomeNotFound)
		return err
	}

	found, err := r.store.Revoke(ctx, id)
	if err != nil {
		r.metrics.IncrementRevoke(metrics.RevokeOutcomeError)
		return WrapStoreUnavailableError(err, "failed to revoke document record")
	}
	if !found {
		r.metrics.IncrementRevoke(metrics.RevokeOutcomeNotFound)
		return WrapRecordNotFoundError(ErrRecordNotFound, "no record for identifier "+id.String())
	}

	r.metrics.IncrementRevoke(metrics.RevokeOutcomeRevoked)
	r.logger.Info("document revoked", slog.String("identifier", id.String()))
	return nil
}
