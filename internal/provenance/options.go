package provenance

import (
	"log/slog"

	"github.com/radwayousryyy/InkCrypt/internal/metrics"
)

type options struct {
	logger           *slog.Logger
	metrics          *metrics.Metrics
	requireSignature bool
}

// Option configures a Binder, Verifier or Revoker
type Option func(o *options)

func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(o *options) {
		o.metrics = m
	}
}

// WithRequireSignature makes the Verifier report records without an attestation as tampered
func WithRequireSignature(require bool) Option {
	return func(o *options) {
		o.requireSignature = require
	}
}

func applyOptions(opts []Option) options {
	o := options{logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
