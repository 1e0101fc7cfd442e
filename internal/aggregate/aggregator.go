// Package aggregate runs each work source through pagination, normalization,
// filtering and formatting.
package aggregate

import (
	"context"

	"workdigest/internal"
	"workdigest/internal/paginate"
)

// RawResult is a marker interface for source-specific raw record collections.
type RawResult any

// SourceAggregator defines the lifecycle for a single source: extract every
// raw record, enrich them into the uniform Record shape (dropping excluded
// ones), then render the digest.
type SourceAggregator interface {
	Source() internal.SourceType
	Extract(ctx context.Context, progress paginate.Progress) (RawResult, error)
	Enrich(raw RawResult) ([]internal.Record, error)
	Format(records []internal.Record) (string, bool)
}

// Digest runs agg end to end. ok is false when no record survived filtering,
// in which case nothing should be written. On error no digest is produced.
func Digest(ctx context.Context, agg SourceAggregator, progress paginate.Progress) (digest string, ok bool, err error) {
	raw, err := agg.Extract(ctx, progress)
	if err != nil {
		return "", false, err
	}

	records, err := agg.Enrich(raw)
	if err != nil {
		return "", false, err
	}

	digest, ok = agg.Format(records)
	return digest, ok, nil
}
