package aggregate

import (
	"context"
	"fmt"

	"workdigest/internal"
	"workdigest/internal/paginate"
)

// Result groups the rendered digest of every source that produced output.
type Result struct {
	Digests map[internal.SourceType]string
}

// Empty reports whether no source produced a digest.
func (r Result) Empty() bool {
	return len(r.Digests) == 0
}

// Aggregate runs the sources one after another. The first failing source
// aborts the run. progress may be nil.
func Aggregate(
	ctx context.Context,
	sources []SourceAggregator,
	progress func(internal.SourceType) paginate.Progress,
) (Result, error) {
	result := Result{Digests: make(map[internal.SourceType]string)}
	for _, agg := range sources {
		var p paginate.Progress = paginate.NopProgress{}
		if progress != nil {
			p = progress(agg.Source())
		}

		out, ok, err := Digest(ctx, agg, p)
		if err != nil {
			return Result{}, fmt.Errorf("%s: %w", agg.Source(), err)
		}
		if ok {
			result.Digests[agg.Source()] = out
		}
	}
	return result, nil
}
