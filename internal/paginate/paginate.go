// Package paginate walks backend pagination protocols to exhaustion.
package paginate

import (
	"context"
)

// UnknownTotal is reported as a page total by protocols that do not
// advertise how many records exist.
const UnknownTotal = -1

// Page is one batch of records in backend order together with the pager's
// decision on whether another page should be requested.
type Page[R any] struct {
	Records []R
	Total   int
	Done    bool
}

// Pager fetches the next page of a pagination protocol. Implementations are
// state machines: each call advances them by exactly one request.
type Pager[R any] interface {
	Next(ctx context.Context) (Page[R], error)
}

// Progress observes pagination. It never influences the records returned.
type Progress interface {
	Fetched(count, total int)
}

// NopProgress discards progress updates.
type NopProgress struct{}

func (NopProgress) Fetched(int, int) {}

// Collect drives p until it reports Done and returns every record in the
// order received. Any page error aborts the walk and no records are returned.
func Collect[R any](ctx context.Context, p Pager[R], progress Progress) ([]R, error) {
	if progress == nil {
		progress = NopProgress{}
	}

	var all []R
	for {
		page, err := p.Next(ctx)
		if err != nil {
			return nil, err
		}

		if len(page.Records) > 0 {
			all = append(all, page.Records...)
			progress.Fetched(len(all), page.Total)
		}

		if page.Done {
			return all, nil
		}
	}
}
