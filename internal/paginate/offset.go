package paginate

import "context"

// DefaultPageSize is the largest page the search backends accept.
const DefaultPageSize = 100

// OffsetFetchFunc requests one page by 1-based index and returns the page's
// records together with the total the backend advertises.
type OffsetFetchFunc[R any] func(ctx context.Context, page, perPage int) (records []R, total int, err error)

// OffsetPager implements counted pagination: it stops on the first empty page
// or once the accumulated count reaches the advertised total.
type OffsetPager[R any] struct {
	fetch   OffsetFetchFunc[R]
	perPage int
	page    int
	fetched int
	total   int
	done    bool
}

var _ Pager[int] = (*OffsetPager[int])(nil)

// NewOffsetPager returns a pager starting at page 1. A non-positive perPage
// falls back to DefaultPageSize.
func NewOffsetPager[R any](fetch OffsetFetchFunc[R], perPage int) *OffsetPager[R] {
	if perPage <= 0 {
		perPage = DefaultPageSize
	}
	return &OffsetPager[R]{
		fetch:   fetch,
		perPage: perPage,
		page:    1,
	}
}

func (p *OffsetPager[R]) Next(ctx context.Context) (Page[R], error) {
	if p.done {
		return Page[R]{Total: p.total, Done: true}, nil
	}

	records, total, err := p.fetch(ctx, p.page, p.perPage)
	if err != nil {
		p.done = true
		return Page[R]{}, err
	}
	p.total = total

	if len(records) == 0 {
		p.done = true
		return Page[R]{Total: total, Done: true}, nil
	}

	p.fetched += len(records)
	if p.fetched >= total {
		p.done = true
	} else {
		p.page++
	}

	return Page[R]{Records: records, Total: total, Done: p.done}, nil
}
