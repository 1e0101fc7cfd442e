package paginate

import (
	"context"
	"errors"
	"fmt"
)

// ErrRepeatedCursor is returned when a backend hands back a continuation
// token it already issued; following it would loop forever.
var ErrRepeatedCursor = errors.New("paginate: continuation token repeated")

// CursorFetchFunc requests the page identified by token ("" for the first
// page) and returns its records and the next token, empty on the last page.
type CursorFetchFunc[R any] func(ctx context.Context, token string) (records []R, next string, err error)

// CursorPager implements token pagination. Absence of a continuation token is
// the only termination signal.
type CursorPager[R any] struct {
	fetch CursorFetchFunc[R]
	token string
	seen  map[string]struct{}
	done  bool
}

var _ Pager[int] = (*CursorPager[int])(nil)

func NewCursorPager[R any](fetch CursorFetchFunc[R]) *CursorPager[R] {
	return &CursorPager[R]{
		fetch: fetch,
		seen:  make(map[string]struct{}),
	}
}

func (p *CursorPager[R]) Next(ctx context.Context) (Page[R], error) {
	if p.done {
		return Page[R]{Total: UnknownTotal, Done: true}, nil
	}

	records, next, err := p.fetch(ctx, p.token)
	if err != nil {
		p.done = true
		return Page[R]{}, err
	}

	if next == "" {
		p.done = true
		return Page[R]{Records: records, Total: UnknownTotal, Done: true}, nil
	}

	if _, ok := p.seen[next]; ok {
		p.done = true
		return Page[R]{}, fmt.Errorf("%w: %q", ErrRepeatedCursor, next)
	}
	p.seen[next] = struct{}{}
	p.token = next

	return Page[R]{Records: records, Total: UnknownTotal}, nil
}
