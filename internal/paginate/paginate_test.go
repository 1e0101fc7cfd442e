package paginate

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingProgress struct {
	calls [][2]int
}

func (p *recordingProgress) Fetched(count, total int) {
	p.calls = append(p.calls, [2]int{count, total})
}

// offsetBackend serves total sequential ints in pages of perPage.
type offsetBackend struct {
	total    int
	requests []int
}

func (b *offsetBackend) fetch(_ context.Context, page, perPage int) ([]int, int, error) {
	b.requests = append(b.requests, page)
	start := (page - 1) * perPage
	var out []int
	for i := start; i < start+perPage && i < b.total; i++ {
		out = append(out, i)
	}
	return out, b.total, nil
}

func TestOffsetPager_FetchesCeilTotalOverPageSize(t *testing.T) {
	tests := []struct {
		name      string
		total     int
		perPage   int
		wantPages int
	}{
		{name: "exact multiple", total: 200, perPage: 100, wantPages: 2},
		{name: "partial last page", total: 250, perPage: 100, wantPages: 3},
		{name: "single short page", total: 7, perPage: 100, wantPages: 1},
		{name: "small pages", total: 10, perPage: 3, wantPages: 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := &offsetBackend{total: tt.total}

			got, err := Collect[int](context.Background(), NewOffsetPager(backend.fetch, tt.perPage), nil)

			require.NoError(t, err)
			assert.Len(t, backend.requests, tt.wantPages)
			require.Len(t, got, tt.total)
			for i, v := range got {
				assert.Equal(t, i, v)
			}
		})
	}
}

func TestOffsetPager_EmptyPageStopsBeforeTotal(t *testing.T) {
	var requests int
	fetch := func(_ context.Context, page, _ int) ([]string, int, error) {
		requests++
		if page == 1 {
			return []string{"a", "b"}, 1000, nil
		}
		return nil, 1000, nil
	}

	got, err := Collect[string](context.Background(), NewOffsetPager(fetch, 2), nil)

	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, got)
	assert.Equal(t, 2, requests)
}

func TestOffsetPager_ZeroTotalFirstPageEmpty(t *testing.T) {
	fetch := func(context.Context, int, int) ([]string, int, error) {
		return nil, 0, nil
	}

	got, err := Collect[string](context.Background(), NewOffsetPager(fetch, 0), nil)

	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestOffsetPager_ErrorAbortsWithoutPartialResult(t *testing.T) {
	boom := errors.New("boom")
	fetch := func(_ context.Context, page, _ int) ([]int, int, error) {
		if page == 2 {
			return nil, 0, boom
		}
		return []int{1, 2}, 10, nil
	}

	got, err := Collect[int](context.Background(), NewOffsetPager(fetch, 2), nil)

	require.ErrorIs(t, err, boom)
	assert.Nil(t, got)
}

func TestOffsetPager_DefaultPageSize(t *testing.T) {
	var gotPerPage int
	fetch := func(_ context.Context, _, perPage int) ([]int, int, error) {
		gotPerPage = perPage
		return nil, 0, nil
	}

	_, err := Collect[int](context.Background(), NewOffsetPager(fetch, -1), nil)

	require.NoError(t, err)
	assert.Equal(t, DefaultPageSize, gotPerPage)
}

func TestOffsetPager_ReportsProgress(t *testing.T) {
	backend := &offsetBackend{total: 5}
	progress := &recordingProgress{}

	_, err := Collect[int](context.Background(), NewOffsetPager(backend.fetch, 2), progress)

	require.NoError(t, err)
	assert.Equal(t, [][2]int{{2, 5}, {4, 5}, {5, 5}}, progress.calls)
}

func TestCursorPager_StopsWhenTokenAbsent(t *testing.T) {
	pages := map[string]struct {
		records []string
		next    string
	}{
		"":   {records: []string{"A-1", "A-2"}, next: "t1"},
		"t1": {records: []string{"A-3"}, next: "t2"},
		"t2": {records: []string{"A-4"}, next: ""},
	}
	var tokens []string
	fetch := func(_ context.Context, token string) ([]string, string, error) {
		tokens = append(tokens, token)
		p := pages[token]
		return p.records, p.next, nil
	}
	progress := &recordingProgress{}

	got, err := Collect[string](context.Background(), NewCursorPager(fetch), progress)

	require.NoError(t, err)
	assert.Equal(t, []string{"A-1", "A-2", "A-3", "A-4"}, got)
	assert.Equal(t, []string{"", "t1", "t2"}, tokens)
	assert.Equal(t, [][2]int{{2, UnknownTotal}, {3, UnknownTotal}, {4, UnknownTotal}}, progress.calls)
}

func TestCursorPager_EmptyPageWithTokenContinues(t *testing.T) {
	calls := 0
	fetch := func(_ context.Context, token string) ([]int, string, error) {
		calls++
		if token == "" {
			return nil, "next", nil
		}
		return []int{42}, "", nil
	}

	got, err := Collect[int](context.Background(), NewCursorPager(fetch), nil)

	require.NoError(t, err)
	assert.Equal(t, []int{42}, got)
	assert.Equal(t, 2, calls)
}

func TestCursorPager_RepeatedTokenFails(t *testing.T) {
	calls := 0
	fetch := func(context.Context, string) ([]int, string, error) {
		calls++
		return []int{calls}, "same", nil
	}

	got, err := Collect[int](context.Background(), NewCursorPager(fetch), nil)

	require.ErrorIs(t, err, ErrRepeatedCursor)
	assert.Nil(t, got)
	assert.Equal(t, 2, calls)
}

func TestCursorPager_ErrorAborts(t *testing.T) {
	boom := errors.New("boom")
	fetch := func(_ context.Context, token string) ([]int, string, error) {
		if token == "t1" {
			return nil, "", boom
		}
		return []int{1}, "t1", nil
	}

	got, err := Collect[int](context.Background(), NewCursorPager(fetch), nil)

	require.ErrorIs(t, err, boom)
	assert.Nil(t, got)
}

func TestPager_NextAfterDoneIsStable(t *testing.T) {
	fetch := func(context.Context, string) ([]int, string, error) {
		return []int{1}, "", nil
	}
	p := NewCursorPager(fetch)

	_, err := p.Next(context.Background())
	require.NoError(t, err)

	page, err := p.Next(context.Background())
	require.NoError(t, err)
	assert.True(t, page.Done)
	assert.Empty(t, page.Records)
}
