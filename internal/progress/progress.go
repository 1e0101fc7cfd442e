// Package progress renders pagination progress on a terminal line.
package progress

import (
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"

	"workdigest/internal/paginate"
)

const barWidth = 30

var counterStyle = lipgloss.NewStyle().Faint(true)

// Reporter rewrites a single line on w as pages arrive: a bar when the
// backend advertises a total, a plain counter otherwise.
type Reporter struct {
	w       io.Writer
	noun    string
	bar     progress.Model
	started bool
}

var _ paginate.Progress = (*Reporter)(nil)

// New returns a Reporter counting noun ("PRs", "tickets") on w.
func New(w io.Writer, noun string) *Reporter {
	return &Reporter{
		w:    w,
		noun: noun,
		bar:  progress.New(progress.WithDefaultGradient(), progress.WithWidth(barWidth)),
	}
}

func (r *Reporter) Fetched(count, total int) {
	r.started = true
	if total == paginate.UnknownTotal || total <= 0 {
		fmt.Fprintf(r.w, "\r%s", counterStyle.Render(fmt.Sprintf("Fetched %d %s...", count, r.noun)))
		return
	}

	pct := float64(count) / float64(total)
	if pct > 1 {
		pct = 1
	}
	fmt.Fprintf(r.w, "\r%s %s", r.bar.ViewAs(pct),
		counterStyle.Render(fmt.Sprintf("Fetched %d of %d %s...", count, total, r.noun)))
}

// Done terminates the progress line if anything was drawn.
func (r *Reporter) Done() {
	if r.started {
		fmt.Fprintln(r.w)
		r.started = false
	}
}
