// Package digest filters and renders normalized records into the plain text
// digest handed to the LLM.
package digest

import (
	"fmt"
	"slices"
	"strings"

	"workdigest/internal"
)

const (
	dateLayout    = "2006-01-02"
	missingDate   = "N/A"
	noComments    = "- No comments found."
	unknownAuthor = "Unknown"
)

// Template describes the per-entry layout for one backend.
type Template struct {
	// Source names the backend in each entry header.
	Source         string
	NamespaceLabel string
	// TitleFormat receives the identifier and the title.
	TitleFormat string
	DateLabel   string
	EmptyBody   string

	Acceptance      bool
	EmptyAcceptance string
	Comments        bool
}

var (
	GitHubTemplate = Template{
		Source:         string(internal.SourceTypeGitHub),
		NamespaceLabel: "Repo",
		TitleFormat:    "PR #%s: %s",
		DateLabel:      "Merged On",
		EmptyBody:      "No description provided.",
	}

	JiraTemplate = Template{
		Source:          string(internal.SourceTypeJira),
		NamespaceLabel:  "Project",
		TitleFormat:     "Ticket %s: %s",
		DateLabel:       "Resolved On",
		EmptyBody:       "No description.",
		Acceptance:      true,
		EmptyAcceptance: "N/A",
		Comments:        true,
	}
)

// Compare orders records for the digest, in the style of slices.SortFunc.
type Compare func(a, b internal.Record) int

// ByCompletedDesc puts the most recently completed record first.
func ByCompletedDesc(a, b internal.Record) int {
	return b.Completed.Compare(a.Completed)
}

// Format renders records with tmpl, sorted stably by cmp (nil keeps the input
// order). It reports false when there is nothing to write.
func Format(records []internal.Record, tmpl Template, cmp Compare) (string, bool) {
	if len(records) == 0 {
		return "", false
	}

	ordered := slices.Clone(records)
	if cmp != nil {
		slices.SortStableFunc(ordered, cmp)
	}

	entries := make([]string, 0, len(ordered))
	for i, r := range ordered {
		entries = append(entries, tmpl.entry(i+1, r))
	}
	return strings.Join(entries, "\n\n"), true
}

func (t Template) entry(n int, r internal.Record) string {
	date := missingDate
	if !r.Completed.IsZero() {
		date = r.Completed.Format(dateLayout)
	}

	lines := []string{
		fmt.Sprintf("--- %s %d ---", t.Source, n),
		fmt.Sprintf("%s: %s", t.NamespaceLabel, r.Namespace),
		fmt.Sprintf(t.TitleFormat, r.Identifier, r.Title),
		fmt.Sprintf("%s: %s", t.DateLabel, date),
		fmt.Sprintf("URL: %s", r.URL),
		"",
		"Description:",
		orDefault(r.Body, t.EmptyBody),
	}

	if t.Acceptance {
		lines = append(lines, "", "Acceptance Criteria:", orDefault(r.AcceptanceCriteria, t.EmptyAcceptance))
	}

	if t.Comments {
		lines = append(lines, "", "Comments:")
		if len(r.Comments) == 0 {
			lines = append(lines, noComments)
		}
		for _, c := range r.Comments {
			lines = append(lines, fmt.Sprintf("- %s: %s", orDefault(c.Author, unknownAuthor), c.Body))
		}
	}

	return strings.Join(lines, "\n")
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
