package digest

import (
	"strings"
	"time"

	"workdigest/internal"
)

// Filter decides whether a record is included in the digest. Excluded records
// are dropped silently.
type Filter func(internal.Record) bool

// NamespaceContains keeps records whose namespace contains token, ignoring
// case. An empty token keeps everything.
func NamespaceContains(token string) Filter {
	token = strings.ToLower(strings.TrimSpace(token))
	return func(r internal.Record) bool {
		return strings.Contains(strings.ToLower(r.Namespace), token)
	}
}

// CompletedBetween keeps records completed within [from, to]. Records without
// a completion date are kept; the formatter renders their date as N/A.
func CompletedBetween(from, to time.Time) Filter {
	return func(r internal.Record) bool {
		if r.Completed.IsZero() {
			return true
		}
		return !r.Completed.Before(from) && !r.Completed.After(to)
	}
}

// All keeps records accepted by every filter.
func All(filters ...Filter) Filter {
	return func(r internal.Record) bool {
		for _, f := range filters {
			if f != nil && !f(r) {
				return false
			}
		}
		return true
	}
}

// Apply returns the records f keeps, in their original order.
func Apply(records []internal.Record, f Filter) []internal.Record {
	if f == nil {
		return records
	}
	kept := make([]internal.Record, 0, len(records))
	for _, r := range records {
		if f(r) {
			kept = append(kept, r)
		}
	}
	return kept
}
