package util

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"workdigest/internal"
)

var filePrefixes = map[internal.SourceType]string{
	internal.SourceTypeGitHub: "github_contributions",
	internal.SourceTypeJira:   "jira_tickets",
}

// DigestFilename names the output file for source on the given day.
func DigestFilename(source internal.SourceType, now time.Time) string {
	prefix, ok := filePrefixes[source]
	if !ok {
		prefix = string(source)
	}
	return fmt.Sprintf("%s_%s.txt", prefix, now.Format("2006-01-02"))
}

// WriteDigest writes contents as a single UTF-8 file in dir and returns its path.
func WriteDigest(dir string, source internal.SourceType, now time.Time, contents string) (string, error) {
	path := filepath.Join(dir, DigestFilename(source, now))
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		return "", fmt.Errorf("write digest %s: %w", path, err)
	}
	return path, nil
}
