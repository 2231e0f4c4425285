package blog

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/silverl/distill/internal/storage"
)

var headingPattern = regexp.MustCompile(`(?m)^#\s`)

// stripChrome removes any preamble before the first top-level markdown
// heading, mirroring internal/journal's post-processing rule.
func stripChrome(raw string) string {
	loc := headingPattern.FindStringIndex(raw)
	if loc == nil {
		return strings.TrimSpace(raw)
	}
	return strings.TrimSpace(raw[loc[0]:])
}

func readFile(store *storage.Storage, relPath string) ([]byte, error) {
	return os.ReadFile(filepath.Join(store.BasePath(), relPath))
}
