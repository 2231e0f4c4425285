// Package browser parses browser-history export files: a CSV with one
// row per visited page (url, title, visit_time). No third-party browser-
// export format library is worth the dependency for this shape, so this
// dialect uses stdlib encoding/csv directly — a justified stdlib choice,
// see DESIGN.md.
package browser

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/silverl/distill/internal/parser"
	"github.com/silverl/distill/pkg/model"
)

// expected CSV header: url,title,visit_time (RFC3339 or unix seconds).
var expectedHeader = []string{"url", "title", "visit_time"}

// Parser implements parser.SourceParser for browser-history CSV exports.
type Parser struct{}

// New returns a browser-history dialect parser.
func New() *Parser { return &Parser{} }

// ID identifies this dialect for config's external-content enumeration.
func (p *Parser) ID() string { return "browser" }

// Discover walks root for *.csv export files.
func (p *Parser) Discover(ctx context.Context, root string) ([]string, error) {
	var locations []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if !d.IsDir() && strings.HasSuffix(d.Name(), ".csv") {
			locations = append(locations, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("discovering browser history exports under %s: %w", root, err)
	}
	return locations, nil
}

// Parse reads one CSV export. A malformed row is skipped with a
// diagnostic; a missing or mismatched header makes the whole file
// undiagnosable and is reported as a single whole-file diagnostic.
func (p *Parser) Parse(ctx context.Context, location string) (*parser.ParseResult, error) {
	file, err := os.Open(location)
	if err != nil {
		return &parser.ParseResult{
			Diagnostics: []parser.Diagnostic{{Location: location, Message: "unreadable browser history export", Err: err}},
		}, nil
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil || !headerMatches(header) {
		return &parser.ParseResult{
			Diagnostics: []parser.Diagnostic{{Location: location, Message: "browser history export missing expected header, skipped", Err: err}},
		}, nil
	}

	var items []model.ContentItem
	var diagnostics []parser.Diagnostic
	rowNo := 1
	for {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		rowNo++
		if err != nil {
			diagnostics = append(diagnostics, parser.Diagnostic{
				Location: fmt.Sprintf("%s:%d", location, rowNo), Message: "malformed history row, skipped", Err: err,
			})
			continue
		}
		if len(row) < 3 {
			diagnostics = append(diagnostics, parser.Diagnostic{
				Location: fmt.Sprintf("%s:%d", location, rowNo), Message: "history row has too few fields, skipped",
			})
			continue
		}
		item := model.ContentItem{
			Source:      model.SourceBrowser,
			ContentType: model.ContentTypeNote,
			Title:       row[1],
			URL:         row[0],
		}
		if t, ok := parseVisitTime(row[2]); ok {
			item.PublishedAt = &t
		}
		items = append(items, item)
	}

	return &parser.ParseResult{
		Items:       items,
		Diagnostics: diagnostics,
	}, nil
}

func headerMatches(got []string) bool {
	if len(got) != len(expectedHeader) {
		return false
	}
	for i, h := range expectedHeader {
		if strings.ToLower(strings.TrimSpace(got[i])) != h {
			return false
		}
	}
	return true
}

func parseVisitTime(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, true
	}
	if seconds, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return time.Unix(seconds, 0).UTC(), true
	}
	return time.Time{}, false
}
