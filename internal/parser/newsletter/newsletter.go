// Package newsletter parses newsletter export files: one JSON document
// per export, an array of {subject, from, received_at, body} records
// (a Gmail/Substack-style mailbox export). No third-party mailbox-export
// library fits these ad hoc export shapes, so this dialect uses
// stdlib encoding/json directly — a justified stdlib choice, see
// DESIGN.md. HTML email bodies are converted to markdown on the way in.
package newsletter

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	md "github.com/JohannesKaufmann/html-to-markdown"

	"github.com/silverl/distill/internal/parser"
	"github.com/silverl/distill/pkg/model"
)

// Parser implements parser.SourceParser for newsletter/mailbox JSON
// exports.
type Parser struct {
	conv *md.Converter
}

// New returns a newsletter dialect parser.
func New() *Parser {
	return &Parser{conv: md.NewConverter("", true, nil)}
}

// ID identifies this dialect for config's external-content enumeration.
func (p *Parser) ID() string { return "newsletter" }

// Discover walks root for *.json export files.
func (p *Parser) Discover(ctx context.Context, root string) ([]string, error) {
	var locations []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if !d.IsDir() && strings.HasSuffix(d.Name(), ".json") {
			locations = append(locations, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("discovering newsletter exports under %s: %w", root, err)
	}
	return locations, nil
}

type rawEmail struct {
	Subject    string `json:"subject"`
	From       string `json:"from"`
	ReceivedAt string `json:"received_at"`
	Body       string `json:"body"`
}

// Parse decodes one export file's JSON array. A malformed whole file
// (not a JSON array) yields a single diagnostic; a malformed individual
// record is skipped with its own diagnostic.
func (p *Parser) Parse(ctx context.Context, location string) (*parser.ParseResult, error) {
	raw, err := os.ReadFile(location)
	if err != nil {
		return &parser.ParseResult{
			Diagnostics: []parser.Diagnostic{{Location: location, Message: "unreadable newsletter export", Err: err}},
		}, nil
	}

	var entries []json.RawMessage
	if err := json.Unmarshal(raw, &entries); err != nil {
		return &parser.ParseResult{
			Diagnostics: []parser.Diagnostic{{Location: location, Message: "newsletter export is not a JSON array, skipped", Err: err}},
		}, nil
	}

	var items []model.ContentItem
	var diagnostics []parser.Diagnostic
	for i, entry := range entries {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		var email rawEmail
		if err := json.Unmarshal(entry, &email); err != nil {
			diagnostics = append(diagnostics, parser.Diagnostic{
				Location: fmt.Sprintf("%s#item[%d]", location, i), Message: "malformed newsletter record, skipped", Err: err,
			})
			continue
		}
		item := model.ContentItem{
			Source:      model.SourceGmail,
			ContentType: model.ContentTypeEmail,
			Title:       email.Subject,
			Body:        p.emailBody(email.Body),
			Author:      email.From,
		}
		if email.ReceivedAt != "" {
			if t, err := time.Parse(time.RFC3339, email.ReceivedAt); err == nil {
				item.PublishedAt = &t
			}
		}
		items = append(items, item)
	}

	return &parser.ParseResult{
		Items:       items,
		Diagnostics: diagnostics,
	}, nil
}

// emailBody converts an HTML email body to markdown; plain-text bodies
// pass through untouched.
func (p *Parser) emailBody(body string) string {
	open := strings.IndexByte(body, '<')
	if open < 0 || strings.IndexByte(body[open:], '>') <= 0 {
		return body
	}
	converted, err := p.conv.ConvertString(body)
	if err != nil {
		return body
	}
	return converted
}
