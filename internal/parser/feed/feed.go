// Package feed parses external RSS/Atom sources into ContentItems. Unlike
// the session dialects, a feed "location" is a URL rather than a
// filesystem path: Discover reads a feeds.txt manifest (one URL per
// line) from root, and Parse fetches and decodes that URL with
// github.com/mmcdole/gofeed.
package feed

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	md "github.com/JohannesKaufmann/html-to-markdown"
	"github.com/PuerkitoBio/goquery"
	"github.com/mmcdole/gofeed"

	"github.com/silverl/distill/internal/parser"
	"github.com/silverl/distill/pkg/model"
)

const manifestFileName = "feeds.txt"

// excerptLimit bounds the plain-text excerpt pulled from an entry's
// description.
const excerptLimit = 280

// Parser implements parser.SourceParser for RSS/Atom feeds.
type Parser struct {
	fp   *gofeed.Parser
	conv *md.Converter
}

// New returns a feed dialect parser with its own gofeed.Parser instance.
func New() *Parser {
	return &Parser{
		fp:   gofeed.NewParser(),
		conv: md.NewConverter("", true, nil),
	}
}

// ID identifies this dialect for config's sessions.sources-adjacent
// external-content enumeration.
func (p *Parser) ID() string { return "rss" }

// Discover reads root/feeds.txt and returns each non-blank, non-comment
// line as a feed URL location.
func (p *Parser) Discover(ctx context.Context, root string) ([]string, error) {
	path := filepath.Join(root, manifestFileName)
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("discovering feed manifest %s: %w", path, err)
	}
	defer file.Close()

	var urls []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		urls = append(urls, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading feed manifest %s: %w", path, err)
	}
	return urls, nil
}

// Parse fetches the feed at location and converts every entry into a
// ContentItem. A fetch or decode failure for the whole feed is a
// whole-location diagnostic, never fatal to the run.
func (p *Parser) Parse(ctx context.Context, location string) (*parser.ParseResult, error) {
	parsed, err := p.fp.ParseURLWithContext(location, ctx)
	if err != nil {
		return &parser.ParseResult{
			Diagnostics: []parser.Diagnostic{{Location: location, Message: "unreachable or malformed feed", Err: err}},
		}, nil
	}

	siteName := parsed.Title
	var items []model.ContentItem
	var diagnostics []parser.Diagnostic
	for i, entry := range parsed.Items {
		if entry.Link == "" {
			diagnostics = append(diagnostics, parser.Diagnostic{
				Location: fmt.Sprintf("%s#item[%d]", location, i),
				Message:  "feed entry missing link, skipped",
			})
			continue
		}
		item := model.ContentItem{
			Source:      model.SourceRSS,
			ContentType: model.ContentTypeArticle,
			Title:       entry.Title,
			Body:        p.entryBody(entry),
			Excerpt:     plainExcerpt(entry.Description),
			URL:         entry.Link,
			SiteName:    siteName,
		}
		if entry.Author != nil {
			item.Author = entry.Author.Name
		}
		if entry.PublishedParsed != nil {
			published := *entry.PublishedParsed
			item.PublishedAt = &published
		}
		items = append(items, item)
	}

	return &parser.ParseResult{
		Items:       items,
		Diagnostics: diagnostics,
	}, nil
}

// entryBody prefers the full content over the description and converts
// HTML payloads to markdown so downstream synthesis sees uniform text.
func (p *Parser) entryBody(entry *gofeed.Item) string {
	body := entry.Content
	if body == "" {
		body = entry.Description
	}
	if !looksLikeHTML(body) {
		return body
	}
	converted, err := p.conv.ConvertString(body)
	if err != nil {
		return body
	}
	return converted
}

// plainExcerpt strips any markup from a feed description, collapsing
// whitespace and truncating to excerptLimit characters.
func plainExcerpt(description string) string {
	text := description
	if looksLikeHTML(description) {
		if doc, err := goquery.NewDocumentFromReader(strings.NewReader(description)); err == nil {
			text = doc.Text()
		}
	}
	text = strings.Join(strings.Fields(text), " ")
	if len(text) > excerptLimit {
		text = text[:excerptLimit] + "..."
	}
	return text
}

func looksLikeHTML(s string) bool {
	open := strings.IndexByte(s, '<')
	return open >= 0 && strings.IndexByte(s[open:], '>') > 0
}
