package feed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const sampleRSS = `<?xml version="1.0"?>
<rss version="2.0"><channel>
<title>Example Blog</title>
<item>
  <title>Post One</title>
  <link>https://example.com/post-one</link>
  <description>First post</description>
  <pubDate>Sun, 08 Feb 2026 10:00:00 GMT</pubDate>
</item>
</channel></rss>`

func TestDiscoverReadsFeedsManifest(t *testing.T) {
	dir := t.TempDir()
	content := "https://example.com/feed.xml\n# a comment\n\nhttps://example.com/other.xml\n"
	if err := os.WriteFile(filepath.Join(dir, "feeds.txt"), []byte(content), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	p := New()
	got, err := p.Discover(context.Background(), dir)
	if err != nil {
		t.Fatalf("Discover failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 feed URLs, got %v", got)
	}
}

func TestParseFetchesAndConvertsItems(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		w.Write([]byte(sampleRSS))
	}))
	defer server.Close()

	p := New()
	result, err := p.Parse(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(result.Items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(result.Items))
	}
	item := result.Items[0]
	if item.Title != "Post One" {
		t.Errorf("unexpected title: %s", item.Title)
	}
	if item.URL != "https://example.com/post-one" {
		t.Errorf("unexpected url: %s", item.URL)
	}
	if item.PublishedAt == nil {
		t.Errorf("expected pubDate parsed")
	}
}

const htmlRSS = `<?xml version="1.0"?>
<rss version="2.0"><channel>
<title>HTML Blog</title>
<item>
  <title>Rich Post</title>
  <link>https://example.com/rich</link>
  <description>&lt;p&gt;A &lt;strong&gt;bold&lt;/strong&gt; intro paragraph.&lt;/p&gt;</description>
</item>
</channel></rss>`

func TestParseConvertsHTMLBodiesToMarkdown(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		w.Write([]byte(htmlRSS))
	}))
	defer server.Close()

	p := New()
	result, err := p.Parse(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(result.Items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(result.Items))
	}
	item := result.Items[0]
	if !strings.Contains(item.Body, "**bold**") {
		t.Errorf("expected HTML body converted to markdown, got %q", item.Body)
	}
	if strings.Contains(item.Excerpt, "<") {
		t.Errorf("expected plain-text excerpt, got %q", item.Excerpt)
	}
	if !strings.Contains(item.Excerpt, "bold intro paragraph") {
		t.Errorf("expected excerpt text preserved, got %q", item.Excerpt)
	}
}

func TestParseUnreachableFeedReturnsDiagnostic(t *testing.T) {
	p := New()
	result, err := p.Parse(context.Background(), "http://127.0.0.1:0/does-not-exist")
	if err != nil {
		t.Fatalf("expected no fatal error, got %v", err)
	}
	if len(result.Diagnostics) != 1 {
		t.Fatalf("expected 1 diagnostic for unreachable feed, got %v", result.Diagnostics)
	}
}
