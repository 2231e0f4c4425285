package publish

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/silverl/distill/pkg/model"
)

func samplePost() *model.BlogPost {
	return &model.BlogPost{
		Slug:         "weekly-2026-W07",
		PostType:     model.PostTypeWeekly,
		Title:        "Weekly Roundup",
		BodyMarkdown: "We shipped the fan-in parser. It handles three dialects now. Tests are green across the board.",
		Themes:       model.NewStringSet("parser-refactor"),
		Projects:     []string{"distill"},
	}
}

func TestNewBuildsEachDialect(t *testing.T) {
	dialects := []string{"vault", "cms", "plainmd", "thread", "professional", "discussion", "scheduler"}
	for _, d := range dialects {
		p, err := New(d, model.PublisherConfig{Type: d, Target: "https://example.com/hook"})
		if err != nil {
			t.Fatalf("New(%s) failed: %v", d, err)
		}
		if p.Name() != d {
			t.Errorf("expected name %s, got %s", d, p.Name())
		}
	}
}

func TestNewRejectsUnknownType(t *testing.T) {
	if _, err := New("mystery", model.PublisherConfig{Type: "mystery"}); err == nil {
		t.Fatal("expected error for unknown publisher type")
	}
}

func TestVaultPublisherWritesNoteWithFrontmatter(t *testing.T) {
	dir := t.TempDir()
	p := NewVaultPublisher("obsidian", model.PublisherConfig{Target: dir})
	payload, err := p.Render(samplePost())
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if !strings.HasPrefix(string(payload.Body), "---\n") {
		t.Errorf("expected frontmatter block, got %q", string(payload.Body)[:20])
	}
	receipt, err := p.Deliver(context.Background(), payload)
	if err != nil {
		t.Fatalf("Deliver failed: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "weekly-2026-W07.md")); err != nil {
		t.Errorf("expected note file written: %v", err)
	}
	if receipt.Platform != "obsidian" {
		t.Errorf("unexpected receipt platform: %s", receipt.Platform)
	}
}

func TestPlainMarkdownPublisherWritesFile(t *testing.T) {
	dir := t.TempDir()
	p := NewPlainMarkdownPublisher("plain", model.PublisherConfig{Target: dir})
	payload, err := p.Render(samplePost())
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if _, err := p.Deliver(context.Background(), payload); err != nil {
		t.Fatalf("Deliver failed: %v", err)
	}
	data, err := os.ReadFile(filepath.Join(dir, "weekly-2026-W07.md"))
	if err != nil {
		t.Fatalf("expected file written: %v", err)
	}
	if !strings.Contains(string(data), "Weekly Roundup") {
		t.Errorf("expected title in body, got %q", string(data))
	}
}

func TestCMSPublisherPostsJSONAndAcceptsReceipt(t *testing.T) {
	var received cmsPostBody
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&received)
		if r.Header.Get("Authorization") != "Bearer secret" {
			t.Errorf("expected bearer auth header, got %q", r.Header.Get("Authorization"))
		}
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id":"123"}`))
	}))
	defer server.Close()

	p := NewCMSPublisher("ghost", model.PublisherConfig{Target: server.URL, APIKey: "secret"})
	payload, err := p.Render(samplePost())
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	receipt, err := p.Deliver(context.Background(), payload)
	if err != nil {
		t.Fatalf("Deliver failed: %v", err)
	}
	if received.Slug != "weekly-2026-W07" {
		t.Errorf("expected slug delivered, got %s", received.Slug)
	}
	if !strings.Contains(receipt.Detail, "123") {
		t.Errorf("expected receipt detail to include response body, got %s", receipt.Detail)
	}
}

func TestCMSPublisherRejectsNon2xx(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer server.Close()

	p := NewCMSPublisher("ghost", model.PublisherConfig{Target: server.URL})
	payload, _ := p.Render(samplePost())
	if _, err := p.Deliver(context.Background(), payload); err == nil {
		t.Fatal("expected error for non-2xx response")
	}
}

func TestThreadPublisherSplitsIntoNumberedSegments(t *testing.T) {
	segments := splitIntoThread("Weekly Roundup", strings.Repeat("We shipped another small improvement to the pipeline. ", 20))
	if len(segments) < 2 {
		t.Fatalf("expected multiple segments, got %d", len(segments))
	}
	if !strings.HasPrefix(segments[0], "(1/") {
		t.Errorf("expected numbered prefix, got %q", segments[0])
	}
}

func TestProfessionalPublisherRendersHookAndTags(t *testing.T) {
	p := NewProfessionalPublisher("linkedin", model.PublisherConfig{Target: "https://example.com"})
	payload, err := p.Render(samplePost())
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	var decoded professionalPost
	if err := json.Unmarshal(payload.Body, &decoded); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if decoded.Hook != "Weekly Roundup" {
		t.Errorf("unexpected hook: %s", decoded.Hook)
	}
	if !strings.Contains(decoded.Tags, "#parserrefactor") {
		t.Errorf("expected sanitized hashtag, got %q", decoded.Tags)
	}
}

func TestDiscussionPublisherRendersTitleAndBody(t *testing.T) {
	p := NewDiscussionPublisher("reddit", model.PublisherConfig{Target: "https://example.com"})
	payload, err := p.Render(samplePost())
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	var decoded discussionPost
	if err := json.Unmarshal(payload.Body, &decoded); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if decoded.Title != "Weekly Roundup" {
		t.Errorf("unexpected title: %s", decoded.Title)
	}
}
