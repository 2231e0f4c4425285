package rollout

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
}

func TestDiscoverFindsManifestDirectories(t *testing.T) {
	root := t.TempDir()
	sessDir := filepath.Join(root, "sess-1")
	os.Mkdir(sessDir, 0o755)
	writeFile(t, filepath.Join(sessDir, "manifest.json"), `{"thread_id":"sess-1","events":[]}`)
	os.Mkdir(filepath.Join(root, "not-a-session"), 0o755)

	p := New()
	got, err := p.Discover(context.Background(), root)
	if err != nil {
		t.Fatalf("Discover failed: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 session directory, got %v", got)
	}
}

func TestParseBuildsSessionFromManifestAndEvents(t *testing.T) {
	root := t.TempDir()
	sessDir := filepath.Join(root, "sess-1")
	os.Mkdir(sessDir, 0o755)
	writeFile(t, filepath.Join(sessDir, "manifest.json"), `{
		"thread_id":"sess-1",
		"started_at":"2026-02-08T09:00:00Z",
		"ended_at":"2026-02-08T09:45:00Z",
		"events":["events.jsonl"]
	}`)
	writeFile(t, filepath.Join(sessDir, "events.jsonl"), `{"type":"thread.started"}
{"type":"item.completed","item":{"type":"agent_message","text":"fixed the bug"}}
{"type":"item.completed","item":{"type":"file_changes","path":"main.go"}}
`)

	p := New()
	result, err := p.Parse(context.Background(), sessDir)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(result.Diagnostics) != 0 {
		t.Fatalf("expected no diagnostics, got %v", result.Diagnostics)
	}
	if len(result.Sessions) != 1 {
		t.Fatalf("expected one session, got %d", len(result.Sessions))
	}
	s := result.Sessions[0]
	if s.ID != "sess-1" {
		t.Errorf("expected ID sess-1, got %s", s.ID)
	}
	if s.ToolUsage["file_changes"] != 1 {
		t.Errorf("expected file_changes usage 1, got %v", s.ToolUsage)
	}
	if len(s.ModifiedFiles) != 1 || s.ModifiedFiles[0] != "main.go" {
		t.Errorf("expected modified file main.go, got %v", s.ModifiedFiles)
	}
	if s.Body == "" {
		t.Errorf("expected body text from agent_message event")
	}
}

func TestParseMalformedManifestReturnsDiagnostic(t *testing.T) {
	root := t.TempDir()
	sessDir := filepath.Join(root, "sess-2")
	os.Mkdir(sessDir, 0o755)
	writeFile(t, filepath.Join(sessDir, "manifest.json"), "not json")

	p := New()
	result, err := p.Parse(context.Background(), sessDir)
	if err != nil {
		t.Fatalf("expected no fatal error, got %v", err)
	}
	if len(result.Diagnostics) != 1 {
		t.Fatalf("expected 1 diagnostic, got %v", result.Diagnostics)
	}
	if len(result.Sessions) != 0 {
		t.Errorf("expected no sessions from malformed manifest")
	}
}

func TestParseSkipsMalformedEventLine(t *testing.T) {
	root := t.TempDir()
	sessDir := filepath.Join(root, "sess-3")
	os.Mkdir(sessDir, 0o755)
	writeFile(t, filepath.Join(sessDir, "manifest.json"), `{"thread_id":"sess-3","events":["events.jsonl"]}`)
	writeFile(t, filepath.Join(sessDir, "events.jsonl"), "not json\n{\"type\":\"item.completed\",\"item\":{\"type\":\"agent_message\",\"text\":\"ok\"}}\n")

	p := New()
	result, err := p.Parse(context.Background(), sessDir)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(result.Diagnostics) != 1 {
		t.Fatalf("expected 1 diagnostic for malformed event line, got %v", result.Diagnostics)
	}
	if len(result.Sessions) != 1 {
		t.Fatalf("expected session to still be produced")
	}
}
