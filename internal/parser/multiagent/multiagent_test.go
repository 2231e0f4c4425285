package multiagent

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func writeTask(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

func TestDiscoverFindsHjsonTaskFiles(t *testing.T) {
	root := t.TempDir()
	mission := filepath.Join(root, "mission-alpha", "cycle-1")
	os.MkdirAll(mission, 0o755)
	writeTask(t, mission, "task-1.hjson", "{}")
	writeTask(t, mission, "notes.md", "ignore me")

	p := New()
	got, err := p.Discover(context.Background(), root)
	if err != nil {
		t.Fatalf("Discover failed: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("expected 1 hjson task file, got %v", got)
	}
}

func TestParseBuildsSessionFromTaskRecord(t *testing.T) {
	dir := t.TempDir()
	content := `{
  task_id: task-7
  mission: alpha
  cycle: cycle-1
  description: "Refactor the fan-in parser for clarity"
  quality: high
  started_at: 2026-02-08T09:00:00Z
  ended_at: 2026-02-08T09:40:00Z
  modified_files: ["parser.go"]
  learnings: [
    "Splitting discover/parse kept the interface honest"
  ]
  signals: [
    {
      ts: 2026-02-08T09:10:00Z
      agent_id: agent-1
      role: implementer
      signal: status
      message: "starting refactor"
    }
  ]
}`
	path := writeTask(t, dir, "task-7.hjson", content)

	p := New()
	result, err := p.Parse(context.Background(), path)
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
	if s.ID != "task-7" {
		t.Errorf("expected ID task-7, got %s", s.ID)
	}
	if len(s.Learnings) != 1 {
		t.Errorf("expected learnings preserved, got %v", s.Learnings)
	}
	if len(s.AgentSignals) != 1 || s.AgentSignals[0].Message != "starting refactor" {
		t.Errorf("expected agent signal preserved verbatim, got %v", s.AgentSignals)
	}
	if s.Metadata["quality"] != "high" {
		t.Errorf("expected quality metadata preserved, got %v", s.Metadata)
	}
}

func TestParseMalformedHjsonReturnsDiagnostic(t *testing.T) {
	dir := t.TempDir()
	path := writeTask(t, dir, "task-bad.hjson", "{ unterminated")

	p := New()
	result, err := p.Parse(context.Background(), path)
	if err != nil {
		t.Fatalf("expected no fatal error, got %v", err)
	}
	if len(result.Diagnostics) != 1 {
		t.Fatalf("expected 1 diagnostic, got %v", result.Diagnostics)
	}
	if len(result.Sessions) != 0 {
		t.Errorf("expected no sessions from malformed record")
	}
}
