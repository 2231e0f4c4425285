// Package rollout parses the rollout session dialect: one directory per
// session containing a manifest plus ordered event files. Session
// identity comes from the manifest's thread_id, or from the directory
// name when that is empty; timestamps come from the manifest. The event taxonomy (thread.started, turn.started,
// item.completed, turn.failed) follows the Codex CLI rollout format.
package rollout

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/silverl/distill/internal/parser"
	"github.com/silverl/distill/pkg/model"
)

const manifestFileName = "manifest.json"

// Parser implements parser.SourceParser for the rollout dialect.
type Parser struct{}

// New returns a rollout dialect parser.
func New() *Parser { return &Parser{} }

// ID names this dialect in parser events and diagnostics.
func (p *Parser) ID() string { return "rollout" }

// Discover returns one location per subdirectory of root that contains a
// manifest.json file.
func (p *Parser) Discover(ctx context.Context, root string) ([]string, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("discovering rollout sessions under %s: %w", root, err)
	}
	var locations []string
	for _, entry := range entries {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if !entry.IsDir() {
			continue
		}
		dir := filepath.Join(root, entry.Name())
		if _, err := os.Stat(filepath.Join(dir, manifestFileName)); err == nil {
			locations = append(locations, dir)
		}
	}
	return locations, nil
}

// manifest describes a rollout session's identity and ordered event files.
type manifest struct {
	ThreadID  string   `json:"thread_id"`
	Model     string   `json:"model,omitempty"`
	StartedAt string   `json:"started_at"`
	EndedAt   string   `json:"ended_at,omitempty"`
	Events    []string `json:"events"`
}

// event is one line of an ordered event file.
type event struct {
	Type string       `json:"type"`
	Item *itemPayload `json:"item,omitempty"`
}

type itemPayload struct {
	Type    string `json:"type"`
	Path    string `json:"path,omitempty"`
	Command string `json:"command,omitempty"`
	Text    string `json:"text,omitempty"`
	Success bool   `json:"success"`
}

// Parse reads one rollout session directory: its manifest.json plus the
// ordered event files it names. A malformed manifest or unreadable
// directory yields a whole-session diagnostic with no fatal error; a
// malformed event line is skipped with its own diagnostic.
func (p *Parser) Parse(ctx context.Context, location string) (*parser.ParseResult, error) {
	manifestPath := filepath.Join(location, manifestFileName)
	raw, err := os.ReadFile(manifestPath)
	if err != nil {
		return &parser.ParseResult{
			Diagnostics: []parser.Diagnostic{{Location: location, Message: "unreadable rollout manifest", Err: err}},
		}, nil
	}

	var m manifest
	if err := json.Unmarshal(raw, &m); err != nil {
		return &parser.ParseResult{
			Diagnostics: []parser.Diagnostic{{Location: manifestPath, Message: "malformed rollout manifest, session skipped", Err: err}},
		}, nil
	}

	sessionID := m.ThreadID
	if sessionID == "" {
		sessionID = filepath.Base(location)
	}

	session := model.Session{
		ContentItem: model.ContentItem{
			ID:          sessionID,
			Source:      model.SourceCodexSession,
			ContentType: model.ContentTypeSession,
			Title:       sessionID,
			IngestedAt:  time.Now().UTC(),
		},
		ToolUsage: make(map[string]int),
	}
	if m.StartedAt != "" {
		if t, err := time.Parse(time.RFC3339Nano, m.StartedAt); err == nil {
			session.StartedAt = t
		}
	}
	if m.EndedAt != "" {
		if t, err := time.Parse(time.RFC3339Nano, m.EndedAt); err == nil {
			session.EndedAt = t
		}
	}

	var diagnostics []parser.Diagnostic
	var bodyLines []string

	for _, eventFile := range m.Events {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		eventPath := filepath.Join(location, eventFile)
		raw, err := os.ReadFile(eventPath)
		if err != nil {
			diagnostics = append(diagnostics, parser.Diagnostic{
				Location: eventPath, Message: "unreadable rollout event file, skipped", Err: err,
			})
			continue
		}
		for lineNo, line := range strings.Split(string(raw), "\n") {
			line = strings.TrimSpace(line)
			if line == "" {
				continue
			}
			var ev event
			if err := json.Unmarshal([]byte(line), &ev); err != nil {
				diagnostics = append(diagnostics, parser.Diagnostic{
					Location: fmt.Sprintf("%s:%d", eventPath, lineNo+1),
					Message:  "malformed rollout event, skipped",
					Err:      err,
				})
				continue
			}
			applyEvent(&session, ev, &bodyLines)
		}
	}

	session.Body = strings.Join(bodyLines, "\n\n")
	if session.EndedAt.IsZero() && len(m.Events) > 0 {
		session.EndedAt = session.StartedAt
	}

	return &parser.ParseResult{
		Sessions:    []model.Session{session},
		Diagnostics: diagnostics,
	}, nil
}

func applyEvent(session *model.Session, ev event, bodyLines *[]string) {
	switch ev.Type {
	case "turn.failed", "error":
		session.Outcomes = append(session.Outcomes, model.Outcome{Type: "command_run", Command: "turn.failed"})
	case "item.completed":
		if ev.Item == nil {
			return
		}
		switch ev.Item.Type {
		case "agent_message", "reasoning":
			if ev.Item.Text != "" {
				*bodyLines = append(*bodyLines, ev.Item.Text)
			}
		case "command_execution":
			session.ToolUsage["command_execution"]++
			session.Outcomes = append(session.Outcomes, model.Outcome{Type: "command_run", Command: ev.Item.Command})
		case "file_changes":
			session.ToolUsage["file_changes"]++
			if ev.Item.Path != "" {
				session.ModifiedFiles = appendUnique(session.ModifiedFiles, ev.Item.Path)
				session.Outcomes = append(session.Outcomes, model.Outcome{Type: "file_modified", Path: ev.Item.Path})
			}
		case "mcp_tool_call", "web_search":
			session.ToolUsage[ev.Item.Type]++
		}
	}
}

func appendUnique(existing []string, value string) []string {
	for _, v := range existing {
		if v == value {
			return existing
		}
	}
	return append(existing, value)
}
