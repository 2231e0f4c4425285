// Package chatlog parses the chat-log session dialect: a directory tree
// of newline-delimited JSON files, one file per session, where each line
// is a message envelope with a role, timestamp, and optional tool-call or
// tool-result structure. Session boundary = file boundary; start/end
// times are the first/last message timestamp.
package chatlog

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/silverl/distill/internal/parser"
	"github.com/silverl/distill/pkg/model"
)

// maxLineSize bumps the scanner buffer so large tool-result payloads
// embedded in a single JSONL line still parse.
const maxLineSize = 10 * 1024 * 1024

// Parser implements parser.SourceParser for the chat-log dialect.
type Parser struct{}

// New returns a chat-log dialect parser.
func New() *Parser { return &Parser{} }

// ID names this dialect in parser events and diagnostics.
func (p *Parser) ID() string { return "chat-log" }

// Discover globs root for *.jsonl files at any depth, one per session.
func (p *Parser) Discover(ctx context.Context, root string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if _, err := os.Stat(root); err != nil {
		return nil, fmt.Errorf("discovering chat-log sessions under %s: %w", root, err)
	}
	locations, err := doublestar.FilepathGlob(filepath.Join(root, "**", "*.jsonl"))
	if err != nil {
		return nil, fmt.Errorf("discovering chat-log sessions under %s: %w", root, err)
	}
	sort.Strings(locations)
	return locations, nil
}

// rawEnvelope is one line of a chat-log JSONL file.
type rawEnvelope struct {
	Role      string          `json:"role"`
	Timestamp string          `json:"timestamp"`
	Content   string          `json:"content"`
	ToolCall  *toolCall       `json:"tool_call,omitempty"`
	ToolUse   *toolCall       `json:"tool_use,omitempty"`
	Result    *toolResult     `json:"tool_result,omitempty"`
	Metadata  json.RawMessage `json:"metadata,omitempty"`
}

type toolCall struct {
	Name  string `json:"name"`
	Input string `json:"input,omitempty"`
}

type toolResult struct {
	Path    string `json:"path,omitempty"`
	Command string `json:"command,omitempty"`
	Success bool   `json:"success"`
}

// Parse reads one session file and produces its Session plus any
// per-line diagnostics. A malformed line is skipped with one diagnostic;
// an unreadable file is reported as a whole-file diagnostic and an empty
// result, never a fatal error.
func (p *Parser) Parse(ctx context.Context, location string) (*parser.ParseResult, error) {
	file, err := os.Open(location)
	if err != nil {
		return &parser.ParseResult{
			Diagnostics: []parser.Diagnostic{{Location: location, Message: "unreadable session file", Err: err}},
		}, nil
	}
	defer file.Close()

	sessionID := strings.TrimSuffix(filepath.Base(location), ".jsonl")
	session := model.Session{
		ContentItem: model.ContentItem{
			ID:          sessionID,
			Source:      model.SourceClaudeSession,
			ContentType: model.ContentTypeSession,
			Title:       sessionID,
			IngestedAt:  time.Now().UTC(),
		},
		ToolUsage: make(map[string]int),
	}

	var diagnostics []parser.Diagnostic
	var bodyLines []string
	var firstTime, lastTime time.Time
	lineNo := 0

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		lineNo++
		line := scanner.Bytes()
		if len(strings.TrimSpace(string(line))) == 0 {
			continue
		}

		var env rawEnvelope
		if err := json.Unmarshal(line, &env); err != nil {
			diagnostics = append(diagnostics, parser.Diagnostic{
				Location: fmt.Sprintf("%s:%d", location, lineNo),
				Message:  "malformed chat-log record, skipped",
				Err:      err,
			})
			continue
		}

		if env.Timestamp != "" {
			if t, err := time.Parse(time.RFC3339Nano, env.Timestamp); err == nil {
				if firstTime.IsZero() {
					firstTime = t
				}
				lastTime = t
			}
		}

		if env.Content != "" {
			bodyLines = append(bodyLines, env.Content)
		}

		call := env.ToolCall
		if call == nil {
			call = env.ToolUse
		}
		if call != nil && call.Name != "" {
			session.ToolUsage[call.Name]++
		}

		if env.Result != nil {
			if env.Result.Path != "" {
				session.ModifiedFiles = appendUnique(session.ModifiedFiles, env.Result.Path)
				session.Outcomes = append(session.Outcomes, model.Outcome{
					Type: "file_modified", Path: env.Result.Path, Time: lastTime,
				})
			}
			if env.Result.Command != "" {
				session.Outcomes = append(session.Outcomes, model.Outcome{
					Type: "command_run", Command: env.Result.Command, Time: lastTime,
				})
			}
		}
	}
	if err := scanner.Err(); err != nil {
		diagnostics = append(diagnostics, parser.Diagnostic{
			Location: location,
			Message:  "chat-log file truncated or unreadable mid-stream",
			Err:      err,
		})
	}

	session.StartedAt = firstTime
	session.EndedAt = lastTime
	session.Body = strings.Join(bodyLines, "\n\n")

	return &parser.ParseResult{
		Sessions:    []model.Session{session},
		Diagnostics: diagnostics,
	}, nil
}

func appendUnique(existing []string, value string) []string {
	for _, v := range existing {
		if v == value {
			return existing
		}
	}
	return append(existing, value)
}
