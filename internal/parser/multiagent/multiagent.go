// Package multiagent parses the multi-agent session dialect: a
// hierarchical state directory (mission → cycle → task) of
// human-writable structured-text records. Each task file is a session
// execution; agent signals are first-class ordered events; task
// descriptions, learnings, and quality ratings are preserved verbatim.
// Decoding goes through hjson so the on-disk records stay hand-editable
// (hjson.Unmarshal into a map, then a json round-trip into the typed
// record).
package multiagent

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hjson/hjson-go/v4"

	"github.com/silverl/distill/internal/parser"
	"github.com/silverl/distill/pkg/model"
)

// Parser implements parser.SourceParser for the multi-agent dialect.
type Parser struct{}

// New returns a multi-agent dialect parser.
func New() *Parser { return &Parser{} }

// ID names this dialect in parser events and diagnostics.
func (p *Parser) ID() string { return "multi-agent" }

// Discover walks root for task records: root/<mission>/<cycle>/*.hjson.
func (p *Parser) Discover(ctx context.Context, root string) ([]string, error) {
	var locations []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if d.IsDir() {
			return nil
		}
		if strings.HasSuffix(d.Name(), ".hjson") {
			locations = append(locations, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("discovering multi-agent task records under %s: %w", root, err)
	}
	return locations, nil
}

// taskRecord is the hjson shape of one mission/cycle/task file.
type taskRecord struct {
	TaskID        string      `json:"task_id"`
	Mission       string      `json:"mission,omitempty"`
	Cycle         string      `json:"cycle,omitempty"`
	Description   string      `json:"description"`
	Quality       string      `json:"quality,omitempty"`
	StartedAt     string      `json:"started_at"`
	EndedAt       string      `json:"ended_at,omitempty"`
	ModifiedFiles []string    `json:"modified_files,omitempty"`
	Learnings     []string    `json:"learnings,omitempty"`
	Signals       []rawSignal `json:"signals,omitempty"`
}

type rawSignal struct {
	Timestamp string `json:"ts"`
	AgentID   string `json:"agent_id"`
	Role      string `json:"role"`
	Signal    string `json:"signal"`
	Message   string `json:"message"`
}

// Parse decodes one task record. A malformed record yields a whole-file
// diagnostic and no session; one task file is the whole-file unit here
// (a single task file is the whole unit for this dialect).
func (p *Parser) Parse(ctx context.Context, location string) (*parser.ParseResult, error) {
	raw, err := os.ReadFile(location)
	if err != nil {
		return &parser.ParseResult{
			Diagnostics: []parser.Diagnostic{{Location: location, Message: "unreadable task record", Err: err}},
		}, nil
	}

	var decoded map[string]any
	if err := hjson.Unmarshal(raw, &decoded); err != nil {
		return &parser.ParseResult{
			Diagnostics: []parser.Diagnostic{{Location: location, Message: "malformed hjson task record, skipped", Err: err}},
		}, nil
	}
	reencoded, err := json.Marshal(decoded)
	if err != nil {
		return &parser.ParseResult{
			Diagnostics: []parser.Diagnostic{{Location: location, Message: "could not re-marshal task record", Err: err}},
		}, nil
	}
	var record taskRecord
	if err := json.Unmarshal(reencoded, &record); err != nil {
		return &parser.ParseResult{
			Diagnostics: []parser.Diagnostic{{Location: location, Message: "task record did not match expected shape, skipped", Err: err}},
		}, nil
	}

	sessionID := record.TaskID
	if sessionID == "" {
		sessionID = deriveTaskIDFromPath(location)
	}

	session := model.Session{
		ContentItem: model.ContentItem{
			ID:          sessionID,
			Source:      model.SourceVermasSession,
			ContentType: model.ContentTypeSession,
			Title:       record.Description,
			Body:        record.Description,
			IngestedAt:  time.Now().UTC(),
			Metadata: map[string]any{
				"mission": record.Mission,
				"cycle":   record.Cycle,
				"quality": record.Quality,
			},
		},
		ModifiedFiles: record.ModifiedFiles,
		Learnings:     record.Learnings,
	}
	if record.StartedAt != "" {
		if t, err := time.Parse(time.RFC3339Nano, record.StartedAt); err == nil {
			session.StartedAt = t
		}
	}
	if record.EndedAt != "" {
		if t, err := time.Parse(time.RFC3339Nano, record.EndedAt); err == nil {
			session.EndedAt = t
		}
	}

	var diagnostics []parser.Diagnostic
	for i, sig := range record.Signals {
		signal := model.AgentSignal{
			AgentID: sig.AgentID,
			Role:    sig.Role,
			Signal:  sig.Signal,
			Message: sig.Message,
		}
		if sig.Timestamp != "" {
			t, err := time.Parse(time.RFC3339Nano, sig.Timestamp)
			if err != nil {
				diagnostics = append(diagnostics, parser.Diagnostic{
					Location: fmt.Sprintf("%s:signals[%d]", location, i),
					Message:  "malformed signal timestamp, signal kept with zero time",
					Err:      err,
				})
			} else {
				signal.Time = t
			}
		}
		session.AgentSignals = append(session.AgentSignals, signal)
	}

	return &parser.ParseResult{
		Sessions:    []model.Session{session},
		Diagnostics: diagnostics,
	}, nil
}

func deriveTaskIDFromPath(location string) string {
	base := strings.TrimSuffix(filepath.Base(location), ".hjson")
	cycle := filepath.Base(filepath.Dir(location))
	return cycle + "/" + base
}
