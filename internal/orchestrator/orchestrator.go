// Package orchestrator is the top-level driver:
// Parsers -> Normalizer -> (Analyzer <-> Memory) -> Journal Synthesizer ->
// Blog Context Builder -> Blog Synthesizer -> Publishers. For a
// requested date range it runs stages in topological order, letting
// internal/state short-circuit work that is already complete. Every
// other package here is stateless with respect to persistence; the
// Orchestrator is the only caller that commits.
package orchestrator

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/silverl/distill/internal/analyzer"
	"github.com/silverl/distill/internal/blog"
	"github.com/silverl/distill/internal/blogcontext"
	"github.com/silverl/distill/internal/editorial"
	"github.com/silverl/distill/internal/event"
	"github.com/silverl/distill/internal/journal"
	"github.com/silverl/distill/internal/llm"
	"github.com/silverl/distill/internal/logging"
	"github.com/silverl/distill/internal/memory"
	"github.com/silverl/distill/internal/parser"
	"github.com/silverl/distill/internal/parser/browser"
	"github.com/silverl/distill/internal/parser/chatlog"
	"github.com/silverl/distill/internal/parser/feed"
	"github.com/silverl/distill/internal/parser/multiagent"
	"github.com/silverl/distill/internal/parser/newsletter"
	"github.com/silverl/distill/internal/parser/rollout"
	"github.com/silverl/distill/internal/publish"
	"github.com/silverl/distill/internal/state"
	"github.com/silverl/distill/internal/storage"
	"github.com/silverl/distill/pkg/model"
)

// defaultParserConcurrency and defaultLLMConcurrency are the bounded
// worker-pool sizes, overridable per Orchestrator.
const (
	defaultParserConcurrency = 8
	defaultLLMConcurrency    = 2
)

// Orchestrator wires every component capability to the durable stores
// they read and commit through. It holds no pipeline state of its own
// beyond these handles.
type Orchestrator struct {
	Config *model.Config

	storage   *storage.Storage
	state     *state.Store
	memory    *memory.Store
	editorial *editorial.Store
	analyzer  *analyzer.Analyzer

	sessionParsers []parser.SourceParser
	feedParser     *feed.Parser
	browserParser  *browser.Parser
	newsletterParser *newsletter.Parser

	worker      llm.Worker
	journal     *journal.Synthesizer
	blogContext *blogcontext.Builder
	blog        *blog.Synthesizer
	publishers  map[string]publish.Publisher

	location *time.Location

	ParserConcurrency int
	LLMConcurrency    int
}

// New builds an Orchestrator from a fully loaded config, constructing
// every durable store at cfg.Output.Directory and every synthesis
// capability from cfg.LLM.
func New(ctx context.Context, cfg *model.Config) (*Orchestrator, error) {
	if cfg.Output.Directory == "" {
		return nil, fmt.Errorf("orchestrator: config output.directory is required")
	}
	store := storage.New(cfg.Output.Directory)
	st := state.New(store)
	mem := memory.New(store)
	ed := editorial.New(store)

	worker, err := llm.NewWorker(ctx, &cfg.LLM)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: build llm worker: %w", err)
	}

	publishers := make(map[string]publish.Publisher, len(cfg.Publishers))
	for name, pc := range cfg.Publishers {
		if !pc.Enabled {
			continue
		}
		p, err := publish.New(name, pc)
		if err != nil {
			return nil, fmt.Errorf("orchestrator: build publisher %q: %w", name, err)
		}
		publishers[name] = p
	}

	o := &Orchestrator{
		Config: cfg,

		storage:   store,
		state:     st,
		memory:    mem,
		editorial: ed,
		analyzer:  analyzer.New(cfg.Projects),

		sessionParsers: []parser.SourceParser{
			chatlog.New(),
			rollout.New(),
			multiagent.New(),
		},
		feedParser:       feed.New(),
		browserParser:    browser.New(),
		newsletterParser: newsletter.New(),

		worker:      worker,
		journal:     journal.New(worker, store, st),
		blogContext: blogcontext.New(),
		blog:        blog.New(worker, store, st),
		publishers:  publishers,

		location: time.Local,

		ParserConcurrency: defaultParserConcurrency,
		LLMConcurrency:    defaultLLMConcurrency,
	}
	return o, nil
}

// globalSessionRoots returns the conventional user-wide session
// directories scanned when sessions.includeGlobal is set: the same
// per-dialect home directories the chat-log/rollout/multi-agent export
// tools write to.
func globalSessionRoots() []string {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil
	}
	return []string{
		filepath.Join(home, ".claude", "projects"),
		filepath.Join(home, ".codex", "sessions"),
		filepath.Join(home, ".vermas", "missions"),
	}
}

// publishEvent wraps event.Publish so every stage reports progress
// through the same bus the CLI (or a test) subscribes to.
func publishEvent(t event.EventType, data any) {
	event.Publish(event.Event{Type: t, Data: data})
}

func logErr(msg string, err error, fields map[string]string) {
	e := logging.Error().Err(err)
	for k, v := range fields {
		e = e.Str(k, v)
	}
	e.Msg(msg)
}
