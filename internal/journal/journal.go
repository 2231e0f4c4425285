// Package journal implements the journal synthesizer: it builds a
// day's DailyContext, drives an external LLM worker through
// internal/llm.Worker, and writes the resulting JournalEntry exactly once
// per (date, style) unless the session-id set changed or force_regenerate
// is set.
package journal

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/silverl/distill/internal/distillerr"
	"github.com/silverl/distill/internal/frontmatter"
	"github.com/silverl/distill/internal/llm"
	"github.com/silverl/distill/internal/logging"
	"github.com/silverl/distill/internal/state"
	"github.com/silverl/distill/internal/storage"
	"github.com/silverl/distill/pkg/model"
)

// maxAttempts bounds the LLM retry budget.
const maxAttempts = 3

// lengthTolerance is the ±50% band a synthesized journal's word count
// must fall within before a length-corrected re-prompt is issued.
const lengthTolerance = 0.5

// Synthesizer is the journal-synthesis capability. It holds no pipeline
// state of its own: it receives inputs and returns a JournalEntry, and
// all persistence goes through the storage/state handles it is
// constructed with.
type Synthesizer struct {
	Worker  llm.Worker
	Storage *storage.Storage
	State   *state.Store
}

// New builds a Synthesizer.
func New(worker llm.Worker, store *storage.Storage, st *state.Store) *Synthesizer {
	return &Synthesizer{Worker: worker, Storage: store, State: st}
}

// frontmatterDoc is the YAML header written atop every journal markdown
// file.
type frontmatterDoc struct {
	Date            string   `yaml:"date"`
	Style           string   `yaml:"style"`
	WordCount       int      `yaml:"word_count"`
	Projects        []string `yaml:"projects"`
	SessionsCount   int      `yaml:"sessions_count"`
	DurationMinutes int      `yaml:"duration_minutes"`
	Tags            []string `yaml:"tags"`
	GeneratedAt     string   `yaml:"generated_at"`
}

func journalFilePath(date, style string) string {
	return fmt.Sprintf("journal/journal-%s-%s.md", date, style)
}

// Synthesize implements the C5 contract: synthesize(date, style, sessions,
// memory, config) -> JournalEntry. If a JournalEntry already exists for
// (date, style) and neither force nor a changed session-id set requires
// regeneration, the existing entry is read back unchanged.
func (s *Synthesizer) Synthesize(ctx context.Context, dctx model.DailyContext, sessions []model.Session, configHash string, force bool) (*model.JournalEntry, error) {
	sessionIDs := make([]string, 0, len(sessions))
	for _, sess := range sessions {
		sessionIDs = append(sessionIDs, sess.ID)
	}

	decision, err := s.State.CheckJournal(ctx, dctx.Date, dctx.Style, sessionIDs, configHash, force)
	if err != nil {
		return nil, err
	}

	switch decision {
	case state.JournalPendingSkip:
		return nil, fmt.Errorf("journal %s/%s previously failed and is pending retry: %w", dctx.Date, dctx.Style, distillerr.LLMUnavailable)
	case state.JournalUpToDate:
		return s.readExisting(dctx.Date, dctx.Style)
	}

	body, wordCount, err := s.generateWithRetry(ctx, dctx)
	if err != nil {
		if markErr := s.State.MarkJournalPending(ctx, dctx.Date, dctx.Style); markErr != nil {
			logging.Error().Err(markErr).Str("date", dctx.Date).Msg("failed to mark journal pending")
		}
		return nil, err
	}

	entry := buildEntry(dctx, sessions, body, wordCount)

	if err := s.write(ctx, entry); err != nil {
		return nil, err
	}
	if err := s.State.CommitJournalSuccess(ctx, dctx.Date, dctx.Style, sessionIDs, configHash, entry.GeneratedAt); err != nil {
		return nil, err
	}
	return entry, nil
}

// generateWithRetry drives the LLM worker, enforcing the retry budget
// (band 2: bounded exponential backoff, 3 attempts) and, on success, the
// length-enforcement retry (a distinct,
// one-shot re-prompt, not part of the LLM-failure retry budget).
func (s *Synthesizer) generateWithRetry(ctx context.Context, dctx model.DailyContext) (string, int, error) {
	prompt, err := s.Worker.Render(promptTemplate, dctx)
	if err != nil {
		return "", 0, fmt.Errorf("journal: render prompt: %w", err)
	}

	raw, err := invokeWithBackoff(ctx, s.Worker, prompt)
	if err != nil {
		return "", 0, err
	}

	body := stripChrome(raw)
	wordCount := countWords(body)

	if !withinTolerance(wordCount, dctx.TargetWordCount) {
		lengthPrompt, err := s.Worker.Render(lengthCorrectionTemplate, lengthCorrectionData{
			DailyContext: dctx,
			PriorWords:   wordCount,
			Target:       dctx.TargetWordCount,
		})
		if err == nil {
			if retried, retryErr := invokeWithBackoff(ctx, s.Worker, lengthPrompt); retryErr == nil {
				retriedBody := stripChrome(retried)
				retriedCount := countWords(retriedBody)
				body, wordCount = retriedBody, retriedCount
				if !withinTolerance(wordCount, dctx.TargetWordCount) {
					logging.Warn().Int("word_count", wordCount).Int("target", dctx.TargetWordCount).Str("date", dctx.Date).Msg("journal length out of tolerance after retry, accepting anyway")
				}
			}
		}
	}

	return body, wordCount, nil
}

// invokeWithBackoff calls worker.Invoke up to maxAttempts times with
// exponential backoff starting at 2s. A timeout
// or unavailable error is retryable; an empty response is reported as
// LLMUnavailable and retried the same way, since the prompt may simply
// need another attempt.
func invokeWithBackoff(ctx context.Context, worker llm.Worker, prompt string) (string, error) {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = 2 * time.Second
	b.Multiplier = 2.0
	b.RandomizationFactor = 0
	bounded := backoff.WithContext(backoff.WithMaxRetries(b, maxAttempts-1), ctx)

	var result string
	op := func() error {
		out, err := worker.Invoke(ctx, prompt)
		if err != nil {
			return err
		}
		if strings.TrimSpace(out) == "" {
			return fmt.Errorf("%w: llm returned empty output", distillerr.LLMUnavailable)
		}
		result = out
		return nil
	}

	if err := backoff.Retry(op, bounded); err != nil {
		return "", err
	}
	return result, nil
}

// stripChrome removes any preamble before the first top-level markdown
// heading.
var headingPattern = regexp.MustCompile(`(?m)^#\s`)

func stripChrome(raw string) string {
	loc := headingPattern.FindStringIndex(raw)
	if loc == nil {
		return strings.TrimSpace(raw)
	}
	return strings.TrimSpace(raw[loc[0]:])
}

// countWords counts the prose words of body; markdown heading lines are
// not counted.
func countWords(body string) int {
	count := 0
	for _, line := range strings.Split(body, "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "#") {
			continue
		}
		count += len(strings.Fields(line))
	}
	return count
}

func withinTolerance(wordCount, target int) bool {
	if target <= 0 {
		return true
	}
	lower := float64(target) * (1 - lengthTolerance)
	upper := float64(target) * (1 + lengthTolerance)
	return float64(wordCount) >= lower && float64(wordCount) <= upper
}

func buildEntry(dctx model.DailyContext, sessions []model.Session, body string, wordCount int) *model.JournalEntry {
	projects := model.NewStringSet()
	sessionIDs := make([]string, 0, len(sessions))
	totalDuration := 0
	tags := model.NewStringSet()
	for _, sess := range sessions {
		sessionIDs = append(sessionIDs, sess.ID)
		if sess.Project != "" {
			projects.Add(sess.Project)
		}
		if !sess.DurationUnknown {
			totalDuration += int(sess.DurationSeconds)
		}
		for t := range sess.Tags {
			tags.Add(t)
		}
	}

	return &model.JournalEntry{
		Date:            dctx.Date,
		Style:           dctx.Style,
		WordCount:       wordCount,
		Projects:        projects.Slice(),
		SessionsCount:   len(sessions),
		DurationMinutes: totalDuration / 60,
		Tags:            tags,
		BodyMarkdown:    body,
		SourceSessionID: sessionIDs,
		GeneratedAt:     time.Now(),
	}
}

func (s *Synthesizer) write(ctx context.Context, entry *model.JournalEntry) error {
	meta := frontmatterDoc{
		Date:            entry.Date,
		Style:           entry.Style,
		WordCount:       entry.WordCount,
		Projects:        entry.Projects,
		SessionsCount:   entry.SessionsCount,
		DurationMinutes: entry.DurationMinutes,
		Tags:            entry.Tags.Slice(),
		GeneratedAt:     entry.GeneratedAt.Format(time.RFC3339),
	}
	data, err := frontmatter.Render(meta, entry.BodyMarkdown)
	if err != nil {
		return fmt.Errorf("journal: render frontmatter: %w", err)
	}
	return s.Storage.PutFile(ctx, journalFilePath(entry.Date, entry.Style), data)
}

func (s *Synthesizer) readExisting(date, style string) (*model.JournalEntry, error) {
	content, err := os.ReadFile(filepath.Join(s.Storage.BasePath(), journalFilePath(date, style)))
	if err != nil {
		return nil, fmt.Errorf("journal: read cached entry: %w", err)
	}

	var meta frontmatterDoc
	body, err := frontmatter.Parse(content, &meta)
	if err != nil {
		return nil, fmt.Errorf("journal: parse cached entry: %w", err)
	}
	generatedAt, _ := time.Parse(time.RFC3339, meta.GeneratedAt)
	return &model.JournalEntry{
		Date:            meta.Date,
		Style:           meta.Style,
		WordCount:       meta.WordCount,
		Projects:        meta.Projects,
		SessionsCount:   meta.SessionsCount,
		DurationMinutes: meta.DurationMinutes,
		Tags:            model.NewStringSet(meta.Tags...),
		BodyMarkdown:    body,
		GeneratedAt:     generatedAt,
	}, nil
}
