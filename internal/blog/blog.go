// Package blog implements the blog synthesizer: it drives an
// external LLM worker to produce weekly and thematic posts from
// accumulated journal context, enforcing cross-post non-repetition
// against BlogMemory and recording state on success.
package blog

import (
	"context"
	"fmt"
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

const maxAttempts = 3

// defaultAvoidListSize is the number of most recent posts BlogMemory's
// avoid-list is built from.
const defaultAvoidListSize = 10

// defaultOverlapThreshold is the non-repetition overlap ratio past
// which a single re-prompt is issued.
const defaultOverlapThreshold = 0.4

// Synthesizer is the Blog Synthesizer capability.
type Synthesizer struct {
	Worker           llm.Worker
	Storage          *storage.Storage
	State            *state.Store
	AvoidListSize    int
	OverlapThreshold float64
}

// New builds a Synthesizer with the default non-repetition parameters.
func New(worker llm.Worker, store *storage.Storage, st *state.Store) *Synthesizer {
	return &Synthesizer{
		Worker:           worker,
		Storage:          store,
		State:            st,
		AvoidListSize:    defaultAvoidListSize,
		OverlapThreshold: defaultOverlapThreshold,
	}
}

type weeklyPromptData struct {
	Context        model.WeeklyContext
	EditorialNotes []model.EditorialNote
	AvoidKeyPoints []string
	AvoidExamples  []string
}

type thematicPromptData struct {
	Context        model.ThematicContext
	EditorialNotes []model.EditorialNote
	AvoidKeyPoints []string
	AvoidExamples  []string
}

type overlapRePromptData struct {
	Overlapping []string
}

func blogFilePath(slug string) string {
	return fmt.Sprintf("blog/%s.md", slug)
}

// SynthesizeWeekly synthesizes a weekly BlogPost for slug (already
// resolved by the caller via WeeklySlug/ResolveSlugCollision).
func (s *Synthesizer) SynthesizeWeekly(ctx context.Context, slug string, wc model.WeeklyContext, sourceDates []string, notes []model.EditorialNote, includeDiagrams bool, configHash string, force bool) (*model.BlogPost, error) {
	buildData := func(avoidKeyPoints, avoidExamples []string) any {
		return weeklyPromptData{Context: wc, EditorialNotes: notes, AvoidKeyPoints: avoidKeyPoints, AvoidExamples: avoidExamples}
	}
	return s.synthesize(ctx, slug, model.PostTypeWeekly, sourceDates, wc.Projects.Slice(), wc.Themes.Slice(), weeklyPromptTemplate, buildData, includeDiagrams, configHash, force)
}

// SynthesizeThematic synthesizes a thematic BlogPost for slug (already
// resolved by the caller via ThematicSlugBase/ResolveSlugCollision).
func (s *Synthesizer) SynthesizeThematic(ctx context.Context, slug string, tc model.ThematicContext, sourceDates []string, notes []model.EditorialNote, includeDiagrams bool, configHash string, force bool) (*model.BlogPost, error) {
	buildData := func(avoidKeyPoints, avoidExamples []string) any {
		return thematicPromptData{Context: tc, EditorialNotes: notes, AvoidKeyPoints: avoidKeyPoints, AvoidExamples: avoidExamples}
	}
	return s.synthesize(ctx, slug, model.PostTypeThematic, sourceDates, nil, []string{tc.Candidate.Theme}, thematicPromptTemplate, buildData, includeDiagrams, configHash, force)
}

// synthesize is the shared cache-before-compute, generate,
// non-repetition-enforce, write, commit pipeline both post types share.
func (s *Synthesizer) synthesize(
	ctx context.Context,
	slug string,
	postType model.PostType,
	sourceDates []string,
	projects []string,
	themes []string,
	promptTemplate string,
	buildData func(avoidKeyPoints, avoidExamples []string) any,
	includeDiagrams bool,
	configHash string,
	force bool,
) (*model.BlogPost, error) {
	decision, err := s.State.CheckBlog(ctx, slug, sourceDates, configHash, force)
	if err != nil {
		return nil, err
	}
	if decision == state.BlogUpToDate {
		return s.readExisting(slug)
	}

	mem, err := s.State.LoadBlogMemory(ctx)
	if err != nil {
		return nil, err
	}
	avoidKeyPoints, avoidExamples := state.RecentAvoidList(mem, s.AvoidListSize)
	data := buildData(avoidKeyPoints, avoidExamples)

	body, keyPoints, examples, overlapExceeded, err := s.generateWithNonRepetition(ctx, promptTemplate, data, avoidKeyPoints, avoidExamples)
	if err != nil {
		return nil, err
	}

	if includeDiagrams && hasStructuralCues(body) {
		body = insertDiagramPlaceholder(body)
	}

	post := &model.BlogPost{
		Slug:            slug,
		PostType:        postType,
		Date:            time.Now().Format("2006-01-02"),
		Title:           extractTitle(body),
		BodyMarkdown:    body,
		Themes:          model.NewStringSet(themes...),
		Projects:        projects,
		SourceDates:     sourceDates,
		KeyPoints:       keyPoints,
		ExamplesUsed:    examples,
		GeneratedAt:     time.Now(),
		OverlapExceeded: overlapExceeded,
	}

	filePath := blogFilePath(slug)
	if err := s.write(ctx, post, filePath); err != nil {
		return nil, err
	}
	if err := s.State.CommitBlogSuccess(ctx, post, filePath, configHash); err != nil {
		return nil, err
	}
	return post, nil
}

// generateWithNonRepetition drives the LLM, then enforces the
// overlap check: if the candidate's key points overlap the avoid-list
// above OverlapThreshold, one re-prompt is issued naming the overlapping
// items; if still over threshold after that, the draft is accepted with
// overlapExceeded=true rather than dropped.
func (s *Synthesizer) generateWithNonRepetition(ctx context.Context, tmpl string, data any, avoidKeyPoints, avoidExamples []string) (body string, keyPoints, examples []string, overlapExceeded bool, err error) {
	prompt, err := s.Worker.Render(tmpl, data)
	if err != nil {
		return "", nil, nil, false, fmt.Errorf("blog: render prompt: %w", err)
	}
	raw, err := invokeWithBackoff(ctx, s.Worker, prompt)
	if err != nil {
		return "", nil, nil, false, err
	}
	body = stripChrome(raw)
	keyPoints, examples = extractKeyPointsAndExamples(body)

	ratio := overlapRatio(keyPoints, avoidKeyPoints)
	if ratio <= s.OverlapThreshold {
		return body, keyPoints, examples, false, nil
	}

	overlapping := overlappingItems(keyPoints, avoidKeyPoints)
	rePrompt, rErr := s.Worker.Render(overlapRePromptTemplate, overlapRePromptData{Overlapping: overlapping})
	if rErr != nil {
		logging.Warn().Err(rErr).Msg("blog: failed to render overlap re-prompt, accepting original draft")
		return body, keyPoints, examples, true, nil
	}
	retried, rErr := invokeWithBackoff(ctx, s.Worker, rePrompt)
	if rErr != nil {
		logging.Warn().Err(rErr).Msg("blog: overlap re-prompt invocation failed, accepting original draft")
		return body, keyPoints, examples, true, nil
	}
	retriedBody := stripChrome(retried)
	retriedKeyPoints, retriedExamples := extractKeyPointsAndExamples(retriedBody)
	retriedRatio := overlapRatio(retriedKeyPoints, avoidKeyPoints)
	if retriedRatio > s.OverlapThreshold {
		logging.Warn().Float64("overlap_ratio", retriedRatio).Msg("blog: overlap still above threshold after re-prompt, accepting with diagnostic")
		return retriedBody, retriedKeyPoints, retriedExamples, true, nil
	}
	return retriedBody, retriedKeyPoints, retriedExamples, false, nil
}

func overlappingItems(candidate, avoid []string) []string {
	avoidSet := make(map[string]struct{}, len(avoid))
	for _, a := range avoid {
		avoidSet[strings.ToLower(strings.TrimSpace(a))] = struct{}{}
	}
	var out []string
	for _, c := range candidate {
		if _, ok := avoidSet[strings.ToLower(strings.TrimSpace(c))]; ok {
			out = append(out, c)
		}
	}
	return out
}

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

func insertDiagramPlaceholder(body string) string {
	return body + "\n\n```mermaid\ngraph TD\n  A[Start] --> B[...]\n```\n"
}

func extractTitle(body string) string {
	for _, line := range strings.Split(body, "\n") {
		if strings.HasPrefix(line, "# ") {
			return strings.TrimSpace(strings.TrimPrefix(line, "# "))
		}
	}
	return ""
}

type frontmatterDoc struct {
	Slug         string   `yaml:"slug"`
	PostType     string   `yaml:"post_type"`
	Date         string   `yaml:"date"`
	Title        string   `yaml:"title"`
	Themes       []string `yaml:"themes"`
	Projects     []string `yaml:"projects"`
	SourceDates  []string `yaml:"source_dates"`
	KeyPoints    []string `yaml:"key_points"`
	ExamplesUsed []string `yaml:"examples_used"`
	GeneratedAt  string   `yaml:"generated_at"`
	OverlapFlag  bool     `yaml:"overlap_exceeded,omitempty"`
}

func (s *Synthesizer) write(ctx context.Context, post *model.BlogPost, filePath string) error {
	meta := frontmatterDoc{
		Slug:         post.Slug,
		PostType:     string(post.PostType),
		Date:         post.Date,
		Title:        post.Title,
		Themes:       post.Themes.Slice(),
		Projects:     post.Projects,
		SourceDates:  post.SourceDates,
		KeyPoints:    post.KeyPoints,
		ExamplesUsed: post.ExamplesUsed,
		GeneratedAt:  post.GeneratedAt.Format(time.RFC3339),
		OverlapFlag:  post.OverlapExceeded,
	}
	data, err := frontmatter.Render(meta, post.BodyMarkdown)
	if err != nil {
		return fmt.Errorf("blog: render frontmatter: %w", err)
	}
	return s.Storage.PutFile(ctx, filePath, data)
}

// ReadPost reads a previously written post back from disk, for callers
// that republish without regenerating.
func (s *Synthesizer) ReadPost(slug string) (*model.BlogPost, error) {
	return s.readExisting(slug)
}

func (s *Synthesizer) readExisting(slug string) (*model.BlogPost, error) {
	path := blogFilePath(slug)
	content, err := readFile(s.Storage, path)
	if err != nil {
		return nil, fmt.Errorf("blog: read cached post: %w", err)
	}
	var meta frontmatterDoc
	body, err := frontmatter.Parse(content, &meta)
	if err != nil {
		return nil, fmt.Errorf("blog: parse cached post: %w", err)
	}
	generatedAt, _ := time.Parse(time.RFC3339, meta.GeneratedAt)
	return &model.BlogPost{
		Slug:            meta.Slug,
		PostType:        model.PostType(meta.PostType),
		Date:            meta.Date,
		Title:           meta.Title,
		BodyMarkdown:    body,
		Themes:          model.NewStringSet(meta.Themes...),
		Projects:        meta.Projects,
		SourceDates:     meta.SourceDates,
		KeyPoints:       meta.KeyPoints,
		ExamplesUsed:    meta.ExamplesUsed,
		GeneratedAt:     generatedAt,
		OverlapExceeded: meta.OverlapFlag,
	}, nil
}
