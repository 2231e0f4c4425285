package model

// Config is the root configuration for a distill run, loaded in layers:
// built-in defaults, then the global config file, then the project config
// file, then environment variables. Unknown top-level keys are rejected by
// the loader rather than silently ignored.
type Config struct {
	Schema string `json:"$schema,omitempty"`

	// Output controls where generated artifacts are written.
	Output OutputConfig `json:"output,omitempty"`

	// Sessions controls which coding-assistant session logs are ingested.
	Sessions SessionsConfig `json:"sessions,omitempty"`

	// Intake controls external content feed ingestion.
	Intake IntakeConfig `json:"intake,omitempty"`

	// Journal controls daily journal synthesis.
	Journal JournalConfig `json:"journal,omitempty"`

	// Blog controls weekly/thematic blog synthesis.
	Blog BlogConfig `json:"blog,omitempty"`

	// Projects describes known projects for attribution and prompt context.
	Projects []ProjectDescriptor `json:"projects,omitempty"`

	// LLM selects and configures the synthesis backend.
	LLM LLMConfig `json:"llm,omitempty"`

	// Publishers configures per-platform publication targets, keyed by
	// publisher name.
	Publishers map[string]PublisherConfig `json:"publishers,omitempty"`
}

// OutputConfig controls the root of the generated-artifact tree.
type OutputConfig struct {
	Directory string `json:"directory,omitempty"`
}

// SessionsConfig controls session-log discovery.
type SessionsConfig struct {
	// Sources lists directories to scan for session logs, one per dialect
	// root (chatlog export dirs, rollout manifest dirs, multi-agent mission
	// dirs).
	Sources []string `json:"sources,omitempty"`

	// IncludeGlobal also scans the user-global session directory in
	// addition to Sources.
	IncludeGlobal bool `json:"includeGlobal,omitempty"`

	// SinceDays bounds how far back to look for new sessions; 0 means no
	// bound.
	SinceDays int `json:"sinceDays,omitempty"`
}

// IntakeConfig controls ingestion of external content feeds.
type IntakeConfig struct {
	Feeds              []FeedSource `json:"feeds,omitempty"`
	BrowserHistoryPath string       `json:"browserHistoryPath,omitempty"`
	NewslettersPath    string       `json:"newslettersPath,omitempty"`
}

// FeedSource is one RSS/Atom feed to poll.
type FeedSource struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// JournalConfig controls daily journal entry synthesis.
type JournalConfig struct {
	// Style names the voice/tone preset passed to the synthesis prompt.
	Style string `json:"style,omitempty"`

	TargetWordCount int `json:"targetWordCount,omitempty"`

	// MemoryWindowDays bounds how many days of prior journal entries are
	// loaded as continuity context.
	MemoryWindowDays int `json:"memoryWindowDays,omitempty"`
}

// BlogConfig controls weekly/thematic blog post synthesis.
type BlogConfig struct {
	TargetWordCount int      `json:"targetWordCount,omitempty"`
	IncludeDiagrams bool     `json:"includeDiagrams,omitempty"`
	Platforms       []string `json:"platforms,omitempty"`
}

// ProjectDescriptor names a project distill should recognize when
// attributing sessions and building prompt context.
type ProjectDescriptor struct {
	Name        string `json:"name"`
	Path        string `json:"path,omitempty"`
	Description string `json:"description,omitempty"`
}

// LLMConfig selects and configures the synthesis worker backend.
type LLMConfig struct {
	// Backend selects the llm.Worker implementation: "subprocess",
	// "library", or "http".
	Backend string `json:"backend,omitempty"`

	// Model is a "provider/model" string consumed by the library backend.
	Model string `json:"model,omitempty"`

	// Providers holds per-provider credentials for the library backend.
	Providers map[string]ProviderConfig `json:"providers,omitempty"`

	Subprocess SubprocessLLMConfig `json:"subprocess,omitempty"`
	HTTP       HTTPLLMConfig       `json:"http,omitempty"`

	TimeoutSeconds int `json:"timeoutSeconds,omitempty"`
}

// ProviderConfig holds credentials for one library-backend LLM provider.
type ProviderConfig struct {
	APIKey  string `json:"apiKey,omitempty"`
	BaseURL string `json:"baseURL,omitempty"`
	Model   string `json:"model,omitempty"`
	Disable bool   `json:"disable,omitempty"`
}

// SubprocessLLMConfig configures the subprocess backend, which shells out to
// an external CLI coding assistant and treats its stdout as the completion.
type SubprocessLLMConfig struct {
	Command        []string `json:"command,omitempty"`
	TimeoutSeconds int      `json:"timeoutSeconds,omitempty"`
}

// HTTPLLMConfig configures the http backend, a bare OpenAI-compatible HTTP
// endpoint.
type HTTPLLMConfig struct {
	Endpoint       string `json:"endpoint,omitempty"`
	APIKey         string `json:"apiKey,omitempty"`
	Model          string `json:"model,omitempty"`
	TimeoutSeconds int    `json:"timeoutSeconds,omitempty"`
}

// PublisherConfig configures one publication target.
type PublisherConfig struct {
	// Type selects the publisher implementation: "vault", "cms",
	// "plainmd", "thread", "professional", "discussion", or "scheduler".
	Type    string `json:"type"`
	Enabled bool   `json:"enabled,omitempty"`

	// Target is the destination: a filesystem path for vault/plainmd, the
	// URL the payload is posted to for cms, scheduler, thread,
	// professional and discussion.
	Target string `json:"target,omitempty"`

	APIKey  string            `json:"apiKey,omitempty"`
	Headers map[string]string `json:"headers,omitempty"`
}
