package model

import "time"

// ThreadStatus classifies whether a MemoryThread is still being actively
// discussed or has gone quiet.
type ThreadStatus string

const (
	ThreadActive  ThreadStatus = "active"
	ThreadDormant ThreadStatus = "dormant"
)

// MemoryThread is a recurring topic tracked across journal entries.
type MemoryThread struct {
	Name         string       `json:"name"`
	Summary      string       `json:"summary"`
	FirstSeen    time.Time    `json:"first_seen"`
	LastSeen     time.Time    `json:"last_seen"`
	MentionCount int          `json:"mention_count"`
	Status       ThreadStatus `json:"status"`
}

// EntityRecord tracks a named entity (a person, tool, project, or
// concept) mentioned across journal entries.
type EntityRecord struct {
	Name           string    `json:"name"`
	EntityType     string    `json:"entity_type"`
	FirstSeen      time.Time `json:"first_seen"`
	LastSeen       time.Time `json:"last_seen"`
	MentionCount   int       `json:"mention_count"`
	RecentContexts []string  `json:"recent_contexts,omitempty"`
}

// PublishedRecord is an append-only log entry recording a successfully
// published BlogPost.
type PublishedRecord struct {
	Slug      string    `json:"slug"`
	Title     string    `json:"title"`
	PostType  PostType  `json:"post_type"`
	Date      string    `json:"date"`
	Platforms StringSet `json:"platforms"`
}

// DailyEntry aggregates everything the memory store has recorded about a
// single calendar date.
type DailyEntry struct {
	Date          string    `json:"date"`
	SessionIDs    []string  `json:"session_ids"`
	ReadIDs       []string  `json:"read_ids"`
	Themes        StringSet `json:"themes,omitempty"`
	Insights      []string  `json:"insights,omitempty"`
	Decisions     []string  `json:"decisions,omitempty"`
	OpenQuestions []string  `json:"open_questions,omitempty"`
}

// UnifiedMemory is the single durable memory record that grows
// monotonically across runs: daily entries, recurring threads, tracked
// entities, and the published-post log.
type UnifiedMemory struct {
	DailyEntries []DailyEntry            `json:"daily_entries"`
	Threads      map[string]MemoryThread `json:"threads"`
	Entities     map[string]EntityRecord `json:"entities"`
	Published    []PublishedRecord       `json:"published"`
}

// NewUnifiedMemory returns an empty UnifiedMemory, the value Load returns
// when no memory file has been persisted yet.
func NewUnifiedMemory() *UnifiedMemory {
	return &UnifiedMemory{
		Threads:  make(map[string]MemoryThread),
		Entities: make(map[string]EntityRecord),
	}
}
