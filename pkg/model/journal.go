package model

import "time"

// JournalEntry is the synthesized daily journal for one (date, style)
// pair. Dates are formatted "2006-01-02" in the configured timezone.
type JournalEntry struct {
	Date            string    `json:"date"`
	Style           string    `json:"style"`
	WordCount       int       `json:"word_count"`
	Projects        []string  `json:"projects"`
	SessionsCount   int       `json:"sessions_count"`
	DurationMinutes int       `json:"duration_minutes"`
	Tags            StringSet `json:"tags,omitempty"`
	BodyMarkdown    string    `json:"body_markdown"`
	SourceSessionID []string  `json:"source_session_ids"`
	GeneratedAt     time.Time `json:"generated_at"`
}

// DailyContext is the synthesis input assembled by the journal
// synthesizer for a single date: session summaries, rolling memory,
// active editorial guidance, unused seeds, and the projects touched.
type DailyContext struct {
	Date             string
	Style            string
	Sessions         []SessionSummary
	ActiveThreads    []MemoryThread
	RecentEntities   []EntityRecord
	EditorialNotes   []EditorialNote
	UnusedSeeds      []Seed
	ProjectsTouched  []ProjectDescriptor
	TargetWordCount  int
	MemoryWindowDays int
}
