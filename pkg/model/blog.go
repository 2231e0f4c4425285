package model

import "time"

// PostType identifies the shape of a BlogPost.
type PostType string

const (
	PostTypeWeekly     PostType = "weekly"
	PostTypeThematic   PostType = "thematic"
	PostTypeReadingList PostType = "reading-list"
)

// BlogPost is the synthesized output for one (post_type, slug) pair.
type BlogPost struct {
	Slug               string    `json:"slug"`
	PostType           PostType  `json:"post_type"`
	Date               string    `json:"date"`
	Title              string    `json:"title"`
	BodyMarkdown       string    `json:"body_markdown"`
	Themes             StringSet `json:"themes,omitempty"`
	Projects           []string  `json:"projects"`
	SourceDates        []string  `json:"source_dates"`
	KeyPoints          []string  `json:"key_points,omitempty"`
	ExamplesUsed       []string  `json:"examples_used,omitempty"`
	PlatformsPublished StringSet `json:"platforms_published,omitempty"`
	GeneratedAt        time.Time `json:"generated_at"`
	Diagram            string    `json:"diagram,omitempty"`

	// OverlapExceeded is set when the non-repetition re-prompt still
	// produced overlap above threshold; the post is still written, with
	// this diagnostic flag recorded alongside it.
	OverlapExceeded bool `json:"overlap_exceeded,omitempty"`
}

// WeeklyContext is the synthesis input for a weekly BlogPost, built by
// internal/blogcontext from the journal entries in an ISO week.
type WeeklyContext struct {
	ISOWeek         string
	Projects        StringSet
	Themes          StringSet
	RecurringTopics []string
	Decisions       []string
	OpenQuestions   []string
	JournalCount    int
}

// ThemeCandidate is a memory thread eligible for a thematic BlogPost.
type ThemeCandidate struct {
	Theme        string
	MentionCount int
	LastSeen     time.Time
	Excerpts     []string
	Entities     []EntityRecord
}

// ThematicContext is the synthesis input for a thematic BlogPost.
type ThematicContext struct {
	Candidate ThemeCandidate
}

// BlogMemory is the non-repetition record kept alongside blog state:
// the key points and examples from recent posts, used to build the
// synthesizer's avoid-list.
type BlogMemory struct {
	RecentPosts []BlogMemoryEntry `json:"recent_posts"`
}

// BlogMemoryEntry records one previously generated post's reusable
// fingerprint for the avoid-list.
type BlogMemoryEntry struct {
	Slug         string    `json:"slug"`
	PostType     PostType  `json:"post_type"`
	GeneratedAt  time.Time `json:"generated_at"`
	KeyPoints    []string  `json:"key_points"`
	ExamplesUsed []string  `json:"examples_used"`
}

// BlogStateEntry is one durable record of a committed BlogPost, tracked
// so the idempotence layer can skip up-to-date work.
type BlogStateEntry struct {
	Slug        string    `json:"slug"`
	PostType    PostType  `json:"post_type"`
	GeneratedAt time.Time `json:"generated_at"`
	SourceDates []string  `json:"source_dates"`
	FilePath    string    `json:"file_path"`
	ConfigHash  string    `json:"config_hash"`
}

// BlogState is the full durable record of all committed BlogPosts.
type BlogState struct {
	Entries []BlogStateEntry `json:"entries"`
}
