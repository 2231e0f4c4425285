// Package model provides the core data types persisted and exchanged
// across distill's ingestion, synthesis, and publishing pipeline.
package model

import "time"

// Source identifies where a ContentItem originated.
type Source string

const (
	SourceClaudeSession Source = "claude-session"
	SourceCodexSession  Source = "codex-session"
	SourceVermasSession Source = "vermas-session"
	SourceRSS           Source = "rss"
	SourceBrowser       Source = "browser"
	SourceSubstack      Source = "substack"
	SourceGmail         Source = "gmail"
	SourceLinkedIn      Source = "linkedin"
	SourceTwitter       Source = "twitter"
	SourceReddit        Source = "reddit"
	SourceYouTube       Source = "youtube"
	SourceSeed          Source = "seed"
)

// ContentType classifies the shape of a ContentItem's payload.
type ContentType string

const (
	ContentTypeSession ContentType = "session"
	ContentTypeArticle ContentType = "article"
	ContentTypePost    ContentType = "post"
	ContentTypeEmail   ContentType = "email"
	ContentTypeVideo   ContentType = "video"
	ContentTypeNote    ContentType = "note"
)

// ContentItem is the canonical ingestion record every parser produces.
//
// ID is derived from (Source, a stable native id, a URL, or a content
// hash) so that re-ingesting the same underlying record always yields the
// same ID; see internal/normalize for the derivation rules.
type ContentItem struct {
	ID          string         `json:"id"`
	Source      Source         `json:"source"`
	ContentType ContentType    `json:"content_type"`
	Title       string         `json:"title"`
	Body        string         `json:"body"`
	Excerpt     string         `json:"excerpt,omitempty"`
	URL         string         `json:"url,omitempty"`
	Author      string         `json:"author,omitempty"`
	SiteName    string         `json:"site_name,omitempty"`
	PublishedAt *time.Time     `json:"published_at,omitempty"`
	IngestedAt  time.Time      `json:"ingested_at"`
	Tags        StringSet      `json:"tags,omitempty"`
	Topics      StringSet      `json:"topics,omitempty"`
	Project     string         `json:"project,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
}

// BucketDate returns the time this item is bucketed under (see
// internal/normalize.BucketItemDate): published_at if present, else
// ingested_at.
func (c *ContentItem) BucketDate() time.Time {
	if c.PublishedAt != nil {
		return *c.PublishedAt
	}
	return c.IngestedAt
}
