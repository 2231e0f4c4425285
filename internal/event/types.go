package event

// ParserStartedData is the data for parser.started events.
type ParserStartedData struct {
	Dialect string `json:"dialect"`
	Root    string `json:"root"`
}

// ParserCompletedData is the data for parser.completed events.
type ParserCompletedData struct {
	Dialect    string `json:"dialect"`
	Root       string `json:"root"`
	ItemCount  int    `json:"itemCount"`
	SkipCount  int    `json:"skipCount"`
}

// ParserFailedData is the data for parser.failed events: an unreadable
// source directory. Fatal for that source only; other sources continue.
type ParserFailedData struct {
	Dialect string `json:"dialect"`
	Root    string `json:"root"`
	Error   string `json:"error"`
}

// ItemDedupedData is the data for item.deduped events.
type ItemDedupedData struct {
	ID     string `json:"id"`
	Source string `json:"source"`
}

// DatePendingData is the data for date.pending events: a date whose
// journal synthesis failed after the retry budget was exhausted.
type DatePendingData struct {
	Date  string `json:"date"`
	Style string `json:"style"`
}

// JournalStartedData is the data for journal.started events.
type JournalStartedData struct {
	Date  string `json:"date"`
	Style string `json:"style"`
}

// JournalCommittedData is the data for journal.committed events.
type JournalCommittedData struct {
	Date      string `json:"date"`
	Style     string `json:"style"`
	WordCount int    `json:"wordCount"`
	FilePath  string `json:"filePath"`
}

// JournalSkippedData is the data for journal.skipped events: the cache
// key (date, style, session-id-set) matched an existing entry.
type JournalSkippedData struct {
	Date  string `json:"date"`
	Style string `json:"style"`
}

// JournalFailedData is the data for journal.failed events.
type JournalFailedData struct {
	Date  string `json:"date"`
	Style string `json:"style"`
	Error string `json:"error"`
}

// BlogStartedData is the data for blog.started events.
type BlogStartedData struct {
	Slug     string `json:"slug"`
	PostType string `json:"postType"`
}

// BlogCommittedData is the data for blog.committed events.
type BlogCommittedData struct {
	Slug            string `json:"slug"`
	PostType        string `json:"postType"`
	WordCount       int    `json:"wordCount"`
	FilePath        string `json:"filePath"`
	OverlapExceeded bool   `json:"overlapExceeded,omitempty"`
}

// BlogSkippedData is the data for blog.skipped events: either the
// weekly/thematic preconditions weren't met or state was already current.
type BlogSkippedData struct {
	Slug     string `json:"slug,omitempty"`
	PostType string `json:"postType"`
	Reason   string `json:"reason"`
}

// BlogFailedData is the data for blog.failed events.
type BlogFailedData struct {
	Slug     string `json:"slug"`
	PostType string `json:"postType"`
	Error    string `json:"error"`
}

// PublishStartedData is the data for publish.started events.
type PublishStartedData struct {
	Slug      string `json:"slug"`
	Publisher string `json:"publisher"`
}

// PublishDeliveredData is the data for publish.delivered events.
type PublishDeliveredData struct {
	Slug      string `json:"slug"`
	Publisher string `json:"publisher"`
	Receipt   string `json:"receipt,omitempty"`
}

// PublishRejectedData is the data for publish.rejected events.
type PublishRejectedData struct {
	Slug      string `json:"slug"`
	Publisher string `json:"publisher"`
	Error     string `json:"error"`
}
