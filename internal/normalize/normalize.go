// Package normalize merges parser output into the canonical, deduplicated
// ContentItem/Session stream and buckets records by calendar date.
package normalize

import (
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"strings"
	"time"

	"github.com/silverl/distill/pkg/model"
)

// DeriveID computes the stable ContentItem.ID, in priority
// order: (source, nativeID) if the parser supplied a stable native id;
// else sha256(normalized(url)) if a URL is present; else
// sha256(source|title|date|first-512-bytes-of-body).
func DeriveID(source model.Source, nativeID, rawURL, title, body string, date time.Time) string {
	if nativeID != "" {
		return hash(string(source) + "|" + nativeID)
	}
	if rawURL != "" {
		if normalized, ok := normalizeURL(rawURL); ok {
			return hash(normalized)
		}
	}
	excerpt := body
	if len(excerpt) > 512 {
		excerpt = excerpt[:512]
	}
	return hash(string(source) + "|" + title + "|" + date.Format("2006-01-02") + "|" + excerpt)
}

func hash(s string) string {
	sum := sha256.Sum256([]byte(s))
	return hex.EncodeToString(sum[:])
}

// normalizeURL lowercases the host and strips the trailing slash and
// fragment, so two feed URLs resolving to the same canonical article
// dedupe to one ContentItem.
func normalizeURL(raw string) (string, bool) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", false
	}
	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""
	u.Path = strings.TrimSuffix(u.Path, "/")
	return u.String(), true
}

// Merger accumulates ContentItems and Sessions across every parser's
// output, applying last-write-wins on mutable metadata and first-write-wins
// on IngestedAt when two records collide on ID.
type Merger struct {
	items    map[string]model.ContentItem
	sessions map[string]model.Session
	order    []string
}

// NewMerger returns an empty Merger.
func NewMerger() *Merger {
	return &Merger{
		items:    make(map[string]model.ContentItem),
		sessions: make(map[string]model.Session),
	}
}

// AddItem merges one external-content ContentItem into the stream. It
// returns true if this ID had not been seen before.
func (m *Merger) AddItem(item model.ContentItem) bool {
	existing, seen := m.items[item.ID]
	if seen {
		item.IngestedAt = existing.IngestedAt
		m.items[item.ID] = item
		return false
	}
	m.items[item.ID] = item
	m.order = append(m.order, item.ID)
	return true
}

// AddSession merges one Session into the stream, same collision policy as
// AddItem. It returns true if this ID had not been seen before.
func (m *Merger) AddSession(session model.Session) bool {
	existing, seen := m.sessions[session.ID]
	if seen {
		session.IngestedAt = existing.IngestedAt
		m.sessions[session.ID] = session
		return false
	}
	m.sessions[session.ID] = session
	m.order = append(m.order, session.ID)
	return true
}

// Items returns the deduplicated ContentItems in first-seen order.
func (m *Merger) Items() []model.ContentItem {
	out := make([]model.ContentItem, 0, len(m.items))
	for _, id := range m.order {
		if item, ok := m.items[id]; ok {
			out = append(out, item)
		}
	}
	return out
}

// Sessions returns the deduplicated Sessions in first-seen order.
func (m *Merger) Sessions() []model.Session {
	out := make([]model.Session, 0, len(m.sessions))
	for _, id := range m.order {
		if session, ok := m.sessions[id]; ok {
			out = append(out, session)
		}
	}
	return out
}

// BucketDate returns the calendar date (in loc) a Session belongs under:
// StartedAt if set, else IngestedAt.
func BucketDate(s *model.Session, loc *time.Location) string {
	t := s.StartedAt
	if t.IsZero() {
		t = s.IngestedAt
	}
	return t.In(loc).Format("2006-01-02")
}

// BucketItemDate returns the calendar date (in loc) a ContentItem belongs
// under, via ContentItem.BucketDate.
func BucketItemDate(c *model.ContentItem, loc *time.Location) string {
	return c.BucketDate().In(loc).Format("2006-01-02")
}

// BucketSessions groups sessions by calendar date in the configured
// timezone.
func BucketSessions(sessions []model.Session, loc *time.Location) map[string][]model.Session {
	buckets := make(map[string][]model.Session)
	for _, s := range sessions {
		date := BucketDate(&s, loc)
		buckets[date] = append(buckets[date], s)
	}
	return buckets
}

// BucketItems groups content items by calendar date in the configured
// timezone.
func BucketItems(items []model.ContentItem, loc *time.Location) map[string][]model.ContentItem {
	buckets := make(map[string][]model.ContentItem)
	for _, c := range items {
		date := BucketItemDate(&c, loc)
		buckets[date] = append(buckets[date], c)
	}
	return buckets
}
