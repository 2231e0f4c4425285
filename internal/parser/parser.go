// Package parser defines the capability contract every source parser
// implements: discover source locations under a root, then parse each
// location into raw records. Concrete dialects live in subpackages
// (chatlog, rollout, multiagent, feed, browser, newsletter); this package
// only holds the shared contract and a diagnostic type.
package parser

import (
	"context"

	"github.com/silverl/distill/pkg/model"
)

// Diagnostic records a non-fatal parse problem: a malformed record or
// file that was skipped rather than aborting the whole source.
type Diagnostic struct {
	Location string
	Message  string
	Err      error
}

// ParseResult is everything one location yielded: zero or more Sessions
// (for session dialects), zero or more ContentItems (for external feed
// dialects), and any diagnostics for records that were skipped.
type ParseResult struct {
	Sessions    []model.Session
	Items       []model.ContentItem
	Diagnostics []Diagnostic
}

// SourceParser is the capability set every dialect parser implements:
// discover(root) -> locations, parse(location) -> raw records.
type SourceParser interface {
	// ID names the dialect, used in diagnostics and project config.
	ID() string

	// Discover finds source locations under root: files for chat-log,
	// multi-agent, browser and newsletter, session directories for
	// rollout, feed URLs read from root/feeds.txt for the feed parser.
	// An unreadable root is a fatal error for this
	// source only; other sources continue.
	Discover(ctx context.Context, root string) ([]string, error)

	// Parse reads one location and returns its records. Malformed
	// records are skipped with a Diagnostic, never failing the whole
	// location; a malformed whole file returns an empty result plus one
	// Diagnostic.
	Parse(ctx context.Context, location string) (*ParseResult, error)
}
