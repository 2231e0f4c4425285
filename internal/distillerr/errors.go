// Package distillerr defines the sentinel error taxonomy shared across
// distill's packages, so callers can classify a failure with errors.Is
// instead of matching on error strings.
package distillerr

import "errors"

var (
	// SourceUnavailable indicates a session or content source could not be
	// read (missing directory, unreachable feed, permission error).
	SourceUnavailable = errors.New("source unavailable")

	// ParseError indicates a source was reachable but its content did not
	// match the expected dialect or format.
	ParseError = errors.New("parse error")

	// LLMUnavailable indicates the configured llm.Worker backend could not
	// be reached at all (process failed to start, connection refused).
	LLMUnavailable = errors.New("llm backend unavailable")

	// LLMTimeout indicates the llm.Worker backend was reached but did not
	// respond before its configured timeout.
	LLMTimeout = errors.New("llm backend timed out")

	// ContentTooShort indicates synthesized prose fell below the minimum
	// acceptable length after trimming.
	ContentTooShort = errors.New("synthesized content too short")

	// ContentTooLong indicates synthesized prose exceeded its target length
	// by more than the allowed tolerance even after a retry.
	ContentTooLong = errors.New("synthesized content too long")

	// PublisherRejected indicates a publish target rejected delivery
	// (authentication failure, malformed payload, non-2xx response).
	PublisherRejected = errors.New("publisher rejected delivery")

	// StateCorrupt indicates a stored memory or state file failed to
	// decode, implying a concurrent write or manual edit broke invariants.
	StateCorrupt = errors.New("state store corrupt")

	// UnknownConfigKey indicates a config file set a top-level key that
	// distill's Config type does not define.
	UnknownConfigKey = errors.New("unknown config key")
)
