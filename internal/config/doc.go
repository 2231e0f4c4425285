// Package config provides configuration loading, merging, and path
// management for distill.
//
// # Configuration Loading
//
// Load implements a layered loading strategy, applied in priority order:
//
//  1. Built-in defaults
//  2. Global config (~/.config/distill/distill.json[c])
//  3. Project config (<directory>/.distill/distill.json[c])
//  4. Environment variables
//
// Later layers override earlier ones field-by-field; maps are merged key by
// key rather than replaced wholesale.
//
// # Supported Formats
//
// Both distill.json and distill.jsonc (JSON with // and /* */ comments) are
// accepted; comments are stripped before parsing. Unlike the merge step,
// parsing a single file rejects unknown top-level keys outright — a typo'd
// key fails the run instead of being silently dropped, since a batch job
// with no interactive feedback loop would otherwise mask the mistake for
// weeks.
//
// # Environment Variable Overrides
//
//   - ANTHROPIC_API_KEY, OPENAI_API_KEY - library-backend provider credentials
//   - DISTILL_MODEL - overrides llm.model
//
// The global config directory is located through XDG_CONFIG_HOME (see
// Path Management below); no other variable relocates it.
//
// # Path Management
//
// Paths follows the XDG Base Directory Specification for distill's own
// memory/state storage, distinct from output.directory (the generated
// journal/blog/publication tree, which is itself a Config field):
//
//   - Data: ~/.local/share/distill (XDG_DATA_HOME)
//   - Config: ~/.config/distill (XDG_CONFIG_HOME)
//   - Cache: ~/.cache/distill (XDG_CACHE_HOME)
//   - State: ~/.local/state/distill (XDG_STATE_HOME)
package config
