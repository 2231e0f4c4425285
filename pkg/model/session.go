package model

import "time"

// Outcome is a single structured event observed during a session: a file
// modification, a command invocation, or a signal emitted by an agent.
type Outcome struct {
	Type    string    `json:"type"` // "file_modified" | "command_run" | "signal_emitted"
	Path    string    `json:"path,omitempty"`
	Command string    `json:"command,omitempty"`
	Time    time.Time `json:"time"`
}

// AgentSignal is an ordered event emitted by an agent during a
// multi-agent session: a status update, a decision, or a quality call.
type AgentSignal struct {
	Time    time.Time `json:"ts"`
	AgentID string    `json:"agent_id"`
	Role    string    `json:"role"`
	Signal  string    `json:"signal"`
	Message string    `json:"message"`
}

// Session specializes ContentItem for a coding-assistant session,
// regardless of which dialect (chat-log, rollout, multi-agent) produced
// it. DurationUnknown is set when recomputed duration would be negative.
type Session struct {
	ContentItem

	StartedAt       time.Time      `json:"started_at"`
	EndedAt         time.Time      `json:"ended_at"`
	DurationSeconds int64          `json:"duration_seconds"`
	DurationUnknown bool           `json:"duration_unknown,omitempty"`
	ToolUsage       map[string]int `json:"tool_usage,omitempty"`
	Outcomes        []Outcome      `json:"outcomes,omitempty"`
	AgentSignals    []AgentSignal  `json:"agent_signals,omitempty"`
	Learnings       []string       `json:"learnings,omitempty"`
	ModifiedFiles   []string       `json:"modified_files,omitempty"`
}

// SessionSummary is a compact, prompt-friendly description of a session
// for DailyContext construction (title, duration, project, tool usage,
// outcomes, learnings, top-level signals).
type SessionSummary struct {
	ID        string
	Title     string
	Project   string
	Duration  time.Duration
	ToolUsage map[string]int
	Outcomes  []Outcome
	Learnings []string
	Signals   []AgentSignal
}

// Summarize produces a SessionSummary from a Session.
func (s *Session) Summarize() SessionSummary {
	return SessionSummary{
		ID:        s.ID,
		Title:     s.Title,
		Project:   s.Project,
		Duration:  time.Duration(s.DurationSeconds) * time.Second,
		ToolUsage: s.ToolUsage,
		Outcomes:  s.Outcomes,
		Learnings: s.Learnings,
		Signals:   s.AgentSignals,
	}
}
