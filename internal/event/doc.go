/*
Package event provides a type-safe, pub/sub event system for reporting
orchestrator progress through distill's ingestion and synthesis pipeline.

The event system enables decoupled communication between pipeline stages
and any attached listeners (CLI progress output, tests) by allowing
publishers to emit events and subscribers to react to them without direct
dependencies.

# Architecture

The package is built on top of watermill's gochannel for infrastructure
while maintaining direct-call semantics to preserve type information. It
provides both synchronous and asynchronous event publishing patterns.

# Event Types

The system reports events for each pipeline stage:

Parsing:
  - parser.started: a source parser began scanning its root.
  - parser.completed: a source parser finished, with item/skip counts.
  - parser.failed: a source's directory was unreadable; fatal for that
    source only, other sources continue.
  - item.deduped: a record was recognized as a duplicate of a known id.

Journal synthesis:
  - journal.started: synthesis began for a (date, style).
  - journal.committed: the entry was written atomically.
  - journal.skipped: a cache hit, nothing regenerated.
  - journal.failed / date.pending: the retry budget was exhausted; the
    date is marked pending and downstream stages skip it.

Blog synthesis:
  - blog.started, blog.committed, blog.skipped, blog.failed: mirror the
    journal events, one per (post_type, slug).

Publishing:
  - publish.started, publish.delivered, publish.rejected: one per
    (post, publisher) pair in the fan-out.

# Basic Usage

Publishing events:

	// Asynchronous publishing (non-blocking)
	event.Publish(event.Event{
		Type: event.JournalCommitted,
		Data: event.JournalCommittedData{Date: "2026-07-30", Style: "reflective"},
	})

	// Synchronous publishing (blocking until all subscribers complete)
	event.PublishSync(event.Event{
		Type: event.BlogSkipped,
		Data: event.BlogSkippedData{PostType: "weekly", Reason: "fewer than 3 journals"},
	})

Subscribing to specific events:

	unsubscribe := event.Subscribe(event.JournalCommitted, func(e event.Event) {
		data := e.Data.(event.JournalCommittedData)
		log.Info("journal committed", "date", data.Date)
	})
	defer unsubscribe()

Subscribing to all events:

	unsubscribe := event.SubscribeAll(func(e event.Event) {
		log.Debug("Event received", "type", e.Type)
	})
	defer unsubscribe()

# Subscriber Safety Guidelines

When using PublishSync, subscribers are called synchronously in the
publisher's goroutine. To avoid blocking or deadlocks, subscribers MUST:

  - Complete quickly (avoid long-running operations)
  - Use non-blocking channel sends (select with default case)
  - Never call Publish/PublishSync from within a subscriber (no re-entrant publishing)
  - Never acquire locks that the publisher might hold

# Custom Event Bus

For testing or isolation, create custom bus instances:

	bus := event.NewBus()
	defer bus.Close()

	unsubscribe := bus.Subscribe(event.JournalCommitted, handler)
	bus.PublishSync(event.Event{Type: event.JournalCommitted, Data: data})

# Testing

The package provides utilities for testing:

	// Reset global bus state (use in test cleanup)
	event.Reset()

# Thread Safety

The event bus is thread-safe and can be used concurrently from multiple
goroutines. Both publishing and subscribing operations are protected by
internal synchronization.

# Integration with Watermill

The package uses watermill's gochannel internally, providing access to
the underlying pubsub infrastructure for advanced use cases:

	pubsub := event.PubSub()
	// Use watermill features like middleware, routing, etc.
*/
package event
