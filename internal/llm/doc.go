/*
Package llm is the hard external boundary the journal and blog
synthesizers call through. A Worker renders a prompt template, invokes an
LLM, and enforces a timeout; three backends implement it:

  - subprocess: shells out to an external CLI coding assistant, piping
    the prompt on stdin and reading markdown from stdout, with
    process-group kill-on-timeout.
  - library: drives an in-process Eino chat model via internal/provider
    (Anthropic or OpenAI), a single-shot completion rather than the
    multi-turn tool-calling loop a live coding assistant would use.
  - http: posts to a bare OpenAI-compatible HTTP completion endpoint, for
    self-hosted or proxy LLM servers.

NewWorker selects among them from LLMConfig.Backend. Every backend wraps
invocation failures, timeouts and empty output as
distillerr.LLMUnavailable or distillerr.LLMTimeout, whichever backend is
configured. A missing command or endpoint, and the HTTP backend's
request-encoding and response-decoding errors, are returned without
either sentinel.
*/
package llm
