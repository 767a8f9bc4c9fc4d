// Package llm provides the language-model capability used for task
// extraction. The capability is a single completion call; callers treat the
// returned text as JSON-like structured data and parse it defensively.
package llm
