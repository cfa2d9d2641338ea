// Package ai provides abstractions for the language model services used to
// answer questions against the corpus.
//
// Two services exist. A Responder answers a legal question in free text.
// A ReferenceExtractor reads text (usually the answer) and returns the law
// abbreviations and article eIds it mentions; the query layer turns those
// into a corpus filter.
//
// # Implementation Packages
//
//   - ai/openai: Production implementation using OpenAI-compatible APIs
//   - ai/mock: Test doubles for unit testing without external dependencies
//
// Public constructors return interface types so callers do not couple to a
// concrete implementation.
package ai
