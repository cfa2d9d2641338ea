package ai

import (
	"context"

	"github.com/poiesic/lexcorpus/core"
)

// Responder answers legal questions in free text.
// Implementations must be thread-safe for concurrent use.
type Responder interface {
	// Answer responds to question in language, paying attention to focusLaws.
	Answer(ctx context.Context, question, language string, focusLaws []string) (string, error)

	// AnswerFromArticles responds to question using only articles as context.
	AnswerFromArticles(ctx context.Context, question, language string, articles []*core.Article) (string, error)
}

// ReferenceExtractor finds law and article references in text.
// Implementations must be thread-safe for concurrent use.
type ReferenceExtractor interface {
	// ExtractReferences returns the law abbreviations and article eIds
	// mentioned in text. Returns empty References if none are found.
	ExtractReferences(ctx context.Context, text, language string) (References, error)
}

// AIProvider aggregates the language model services for convenient
// initialization and lifecycle management.
type AIProvider interface {
	// Responder returns the answering service.
	Responder() Responder

	// ReferenceExtractor returns the reference extraction service.
	ReferenceExtractor() ReferenceExtractor

	// Close releases resources held by the provider and its services.
	// After Close is called, the provider and its services should not be used.
	Close() error
}
