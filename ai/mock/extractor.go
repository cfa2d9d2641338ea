package mock

import (
	"context"
	"regexp"
	"strings"
	"sync/atomic"

	"github.com/poiesic/lexcorpus/ai"
)

var (
	articlePattern = regexp.MustCompile(`(?i)\bart(?:\.|ikel|icle|icolo)?\s*(\d+)([a-z]{0,6})\b`)
	lawPattern     = regexp.MustCompile(`\b[A-Z][A-Za-z]*[A-Z]\b`)
)

// MockReferenceExtractor is a test double for ai.ReferenceExtractor.
type MockReferenceExtractor struct {
	// ExtractReferencesFunc is called by ExtractReferences if set.
	// If nil, references are read from text with simple patterns:
	// "Art. 635a OR" yields law "OR" and eId "art_635_a".
	ExtractReferencesFunc func(ctx context.Context, text, language string) (ai.References, error)

	calls atomic.Int64
}

func NewMockReferenceExtractor() *MockReferenceExtractor {
	return &MockReferenceExtractor{}
}

func (m *MockReferenceExtractor) ExtractReferences(ctx context.Context, text, language string) (ai.References, error) {
	m.calls.Add(1)

	if m.ExtractReferencesFunc != nil {
		return m.ExtractReferencesFunc(ctx, text, language)
	}

	var refs ai.References
	for _, match := range articlePattern.FindAllStringSubmatch(text, -1) {
		eID := "art_" + match[1]
		if match[2] != "" {
			eID += "_" + strings.ToLower(match[2])
		}
		refs.EIDs = append(refs.EIDs, eID)
	}
	refs.Laws = lawPattern.FindAllString(text, -1)
	return refs.Normalize(), nil
}

func (m *MockReferenceExtractor) CallCount() int {
	return int(m.calls.Load())
}

func (m *MockReferenceExtractor) Reset() {
	m.calls.Store(0)
	m.ExtractReferencesFunc = nil
}
