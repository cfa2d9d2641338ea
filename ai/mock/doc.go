// Package mock provides test doubles for the ai package interfaces.
//
// The mocks answer deterministically without a language model. Each one
// exposes a function field that overrides the default behavior and counts
// its calls:
//
//	extractor := mock.NewMockReferenceExtractor()
//	extractor.ExtractReferencesFunc = func(ctx context.Context, text, language string) (ai.References, error) {
//	    return ai.References{Laws: []string{"OR"}, EIDs: []string{"art_4"}}, nil
//	}
package mock
