package mock

import "github.com/poiesic/lexcorpus/ai"

type MockProvider struct {
	responder *MockResponder
	extractor *MockReferenceExtractor
}

func NewMockProvider() *MockProvider {
	return &MockProvider{
		responder: NewMockResponder(),
		extractor: NewMockReferenceExtractor(),
	}
}

func NewMockProviderWithServices(responder *MockResponder, extractor *MockReferenceExtractor) *MockProvider {
	return &MockProvider{
		responder: responder,
		extractor: extractor,
	}
}

func (p *MockProvider) Responder() ai.Responder {
	return p.responder
}

func (p *MockProvider) ReferenceExtractor() ai.ReferenceExtractor {
	return p.extractor
}

func (p *MockProvider) Close() error {
	return nil
}

func (p *MockProvider) GetMockResponder() *MockResponder {
	return p.responder
}

func (p *MockProvider) GetMockExtractor() *MockReferenceExtractor {
	return p.extractor
}

var _ ai.AIProvider = (*MockProvider)(nil)
