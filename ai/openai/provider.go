// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package openai

import (
	"fmt"
	"log/slog"

	"github.com/poiesic/lexcorpus/ai"
)

// Provider bundles the answering and extraction services of one
// OpenAI-compatible endpoint.
type Provider struct {
	responder *Responder
	extractor *ReferenceExtractor
	logger    *slog.Logger
}

var _ ai.AIProvider = (*Provider)(nil)

// NewProvider validates cfg and builds both services against cfg.Host.
func NewProvider(cfg *ai.Config) (ai.AIProvider, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	responder, err := newResponder(cfg)
	if err != nil {
		return nil, fmt.Errorf("answer model %s: %w", cfg.AnswerModel, err)
	}
	extractor, err := newReferenceExtractor(cfg)
	if err != nil {
		return nil, fmt.Errorf("extraction model %s: %w", cfg.ExtractionModel, err)
	}

	logger := slog.Default().With("component", "openai-provider")
	logger.Debug("provider ready",
		"host", cfg.Host,
		"answer_model", cfg.AnswerModel,
		"extraction_model", cfg.ExtractionModel)

	return &Provider{responder: responder, extractor: extractor, logger: logger}, nil
}

func (p *Provider) Responder() ai.Responder {
	return p.responder
}

func (p *Provider) ReferenceExtractor() ai.ReferenceExtractor {
	return p.extractor
}

// Close is a no-op; langchaingo clients hold no resources.
func (p *Provider) Close() error {
	p.logger.Debug("closing OpenAI provider")
	return nil
}
