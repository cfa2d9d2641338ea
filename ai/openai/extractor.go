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
	"context"
	"encoding/json"
	"log/slog"

	"github.com/poiesic/lexcorpus/ai"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// ReferenceExtractor implements ai.ReferenceExtractor using OpenAI-compatible chat APIs.
type ReferenceExtractor struct {
	client      llms.Model
	maxAttempts int
	logger      *slog.Logger
}

// newReferenceExtractor is an internal constructor that returns the concrete type.
// Used by Provider to manage the instance.
func newReferenceExtractor(config *ai.Config) (*ReferenceExtractor, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	client, err := openai.New(
		openai.WithBaseURL(config.Host),
		openai.WithToken(config.Token),
		openai.WithModel(config.ExtractionModel),
	)
	if err != nil {
		return nil, err
	}
	return newReferenceExtractorWithModel(client, config.MaxAttempts), nil
}

func newReferenceExtractorWithModel(client llms.Model, maxAttempts int) *ReferenceExtractor {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &ReferenceExtractor{
		client:      client,
		maxAttempts: maxAttempts,
		logger:      slog.Default().With("component", "openai-extractor"),
	}
}

// NewReferenceExtractor creates a new reference extractor using the provided configuration.
//
// Returns ai.ReferenceExtractor interface to enforce abstraction.
func NewReferenceExtractor(config *ai.Config) (ai.ReferenceExtractor, error) {
	return newReferenceExtractor(config)
}

// ExtractReferences asks the extraction model for the laws and article eIds
// mentioned in text. Malformed JSON replies are retried; transport errors are not.
func (e *ReferenceExtractor) ExtractReferences(ctx context.Context, text, language string) (ai.References, error) {
	text = scrubString(text)
	if text == "" {
		return ai.References{}, nil
	}

	content := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, buildExtractionPrompt(language)),
		llms.TextParts(llms.ChatMessageTypeHuman, text),
	}

	var result ai.References
	var lastErr error
	for attempt := 0; attempt < e.maxAttempts; attempt++ {
		response, err := e.client.GenerateContent(ctx, content, llms.WithTemperature(0.0), llms.WithJSONMode())
		if err != nil {
			e.logger.Error("failed to generate content", "attempt", attempt+1, "err", err)
			return ai.References{}, err
		}

		if len(response.Choices) < 1 {
			e.logger.Debug("no choices returned from model")
			return ai.References{}, nil
		}

		responseText := cleanResponse(response.Choices[0].Content)
		result = ai.References{}
		if err := json.Unmarshal([]byte(responseText), &result); err != nil {
			lastErr = err
			e.logger.Warn("error parsing extraction response",
				"attempt", attempt+1,
				"response", responseText,
				"err", err)
			continue
		}

		lastErr = nil
		break
	}

	if lastErr != nil {
		e.logger.Error("failed to parse extraction response after retries", "err", lastErr)
		return ai.References{}, lastErr
	}

	refs := result.Normalize()
	e.logger.Debug("extracted references", "laws", len(refs.Laws), "articles", len(refs.EIDs))
	return refs, nil
}
