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
	"errors"
	"log/slog"

	"github.com/poiesic/lexcorpus/ai"
	"github.com/poiesic/lexcorpus/core"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

var (
	// ErrEmptyResponse is returned when the model produced no choices.
	ErrEmptyResponse = errors.New("model returned no choices")

	// ErrNoContext is returned when an answer from articles gets no articles.
	ErrNoContext = errors.New("no articles to answer from")
)

// Responder implements ai.Responder using an OpenAI-compatible chat API.
type Responder struct {
	client llms.Model
	logger *slog.Logger
}

// newResponder is an internal constructor that returns the concrete type.
func newResponder(config *ai.Config) (*Responder, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	client, err := openai.New(
		openai.WithBaseURL(config.Host),
		openai.WithToken(config.Token),
		openai.WithModel(config.AnswerModel),
	)
	if err != nil {
		return nil, err
	}
	return newResponderWithModel(client), nil
}

func newResponderWithModel(client llms.Model) *Responder {
	return &Responder{
		client: client,
		logger: slog.Default().With("component", "openai-responder"),
	}
}

// NewResponder creates a responder using the provided configuration.
func NewResponder(config *ai.Config) (ai.Responder, error) {
	return newResponder(config)
}

// Answer sends question to the answering model. The system message is the
// expert prompt for language, followed by the focus laws when given.
func (r *Responder) Answer(ctx context.Context, question, language string, focusLaws []string) (string, error) {
	content := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, buildAnswerPrompt(language, focusLaws)),
		llms.TextParts(llms.ChatMessageTypeHuman, scrubString(question)),
	}

	response, err := r.client.GenerateContent(ctx, content)
	if err != nil {
		r.logger.Error("failed to generate answer", "err", err)
		return "", err
	}
	if len(response.Choices) < 1 {
		return "", ErrEmptyResponse
	}

	r.logger.Debug("answered question", "language", language, "focus_laws", len(focusLaws))
	return response.Choices[0].Content, nil
}

// AnswerFromArticles sends question together with the rendered articles.
// Without articles there is nothing to answer from and ErrNoContext is returned.
func (r *Responder) AnswerFromArticles(ctx context.Context, question, language string, articles []*core.Article) (string, error) {
	if len(articles) == 0 {
		return "", ErrNoContext
	}
	content := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, prompts(language)["context"]),
		llms.TextParts(llms.ChatMessageTypeHuman, scrubString(buildArticleContext(question, articles))),
	}

	response, err := r.client.GenerateContent(ctx, content)
	if err != nil {
		r.logger.Error("failed to generate answer from articles", "err", err)
		return "", err
	}
	if len(response.Choices) < 1 {
		return "", ErrEmptyResponse
	}

	r.logger.Debug("answered question from articles", "language", language, "articles", len(articles))
	return response.Choices[0].Content, nil
}
