package mock

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/poiesic/lexcorpus/core"
)

// MockResponder is a test double for ai.Responder.
type MockResponder struct {
	// AnswerFunc is called by Answer if set.
	// If nil, the question is echoed back together with the focus laws.
	AnswerFunc func(ctx context.Context, question, language string, focusLaws []string) (string, error)

	// AnswerFromArticlesFunc is called by AnswerFromArticles if set.
	// If nil, the question is echoed back with the titles of the articles.
	AnswerFromArticlesFunc func(ctx context.Context, question, language string, articles []*core.Article) (string, error)

	calls atomic.Int64
}

func NewMockResponder() *MockResponder {
	return &MockResponder{}
}

func (m *MockResponder) Answer(ctx context.Context, question, language string, focusLaws []string) (string, error) {
	m.calls.Add(1)

	if m.AnswerFunc != nil {
		return m.AnswerFunc(ctx, question, language, focusLaws)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	return fmt.Sprintf("[%s] %s (%s)", language, question, strings.Join(focusLaws, ", ")), nil
}

func (m *MockResponder) AnswerFromArticles(ctx context.Context, question, language string, articles []*core.Article) (string, error) {
	m.calls.Add(1)

	if m.AnswerFromArticlesFunc != nil {
		return m.AnswerFromArticlesFunc(ctx, question, language, articles)
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	titles := make([]string, 0, len(articles))
	for _, article := range articles {
		titles = append(titles, article.Title)
	}
	return fmt.Sprintf("[%s] %s {%s}", language, question, strings.Join(titles, "; ")), nil
}

func (m *MockResponder) CallCount() int {
	return int(m.calls.Load())
}

func (m *MockResponder) Reset() {
	m.calls.Store(0)
	m.AnswerFunc = nil
	m.AnswerFromArticlesFunc = nil
}
