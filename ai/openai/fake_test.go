package openai

import (
	"context"
	"sync"

	"github.com/tmc/langchaingo/llms"
)

// fakeModel replays canned replies in order and records the messages it saw.
type fakeModel struct {
	mu       sync.Mutex
	replies  []string
	err      error
	noChoice bool
	calls    int
	messages [][]llms.MessageContent
}

func (f *fakeModel) GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.calls++
	f.messages = append(f.messages, messages)
	if f.err != nil {
		return nil, f.err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if f.noChoice {
		return &llms.ContentResponse{}, nil
	}

	reply := f.replies[len(f.replies)-1]
	if f.calls <= len(f.replies) {
		reply = f.replies[f.calls-1]
	}
	return &llms.ContentResponse{Choices: []*llms.ContentChoice{{Content: reply}}}, nil
}

func (f *fakeModel) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, f, prompt, options...)
}

func systemText(m llms.MessageContent) string {
	return m.Parts[0].(llms.TextContent).Text
}
