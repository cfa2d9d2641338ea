package openai

import (
	"context"
	"errors"
	"testing"

	"github.com/poiesic/lexcorpus/ai"
	"github.com/poiesic/lexcorpus/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"
)

func TestCleanResponse(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "plain json",
			input:    `{"law_abbreviation_in_capitals": ["OR"]}`,
			expected: `{"law_abbreviation_in_capitals": ["OR"]}`,
		},
		{
			name:     "markdown fence",
			input:    "```json\n{\"a\": [1]}\n```",
			expected: `{"a": [1]}`,
		},
		{
			name:     "surrounding prose",
			input:    `Here you go: {"a": []} hope this helps`,
			expected: `{"a": []}`,
		},
		{
			name:     "missing opening quote",
			input:    `{"a": ["x"], art_number_formatted_as_eId": ["art_4"]}`,
			expected: `{"a": ["x"], "art_number_formatted_as_eId": ["art_4"]}`,
		},
		{
			name:     "trailing commas",
			input:    `{"a": ["x", "y",], "b": [],}`,
			expected: `{"a": ["x", "y"], "b": []}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, cleanResponse(tt.input))
		})
	}
}

func TestScrubString(t *testing.T) {
	assert.Equal(t, "a\tb\nc", scrubString(" a\tb\x00\nc\x07 "))
}

func TestBuildAnswerPrompt(t *testing.T) {
	t.Run("without focus laws", func(t *testing.T) {
		assert.Equal(t, systemPrompts["de"]["answer"], buildAnswerPrompt("de", nil))
	})

	t.Run("with focus laws", func(t *testing.T) {
		got := buildAnswerPrompt("en", []string{"CO", "CC"})
		assert.Contains(t, got, "expert in Swiss law")
		assert.Contains(t, got, "Pay special attention to the following laws: CO, CC.")
	})

	t.Run("unknown language falls back to english", func(t *testing.T) {
		assert.Equal(t, systemPrompts["en"]["answer"], buildAnswerPrompt("rm", nil))
	})

	t.Run("every language has every prompt", func(t *testing.T) {
		for _, language := range ai.Languages {
			for _, key := range []string{"answer", "context", "extract", "focus"} {
				assert.NotEmpty(t, systemPrompts[language][key], "%s/%s", language, key)
			}
		}
	})
}

func TestResponder_Answer(t *testing.T) {
	model := &fakeModel{replies: []string{"Eine AG wird nach Art. 620 OR gegründet."}}
	r := newResponderWithModel(model)

	answer, err := r.Answer(context.Background(), "Wie gründe ich eine AG?", "de", []string{"OR", "ZGB"})
	require.NoError(t, err)
	assert.Equal(t, "Eine AG wird nach Art. 620 OR gegründet.", answer)

	require.Len(t, model.messages, 1)
	msgs := model.messages[0]
	require.Len(t, msgs, 2)
	assert.Equal(t, llms.ChatMessageTypeSystem, msgs[0].Role)
	assert.Contains(t, systemText(msgs[0]), "OR, ZGB")
	assert.Equal(t, llms.ChatMessageTypeHuman, msgs[1].Role)
}

func TestResponder_Errors(t *testing.T) {
	t.Run("transport error", func(t *testing.T) {
		boom := errors.New("connection refused")
		r := newResponderWithModel(&fakeModel{err: boom})

		_, err := r.Answer(context.Background(), "q", "de", nil)
		assert.ErrorIs(t, err, boom)
	})

	t.Run("no choices", func(t *testing.T) {
		r := newResponderWithModel(&fakeModel{noChoice: true})

		_, err := r.Answer(context.Background(), "q", "de", nil)
		assert.ErrorIs(t, err, ErrEmptyResponse)
	})
}

func contextArticles() []*core.Article {
	return []*core.Article{
		{LawName: "OR", EID: "art_620", Title: "Begriff", Buckets: []string{"Corporate Law", "Financial Law"}, Text: "Die Aktiengesellschaft ist eine Gesellschaft."},
		{LawName: "OR", EID: "art_621", Buckets: []string{"Corporate Law"}, Text: "Das Aktienkapital muss mindestens 100 000 Franken betragen."},
	}
}

func TestBuildArticleContext(t *testing.T) {
	got := buildArticleContext("Was ist eine AG?", contextArticles())

	want := "Context:\n" +
		"Begriff (Corporate Law, Financial Law):\nDie Aktiengesellschaft ist eine Gesellschaft.\n\n" +
		"No Title (Corporate Law):\nDas Aktienkapital muss mindestens 100 000 Franken betragen.\n\n" +
		"Question: Was ist eine AG?"
	assert.Equal(t, want, got)
}

func TestResponder_AnswerFromArticles(t *testing.T) {
	model := &fakeModel{replies: []string{"Eine AG ist eine Gesellschaft mit eigener Firma."}}
	r := newResponderWithModel(model)

	answer, err := r.AnswerFromArticles(context.Background(), "Was ist eine AG?", "de", contextArticles())
	require.NoError(t, err)
	assert.Equal(t, "Eine AG ist eine Gesellschaft mit eigener Firma.", answer)

	require.Len(t, model.messages, 1)
	msgs := model.messages[0]
	require.Len(t, msgs, 2)
	assert.Equal(t, systemPrompts["de"]["context"], systemText(msgs[0]))
	assert.Contains(t, systemText(msgs[1]), "Begriff (Corporate Law, Financial Law):")
	assert.Contains(t, systemText(msgs[1]), "Question: Was ist eine AG?")

	t.Run("no articles", func(t *testing.T) {
		model := &fakeModel{replies: []string{"unused"}}
		_, err := newResponderWithModel(model).AnswerFromArticles(context.Background(), "q", "de", nil)
		assert.ErrorIs(t, err, ErrNoContext)
		assert.Zero(t, model.calls)
	})

	t.Run("no choices", func(t *testing.T) {
		_, err := newResponderWithModel(&fakeModel{noChoice: true}).AnswerFromArticles(context.Background(), "q", "de", contextArticles())
		assert.ErrorIs(t, err, ErrEmptyResponse)
	})
}

func TestReferenceExtractor(t *testing.T) {
	t.Run("parses and normalizes", func(t *testing.T) {
		model := &fakeModel{replies: []string{
			"```json\n{\"law_abbreviation_in_capitals\": [\"OR\", \"OR\", \"HRegV\"], \"art_number_formatted_as_eId\": [\"art_620\", \"art_635_a\",]}\n```",
		}}
		e := newReferenceExtractorWithModel(model, 3)

		refs, err := e.ExtractReferences(context.Background(), "Art. 620 OR, Art. 635a OR, HRegV", "de")
		require.NoError(t, err)
		assert.Equal(t, []string{"OR", "HRegV"}, refs.Laws)
		assert.Equal(t, []string{"art_620", "art_635_a"}, refs.EIDs)
		assert.Contains(t, systemText(model.messages[0][0]), "law_abbreviation_in_capitals")
	})

	t.Run("retries malformed json", func(t *testing.T) {
		model := &fakeModel{replies: []string{
			"not json",
			`{"law_abbreviation_in_capitals": ["ZGB"], "art_number_formatted_as_eId": ["art_4"]}`,
		}}
		e := newReferenceExtractorWithModel(model, 3)

		refs, err := e.ExtractReferences(context.Background(), "Art. 4 ZGB", "de")
		require.NoError(t, err)
		assert.Equal(t, []string{"ZGB"}, refs.Laws)
		assert.Equal(t, 2, model.calls)
	})

	t.Run("gives up after max attempts", func(t *testing.T) {
		model := &fakeModel{replies: []string{"still not json"}}
		e := newReferenceExtractorWithModel(model, 3)

		_, err := e.ExtractReferences(context.Background(), "Art. 4 ZGB", "de")
		assert.Error(t, err)
		assert.Equal(t, 3, model.calls)
	})

	t.Run("transport errors are not retried", func(t *testing.T) {
		model := &fakeModel{err: errors.New("timeout")}
		e := newReferenceExtractorWithModel(model, 3)

		_, err := e.ExtractReferences(context.Background(), "Art. 4 ZGB", "de")
		assert.Error(t, err)
		assert.Equal(t, 1, model.calls)
	})

	t.Run("empty text skips the model", func(t *testing.T) {
		model := &fakeModel{replies: []string{"{}"}}
		e := newReferenceExtractorWithModel(model, 3)

		refs, err := e.ExtractReferences(context.Background(), "  \x00 ", "de")
		require.NoError(t, err)
		assert.True(t, refs.IsEmpty())
		assert.Zero(t, model.calls)
	})

	t.Run("no choices yields empty references", func(t *testing.T) {
		e := newReferenceExtractorWithModel(&fakeModel{noChoice: true}, 3)

		refs, err := e.ExtractReferences(context.Background(), "text", "fr")
		require.NoError(t, err)
		assert.True(t, refs.IsEmpty())
	})
}

func TestNewProvider_InvalidConfig(t *testing.T) {
	_, err := NewProvider(&ai.Config{})
	assert.Error(t, err)
}

func TestNewProvider(t *testing.T) {
	p, err := NewProvider(ai.NewConfig(ai.WithHost("http://localhost:11434"), ai.WithToken("test")))
	require.NoError(t, err)
	defer p.Close()

	assert.NotNil(t, p.Responder())
	assert.NotNil(t, p.ReferenceExtractor())
}
