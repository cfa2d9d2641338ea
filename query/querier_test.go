package query

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/poiesic/lexcorpus/ai"
	"github.com/poiesic/lexcorpus/ai/mock"
	"github.com/poiesic/lexcorpus/buckets"
	"github.com/poiesic/lexcorpus/core"
	"github.com/poiesic/lexcorpus/storage"
	"github.com/poiesic/lexcorpus/storage/badger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingRepository counts Find calls against the wrapped repository.
type countingRepository struct {
	storage.ArticleRepository
	finds atomic.Int64
}

func (c *countingRepository) Find(ctx context.Context, filter storage.Filter) ([]*core.Article, error) {
	c.finds.Add(1)
	return c.ArticleRepository.Find(ctx, filter)
}

func article(law, language, eID string, bucketNames ...string) *core.Article {
	return &core.Article{
		Id:       core.ArticleID(law, language, eID),
		LawName:  law,
		Language: language,
		EID:      eID,
		Title:    "Title " + eID,
		Text:     "Text " + eID,
		Buckets:  bucketNames,
		Link:     "https://example.org/" + law + "#" + eID,
	}
}

func setupRepository(t *testing.T) *countingRepository {
	t.Helper()

	repo, backend, err := badger.NewMemoryRepository()
	require.NoError(t, err)
	t.Cleanup(func() {
		repo.Close()
		backend.Close()
	})

	require.NoError(t, repo.ReplaceAll(context.Background(), []*core.Article{
		article("OR", "de", "art_620", "Corporate Law", "General Counsel Law"),
		article("OR", "de", "art_635_a", "Corporate Law"),
		article("HRegV", "de", "art_4", "Corporate Law"),
		article("ZGB", "de", "art_4", "General Counsel Law"),
		article("CO", "fr", "art_620", "Corporate Law"),
	}))
	return &countingRepository{ArticleRepository: repo}
}

func testIndex() *buckets.Index {
	return buckets.NewIndex(buckets.Table{
		"Corporate Law":       {"de": {"OR", "HRegV"}, "fr": {"CO"}},
		"General Counsel Law": {"de": {"OR", "ZGB"}},
	})
}

func eIDs(articles []*core.Article) []string {
	out := make([]string, 0, len(articles))
	for _, a := range articles {
		out = append(out, a.LawName+"/"+a.EID)
	}
	return out
}

func TestNewQuerier(t *testing.T) {
	repo := setupRepository(t)

	t.Run("valid configuration", func(t *testing.T) {
		q, err := NewQuerier(repo)
		require.NoError(t, err)
		assert.NotNil(t, q)
	})

	t.Run("with options", func(t *testing.T) {
		q, err := NewQuerier(repo,
			WithLogger(nil),
			WithCacheSize(8),
			WithProvider(mock.NewMockProvider()),
			WithIndex(testIndex()),
		)
		require.NoError(t, err)
		assert.NotNil(t, q.extractor)
		assert.NotNil(t, q.responder)
	})

	t.Run("nil repository", func(t *testing.T) {
		_, err := NewQuerier(nil)
		assert.Equal(t, ErrRepositoryRequired, err)
	})

	t.Run("invalid cache size", func(t *testing.T) {
		_, err := NewQuerier(repo, WithCacheSize(0))
		assert.Equal(t, ErrInvalidCacheSize, err)
	})
}

func TestFind(t *testing.T) {
	repo := setupRepository(t)
	q, err := NewQuerier(repo)
	require.NoError(t, err)
	ctx := context.Background()

	t.Run("law names match case-insensitively", func(t *testing.T) {
		got, err := q.Find(ctx, storage.Filter{LawNames: []string{"hregv"}, Language: "de"})
		require.NoError(t, err)
		assert.Equal(t, []string{"HRegV/art_4"}, eIDs(got))
	})

	t.Run("conjunctive filter", func(t *testing.T) {
		got, err := q.Find(ctx, storage.Filter{
			LawNames: []string{"OR", "ZGB"},
			EIDs:     []string{"art_4", "art_620"},
			Buckets:  []string{"General Counsel Law"},
			Language: "de",
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"OR/art_620", "ZGB/art_4"}, eIDs(got))
	})

	t.Run("empty filter returns everything", func(t *testing.T) {
		got, err := q.Find(ctx, storage.Filter{})
		require.NoError(t, err)
		assert.Len(t, got, 5)
	})
}

func TestFind_Cache(t *testing.T) {
	repo := setupRepository(t)
	q, err := NewQuerier(repo)
	require.NoError(t, err)
	ctx := context.Background()

	first, err := q.Find(ctx, storage.Filter{LawNames: []string{"OR", "ZGB"}, Language: "de"})
	require.NoError(t, err)

	// Same filter in another spelling hits the cache
	second, err := q.Find(ctx, storage.Filter{LawNames: []string{"zgb", "or", "OR"}, Language: "de"})
	require.NoError(t, err)
	assert.Equal(t, eIDs(first), eIDs(second))
	assert.Equal(t, int64(1), repo.finds.Load())

	// Callers cannot corrupt the cached slice
	second[0] = nil
	third, err := q.Find(ctx, storage.Filter{LawNames: []string{"OR", "ZGB"}, Language: "de"})
	require.NoError(t, err)
	assert.NotNil(t, third[0])

	q.Purge()
	_, err = q.Find(ctx, storage.Filter{LawNames: []string{"OR", "ZGB"}, Language: "de"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), repo.finds.Load())
}

func TestFind_PaddedFilterDoesNotPoisonCache(t *testing.T) {
	repo := setupRepository(t)
	q, err := NewQuerier(repo)
	require.NoError(t, err)
	ctx := context.Background()

	padded, err := q.Find(ctx, storage.Filter{Language: "de ", EIDs: []string{" art_4"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"HRegV/art_4", "ZGB/art_4"}, eIDs(padded))

	clean, err := q.Find(ctx, storage.Filter{Language: "de", EIDs: []string{"art_4"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"HRegV/art_4", "ZGB/art_4"}, eIDs(clean))
	assert.Equal(t, int64(1), repo.finds.Load())
}

func TestAsk_FromQuestion(t *testing.T) {
	repo := setupRepository(t)
	q, err := NewQuerier(repo, WithExtractor(mock.NewMockReferenceExtractor()))
	require.NoError(t, err)

	answer, err := q.Ask(context.Background(), "Was regeln Art. 620 OR und Art. 4 HRegV?", "de", []string{"Corporate Law"})
	require.NoError(t, err)

	assert.Empty(t, answer.Response)
	assert.Equal(t, []string{"OR", "HRegV"}, answer.References.Laws)
	assert.Equal(t, []string{"art_620", "art_4"}, answer.References.EIDs)
	assert.Equal(t, []string{"HRegV/art_4", "OR/art_620"}, eIDs(answer.Articles))
}

func TestAsk_FromResponse(t *testing.T) {
	repo := setupRepository(t)

	responder := mock.NewMockResponder()
	var focus []string
	responder.AnswerFunc = func(ctx context.Context, question, language string, focusLaws []string) (string, error) {
		focus = focusLaws
		return "Siehe Art. 635a OR.", nil
	}
	q, err := NewQuerier(repo,
		WithProvider(mock.NewMockProviderWithServices(responder, mock.NewMockReferenceExtractor())),
		WithIndex(testIndex()),
	)
	require.NoError(t, err)

	answer, err := q.Ask(context.Background(), "Wer haftet bei der Gründung?", "de", []string{"Corporate Law"})
	require.NoError(t, err)

	assert.Equal(t, []string{"OR", "HRegV"}, focus)
	assert.Equal(t, "Siehe Art. 635a OR.", answer.Response)
	assert.Equal(t, []string{"OR/art_635_a"}, eIDs(answer.Articles))
}

func TestAsk_AllBucketsWhenNoneSelected(t *testing.T) {
	repo := setupRepository(t)

	responder := mock.NewMockResponder()
	var focus []string
	responder.AnswerFunc = func(ctx context.Context, question, language string, focusLaws []string) (string, error) {
		focus = focusLaws
		return "Art. 4 ZGB", nil
	}
	q, err := NewQuerier(repo, WithResponder(responder), WithExtractor(mock.NewMockReferenceExtractor()), WithIndex(testIndex()))
	require.NoError(t, err)

	answer, err := q.Ask(context.Background(), "Treu und Glauben?", "de", nil)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"OR", "HRegV", "ZGB"}, focus)
	assert.Equal(t, []string{"ZGB/art_4"}, eIDs(answer.Articles))
}

func TestAsk_NothingReferenced(t *testing.T) {
	repo := setupRepository(t)
	extractor := mock.NewMockReferenceExtractor()
	extractor.ExtractReferencesFunc = func(ctx context.Context, text, language string) (ai.References, error) {
		return ai.References{Laws: []string{"OR"}}, nil
	}
	q, err := NewQuerier(repo, WithExtractor(extractor))
	require.NoError(t, err)

	answer, err := q.Ask(context.Background(), "Was ist das OR?", "de", nil)
	require.NoError(t, err)
	assert.Empty(t, answer.Articles)
	assert.NotNil(t, answer.Articles)
	assert.Zero(t, repo.finds.Load())
}

func TestAsk_Errors(t *testing.T) {
	repo := setupRepository(t)
	ctx := context.Background()

	t.Run("empty question", func(t *testing.T) {
		q, err := NewQuerier(repo, WithExtractor(mock.NewMockReferenceExtractor()))
		require.NoError(t, err)

		_, err = q.Ask(ctx, "   ", "de", nil)
		assert.ErrorIs(t, err, ErrEmptyQuestion)
	})

	t.Run("no extractor", func(t *testing.T) {
		q, err := NewQuerier(repo)
		require.NoError(t, err)

		_, err = q.Ask(ctx, "Art. 4 ZGB", "de", nil)
		assert.ErrorIs(t, err, ErrExtractorRequired)
	})

	t.Run("extractor failure", func(t *testing.T) {
		boom := errors.New("boom")
		extractor := mock.NewMockReferenceExtractor()
		extractor.ExtractReferencesFunc = func(ctx context.Context, text, language string) (ai.References, error) {
			return ai.References{}, boom
		}
		q, err := NewQuerier(repo, WithExtractor(extractor))
		require.NoError(t, err)

		_, err = q.Ask(ctx, "Art. 4 ZGB", "de", nil)
		assert.ErrorIs(t, err, boom)
	})

	t.Run("responder failure", func(t *testing.T) {
		boom := errors.New("rate limited")
		responder := mock.NewMockResponder()
		responder.AnswerFunc = func(ctx context.Context, question, language string, focusLaws []string) (string, error) {
			return "", boom
		}
		extractor := mock.NewMockReferenceExtractor()
		q, err := NewQuerier(repo, WithResponder(responder), WithExtractor(extractor))
		require.NoError(t, err)

		_, err = q.Ask(ctx, "Art. 4 ZGB", "de", nil)
		assert.ErrorIs(t, err, boom)
		assert.Zero(t, extractor.CallCount())
	})
}

type recordingMonitor struct {
	noopMonitor
	stages []string
}

func (r *recordingMonitor) Start(_, _ string) {
	r.stages = append(r.stages, "start")
}

func (r *recordingMonitor) AfterAnswer(_ string) {
	r.stages = append(r.stages, "answer")
}

func (r *recordingMonitor) AfterExtraction(_ ai.References) {
	r.stages = append(r.stages, "extract")
}

func (r *recordingMonitor) BeforeFind(_ storage.Filter, cached bool) {
	if cached {
		r.stages = append(r.stages, "find(cached)")
		return
	}
	r.stages = append(r.stages, "find")
}

func (r *recordingMonitor) Finish(_ []*core.Article) {
	r.stages = append(r.stages, "finish")
}

func TestAskWithMonitor(t *testing.T) {
	repo := setupRepository(t)
	q, err := NewQuerier(repo, WithExtractor(mock.NewMockReferenceExtractor()))
	require.NoError(t, err)

	monitor := &recordingMonitor{}
	for i := 0; i < 2; i++ {
		_, err := q.AskWithMonitor(context.Background(), "Art. 4 ZGB", "de", nil, monitor)
		require.NoError(t, err)
	}

	assert.Equal(t, []string{
		"start", "extract", "find", "finish",
		"start", "extract", "find(cached)", "finish",
	}, monitor.stages)
}

func setupTextRepository(t *testing.T) *countingRepository {
	t.Helper()

	repo, backend, err := badger.NewMemoryRepository()
	require.NoError(t, err)
	t.Cleanup(func() {
		repo.Close()
		backend.Close()
	})

	withText := func(a *core.Article, title, text string) *core.Article {
		a.Title = title
		a.Text = text
		return a
	}
	require.NoError(t, repo.ReplaceAll(context.Background(), []*core.Article{
		withText(article("OR", "de", "art_620", "Corporate Law"), "Begriff",
			"Die Aktiengesellschaft ist eine Gesellschaft mit eigener Firma."),
		withText(article("OR", "de", "art_621", "Corporate Law"), "Mindestkapital",
			"Das Aktienkapital der Aktiengesellschaft muss mindestens 100 000 Franken betragen."),
		withText(article("ZGB", "de", "art_2", "General Counsel Law"), "Handeln nach Treu und Glauben",
			"Jedermann hat in der Ausübung seiner Rechte nach Treu und Glauben zu handeln."),
		withText(article("CO", "fr", "art_620", "Corporate Law"), "Définition",
			"La société anonyme est celle qui se forme sous une raison sociale."),
	}))
	return &countingRepository{ArticleRepository: repo}
}

func TestAskFromArticles(t *testing.T) {
	ctx := context.Background()

	t.Run("answers from matching articles", func(t *testing.T) {
		repo := setupTextRepository(t)
		responder := mock.NewMockResponder()
		var seen []*core.Article
		responder.AnswerFromArticlesFunc = func(ctx context.Context, question, language string, articles []*core.Article) (string, error) {
			seen = articles
			return "Eine AG braucht 100 000 Franken.", nil
		}
		q, err := NewQuerier(repo, WithResponder(responder))
		require.NoError(t, err)

		answer, err := q.AskFromArticles(ctx, "Aktiengesellschaft?", "de", nil)
		require.NoError(t, err)
		assert.Equal(t, []string{"OR/art_620", "OR/art_621"}, eIDs(answer.Articles))
		assert.Equal(t, eIDs(answer.Articles), eIDs(seen))
		assert.Equal(t, "Eine AG braucht 100 000 Franken.", answer.Response)
		assert.Equal(t, "Aktiengesellschaft?", answer.Filter.Text)
		assert.True(t, answer.References.IsEmpty())
	})

	t.Run("every term must occur", func(t *testing.T) {
		q, err := NewQuerier(setupTextRepository(t), WithResponder(mock.NewMockResponder()))
		require.NoError(t, err)

		answer, err := q.AskFromArticles(ctx, "Was ist das Aktienkapital der Aktiengesellschaft?", "de", nil)
		require.NoError(t, err)
		assert.Equal(t, []string{"OR/art_621"}, eIDs(answer.Articles))
	})

	t.Run("buckets and language constrain the articles", func(t *testing.T) {
		q, err := NewQuerier(setupTextRepository(t))
		require.NoError(t, err)

		answer, err := q.AskFromArticles(ctx, "Treu und Glauben", "de", []string{"Corporate Law"})
		require.NoError(t, err)
		assert.Empty(t, answer.Articles)

		answer, err = q.AskFromArticles(ctx, "société anonyme", "fr", []string{"Corporate Law"})
		require.NoError(t, err)
		assert.Equal(t, []string{"CO/art_620"}, eIDs(answer.Articles))
	})

	t.Run("no match gives no answer", func(t *testing.T) {
		responder := mock.NewMockResponder()
		q, err := NewQuerier(setupTextRepository(t), WithResponder(responder))
		require.NoError(t, err)

		answer, err := q.AskFromArticles(ctx, "Handelsregister", "de", nil)
		require.NoError(t, err)
		assert.Empty(t, answer.Response)
		assert.NotNil(t, answer.Articles)
		assert.Empty(t, answer.Articles)
		assert.Zero(t, responder.CallCount())
	})

	t.Run("without responder returns articles only", func(t *testing.T) {
		q, err := NewQuerier(setupTextRepository(t))
		require.NoError(t, err)

		answer, err := q.AskFromArticles(ctx, "firma", "de", nil)
		require.NoError(t, err)
		assert.Empty(t, answer.Response)
		assert.Equal(t, []string{"OR/art_620"}, eIDs(answer.Articles))
	})

	t.Run("results are cached per filter", func(t *testing.T) {
		repo := setupTextRepository(t)
		q, err := NewQuerier(repo)
		require.NoError(t, err)

		monitor := &recordingMonitor{}
		for i := 0; i < 2; i++ {
			_, err := q.AskFromArticlesWithMonitor(ctx, "Firma", "de", nil, monitor)
			require.NoError(t, err)
		}
		assert.Equal(t, int64(1), repo.finds.Load())
		assert.Equal(t, []string{"start", "find", "finish", "start", "find(cached)", "finish"}, monitor.stages)
	})

	t.Run("monitor sees the answer", func(t *testing.T) {
		q, err := NewQuerier(setupTextRepository(t), WithResponder(mock.NewMockResponder()))
		require.NoError(t, err)

		monitor := &recordingMonitor{}
		_, err = q.AskFromArticlesWithMonitor(ctx, "Firma", "de", nil, monitor)
		require.NoError(t, err)
		assert.Equal(t, []string{"start", "find", "answer", "finish"}, monitor.stages)
	})
}

func TestAskFromArticles_Errors(t *testing.T) {
	ctx := context.Background()
	repo := setupTextRepository(t)

	t.Run("empty question", func(t *testing.T) {
		q, err := NewQuerier(repo)
		require.NoError(t, err)

		_, err = q.AskFromArticles(ctx, " ", "de", nil)
		assert.ErrorIs(t, err, ErrEmptyQuestion)
	})

	t.Run("stop words only", func(t *testing.T) {
		q, err := NewQuerier(repo)
		require.NoError(t, err)

		_, err = q.AskFromArticles(ctx, "was ist das?", "de", nil)
		assert.ErrorIs(t, err, ErrNoSearchTerms)
	})

	t.Run("responder failure", func(t *testing.T) {
		boom := errors.New("rate limited")
		responder := mock.NewMockResponder()
		responder.AnswerFromArticlesFunc = func(context.Context, string, string, []*core.Article) (string, error) {
			return "", boom
		}
		q, err := NewQuerier(repo, WithResponder(responder))
		require.NoError(t, err)

		_, err = q.AskFromArticles(ctx, "Firma", "de", nil)
		assert.ErrorIs(t, err, boom)
	})
}
