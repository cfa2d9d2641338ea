package badger

import (
	"context"
	"testing"

	"github.com/poiesic/lexcorpus/core"
	"github.com/poiesic/lexcorpus/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newArticle(law, language, eID string, buckets ...string) *core.Article {
	return &core.Article{
		Id:       core.ArticleID(law, language, eID),
		LawName:  law,
		EID:      eID,
		Buckets:  buckets,
		Title:    "Title " + eID,
		Text:     "Text " + eID,
		Link:     "https://www.fedlex.admin.ch/eli/cc/" + law + "/" + language + "#" + eID,
		Language: language,
	}
}

func sampleCorpus() []*core.Article {
	return []*core.Article{
		newArticle("OR", "de", "art_1", "Corporate Law", "General Counsel Law"),
		newArticle("OR", "de", "art_4", "Corporate Law", "General Counsel Law"),
		newArticle("DSG", "de", "art_1", "General Counsel Law"),
		newArticle("KAG", "de", "art_1", "Financial Law"),
		newArticle("CO", "fr", "art_4", "Corporate Law"),
	}
}

func setupRepo(t *testing.T) *ArticleRepository {
	t.Helper()
	repo, backend, err := NewMemoryRepository()
	require.NoError(t, err)
	t.Cleanup(func() {
		repo.Close()
		backend.Close()
	})
	return repo
}

func eIDs(articles []*core.Article) []string {
	out := make([]string, 0, len(articles))
	for _, a := range articles {
		out = append(out, a.LawName+":"+a.EID)
	}
	return out
}

func TestReplaceAll(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.ReplaceAll(ctx, sampleCorpus()))
	count, err := repo.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, count)

	t.Run("second run replaces the corpus", func(t *testing.T) {
		require.NoError(t, repo.ReplaceAll(ctx, sampleCorpus()[:2]))
		count, err := repo.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, count)

		_, err = repo.Get(ctx, core.ArticleID("KAG", "de", "art_1"))
		assert.ErrorIs(t, err, storage.ErrNotFound)
	})

	t.Run("empty set clears the corpus", func(t *testing.T) {
		require.NoError(t, repo.ReplaceAll(ctx, nil))
		count, err := repo.Count(ctx)
		require.NoError(t, err)
		assert.Zero(t, count)
	})
}

func TestReplaceAll_RejectsInvalidArticle(t *testing.T) {
	repo := setupRepo(t)

	err := repo.ReplaceAll(context.Background(), []*core.Article{{EID: "art_1", Language: "de"}})
	assert.ErrorIs(t, err, core.ErrEmptyLawName)
}

func TestReplaceAll_Idempotent(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()

	require.NoError(t, repo.ReplaceAll(ctx, sampleCorpus()))
	first, err := repo.Find(ctx, storage.Filter{})
	require.NoError(t, err)

	require.NoError(t, repo.ReplaceAll(ctx, sampleCorpus()))
	second, err := repo.Find(ctx, storage.Filter{})
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestGet(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()
	require.NoError(t, repo.ReplaceAll(ctx, sampleCorpus()))

	got, err := repo.Get(ctx, core.ArticleID("OR", "de", "art_4"))
	require.NoError(t, err)
	assert.Equal(t, newArticle("OR", "de", "art_4", "Corporate Law", "General Counsel Law"), got)

	_, err = repo.Get(ctx, core.ID(12345))
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestFind(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()
	require.NoError(t, repo.ReplaceAll(ctx, sampleCorpus()))

	tests := []struct {
		name   string
		filter storage.Filter
		want   []string
	}{
		{
			name:   "everything, ordered by language then law",
			filter: storage.Filter{},
			want:   []string{"DSG:art_1", "KAG:art_1", "OR:art_1", "OR:art_4", "CO:art_4"},
		},
		{
			name:   "language partition",
			filter: storage.Filter{Language: "fr"},
			want:   []string{"CO:art_4"},
		},
		{
			name:   "law name is case-insensitive",
			filter: storage.Filter{LawNames: []string{"or"}, Language: "de"},
			want:   []string{"OR:art_1", "OR:art_4"},
		},
		{
			name:   "law name without language",
			filter: storage.Filter{LawNames: []string{"Co"}},
			want:   []string{"CO:art_4"},
		},
		{
			name:   "eId set",
			filter: storage.Filter{EIDs: []string{"art_4"}},
			want:   []string{"OR:art_4", "CO:art_4"},
		},
		{
			name:   "bucket membership",
			filter: storage.Filter{Buckets: []string{"Financial Law", "Corporate Law"}, Language: "de"},
			want:   []string{"KAG:art_1", "OR:art_1", "OR:art_4"},
		},
		{
			name:   "several laws in one language",
			filter: storage.Filter{LawNames: []string{"OR", "DSG"}, EIDs: []string{"art_1"}, Language: "de"},
			want:   []string{"DSG:art_1", "OR:art_1"},
		},
		{
			name:   "padded language",
			filter: storage.Filter{Language: "fr "},
			want:   []string{"CO:art_4"},
		},
		{
			name:   "padded eId and law",
			filter: storage.Filter{LawNames: []string{" co"}, EIDs: []string{" art_4"}, Language: " fr"},
			want:   []string{"CO:art_4"},
		},
		{
			name:   "body text terms",
			filter: storage.Filter{Text: "TEXT art_1", Language: "de"},
			want:   []string{"DSG:art_1", "KAG:art_1", "OR:art_1"},
		},
		{
			name:   "no match",
			filter: storage.Filter{LawNames: []string{"ZGB"}, Language: "de"},
			want:   []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := repo.Find(ctx, tt.filter)
			require.NoError(t, err)
			assert.Equal(t, tt.want, eIDs(got))
		})
	}
}

func TestFind_Cancelled(t *testing.T) {
	repo := setupRepo(t)
	require.NoError(t, repo.ReplaceAll(context.Background(), sampleCorpus()))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := repo.Find(ctx, storage.Filter{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestClosedBackend(t *testing.T) {
	repo, backend, err := NewMemoryRepository()
	require.NoError(t, err)
	require.NoError(t, backend.Close())

	ctx := context.Background()
	assert.ErrorIs(t, repo.ReplaceAll(ctx, sampleCorpus()), storage.ErrStorageClosed)
	_, err = repo.Find(ctx, storage.Filter{})
	assert.ErrorIs(t, err, storage.ErrStorageClosed)
	_, err = repo.Count(ctx)
	assert.ErrorIs(t, err, storage.ErrStorageClosed)
}

func TestScanPrefixes(t *testing.T) {
	assert.Equal(t, [][]byte{[]byte(articleRecordPrefix)}, scanPrefixes(storage.Filter{LawNames: []string{"OR"}}))
	assert.Equal(t, [][]byte{[]byte("artrec:de\x00")}, scanPrefixes(storage.Filter{Language: "de"}))
	assert.Equal(t,
		[][]byte{[]byte("artrec:de\x00dsg\x00"), []byte("artrec:de\x00or\x00")},
		scanPrefixes(storage.Filter{LawNames: []string{"OR", "DSG"}, Language: "de"}),
	)
}
