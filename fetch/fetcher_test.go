package fetch

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/poiesic/lexcorpus/config"
	"github.com/poiesic/lexcorpus/core"
	"github.com/poiesic/lexcorpus/source"
	"github.com/poiesic/lexcorpus/source/local"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const orDocument = `<akomaNtoso><act><body><article eId="art_1"><heading>A</heading></article></body></act></akomaNtoso>`

// server serves /eli/cc/or/de, fails /eli/cc/flaky/de twice with 503,
// returns 403 for /eli/cc/forbidden/de and 404 for everything else.
func newServer(t *testing.T) (*httptest.Server, *atomic.Int64) {
	t.Helper()

	var flaky atomic.Int64
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/eli/cc/or/de":
			w.Header().Set("Content-Type", "application/xml")
			io.WriteString(w, orDocument)
		case "/eli/cc/flaky/de":
			if flaky.Add(1) <= 2 {
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}
			io.WriteString(w, "<akomaNtoso/>")
		case "/eli/cc/forbidden/de":
			w.WriteHeader(http.StatusForbidden)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(server.Close)
	return server, &flaky
}

func newConfig(t *testing.T, sourceURL string, laws map[string]string) *config.Config {
	t.Helper()

	opts := []config.Option{
		config.WithBaseURL("https://www.fedlex.admin.ch/eli/"),
		config.WithSourceURL(sourceURL),
		config.WithBucket("Corporate Law", "de", "OR"),
	}
	for law, path := range laws {
		opts = append(opts, config.WithLaw("de", law, path))
	}
	cfg := config.NewConfig(opts...)
	require.NoError(t, cfg.Validate())
	return cfg
}

func newStore(t *testing.T) *local.Store {
	t.Helper()
	store, err := local.NewStore(t.TempDir())
	require.NoError(t, err)
	return store
}

func readDocument(t *testing.T, store source.Store, law string) string {
	t.Helper()
	r, err := store.Open(context.Background(), source.DocumentPath(law, "de"))
	require.NoError(t, err)
	defer r.Close()
	data, err := io.ReadAll(r)
	require.NoError(t, err)
	return string(data)
}

func TestNewFetcher(t *testing.T) {
	store := newStore(t)
	cfg := newConfig(t, "https://example.org/eli", nil)

	t.Run("valid configuration", func(t *testing.T) {
		f, err := NewFetcher(cfg, store, WithPoolSize(2), WithRetry(2, time.Millisecond), WithLogger(nil))
		require.NoError(t, err)
		f.Release()
	})

	t.Run("nil config", func(t *testing.T) {
		_, err := NewFetcher(nil, store)
		assert.Equal(t, ErrConfigRequired, err)
	})

	t.Run("nil store", func(t *testing.T) {
		_, err := NewFetcher(cfg, nil)
		assert.Equal(t, ErrStoreRequired, err)
	})

	t.Run("invalid retry", func(t *testing.T) {
		_, err := NewFetcher(cfg, store, WithRetry(0, time.Second))
		assert.ErrorIs(t, err, ErrInvalidMaxAttempts)
	})
}

func TestFetch(t *testing.T) {
	server, flaky := newServer(t)
	store := newStore(t)
	cfg := newConfig(t, server.URL+"/eli", map[string]string{
		"OR":    "cc/or/de",
		"FINIG": "/cc/flaky/de",
		"KAG":   "cc/missing/de",
		"BankG": "cc/forbidden/de",
	})

	f, err := NewFetcher(cfg, store, WithRetry(3, time.Millisecond))
	require.NoError(t, err)
	defer f.Release()

	report, err := f.Fetch(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 4, report.Laws)
	assert.Equal(t, 2, report.Fetched)
	assert.False(t, report.OK())
	assert.Equal(t, int64(3), flaky.Load(), "flaky law succeeds on the third attempt")

	require.Len(t, report.Failures, 2)
	// Failures follow law order: BankG before KAG
	assert.Equal(t, "BankG", report.Failures[0].Unit.Law)
	assert.ErrorIs(t, report.Failures[0].Err, ErrUnexpectedStatus)
	assert.Equal(t, "KAG", report.Failures[1].Unit.Law)
	assert.ErrorIs(t, report.Failures[1].Err, core.ErrSourceNotFound)
	assert.Equal(t, server.URL+"/eli/cc/missing/de", report.Failures[1].URL)

	assert.Equal(t, orDocument, readDocument(t, store, "OR"))
	assert.Equal(t, "<akomaNtoso/>", readDocument(t, store, "FINIG"))
	assert.Equal(t, int64(len(orDocument)+len("<akomaNtoso/>")), report.Bytes)
}

func TestFetch_SkipExisting(t *testing.T) {
	server, _ := newServer(t)
	store := newStore(t)
	require.NoError(t, store.Put(context.Background(), source.DocumentPath("OR", "de"), []byte("cached")))

	cfg := newConfig(t, server.URL+"/eli/", map[string]string{"OR": "cc/or/de"})
	f, err := NewFetcher(cfg, store, WithSkipExisting(true))
	require.NoError(t, err)
	defer f.Release()

	report, err := f.Fetch(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, report.Existing)
	assert.Zero(t, report.Fetched)
	assert.True(t, report.OK())
	assert.Equal(t, "cached", readDocument(t, store, "OR"))
}

type failingStore struct {
	source.Store
}

func (failingStore) Put(context.Context, string, []byte) error {
	return errors.New("disk full")
}

func TestFetch_StoreFailure(t *testing.T) {
	server, _ := newServer(t)
	cfg := newConfig(t, server.URL+"/eli/", map[string]string{"OR": "cc/or/de"})

	f, err := NewFetcher(cfg, failingStore{Store: newStore(t)})
	require.NoError(t, err)
	defer f.Release()

	report, err := f.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, report.Failures, 1)
	assert.ErrorIs(t, report.Failures[0].Err, core.ErrStorageFailure)
}

func TestFetch_Cancelled(t *testing.T) {
	server, _ := newServer(t)
	cfg := newConfig(t, server.URL+"/eli/", map[string]string{"OR": "cc/or/de"})

	f, err := NewFetcher(cfg, newStore(t))
	require.NoError(t, err)
	defer f.Release()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = f.Fetch(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
