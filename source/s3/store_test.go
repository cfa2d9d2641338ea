package s3

import (
	"context"
	"io"
	"os"
	"testing"

	"github.com/poiesic/lexcorpus/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStore_Validation(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{name: "missing endpoint", cfg: Config{AccessKey: "a", SecretKey: "s", Bucket: "laws"}},
		{name: "missing credentials", cfg: Config{Endpoint: "localhost:9000", Bucket: "laws"}},
		{name: "missing bucket", cfg: Config{Endpoint: "localhost:9000", AccessKey: "a", SecretKey: "s"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewStore(tt.cfg)
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestObjectKey(t *testing.T) {
	store, err := NewStore(Config{Endpoint: "localhost:9000", AccessKey: "a", SecretKey: "s", Bucket: "laws"})
	require.NoError(t, err)
	assert.Equal(t, "de/OR.xml", store.objectKey("/de/OR.xml"))

	store, err = NewStore(Config{Endpoint: "localhost:9000", AccessKey: "a", SecretKey: "s", Bucket: "laws", Prefix: "/fedlex/"})
	require.NoError(t, err)
	assert.Equal(t, "fedlex/de/OR.xml", store.objectKey("de/OR.xml"))
}

// TestStore_RoundTrip runs against a live MinIO when LEXCORPUS_TEST_S3_ENDPOINT is set.
func TestStore_RoundTrip(t *testing.T) {
	endpoint := os.Getenv("LEXCORPUS_TEST_S3_ENDPOINT")
	if endpoint == "" {
		t.Skip("LEXCORPUS_TEST_S3_ENDPOINT not set")
	}

	store, err := NewStore(Config{
		Endpoint:  endpoint,
		AccessKey: os.Getenv("LEXCORPUS_TEST_S3_ACCESS_KEY"),
		SecretKey: os.Getenv("LEXCORPUS_TEST_S3_SECRET_KEY"),
		Bucket:    "lexcorpus-test",
		Prefix:    t.Name(),
	})
	require.NoError(t, err)

	ctx := context.Background()
	exists, err := store.Exists(ctx, "fr/KAG.xml")
	require.NoError(t, err)
	assert.False(t, exists)

	_, err = store.Open(ctx, "fr/KAG.xml")
	assert.ErrorIs(t, err, core.ErrSourceNotFound)

	require.NoError(t, store.Put(ctx, "de/OR.xml", []byte("<akomaNtoso/>")))
	rc, err := store.Open(ctx, "de/OR.xml")
	require.NoError(t, err)
	defer rc.Close()
	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "<akomaNtoso/>", string(data))
}
