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


package lexcorpus

import (
	"context"
	"errors"
	"log/slog"

	"github.com/poiesic/lexcorpus/ai"
	"github.com/poiesic/lexcorpus/ai/openai"
	"github.com/poiesic/lexcorpus/buckets"
	"github.com/poiesic/lexcorpus/config"
	"github.com/poiesic/lexcorpus/core"
	"github.com/poiesic/lexcorpus/fetch"
	"github.com/poiesic/lexcorpus/ingestion"
	"github.com/poiesic/lexcorpus/locator"
	"github.com/poiesic/lexcorpus/query"
	"github.com/poiesic/lexcorpus/source"
	"github.com/poiesic/lexcorpus/storage"
	"github.com/poiesic/lexcorpus/storage/badger"
)

// ErrSourceStoreRequired is returned by Open without a source store.
var ErrSourceStoreRequired = errors.New("source store required")

// Corpus ties one configuration, one source store and one article
// repository together. Pipelines and queriers built from a Corpus share
// the repository; a successful ingestion purges the query cache.
type Corpus struct {
	cfg        *config.Config
	index      *buckets.Index
	store      source.Store
	locator    *locator.Locator
	backend    *badger.Backend
	repository storage.ArticleRepository
	provider   ai.AIProvider
	querier    *query.Querier
	logger     *slog.Logger
}

// CorpusOption configures a Corpus.
type CorpusOption func(*corpusOptions)

type corpusOptions struct {
	dbPath     string
	inMemory   bool
	repository storage.ArticleRepository
	aiConfig   *ai.Config
	provider   ai.AIProvider
	queryOpts  []query.Option
}

// WithBadger stores the corpus in a badger database at path.
// This is the default, with path "lexcorpus.db".
func WithBadger(path string) CorpusOption {
	return func(o *corpusOptions) {
		o.dbPath = path
		o.inMemory = false
	}
}

// WithInMemory stores the corpus in an in-memory badger database.
func WithInMemory() CorpusOption {
	return func(o *corpusOptions) {
		o.inMemory = true
	}
}

// WithRepository uses repository instead of badger. The Corpus closes it.
func WithRepository(repository storage.ArticleRepository) CorpusOption {
	return func(o *corpusOptions) {
		o.repository = repository
	}
}

// WithAIConfig builds an OpenAI-compatible provider for Ask.
func WithAIConfig(cfg *ai.Config) CorpusOption {
	return func(o *corpusOptions) {
		o.aiConfig = cfg
	}
}

// WithAIProvider uses provider for Ask. It takes precedence over WithAIConfig.
func WithAIProvider(provider ai.AIProvider) CorpusOption {
	return func(o *corpusOptions) {
		o.provider = provider
	}
}

// WithQueryOptions passes options to the querier.
func WithQueryOptions(opts ...query.Option) CorpusOption {
	return func(o *corpusOptions) {
		o.queryOpts = append(o.queryOpts, opts...)
	}
}

// Open validates cfg and wires the corpus components.
func Open(cfg *config.Config, store source.Store, opts ...CorpusOption) (*Corpus, error) {
	if cfg == nil {
		return nil, ingestion.ErrConfigRequired
	}
	if store == nil {
		return nil, ErrSourceStoreRequired
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	options := &corpusOptions{dbPath: "lexcorpus.db"}
	for _, opt := range opts {
		opt(options)
	}

	c := &Corpus{
		cfg:    cfg,
		index:  buckets.NewIndex(cfg.Buckets),
		store:  store,
		logger: slog.Default().With("component", "corpus"),
	}

	loc, err := locator.New(store, cfg)
	if err != nil {
		return nil, err
	}
	c.locator = loc

	if options.repository != nil {
		c.repository = options.repository
	} else {
		backend, err := badger.OpenBackend(options.dbPath, options.inMemory)
		if err != nil {
			return nil, err
		}
		repository, err := badger.NewArticleRepository(backend)
		if err != nil {
			backend.Close()
			return nil, err
		}
		c.backend = backend
		c.repository = repository
	}

	switch {
	case options.provider != nil:
		c.provider = options.provider
	case options.aiConfig != nil:
		provider, err := openai.NewProvider(options.aiConfig)
		if err != nil {
			c.Close()
			return nil, err
		}
		c.provider = provider
	}

	queryOpts := []query.Option{query.WithIndex(c.index), query.WithProvider(c.provider)}
	querier, err := query.NewQuerier(c.repository, append(queryOpts, options.queryOpts...)...)
	if err != nil {
		c.Close()
		return nil, err
	}
	c.querier = querier

	return c, nil
}

// Close releases the provider, the repository and the badger backend.
func (c *Corpus) Close() error {
	var errs []error
	if c.provider != nil {
		if err := c.provider.Close(); err != nil {
			c.logger.Error("error closing AI provider", "err", err)
			errs = append(errs, err)
		}
	}
	if err := c.repository.Close(); err != nil {
		c.logger.Error("error closing article repository", "err", err)
		errs = append(errs, err)
	}
	if c.backend != nil {
		if err := c.backend.Close(); err != nil {
			c.logger.Error("error closing backend storage", "err", err)
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (c *Corpus) Config() *config.Config {
	return c.cfg
}

func (c *Corpus) Index() *buckets.Index {
	return c.index
}

func (c *Corpus) Repository() storage.ArticleRepository {
	return c.repository
}

func (c *Corpus) Querier() *query.Querier {
	return c.querier
}

func (c *Corpus) NewIngestionPipeline(opts ...ingestion.Option) (*ingestion.Pipeline, error) {
	return ingestion.NewPipeline(c.cfg, c.index, c.locator, c.store, c.repository, opts...)
}

func (c *Corpus) NewFetcher(opts ...fetch.Option) (*fetch.Fetcher, error) {
	return fetch.NewFetcher(c.cfg, c.store, opts...)
}

// Ingest runs one ingestion pass and purges cached query results once the
// corpus has been replaced, or once replacing it has failed.
func (c *Corpus) Ingest(ctx context.Context, opts ...ingestion.Option) (*ingestion.Report, error) {
	pipeline, err := c.NewIngestionPipeline(opts...)
	if err != nil {
		return nil, err
	}
	defer pipeline.Release()

	report, err := pipeline.Run(ctx)
	if err != nil {
		// A failed replacement may already have dropped the old corpus
		if errors.Is(err, core.ErrStorageFailure) {
			c.querier.Purge()
		}
		return nil, err
	}
	c.querier.Purge()
	return report, nil
}

// Find looks up articles through the cached querier.
func (c *Corpus) Find(ctx context.Context, filter storage.Filter) ([]*core.Article, error) {
	return c.querier.Find(ctx, filter)
}

// Ask answers a question and returns the articles it refers to.
func (c *Corpus) Ask(ctx context.Context, question, language string, bucketNames []string) (*query.Answer, error) {
	return c.querier.Ask(ctx, question, language, bucketNames)
}

// AskFromArticles answers a question from the articles whose text matches it.
func (c *Corpus) AskFromArticles(ctx context.Context, question, language string, bucketNames []string) (*query.Answer, error) {
	return c.querier.AskFromArticles(ctx, question, language, bucketNames)
}
