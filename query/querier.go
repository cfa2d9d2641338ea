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


package query

import (
	"context"
	"log/slog"
	"slices"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/poiesic/lexcorpus/ai"
	"github.com/poiesic/lexcorpus/buckets"
	"github.com/poiesic/lexcorpus/core"
	"github.com/poiesic/lexcorpus/storage"
)

// DefaultCacheSize is the number of filters whose results are cached.
const DefaultCacheSize = 256

// Answer is the outcome of Ask.
type Answer struct {
	Question   string          `json:"question"`
	Language   string          `json:"language"`
	Response   string          `json:"response,omitempty"`
	References ai.References   `json:"references"`
	Filter     storage.Filter  `json:"filter"`
	Articles   []*core.Article `json:"articles"`
}

// Querier looks up articles in a repository.
type Querier struct {
	repository storage.ArticleRepository
	extractor  ai.ReferenceExtractor
	responder  ai.Responder
	index      *buckets.Index
	cacheSize  int
	cache      *lru.Cache[string, []*core.Article]
	logger     *slog.Logger
}

// Option configures a Querier.
type Option func(*Querier) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(q *Querier) error {
		if logger == nil {
			logger = slog.Default()
		}
		q.logger = logger
		return nil
	}
}

// WithCacheSize sets the number of cached filters.
// Default is DefaultCacheSize.
func WithCacheSize(size int) Option {
	return func(q *Querier) error {
		if size < 1 {
			return ErrInvalidCacheSize
		}
		q.cacheSize = size
		return nil
	}
}

// WithProvider takes the responder and the reference extractor from provider.
func WithProvider(provider ai.AIProvider) Option {
	return func(q *Querier) error {
		if provider != nil {
			q.responder = provider.Responder()
			q.extractor = provider.ReferenceExtractor()
		}
		return nil
	}
}

// WithExtractor sets the reference extractor used by Ask.
func WithExtractor(extractor ai.ReferenceExtractor) Option {
	return func(q *Querier) error {
		q.extractor = extractor
		return nil
	}
}

// WithResponder sets the responder used by Ask. Without one, references
// are extracted from the question itself.
func WithResponder(responder ai.Responder) Option {
	return func(q *Querier) error {
		q.responder = responder
		return nil
	}
}

// WithIndex sets the bucket index used to name the focus laws of a question.
func WithIndex(index *buckets.Index) Option {
	return func(q *Querier) error {
		q.index = index
		return nil
	}
}

// NewQuerier creates a new querier over repository.
func NewQuerier(repository storage.ArticleRepository, opts ...Option) (*Querier, error) {
	if repository == nil {
		return nil, ErrRepositoryRequired
	}

	q := &Querier{
		repository: repository,
		cacheSize:  DefaultCacheSize,
		logger:     slog.Default(),
	}

	for _, opt := range opts {
		if err := opt(q); err != nil {
			return nil, err
		}
	}
	q.logger = q.logger.With("component", "querier")

	cache, err := lru.New[string, []*core.Article](q.cacheSize)
	if err != nil {
		return nil, err
	}
	q.cache = cache
	return q, nil
}

// Find returns the articles matching filter. Results are cached per
// normalized filter until Purge.
func (q *Querier) Find(ctx context.Context, filter storage.Filter) ([]*core.Article, error) {
	articles, _, err := q.find(ctx, filter, nil)
	return articles, err
}

func (q *Querier) find(ctx context.Context, filter storage.Filter, monitor AskMonitor) ([]*core.Article, bool, error) {
	key := filter.Key()
	if cached, ok := q.cache.Get(key); ok {
		if monitor != nil {
			monitor.BeforeFind(filter, true)
		}
		return slices.Clone(cached), true, nil
	}
	if monitor != nil {
		monitor.BeforeFind(filter, false)
	}

	articles, err := q.repository.Find(ctx, filter)
	if err != nil {
		q.logger.Error("error querying articles", "filter", key, "err", err)
		return nil, false, err
	}
	q.cache.Add(key, articles)
	return slices.Clone(articles), false, nil
}

// Purge drops every cached result.
func (q *Querier) Purge() {
	q.cache.Purge()
}

// Ask answers question in language and returns the stored articles it refers to.
func (q *Querier) Ask(ctx context.Context, question, language string, bucketNames []string) (*Answer, error) {
	return q.AskWithMonitor(ctx, question, language, bucketNames, nil)
}

// AskWithMonitor is Ask with callbacks at each stage.
//
// The filter is conjunctive: an answer naming no law or no article matches
// nothing. An empty bucket selection does not constrain the buckets.
func (q *Querier) AskWithMonitor(ctx context.Context, question, language string, bucketNames []string, monitor AskMonitor) (*Answer, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, ErrEmptyQuestion
	}
	if q.extractor == nil {
		return nil, ErrExtractorRequired
	}
	if monitor == nil {
		monitor = &noopMonitor{}
	}

	monitor.Start(question, language)
	answer := &Answer{
		Question: question,
		Language: language,
		Articles: []*core.Article{},
	}

	text := question
	if q.responder != nil {
		var focus []string
		if q.index != nil {
			selected := bucketNames
			if len(selected) == 0 {
				selected = q.index.Buckets()
			}
			focus = q.index.LawsInBuckets(language, selected...)
		}
		response, err := q.responder.Answer(ctx, question, language, focus)
		if err != nil {
			q.logger.Error("error answering question", "language", language, "err", err)
			return nil, err
		}
		answer.Response = response
		text = response
		monitor.AfterAnswer(response)
	}

	refs, err := q.extractor.ExtractReferences(ctx, text, language)
	if err != nil {
		q.logger.Error("error extracting references", "language", language, "err", err)
		return nil, err
	}
	answer.References = refs
	monitor.AfterExtraction(refs)

	answer.Filter = storage.Filter{
		LawNames: refs.Laws,
		EIDs:     refs.EIDs,
		Buckets:  bucketNames,
		Language: language,
	}
	if len(refs.Laws) == 0 || len(refs.EIDs) == 0 {
		q.logger.Debug("no references to look up", "laws", len(refs.Laws), "articles", len(refs.EIDs))
		monitor.Finish(answer.Articles)
		return answer, nil
	}

	articles, _, err := q.find(ctx, answer.Filter, monitor)
	if err != nil {
		return nil, err
	}
	answer.Articles = articles
	monitor.Finish(articles)
	return answer, nil
}

// AskFromArticles retrieves the articles whose text contains every search
// term of question and answers from those articles alone. Without a
// responder only the articles are returned; when nothing matches there is
// no answer.
func (q *Querier) AskFromArticles(ctx context.Context, question, language string, bucketNames []string) (*Answer, error) {
	return q.AskFromArticlesWithMonitor(ctx, question, language, bucketNames, nil)
}

// AskFromArticlesWithMonitor is AskFromArticles with callbacks at each stage.
// AfterExtraction is not called as no references are extracted.
func (q *Querier) AskFromArticlesWithMonitor(ctx context.Context, question, language string, bucketNames []string, monitor AskMonitor) (*Answer, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, ErrEmptyQuestion
	}
	if len(storage.TextTerms(question)) == 0 {
		return nil, ErrNoSearchTerms
	}
	if monitor == nil {
		monitor = &noopMonitor{}
	}

	monitor.Start(question, language)
	answer := &Answer{
		Question: question,
		Language: language,
		Filter: storage.Filter{
			Buckets:  bucketNames,
			Language: language,
			Text:     question,
		},
	}

	articles, _, err := q.find(ctx, answer.Filter, monitor)
	if err != nil {
		return nil, err
	}
	answer.Articles = articles
	if answer.Articles == nil {
		answer.Articles = []*core.Article{}
	}

	if len(articles) == 0 {
		q.logger.Debug("no articles match the question", "language", language)
	} else if q.responder != nil {
		response, err := q.responder.AnswerFromArticles(ctx, question, language, articles)
		if err != nil {
			q.logger.Error("error answering from articles", "language", language, "articles", len(articles), "err", err)
			return nil, err
		}
		answer.Response = response
		monitor.AfterAnswer(response)
	}

	monitor.Finish(answer.Articles)
	return answer, nil
}
