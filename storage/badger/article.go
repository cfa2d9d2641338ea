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


package badger

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/lexcorpus/core"
	"github.com/poiesic/lexcorpus/storage"
)

// ArticleRepository implements storage.ArticleRepository for BadgerDB.
type ArticleRepository struct {
	backend *Backend
	mu      sync.Mutex // serializes ReplaceAll
}

var _ storage.ArticleRepository = (*ArticleRepository)(nil)

// NewArticleRepository creates a new ArticleRepository.
func NewArticleRepository(backend *Backend) (*ArticleRepository, error) {
	if backend == nil {
		return nil, storage.ErrBackendRequired
	}
	return &ArticleRepository{backend: backend}, nil
}

// Close is a no-op; the backend is owned and closed by the caller.
func (r *ArticleRepository) Close() error {
	return nil
}

// ReplaceAll drops every article key and bulk-inserts articles.
// The drop and the insert are separate operations.
func (r *ArticleRepository) ReplaceAll(ctx context.Context, articles []*core.Article) error {
	if r.backend.IsClosed() {
		return storage.ErrStorageClosed
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.backend.DropPrefix([]byte(articleRecordPrefix), []byte(articleIDPrefix)); err != nil {
		return fmt.Errorf("drop articles: %w", err)
	}
	if len(articles) == 0 {
		return nil
	}

	return r.backend.WriteBatch(func(set func(key, value []byte) error) error {
		for i, article := range articles {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := core.ValidateArticle(article); err != nil {
				return err
			}
			key := makeArticleKey(article, uint64(i))
			if err := set(key, storage.MarshalArticle(article)); err != nil {
				return err
			}
			if err := set(makeArticleIDKey(article.Id), key); err != nil {
				return err
			}
		}
		return nil
	})
}

// Find returns the articles matching filter.
// A language narrows the scan to its partition, and law names within a
// language narrow it further; every candidate is checked against the
// normalized filter.
func (r *ArticleRepository) Find(ctx context.Context, filter storage.Filter) ([]*core.Article, error) {
	if r.backend.IsClosed() {
		return nil, storage.ErrStorageClosed
	}

	n := filter.Normalize()
	match := n.Matcher()

	var results []*core.Article
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, prefix := range scanPrefixes(n) {
			if err := r.scan(ctx, tx, prefix, func(article *core.Article) {
				if match(article) {
					results = append(results, article)
				}
			}); err != nil {
				return err
			}
		}
		return nil
	}, false)
	if err != nil {
		return nil, err
	}
	return results, nil
}

// scanPrefixes returns the key prefixes covering the normalized filter n,
// in key order.
func scanPrefixes(n storage.Filter) [][]byte {
	if n.Language == "" {
		return [][]byte{[]byte(articleRecordPrefix)}
	}
	if len(n.LawNames) == 0 {
		return [][]byte{makeArticlePartitionKey(n.Language, "")}
	}
	prefixes := make([][]byte, 0, len(n.LawNames))
	for _, law := range n.LawNames {
		prefixes = append(prefixes, makeArticlePartitionKey(n.Language, law))
	}
	slices.SortFunc(prefixes, func(a, b []byte) int {
		return slices.Compare(a, b)
	})
	return prefixes
}

func (r *ArticleRepository) scan(ctx context.Context, tx *badger.Txn, prefix []byte, fn func(*core.Article)) error {
	opts := badger.DefaultIteratorOptions
	opts.Prefix = prefix
	iter := tx.NewIterator(opts)
	defer iter.Close()

	for iter.Rewind(); iter.Valid(); iter.Next() {
		if err := ctx.Err(); err != nil {
			return err
		}
		var article *core.Article
		err := iter.Item().Value(func(val []byte) error {
			var err error
			article, err = storage.UnmarshalArticle(val)
			return err
		})
		if err != nil {
			return err
		}
		fn(article)
	}
	return nil
}

// Get retrieves a single article by ID.
func (r *ArticleRepository) Get(ctx context.Context, id core.ID) (*core.Article, error) {
	if r.backend.IsClosed() {
		return nil, storage.ErrStorageClosed
	}

	var article *core.Article
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		primary, err := readValue(tx, makeArticleIDKey(id))
		if err != nil {
			return err
		}
		value, err := readValue(tx, primary)
		if err != nil {
			return err
		}
		article, err = storage.UnmarshalArticle(value)
		return err
	}, false)
	if err != nil {
		return nil, err
	}
	return article, nil
}

// Count returns the number of stored articles.
func (r *ArticleRepository) Count(ctx context.Context) (int, error) {
	if r.backend.IsClosed() {
		return 0, storage.ErrStorageClosed
	}

	count := 0
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(articleRecordPrefix)
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			count++
		}
		return ctx.Err()
	}, false)
	return count, err
}

func readValue(tx *badger.Txn, key []byte) ([]byte, error) {
	item, err := tx.Get(key)
	if err == badger.ErrKeyNotFound {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return item.ValueCopy(nil)
}
