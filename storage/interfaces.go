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


package storage

import (
	"context"

	"github.com/poiesic/lexcorpus/core"
)

// ArticleRepository persists the article corpus.
// Implementations must be thread-safe and support concurrent access.
type ArticleRepository interface {
	// ReplaceAll deletes every stored article and then inserts articles.
	// The two steps are not atomic; a failure between them can leave the
	// corpus empty or partially written. Callers must not invoke ReplaceAll
	// concurrently against the same corpus.
	ReplaceAll(ctx context.Context, articles []*core.Article) error

	// Find returns the articles matching filter, ordered by
	// (language, law name, insertion order).
	Find(ctx context.Context, filter Filter) ([]*core.Article, error)

	// Get retrieves a single article by ID.
	// Returns ErrNotFound if the article doesn't exist.
	Get(ctx context.Context, id core.ID) (*core.Article, error)

	// Count returns the number of stored articles.
	Count(ctx context.Context) (int, error)

	// Close closes the storage backend and releases resources.
	Close() error
}
