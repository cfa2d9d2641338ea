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


// Package postgres implements storage.ArticleRepository on PostgreSQL.
//
// Articles live in a single table with a text[] bucket column. ReplaceAll
// truncates and reloads the table with COPY inside one transaction.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/poiesic/lexcorpus/core"
	"github.com/poiesic/lexcorpus/storage"
)

const schema = `
CREATE TABLE IF NOT EXISTS articles (
	position  bigint NOT NULL,
	id        bigint NOT NULL,
	law_name  text   NOT NULL,
	e_id      text   NOT NULL,
	buckets   text[] NOT NULL,
	title     text   NOT NULL,
	body      text   NOT NULL,
	link      text   NOT NULL,
	language  text   NOT NULL
);
CREATE INDEX IF NOT EXISTS articles_language_law_idx ON articles (language, lower(law_name));
CREATE INDEX IF NOT EXISTS articles_id_idx ON articles (id);
`

var columns = []string{"position", "id", "law_name", "e_id", "buckets", "title", "body", "link", "language"}

const selectColumns = "id, law_name, e_id, buckets, title, body, link, language"

// Store implements storage.ArticleRepository on a pgx connection pool.
type Store struct {
	pool *pgxpool.Pool
	mu   sync.Mutex // serializes ReplaceAll

	schemaOnce sync.Once
	schemaErr  error
}

var _ storage.ArticleRepository = (*Store)(nil)

// Open connects to the database at dsn and verifies the connection.
func Open(ctx context.Context, dsn string) (*Store, error) {
	pool, err := pgxpool.New(ctx, strings.TrimSpace(dsn))
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return &Store{pool: pool}, nil
}

// Close releases the connection pool.
func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

func (s *Store) ensureSchema(ctx context.Context) error {
	s.schemaOnce.Do(func() {
		_, s.schemaErr = s.pool.Exec(ctx, schema)
	})
	return s.schemaErr
}

// ReplaceAll deletes every row and copies articles in, in one transaction.
func (s *Store) ReplaceAll(ctx context.Context, articles []*core.Article) error {
	if err := s.ensureSchema(ctx); err != nil {
		return fmt.Errorf("ensure schema: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	rows := make([][]any, 0, len(articles))
	for i, article := range articles {
		if err := core.ValidateArticle(article); err != nil {
			return err
		}
		rows = append(rows, []any{
			int64(i),
			int64(article.Id),
			article.LawName,
			article.EID,
			nonNil(article.Buckets),
			article.Title,
			article.Text,
			article.Link,
			article.Language,
		})
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, "DELETE FROM articles"); err != nil {
		return fmt.Errorf("delete articles: %w", err)
	}
	if len(rows) > 0 {
		if _, err := tx.CopyFrom(ctx, pgx.Identifier{"articles"}, columns, pgx.CopyFromRows(rows)); err != nil {
			return fmt.Errorf("copy articles: %w", err)
		}
	}
	return tx.Commit(ctx)
}

// Find returns the articles matching filter.
func (s *Store) Find(ctx context.Context, filter storage.Filter) ([]*core.Article, error) {
	if err := s.ensureSchema(ctx); err != nil {
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	query, args := buildFindQuery(filter)
	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var results []*core.Article
	for rows.Next() {
		article, err := scanArticle(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, article)
	}
	return results, rows.Err()
}

// buildFindQuery translates a filter into SQL with positional arguments.
func buildFindQuery(filter storage.Filter) (string, []any) {
	n := filter.Normalize()

	var (
		where []string
		args  []any
	)
	add := func(clause string, arg any) {
		args = append(args, arg)
		where = append(where, fmt.Sprintf(clause, len(args)))
	}
	if len(n.LawNames) > 0 {
		add("lower(law_name) = ANY($%d)", n.LawNames)
	}
	if len(n.EIDs) > 0 {
		add("e_id = ANY($%d)", n.EIDs)
	}
	if len(n.Buckets) > 0 {
		add("buckets && $%d", n.Buckets)
	}
	if n.Language != "" {
		add("language = $%d", n.Language)
	}
	for _, term := range n.TextTerms() {
		add("strpos(lower(body), $%d) > 0", term)
	}

	var b strings.Builder
	b.WriteString("SELECT " + selectColumns + " FROM articles")
	if len(where) > 0 {
		b.WriteString(" WHERE " + strings.Join(where, " AND "))
	}
	b.WriteString(" ORDER BY language, lower(law_name), position")
	return b.String(), args
}

// Get retrieves a single article by ID.
func (s *Store) Get(ctx context.Context, id core.ID) (*core.Article, error) {
	if err := s.ensureSchema(ctx); err != nil {
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	row := s.pool.QueryRow(ctx, "SELECT "+selectColumns+" FROM articles WHERE id = $1 ORDER BY position DESC LIMIT 1", int64(id))
	article, err := scanArticle(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	return article, err
}

// Count returns the number of stored articles.
func (s *Store) Count(ctx context.Context) (int, error) {
	if err := s.ensureSchema(ctx); err != nil {
		return 0, fmt.Errorf("ensure schema: %w", err)
	}

	var count int64
	if err := s.pool.QueryRow(ctx, "SELECT count(*) FROM articles").Scan(&count); err != nil {
		return 0, err
	}
	return int(count), nil
}

func scanArticle(row pgx.Row) (*core.Article, error) {
	var (
		article core.Article
		id      int64
	)
	err := row.Scan(&id, &article.LawName, &article.EID, &article.Buckets,
		&article.Title, &article.Text, &article.Link, &article.Language)
	if err != nil {
		return nil, err
	}
	article.Id = core.ID(id)
	if len(article.Buckets) == 0 {
		article.Buckets = nil
	}
	return &article, nil
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
