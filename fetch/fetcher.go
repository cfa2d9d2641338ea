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


package fetch

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"maps"
	"net/http"
	"runtime"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/lexcorpus/config"
	"github.com/poiesic/lexcorpus/core"
	"github.com/poiesic/lexcorpus/source"
)

// Fetcher downloads law documents into a source store.
type Fetcher struct {
	cfg          *config.Config
	store        source.Store
	client       *http.Client
	pool         *ants.Pool
	maxAttempts  int
	retryDelay   time.Duration
	skipExisting bool
	logger       *slog.Logger
}

// Option configures a Fetcher.
type Option func(*Fetcher) error

// WithHTTPClient sets the client used for downloads.
// Default is a client with a 60 second timeout.
func WithHTTPClient(client *http.Client) Option {
	return func(f *Fetcher) error {
		if client != nil {
			f.client = client
		}
		return nil
	}
}

// WithPoolSize sets the number of concurrent downloads.
// Default is runtime.NumCPU(), with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(f *Fetcher) error {
		if size < 1 {
			size = 1
		}
		if f.pool != nil {
			f.pool.Release()
		}
		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		f.pool = pool
		return nil
	}
}

// WithRetry sets the attempts per document and the base backoff delay.
// Default is 3 attempts starting at one second.
func WithRetry(maxAttempts int, baseDelay time.Duration) Option {
	return func(f *Fetcher) error {
		if maxAttempts < 1 {
			return ErrInvalidMaxAttempts
		}
		f.maxAttempts = maxAttempts
		f.retryDelay = baseDelay
		return nil
	}
}

// WithSkipExisting leaves documents already present in the store untouched.
func WithSkipExisting(skip bool) Option {
	return func(f *Fetcher) error {
		f.skipExisting = skip
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(f *Fetcher) error {
		if logger == nil {
			logger = slog.Default()
		}
		f.logger = logger
		return nil
	}
}

// NewFetcher creates a fetcher for the laws configured in cfg.
// cfg must already be validated.
func NewFetcher(cfg *config.Config, store source.Store, opts ...Option) (*Fetcher, error) {
	if cfg == nil {
		return nil, ErrConfigRequired
	}
	if store == nil {
		return nil, ErrStoreRequired
	}

	pool, err := ants.NewPool(max(runtime.NumCPU(), 1))
	if err != nil {
		return nil, err
	}

	f := &Fetcher{
		cfg:         cfg,
		store:       store,
		client:      &http.Client{Timeout: 60 * time.Second},
		pool:        pool,
		maxAttempts: 3,
		retryDelay:  time.Second,
		logger:      slog.Default(),
	}

	for _, opt := range opts {
		if optErr := opt(f); optErr != nil {
			f.Release()
			return nil, optErr
		}
	}
	f.logger = f.logger.With("component", "fetch")

	return f, nil
}

// target is one configured law document.
type target struct {
	unit core.Unit
	url  string
	path string
}

// targets lists the configured laws ordered by language and abbreviation.
func (f *Fetcher) targets() []target {
	prefix := f.cfg.SourceURL
	if prefix == "" {
		prefix = f.cfg.BaseURL
	}

	var out []target
	for _, language := range slices.Sorted(maps.Keys(f.cfg.Laws)) {
		laws := f.cfg.Laws[language]
		for _, law := range slices.Sorted(maps.Keys(laws)) {
			out = append(out, target{
				unit: core.Unit{Law: law, Language: language},
				url:  prefix + strings.TrimLeft(laws[law], "/"),
				path: source.DocumentPath(law, language),
			})
		}
	}
	return out
}

// fetchResult is the outcome of one target.
type fetchResult struct {
	bytes    int64
	existing bool
	err      error
}

// Fetch downloads every configured law. Failures of individual laws are
// collected in the Report; only a cancelled context returns an error.
func (f *Fetcher) Fetch(ctx context.Context) (*Report, error) {
	start := time.Now()
	targets := f.targets()
	results := make([]fetchResult, len(targets))

	f.logger.Info("fetch started", "laws", len(targets))

	var wg sync.WaitGroup
	for i, t := range targets {
		wg.Add(1)
		err := f.pool.Submit(func() {
			defer wg.Done()
			results[i] = f.fetchOne(ctx, t)
		})
		if err != nil {
			wg.Done()
			wg.Wait()
			return nil, fmt.Errorf("submit %s: %w", t.unit, err)
		}
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	report := &Report{Laws: len(targets)}
	for i, result := range results {
		switch {
		case result.err != nil:
			report.Failures = append(report.Failures, Failure{Unit: targets[i].unit, URL: targets[i].url, Err: result.err})
		case result.existing:
			report.Existing++
		default:
			report.Fetched++
			report.Bytes += result.bytes
		}
	}
	report.Elapsed = time.Since(start)

	f.logger.Info("fetch finished",
		"laws", report.Laws,
		"fetched", report.Fetched,
		"existing", report.Existing,
		"failed", len(report.Failures),
		"bytes", report.Bytes,
		"elapsed", report.Elapsed)
	return report, nil
}

func (f *Fetcher) fetchOne(ctx context.Context, t target) fetchResult {
	logger := f.logger.With("law", t.unit.Law, "language", t.unit.Language)

	if f.skipExisting {
		exists, err := f.store.Exists(ctx, t.path)
		if err != nil {
			logger.Warn("error checking source store", "path", t.path, "err", err)
		} else if exists {
			logger.Debug("document already present", "path", t.path)
			return fetchResult{existing: true}
		}
	}

	var data []byte
	err := RetryWithBackoff(ctx, func() error {
		var err error
		data, err = f.download(ctx, t.url)
		return err
	}, f.maxAttempts, f.retryDelay)
	if err != nil {
		logger.Warn("skipping law", "url", t.url, "err", err)
		return fetchResult{err: err}
	}

	if err := f.store.Put(ctx, t.path, data); err != nil {
		logger.Warn("error storing document", "path", t.path, "err", err)
		return fetchResult{err: fmt.Errorf("%w: %w", core.ErrStorageFailure, err)}
	}

	logger.Debug("fetched document", "path", t.path, "bytes", len(data))
	return fetchResult{bytes: int64(len(data))}
}

// download performs one GET. Client errors (4xx) are permanent; a 404
// wraps core.ErrSourceNotFound.
func (f *Fetcher) download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, Permanent(err)
	}
	req.Header.Set("Accept", "application/xml, text/xml;q=0.9, */*;q=0.1")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusNotFound:
		return nil, Permanent(fmt.Errorf("%w: %s", core.ErrSourceNotFound, url))
	case resp.StatusCode >= 400 && resp.StatusCode < 500 && resp.StatusCode != http.StatusTooManyRequests:
		return nil, Permanent(fmt.Errorf("%w: %s", ErrUnexpectedStatus, resp.Status))
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnexpectedStatus, resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	return data, nil
}

// Release releases resources including the worker pool.
// The fetcher cannot be used after calling Release.
func (f *Fetcher) Release() {
	if f.pool != nil {
		f.pool.Release()
	}
}
