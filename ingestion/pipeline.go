package ingestion

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/lexcorpus/akn"
	"github.com/poiesic/lexcorpus/buckets"
	"github.com/poiesic/lexcorpus/config"
	"github.com/poiesic/lexcorpus/core"
	"github.com/poiesic/lexcorpus/locator"
	"github.com/poiesic/lexcorpus/source"
	"github.com/poiesic/lexcorpus/storage"
)

// replaceMu serializes corpus replacement across every pipeline in the process.
var replaceMu sync.Mutex

// Pipeline orchestrates one ingestion run over every configured unit.
type Pipeline struct {
	cfg         *config.Config
	index       *buckets.Index
	locator     *locator.Locator
	store       source.Store
	repository  storage.ArticleRepository
	strategies  *akn.Strategies
	assembler   *Assembler
	pool        *ants.Pool
	unitTimeout time.Duration
	progress    *ProgressTracker
	logger      *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithPoolSize sets the worker pool size for concurrent unit processing.
// Default is runtime.NumCPU(), with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}
		if p.pool != nil {
			p.pool.Release()
		}
		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		p.pool = pool
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// WithUnitTimeout bounds the time spent reading and parsing one unit.
// Zero disables the limit.
func WithUnitTimeout(timeout time.Duration) Option {
	return func(p *Pipeline) error {
		if timeout < 0 {
			return fmt.Errorf("unit timeout must not be negative: %s", timeout)
		}
		p.unitTimeout = timeout
		return nil
	}
}

// WithProgress reports processed units to w every interval units.
func WithProgress(w io.Writer, interval int) Option {
	return func(p *Pipeline) error {
		if w == nil {
			p.progress = nil
			return nil
		}
		p.progress = NewProgressTracker(w, interval)
		return nil
	}
}

// WithStrategies overrides the extraction strategy table.
// Default is built from cfg.AncestorHeadingLaws().
func WithStrategies(strategies *akn.Strategies) Option {
	return func(p *Pipeline) error {
		if strategies != nil {
			p.strategies = strategies
		}
		return nil
	}
}

// NewPipeline creates an ingestion pipeline.
// cfg must already be validated.
func NewPipeline(
	cfg *config.Config,
	index *buckets.Index,
	loc *locator.Locator,
	store source.Store,
	repository storage.ArticleRepository,
	opts ...Option,
) (*Pipeline, error) {
	if cfg == nil {
		return nil, ErrConfigRequired
	}
	if index == nil {
		return nil, ErrIndexRequired
	}
	if loc == nil {
		return nil, ErrLocatorRequired
	}
	if store == nil {
		return nil, ErrSourceStoreRequired
	}
	if repository == nil {
		return nil, ErrRepositoryRequired
	}

	pool, err := ants.NewPool(max(runtime.NumCPU(), 1))
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		cfg:        cfg,
		index:      index,
		locator:    loc,
		store:      store,
		repository: repository,
		strategies: akn.NewStrategies(cfg.AncestorHeadingLaws()),
		assembler:  NewAssembler(cfg.BaseURL, index),
		pool:       pool,
		logger:     slog.Default(),
	}

	for _, opt := range opts {
		if optErr := opt(p); optErr != nil {
			p.Release()
			return nil, optErr
		}
	}
	p.logger = p.logger.With("component", "ingestion")

	return p, nil
}

// unitResult is the outcome of one unit.
type unitResult struct {
	articles []*core.Article
	skip     *Skip
}

// Run ingests every unit and replaces the stored corpus with the result.
// Missing and malformed sources are reported in the Report; only a cancelled
// context or a storage failure returns an error.
func (p *Pipeline) Run(ctx context.Context) (*Report, error) {
	start := time.Now()
	units := p.index.Units()
	results := make([]unitResult, len(units))

	if p.progress != nil {
		p.progress.Start(len(units))
		defer p.progress.Finish()
	}
	p.logger.Info("ingestion started", "units", len(units))

	var wg sync.WaitGroup
	for i, unit := range units {
		wg.Add(1)
		err := p.pool.Submit(func() {
			defer wg.Done()
			results[i] = p.processUnit(ctx, unit)
			if p.progress != nil {
				p.progress.UnitDone(unit, results[i].skip != nil)
			}
		})
		if err != nil {
			wg.Done()
			wg.Wait()
			return nil, fmt.Errorf("submit %s: %w", unit, err)
		}
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	report := &Report{
		Units:   len(units),
		PerUnit: make(map[core.Unit]int),
	}
	var corpus []*core.Article
	for i, result := range results {
		if result.skip != nil {
			report.Skips = append(report.Skips, *result.skip)
			continue
		}
		report.Parsed++
		report.PerUnit[units[i]] = len(result.articles)
		for _, article := range result.articles {
			if article.Suspicious() {
				report.Suspicious++
			}
		}
		corpus = append(corpus, result.articles...)
	}

	if err := p.replace(ctx, corpus); err != nil {
		return nil, err
	}
	report.Articles = len(corpus)
	report.Elapsed = time.Since(start)

	p.logger.Info("ingestion finished",
		"status", report.Status(),
		"units", report.Units,
		"parsed", report.Parsed,
		"skipped", len(report.Skips),
		"articles", report.Articles,
		"suspicious", report.Suspicious,
		"elapsed", report.Elapsed)
	return report, nil
}

func (p *Pipeline) replace(ctx context.Context, corpus []*core.Article) error {
	replaceMu.Lock()
	defer replaceMu.Unlock()

	if err := p.repository.ReplaceAll(ctx, corpus); err != nil {
		p.logger.Error("corpus replacement failed, stored corpus is undefined", "err", err)
		return fmt.Errorf("%w: %w", core.ErrStorageFailure, err)
	}
	return nil
}

// processUnit locates, parses and extracts one unit.
func (p *Pipeline) processUnit(ctx context.Context, unit core.Unit) unitResult {
	if p.unitTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.unitTimeout)
		defer cancel()
	}
	logger := p.logger.With("law", unit.Law, "language", unit.Language)

	skip := func(path string, err error) unitResult {
		s := &Skip{Unit: unit, Path: path, Err: err}
		logger.Warn("skipping unit", "path", path, "reason", s.Reason(), "err", err)
		return unitResult{skip: s}
	}

	loc, ok, err := p.locator.Locate(ctx, unit.Law, unit.Language)
	if err != nil {
		return skip(loc.FilePath, err)
	}
	if !ok {
		return skip(loc.FilePath, fmt.Errorf("%w: %s", core.ErrSourceNotFound, loc.FilePath))
	}

	rc, err := p.store.Open(ctx, loc.FilePath)
	if err != nil {
		return skip(loc.FilePath, err)
	}
	defer rc.Close()

	doc, err := akn.Parse(&contextReader{ctx: ctx, r: rc})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return skip(loc.FilePath, fmt.Errorf("read %s: %w", loc.FilePath, ctxErr))
		}
		return skip(loc.FilePath, err)
	}

	relativePath := loc.Resolve(doc.Manifestation())
	strategy := p.strategies.For(unit.Law, unit.Language)

	extracted := akn.ExtractAll(doc, strategy)
	articles := make([]*core.Article, 0, len(extracted))
	for _, e := range extracted {
		if e.EID == "" {
			logger.Warn("article without eId", "title", e.Title)
		}
		articles = append(articles, p.assembler.Assemble(unit, relativePath, e))
	}

	logger.Debug("unit parsed",
		"path", loc.FilePath,
		"relative_path", relativePath,
		"strategy", strategy.Name(),
		"articles", len(articles))
	return unitResult{articles: articles}
}

// Release releases resources including the worker pool.
// The pipeline should not be used after calling Release.
func (p *Pipeline) Release() {
	if p.pool != nil {
		p.pool.Release()
	}
}

// contextReader fails reads once ctx is done.
type contextReader struct {
	ctx context.Context
	r   io.Reader
}

func (c *contextReader) Read(b []byte) (int, error) {
	if err := c.ctx.Err(); err != nil {
		return 0, err
	}
	return c.r.Read(b)
}
