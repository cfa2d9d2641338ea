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


package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/poiesic/lexcorpus"
	"github.com/poiesic/lexcorpus/ai"
	"github.com/poiesic/lexcorpus/buckets"
	"github.com/poiesic/lexcorpus/config"
	"github.com/poiesic/lexcorpus/fetch"
	"github.com/poiesic/lexcorpus/ingestion"
	"github.com/poiesic/lexcorpus/query"
	"github.com/poiesic/lexcorpus/source"
	"github.com/poiesic/lexcorpus/source/local"
	"github.com/poiesic/lexcorpus/source/s3"
	"github.com/poiesic/lexcorpus/storage"
	"github.com/poiesic/lexcorpus/storage/postgres"
	"github.com/urfave/cli/v2"
)

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newApp().RunContext(ctx, os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "lexcorpus",
		Usage: "Build and query a corpus of Swiss law articles",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
				EnvVars: []string{"LEXCORPUS_LOG_LEVEL"},
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to the law and bucket configuration (.json or .yaml)",
				Value:   "laws.json",
				EnvVars: []string{"LEXCORPUS_CONFIG"},
			},
			&cli.StringFlag{
				Name:    "laws-dir",
				Usage:   "Directory holding <language>/<law>.xml source documents",
				Value:   "laws",
				EnvVars: []string{"LEXCORPUS_LAWS_DIR"},
			},
			&cli.StringFlag{
				Name:    "db",
				Aliases: []string{"d"},
				Usage:   "Path to BadgerDB database directory",
				Value:   "lexcorpus.db",
				EnvVars: []string{"LEXCORPUS_DB"},
			},
			&cli.StringFlag{
				Name:    "pg-dsn",
				Usage:   "PostgreSQL connection string; stores the corpus in PostgreSQL instead of BadgerDB",
				EnvVars: []string{"LEXCORPUS_PG_DSN"},
			},
			&cli.StringFlag{
				Name:    "s3-endpoint",
				Usage:   "S3 compatible endpoint; reads source documents from object storage instead of laws-dir",
				EnvVars: []string{"LEXCORPUS_S3_ENDPOINT"},
			},
			&cli.StringFlag{
				Name:    "s3-bucket",
				Usage:   "Object storage bucket for source documents",
				Value:   "lexcorpus",
				EnvVars: []string{"LEXCORPUS_S3_BUCKET"},
			},
			&cli.StringFlag{
				Name:    "s3-prefix",
				Usage:   "Key prefix inside the bucket",
				EnvVars: []string{"LEXCORPUS_S3_PREFIX"},
			},
			&cli.StringFlag{
				Name:    "s3-region",
				Usage:   "Object storage region",
				EnvVars: []string{"LEXCORPUS_S3_REGION"},
			},
			&cli.StringFlag{
				Name:    "s3-access-key",
				Usage:   "Object storage access key",
				EnvVars: []string{"LEXCORPUS_S3_ACCESS_KEY"},
			},
			&cli.StringFlag{
				Name:    "s3-secret-key",
				Usage:   "Object storage secret key",
				EnvVars: []string{"LEXCORPUS_S3_SECRET_KEY"},
			},
			&cli.BoolFlag{
				Name:    "s3-ssl",
				Usage:   "Use TLS for object storage",
				Value:   true,
				EnvVars: []string{"LEXCORPUS_S3_SSL"},
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "ingest",
				Usage:  "Parse every configured law and replace the stored corpus",
				Action: ingestCommand,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Number of units parsed concurrently (0 uses all CPUs)",
					},
					&cli.DurationFlag{
						Name:  "unit-timeout",
						Usage: "Time limit for reading and parsing one law (0 disables)",
					},
					&cli.IntFlag{
						Name:  "report-interval",
						Usage: "Report progress every N units (0 disables)",
					},
				},
			},
			{
				Name:   "fetch",
				Usage:  "Download the configured laws into the source store",
				Action: fetchCommand,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Number of concurrent downloads (0 uses all CPUs)",
					},
					&cli.IntFlag{
						Name:  "max-retries",
						Usage: "Maximum attempts per document",
						Value: 3,
					},
					&cli.DurationFlag{
						Name:  "retry-delay",
						Usage: "Base delay for exponential backoff",
						Value: 1 * time.Second,
					},
					&cli.BoolFlag{
						Name:  "skip-existing",
						Usage: "Leave documents already in the source store untouched",
					},
				},
			},
			{
				Name:   "query",
				Usage:  "Find stored articles and print them as JSON",
				Action: queryCommand,
				Flags: []cli.Flag{
					&cli.StringSliceFlag{
						Name:  "law",
						Usage: "Law abbreviation, case-insensitive (repeatable)",
					},
					&cli.StringSliceFlag{
						Name:  "eid",
						Usage: "Article eId such as art_635_a (repeatable)",
					},
					&cli.StringSliceFlag{
						Name:  "bucket",
						Usage: "Bucket name (repeatable)",
					},
					&cli.StringFlag{
						Name:  "language",
						Usage: "Language code (de, fr, it, en)",
					},
					&cli.StringFlag{
						Name:  "text",
						Usage: "Words that must all occur in the article text, case-insensitive",
					},
				},
			},
			{
				Name:      "ask",
				Usage:     "Answer a legal question and print the articles it refers to or was answered from",
				ArgsUsage: "<question>",
				Action:    askCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "language",
						Usage: "Language of the question (de, fr, it, en)",
						Value: "de",
					},
					&cli.StringSliceFlag{
						Name:  "bucket",
						Usage: "Restrict to bucket (repeatable, default all)",
					},
					&cli.BoolFlag{
						Name:  "no-answer",
						Usage: "Extract references from the question itself instead of a model answer",
					},
					&cli.BoolFlag{
						Name:  "from-articles",
						Usage: "Answer from the articles whose text contains the words of the question",
					},
					&cli.StringFlag{
						Name:    "openai-host",
						Usage:   "OpenAI compatible API host URL",
						Value:   "https://api.openai.com/v1",
						EnvVars: []string{"OPENAI_BASE_URL"},
					},
					&cli.StringFlag{
						Name:    "openai-token",
						Usage:   "API key",
						EnvVars: []string{"OPENAI_API_KEY"},
					},
					&cli.StringFlag{
						Name:    "answer-model",
						Usage:   "Model answering the question",
						Value:   "gpt-4o-mini",
						EnvVars: []string{"OPENAI_ANSWER_MODEL"},
					},
					&cli.StringFlag{
						Name:    "extraction-model",
						Usage:   "Model extracting law and article references",
						Value:   "gpt-4o-2024-08-06",
						EnvVars: []string{"OPENAI_EXTRACTION_MODEL"},
					},
				},
			},
			{
				Name:   "buckets",
				Usage:  "List the laws of every bucket per language",
				Action: bucketsCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "language",
						Usage: "Only show this language",
					},
				},
			},
		},
	}
}

func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return cfg, nil
}

func openSourceStore(c *cli.Context) (source.Store, error) {
	if endpoint := c.String("s3-endpoint"); endpoint != "" {
		return s3.NewStore(s3.Config{
			Endpoint:  endpoint,
			Region:    c.String("s3-region"),
			AccessKey: c.String("s3-access-key"),
			SecretKey: c.String("s3-secret-key"),
			Bucket:    c.String("s3-bucket"),
			Prefix:    c.String("s3-prefix"),
			UseSSL:    c.Bool("s3-ssl"),
		})
	}
	return local.NewStore(c.String("laws-dir"))
}

func openCorpus(c *cli.Context, opts ...lexcorpus.CorpusOption) (*lexcorpus.Corpus, error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, err
	}

	store, err := openSourceStore(c)
	if err != nil {
		return nil, fmt.Errorf("failed to open source store: %w", err)
	}

	var repository storage.ArticleRepository
	if dsn := c.String("pg-dsn"); dsn != "" {
		repository, err = postgres.Open(c.Context, dsn)
		if err != nil {
			return nil, fmt.Errorf("failed to open database: %w", err)
		}
		opts = append([]lexcorpus.CorpusOption{lexcorpus.WithRepository(repository)}, opts...)
	} else {
		opts = append([]lexcorpus.CorpusOption{lexcorpus.WithBadger(c.String("db"))}, opts...)
	}

	corpus, err := lexcorpus.Open(cfg, store, opts...)
	if err != nil {
		if repository != nil {
			repository.Close()
		}
		return nil, fmt.Errorf("failed to open corpus: %w", err)
	}
	return corpus, nil
}

func ingestCommand(c *cli.Context) error {
	corpus, err := openCorpus(c)
	if err != nil {
		return err
	}
	defer corpus.Close()

	var opts []ingestion.Option
	if workers := c.Int("workers"); workers > 0 {
		opts = append(opts, ingestion.WithPoolSize(workers))
	}
	if timeout := c.Duration("unit-timeout"); timeout != 0 {
		opts = append(opts, ingestion.WithUnitTimeout(timeout))
	}
	if interval := c.Int("report-interval"); interval > 0 {
		opts = append(opts, ingestion.WithProgress(c.App.ErrWriter, interval))
	}

	report, err := corpus.Ingest(c.Context, opts...)
	if err != nil {
		return fmt.Errorf("ingestion failed: %w", err)
	}

	w := c.App.Writer
	fmt.Fprintf(w, "Status: %s\n", report.Status())
	fmt.Fprintf(w, "Units: %d (parsed %d, skipped %d)\n", report.Units, report.Parsed, len(report.Skips))
	fmt.Fprintf(w, "Articles: %d (%d without eId)\n", report.Articles, report.Suspicious)
	for _, skip := range report.Skips {
		fmt.Fprintf(w, "  skipped %s\n", skip)
	}
	fmt.Fprintf(w, "Elapsed: %v\n", report.Elapsed.Round(time.Millisecond))
	return nil
}

func fetchCommand(c *cli.Context) error {
	if c.Int("max-retries") <= 0 {
		return fmt.Errorf("max-retries must be greater than 0")
	}

	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}
	store, err := openSourceStore(c)
	if err != nil {
		return fmt.Errorf("failed to open source store: %w", err)
	}

	opts := []fetch.Option{
		fetch.WithRetry(c.Int("max-retries"), c.Duration("retry-delay")),
		fetch.WithSkipExisting(c.Bool("skip-existing")),
	}
	if workers := c.Int("workers"); workers > 0 {
		opts = append(opts, fetch.WithPoolSize(workers))
	}

	fetcher, err := fetch.NewFetcher(cfg, store, opts...)
	if err != nil {
		return err
	}
	defer fetcher.Release()

	report, err := fetcher.Fetch(c.Context)
	if err != nil {
		return fmt.Errorf("fetch failed: %w", err)
	}

	w := c.App.Writer
	fmt.Fprintf(w, "Laws: %d (fetched %d, existing %d, failed %d)\n",
		report.Laws, report.Fetched, report.Existing, len(report.Failures))
	for _, failure := range report.Failures {
		fmt.Fprintf(w, "  failed %s\n", failure)
	}
	fmt.Fprintf(w, "Bytes: %d in %v\n", report.Bytes, report.Elapsed.Round(time.Millisecond))
	return nil
}

func queryCommand(c *cli.Context) error {
	corpus, err := openCorpus(c)
	if err != nil {
		return err
	}
	defer corpus.Close()

	articles, err := corpus.Find(c.Context, storage.Filter{
		LawNames: c.StringSlice("law"),
		EIDs:     c.StringSlice("eid"),
		Buckets:  c.StringSlice("bucket"),
		Language: c.String("language"),
		Text:     c.String("text"),
	})
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}
	return writeJSON(c.App.Writer, articles)
}

func askCommand(c *cli.Context) error {
	question := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if question == "" {
		return errors.New("question is required")
	}

	aiConfig := ai.NewConfig(
		ai.WithHost(c.String("openai-host")),
		ai.WithToken(c.String("openai-token")),
		ai.WithAnswerModel(c.String("answer-model")),
		ai.WithExtractionModel(c.String("extraction-model")),
	)
	if err := aiConfig.Validate(); err != nil {
		return fmt.Errorf("invalid AI configuration: %w", err)
	}

	opts := []lexcorpus.CorpusOption{lexcorpus.WithAIConfig(aiConfig)}
	if c.Bool("no-answer") {
		opts = append(opts, lexcorpus.WithQueryOptions(query.WithResponder(nil)))
	}
	corpus, err := openCorpus(c, opts...)
	if err != nil {
		return err
	}
	defer corpus.Close()

	ask := corpus.Ask
	if c.Bool("from-articles") {
		ask = corpus.AskFromArticles
	}
	answer, err := ask(c.Context, question, c.String("language"), c.StringSlice("bucket"))
	if err != nil {
		return fmt.Errorf("ask failed: %w", err)
	}
	return writeJSON(c.App.Writer, answer)
}

func bucketsCommand(c *cli.Context) error {
	cfg, err := loadConfig(c)
	if err != nil {
		return err
	}

	index := buckets.NewIndex(cfg.Buckets)
	only := c.String("language")
	w := c.App.Writer
	for _, language := range index.Languages() {
		if only != "" && language != only {
			continue
		}
		for _, bucket := range index.Buckets() {
			laws := index.Laws(bucket, language)
			if len(laws) == 0 {
				continue
			}
			fmt.Fprintf(w, "%s (%s): %s\n", bucket, strings.ToUpper(language), strings.Join(laws, ", "))
		}
	}
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

func setupLogger(c *cli.Context) error {
	// Get log level from flag and normalize to lowercase
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(c.App.ErrWriter, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
