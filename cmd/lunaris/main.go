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
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/poiesic/lunaris"
	"github.com/poiesic/lunaris/ai"
	"github.com/poiesic/lunaris/cache"
	"github.com/poiesic/lunaris/reindex"
	"github.com/poiesic/lunaris/server"
)

func main() {
	app := &cli.App{
		Name:  "lunaris",
		Usage: "Conversational Moonology backend",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Serve the chat API over HTTP",
				Action: serveCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to BadgerDB database directory",
						Required: true,
						EnvVars:  []string{"LUNARIS_DB"},
					},
					&cli.StringFlag{
						Name:    "listen",
						Usage:   "Listen address",
						Value:   ":8000",
						EnvVars: []string{"LUNARIS_LISTEN"},
					},
					&cli.StringFlag{
						Name:    "redis-url",
						Usage:   "Redis URL for the distributed model cache (empty disables it)",
						EnvVars: []string{"REDIS_URL"},
					},
					&cli.StringFlag{
						Name:    "openai-api-key",
						Usage:   "OpenAI API key",
						EnvVars: []string{"OPENAI_API_KEY"},
					},
					&cli.StringFlag{
						Name:    "google-api-key",
						Usage:   "Google API key for the gemini provider",
						EnvVars: []string{"GOOGLE_API_KEY"},
					},
					&cli.StringFlag{
						Name:    "openai-base-url",
						Usage:   "Override the OpenAI endpoint",
						EnvVars: []string{"OPENAI_BASE_URL"},
					},
					&cli.StringFlag{
						Name:    "embedding-model",
						Usage:   "Embedding model name",
						EnvVars: []string{"EMBEDDING_MODEL"},
					},
					&cli.BoolFlag{
						Name:    "enable-search",
						Usage:   "Enable knowledge retrieval in the chat pipeline",
						EnvVars: []string{"LUNARIS_ENABLE_SEARCH"},
					},
				},
			},
			{
				Name:   "reindex",
				Usage:  "Reembed the knowledge base with a new embedding model",
				Action: reindexCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "db",
						Aliases:  []string{"d"},
						Usage:    "Path to BadgerDB database directory",
						Required: true,
						EnvVars:  []string{"LUNARIS_DB"},
					},
					&cli.StringFlag{
						Name:    "openai-api-key",
						Usage:   "OpenAI API key",
						EnvVars: []string{"OPENAI_API_KEY"},
					},
					&cli.StringFlag{
						Name:     "embedding-model",
						Usage:    "Embedding model name",
						Required: true,
					},
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Number of chunks to process in each batch",
						Value: 100,
					},
					&cli.IntFlag{
						Name:  "report-interval",
						Usage: "Report progress every N chunks",
						Value: 100,
					},
					&cli.IntFlag{
						Name:  "max-retries",
						Usage: "Maximum retry attempts for failed embedding calls",
						Value: 3,
					},
					&cli.DurationFlag{
						Name:  "retry-delay",
						Usage: "Base delay for exponential backoff",
						Value: 1 * time.Second,
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func serveCommand(c *cli.Context) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := lunaris.OpenStore(c.String("db"))
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer store.Close()

	modelCache, err := cache.New(c.String("redis-url"))
	if err != nil {
		return fmt.Errorf("failed to create model cache: %w", err)
	}
	defer modelCache.Close()

	cfg := ai.NewConfig(
		ai.WithOpenAIKey(c.String("openai-api-key")),
		ai.WithGoogleKey(c.String("google-api-key")),
		ai.WithOpenAIBaseURL(c.String("openai-base-url")),
		ai.WithEmbeddingModel(c.String("embedding-model")),
	)

	factory, err := ai.NewFactory(*cfg, modelCache)
	if err != nil {
		return fmt.Errorf("invalid model configuration: %w", err)
	}
	factory.Warm(ctx)

	var opts []lunaris.ServiceOption
	if c.Bool("enable-search") {
		embedder, err := factory.Embedder(ctx)
		if err != nil {
			return fmt.Errorf("failed to create embedder: %w", err)
		}
		searcher, err := store.NewSearcher(embedder)
		if err != nil {
			return fmt.Errorf("failed to create searcher: %w", err)
		}
		opts = append(opts, lunaris.WithSearcher(searcher))
	}

	service, err := lunaris.NewService(store, factory, opts...)
	if err != nil {
		return fmt.Errorf("failed to create service: %w", err)
	}

	srv, err := server.New(service)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	return srv.Run(ctx, c.String("listen"))
}

func reindexCommand(c *cli.Context) error {
	ctx := context.Background()

	store, err := lunaris.OpenStore(c.String("db"))
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer store.Close()

	cfg := ai.NewConfig(
		ai.WithOpenAIKey(c.String("openai-api-key")),
		ai.WithEmbeddingModel(c.String("embedding-model")),
	)

	factory, err := ai.NewFactory(*cfg, nil)
	if err != nil {
		return fmt.Errorf("invalid model configuration: %w", err)
	}

	embedder, err := factory.Embedder(ctx)
	if err != nil {
		return fmt.Errorf("failed to create embedder: %w", err)
	}

	reindexConfig := &reindex.Config{
		BatchSize:      c.Int("batch-size"),
		ReportInterval: c.Int("report-interval"),
		MaxRetries:     c.Int("max-retries"),
		RetryDelay:     c.Duration("retry-delay"),
	}
	if reindexConfig.BatchSize <= 0 {
		return fmt.Errorf("batch-size must be greater than 0")
	}
	if reindexConfig.ReportInterval <= 0 {
		return fmt.Errorf("report-interval must be greater than 0")
	}
	if reindexConfig.MaxRetries <= 0 {
		return fmt.Errorf("max-retries must be greater than 0")
	}

	reindexer := reindex.NewReindexer(store.Knowledge(), store.Checkpoints(), embedder, reindexConfig, os.Stderr)

	fmt.Fprintf(os.Stderr, "Database: %s\n", c.String("db"))
	fmt.Fprintf(os.Stderr, "Embedding model: %s\n", c.String("embedding-model"))
	fmt.Fprintln(os.Stderr)

	if err := reindexer.Run(ctx); err != nil {
		return fmt.Errorf("reindexing failed: %w", err)
	}
	return nil
}

func setupLogger(c *cli.Context) error {
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

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
