package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/poiesic/lunaris"
	"github.com/poiesic/lunaris/ai"
	"github.com/poiesic/lunaris/ingest"
)

func main() {
	app := &cli.App{
		Name:  "seeder",
		Usage: "Seed the card deck and knowledge base from fixture files",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
			&cli.StringFlag{
				Name:     "db",
				Aliases:  []string{"d"},
				Usage:    "Path to BadgerDB database directory",
				Required: true,
				EnvVars:  []string{"LUNARIS_DB"},
			},
			&cli.StringFlag{
				Name:  "cards",
				Usage: "Path to a card deck fixture (JSON)",
			},
			&cli.StringFlag{
				Name:  "knowledge",
				Usage: "Path to a knowledge fixture (JSON); entries are embedded on load",
			},
			&cli.StringFlag{
				Name:    "openai-api-key",
				Usage:   "OpenAI API key for the embedding calls",
				EnvVars: []string{"OPENAI_API_KEY"},
			},
			&cli.StringFlag{
				Name:    "embedding-model",
				Usage:   "Embedding model name",
				EnvVars: []string{"EMBEDDING_MODEL"},
			},
			&cli.IntFlag{
				Name:  "batch-size",
				Usage: "Number of knowledge entries embedded per batch",
				Value: ingest.DefaultBatchSize,
			},
			&cli.IntFlag{
				Name:  "pool-size",
				Usage: "Worker pool size for concurrent embedding (0 = NumCPU/2)",
			},
		},
		Before: setupLogger,
		Action: seedCommand,
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func seedCommand(c *cli.Context) error {
	cardsPath := c.String("cards")
	knowledgePath := c.String("knowledge")
	if cardsPath == "" && knowledgePath == "" {
		return fmt.Errorf("nothing to seed: provide --cards and/or --knowledge")
	}

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

	opts := []ingest.Option{ingest.WithBatchSize(c.Int("batch-size"))}
	if size := c.Int("pool-size"); size > 0 {
		opts = append(opts, ingest.WithPoolSize(size))
	}

	loader, err := ingest.NewLoader(store.Cards(), store.Knowledge(), embedder, opts...)
	if err != nil {
		return fmt.Errorf("failed to create loader: %w", err)
	}
	defer loader.Release()

	if cardsPath != "" {
		f, err := os.Open(cardsPath)
		if err != nil {
			return fmt.Errorf("failed to open card fixture: %w", err)
		}
		count, err := loader.LoadCards(ctx, f)
		f.Close()
		if err != nil {
			return fmt.Errorf("card seeding failed: %w", err)
		}
		fmt.Fprintf(os.Stderr, "Seeded %d cards from %s\n", count, cardsPath)
	}

	if knowledgePath != "" {
		f, err := os.Open(knowledgePath)
		if err != nil {
			return fmt.Errorf("failed to open knowledge fixture: %w", err)
		}
		source := strings.TrimSuffix(filepath.Base(knowledgePath), filepath.Ext(knowledgePath))
		start := time.Now()
		count, err := loader.LoadKnowledge(ctx, source, f)
		f.Close()
		if err != nil {
			return fmt.Errorf("knowledge seeding failed: %w", err)
		}
		fmt.Fprintf(os.Stderr, "Seeded %d knowledge chunks from %s in %s\n",
			count, knowledgePath, time.Since(start).Round(time.Millisecond))
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
