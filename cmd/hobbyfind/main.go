// Copyright 2026 Poiesic Systems
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
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"

	"github.com/poiesic/hobbyfind"
	"github.com/poiesic/hobbyfind/ai"
	"github.com/poiesic/hobbyfind/core"
	"github.com/poiesic/hobbyfind/directory"
	"github.com/poiesic/hobbyfind/pipeline"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:   "hobbyfind",
		Usage:  "Find users by hobby with semantic search over a live user directory",
		Before: setupLogger,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "ask",
				Usage:  "Answer a single hobby question and exit",
				Action: askCommand,
				Flags:  queryFlags(),
			},
			{
				Name:   "repl",
				Usage:  "Interactive question loop against a live directory",
				Action: replCommand,
				Flags:  queryFlags(),
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func queryFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "db",
			Aliases: []string{"d"},
			Usage:   "Path to BadgerDB index directory",
			Value:   "./hobbyfind_db",
		},
		&cli.BoolFlag{
			Name:  "in-memory",
			Usage: "Keep the index in memory instead of on disk",
		},
		&cli.StringFlag{
			Name:     "directory-url",
			Usage:    "Base URL of the authoritative user directory service",
			EnvVars:  []string{"HOBBYFIND_DIRECTORY_URL"},
			Required: true,
		},
		&cli.StringFlag{
			Name:    "ai-host",
			Usage:   "OpenAI-compatible service host URL for both embedding and chat",
			EnvVars: []string{"HOBBYFIND_AI_HOST"},
			Value:   "http://localhost:11434/v1",
		},
		&cli.StringFlag{
			Name:  "embedding-model",
			Usage: "Embedding model name",
			Value: "embeddinggemma",
		},
		&cli.StringFlag{
			Name:  "chat-model",
			Usage: "Chat model name used for extraction",
			Value: "qwen2.5:3b",
		},
		&cli.StringFlag{
			Name:    "token",
			Usage:   "API token for the AI service",
			EnvVars: []string{"HOBBYFIND_AI_TOKEN"},
			Value:   "none",
		},
		&cli.IntFlag{
			Name:  "top-k",
			Usage: "Number of candidate snippets retrieved per question",
			Value: pipeline.DefaultTopK,
		},
		&cli.Float64Flag{
			Name:  "relevance-floor",
			Usage: "Minimum similarity score for a candidate snippet",
			Value: float64(pipeline.DefaultRelevanceFloor),
		},
		&cli.IntFlag{
			Name:  "batch-size",
			Usage: "Embedding batch size for the initial index build",
			Value: 100,
		},
	}
}

func buildPipeline(c *cli.Context) (*hobbyfind.Wizard, *pipeline.Pipeline, error) {
	dir := directory.NewHTTPDirectory(c.String("directory-url"))

	aiConfig := ai.NewConfig(
		ai.WithHost(c.String("ai-host")),
		ai.WithEmbeddingModel(c.String("embedding-model")),
		ai.WithChatModel(c.String("chat-model")),
		ai.WithToken(c.String("token")),
	)

	wizardOpts := []hobbyfind.WizardOption{hobbyfind.WithAIConfig(aiConfig)}
	if c.Bool("in-memory") {
		wizardOpts = append(wizardOpts, hobbyfind.WithInMemoryStorage())
	}

	wizard, err := hobbyfind.NewWizard(c.String("db"), dir, wizardOpts...)
	if err != nil {
		return nil, nil, err
	}

	pipe, err := wizard.NewPipeline(
		pipeline.WithTopK(c.Int("top-k")),
		pipeline.WithRelevanceFloor(float32(c.Float64("relevance-floor"))),
		pipeline.WithBootstrapBatchSize(c.Int("batch-size")),
		pipeline.WithMonitor(&progressMonitor{}),
	)
	if err != nil {
		wizard.Close()
		return nil, nil, err
	}

	return wizard, pipe, nil
}

func askCommand(c *cli.Context) error {
	if c.NArg() == 0 {
		return fmt.Errorf("ask requires a question argument")
	}
	question := strings.Join(c.Args().Slice(), " ")

	wizard, pipe, err := buildPipeline(c)
	if err != nil {
		return err
	}
	defer wizard.Close()
	defer pipe.Release()

	ctx := context.Background()
	if err := pipe.Bootstrap(ctx); err != nil {
		return err
	}

	grouped, err := pipe.Query(ctx, question)
	if err != nil {
		return err
	}
	return printGrouped(grouped)
}

func replCommand(c *cli.Context) error {
	wizard, pipe, err := buildPipeline(c)
	if err != nil {
		return err
	}
	defer wizard.Close()
	defer pipe.Release()

	ctx := context.Background()
	if err := pipe.Bootstrap(ctx); err != nil {
		return err
	}

	fmt.Println("Ask about hobbies. Empty line or Ctrl-D exits.")
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}
		question := strings.TrimSpace(scanner.Text())
		if question == "" || question == "quit" || question == "exit" {
			break
		}

		grouped, err := pipe.Query(ctx, question)
		if err != nil {
			fmt.Fprintf(os.Stderr, "query failed: %v\n", err)
			continue
		}
		if err := printGrouped(grouped); err != nil {
			return err
		}
	}
	return scanner.Err()
}

func printGrouped(grouped core.Grouped) error {
	out, err := json.MarshalIndent(grouped, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
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
