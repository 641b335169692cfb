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
	"bufio"
	"context"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"strings"

	"github.com/poiesic/docgen"
	"github.com/poiesic/docgen/ai"
	"github.com/poiesic/docgen/config"
	"github.com/poiesic/docgen/core"
	"github.com/poiesic/docgen/dispatch"
	"github.com/poiesic/docgen/search"
	"github.com/urfave/cli/v2"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "docgen",
		Usage: "Crawl documentation sites, store them and search them",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
			&cli.StringSliceFlag{
				Name:    "env-file",
				Aliases: []string{"e"},
				Usage:   "Read settings from a dotenv file; repeat to layer files (default .env, .env.local)",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "setup",
				Usage:  "Create the Document collection",
				Action: setupCommand,
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "recreate",
						Usage: "Drop the collection and every stored document first",
					},
				},
			},
			{
				Name:      "crawl",
				Usage:     "Crawl a website and store its pages",
				ArgsUsage: "<url>",
				Action:    crawlCommand,
			},
			{
				Name:      "add",
				Usage:     "Store a single document",
				ArgsUsage: "<content>",
				Action:    addCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "source",
						Aliases: []string{"s"},
						Usage:   "Source label stored with the document",
						Value:   core.DefaultSource,
					},
				},
			},
			{
				Name:      "search",
				Usage:     "Search stored documents",
				ArgsUsage: "<query>",
				Action:    searchCommand,
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "semantic",
						Usage: "Rank by embedding similarity instead of BM25",
					},
					&cli.IntFlag{
						Name:    "limit",
						Aliases: []string{"n"},
						Usage:   "Maximum number of results (default MAX_RESULTS)",
					},
					&cli.BoolFlag{
						Name:    "verbose",
						Aliases: []string{"v"},
						Usage:   "Print each search stage to stderr",
					},
				},
			},
			{
				Name:   "chat",
				Usage:  "Talk to the document assistant until EOF or 'quit'",
				Action: chatCommand,
			},
			{
				Name:      "eval",
				Usage:     "Ask the LLM a yes/no question and print true or false",
				ArgsUsage: "<prompt>",
				Action:    evalCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "system",
						Aliases: []string{"s"},
						Usage:   "System prompt sent with the question",
						Value:   defaultEvalPrompt,
					},
				},
			},
		},
	}
}

// openWorkspace loads configuration and opens a workspace. Dispatcher
// notices go to the app's writer.
func openWorkspace(c *cli.Context) (*docgen.Workspace, error) {
	cfg, err := config.Load(c.StringSlice("env-file")...)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	out := c.App.Writer
	return docgen.Open(c.Context, cfg, docgen.WithNotifier(func(msg string) {
		fmt.Fprintln(out, msg)
	}))
}

func setupCommand(c *cli.Context) error {
	ws, err := openWorkspace(c)
	if err != nil {
		return err
	}
	defer ws.Close()

	if err := ws.Setup(c.Context, c.Bool("recreate")); err != nil {
		return fmt.Errorf("failed to set up collection: %w", err)
	}
	fmt.Fprintf(c.App.Writer, "Collection %s is ready (%s)\n", core.CollectionName, ws.Config().StoreBackend)
	return nil
}

func crawlCommand(c *cli.Context) error {
	url := strings.TrimSpace(c.Args().First())
	if url == "" {
		return fmt.Errorf("a url is required")
	}

	ws, err := openWorkspace(c)
	if err != nil {
		return err
	}
	defer ws.Close()

	fmt.Fprintf(c.App.Writer, "Crawling %s. This may take a few minutes for large sites.\n", url)
	report, err := ws.Pipeline().CrawlAndStore(c.Context, url)
	if err != nil {
		return fmt.Errorf("error crawling website: %w", err)
	}
	fmt.Fprintln(c.App.Writer, dispatch.CrawlSummary(url, report))
	return nil
}

func addCommand(c *cli.Context) error {
	content := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if content == "" {
		return fmt.Errorf("document content is required")
	}

	ws, err := openWorkspace(c)
	if err != nil {
		return err
	}
	defer ws.Close()

	if err := ws.Pipeline().AddDocument(c.Context, content, c.String("source")); err != nil {
		return fmt.Errorf("error adding document: %w", err)
	}
	fmt.Fprintln(c.App.Writer, "Document added successfully")
	return nil
}

func searchCommand(c *cli.Context) error {
	query := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if query == "" {
		return fmt.Errorf("a query is required")
	}

	ws, err := openWorkspace(c)
	if err != nil {
		return err
	}
	defer ws.Close()

	mode := search.ModeKeyword
	if c.Bool("semantic") {
		mode = search.ModeSemantic
	}
	var monitor search.SearchMonitor = quietMonitor{}
	if c.Bool("verbose") {
		monitor = &verboseMonitor{w: c.App.ErrWriter}
	}

	results, err := ws.Searcher().SearchWithMonitor(c.Context, query, c.Int("limit"), mode, monitor)
	if err != nil {
		return fmt.Errorf("error searching documents: %w", err)
	}
	fmt.Fprintln(c.App.Writer, search.Format(results))
	return nil
}

func chatCommand(c *cli.Context) error {
	ws, err := openWorkspace(c)
	if err != nil {
		return err
	}
	defer ws.Close()

	out := c.App.Writer
	scanner := bufio.NewScanner(c.App.Reader)
	fmt.Fprintln(out, "Ask about your documents or give me a URL to crawl. Type 'quit' to exit.")
	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		switch strings.ToLower(line) {
		case "":
			continue
		case "quit", "exit":
			return nil
		}

		resp, err := ws.Dispatcher().Handle(c.Context, line)
		if err != nil {
			slog.Error("error handling message", "err", err)
			fmt.Fprintf(out, "Error: %v\n", err)
			continue
		}
		fmt.Fprintf(out, "[%s] %s\n", resp.Role, resp.Text)
	}
}

const defaultEvalPrompt = "Answer the question with exactly one word: true or false."

func evalCommand(c *cli.Context) error {
	prompt := strings.TrimSpace(strings.Join(c.Args().Slice(), " "))
	if prompt == "" {
		return fmt.Errorf("a prompt is required")
	}

	ws, err := openWorkspace(c)
	if err != nil {
		return err
	}
	defer ws.Close()

	if ws.Provider() == nil {
		return fmt.Errorf("eval needs an LLM: set an OpenAI or Anthropic API key")
	}
	return runEval(c.Context, c.App.Writer, ws.Provider().ChatModel(), c.String("system"), prompt)
}

func runEval(ctx context.Context, w io.Writer, model ai.ChatModel, systemPrompt, prompt string) error {
	ok, err := ai.EvaluateBool(ctx, model, systemPrompt, prompt)
	if err != nil {
		return fmt.Errorf("error evaluating prompt: %w", err)
	}
	fmt.Fprintln(w, ok)
	return nil
}

type quietMonitor struct{}

func (quietMonitor) Start(string, search.Mode)              {}
func (quietMonitor) AfterEmbedding(int)                     {}
func (quietMonitor) AfterStoreQuery([]*core.ScoredDocument) {}
func (quietMonitor) Finish([]core.SearchResult)             {}

// verboseMonitor prints each search stage.
type verboseMonitor struct {
	w io.Writer
}

func (m *verboseMonitor) Start(query string, mode search.Mode) {
	fmt.Fprintf(m.w, "searching %q (%s)\n", query, mode)
}

func (m *verboseMonitor) AfterEmbedding(dimensions int) {
	fmt.Fprintf(m.w, "embedded query: %d dimensions\n", dimensions)
}

func (m *verboseMonitor) AfterStoreQuery(hits []*core.ScoredDocument) {
	fmt.Fprintf(m.w, "store returned %d hits\n", len(hits))
	for i, hit := range hits {
		fmt.Fprintf(m.w, "  %d: id=%s score=%0.3f\n", i, hit.Document.ID, hit.Score)
	}
}

func (m *verboseMonitor) Finish(results []core.SearchResult) {
	fmt.Fprintf(m.w, "returning %d results\n", len(results))
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
