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
	"encoding/json"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/poiesic/claimdesk"
	"github.com/poiesic/claimdesk/config"
	"github.com/poiesic/claimdesk/core"
	"github.com/poiesic/claimdesk/search"
	"github.com/poiesic/claimdesk/seed"
	"github.com/poiesic/claimdesk/tui"
	"github.com/urfave/cli/v2"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "claimdesk",
		Usage: "Search GTPL RC 128 claims and variations",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to a YAML configuration file",
			},
			&cli.StringFlag{
				Name:    "db",
				Aliases: []string{"d"},
				Usage:   "Path to the database (overrides the configuration file)",
			},
			&cli.StringFlag{
				Name:  "backend",
				Usage: "Storage backend: badger or sqlite (overrides the configuration file)",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:      "search",
				Usage:     "Search claims and variations",
				ArgsUsage: "<query...>",
				Action:    searchCommand,
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Print the outcome as JSON",
					},
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Rows read from each collection (defaults to the configured limit)",
					},
				},
			},
			{
				Name:   "recent",
				Usage:  "List the newest records of each collection",
				Action: recentCommand,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Number of records per collection",
						Value: 10,
					},
				},
			},
			{
				Name:   "seed",
				Usage:  "Load the built-in sample claims and variations",
				Action: seedCommand,
				Flags:  importFlags(),
			},
			{
				Name:      "import",
				Usage:     "Import claims and variations from a YAML file",
				ArgsUsage: "<file>",
				Action:    importCommand,
				Flags:     importFlags(),
			},
			{
				Name:   "serve",
				Usage:  "Serve the search API and live search websocket",
				Action: serveCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "addr",
						Usage: "Listen address (defaults to the configured address)",
					},
				},
			},
			{
				Name:   "tui",
				Usage:  "Open an interactive search box",
				Action: tuiCommand,
			},
		},
	}
}

func importFlags() []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{
			Name:  "batch-size",
			Usage: "Number of records to write in each batch",
			Value: 100,
		},
		&cli.IntFlag{
			Name:  "report-interval",
			Usage: "Report progress every N records",
			Value: 100,
		},
		&cli.IntFlag{
			Name:  "max-retries",
			Usage: "Maximum attempts for each batch",
			Value: 3,
		},
		&cli.DurationFlag{
			Name:  "retry-delay",
			Usage: "Base delay for exponential backoff",
			Value: 1 * time.Second,
		},
	}
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

	logger := slog.New(slog.NewTextHandler(c.App.ErrWriter, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}

// loadConfig reads the configuration file, if any, and applies flag overrides.
func loadConfig(c *cli.Context) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if path := c.String("config"); path != "" {
		var err error
		cfg, err = config.Load(path)
		if err != nil {
			return nil, err
		}
	}
	if c.IsSet("backend") {
		cfg.Apply(config.WithBackend(c.String("backend")))
	}
	if c.IsSet("db") {
		cfg.Apply(config.WithPath(c.String("db")))
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func openDatabase(c *cli.Context) (*claimdesk.Database, error) {
	cfg, err := loadConfig(c)
	if err != nil {
		return nil, err
	}

	db, err := claimdesk.NewDatabase("", claimdesk.WithConfig(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}

type jsonOutcome struct {
	Query   string              `json:"query"`
	Status  search.Status       `json:"status"`
	Results []core.SearchResult `json:"results"`
	Error   string              `json:"error,omitempty"`
}

func searchCommand(c *cli.Context) error {
	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	var opts []search.Option
	if c.IsSet("limit") {
		opts = append(opts, search.WithLimit(c.Int("limit")))
	}
	searcher, err := db.NewSearcher(opts...)
	if err != nil {
		return fmt.Errorf("failed to create searcher: %w", err)
	}
	defer searcher.Release()

	query := strings.Join(c.Args().Slice(), " ")
	outcome := searcher.Search(c.Context, query)

	out := c.App.Writer
	if c.Bool("json") {
		result := jsonOutcome{Query: outcome.Query, Status: outcome.Status, Results: outcome.Results}
		if outcome.Err != nil {
			result.Error = outcome.Err.Error()
		}
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(result); err != nil {
			return err
		}
	} else {
		switch outcome.Status {
		case search.StatusError:
			fmt.Fprintf(out, "Search failed: %v\n", outcome.Err)
		case search.StatusEmpty:
			fmt.Fprintln(out, "No results")
		default:
			fmt.Fprintf(out, "Found %d results\n", len(outcome.Results))
			for i, result := range outcome.Results {
				fmt.Fprintf(out, "%d: [%s] %s (%d) %s\n", i+1, result.Module, result.Title, result.Id, result.Status)
			}
			if outcome.Status == search.StatusPartial {
				fmt.Fprintf(out, "Some results are missing: %v\n", outcome.Err)
			}
		}
	}

	if outcome.Failed() {
		return cli.Exit("search failed", 1)
	}
	return nil
}

func recentCommand(c *cli.Context) error {
	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	limit := c.Int("limit")
	if limit <= 0 {
		return fmt.Errorf("limit must be greater than 0")
	}

	out := c.App.Writer
	for _, collection := range core.Collections {
		repo, err := db.Repository(collection)
		if err != nil {
			return err
		}
		records, err := repo.GetRecentRecords(c.Context, limit)
		if err != nil {
			return fmt.Errorf("failed to list %s: %w", collection, err)
		}

		fmt.Fprintf(out, "%s (%d)\n", collection.Module(), len(records))
		for _, record := range records {
			fmt.Fprintf(out, "  %s  %s (%d) %s\n", record.CreatedAt.Format(time.DateOnly), record.Title, record.Id, record.Status)
		}
	}
	return nil
}

func newImporter(c *cli.Context, db *claimdesk.Database) (*seed.Importer, error) {
	importConfig := &seed.Config{
		BatchSize:      c.Int("batch-size"),
		ReportInterval: c.Int("report-interval"),
		MaxRetries:     c.Int("max-retries"),
		RetryDelay:     c.Duration("retry-delay"),
	}
	return db.NewImporter(seed.WithConfig(importConfig), seed.WithProgress(c.App.ErrWriter))
}

func seedCommand(c *cli.Context) error {
	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	importer, err := newImporter(c, db)
	if err != nil {
		return err
	}

	summary, err := importer.Seed(c.Context)
	if err != nil {
		return fmt.Errorf("seeding failed: %w", err)
	}
	fmt.Fprintf(c.App.Writer, "Seeded %d claims and %d variations\n", summary.Claims, summary.Variations)
	return nil
}

func importCommand(c *cli.Context) error {
	if c.NArg() != 1 {
		return fmt.Errorf("import takes exactly one file")
	}

	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	importer, err := newImporter(c, db)
	if err != nil {
		return err
	}

	summary, err := importer.ImportFile(c.Context, c.Args().First())
	if err != nil {
		return fmt.Errorf("import failed: %w", err)
	}
	fmt.Fprintf(c.App.Writer, "Imported %d claims and %d variations\n", summary.Claims, summary.Variations)
	return nil
}

func serveCommand(c *cli.Context) error {
	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	searcher, err := db.NewSearcher()
	if err != nil {
		return fmt.Errorf("failed to create searcher: %w", err)
	}
	defer searcher.Release()

	srv, err := db.NewServer(searcher)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	addr := db.Config().Server.Addr
	if c.IsSet("addr") {
		addr = c.String("addr")
	}

	ctx, stop := signal.NotifyContext(c.Context, syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return srv.ListenAndServe(ctx, addr)
}

func tuiCommand(c *cli.Context) error {
	// The terminal belongs to the search box; keep logs out of it
	slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))

	db, err := openDatabase(c)
	if err != nil {
		return err
	}
	defer db.Close()

	searcher, err := db.NewSearcher()
	if err != nil {
		return fmt.Errorf("failed to create searcher: %w", err)
	}
	defer searcher.Release()

	ctrl, err := db.NewController(searcher)
	if err != nil {
		return fmt.Errorf("failed to create search box: %w", err)
	}
	defer ctrl.Close()

	return tui.Run(ctrl, tea.WithContext(c.Context))
}
