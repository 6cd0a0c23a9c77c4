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
	"path/filepath"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/poiesic/archivit/index"
	"github.com/poiesic/archivit/repository"
	"github.com/poiesic/archivit/search"
	"github.com/poiesic/archivit/storage/badger"
)

func main() {
	app := &cli.App{
		Name:  "archivit",
		Usage: "Document archive with a rebuildable search index",
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
				Name:      "write",
				Usage:     "Archive a file as a workflow document",
				ArgsUsage: "FILE",
				Action:    writeCommand(false),
				Flags:     writeFlags("workflow", "Workflow the document belongs to"),
			},
			{
				Name:      "write-stream",
				Usage:     "Archive a file as a stream artifact",
				ArgsUsage: "FILE",
				Action:    writeCommand(true),
				Flags:     writeFlags("stream", "Slash-delimited stream path, e.g. slack/general"),
			},
			{
				Name:   "index",
				Usage:  "Build the search index from an archive tree",
				Action: indexCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "base",
						Aliases:  []string{"b"},
						Usage:    "Archive base directory",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "index-dir",
						Aliases:  []string{"i"},
						Usage:    "Index store directory",
						Required: true,
					},
					&cli.BoolFlag{
						Name:  "rebuild",
						Usage: "Delete the index store before indexing",
					},
					&cli.IntFlag{
						Name:  "pool-size",
						Usage: "Worker pool size for sidecar parsing (0 = auto)",
					},
				},
			},
			{
				Name:      "search",
				Usage:     "Query the search index",
				ArgsUsage: "[QUERY]",
				Action:    searchCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "index-dir",
						Aliases:  []string{"i"},
						Usage:    "Index store directory",
						Required: true,
					},
					&cli.IntFlag{
						Name:    "limit",
						Aliases: []string{"n"},
						Usage:   "Maximum number of results (0 = all)",
						Value:   20,
					},
					&cli.StringFlag{
						Name:    "entity",
						Aliases: []string{"e"},
						Usage:   "Restrict results to one entity",
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func writeFlags(nameFlag, nameUsage string) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:     "base",
			Aliases:  []string{"b"},
			Usage:    "Archive base directory",
			Required: true,
		},
		&cli.StringFlag{
			Name:     "entity",
			Aliases:  []string{"e"},
			Usage:    "Entity owning the artifact (sanitized form, e.g. acme)",
			Required: true,
		},
		&cli.StringFlag{
			Name:     nameFlag,
			Usage:    nameUsage,
			Required: true,
		},
		&cli.StringFlag{
			Name:     "mimetype",
			Aliases:  []string{"m"},
			Usage:    "MIME type of the content",
			Required: true,
		},
		&cli.TimestampFlag{
			Name:   "created-at",
			Usage:  "Artifact timestamp (RFC 3339); defaults to now",
			Layout: time.RFC3339,
		},
		&cli.StringSliceFlag{
			Name:  "origin",
			Usage: "Connector context as key=value, repeatable",
		},
		&cli.BoolFlag{
			Name:  "manifest",
			Usage: "Append to the per-entity manifest log",
		},
		&cli.IntFlag{
			Name:  "layout-version",
			Usage: "Path layout version (1 or 2)",
			Value: repository.LayoutVersionCurrent,
		},
	}
}

func writeCommand(stream bool) cli.ActionFunc {
	return func(c *cli.Context) error {
		if c.NArg() != 1 {
			return fmt.Errorf("exactly one FILE argument is required")
		}
		file := c.Args().First()

		content, err := os.ReadFile(file)
		if err != nil {
			return fmt.Errorf("reading %s: %w", file, err)
		}

		cfg := repository.NewConfig(
			repository.WithBasePath(c.String("base")),
			repository.WithLayoutVersion(c.Int("layout-version")),
			repository.WithManifest(c.Bool("manifest")),
		)
		writer, err := repository.NewWriter(cfg)
		if err != nil {
			return err
		}

		createdAt := time.Now().UTC()
		if ts := c.Timestamp("created-at"); ts != nil && !ts.IsZero() {
			createdAt = *ts
		}

		origin, err := parseOrigin(c.StringSlice("origin"))
		if err != nil {
			return err
		}

		name := c.String("workflow")
		if stream {
			name = c.String("stream")
		}

		req := &repository.WriteRequest{
			Entity:           c.String("entity"),
			Name:             name,
			Content:          content,
			MimeType:         c.String("mimetype"),
			CreatedAt:        createdAt,
			OriginalFilename: filepath.Base(file),
			Origin:           origin,
		}

		var res *repository.WriteResult
		if stream {
			res, err = writer.WriteStream(c.Context, req)
		} else {
			res, err = writer.WriteDocument(c.Context, req)
		}
		if err != nil {
			return err
		}

		fmt.Printf("id:       %s\n", res.DocumentID)
		fmt.Printf("content:  %s\n", res.ContentPath)
		fmt.Printf("metadata: %s\n", res.MetadataPath)
		return nil
	}
}

func indexCommand(c *cli.Context) error {
	indexDir := c.String("index-dir")

	if c.Bool("rebuild") {
		// The index is derived data; removing the directory is safe.
		if err := os.RemoveAll(indexDir); err != nil {
			return fmt.Errorf("removing index store: %w", err)
		}
	}

	repo, err := badger.NewIndexRepository(indexDir)
	if err != nil {
		return fmt.Errorf("opening index store: %w", err)
	}
	defer repo.Close()

	var opts []index.Option
	if size := c.Int("pool-size"); size > 0 {
		opts = append(opts, index.WithPoolSize(size))
	}

	indexer, err := index.NewIndexer(repo, opts...)
	if err != nil {
		return err
	}
	defer indexer.Release()

	report, err := indexer.Run(c.Context, c.String("base"))
	if err != nil {
		return fmt.Errorf("index run failed: %w", err)
	}

	fmt.Printf("indexed: %d\nskipped: %d\n", report.Indexed, report.Skipped)
	return nil
}

func searchCommand(c *cli.Context) error {
	repo, err := badger.NewIndexRepository(c.String("index-dir"))
	if err != nil {
		return fmt.Errorf("opening index store: %w", err)
	}
	defer repo.Close()

	searcher, err := search.NewSearcher(repo)
	if err != nil {
		return err
	}

	var opts []search.QueryOption
	if entity := c.String("entity"); entity != "" {
		opts = append(opts, search.WithEntity(entity))
	}

	results, err := searcher.Search(context.Background(), strings.Join(c.Args().Slice(), " "), c.Int("limit"), opts...)
	if err != nil {
		return err
	}

	for _, r := range results {
		fmt.Printf("%s  %-10s  %s\n",
			r.Entry.SavedAt.Format(time.RFC3339),
			r.Entry.Category,
			r.Entry.ContentPath)
	}
	fmt.Fprintf(os.Stderr, "%d result(s)\n", len(results))
	return nil
}

// parseOrigin turns repeated key=value flags into the origin map.
func parseOrigin(pairs []string) (map[string]any, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	origin := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid origin pair %q: expected key=value", pair)
		}
		origin[key] = value
	}
	return origin, nil
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
