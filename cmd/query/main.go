package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/letmevibethatforyou/hitview"
	"github.com/letmevibethatforyou/hitview/algolia"
	"github.com/letmevibethatforyou/hitview/inmemory"
	"github.com/letmevibethatforyou/hitview/render"
	"github.com/urfave/cli/v2"
)

const (
	defaultLimit   = 10
	defaultTimeout = 5 * time.Second

	backendAlgolia  = "algolia"
	backendInMemory = "inmemory"

	formatJSON = "json"
	formatHTML = "html"
)

func main() {
	if os.Getenv("AWS_LAMBDA_RUNTIME_API") != "" || os.Getenv("AWS_REGION") != "" {
		slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))
	}

	app := &cli.App{
		Name:  "query",
		Usage: "Search the question bank and print rendered hit cards",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "backend",
				Aliases: []string{"b"},
				Usage:   "Search backend: algolia or inmemory",
				Value:   backendAlgolia,
			},
			&cli.StringFlag{
				Name:    "index",
				Aliases: []string{"i"},
				Usage:   "Algolia index name",
				EnvVars: []string{"ALGOLIA_INDEX"},
			},
			&cli.StringFlag{
				Name:    "algolia-secret-arn",
				Usage:   "ARN of AWS Secrets Manager secret containing Algolia credentials",
				EnvVars: []string{"ALGOLIA_SECRET_ARN"},
			},
			&cli.PathFlag{
				Name:    "data",
				Aliases: []string{"d"},
				Usage:   "JSON array or JSONL file of records for the inmemory backend",
			},
			&cli.StringFlag{
				Name:    "query",
				Aliases: []string{"q"},
				Usage:   "Query string to search for; positional arg is a fallback",
			},
			&cli.IntFlag{
				Name:    "limit",
				Aliases: []string{"l"},
				Usage:   "Maximum number of results to return",
				Value:   defaultLimit,
			},
			&cli.IntFlag{
				Name:    "offset",
				Aliases: []string{"o"},
				Usage:   "Number of results to skip before returning hits",
				Value:   0,
			},
			&cli.DurationFlag{
				Name:  "timeout",
				Usage: "Timeout for the search request",
				Value: defaultTimeout,
			},
			&cli.StringSliceFlag{
				Name:  "filter",
				Usage: "Filter in field=value format; repeatable",
			},
			&cli.StringSliceFlag{
				Name:    "attribute",
				Aliases: []string{"a"},
				Usage:   "Restrict matching to these display fields; repeatable",
				Value:   cli.NewStringSlice(render.DefaultFields...),
			},
			&cli.BoolFlag{
				Name:  "all-attributes",
				Usage: "Match against every searchable attribute, ignoring --attribute",
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Output format: json or html",
				Value:   formatJSON,
			},
			&cli.StringFlag{
				Name:  "image-base",
				Usage: "Base URL relative image sources are resolved against in html output",
			},
			&cli.StringFlag{
				Name:  "admin-base",
				Usage: "Base URL of the question admin",
				Value: render.DefaultAdminBaseURL,
			},
		},
		Action: runAction,
	}

	if err := app.Run(os.Args); err != nil {
		slog.Error("Application failed", "error", err)
		os.Exit(1)
	}
}

func runAction(c *cli.Context) error {
	ctx := c.Context

	query := strings.TrimSpace(c.String("query"))
	if query == "" && c.NArg() > 0 {
		query = strings.TrimSpace(c.Args().First())
	}

	limit := c.Int("limit")
	if limit <= 0 {
		slog.WarnContext(ctx, "limit must be positive; falling back to default", "limit", limit, "default", defaultLimit)
		limit = defaultLimit
	}

	offset := c.Int("offset")
	if offset < 0 {
		slog.WarnContext(ctx, "offset cannot be negative; resetting to 0", "offset", offset)
		offset = 0
	}

	timeout := c.Duration("timeout")
	if timeout <= 0 {
		slog.WarnContext(ctx, "timeout must be positive; using default", "timeout", timeout, "default", defaultTimeout)
		timeout = defaultTimeout
	}

	format := strings.ToLower(strings.TrimSpace(c.String("format")))
	if format != formatJSON && format != formatHTML {
		return fmt.Errorf("unknown format %q: want %s or %s", format, formatJSON, formatHTML)
	}

	filterOptions, err := buildFilterOptions(c.StringSlice("filter"))
	if err != nil {
		return fmt.Errorf("invalid filter: %w", err)
	}

	searcher, err := newSearcher(ctx, c)
	if err != nil {
		return err
	}

	attributes := selectAttributes(ctx, c.StringSlice("attribute"), c.Bool("all-attributes"))

	opts := []hitview.SearchOption{
		hitview.WithLimit(limit),
		hitview.WithOffset(offset),
	}
	opts = append(opts, render.SearchDefaults()...)
	if len(attributes) > 0 {
		opts = append(opts, hitview.WithAttributes(attributes...))
	}
	opts = append(opts, filterOptions...)

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	slog.InfoContext(ctx, "executing query",
		"backend", c.String("backend"),
		"query", query,
		"limit", limit,
		"offset", offset,
		"attributes", attributes,
		"filter_count", len(filterOptions),
		"timeout", timeout,
	)

	results, err := searcher.Search(ctx, query, opts...)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	renderer := render.NewRenderer(render.WithAdminBaseURL(c.String("admin-base")))
	cards, err := renderer.RenderHits(ctx, results.Hits)
	if err != nil {
		return fmt.Errorf("failed to render hits: %w", err)
	}

	if err := writeResults(os.Stdout, format, results, cards, c.String("image-base")); err != nil {
		return fmt.Errorf("failed to write results: %w", err)
	}

	return nil
}

func newSearcher(ctx context.Context, c *cli.Context) (hitview.Searcher, error) {
	switch backend := c.String("backend"); backend {
	case backendAlgolia:
		indexName := strings.TrimSpace(c.String("index"))
		if indexName == "" {
			return nil, fmt.Errorf("--index is required for the %s backend", backendAlgolia)
		}

		var fetchSecrets algolia.FetchSecrets
		if secretArn := strings.TrimSpace(c.String("algolia-secret-arn")); secretArn != "" {
			slog.InfoContext(ctx, "using AWS Secrets Manager for Algolia credentials", "secret_arn", secretArn)
			cfg, err := config.LoadDefaultConfig(ctx)
			if err != nil {
				return nil, fmt.Errorf("failed to load AWS config: %w", err)
			}
			fetchSecrets = algolia.AWSSecretsFromARN(ctx, secretsmanager.NewFromConfig(cfg), secretArn)
		} else {
			fetchSecrets = algolia.EnvSecrets()
		}

		return algolia.NewSearcher(algolia.NewClient(fetchSecrets), indexName), nil

	case backendInMemory:
		path := c.Path("data")
		if path == "" {
			return nil, fmt.Errorf("--data is required for the %s backend", backendInMemory)
		}
		searcher, err := loadInMemory(ctx, path)
		if err != nil {
			return nil, err
		}
		return searcher, nil

	default:
		return nil, fmt.Errorf("unknown backend %q: want %s or %s", backend, backendAlgolia, backendInMemory)
	}
}

// loadInMemory reads records from path; a .jsonl or .ndjson extension
// selects line-delimited JSON.
func loadInMemory(ctx context.Context, path string) (*inmemory.Searcher, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open data file: %w", err)
	}
	defer f.Close()

	searcher := inmemory.New()
	var n int
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jsonl", ".ndjson":
		n, err = searcher.LoadJSONL(f)
	default:
		n, err = searcher.LoadJSON(f)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}

	slog.InfoContext(ctx, "loaded records", "path", path, "count", n)
	return searcher, nil
}

// selectAttributes returns the display fields to restrict matching to. An
// empty result searches every attribute.
func selectAttributes(ctx context.Context, requested []string, all bool) []string {
	if all {
		return nil
	}
	attributes := render.NormalizeSelection(requested)
	if len(requested) > len(attributes) {
		slog.WarnContext(ctx, "ignoring unknown or repeated attributes", "requested", requested, "kept", attributes)
	}
	return attributes
}

func buildFilterOptions(raw []string) ([]hitview.SearchOption, error) {
	if len(raw) == 0 {
		return nil, nil
	}

	options := make([]hitview.SearchOption, 0, len(raw))
	for _, item := range raw {
		item = strings.TrimSpace(item)
		if item == "" {
			return nil, fmt.Errorf("filter cannot be empty")
		}

		field, value, found := strings.Cut(item, "=")
		if !found {
			return nil, fmt.Errorf("filter must be in field=value format: %q", item)
		}

		field = strings.TrimSpace(field)
		value = strings.TrimSpace(value)
		if field == "" || value == "" {
			return nil, fmt.Errorf("filter field and value must be non-empty: %q", item)
		}

		options = append(options, hitview.Eq(field, value))
	}

	return options, nil
}

func writeResults(w io.Writer, format string, res *hitview.Results, cards []render.Card, imageBase string) error {
	if format == formatHTML {
		return render.WritePage(w, render.PageData{
			Query:     res.Query,
			Total:     res.Total,
			Cards:     cards,
			ImageBase: imageBase,
		})
	}

	payload := struct {
		Total      int64         `json:"total"`
		Took       int64         `json:"took_ms"`
		Query      string        `json:"query"`
		NextOffset *int          `json:"next_offset,omitempty"`
		Cards      []render.Card `json:"cards"`
	}{
		Total:      res.Total,
		Took:       res.Took,
		Query:      res.Query,
		NextOffset: res.NextOffset,
		Cards:      cards,
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(payload); err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	return nil
}
