package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dsjohal14/shopsearch/internal/app"
	"github.com/dsjohal14/shopsearch/internal/libs/obs"
	"github.com/dsjohal14/shopsearch/internal/scope/catalog"
	"github.com/dsjohal14/shopsearch/internal/scope/db"
	"github.com/dsjohal14/shopsearch/internal/scope/intent"
	"github.com/dsjohal14/shopsearch/internal/scope/query"
	"github.com/dsjohal14/shopsearch/internal/scope/search"
)

// newSearchCmd creates the search subcommand.
func (c *cli) newSearchCmd() *cobra.Command {
	var (
		category   string
		categories []string
		items      []string
		variants   []string
		handlers   []string
		sortBy     string
		limit      int
		minPrice   float64
		maxPrice   float64
		rating     float64
		gift       bool
		occasion   string
		noFallback bool
		noBackup   bool
	)

	cmd := &cobra.Command{
		Use:   "search [query]",
		Short: "Run the search pipeline against the configured catalog",
		Long: `Search runs the full seven-stage pipeline and then merges UI handlers recovered
from the raw query. Without classified flags the query is parsed first.`,
		Example: `  shopsearch search red jacket under £40
  shopsearch search --category electronics --sort price-low --limit 5`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), c.cfg.RequestTimeout)
			defer cancel()

			logger := obs.Logger("cli")
			src, closeSource, err := app.OpenSource(ctx, c.cfg, logger)
			if err != nil {
				return err
			}
			defer closeSource()

			pipeline, err := app.NewPipeline(c.cfg, src, nil, obs.Logger("search"))
			if err != nil {
				return err
			}

			req := search.Request{
				Query:        strings.Join(args, " "),
				Category:     category,
				Categories:   categories,
				ProductItems: items,
				Variants:     variants,
				UIHandlers:   handlers,
				Sort:         sortBy,
			}

			flags := cmd.Flags()
			var cons search.Constraints
			if flags.Changed("min-price") || flags.Changed("max-price") {
				cons.Price = &search.PriceBounds{}
				if flags.Changed("min-price") {
					cons.Price.Min = &minPrice
				}
				if flags.Changed("max-price") {
					cons.Price.Max = &maxPrice
				}
			}
			if flags.Changed("rating") {
				cons.Rating = &rating
			}
			cons.Limit = limit
			cons.Gift = gift
			cons.Occasion = occasion
			req.Constraints = &cons

			if noFallback {
				req.Fallback = boolPtr(false)
			}
			if noBackup {
				req.BackupSearch = boolPtr(false)
			}

			if strings.TrimSpace(req.Query) == "" && !req.IsClassified() {
				return errors.New("a query or at least one classified flag is required")
			}

			res, runErr := pipeline.Execute(ctx, req)
			if errors.Is(runErr, search.ErrInvalidRequest) {
				return runErr
			}

			fb := app.NewMatcher(c.cfg).Apply(res.UIHandlers, req.Query, res.HasItems())
			if runErr == nil {
				res.UIHandlers = fb.Handlers
			}

			out := cmd.OutOrStdout()
			if c.outputJSON {
				if err := printJSON(out, searchOutput{Result: res, UIFallback: fb}); err != nil {
					return err
				}
			} else {
				renderSearch(out, res, fb)
			}
			return runErr
		},
	}

	f := cmd.Flags()
	f.StringVar(&category, "category", "", "filter to a single category")
	f.StringSliceVar(&categories, "categories", nil, "filter to a subset of categories")
	f.StringSliceVar(&items, "items", nil, "classified product item terms")
	f.StringSliceVar(&variants, "variants", nil, "variant terms, all of which must match")
	f.StringSliceVar(&handlers, "handlers", nil, "UI handlers supplied by a classifier")
	f.StringVar(&sortBy, "sort", "", "relevance, price-low, price-high or rating")
	f.IntVar(&limit, "limit", 0, "maximum number of results (0 uses the default)")
	f.Float64Var(&minPrice, "min-price", 0, "minimum price")
	f.Float64Var(&maxPrice, "max-price", 0, "maximum price")
	f.Float64Var(&rating, "rating", 0, "minimum rating")
	f.BoolVar(&gift, "gift", false, "apply the gift quality floor")
	f.StringVar(&occasion, "occasion", "", "gift occasion; implies --gift")
	f.BoolVar(&noFallback, "no-fallback", false, "disable fallback restores")
	f.BoolVar(&noBackup, "no-backup-search", false, "disable the broader text search")

	return cmd
}

// newParseCmd creates the parse subcommand.
func (c *cli) newParseCmd() *cobra.Command {
	var offline bool

	cmd := &cobra.Command{
		Use:   "parse <query>",
		Short: "Show the structured parse of a query",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var categories []string
			if !offline {
				ctx, cancel := context.WithTimeout(cmd.Context(), c.cfg.RequestTimeout)
				defer cancel()

				logger := obs.Logger("cli")
				src, closeSource, err := app.OpenSource(ctx, c.cfg, logger)
				if err != nil {
					return err
				}
				defer closeSource()

				categories, err = src.FetchCategories(ctx)
				if err != nil {
					logger.Warn().Err(err).Msg("failed to fetch categories, parsing without them")
				}
			}

			parsed := query.NewParser(categories, query.WithBrands(c.cfg.Brands)).Parse(strings.Join(args, " "))

			out := cmd.OutOrStdout()
			if c.outputJSON {
				return printJSON(out, parsed)
			}
			renderParsed(out, parsed)
			return nil
		},
	}

	cmd.Flags().BoolVar(&offline, "offline", false, "parse without fetching catalog categories")
	return cmd
}

// newMatchCmd creates the match subcommand.
func (c *cli) newMatchCmd() *cobra.Command {
	var (
		hasItems bool
		handlers []string
	)

	cmd := &cobra.Command{
		Use:   "match <query>",
		Short: "Run the UI intent fallback matcher on a query",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			fb := app.NewMatcher(c.cfg).Apply(handlers, strings.Join(args, " "), hasItems)

			out := cmd.OutOrStdout()
			if c.outputJSON {
				return printJSON(out, fb)
			}
			renderFallback(out, fb)
			return nil
		},
	}

	cmd.Flags().BoolVar(&hasItems, "has-items", false, "products are in context")
	cmd.Flags().StringSliceVar(&handlers, "handlers", nil, "UI handlers supplied by a classifier")
	return cmd
}

// newDBCmd creates the db subcommand group.
func (c *cli) newDBCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "db",
		Short: "Manage the Postgres catalog",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "migrate",
		Short: "Create the products table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.withDB(cmd.Context(), func(ctx context.Context, database *db.DB) error {
				if err := database.Migrate(ctx); err != nil {
					return err
				}
				success(cmd.OutOrStdout(), "schema migrated")
				return nil
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "seed <file>",
		Short: "Upsert products from a JSON, JSONL or YAML file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			items, err := catalog.LoadFile(args[0])
			if err != nil {
				return err
			}
			return c.withDB(cmd.Context(), func(ctx context.Context, database *db.DB) error {
				if err := database.Migrate(ctx); err != nil {
					return err
				}
				n, err := database.UpsertItems(ctx, items)
				if err != nil {
					return err
				}
				success(cmd.OutOrStdout(), "seeded %d products from %s", n, args[0])
				return nil
			})
		},
	})

	return cmd
}

func (c *cli) withDB(parent context.Context, fn func(context.Context, *db.DB) error) error {
	if c.cfg.DatabaseURL == "" {
		return errors.New("DATABASE_URL is required")
	}

	ctx, cancel := context.WithTimeout(parent, c.cfg.RequestTimeout)
	defer cancel()

	database, err := db.New(ctx, c.cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer database.Close()

	if err := fn(ctx, database); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	return nil
}

type searchOutput struct {
	*search.Result
	UIFallback intent.FallbackResult `json:"uiFallback"`
}

func boolPtr(v bool) *bool { return &v }
