package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/pders01/reel/internal/api"
	"github.com/pders01/reel/internal/browse"
	"github.com/pders01/reel/internal/config"
	"github.com/pders01/reel/internal/storage"
	"github.com/pders01/reel/internal/validation"
)

func addJSONFlag(cmd *cobra.Command, opts *rootOptions) {
	cmd.Flags().BoolVar(&opts.json, "json", false, "Print JSON instead of a table")
}

func newSearchCmd(opts *rootOptions) *cobra.Command {
	var page int
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Search movies and series",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			query := validation.SanitizeQuery(joinArgs(args))
			if query == "" {
				return errors.New("empty query")
			}
			return runFeed(cmd, opts, query, page)
		},
	}
	cmd.Flags().IntVarP(&page, "page", "p", 1, "Result page")
	addJSONFlag(cmd, opts)
	return cmd
}

func newTrendingCmd(opts *rootOptions) *cobra.Command {
	var page int
	cmd := &cobra.Command{
		Use:   "trending",
		Short: "List today's trending titles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runFeed(cmd, opts, "", page)
		},
	}
	cmd.Flags().IntVarP(&page, "page", "p", 1, "Result page")
	addJSONFlag(cmd, opts)
	return cmd
}

func runFeed(cmd *cobra.Command, opts *rootOptions, query string, page int) error {
	rt, err := openRuntime(opts, modeCLI, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer rt.Close()

	feed := browse.NewSearchController(rt.client, rt.sess)
	feed.SetQuery(query)
	feed.SetPage(page)

	snap, err := feed.Fetch(cmd.Context())
	if err != nil {
		return fmt.Errorf("%s: %w", snap.ErrMessage, err)
	}

	out := cmd.OutOrStdout()
	if opts.json {
		return writeJSON(out, snap)
	}
	return printFeed(out, snap, rt.favs.Keys())
}

func newDetailsCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "details <movie|tv> <id>",
		Short: "Show one title with cast, trailer and recommendations",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, id, err := validation.ParseRoute(args[0], args[1])
			if err != nil {
				return err
			}

			rt, err := openRuntime(opts, modeCLI, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer rt.Close()

			detail := browse.NewDetailController(rt.client, rt.favs)
			snap, err := detail.Load(cmd.Context(), kind, id)
			if err != nil {
				return fmt.Errorf("%s: %w", snap.ErrMessage, err)
			}

			if opts.json {
				return writeJSON(cmd.OutOrStdout(), snap)
			}
			return printDetail(cmd.OutOrStdout(), *snap.Detail, snap.Favorite)
		},
	}
	addJSONFlag(cmd, opts)
	return cmd
}

func newFavoritesCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "favorites",
		Aliases: []string{"fav"},
		Short:   "List or toggle favorites",
	}

	var query string
	list := &cobra.Command{
		Use:   "list",
		Short: "List favorites, optionally filtered",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := openRuntime(opts, modeCLI, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer rt.Close()

			items := rt.favs.List()
			if len(query) >= 2 {
				results, err := rt.favoritesSearcher(false).Search(query, 0)
				if err != nil {
					return fmt.Errorf("searching favorites: %w", err)
				}
				items = make([]storage.Item, 0, len(results))
				for _, r := range results {
					items = append(items, r.Item)
				}
			}

			if opts.json {
				return writeJSON(cmd.OutOrStdout(), items)
			}
			return printFavorites(cmd.OutOrStdout(), items)
		},
	}
	list.Flags().StringVarP(&query, "query", "q", "", "Filter by title, overview or year")
	addJSONFlag(list, opts)

	toggle := &cobra.Command{
		Use:   "toggle <movie|tv> <id>",
		Short: "Add or remove a title",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			kind, id, err := validation.ParseRoute(args[0], args[1])
			if err != nil {
				return err
			}

			rt, err := openRuntime(opts, modeCLI, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer rt.Close()

			// Removing needs only the stored copy, so it works offline.
			if item, ok := rt.favs.Get(kind, id); ok {
				if _, err := rt.favs.Toggle(item); err != nil {
					return fmt.Errorf("saving favorites: %w", err)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s removed from favorites (%s)\n", item.Title, item.Key())
				return nil
			}

			detail := browse.NewDetailController(rt.client, rt.favs)
			snap, err := detail.Load(cmd.Context(), kind, id)
			if err != nil {
				return fmt.Errorf("%s: %w", snap.ErrMessage, err)
			}
			if _, err := detail.ToggleFavorite(); err != nil {
				return fmt.Errorf("saving favorites: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s added to favorites (%s)\n",
				snap.Detail.Item.Title, storage.ItemKey(kind, id))
			return nil
		},
	}

	cmd.AddCommand(list, toggle)
	return cmd
}

func newSessionCmd(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "session",
		Short: "Inspect or reset the saved search session",
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Print the page the next launch resumes on",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := openRuntime(opts, modeCLI, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer rt.Close()

			out := cmd.OutOrStdout()
			st, ok := rt.sess.Load()
			if !ok {
				_, err := fmt.Fprintln(out, "No saved session")
				return err
			}

			feed := browse.NewSearchController(rt.client, nil)
			feed.Restore(st)
			snap := feed.Snapshot()
			if opts.json {
				return writeJSON(out, snap)
			}
			if snap.Mode == browse.ModeSearch {
				fmt.Fprintf(out, "Search: %s\n\n", snap.Query)
			} else {
				fmt.Fprintln(out, "Trending")
				fmt.Fprintln(out)
			}
			return printFeed(out, snap, rt.favs.Keys())
		},
	}
	addJSONFlag(show, opts)

	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Forget the saved session; favorites are kept",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := openRuntime(opts, modeCLI, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer rt.Close()

			if err := rt.sess.Clear(); err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), "Session cleared")
			return err
		},
	}

	cmd.AddCommand(show, clearCmd)
	return cmd
}

func newServeCmd(opts *rootOptions) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the feed, details and favorites as JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, err := openRuntime(opts, modeServe, cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			defer rt.Close()

			if addr != "" {
				rt.cfg.Server.Addr = addr
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			srv := api.NewServer(rt.cfg.Server, api.Deps{
				Catalog:   rt.client,
				Favorites: rt.favs,
				Session:   rt.sess,
				Metrics:   rt.metrics,
				Gatherer:  rt.registry,
				Logger:    rt.logger,
			})

			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				return srv.Start(gctx)
			})
			g.Go(func() error {
				<-gctx.Done()
				if errors.Is(context.Cause(gctx), context.Canceled) {
					rt.logger.Info("stopping")
				}
				return nil
			})
			return g.Wait()
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (overrides config)")
	return cmd
}

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the configuration file",
	}

	var path string
	generate := &cobra.Command{
		Use:   "generate",
		Short: "Write the default configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if path == "" {
				path = config.DefaultConfigPath()
			}
			if err := validation.EnsureParentDir(path); err != nil {
				return err
			}
			if err := config.GenerateDefaultConfig(path); err != nil {
				return fmt.Errorf("generating config: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Generated default configuration at: %s\n", path)
			return nil
		},
	}
	generate.Flags().StringVar(&path, "path", "", "Where to write the file")

	cmd.AddCommand(generate)
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "reel %s\n", Version)
			fmt.Fprintln(out, "TMDB movie and series discovery")
			fmt.Fprintln(out, "github.com/pders01/reel")
		},
	}
}
