package main

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/pders01/reel/internal/browse"
	"github.com/pders01/reel/internal/media"
	"github.com/pders01/reel/internal/tui"
)

// Version is the version of the application, set at build time
var Version = "dev"

type rootOptions struct {
	configPath string
	dbPath     string
	quiet      bool
	json       bool
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	root := &cobra.Command{
		Use:           "reel",
		Short:         "Discover movies and series from TMDB in the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTUI(cmd, opts)
		},
	}

	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "Path to configuration file")
	root.PersistentFlags().StringVar(&opts.dbPath, "db", "", "Path to database file (overrides config)")
	root.Flags().BoolVar(&opts.quiet, "quiet", false, "Skip startup banner")

	root.AddCommand(
		newSearchCmd(opts),
		newTrendingCmd(opts),
		newDetailsCmd(opts),
		newFavoritesCmd(opts),
		newSessionCmd(opts),
		newServeCmd(opts),
		newConfigCmd(),
		newVersionCmd(),
	)

	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runTUI(cmd *cobra.Command, opts *rootOptions) error {
	if !opts.quiet {
		tui.ShowBanner(Version)
	}

	rt, err := openRuntime(opts, modeTUI, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	defer rt.Close()

	feed := browse.NewSearchController(rt.client, rt.sess)
	st, restored := rt.sess.Load()
	if restored {
		feed.Restore(st)
	}

	app := tui.NewApp(rt.cfg, tui.Deps{
		Feed:      feed,
		Detail:    browse.NewDetailController(rt.client, rt.favs),
		Favorites: rt.favs,
		Searcher:  rt.favoritesSearcher(true),
		Opener:    media.NewLauncher(rt.cfg),
		Restored:  restored,
	})

	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithMouseCellMotion())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running tui: %w", err)
	}
	return nil
}
