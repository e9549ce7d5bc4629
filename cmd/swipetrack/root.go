package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/mmcdole/swipetrack/internal/adapter"
	"github.com/mmcdole/swipetrack/internal/tui"
)

var errNotTerminal = errors.New("the interactive journal needs a terminal; try `swipetrack stats` or `swipetrack list`")

func newRootCommand() *cobra.Command {
	ctx := newCommandContext()

	rootCmd := &cobra.Command{
		Use:           "swipetrack",
		Short:         "Swipe through movies, series and games and keep a watch journal",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Name() == "version" {
				return nil
			}
			_, err := ctx.ensureConfig()
			return err
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			ctx.close()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if !isTerminal(os.Stdin) || !isTerminal(os.Stdout) {
				return errNotTerminal
			}
			return runTUI(ctx)
		},
	}

	rootCmd.AddCommand(newLoginCommand(ctx))
	rootCmd.AddCommand(newLogoutCommand(ctx))
	rootCmd.AddCommand(newStatsCommand(ctx))
	rootCmd.AddCommand(newListCommand(ctx))
	rootCmd.AddCommand(newSearchCommand(ctx))
	rootCmd.AddCommand(newCacheCommand(ctx))
	rootCmd.AddCommand(newConfigCommand(ctx))
	rootCmd.AddCommand(newVersionCommand())

	return rootCmd
}

func runTUI(ctx *commandContext) error {
	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}
	logger := ctx.log()
	logger.Info("starting swipetrack", "version", Version)

	identity, err := ctx.identity()
	if err != nil {
		return err
	}
	model := tui.NewModel(tui.Options{
		Config:   cfg,
		Identity: identity,
		Launcher: adapter.NewLauncher(cfg.UI.Browser, cfg.UI.WatchURL, logger),
		Logger:   logger,
	})

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)

	logger.Info("starting TUI")

	final, err := p.Run()
	if err != nil {
		logger.Error("TUI error", "error", err)
		return fmt.Errorf("TUI error: %w", err)
	}

	if m, ok := final.(tui.Model); ok && m.Session != nil {
		flushCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := m.Session.Flush(flushCtx); err != nil {
			logger.Warn("dropped queued pushes at exit", "error", err)
		}
		cancel()
		if err := m.Session.Close(); err != nil {
			logger.Warn("failed to close session", "error", err)
		}
	}
	logger.Info("shutting down")
	return nil
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "swipetrack %s\n", Version)
		},
	}
}

func isTerminal(file *os.File) bool {
	if file == nil {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
