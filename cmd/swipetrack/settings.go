package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mmcdole/swipetrack/internal/adapter"
	"github.com/mmcdole/swipetrack/internal/store"
)

func newCacheCommand(ctx *commandContext) *cobra.Command {
	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the local journal mirror",
	}

	var purge bool
	clearCmd := &cobra.Command{
		Use:   "clear",
		Short: "Wipe every user's mirrored journal",
		Long: "Wipe every user's mirrored journal and push clock. Remote records are " +
			"untouched and merge back in on the next login. --purge removes the cache " +
			"directory instead.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if cfg.Cache.Dir == "" {
				fmt.Fprintln(cmd.OutOrStdout(), "Mirror is memory-only, nothing to clear")
				return nil
			}

			if purge {
				if err := adapter.ClearCache(cfg); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", cfg.Cache.Dir)
				return nil
			}

			mirror, err := store.NewMirrorStore(cfg.Cache.Dir)
			if err != nil {
				return err
			}
			defer mirror.Close()
			if err := mirror.InvalidateAll(); err != nil {
				return fmt.Errorf("failed to clear mirror: %w", err)
			}
			ctx.log().Info("cleared local mirror", "dir", cfg.Cache.Dir)
			fmt.Fprintln(cmd.OutOrStdout(), "Local journal mirror cleared")
			return nil
		},
	}
	clearCmd.Flags().BoolVar(&purge, "purge", false, "Delete the cache directory")

	pathCmd := &cobra.Command{
		Use:   "path",
		Short: "Print the mirror directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if cfg.Cache.Dir == "" {
				fmt.Fprintf(cmd.OutOrStdout(), "memory-only (default location: %s)\n", adapter.GetCachePath())
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), cfg.Cache.Dir)
			return nil
		},
	}

	cacheCmd.AddCommand(clearCmd, pathCmd)
	return cacheCmd
}

func newConfigCommand(ctx *commandContext) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect or write the configuration file",
	}

	pathCmd := &cobra.Command{
		Use:   "path",
		Short: "Print the config file location",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(cmd.OutOrStdout(), adapter.GetConfigPath())
		},
	}

	var force bool
	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write the current settings, defaults included, to the config file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := adapter.GetConfigPath()
			if _, err := os.Stat(path); err == nil && !force {
				return fmt.Errorf("%s already exists (use --force to overwrite)", path)
			}
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if err := adapter.SaveConfig(cfg); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
			return nil
		},
	}
	initCmd.Flags().BoolVar(&force, "force", false, "Overwrite an existing config file")

	configCmd.AddCommand(pathCmd, initCmd)
	return configCmd
}
