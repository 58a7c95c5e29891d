package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kuandriy/vocabtree/internal/config"
)

// newConfigCmd groups config-file maintenance subcommands.
func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect or materialize the JSON config file",
	}
	cmd.AddCommand(newConfigInitCmd())
	return cmd
}

// newConfigInitCmd writes the resolved configuration (defaults overlaid with
// whatever --config already sets) back to --config, so a user can inspect or
// version-control the full set of tunables instead of guessing which keys
// exist.
func newConfigInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Write the resolved configuration to --config",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if err := config.Save(cfg, configPath); err != nil {
				return fmt.Errorf("write config %s: %w", configPath, err)
			}
			fmt.Printf("wrote %s\n", configPath)
			return nil
		},
	}
}
