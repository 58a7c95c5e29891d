package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kuandriy/vocabtree/internal/persist"
)

func newResetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Remove a trained index and its descriptor cache",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			if err := persist.Remove(cfg.IndexPath); err != nil {
				return fmt.Errorf("remove index %s: %w", cfg.IndexPath, err)
			}
			if err := os.RemoveAll(cfg.CacheDir); err != nil {
				return fmt.Errorf("remove cache dir %s: %w", cfg.CacheDir, err)
			}
			fmt.Println("reset complete")
			return nil
		},
	}
	return cmd
}
