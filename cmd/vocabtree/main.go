// Command vocabtree trains and queries a vocabulary-tree image-retrieval
// index over a directory of precomputed descriptor files.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/kuandriy/vocabtree/internal/config"
	"github.com/kuandriy/vocabtree/internal/logx"
	"github.com/kuandriy/vocabtree/internal/persist"
)

var (
	configPath string
	verbose    bool
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "vocabtree",
		Short: "Train and query a hierarchical vocabulary-tree image index",
	}
	root.PersistentFlags().StringVar(&configPath, "config", "vocabtree.json", "path to the JSON config file")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	// Recover any .tmp file left behind by an interrupted SaveAtomic/
	// WriteAtomic before reading the config or index, mirroring the
	// recover-then-load startup order of the CLI this one is modeled on.
	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		persist.RecoverTmpFiles(configPath)
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		persist.RecoverTmpFiles(cfg.IndexPath)
		return nil
	}

	root.AddCommand(newTrainCmd())
	root.AddCommand(newSearchCmd())
	root.AddCommand(newInspectCmd())
	root.AddCommand(newResetCmd())
	root.AddCommand(newConfigCmd())
	return root
}

func loadConfig() (config.Config, error) {
	return config.Load(configPath)
}

func logger() logx.Logger {
	return logx.NewStd(verbose)
}
