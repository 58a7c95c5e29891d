package main

import (
	"fmt"
	"math/rand"

	"github.com/spf13/cobra"

	"github.com/kuandriy/vocabtree/internal/dataset"
	"github.com/kuandriy/vocabtree/internal/kmeans"
	"github.com/kuandriy/vocabtree/internal/vocabtree"
)

func newTrainCmd() *cobra.Command {
	var dataRoot string
	var indexPath string
	var useBadgerCache bool

	cmd := &cobra.Command{
		Use:   "train",
		Short: "Train a vocabulary tree over a directory of descriptor files",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if dataRoot != "" {
				cfg.DataRoot = dataRoot
			}
			if indexPath != "" {
				cfg.IndexPath = indexPath
			}
			log := logger()

			names, err := dataset.ScanDirectories(cfg.DataRoot)
			if err != nil {
				return fmt.Errorf("scan %s: %w", cfg.DataRoot, err)
			}
			if len(names) == 0 {
				return fmt.Errorf("no images with descriptor files found under %s", cfg.DataRoot)
			}
			ds := dataset.NewFileDataset(cfg.DataRoot, names)

			var loader dataset.Loader = dataset.FileLoader{}
			if useBadgerCache {
				bl, err := dataset.OpenBadgerLoader(cfg.CacheDir, dataset.FileLoader{}, log)
				if err != nil {
					return fmt.Errorf("open descriptor cache: %w", err)
				}
				defer bl.Close()
				loader = bl
			} else {
				cl, err := dataset.NewCachedLoader(dataset.FileLoader{}, cfg.DecodeCacheSize, log)
				if err != nil {
					return fmt.Errorf("create decode cache: %w", err)
				}
				loader = cl
			}

			trainCfg := vocabtree.TrainConfig{Split: cfg.Split, Depth: cfg.Depth}
			km := kmeans.Config{
				MaxIterations: cfg.KMeansMaxIterations,
				Epsilon:       cfg.KMeansEpsilon,
				Attempts:      cfg.KMeansAttempts,
			}

			tree, err := vocabtree.Train(ds, loader, trainCfg, km, rand.New(rand.NewSource(1)), log)
			if err != nil {
				return fmt.Errorf("train: %w", err)
			}
			if err := vocabtree.Save(tree, cfg.IndexPath); err != nil {
				return fmt.Errorf("save index: %w", err)
			}
			fmt.Printf("trained %d images into %d nodes, wrote %s\n", len(tree.DatabaseVectors), tree.NumberOfNodes, cfg.IndexPath)
			return nil
		},
	}
	cmd.Flags().StringVar(&dataRoot, "data", "", "override config dataRoot")
	cmd.Flags().StringVar(&indexPath, "out", "", "override config indexPath")
	cmd.Flags().BoolVar(&useBadgerCache, "badger-cache", false, "use an on-disk badger descriptor cache instead of the in-memory LRU")
	return cmd
}
