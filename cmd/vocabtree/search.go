package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kuandriy/vocabtree/internal/descriptor"
	"github.com/kuandriy/vocabtree/internal/retrieval"
)

func newSearchCmd() *cobra.Command {
	var queryPath string
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "search",
		Short: "Query a trained vocabulary tree with a descriptor file",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if queryPath == "" {
				return fmt.Errorf("search: --query is required")
			}

			engine, err := retrieval.LoadVocabTree(cfg.IndexPath)
			if err != nil {
				return fmt.Errorf("load index %s: %w", cfg.IndexPath, err)
			}

			m, err := descriptor.LoadFile(queryPath)
			if err != nil {
				return fmt.Errorf("load query descriptors %s: %w", queryPath, err)
			}

			matches := engine.Search(rowsOf(m), cfg.AmountToReturn)
			if asJSON {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(matches)
			}
			if len(matches) == 0 {
				fmt.Println("no matches")
				return nil
			}
			for rank, match := range matches {
				fmt.Printf("%2d. image %d  score %.6f\n", rank+1, match.ImageID, match.Score)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&queryPath, "query", "", "path to the query's descriptor file")
	cmd.Flags().BoolVar(&asJSON, "json", false, "emit results as JSON")
	return cmd
}

func rowsOf(m descriptor.Matrix) [][]float32 {
	rows := make([][]float32, m.Rows)
	for i := 0; i < m.Rows; i++ {
		rows[i] = m.Row(i)
	}
	return rows
}
