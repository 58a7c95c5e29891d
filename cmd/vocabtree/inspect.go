package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kuandriy/vocabtree/internal/vocabtree"
)

type inspectSummary struct {
	Split          uint32 `json:"split"`
	MaxLevel       uint32 `json:"maxLevel"`
	NumberOfNodes  uint32 `json:"numberOfNodes"`
	LeafCount      int    `json:"leafCount"`
	DatabaseImages int    `json:"databaseImages"`
	NonEmptyLeaves int    `json:"nonEmptyLeaves"`
	TotalPostings  int    `json:"totalPostings"`
}

func newInspectCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "inspect",
		Short: "Print summary statistics for a trained index",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			tree, err := vocabtree.Load(cfg.IndexPath)
			if err != nil {
				return fmt.Errorf("load index %s: %w", cfg.IndexPath, err)
			}

			summary := summarize(tree)
			if asJSON {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(summary)
			}
			inspectText(cmd, summary)
			return nil
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "emit the summary as JSON")
	return cmd
}

func summarize(tree *vocabtree.Tree) inspectSummary {
	s := inspectSummary{
		Split:          tree.Split,
		MaxLevel:       tree.MaxLevel,
		NumberOfNodes:  tree.NumberOfNodes,
		LeafCount:      len(tree.InvertedFiles),
		DatabaseImages: len(tree.DatabaseVectors),
	}
	for _, postings := range tree.InvertedFiles {
		if len(postings) > 0 {
			s.NonEmptyLeaves++
		}
		s.TotalPostings += len(postings)
	}
	return s
}

func inspectText(cmd *cobra.Command, s inspectSummary) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "split:            %d\n", s.Split)
	fmt.Fprintf(out, "depth:            %d\n", s.MaxLevel)
	fmt.Fprintf(out, "nodes:            %d\n", s.NumberOfNodes)
	fmt.Fprintf(out, "leaves:           %d (%d non-empty)\n", s.LeafCount, s.NonEmptyLeaves)
	fmt.Fprintf(out, "database images:  %d\n", s.DatabaseImages)
	fmt.Fprintf(out, "total postings:   %d\n", s.TotalPostings)
}
