// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/formula-cooccurrence/internal/pairs"
	"github.com/pdiddy/formula-cooccurrence/internal/search"
)

var pairsCmd = &cobra.Command{
	Use:   "pairs",
	Short: "List the formula pairs a run would query",
	Long: `Pairs prints the effective pair list, in run order, with the full-text
query each pair produces. The list is the built-in one unless --pairs names
a YAML or TOML file.

With --write the list is saved to a file instead, which is a convenient
starting point for a custom pair file.`,
	Args: cobra.NoArgs,
	RunE: runPairs,
}

func init() {
	pairsCmd.Flags().String("write", "", "save the pair list to this .yaml, .yml or .toml file")
	rootCmd.AddCommand(pairsCmd)
}

func runPairs(cmd *cobra.Command, _ []string) error {
	list, err := loadPairs(viper.GetString("pairs_file"))
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	if path, _ := cmd.Flags().GetString("write"); path != "" {
		if err := pairs.Write(path, list); err != nil {
			return fmt.Errorf("writing pairs: %w", err)
		}
		fmt.Fprintf(out, "Wrote %d pair(s) to %s\n", len(list), path)
		return nil
	}

	for i, p := range list {
		fmt.Fprintf(out, "%2d. %s\n    %s\n", i+1, p, search.BuildFulltextQuery(p.Left, p.Right))
	}
	return nil
}
