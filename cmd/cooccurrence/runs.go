// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/formula-cooccurrence/internal/report"
)

var runsCmd = &cobra.Command{
	Use:   "runs [run-id]",
	Short: "List runs stored in the SQLite database",
	Long: `Runs lists the runs recorded in the database named by --db, most recent
first. Given a run id it prints that run's summary rows instead.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runRuns,
}

func init() {
	runsCmd.Flags().Bool("json", false, "output as JSON")
	rootCmd.AddCommand(runsCmd)
}

func runRuns(cmd *cobra.Command, args []string) error {
	dbPath := viper.GetString("report.db_path")
	if dbPath == "" {
		return fmt.Errorf("no database configured; pass --db or set report.db_path")
	}
	sink, err := report.OpenSQLite(dbPath)
	if err != nil {
		return err
	}
	defer sink.Close()

	asJSON, _ := cmd.Flags().GetBool("json")
	out := cmd.OutOrStdout()
	ctx := cmd.Context()

	if len(args) == 1 {
		rep, err := sink.LoadReport(ctx, args[0])
		if err != nil {
			return err
		}
		if asJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(rep)
		}
		tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "LEFT\tRIGHT\tCOUNT")
		for _, s := range rep.Summary {
			fmt.Fprintf(tw, "%s\t%s\t%s\n", s.PairLeft, s.PairRight, s.CooccurrenceCount)
		}
		fmt.Fprintf(tw, "\n%d work row(s) stored\n", len(rep.Works))
		return tw.Flush()
	}

	runs, err := sink.Runs(ctx)
	if err != nil {
		return err
	}
	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(runs)
	}
	if len(runs) == 0 {
		fmt.Fprintln(out, "No runs stored.")
		return nil
	}
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSTARTED\tDURATION\tPAIRS\tWORKS\tMAILTO")
	for _, r := range runs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%s\n",
			r.ID, r.StartedAt.Local().Format(time.DateTime),
			r.FinishedAt.Sub(r.StartedAt).Round(time.Second), r.Pairs, r.Works, r.Mailto)
	}
	return tw.Flush()
}
