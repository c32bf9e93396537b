package cmd

import (
	"context"
	"fmt"
	"io"
	"time"
	"ubereats-scraper/internal/archive"
	"ubereats-scraper/lib/serviceutil"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var (
	runsDb    string
	runsLimit int
)

func init() {
	runsCmd.Flags().StringVar(&runsDb, "db", "", "The sqlite database passed to scrape --db.")
	runsCmd.Flags().IntVar(&runsLimit, "limit", 20, "Number of runs to list.")
	_ = runsCmd.MarkFlagRequired("db")
	rootCmd.AddCommand(runsCmd)
}

var runsCmd = &cobra.Command{
	Use:   "runs --db <path>",
	Short: "List the runs archived in a database, most recent first.",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		err := printRuns(cmd.Context(), cmd.OutOrStdout(), runsDb, runsLimit)
		if err != nil {
			serviceutil.Fatal("list runs", err)
		}
	},
}

func printRuns(ctx context.Context, w io.Writer, path string, limit int) error {
	store, err := archive.Open(ctx, path)
	if err != nil {
		return err
	}
	defer store.Close()

	runs, err := store.Runs(ctx, limit)
	if err != nil {
		return err
	}

	t := newTable(w)
	t.AppendHeader(table.Row{"Run", "Location", "Started", "Duration", "Pages", "Restaurants"})
	for _, run := range runs {
		result, err := store.Offers(ctx, run.ID)
		if err != nil {
			return err
		}
		t.AppendRow(table.Row{
			run.ID,
			fmt.Sprintf("%s, %s", run.City, run.Region),
			run.StartedAt.Format(time.DateTime),
			run.FinishedAt.Sub(run.StartedAt).String(),
			run.Pages,
			len(result),
		})
	}
	t.Render()
	return nil
}
