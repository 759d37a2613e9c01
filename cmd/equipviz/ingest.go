package main

import (
	"context"
	"errors"
	"fmt"
	"math"
	"os"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/JonMunkholm/equipviz/internal/animation"
	"github.com/JonMunkholm/equipviz/internal/core"
)

var (
	ingestNoAnimate bool
	ingestSearch    string
	ingestRows      bool
	ingestTop       int
)

var ingestCmd = &cobra.Command{
	Use:   "ingest <input-file>",
	Short: "Ingest a CSV or XLSX file and show its KPIs",
	Long: `Ingest validates and aggregates one equipment file, records it in the
history store and prints the KPI summary, the type distribution and the
efficiency leaderboard.

Examples:
  # Ingest into the configured store
  equipviz ingest plant.csv

  # Try a file without touching the durable history
  equipviz ingest plant.xlsx --driver memory

  # Show the rows whose name contains "pump"
  equipviz ingest plant.csv --rows --search pump`,
	Args: cobra.ExactArgs(1),
	RunE: runIngest,
}

func init() {
	ingestCmd.Flags().BoolVar(&ingestNoAnimate, "no-animate", false, "Skip the animated distribution reveal")
	ingestCmd.Flags().BoolVar(&ingestRows, "rows", false, "Print the ingested rows")
	ingestCmd.Flags().StringVar(&ingestSearch, "search", "", "Only print rows whose name contains this text")
	ingestCmd.Flags().IntVar(&ingestTop, "top", core.DefaultLeaderboardSize, "Leaderboard size")

	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	path := args[0]
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("input file not found: %s", path)
	}

	ctx := cmd.Context()
	store, closeStore, err := openHistory(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	seq := animation.NewSequencer()
	svc := core.NewService(store, seq, core.Options{
		HistoryTimeout: cfg.History.Timeout,
		MaxWait:        cfg.Upload.MaxWaitTime,
	})

	out := cmd.OutOrStdout()
	start := time.Now()
	summary, err := svc.IngestFile(ctx, path)
	if err != nil {
		return errors.New(core.FormatUserError(err))
	}

	view := svc.CurrentView()
	fmt.Fprintln(out)
	fmt.Fprintln(out, successStyle.Render("  ✓ ")+titleStyle.Render(view.Source)+mutedStyle.Render(fmt.Sprintf("  %s  %s", view.IngestionID, time.Since(start).Round(time.Millisecond))))
	fmt.Fprintln(out)
	fmt.Fprintln(out, renderKPIs(*summary))
	fmt.Fprintln(out)

	if !ingestNoAnimate {
		reveal(ctx, seq, cfg.Animation.Step, cfg.Animation.Interval)
	} else {
		for seq.Tick(1) {
		}
	}

	fmt.Fprintln(out, accentStyle.Render("▸ TYPE DISTRIBUTION"))
	fmt.Fprintln(out, renderDistribution(seq.CurrentFrame()))
	fmt.Fprintln(out)

	fmt.Fprintln(out, accentStyle.Render("▸ EFFICIENCY LEADERBOARD"))
	fmt.Fprintln(out, renderLeaderboard(view.Leaderboard(ingestTop)))
	fmt.Fprintln(out)

	if ingestRows || ingestSearch != "" {
		fmt.Fprintln(out, accentStyle.Render("▸ ROWS"))
		fmt.Fprintln(out, renderRows(view.Search(ingestSearch)))
		fmt.Fprintln(out)
	}

	entries, err := svc.HistoryView(ctx)
	if err != nil {
		fmt.Fprintln(out, warnStyle.Render("  "+core.FormatUserError(err)))
		return nil
	}
	fmt.Fprintln(out, accentStyle.Render("▸ RECENT UPLOADS"))
	fmt.Fprintln(out, renderHistory(entries))
	return nil
}

// reveal drives seq to completion, mirroring its progress on a bar.
func reveal(ctx context.Context, seq *animation.Sequencer, step float64, interval time.Duration) {
	if seq.Phase() != animation.Running {
		return
	}

	bar := progressbar.NewOptions(100,
		progressbar.OptionSetDescription("  revealing"),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "█",
			SaucerHead:    "█",
			SaucerPadding: "░",
			BarStart:      "",
			BarEnd:        "",
		}),
		progressbar.OptionClearOnFinish(),
	)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	driver := animation.NewDriver(seq, step, interval)
	driver.OnFrame = func(f animation.Frame) {
		bar.Set(int(math.Round(f.Progress * 100)))
		if f.Phase != animation.Running {
			cancel()
		}
	}
	driver.Run(ctx)
	bar.Finish()
}
