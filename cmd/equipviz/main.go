// equipviz ingests equipment parameter files from the command line and shows
// the resulting KPIs, type distribution and upload history.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/JonMunkholm/equipviz/internal/config"
	"github.com/JonMunkholm/equipviz/internal/history"
	"github.com/JonMunkholm/equipviz/internal/logging"
)

var (
	version = "0.1.0"
	commit  = "dev"
)

// Global flags
var (
	historyDriver string
	historyDSN    string
	verbose       bool

	cfg *config.Config
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		fmt.Fprintln(os.Stderr, errorStyle.Render("✗ "+err.Error()))
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "equipviz",
	Short: "Equipment parameter visualizer",
	Long: `equipviz reads a CSV or XLSX export of equipment parameters, validates it,
computes the dashboard KPIs and records the upload in the history store.

Required columns: Equipment Name, Type, Pressure, Temperature, Flowrate.`,
	Version:       fmt.Sprintf("%s (%s)", version, commit),
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		_ = godotenv.Load()

		if historyDriver != "" {
			os.Setenv("HISTORY_DRIVER", historyDriver)
		}
		if historyDSN != "" {
			os.Setenv("HISTORY_DSN", historyDSN)
		}

		var err error
		cfg, err = config.Load()
		if err != nil {
			return err
		}

		level := cfg.Logging.Level
		if verbose {
			level = "debug"
		} else if strings.EqualFold(level, "info") {
			level = "warn"
		}
		slog.SetDefault(logging.New(os.Stderr, level, cfg.Logging.Format))
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&historyDriver, "driver", "", "History store: duckdb, postgres, memory (default from HISTORY_DRIVER)")
	rootCmd.PersistentFlags().StringVar(&historyDSN, "dsn", "", "History data source name (default from HISTORY_DSN)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose logging")
}

// openHistory opens the configured store. An unreachable or corrupt medium
// is logged and replaced by a degraded store so ingestion still runs.
func openHistory(ctx context.Context) (history.Store, func() error, error) {
	store, closeStore, err := history.OpenStore(ctx, cfg.History.Driver, cfg.History.DSN, cfg.History.Retention)
	if errors.Is(err, history.ErrUnavailable) {
		slog.Warn("history store unavailable, continuing without history",
			"driver", cfg.History.Driver,
			"error", err,
		)
		return history.Degraded(err), closeStore, nil
	}
	if err != nil {
		return nil, closeStore, fmt.Errorf("open history: %w", err)
	}
	return store, closeStore, nil
}
