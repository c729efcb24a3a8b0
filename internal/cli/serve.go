package cli

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/evcraddock/front-desk/internal/auth"
	"github.com/evcraddock/front-desk/internal/logging"
	"github.com/evcraddock/front-desk/internal/visitor"
	"github.com/evcraddock/front-desk/internal/web"
)

func newServeCmd() *cobra.Command {
	var port int
	var interval time.Duration
	var envFile string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		Long:  "Start the HTTP API server. Unless --sweep-interval is 0, overstayed visitors are checked for on that interval.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := loadEnvFile(envFile); err != nil {
				return err
			}
			return runServe(cmd.Context(), port, interval)
		},
	}

	cmd.Flags().IntVar(&port, "port", 8080, "port to listen on")
	cmd.Flags().DurationVar(&interval, "sweep-interval", 5*time.Minute, "how often to check for overstays (0 disables)")
	cmd.Flags().StringVar(&envFile, "env-file", ".env", "file of FD_* settings to load if present")

	return cmd
}

// loadEnvFile loads KEY=value settings from path into the environment.
// Variables already set win. A missing file is not an error.
func loadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("loading %s: %w", path, err)
	}
	return nil
}

func runServe(ctx context.Context, port int, interval time.Duration) error {
	cfg := auth.ConfigFromEnv()
	if err := logging.Setup(cfg.DevMode); err != nil {
		return err
	}

	database, err := openDB()
	if err != nil {
		return err
	}
	defer closeDB(database)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := web.NewServer(database, cfg)

	if interval > 0 {
		go runSweeper(ctx, srv.Visitors(), interval)
	}

	return srv.ListenAndServe(ctx, port)
}

// sweeper is the part of the visitor service the background loop needs.
type sweeper interface {
	Sweep(ctx context.Context) (*visitor.SweepResult, error)
}

// runSweeper runs a sweep every interval until ctx is cancelled. Failures
// are logged and retried on the next tick.
func runSweeper(ctx context.Context, s sweeper, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	slog.Info("overstay sweeper started", "interval", interval.String())
	for {
		select {
		case <-ctx.Done():
			slog.Info("overstay sweeper stopped")
			return
		case <-ticker.C:
			result, err := s.Sweep(ctx)
			if err != nil {
				slog.Error("overstay sweep failed", "error", err)
				continue
			}
			if result.NewAlertCount > 0 {
				slog.Info("overstay sweep raised alerts",
					"overstayed", result.OverstayedCount, "warnings", result.WarningCount, "new_alerts", result.NewAlertCount)
			}
		}
	}
}
