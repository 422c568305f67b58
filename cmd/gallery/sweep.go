package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/fdqms/gallery-backend/pkg/cli"
	"github.com/fdqms/gallery-backend/pkg/config"
	"github.com/fdqms/gallery-backend/pkg/deletion"
	"github.com/fdqms/gallery-backend/pkg/deletion/sweep"
)

var sweepFlags struct {
	dryRun bool
	format string
}

var sweepCmd = &cobra.Command{
	Use:   "sweep",
	Short: "Run one deletion sweep and exit",
	Long: `Run a single sweep against the registry snapshot: purge every account
whose deadline has passed, then write the remaining entries back.

Do not run this while "gallery run" is using the same snapshot; the service
overwrites the snapshot when it stops.

Examples:
  gallery sweep --config /etc/gallery/gallery.yaml
  gallery sweep --dry-run --format json`,
	RunE: runSweep,
}

func init() {
	rootCmd.AddCommand(sweepCmd)

	sweepCmd.Flags().BoolVar(&sweepFlags.dryRun, "dry-run", false, "list due deletions without purging them")
	sweepCmd.Flags().StringVarP(&sweepFlags.format, "format", "f", "text", "output format (text, json, csv)")
}

// sweepReport renders a sweep result.
type sweepReport struct {
	SweepID   string    `json:"sweep_id"`
	StartedAt time.Time `json:"started_at"`
	DryRun    bool      `json:"dry_run"`
	Due       []string  `json:"due"`
	Purged    []string  `json:"purged"`
	Failed    []string  `json:"failed"`
	Skipped   int       `json:"skipped"`
}

func newSweepReport(result sweep.Result, dryRun bool) sweepReport {
	nonNil := func(s []string) []string {
		if s == nil {
			return []string{}
		}
		return s
	}
	return sweepReport{
		SweepID:   result.SweepID,
		StartedAt: result.StartedAt,
		DryRun:    dryRun,
		Due:       nonNil(result.Due),
		Purged:    nonNil(result.Purged),
		Failed:    nonNil(result.Failed),
		Skipped:   result.Skipped,
	}
}

func (r sweepReport) Header() []string {
	return []string{"USER ID", "OUTCOME"}
}

func (r sweepReport) Rows() [][]string {
	outcome := make(map[string]string, len(r.Due))
	for _, id := range r.Due {
		outcome[id] = "skipped"
		if r.DryRun {
			outcome[id] = "due"
		}
	}
	for _, id := range r.Purged {
		outcome[id] = "purged"
	}
	for _, id := range r.Failed {
		outcome[id] = "failed"
	}

	rows := make([][]string, 0, len(r.Due))
	for _, id := range r.Due {
		rows = append(rows, []string{id, outcome[id]})
	}
	return rows
}

func runSweep(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseOutputFormat(sweepFlags.format)
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, _, err := newLogger(cfg, "")
	if err != nil {
		return err
	}

	ctx, stop := cli.SetupSignalHandler(cmd.Context(), logger)
	defer stop()

	result, err := sweepOnce(ctx, cfg, sweepFlags.dryRun, logger)
	if err != nil {
		return cli.NewCommandError("sweep", err)
	}

	if err := cli.NewFormatter(format).FormatTo(cmd.OutOrStdout(), newSweepReport(result, sweepFlags.dryRun)); err != nil {
		return err
	}
	if len(result.Failed) > 0 {
		return cli.NewCommandError("sweep", fmt.Errorf("%d purge(s) failed", len(result.Failed)))
	}
	return nil
}

// sweepOnce loads the snapshot, runs one sweep and saves the registry back
// unless dryRun is set.
func sweepOnce(ctx context.Context, cfg *config.Config, dryRun bool, logger *slog.Logger) (sweep.Result, error) {
	stack, err := openPurger(ctx, cfg, logger)
	if err != nil {
		return sweep.Result{}, err
	}
	defer stack.Close()

	store, err := openSnapshot(cfg)
	if err != nil {
		return sweep.Result{}, err
	}
	defer store.Close()

	entries, err := store.Load(ctx)
	if err != nil {
		return sweep.Result{}, fmt.Errorf("load snapshot: %w", err)
	}

	registry := deletion.NewRegistryFrom(entries)
	sweeper := sweep.NewSweeper(registry, stack.purger, &sweep.Config{
		Logger: logger,
		DryRun: dryRun,
	})
	result := sweeper.Sweep(ctx)

	if dryRun {
		return result, nil
	}
	if err := store.Save(context.Background(), registry.Snapshot()); err != nil {
		return result, fmt.Errorf("save snapshot: %w", err)
	}
	return result, nil
}
