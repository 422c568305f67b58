package main

import (
	"cmp"
	"slices"
	"time"

	"github.com/spf13/cobra"

	"github.com/fdqms/gallery-backend/pkg/cli"
	"github.com/fdqms/gallery-backend/pkg/deletion"
)

var pendingFlags struct {
	format string
}

var pendingCmd = &cobra.Command{
	Use:   "pending",
	Short: "Inspect pending account deletions",
}

var pendingListCmd = &cobra.Command{
	Use:   "list",
	Short: "List pending deletions from the snapshot",
	Long: `List the pending deletions recorded in the registry snapshot, earliest
deadline first.

A running service writes the snapshot when it stops, so the list reflects the
registry as of the last shutdown.

Examples:
  gallery pending list
  gallery pending list --format json`,
	RunE: runPendingList,
}

func init() {
	rootCmd.AddCommand(pendingCmd)
	pendingCmd.AddCommand(pendingListCmd)

	pendingListCmd.Flags().StringVarP(&pendingFlags.format, "format", "f", "text", "output format (text, json, csv)")
}

// pendingList renders pending deletions as a table.
type pendingList []deletion.PendingDeletion

func (l pendingList) Header() []string {
	return []string{"USER ID", "DEADLINE"}
}

func (l pendingList) Rows() [][]string {
	rows := make([][]string, 0, len(l))
	for _, p := range l {
		rows = append(rows, []string{p.UserID, p.Deadline.UTC().Format(time.RFC3339)})
	}
	return rows
}

func newPendingList(entries map[string]time.Time) pendingList {
	list := make(pendingList, 0, len(entries))
	for userID, deadline := range entries {
		list = append(list, deletion.PendingDeletion{UserID: userID, Deadline: deadline})
	}
	slices.SortFunc(list, func(a, b deletion.PendingDeletion) int {
		if c := a.Deadline.Compare(b.Deadline); c != 0 {
			return c
		}
		return cmp.Compare(a.UserID, b.UserID)
	})
	return list
}

func runPendingList(cmd *cobra.Command, args []string) error {
	format, err := cli.ParseOutputFormat(pendingFlags.format)
	if err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	store, err := openSnapshot(cfg)
	if err != nil {
		return cli.NewCommandError("pending list", err)
	}
	defer store.Close()

	entries, err := store.Load(cmd.Context())
	if err != nil {
		return cli.NewCommandError("pending list", err)
	}

	return cli.NewFormatter(format).FormatTo(cmd.OutOrStdout(), newPendingList(entries))
}
