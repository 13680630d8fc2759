package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"dubline/internal/daemon"
	"dubline/internal/deps"
	"dubline/internal/store"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show pipeline health and artifact counts",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withDaemon(cmd.Context(), func(runCtx context.Context, d *daemon.Daemon) error {
				status, err := d.Status(runCtx)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()

				fmt.Fprintf(out, "Daemon running: %s\n", yesNo(d.LockBusy()))
				fmt.Fprintf(out, "Database: %s\n\n", status.DBPath)

				laneRows := make([][]string, 0, len(status.Pipeline.Lanes))
				for _, lane := range status.Pipeline.Lanes {
					detail := lane.Detail
					if lane.Ready {
						detail = "ok"
					}
					laneRows = append(laneRows, []string{lane.Name, yesNo(lane.Ready), detail})
				}
				fmt.Fprintln(out, renderTable([]string{"Lane", "Ready", "Detail"}, laneRows))

				fmt.Fprintln(out)
				fmt.Fprintln(out, renderTable(
					[]string{"Artifact", "Pending", "Running", "Done", "Failed"},
					countRows(status.Pipeline.Summary),
					1, 2, 3, 4,
				))

				cfg, err := ctx.ensureConfig()
				if err != nil {
					return err
				}
				toolRows := make([][]string, 0, 2)
				for _, tool := range deps.Check(deps.For(cfg)) {
					detail := tool.Detail
					if tool.Available {
						detail = "ok"
					}
					toolRows = append(toolRows, []string{tool.Name, tool.Command, detail})
				}
				fmt.Fprintln(out)
				fmt.Fprintln(out, renderTable([]string{"Tool", "Command", "Detail"}, toolRows))
				return nil
			})
		},
	}
}

func countRows(summary *store.HealthSummary) [][]string {
	if summary == nil {
		return nil
	}
	row := func(name string, counts map[store.Status]int) []string {
		return []string{
			name,
			strconv.Itoa(counts[store.StatusPending]),
			strconv.Itoa(counts[store.StatusRunning]),
			strconv.Itoa(counts[store.StatusDone]),
			strconv.Itoa(counts[store.StatusFailed]),
		}
	}
	return [][]string{
		row("transcripts", summary.Transcripts),
		row("subtitle tracks", summary.SubtitleTracks),
		row("voice tracks", summary.VoiceTracks),
	}
}
