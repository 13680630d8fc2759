package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"dubline/internal/daemon"
	"dubline/internal/language"
)

func newListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List every transcript in the pipeline",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return ctx.withDaemon(cmd.Context(), func(runCtx context.Context, d *daemon.Daemon) error {
				transcripts, err := d.Store().ListTranscripts(runCtx)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if len(transcripts) == 0 {
					fmt.Fprintln(out, "No transcripts. Use 'dubline add' to enqueue a media file.")
					return nil
				}

				rows := make([][]string, 0, len(transcripts))
				for _, tr := range transcripts {
					rows = append(rows, []string{
						strconv.FormatInt(tr.ID, 10),
						fmt.Sprintf("%s:%d", tr.OwnerKind, tr.OwnerID),
						language.DisplayName(tr.Language),
						string(tr.Status),
						strconv.Itoa(tr.Attempts),
						orDash(tr.ErrorMessage),
					})
				}
				fmt.Fprintln(out, renderTable(
					[]string{"Transcript", "Owner", "Language", "Status", "Attempts", "Error"},
					rows, 0, 4))
				return nil
			})
		},
	}
}
