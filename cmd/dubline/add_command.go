package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"dubline/internal/daemon"
)

func newAddCommand(ctx *commandContext) *cobra.Command {
	var title string
	var gender string

	cmd := &cobra.Command{
		Use:   "add <path>",
		Short: "Register a media file and queue it for dubbing",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withDaemon(cmd.Context(), func(runCtx context.Context, d *daemon.Daemon) error {
				item, tr, err := d.AddMedia(runCtx, args[0], title, gender)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Queued %q as media #%d (transcript #%d)\n",
					filepath.Base(item.SourcePath), item.ID, tr.ID)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "Display title (defaults to the file name)")
	cmd.Flags().StringVar(&gender, "gender", "", "Speaker gender hint: male or female")
	return cmd
}
