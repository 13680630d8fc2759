package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"dubline/internal/daemon"
)

func newSubtitlesCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "subtitles",
		Short: "Subtitle track operations",
	}
	cmd.AddCommand(newSubtitlesRegenCommand(ctx))
	return cmd
}

func newSubtitlesRegenCommand(ctx *commandContext) *cobra.Command {
	var langs []string

	cmd := &cobra.Command{
		Use:   "regen <owner>",
		Short: "Reset subtitle tracks so the pipeline rebuilds them",
		Long: "Resets an owner's subtitle tracks (and their voice tracks, whose " +
			"text would go stale) back to pending. Limit with --lang.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ref, err := parseOwnerRef(args[0])
			if err != nil {
				return err
			}
			return ctx.withDaemon(cmd.Context(), func(runCtx context.Context, d *daemon.Daemon) error {
				reset, err := d.RegenerateSubtitles(runCtx, ref, langs...)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Reset %d subtitle track(s) for %s\n", reset, ref.String())
				return nil
			})
		},
	}
	cmd.Flags().StringSliceVar(&langs, "lang", nil, "Only these languages (repeatable)")
	return cmd
}

func newVoiceCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "voice",
		Short: "Voice track operations",
	}
	cmd.AddCommand(newVoiceRegenCommand(ctx))
	return cmd
}

func newVoiceRegenCommand(ctx *commandContext) *cobra.Command {
	var langs []string

	cmd := &cobra.Command{
		Use:   "regen <owner>",
		Short: "Reset voice tracks so synthesis reruns",
		Long: "Resets an owner's voice tracks back to pending. Subtitle content " +
			"is untouched and voice identities are kept.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ref, err := parseOwnerRef(args[0])
			if err != nil {
				return err
			}
			return ctx.withDaemon(cmd.Context(), func(runCtx context.Context, d *daemon.Daemon) error {
				reset, err := d.RegenerateVoice(runCtx, ref, langs...)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Reset %d voice track(s) for %s\n", reset, ref.String())
				return nil
			})
		},
	}
	cmd.Flags().StringSliceVar(&langs, "lang", nil, "Only these languages (repeatable)")
	return cmd
}

func newRetryCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:       "retry <lane>",
		Short:     "Reset failed rows in one lane back to pending",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{"transcripts", "subtitle_tracks", "voice_tracks"},
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withDaemon(cmd.Context(), func(runCtx context.Context, d *daemon.Daemon) error {
				reset, err := d.RetryFailed(runCtx, args[0])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Reset %d failed row(s) in %s\n", reset, args[0])
				return nil
			})
		},
	}
}

func newDeleteCommand(ctx *commandContext) *cobra.Command {
	var confirmed bool

	cmd := &cobra.Command{
		Use:   "delete <owner>",
		Short: "Delete every artifact of one owner, including files",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ref, err := parseOwnerRef(args[0])
			if err != nil {
				return err
			}
			if !confirmed {
				return fmt.Errorf("refusing to delete %s without --yes", ref.String())
			}
			return ctx.withDaemon(cmd.Context(), func(runCtx context.Context, d *daemon.Daemon) error {
				if err := d.DeleteOwner(runCtx, ref); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Deleted all artifacts for %s\n", ref.String())
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&confirmed, "yes", false, "Confirm deletion")
	return cmd
}
