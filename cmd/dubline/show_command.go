package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"dubline/internal/daemon"
	"dubline/internal/owners"
)

// parseOwnerRef accepts "media:3" or a bare id (assumed media).
func parseOwnerRef(arg string) (owners.Ref, error) {
	kind := owners.KindMedia
	idPart := arg
	if strings.Contains(arg, ":") {
		parts := strings.SplitN(arg, ":", 2)
		kind = strings.TrimSpace(parts[0])
		idPart = parts[1]
	}
	id, err := strconv.ParseInt(strings.TrimSpace(idPart), 10, 64)
	if err != nil || id <= 0 || kind == "" {
		return owners.Ref{}, fmt.Errorf("invalid owner reference %q (expected kind:id or id)", arg)
	}
	return owners.Ref{Kind: kind, ID: id}, nil
}

func newShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <owner>",
		Short: "Show every artifact of one owner",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ref, err := parseOwnerRef(args[0])
			if err != nil {
				return err
			}
			return ctx.withDaemon(cmd.Context(), func(runCtx context.Context, d *daemon.Daemon) error {
				st := d.Store()
				tr, err := st.TranscriptByOwner(runCtx, ref.Kind, ref.ID)
				if err != nil {
					return err
				}
				if tr == nil {
					return fmt.Errorf("no artifacts for owner %s", ref.String())
				}
				out := cmd.OutOrStdout()

				fmt.Fprintf(out, "Owner: %s\n", ref.String())
				fmt.Fprintf(out, "Transcript #%d  status=%s  language=%s  attempts=%d\n",
					tr.ID, tr.Status, orDash(tr.Language), tr.Attempts)
				if tr.ErrorMessage != "" {
					fmt.Fprintf(out, "  error: %s\n", tr.ErrorMessage)
				}
				if tr.AudioPath != "" {
					fmt.Fprintf(out, "  audio: %s\n", tr.AudioPath)
				}

				tracks, err := st.SubtitleTracksByTranscript(runCtx, tr.ID)
				if err != nil {
					return err
				}
				subtitleRows := make([][]string, 0, len(tracks))
				voiceRows := make([][]string, 0, len(tracks))
				for _, track := range tracks {
					subtitleRows = append(subtitleRows, []string{
						strconv.FormatInt(track.ID, 10),
						track.Language,
						track.Format,
						string(track.Status),
						yesNo(track.Humanized),
						orDash(track.ErrorMessage),
					})
					voices, err := st.VoiceTracksBySubtitle(runCtx, track.ID)
					if err != nil {
						return err
					}
					for _, vt := range voices {
						voiceRows = append(voiceRows, []string{
							strconv.FormatInt(vt.ID, 10),
							vt.Language,
							orDash(vt.VoiceIdentity),
							orDash(vt.GenderHint),
							string(vt.Status),
							formatMillis(vt.DurationMS),
							orDash(vt.ErrorMessage),
						})
					}
				}

				if len(subtitleRows) > 0 {
					fmt.Fprintln(out)
					fmt.Fprintln(out, renderTable(
						[]string{"Sub", "Language", "Format", "Status", "Humanized", "Error"},
						subtitleRows, 0))
				}
				if len(voiceRows) > 0 {
					fmt.Fprintln(out)
					fmt.Fprintln(out, renderTable(
						[]string{"Voice", "Language", "Identity", "Gender", "Status", "Duration", "Error"},
						voiceRows, 0, 5))
				}
				return nil
			})
		},
	}
}

func orDash(value string) string {
	if strings.TrimSpace(value) == "" {
		return "-"
	}
	return value
}

func formatMillis(millis int64) string {
	if millis <= 0 {
		return "-"
	}
	return fmt.Sprintf("%d.%03ds", millis/1000, millis%1000)
}
