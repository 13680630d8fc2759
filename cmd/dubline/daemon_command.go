package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"dubline/internal/daemon"
	"dubline/internal/logging"
)

func newDaemonCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "daemon",
		Short: "Daemon operations",
	}
	cmd.AddCommand(newDaemonRunCommand(ctx))
	return cmd
}

// newDaemonRunCommand runs the pipeline in the foreground until interrupted.
// The dublined binary does the same thing; this is the development-friendly
// path.
func newDaemonRunCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Run the dubbing pipeline in the foreground",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := logging.NewFromConfig(cfg)
			if err != nil {
				return err
			}
			d, err := daemon.Build(cfg, logger)
			if err != nil {
				return err
			}
			defer d.Close()

			runCtx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			if err := d.Start(runCtx); err != nil {
				return err
			}
			<-runCtx.Done()
			return nil
		},
	}
}
