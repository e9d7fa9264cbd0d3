package cli

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

// errDeployFailed signals a non-zero exit; the details were already displayed.
var errDeployFailed = errors.New("deployment failed")

var upCmd = &cobra.Command{
	Use:   "up",
	Short: "Start every service in plan order",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := setup()
		if err != nil {
			return err
		}
		defer a.Close()

		ctx, stop := interruptContext(cmd.Context())
		defer stop()
		if !a.engine.Deploy(ctx, a.plan) {
			return errDeployFailed
		}
		return nil
	},
}

var downCmd = &cobra.Command{
	Use:   "down",
	Short: "Stop and remove all containers",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := setup()
		if err != nil {
			return err
		}
		defer a.Close()

		ctx, stop := interruptContext(cmd.Context())
		defer stop()
		if !a.engine.Teardown(ctx) {
			return errors.New("teardown failed")
		}
		return nil
	},
}

var logsTail int

var logsCmd = &cobra.Command{
	Use:   "logs",
	Short: "Follow the combined logs of all services",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := setup()
		if err != nil {
			return err
		}
		defer a.Close()

		tail := a.tail
		if cmd.Flags().Changed("tail") {
			tail = logsTail
		}
		ctx, stop := interruptContext(cmd.Context())
		defer stop()
		return a.engine.Logs(ctx, tail)
	},
}

func init() {
	logsCmd.Flags().IntVar(&logsTail, "tail", 100, "Number of lines to show from the end of each log")
}

func interruptContext(ctx context.Context) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
}
