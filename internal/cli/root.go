package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/coopcredit/devstack/pkg/version"
	"github.com/spf13/cobra"
)

var (
	flagPlan      string
	flagConfig    string
	flagReadiness string
	flagVerbose   bool
)

var rootCmd = &cobra.Command{
	Use:   "devstack",
	Short: "Ordered docker-compose startup for the CoopCredit stack",
	Long: `devstack brings the CoopCredit microservices up one group at a time,
pausing between groups so each tier is ready before the next one starts.

Run without a subcommand for the interactive menu.`,
	SilenceUsage: true,
	Args:         cobra.NoArgs,
	RunE:         runMenu,
}

// Execute runs the command tree with ctx as the base context.
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&flagPlan, "plan", "p", "", "Deployment plan to use (default from config)")
	pf.StringVar(&flagConfig, "config", "", "Config file (default .devstack/config.yaml over ~/.devstack/config.yaml)")
	pf.StringVar(&flagReadiness, "readiness", "", "Readiness mode: delay or health")
	pf.BoolVarP(&flagVerbose, "verbose", "v", false, "Enable debug logging")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(upCmd)
	rootCmd.AddCommand(downCmd)
	rootCmd.AddCommand(logsCmd)
	rootCmd.AddCommand(plansCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(doctorCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "devstack %s\n", version.Version)
	},
}

func runMenu(cmd *cobra.Command, args []string) error {
	a, err := setup()
	if err != nil {
		return err
	}
	defer a.Close()

	m := NewMenu(a.engine, a.plan, a.tail, os.Stdin, cmd.OutOrStdout())
	stop := m.NotifyInterrupts()
	defer stop()
	return m.Run(cmd.Context())
}
