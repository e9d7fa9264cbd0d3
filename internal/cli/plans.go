package cli

import (
	"fmt"
	"io"

	"github.com/coopcredit/devstack/internal/plan"
	"github.com/spf13/cobra"
)

var plansCmd = &cobra.Command{
	Use:   "plans",
	Short: "List deployment plans and their stages",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		names, err := plan.Names()
		if err != nil {
			return fmt.Errorf("listing plans: %w", err)
		}
		for _, name := range names {
			p, err := plan.Load(name)
			if err != nil {
				fmt.Fprintf(cmd.OutOrStdout(), "❌ %s: %v\n\n", name, err)
				continue
			}
			writePlan(cmd.OutOrStdout(), p)
		}
		return nil
	},
}

func writePlan(w io.Writer, p *plan.Plan) {
	fmt.Fprintf(w, "%s", p.Name)
	if p.Description != "" {
		fmt.Fprintf(w, ": %s", p.Description)
	}
	fmt.Fprintln(w)
	for i, s := range p.Steps {
		fmt.Fprintf(w, "  %d. %-14s %-6s %v\n", i+1, s.Group, s.Wait, s.Units)
	}
	fmt.Fprintln(w)
}
