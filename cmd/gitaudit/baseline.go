package gitaudit

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/varalys/gitaudit/internal/report"
	"github.com/varalys/gitaudit/internal/types"
)

func newBaselineCmd(g *globalOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "baseline",
		Short: "Manage baselines",
	}

	af := &auditFlags{}
	var output string
	update := &cobra.Command{
		Use:   "update",
		Short: "Update baseline from current audit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, _, err := runAudit(cmd, g, af)
			if err != nil {
				return err
			}
			var accepted []types.Finding
			for _, f := range a.Findings() {
				if f.Category == types.CatAuditError {
					return &exitError{code: exitUsage, err: fmt.Errorf("audit failed: %s", f.Description)}
				}
				accepted = append(accepted, f)
			}
			if err := report.SaveBaseline(output, accepted); err != nil {
				return err
			}
			fmt.Fprintf(g.stdout, "Baseline updated: %d findings recorded in %s\n", len(accepted), output)
			return nil
		},
	}
	addAuditFlags(update, af)
	update.Flags().StringVar(&output, "output", defaultBaseline, "baseline file to write")

	cmd.AddCommand(update)
	return cmd
}
