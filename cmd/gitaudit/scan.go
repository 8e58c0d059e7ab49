package gitaudit

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/spf13/cobra"

	"github.com/varalys/gitaudit/internal/engine"
	"github.com/varalys/gitaudit/internal/git"
	"github.com/varalys/gitaudit/internal/report"
	"github.com/varalys/gitaudit/internal/types"
	"github.com/varalys/gitaudit/pkg/core"
)

const defaultBaseline = "gitaudit.baseline.json"

func newScanCmd(g *globalOptions) *cobra.Command {
	af := &auditFlags{}
	var baselinePath string
	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Audit the repository for secrets and risky files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runScan(cmd, g, af, baselinePath)
		},
	}
	addAuditFlags(cmd, af)
	cmd.Flags().StringVar(&baselinePath, "baseline", defaultBaseline, "suppress findings recorded in this baseline file")
	return cmd
}

// runAudit resolves options, runs the audit and returns it. A path that is
// not a git repository is a usage error.
func runAudit(cmd *cobra.Command, g *globalOptions, af *auditFlags) (*engine.Audit, time.Duration, error) {
	raw, err := resolveOptions(cmd, af)
	if err != nil {
		return nil, 0, &exitError{code: exitUsage, err: err}
	}
	a := engine.NewFromOptions(raw, engine.WithLogger(g.logger()))
	if !a.ShouldRun() {
		return nil, 0, &exitError{code: exitUsage, err: fmt.Errorf("%s is not a git repository", a.Settings().RepositoryPath)}
	}
	if !g.json && !g.sarif {
		fmt.Fprintf(g.stderr, "Auditing %s with %d rules...\n", a.Settings().RepositoryPath, len(a.Rules()))
	}
	start := time.Now()
	a.Run(cmd.Context())
	return a, time.Since(start), nil
}

func runScan(cmd *cobra.Command, g *globalOptions, af *auditFlags, baselinePath string) error {
	a, elapsed, err := runAudit(cmd, g, af)
	if err != nil {
		return err
	}
	all := a.Findings()

	findings := all
	if baselinePath != "" {
		base, err := report.LoadBaseline(baselinePath)
		switch {
		case err == nil:
			findings = report.FilterNewFindings(all, base)
		case !errors.Is(err, fs.ErrNotExist):
			fmt.Fprintln(g.stderr, "warning:", err)
		}
	}
	if findings == nil {
		findings = []types.Finding{}
	}

	switch {
	case g.sarif:
		if err := report.WriteSARIF(g.stdout, findings); err != nil {
			return fmt.Errorf("sarif error: %w", err)
		}
	case g.json:
		if err := core.WriteReport(g.stdout, core.NewReport(a, findings)); err != nil {
			return err
		}
	default:
		repo, commit, branch := git.RepoMetadata(a.Settings().RepositoryPath)
		if err := report.PrintTable(g.stdout, findings, report.PrintOptions{
			NoColor:  g.noColor,
			Duration: elapsed,
			Repo:     repo,
			Commit:   commit,
			Branch:   branch,
		}); err != nil {
			return err
		}
	}

	for _, f := range all {
		if f.Category == types.CatAuditError {
			return &exitError{code: exitUsage}
		}
	}
	if report.ShouldFail(findings, g.failOn) {
		return &exitError{code: exitFindings}
	}
	return nil
}
