package gitaudit

import (
	"encoding/json"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/varalys/gitaudit/internal/config"
	"github.com/varalys/gitaudit/internal/detectors"
)

type ruleInfo struct {
	Name        string `json:"name"`
	Severity    string `json:"severity"`
	Description string `json:"description"`
	Enabled     bool   `json:"enabled"`
	Custom      bool   `json:"custom"`
}

func newRulesCmd(g *globalOptions) *cobra.Command {
	af := &auditFlags{}
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "List detection rules and whether they are enabled",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			raw, err := resolveOptions(cmd, af)
			if err != nil {
				return &exitError{code: exitUsage, err: err}
			}
			s, err := config.Parse(raw)
			if err != nil {
				return &exitError{code: exitUsage, err: err}
			}
			lib, err := detectors.New(s.CustomPatterns, s.RuleEnabled)
			if err != nil {
				return &exitError{code: exitUsage, err: err}
			}
			var infos []ruleInfo
			for _, r := range lib.Rules() {
				infos = append(infos, ruleInfo{
					Name:        r.Name,
					Severity:    string(r.Severity),
					Description: r.Description,
					Enabled:     r.Enabled,
					Custom:      r.Custom,
				})
			}
			if g.json {
				enc := json.NewEncoder(g.stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(infos)
			}
			table := tablewriter.NewWriter(g.stdout)
			table.Header([]string{"Rule", "Severity", "Enabled", "Description"})
			for _, r := range infos {
				name := r.Name
				if r.Custom {
					name += " (custom)"
				}
				if err := table.Append([]string{name, r.Severity, strconv.FormatBool(r.Enabled), r.Description}); err != nil {
					return err
				}
			}
			return table.Render()
		},
	}
	addAuditFlags(cmd, af)
	return cmd
}
