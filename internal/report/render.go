package report

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/olekukonko/tablewriter"

	"github.com/varalys/gitaudit/internal/types"
)

var (
	sevCriticalStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("9"))
	sevHighStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	sevMedStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	sevLowStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
)

// PrintOptions controls the text table written by PrintTable.
type PrintOptions struct {
	NoColor  bool
	Duration time.Duration
	// Repo, Commit and Branch describe the audited repository in the footer
	// when set.
	Repo   string
	Commit string
	Branch string
}

// Sorted returns findings ordered by severity (most severe first), then by
// file and line. The input is not modified.
func Sorted(findings []types.Finding) []types.Finding {
	out := make([]types.Finding, len(findings))
	copy(out, findings)
	sort.SliceStable(out, func(i, j int) bool {
		a, b := out[i], out[j]
		if a.Severity.Rank() != b.Severity.Rank() {
			return a.Severity.Rank() > b.Severity.Rank()
		}
		if a.File != b.File {
			return a.File < b.File
		}
		return a.Line < b.Line
	})
	return out
}

// PrintTable renders findings as a table followed by a severity summary.
func PrintTable(w io.Writer, findings []types.Finding, opts PrintOptions) error {
	if len(findings) == 0 {
		fmt.Fprintln(w, "No issues found ✅")
	} else {
		table := tablewriter.NewWriter(w)
		table.Header([]string{"Severity", "Check", "Location", "Context", "Match"})
		for _, f := range Sorted(findings) {
			if err := table.Append([]string{
				severityLabel(f.Severity, opts.NoColor),
				checkName(f),
				location(f),
				f.Context,
				maskValue(f.Match),
			}); err != nil {
				return err
			}
		}
		if err := table.Render(); err != nil {
			return err
		}
	}
	printSummary(w, findings, opts)
	return nil
}

func printSummary(w io.Writer, findings []types.Finding, opts PrintOptions) {
	counts := Counts(findings)
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Findings: %d (critical: %d, high: %d, medium: %d, low: %d)\n",
		len(findings), counts[types.SevCritical], counts[types.SevHigh], counts[types.SevMed], counts[types.SevLow])
	if opts.Repo != "" || opts.Commit != "" {
		ref := opts.Commit
		if len(ref) > 12 {
			ref = ref[:12]
		}
		if opts.Branch != "" {
			ref = opts.Branch + "@" + ref
		}
		fmt.Fprintf(w, "Repository: %s %s\n", opts.Repo, ref)
	}
	if opts.Duration > 0 {
		fmt.Fprintf(w, "Audit duration: %.2fs\n", opts.Duration.Seconds())
	}
}

// Counts tallies findings per severity.
func Counts(findings []types.Finding) map[types.Severity]int {
	out := map[types.Severity]int{}
	for _, f := range findings {
		out[f.Severity]++
	}
	return out
}

func checkName(f types.Finding) string {
	if f.Category == types.CatSecret && f.Pattern != "" {
		return f.Pattern
	}
	return f.Title
}

func location(f types.Finding) string {
	if f.File == "" {
		return "-"
	}
	if f.Line > 0 {
		return f.File + ":" + strconv.Itoa(f.Line)
	}
	return f.File
}

func maskValue(s string) string {
	if s == "" {
		return ""
	}
	r := []rune(s)
	if len(r) <= 8 {
		return "********"
	}
	return string(r[:4]) + "…" + string(r[len(r)-4:])
}

func severityLabel(s types.Severity, noColor bool) string {
	if noColor {
		return string(s)
	}
	switch s {
	case types.SevCritical:
		return sevCriticalStyle.Render(string(s))
	case types.SevHigh:
		return sevHighStyle.Render(string(s))
	case types.SevMed:
		return sevMedStyle.Render(string(s))
	default:
		return sevLowStyle.Render(string(s))
	}
}
