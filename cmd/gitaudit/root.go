package gitaudit

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var version = "0.1.0"

// Exit codes.
const (
	exitClean    = 0
	exitFindings = 1
	exitUsage    = 2
)

// exitError carries a process exit code out of a command.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	if e.err == nil {
		return fmt.Sprintf("exit status %d", e.code)
	}
	return e.err.Error()
}

func (e *exitError) Unwrap() error { return e.err }

type globalOptions struct {
	json    bool
	sarif   bool
	noColor bool
	failOn  string
	verbose bool

	stdout io.Writer
	stderr io.Writer
}

func (g *globalOptions) logger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(g.stderr)
	l.SetLevel(logrus.WarnLevel)
	if g.verbose {
		l.SetLevel(logrus.DebugLevel)
	}
	if g.json || g.sarif {
		l.SetFormatter(&logrus.JSONFormatter{})
	} else {
		l.SetFormatter(&logrus.TextFormatter{DisableColors: g.noColor, DisableTimestamp: true})
	}
	return l
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	g := &globalOptions{stdout: stdout, stderr: stderr}
	root := &cobra.Command{
		Use:           "gitaudit",
		Short:         "Audit a git repository for leaked secrets",
		Long:          "gitaudit scans the working tree, staged changes and recent history of a git repository for credentials, private keys, sensitive files and oversized artifacts.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	pf := root.PersistentFlags()
	pf.BoolVar(&g.json, "json", false, "emit JSON")
	pf.BoolVar(&g.sarif, "sarif", false, "emit SARIF 2.1.0")
	pf.BoolVar(&g.noColor, "no-color", false, "disable colorized output")
	pf.StringVar(&g.failOn, "fail-on", "medium", "exit 1 on findings at or above low|medium|high|critical")
	pf.BoolVarP(&g.verbose, "verbose", "v", false, "log skipped files and rules")

	root.AddCommand(newScanCmd(g), newRulesCmd(g), newConfigCmd(g), newBaselineCmd(g), newCompletionCmd())
	return root
}

// run executes the CLI with args and returns the process exit code.
func run(args []string, stdout, stderr io.Writer) int {
	root := newRootCmd(stdout, stderr)
	root.SetArgs(args)
	err := root.Execute()
	if err == nil {
		return exitClean
	}
	var ee *exitError
	if errors.As(err, &ee) {
		if ee.err != nil {
			fmt.Fprintln(stderr, "error:", ee.err)
		}
		return ee.code
	}
	fmt.Fprintln(stderr, "error:", err)
	return exitUsage
}

// Execute runs the gitaudit CLI. It should be called by the main package.
func Execute() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}
