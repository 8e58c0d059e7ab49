// Package gitexec runs version-control subcommands with a hard per-call
// deadline. Callers depend on the Executor interface so that the scanning code
// never depends on how processes are spawned.
package gitexec

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// ErrTimeout is returned when a command exceeds its deadline.
var ErrTimeout = errors.New("command timed out")

// Result holds the captured output of a finished command.
type Result struct {
	Stdout   []byte
	Stderr   []byte
	ExitCode int
}

// ExitError reports a command that ran but exited non-zero.
type ExitError struct {
	Args     []string
	ExitCode int
	Stderr   string
}

func (e *ExitError) Error() string {
	msg := fmt.Sprintf("git %s: exit status %d", strings.Join(e.Args, " "), e.ExitCode)
	if e.Stderr != "" {
		msg += ": " + e.Stderr
	}
	return msg
}

// Executor runs a subcommand in dir. A timeout <= 0 means no per-call
// deadline beyond ctx. Implementations return a non-nil error for non-zero
// exits and timeouts together with whatever output was captured.
type Executor interface {
	Execute(ctx context.Context, args []string, dir string, timeout time.Duration) (Result, error)
}

// Command executes a binary (git by default) through os/exec.
type Command struct {
	// Binary is the program to run; empty means "git".
	Binary string
}

// Execute implements Executor.
func (c Command) Execute(ctx context.Context, args []string, dir string, timeout time.Duration) (Result, error) {
	bin := c.Binary
	if bin == "" {
		bin = "git"
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, bin, args...)
	cmd.Dir = dir
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.WaitDelay = time.Second
	err := cmd.Run()

	res := Result{Stdout: stdout.Bytes(), Stderr: stderr.Bytes()}
	if cmd.ProcessState != nil {
		res.ExitCode = cmd.ProcessState.ExitCode()
	}
	if err == nil {
		return res, nil
	}
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return res, fmt.Errorf("%s %s: %w after %s", bin, strings.Join(args, " "), ErrTimeout, timeout)
	}
	if ctx.Err() != nil {
		return res, fmt.Errorf("%s %s: %w", bin, strings.Join(args, " "), ctx.Err())
	}
	var ee *exec.ExitError
	if errors.As(err, &ee) {
		return res, &ExitError{Args: args, ExitCode: ee.ExitCode(), Stderr: strings.TrimSpace(stderr.String())}
	}
	return res, fmt.Errorf("%s %s: %w", bin, strings.Join(args, " "), err)
}
