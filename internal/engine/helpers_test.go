package engine

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/varalys/gitaudit/internal/config"
	"github.com/varalys/gitaudit/internal/gitexec"
	"github.com/varalys/gitaudit/internal/types"
)

func initRepo(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	run := func(name string, args ...string) {
		cmd := exec.Command(name, args...)
		cmd.Dir = dir
		if out, err := cmd.CombinedOutput(); err != nil {
			t.Fatalf("cmd %s %v failed: %v\n%s", name, args, err, string(out))
		}
	}
	run("git", "init", ".")
	run("git", "config", "user.email", "test@example.com")
	run("git", "config", "user.name", "tester")
	run("git", "config", "commit.gpgsign", "false")
	return dir
}

type repoHelper struct {
	t   *testing.T
	dir string
}

func newRepo(t *testing.T) repoHelper {
	return repoHelper{t: t, dir: initRepo(t)}
}

func (r repoHelper) write(name, content string) {
	r.t.Helper()
	p := filepath.Join(r.dir, name)
	require.NoError(r.t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(r.t, os.WriteFile(p, []byte(content), 0o644))
}

func (r repoHelper) git(args ...string) string {
	r.t.Helper()
	cmd := exec.Command("git", args...)
	cmd.Dir = r.dir
	out, err := cmd.CombinedOutput()
	if err != nil {
		r.t.Fatalf("git %v: %v\n%s", args, err, string(out))
	}
	return strings.TrimSpace(string(out))
}

func (r repoHelper) commitAll(msg string) string {
	r.t.Helper()
	r.git("add", "-A")
	r.git("commit", "-m", msg)
	return r.git("rev-parse", "HEAD")
}

// settings returns defaults for dir with every phase and sweep turned off;
// tests switch on what they exercise.
func settings(dir string) config.Settings {
	s := config.Defaults()
	s.RepositoryPath = dir
	s.ScanWorkingTree = false
	s.ScanStaged = false
	s.ScanHistory = false
	s.CheckSensitiveFiles = false
	s.CheckLargeFiles = false
	s.Timeout = 30 * time.Second
	return s
}

func quietLogger() (*logrus.Logger, *test.Hook) {
	l, hook := test.NewNullLogger()
	l.SetLevel(logrus.DebugLevel)
	return l, hook
}

func runAudit(t *testing.T, s config.Settings, opts ...Option) (*Audit, bool) {
	t.Helper()
	l, _ := quietLogger()
	a := New(s, append([]Option{WithLogger(l)}, opts...)...)
	return a, a.Run(context.Background())
}

func loadSamples(t *testing.T) map[string]string {
	t.Helper()
	b, err := os.ReadFile("../detectors/testdata/samples.yaml")
	require.NoError(t, err)
	var m map[string]string
	require.NoError(t, yaml.Unmarshal(b, &m))
	return m
}

func byTitle(fs []types.Finding, title string) []types.Finding {
	var out []types.Finding
	for _, f := range fs {
		if f.Title == title {
			out = append(out, f)
		}
	}
	return out
}

func byCategory(fs []types.Finding, c types.Category) []types.Finding {
	var out []types.Finding
	for _, f := range fs {
		if f.Category == c {
			out = append(out, f)
		}
	}
	return out
}

// fakeExec delegates to the git binary unless fail matches the arguments.
type fakeExec struct {
	fail  func(args []string) bool
	panic bool
}

func (f fakeExec) Execute(ctx context.Context, args []string, dir string, timeout time.Duration) (gitexec.Result, error) {
	if f.panic {
		panic("executor exploded")
	}
	if f.fail != nil && f.fail(args) {
		return gitexec.Result{ExitCode: 128, Stderr: []byte("fatal: injected failure")}, nil
	}
	return gitexec.Command{}.Execute(ctx, args, dir, timeout)
}

func argsHave(words ...string) func([]string) bool {
	return func(args []string) bool {
		joined := " " + strings.Join(args, " ") + " "
		for _, w := range words {
			if !strings.Contains(joined, " "+w+" ") {
				return false
			}
		}
		return true
	}
}
