package git

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/varalys/gitaudit/internal/gitexec"
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

func newRepo(t *testing.T) (repoHelper, *Client) {
	dir := initRepo(t)
	return repoHelper{t: t, dir: dir}, New(dir, nil, 30*time.Second)
}

func TestListWorkingTreeFiles(t *testing.T) {
	r, c := newRepo(t)
	r.write("a.txt", "hello")
	r.write("dir/with space.txt", "x")
	r.write("untracked.txt", "x")
	r.git("add", "a.txt", "dir/with space.txt")
	r.git("commit", "-m", "add files")

	files, err := c.ListWorkingTreeFiles(context.Background())
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a.txt", "dir/with space.txt"}, files)
}

func TestListStagedFiles(t *testing.T) {
	r, c := newRepo(t)
	r.write("keep.txt", "base")
	r.write("gone.txt", "base")
	r.git("add", ".")
	r.git("commit", "-m", "base")

	r.write("keep.txt", "changed")
	r.write("new.txt", "content")
	r.git("add", "keep.txt", "new.txt")
	r.git("rm", "-q", "gone.txt")

	files, err := c.ListStagedFiles(context.Background())
	require.NoError(t, err)
	// deletions are not scan candidates
	assert.ElementsMatch(t, []string{"keep.txt", "new.txt"}, files)
}

func TestListRecentCommits(t *testing.T) {
	r, c := newRepo(t)
	var hashes []string
	for i, content := range []string{"one", "two", "three"} {
		r.write("a.txt", content)
		r.git("add", "a.txt")
		r.git("commit", "-m", "commit "+string(rune('a'+i)))
		hashes = append(hashes, r.git("rev-parse", "HEAD"))
	}

	got, err := c.ListRecentCommits(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, []string{hashes[2], hashes[1]}, got)

	none, err := c.ListRecentCommits(context.Background(), 0)
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestListRecentCommits_EmptyRepository(t *testing.T) {
	_, c := newRepo(t)
	_, err := c.ListRecentCommits(context.Background(), 5)
	require.Error(t, err)
	var ee *gitexec.ExitError
	assert.True(t, errors.As(err, &ee))
}

func TestListCommitChangedFiles(t *testing.T) {
	r, c := newRepo(t)
	r.write("a.txt", "a")
	r.write("b.txt", "b")
	r.git("add", ".")
	r.git("commit", "-m", "root")
	root := r.git("rev-parse", "HEAD")

	r.write("a.txt", "a2")
	r.git("add", "a.txt")
	r.git("rm", "-q", "b.txt")
	r.git("commit", "-m", "second")
	second := r.git("rev-parse", "HEAD")

	files, err := c.ListCommitChangedFiles(context.Background(), root)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a.txt", "b.txt"}, files)

	files, err = c.ListCommitChangedFiles(context.Background(), second)
	require.NoError(t, err)
	assert.Equal(t, []string{"a.txt"}, files)

	_, err = c.ListCommitChangedFiles(context.Background(), "--output=/tmp/x")
	assert.Error(t, err)
}

func TestReadBlobAtCommit(t *testing.T) {
	r, c := newRepo(t)
	r.write("secret.txt", "token=abc\n")
	r.git("add", "secret.txt")
	r.git("commit", "-m", "add secret")
	hash := r.git("rev-parse", "HEAD")
	r.git("rm", "-q", "secret.txt")
	r.git("commit", "-m", "remove secret")

	b, err := c.ReadBlobAtCommit(context.Background(), hash, "secret.txt")
	require.NoError(t, err)
	assert.Equal(t, "token=abc\n", string(b))

	_, err = c.ReadBlobAtCommit(context.Background(), hash, "missing.txt")
	assert.Error(t, err)
}

func TestVerify(t *testing.T) {
	_, c := newRepo(t)
	require.NoError(t, c.Verify(context.Background()))

	dir := t.TempDir()
	t.Setenv("GIT_CEILING_DIRECTORIES", dir)
	assert.Error(t, New(dir, nil, time.Second).Verify(context.Background()))
}

type fakeExec struct {
	res gitexec.Result
	err error
}

func (f fakeExec) Execute(context.Context, []string, string, time.Duration) (gitexec.Result, error) {
	return f.res, f.err
}

func TestClient_ExecutorFailures(t *testing.T) {
	c := New(t.TempDir(), fakeExec{res: gitexec.Result{ExitCode: 1, Stderr: []byte("boom")}}, time.Second)
	_, err := c.ListWorkingTreeFiles(context.Background())
	var ee *gitexec.ExitError
	require.True(t, errors.As(err, &ee))
	assert.Equal(t, 1, ee.ExitCode)
	assert.Equal(t, "boom", ee.Stderr)

	c = New(t.TempDir(), fakeExec{err: gitexec.ErrTimeout}, time.Second)
	_, err = c.ListStagedFiles(context.Background())
	assert.True(t, errors.Is(err, gitexec.ErrTimeout))
}

func TestIsRepository(t *testing.T) {
	dir := initRepo(t)
	assert.True(t, IsRepository(dir))
	assert.False(t, IsRepository(t.TempDir()))
	assert.False(t, IsRepository(filepath.Join(dir, "does-not-exist")))

	sub := filepath.Join(dir, "sub")
	require.NoError(t, os.Mkdir(sub, 0o755))
	assert.False(t, IsRepository(sub))
}

func TestRepoMetadata(t *testing.T) {
	r, _ := newRepo(t)
	r.git("commit", "--allow-empty", "-m", "init")
	r.git("remote", "add", "origin", "git@github.com:acme/widgets.git")

	repo, commit, branch := RepoMetadata(r.dir)
	assert.Equal(t, "acme/widgets", repo)
	assert.Equal(t, r.git("rev-parse", "HEAD"), commit)
	assert.NotEmpty(t, branch)
}

func TestShortRepoName(t *testing.T) {
	tests := map[string]string{
		"git@github.com:acme/widgets.git":     "acme/widgets",
		"https://github.com/acme/widgets.git": "acme/widgets",
		"https://gitlab.com/acme/widgets":     "https://gitlab.com/acme/widgets",
	}
	for in, want := range tests {
		assert.Equal(t, want, shortRepoName(in), in)
	}
}
