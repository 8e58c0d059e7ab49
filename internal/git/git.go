// Package git wraps the version-control plumbing calls the audit needs. Every
// enumeration and blob read shells out to the git binary through a
// gitexec.Executor with a bounded timeout; go-git is only used to detect a
// repository and read HEAD metadata without spawning a process.
package git

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/varalys/gitaudit/internal/gitexec"
)

// DefaultTimeout bounds a single plumbing call when none is configured.
const DefaultTimeout = 300 * time.Second

var reHash = regexp.MustCompile(`^[0-9a-fA-F]{4,64}$`)

// Client runs plumbing commands against one repository.
type Client struct {
	root    string
	exec    gitexec.Executor
	timeout time.Duration
}

// New returns a client for the repository at root. A nil executor uses the
// git binary on PATH; a timeout <= 0 uses DefaultTimeout.
func New(root string, ex gitexec.Executor, timeout time.Duration) *Client {
	if ex == nil {
		ex = gitexec.Command{}
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{root: root, exec: ex, timeout: timeout}
}

// Root returns the repository path the client operates on.
func (c *Client) Root() string { return c.root }

func (c *Client) run(ctx context.Context, args ...string) ([]byte, error) {
	res, err := c.exec.Execute(ctx, args, c.root, c.timeout)
	if err != nil {
		return nil, err
	}
	if res.ExitCode != 0 {
		return nil, &gitexec.ExitError{Args: args, ExitCode: res.ExitCode, Stderr: strings.TrimSpace(string(res.Stderr))}
	}
	return res.Stdout, nil
}

// Verify checks that git itself accepts the root as a repository.
func (c *Client) Verify(ctx context.Context) error {
	if _, err := c.run(ctx, "rev-parse", "--git-dir"); err != nil {
		return fmt.Errorf("verify repository %s: %w", c.root, err)
	}
	return nil
}

// ListWorkingTreeFiles lists tracked files.
func (c *Client) ListWorkingTreeFiles(ctx context.Context) ([]string, error) {
	out, err := c.run(ctx, "ls-files", "-z")
	if err != nil {
		return nil, fmt.Errorf("list tracked files: %w", err)
	}
	return splitNUL(out), nil
}

// ListStagedFiles lists files added, copied, modified or renamed in the index
// relative to HEAD.
func (c *Client) ListStagedFiles(ctx context.Context) ([]string, error) {
	out, err := c.run(ctx, "diff", "--cached", "--name-only", "--diff-filter=ACMR", "-z")
	if err != nil {
		return nil, fmt.Errorf("list staged files: %w", err)
	}
	return splitNUL(out), nil
}

// ListRecentCommits returns up to n commit hashes reachable from HEAD, newest
// first.
func (c *Client) ListRecentCommits(ctx context.Context, n int) ([]string, error) {
	if n <= 0 {
		return nil, nil
	}
	out, err := c.run(ctx, "rev-list", "--max-count="+strconv.Itoa(n), "HEAD")
	if err != nil {
		return nil, fmt.Errorf("list commits: %w", err)
	}
	return strings.Fields(string(out)), nil
}

// ListCommitChangedFiles lists the files a commit added or modified. Root
// commits are diffed against the empty tree.
func (c *Client) ListCommitChangedFiles(ctx context.Context, hash string) ([]string, error) {
	if !reHash.MatchString(hash) {
		return nil, fmt.Errorf("invalid commit hash %q", hash)
	}
	out, err := c.run(ctx, "diff-tree", "--no-commit-id", "--name-only", "-r", "--root", "--diff-filter=ACMR", "-z", hash)
	if err != nil {
		return nil, fmt.Errorf("list files of commit %s: %w", hash, err)
	}
	return splitNUL(out), nil
}

// ReadBlobAtCommit returns the content of path as of the given commit without
// touching the working tree.
func (c *Client) ReadBlobAtCommit(ctx context.Context, hash, path string) ([]byte, error) {
	if !reHash.MatchString(hash) {
		return nil, fmt.Errorf("invalid commit hash %q", hash)
	}
	out, err := c.run(ctx, "cat-file", "blob", hash+":"+path)
	if err != nil {
		return nil, fmt.Errorf("read %s at %s: %w", path, hash, err)
	}
	return out, nil
}

func splitNUL(b []byte) []string {
	var out []string
	for _, p := range bytes.Split(b, []byte{0}) {
		if len(p) > 0 {
			out = append(out, string(p))
		}
	}
	return out
}

// validateRoot validates and normalizes a git repository root path.
// Returns the cleaned absolute path or an error if invalid.
func validateRoot(root string) (string, error) {
	if strings.ContainsRune(root, 0) {
		return "", errors.New("invalid path: contains null byte")
	}
	abs, err := filepath.Abs(filepath.Clean(root))
	if err != nil {
		return "", fmt.Errorf("invalid path %q: %w", root, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("cannot access path %q: %w", root, err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("path is not a directory: %s", root)
	}
	return abs, nil
}

// IsRepository reports whether root itself holds git metadata (a .git
// directory or gitdir file). Parent directories are not searched.
func IsRepository(root string) bool {
	validRoot, err := validateRoot(root)
	if err != nil {
		return false
	}
	_, err = gogit.PlainOpen(validRoot)
	return err == nil
}

// RepoMetadata returns (repo, commit, branch) best-effort for the given root.
// Empty strings are returned on failure.
func RepoMetadata(root string) (string, string, string) {
	validRoot, err := validateRoot(root)
	if err != nil {
		return "", "", ""
	}
	r, err := gogit.PlainOpen(validRoot)
	if err != nil {
		return "", "", ""
	}

	repo := ""
	if remote, err := r.Remote("origin"); err == nil {
		if urls := remote.Config().URLs; len(urls) > 0 {
			repo = shortRepoName(urls[0])
		}
	}
	commit, branch := "", ""
	if head, err := r.Head(); err == nil {
		commit = head.Hash().String()
		if head.Name().IsBranch() {
			branch = head.Name().Short()
		}
	}
	return repo, commit, branch
}

// shortRepoName keeps owner/name from a remote URL when possible.
func shortRepoName(url string) string {
	s := strings.TrimSuffix(strings.TrimSpace(url), ".git")
	if i := strings.Index(s, "github.com/"); i >= 0 {
		return s[i+len("github.com/"):]
	}
	if i := strings.LastIndex(s, ":"); i >= 0 && !strings.Contains(s[i:], "//") {
		s = s[i+1:]
	}
	return s
}
