package gitexec

import (
	"context"
	"errors"
	"os/exec"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCommand_Success(t *testing.T) {
	res, err := Command{}.Execute(context.Background(), []string{"--version"}, t.TempDir(), 10*time.Second)
	require.NoError(t, err)
	assert.Equal(t, 0, res.ExitCode)
	assert.Contains(t, string(res.Stdout), "git version")
}

func TestCommand_NonZeroExit(t *testing.T) {
	// rev-parse outside a repository exits 128
	dir := t.TempDir()
	t.Setenv("GIT_CEILING_DIRECTORIES", dir)
	_, err := Command{}.Execute(context.Background(), []string{"rev-parse", "--git-dir"}, dir, 10*time.Second)
	require.Error(t, err)
	var ee *ExitError
	require.True(t, errors.As(err, &ee), "got %T: %v", err, err)
	assert.NotZero(t, ee.ExitCode)
	assert.Contains(t, ee.Error(), "rev-parse")
}

func TestCommand_Timeout(t *testing.T) {
	if _, err := exec.LookPath("sleep"); err != nil {
		t.Skip("sleep not available")
	}
	start := time.Now()
	_, err := Command{Binary: "sleep"}.Execute(context.Background(), []string{"5"}, t.TempDir(), 50*time.Millisecond)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrTimeout), "got %v", err)
	assert.Less(t, time.Since(start), 4*time.Second)
}

func TestCommand_MissingBinary(t *testing.T) {
	_, err := Command{Binary: "definitely-not-a-real-binary-xyz"}.Execute(context.Background(), nil, t.TempDir(), time.Second)
	require.Error(t, err)
	var ee *ExitError
	assert.False(t, errors.As(err, &ee))
}
