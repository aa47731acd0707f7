package vcs

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func skipIfNoGit(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available")
	}
}

func TestInitBareWithSeparateWorkTree(t *testing.T) {
	skipIfNoGit(t)

	base := t.TempDir()
	gitDir := filepath.Join(base, "repo")
	workTree := filepath.Join(base, "work")
	require.NoError(t, os.MkdirAll(workTree, 0755))

	require.NoError(t, Init(gitDir, workTree))
	assert.True(t, IsRepo(gitDir))

	wt, err := ConfigGet(gitDir, "core.worktree")
	require.NoError(t, err)
	assert.Equal(t, workTree, wt)
}

func TestAddCommitStatusCycle(t *testing.T) {
	skipIfNoGit(t)

	base := t.TempDir()
	gitDir := filepath.Join(base, "repo")
	workTree := filepath.Join(base, "work")
	require.NoError(t, os.MkdirAll(workTree, 0755))
	require.NoError(t, Init(gitDir, workTree))

	require.NoError(t, os.WriteFile(filepath.Join(workTree, "a.txt"), []byte("hello"), 0644))

	status, err := Status(gitDir)
	require.NoError(t, err)
	assert.Contains(t, status.Created, "a.txt")

	require.NoError(t, Add(gitDir, status.Created))
	require.NoError(t, Commit(gitDir, CommitOptions{
		Message:    "initial",
		Author:     "xeno <xeno@localhost>",
		AllowEmpty: true,
	}))

	status, err = Status(gitDir)
	require.NoError(t, err)
	assert.Empty(t, status.Created)
	assert.Empty(t, status.Modified)
	assert.Empty(t, status.Deleted)
}

func TestConfigRoundTrip(t *testing.T) {
	skipIfNoGit(t)

	dir := t.TempDir()
	cmd := exec.Command("git", "-C", dir, "init", "--quiet")
	require.NoError(t, cmd.Run())

	require.NoError(t, ConfigSet(dir, "xeno.remotePath", "/srv/data"))
	v, err := ConfigGet(dir, "xeno.remotePath")
	require.NoError(t, err)
	assert.Equal(t, "/srv/data", v)

	missing, err := ConfigGet(dir, "xeno.doesNotExist")
	require.NoError(t, err)
	assert.Empty(t, missing)
}

func TestIsRepoFalseForNonRepo(t *testing.T) {
	skipIfNoGit(t)
	assert.False(t, IsRepo(t.TempDir()))
}
