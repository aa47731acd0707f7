package remoterepo

import (
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xenoscopic/xeno/internal/token"
	"github.com/xenoscopic/xeno/internal/vcs"
)

func skipIfNoGit(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available")
	}
}

func TestBuildDirectory(t *testing.T) {
	skipIfNoGit(t)

	base := t.TempDir()
	target := filepath.Join(base, "project")
	require.NoError(t, os.MkdirAll(target, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(target, "a.txt"), []byte("hi"), 0644))

	workdir := filepath.Join(base, "workdir")
	require.NoError(t, os.MkdirAll(workdir, 0700))

	result, err := Build(target, Options{WorkingDirectory: workdir})
	require.NoError(t, err)
	defer os.RemoveAll(result.RepoPath)

	assert.False(t, result.IsFile)
	assert.DirExists(t, result.RepoPath)

	decoded := token.Decode(result.Token)
	require.NotNil(t, decoded)
	assert.False(t, decoded.IsFile)
	assert.Equal(t, result.RepoPath, decoded.RepoPath)

	isFileVal, err := vcs.ConfigGet(result.RepoPath, "xeno.remoteIsFile")
	require.NoError(t, err)
	assert.Equal(t, "False", isFileVal)

	excludes, err := os.ReadFile(filepath.Join(result.RepoPath, "info", "exclude"))
	require.NoError(t, err)
	assert.Contains(t, string(excludes), ".git")
	assert.Contains(t, string(excludes), "node_modules/")

	hookInfo, err := os.Stat(filepath.Join(result.RepoPath, "hooks", "post-receive"))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0700), hookInfo.Mode().Perm())
}

func TestBuildFile(t *testing.T) {
	skipIfNoGit(t)

	base := t.TempDir()
	target := filepath.Join(base, "notes.txt")
	require.NoError(t, os.WriteFile(target, []byte("hi"), 0644))

	workdir := filepath.Join(base, "workdir")
	require.NoError(t, os.MkdirAll(workdir, 0700))

	result, err := Build(target, Options{WorkingDirectory: workdir})
	require.NoError(t, err)
	defer os.RemoveAll(result.RepoPath)

	assert.True(t, result.IsFile)

	excludes, err := os.ReadFile(filepath.Join(result.RepoPath, "info", "exclude"))
	require.NoError(t, err)
	assert.Contains(t, string(excludes), "*\n!notes.txt\n")
}

func TestBuildMissingPath(t *testing.T) {
	skipIfNoGit(t)

	base := t.TempDir()
	workdir := filepath.Join(base, "workdir")
	require.NoError(t, os.MkdirAll(workdir, 0700))

	_, err := Build(filepath.Join(base, "does-not-exist"), Options{WorkingDirectory: workdir})
	require.Error(t, err)
}
