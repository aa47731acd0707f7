package registry

import (
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xenoscopic/xeno/internal/vcs"
)

func skipIfNoGit(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available")
	}
}

func makeLocalRepo(t *testing.T, workdir string, pid int, remotePath, cloneURL string, isFile bool) string {
	t.Helper()
	container := filepath.Join(workdir, "local-"+filepath.Base(t.TempDir()))
	require.NoError(t, os.MkdirAll(container, 0700))
	repo := filepath.Join(container, "project")
	require.NoError(t, os.MkdirAll(repo, 0755))
	require.NoError(t, exec.Command("git", "-C", repo, "init", "--quiet").Run())
	require.NoError(t, vcs.ConfigSet(repo, "xeno.syncProcessId", strconv.Itoa(pid)))
	require.NoError(t, vcs.ConfigSet(repo, "xeno.remotePath", remotePath))
	require.NoError(t, vcs.ConfigSet(repo, "xeno.cloneUrl", cloneURL))
	require.NoError(t, vcs.ConfigSet(repo, "xeno.remoteIsFile", boolString(isFile)))
	return repo
}

func boolString(b bool) string {
	if b {
		return "True"
	}
	return "False"
}

func TestListFiltersDeadSessions(t *testing.T) {
	skipIfNoGit(t)

	workdir := t.TempDir()
	alive := makeLocalRepo(t, workdir, os.Getpid(), "/srv/data/project", "ssh://user@host/repo", false)
	_ = makeLocalRepo(t, workdir, 999999, "/srv/data/other", "ssh://host/repo2", true)

	sessions, err := List(workdir)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, alive, sessions[0].RepoPath)
	assert.Equal(t, os.Getpid(), sessions[0].ProcessID)
	assert.Equal(t, "user", sessions[0].User)
	assert.Equal(t, "host", sessions[0].Host)
	assert.Equal(t, Synced, sessions[0].SyncStatus)
}

func TestSessionEditablePath(t *testing.T) {
	s := Session{RepoPath: "/local/clone", RemoteIsFile: true, RemotePath: "/home/u/notes.txt"}
	assert.Equal(t, "/local/clone/notes.txt", s.EditablePath())

	s.RemoteIsFile = false
	assert.Equal(t, "/local/clone", s.EditablePath())
}

func TestFindUnknownPid(t *testing.T) {
	workdir := t.TempDir()
	_, ok, err := Find(workdir, 123456789)
	require.NoError(t, err)
	assert.False(t, ok)
}
