package daemon

import (
	"os"
	"os/exec"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
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

func TestLocalName(t *testing.T) {
	assert.Equal(t, "remote", localName(true, "/home/user/notes.txt"))
	assert.Equal(t, "project", localName(false, "/srv/data/project"))
	assert.Equal(t, "project", localName(false, "/srv/data/project/"))
}

func TestEditablePath(t *testing.T) {
	assert.Equal(t, "/local/clone/notes.txt", EditablePath("/local/clone", true, "/home/user/notes.txt"))
	assert.Equal(t, "/local/clone", EditablePath("/local/clone", false, "/srv/data/project"))
}

func setupRepo(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	require.NoError(t, exec.Command("git", "-C", dir, "init", "--quiet").Run())
	require.NoError(t, exec.Command("git", "-C", dir, "config", "user.email", "xeno@xeno").Run())
	require.NoError(t, exec.Command("git", "-C", dir, "config", "user.name", "xeno").Run())
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tracked.txt"), []byte("a"), 0644))
	require.NoError(t, exec.Command("git", "-C", dir, "add", ".").Run())
	require.NoError(t, exec.Command("git", "-C", dir, "commit", "--quiet", "-m", "init").Run())
	return dir
}

func TestStageAndCommitDirectoryModeCommitsAllCategories(t *testing.T) {
	skipIfNoGit(t)
	dir := setupRepo(t)

	require.NoError(t, os.Remove(filepath.Join(dir, "tracked.txt")))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "new.txt"), []byte("b"), 0644))

	status, err := vcs.Status(dir)
	require.NoError(t, err)

	st := state{ClonePath: dir, RemoteIsFile: false}
	committed := stageAndCommit(st, status)
	assert.True(t, committed)

	status, err = vcs.Status(dir)
	require.NoError(t, err)
	assert.Empty(t, status.Created)
	assert.Empty(t, status.Deleted)
}

func TestStageAndCommitFileModeIgnoresCreatedAndDeleted(t *testing.T) {
	skipIfNoGit(t)
	dir := setupRepo(t)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "tracked.txt"), []byte("changed"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sibling.txt"), []byte("b"), 0644))

	status, err := vcs.Status(dir)
	require.NoError(t, err)
	require.Contains(t, status.Modified, "tracked.txt")
	require.Contains(t, status.Created, "sibling.txt")

	st := state{ClonePath: dir, RemoteIsFile: true}
	committed := stageAndCommit(st, status)
	assert.True(t, committed)

	status, err = vcs.Status(dir)
	require.NoError(t, err)
	assert.Empty(t, status.Modified)
	assert.Contains(t, status.Created, "sibling.txt", "file-mode sessions never stage sibling creations")
}

func TestStartWatcherSetsDirtyOnFileChange(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, ".git"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".git", "ignored"), []byte("x"), 0644))

	var dirty atomic.Bool
	watcher, err := startWatcher(dir, &dirty)
	require.NoError(t, err)
	defer watcher.Close()

	require.NoError(t, os.WriteFile(filepath.Join(dir, ".git", "ignored-again"), []byte("y"), 0644))
	time.Sleep(200 * time.Millisecond)
	assert.False(t, dirty.Load(), ".git changes must not be watched")

	require.NoError(t, os.WriteFile(filepath.Join(dir, "tracked.txt"), []byte("a"), 0644))
	require.Eventually(t, dirty.Load, 2*time.Second, 20*time.Millisecond, "expected dirty to be set for a work-tree change")
}

func TestRunIterationSkipsStatusWhenNotDirty(t *testing.T) {
	skipIfNoGit(t)
	dir := setupRepo(t)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "tracked.txt"), []byte("changed"), 0644))

	st := state{ClonePath: dir, RemoteIsFile: false}
	runIteration(st, false, false)

	status, err := vcs.Status(dir)
	require.NoError(t, err)
	assert.Contains(t, status.Modified, "tracked.txt", "a non-dirty tick must not stage/commit pending changes")
}

func TestAddWatchTreeSkipsGitDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, ".git", "objects"), 0755))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "sub"), 0755))

	watcher, err := fsnotify.NewWatcher()
	require.NoError(t, err)
	defer watcher.Close()

	require.NoError(t, addWatchTree(watcher, dir))
	assert.ElementsMatch(t, []string{dir, filepath.Join(dir, "sub")}, watcher.WatchList())
}
