package receivehook

import (
	"os"
	"os/exec"
	"path/filepath"
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

func TestCommitAllCategoriesStagesEverything(t *testing.T) {
	skipIfNoGit(t)

	dir := t.TempDir()
	require.NoError(t, exec.Command("git", "-C", dir, "init", "--quiet").Run())
	require.NoError(t, exec.Command("git", "-C", dir, "config", "user.email", "xeno@xeno").Run())
	require.NoError(t, exec.Command("git", "-C", dir, "config", "user.name", "xeno").Run())
	require.NoError(t, os.WriteFile(filepath.Join(dir, "tracked.txt"), []byte("a"), 0644))
	require.NoError(t, exec.Command("git", "-C", dir, "add", ".").Run())
	require.NoError(t, exec.Command("git", "-C", dir, "commit", "--quiet", "-m", "init").Run())

	require.NoError(t, os.WriteFile(filepath.Join(dir, "tracked.txt"), []byte("b"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "untracked.txt"), []byte("c"), 0644))

	require.NoError(t, commitAllCategories(dir))

	status, err := vcs.Status(dir)
	require.NoError(t, err)
	assert.Empty(t, status.Created)
	assert.Empty(t, status.Modified)
	assert.Empty(t, status.Deleted)
}

func TestPostReceiveScriptReferencesSelfDestructMessage(t *testing.T) {
	assert.Contains(t, PostReceiveScript, SelfDestructMessage)
	assert.Contains(t, PostReceiveScript, "merge")
	assert.Contains(t, PostReceiveScript, "rm -rf")
}

// TestPostReceiveScriptLocalSideWins exercises the actual merge
// direction per spec.md's "local side always wins" conflict policy:
// when incoming (the locally-pushed state) conflicts with master (the
// remote's own pre-commit edits), incoming must win.
func TestPostReceiveScriptLocalSideWins(t *testing.T) {
	skipIfNoGit(t)

	base := t.TempDir()
	gitDir := filepath.Join(base, "repo")
	workTree := filepath.Join(base, "work")
	require.NoError(t, os.MkdirAll(workTree, 0755))
	require.NoError(t, vcs.Init(gitDir, workTree))
	require.NoError(t, exec.Command("git", "--git-dir", gitDir, "config", "user.email", "xeno@xeno").Run())
	require.NoError(t, exec.Command("git", "--git-dir", gitDir, "config", "user.name", "xeno").Run())

	require.NoError(t, os.WriteFile(filepath.Join(workTree, "file.txt"), []byte("base"), 0644))
	require.NoError(t, vcs.Add(gitDir, []string{"file.txt"}))
	require.NoError(t, vcs.Commit(gitDir, vcs.CommitOptions{Message: "init", Author: placeholderAuthor}))
	require.NoError(t, exec.Command("git", "--git-dir", gitDir, "branch", "incoming").Run())

	// incoming gets the locally-pushed edit.
	require.NoError(t, exec.Command("git", "--git-dir", gitDir, "--work-tree", workTree, "checkout", "incoming").Run())
	require.NoError(t, os.WriteFile(filepath.Join(workTree, "file.txt"), []byte("local-edit"), 0644))
	require.NoError(t, vcs.Add(gitDir, []string{"file.txt"}))
	require.NoError(t, vcs.Commit(gitDir, vcs.CommitOptions{Message: "local change", Author: placeholderAuthor}))

	// master gets a conflicting remote-side edit to the same line.
	require.NoError(t, exec.Command("git", "--git-dir", gitDir, "--work-tree", workTree, "checkout", "master").Run())
	require.NoError(t, os.WriteFile(filepath.Join(workTree, "file.txt"), []byte("remote-edit"), 0644))
	require.NoError(t, vcs.Add(gitDir, []string{"file.txt"}))
	require.NoError(t, vcs.Commit(gitDir, vcs.CommitOptions{Message: "remote change", Author: placeholderAuthor}))

	scriptPath := filepath.Join(base, "post-receive")
	require.NoError(t, os.WriteFile(scriptPath, []byte(PostReceiveScript), 0700))

	cmd := exec.Command(scriptPath)
	cmd.Env = append(os.Environ(), "GIT_DIR="+gitDir)
	require.NoError(t, cmd.Run())

	content, err := os.ReadFile(filepath.Join(workTree, "file.txt"))
	require.NoError(t, err)
	assert.Equal(t, "local-edit", string(content))
}
