// Package vcs is a thin, typed facade over the underlying
// content-addressed VCS tool (git), exposing exactly the operations
// xeno's sync subsystem needs. See spec.md section 4.3: the VCS
// backend itself is treated as an opaque storage engine out of
// scope for this system — this package is the adapter around it.
package vcs

import (
	"bytes"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/xenoscopic/xeno/internal/xerr"
)

// Status classifies a changed path the way `git status --porcelain`
// does: "??" (created), "M" (modified), "D" (deleted). Any other
// status code is ignored, per spec.md section 4.3.
type StatusResult struct {
	Created  []string
	Modified []string
	Deleted  []string
}

func run(name string, args ...string) ([]byte, error) {
	cmd := exec.Command(name, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	if err != nil {
		return stdout.Bytes(), errors.WithMessage(err, strings.TrimSpace(stderr.String()))
	}
	return stdout.Bytes(), nil
}

func stage(stage string, err error) error {
	if err == nil {
		return nil
	}
	return xerr.Staged(xerr.VCSFailure, stage, err)
}

// Init creates a bare repository at gitDir whose work-tree is workTree.
// This is used by the remote repository builder (spec.md section 4.4),
// which keeps the git directory separate from the directory it is
// tracking.
func Init(gitDir, workTree string) error {
	_, err := run("git", "--work-tree", workTree, "--git-dir", gitDir, "init", "--quiet")
	return stage("init", err)
}

// Clone clones url into dest, which must not already exist.
func Clone(url, dest string) error {
	_, err := run("git", "clone", "--quiet", url, dest)
	return stage("clone", err)
}

// effectiveDir returns the directory that status/add/rm/commit
// operations run from: repoDir itself. For a repository with a
// separate work tree (core.worktree set, as Init creates), git reads
// that setting when run from the git directory and resolves paths
// against the work tree; run from inside the work tree instead, git
// would not find the git directory at all.
func effectiveDir(repoDir string) string {
	return repoDir
}

// Status reports created, modified, and deleted paths (relative to
// the work tree) per spec.md section 4.3.
func Status(repoDir string) (StatusResult, error) {
	var result StatusResult

	out, err := run("git", "-C", effectiveDir(repoDir), "status", "--porcelain")
	if err != nil {
		// Status failures are swallowed per spec.md section 4.3 ("all
		// errors non-fatal unless otherwise specified"); the caller
		// sees an empty result and treats it as "nothing changed".
		return result, nil
	}

	for _, line := range strings.Split(string(out), "\n") {
		line = strings.TrimRight(line, "\r")
		if line == "" {
			continue
		}
		if len(line) < 4 {
			continue
		}
		code := strings.TrimSpace(line[:2])
		path := strings.TrimSpace(line[2:])
		switch code {
		case "??":
			result.Created = append(result.Created, path)
		case "M":
			result.Modified = append(result.Modified, path)
		case "D":
			result.Deleted = append(result.Deleted, path)
		}
	}

	return result, nil
}

// Add stages the given work-tree-relative paths.
func Add(repoDir string, paths []string) error {
	if len(paths) == 0 {
		return nil
	}
	args := append([]string{"-C", effectiveDir(repoDir), "add"}, paths...)
	_, err := run("git", args...)
	return stage("add", err)
}

// Rm removes the given work-tree-relative paths from the index and
// work tree.
func Rm(repoDir string, paths []string) error {
	if len(paths) == 0 {
		return nil
	}
	args := append([]string{"-C", effectiveDir(repoDir), "rm", "--quiet", "--ignore-unmatch"}, paths...)
	_, err := run("git", args...)
	return stage("rm", err)
}

// CommitOptions configures a commit invocation.
type CommitOptions struct {
	Message    string
	Author     string
	AllowEmpty bool
}

// Commit creates a commit from the currently staged changes. It
// returns an error only on genuine VCS failure; a commit with nothing
// staged and AllowEmpty unset is not itself an error, it simply does
// not happen (callers track whether a commit was made by checking
// Status beforehand, per spec.md section 4.5 step b).
func Commit(repoDir string, opts CommitOptions) error {
	if !opts.AllowEmpty {
		// `git diff --cached --quiet` exits 0 when nothing is staged.
		if _, err := run("git", "-C", effectiveDir(repoDir), "diff", "--cached", "--quiet"); err == nil {
			return nil
		}
	}
	args := []string{"-C", effectiveDir(repoDir), "commit", "--quiet"}
	if opts.AllowEmpty {
		args = append(args, "--allow-empty")
	}
	if opts.Message == "" {
		args = append(args, "--allow-empty-message")
	}
	if opts.Author != "" {
		args = append(args, "--author", opts.Author)
	}
	args = append(args, "-m", opts.Message)
	_, err := run("git", args...)
	return stage("commit", err)
}

// Push pushes refspec to origin. altReceiveProgram, if non-empty, is
// passed as --receive-pack, letting a local clone push through a
// wrapped remote hook program (spec.md section 4.3 and 4.8).
func Push(repoDir, refspec, altReceiveProgram string) error {
	args := []string{"-C", repoDir, "push", "--quiet"}
	if altReceiveProgram != "" {
		args = append(args, "--receive-pack", altReceiveProgram)
	}
	args = append(args, "origin", refspec)
	_, err := run("git", args...)
	return stage("push", err)
}

// PullOptions configures a pull's merge policy.
type PullOptions struct {
	Strategy     string // e.g. "recursive"
	ConflictSide string // e.g. "ours"
	AutoCommit   bool
}

// Pull pulls from origin using the given conflict-resolution policy.
// The local-wins conflict policy described in spec.md section 4.5 is
// embedded in PullOptions{Strategy: "recursive", ConflictSide: "ours"}.
func Pull(repoDir string, opts PullOptions) error {
	args := []string{"-C", repoDir, "pull", "--quiet"}
	if opts.AutoCommit {
		args = append(args, "--commit")
	}
	if opts.Strategy != "" {
		args = append(args, "--strategy", opts.Strategy)
	}
	if opts.ConflictSide != "" {
		args = append(args, "-X", opts.ConflictSide)
	}
	args = append(args, "--no-edit")

	cmd := exec.Command("git", args...)
	cmd.Env = append(os.Environ(), "GIT_MERGE_AUTOEDIT=no")
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return stage("pull", errors.WithMessage(err, strings.TrimSpace(stderr.String())))
	}
	return nil
}

// HasDiverged reports whether repoDir's current branch has commits
// that otherRef does not.
func HasDiverged(repoDir, otherRef string) (bool, error) {
	out, err := run("git", "-C", repoDir, "rev-list", "--count", otherRef+"..HEAD")
	if err != nil {
		return false, nil
	}
	return strings.TrimSpace(string(out)) != "0", nil
}

// Branch creates a new branch at the current HEAD.
func Branch(repoDir, name string) error {
	_, err := run("git", "-C", repoDir, "branch", name)
	return stage("branch", err)
}

// ConfigSet sets a (possibly namespaced) config key to value.
func ConfigSet(repoDir, key, value string) error {
	_, err := run("git", "-C", repoDir, "config", key, value)
	return stage("config-set", err)
}

// ConfigGet reads a config key, returning "" if it is unset. Errors
// from git config (unset key, not a repo) are treated as "unset"
// rather than propagated, matching spec.md section 4.3.
func ConfigGet(repoDir, key string) (string, error) {
	out, err := run("git", "-C", repoDir, "config", key)
	if err != nil {
		return "", nil
	}
	return strings.TrimSpace(string(out)), nil
}

// ConfigGetBool reads a boolean metadata value, accepting both
// "True"/"False" and "true"/"false" spellings, per spec.md section 9's
// note on dynamic metadata typing.
func ConfigGetBool(repoDir, key string) (bool, error) {
	v, err := ConfigGet(repoDir, key)
	if err != nil {
		return false, err
	}
	return strings.EqualFold(v, "true"), nil
}

// IsRepo reports whether dir is (or is inside) a git repository.
func IsRepo(dir string) bool {
	cmd := exec.Command("git", "-C", dir, "rev-parse", "--git-dir")
	return cmd.Run() == nil
}

// RemoteURL returns the "origin" remote URL, or "" if unset.
func RemoteURL(repoDir string) (string, error) {
	out, err := run("git", "-C", repoDir, "remote", "get-url", "origin")
	if err != nil {
		return "", nil
	}
	return strings.TrimSpace(string(out)), nil
}

// ParseInt is a small helper used by callers translating metadata
// strings (e.g. a pid) back into integers.
func ParseInt(s string) (int, error) {
	return strconv.Atoi(strings.TrimSpace(s))
}
