// Package receivehook implements the two halves of the remote
// receive-side machinery described in spec.md section 4.8: the
// `xeno receive-pack` wrapper (installed as the client's
// --receive-pack program, pre-commits work-tree changes before
// handing off to the real git-receive-pack) and the post-receive
// hook script that internal/remoterepo installs into the bare
// repository (merges incoming
// into master, then tears the repository down on a self-destruct
// commit).
package receivehook

import (
	"os"
	"os/exec"
	"syscall"

	"github.com/pkg/errors"
	"github.com/xenoscopic/xeno/internal/vcs"
)

// SelfDestructMessage is the literal commit message the local daemon
// uses for its teardown commit (spec.md section 4.5 "Cleanup") and
// that the post-receive hook watches for.
const SelfDestructMessage = "xeno-destruct"

const placeholderAuthor = "xeno <xeno@xeno>"

// Run implements `xeno receive-pack <repo-path> [git-receive-pack args...]`.
// It commits any outstanding work-tree changes on master (so concurrent
// remote edits are not lost to the incoming push), then replaces the
// current process with the real git-receive-pack, per spec.md section
// 4.8's "thin wrapper" description.
func Run(repoPath string, passthroughArgs []string) error {
	if repoPath != "" {
		if err := commitAllCategories(repoPath); err != nil {
			return errors.WithMessage(err, "unable to commit pending remote changes")
		}
	}

	bin, err := exec.LookPath("git-receive-pack")
	if err != nil {
		return errors.WithMessage(err, "git-receive-pack not found on PATH")
	}

	argv := append([]string{"git-receive-pack"}, passthroughArgs...)
	return syscall.Exec(bin, argv, os.Environ())
}

func commitAllCategories(repoPath string) error {
	status, err := vcs.Status(repoPath)
	if err != nil {
		return err
	}
	if err := vcs.Add(repoPath, status.Created); err != nil {
		return err
	}
	if err := vcs.Add(repoPath, status.Modified); err != nil {
		return err
	}
	if err := vcs.Rm(repoPath, status.Deleted); err != nil {
		return err
	}
	return vcs.Commit(repoPath, vcs.CommitOptions{
		Message: "xeno-commit",
		Author:  placeholderAuthor,
	})
}

// PostReceiveScript is installed, mode 0700, at hooks/post-receive in
// every remote repository built by internal/remoterepo. It runs
// server-side on every inbound push. Inbound pushes always target
// incoming (never master, enforced client-side by the daemon's
// refspec), so this script's job is to merge incoming into the
// checked-out master and then check whether the merged tip is a
// self-destruct marker. The merge runs with master checked out, so
// "ours" there means the remote's own pre-commit edits and "theirs"
// means the local daemon's just-pushed state; spec.md's "local side
// always wins" conflict policy means the merge must use -X theirs.
//
// It is a POSIX shell script rather than Go because it must be
// directly executable by git as a repository hook with no xeno binary
// necessarily on the hook's PATH.
const PostReceiveScript = `#!/bin/sh
# Installed by xeno's remote repository builder. Do not edit by hand;
# it is regenerated every time a remote repository is created.
set -e

GIT_DIR=$(git rev-parse --git-dir)

git --git-dir="$GIT_DIR" symbolic-ref HEAD refs/heads/master >/dev/null 2>&1 || true
git --git-dir="$GIT_DIR" merge --quiet -X theirs incoming >/dev/null 2>&1 || true

message=$(git --git-dir="$GIT_DIR" log -1 --format=%s master 2>/dev/null || true)

if [ "$message" = "` + SelfDestructMessage + `" ]; then
    (sleep 1 && rm -rf "$GIT_DIR") >/dev/null 2>&1 &
fi

exit 0
`
