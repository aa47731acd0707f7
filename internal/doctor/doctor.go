// Package doctor implements `xeno doctor`: a supplemented subcommand
// (not in spec.md's distillation, see SPEC_FULL.md) that finds local
// repositories left behind by a daemon whose process has died without
// running its cleanup (spec.md section 5's "leaked local directory"
// note) and repairs them.
//
// Grounded in the teacher's internal/doctor package shape: a
// Find*/Repair pair of functions operating over a scanned directory
// tree, the same two-step "diagnose, then act" structure the teacher
// used for missing project.json files, repurposed here for stale sync
// sessions.
package doctor

import (
	"os"
	"path/filepath"
	"strconv"
	"syscall"

	"github.com/xenoscopic/xeno/internal/receivehook"
	"github.com/xenoscopic/xeno/internal/vcs"
)

// StaleSession describes a local repository directory whose recorded
// daemon process is no longer running.
type StaleSession struct {
	RepoPath string
	Container string // WORKDIR/local-<uuid> to remove on repair
	CloneURL string
	LastPID  int // 0 if no pid was ever recorded
}

// FindStaleSessions scans workingDirectory for local repositories
// whose xeno.syncProcessId names a dead (or missing) process.
func FindStaleSessions(workingDirectory string) ([]StaleSession, error) {
	candidates, err := filepath.Glob(filepath.Join(workingDirectory, "local-*", "*"))
	if err != nil {
		return nil, err
	}

	var stale []StaleSession
	for _, repo := range candidates {
		if !vcs.IsRepo(repo) {
			continue
		}

		pidStr, _ := vcs.ConfigGet(repo, "xeno.syncProcessId")
		pid, _ := strconv.Atoi(pidStr)

		if pid != 0 && isAlive(pid) {
			continue
		}

		cloneURL, _ := vcs.ConfigGet(repo, "xeno.cloneUrl")
		stale = append(stale, StaleSession{
			RepoPath:  repo,
			Container: filepath.Dir(repo),
			CloneURL:  cloneURL,
			LastPID:   pid,
		})
	}

	return stale, nil
}

// Repair attempts to notify the remote side that this session is
// abandoned (best-effort; the remote may be unreachable) and then
// removes the leaked local container directory, mirroring the
// cleanup a live daemon would have performed on signal (see
// internal/daemon's cleanup).
func Repair(s StaleSession) error {
	if vcs.IsRepo(s.RepoPath) {
		_ = vcs.Commit(s.RepoPath, vcs.CommitOptions{
			Message:    receivehook.SelfDestructMessage,
			AllowEmpty: true,
		})
		_ = vcs.Push(s.RepoPath, "master:incoming", "")
	}

	return os.RemoveAll(s.Container)
}

func isAlive(pid int) bool {
	if pid <= 0 {
		return false
	}
	process, err := os.FindProcess(pid)
	if err != nil {
		return false
	}
	return process.Signal(syscall.Signal(0)) == nil
}
