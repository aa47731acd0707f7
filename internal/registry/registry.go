// Package registry implements the session registry: it enumerates
// live sync daemons by scanning the xeno working directory for local
// repositories, filters out dead ones, and exposes list/resume/stop
// operations. See spec.md section 4.7.
package registry

import (
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/xenoscopic/xeno/internal/vcs"
)

// SyncStatus is "synced" or "unsynced" depending on whether the
// session's local repository currently has uncommitted changes.
type SyncStatus string

const (
	Synced   SyncStatus = "synced"
	Unsynced SyncStatus = "unsynced"
)

// Session describes one live sync daemon.
type Session struct {
	ProcessID    int
	RepoPath     string
	CloneURL     string
	RemotePath   string
	RemoteIsFile bool
	SyncStatus   SyncStatus
	User         string // parsed from CloneURL, "" if anonymous
	Host         string // parsed from CloneURL
}

// EditablePath returns the path a resumed editor should open, per
// spec.md section 4.7.
func (s Session) EditablePath() string {
	if s.RemoteIsFile {
		return filepath.Join(s.RepoPath, filepath.Base(s.RemotePath))
	}
	return s.RepoPath
}

// candidateRepos globs WORKDIR/local-*/* for every directory that
// might be a local repository (spec.md section 4.7).
func candidateRepos(workingDirectory string) ([]string, error) {
	return filepath.Glob(filepath.Join(workingDirectory, "local-*", "*"))
}

// isAlive probes a pid with signal 0, per spec.md section 4.7 and the
// original implementation's os.kill(pid, 0) convention: delivering no
// actual signal, just checking whether the kernel would let us.
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

func readSession(repo string) (Session, bool) {
	pidStr, err := vcs.ConfigGet(repo, "xeno.syncProcessId")
	if err != nil || pidStr == "" {
		return Session{}, false
	}
	pid, err := strconv.Atoi(pidStr)
	if err != nil || !isAlive(pid) {
		return Session{}, false
	}

	remotePath, _ := vcs.ConfigGet(repo, "xeno.remotePath")
	cloneURL, _ := vcs.ConfigGet(repo, "xeno.cloneUrl")
	isFile, _ := vcs.ConfigGetBool(repo, "xeno.remoteIsFile")

	user, host := "", ""
	if parsed, err := url.Parse(cloneURL); err == nil {
		host = parsed.Hostname()
		if parsed.User != nil {
			user = parsed.User.Username()
		}
	}

	status := Synced
	if s, err := vcs.Status(repo); err == nil {
		if len(s.Created) > 0 || len(s.Modified) > 0 || len(s.Deleted) > 0 {
			status = Unsynced
		}
	}

	return Session{
		ProcessID:    pid,
		RepoPath:     repo,
		CloneURL:     cloneURL,
		RemotePath:   remotePath,
		RemoteIsFile: isFile,
		SyncStatus:   status,
		User:         user,
		Host:         host,
	}, true
}

// List scans workingDirectory for live sessions, probing each
// candidate repository's metadata concurrently.
func List(workingDirectory string) ([]Session, error) {
	repos, err := candidateRepos(workingDirectory)
	if err != nil {
		return nil, err
	}

	sessions := make([]Session, len(repos))
	found := make([]bool, len(repos))

	var g errgroup.Group
	for i, repo := range repos {
		i, repo := i, repo
		g.Go(func() error {
			s, ok := readSession(repo)
			sessions[i] = s
			found[i] = ok
			return nil
		})
	}
	_ = g.Wait()

	result := make([]Session, 0, len(repos))
	for i, ok := range found {
		if ok {
			result = append(result, sessions[i])
		}
	}
	return result, nil
}

// Find returns the session with the given process id.
func Find(workingDirectory string, pid int) (Session, bool, error) {
	sessions, err := List(workingDirectory)
	if err != nil {
		return Session{}, false, err
	}
	for _, s := range sessions {
		if s.ProcessID == pid {
			return s, true, nil
		}
	}
	return Session{}, false, nil
}

// Stop sends SIGTERM to a single session's process.
func Stop(pid int) error {
	process, err := os.FindProcess(pid)
	if err != nil {
		return err
	}
	return process.Signal(syscall.SIGTERM)
}

// StopAll sends SIGTERM to every live session found under
// workingDirectory.
func StopAll(workingDirectory string) error {
	sessions, err := List(workingDirectory)
	if err != nil {
		return err
	}
	for _, s := range sessions {
		_ = Stop(s.ProcessID)
	}
	return nil
}
