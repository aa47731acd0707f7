// Package daemon implements the local sync daemon: the process that
// clones a remote repository, detaches from its controlling
// terminal, and runs the periodic commit-push-pull loop until
// signaled. See spec.md section 4.5.
package daemon

import (
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/xenoscopic/xeno/internal/receivehook"
	"github.com/xenoscopic/xeno/internal/vcs"
	"github.com/xenoscopic/xeno/internal/xerr"
	"github.com/xenoscopic/xeno/internal/xio"
)

// DefaultInterval is the fixed interval between sync iterations
// (spec.md section 4.5 step 7, "default 10s").
const DefaultInterval = 10 * time.Second

// DefaultAltReceiveProgram is passed as --receive-pack on every sync
// iteration's push, routing inbound data through the pre-commit
// wrapper instead of the bare git-receive-pack (spec.md sections 4.3
// and 4.8). The self-destruct push in cleanup goes to the plain
// git-receive-pack.
const DefaultAltReceiveProgram = "xeno receive-pack"

const placeholderAuthor = "xeno <xeno@xeno>"

// Options configures a sync daemon invocation.
type Options struct {
	RemoteIsFile         bool
	RemotePath           string
	CloneURL             string
	WorkingDirectory     string
	Interval             time.Duration
	PollForRemoteChanges bool
	AltReceiveProgram    string
	// NoDaemon runs the interval loop in the foreground instead of
	// double-forking into a detached background process. Supplements
	// spec.md for local debugging/testing; see SPEC_FULL.md.
	NoDaemon bool
}

func (o *Options) applyDefaults() {
	if o.Interval <= 0 {
		o.Interval = DefaultInterval
	}
	if o.AltReceiveProgram == "" {
		o.AltReceiveProgram = DefaultAltReceiveProgram
	}
}

// localName computes the clone's leaf directory name (spec.md
// section 3): "remote" for a single-file session, else the remote
// path's basename after trailing-slash normalization.
func localName(remoteIsFile bool, remotePath string) string {
	if remoteIsFile {
		return "remote"
	}
	return filepath.Base(filepath.Clean(remotePath))
}

// EditablePath returns the path a user should point an editor at for
// a given clone root, per remoteIsFile.
func EditablePath(clonePath string, remoteIsFile bool, remotePath string) string {
	if remoteIsFile {
		return filepath.Join(clonePath, filepath.Base(remotePath))
	}
	return clonePath
}

// state is the handoff payload threaded through re-exec stages via an
// environment variable, since a real fork() is unavailable and Go's
// daemonization idiom is self-re-exec + Setsid instead.
type state struct {
	Container            string `json:"container"`
	ClonePath            string `json:"clone_path"`
	RemoteIsFile         bool   `json:"remote_is_file"`
	RemotePath           string `json:"remote_path"`
	CloneURL             string `json:"clone_url"`
	IntervalMs           int64  `json:"interval_ms"`
	PollForRemoteChanges bool   `json:"poll_for_remote_changes"`
	AltReceiveProgram    string `json:"alt_receive_program"`
}

const stateEnvVar = "XENO_SYNC_STATE"

// Hidden re-exec markers, passed as argv[1], that let cmd/xeno's main
// dispatch into the daemonization stages without exposing them as
// public subcommands.
const (
	Stage1Arg = "__xeno-daemon-stage1__"
	Stage2Arg = "__xeno-daemon-stage2__"
)

// DispatchStage runs the appropriate daemon stage if args names one,
// returning (true, err) if it handled the process (the caller should
// exit immediately afterward), or (false, nil) if this is not a
// daemon re-exec invocation.
func DispatchStage(args []string) (bool, error) {
	if len(args) < 1 {
		return false, nil
	}
	switch args[0] {
	case Stage1Arg:
		return true, runStage1()
	case Stage2Arg:
		return true, runStage2()
	default:
		return false, nil
	}
}

// Run performs the full local-sync-daemon routine: clone, persist
// metadata, print the editable path, then either daemonize (default)
// or continue in the foreground (Options.NoDaemon).
func Run(opts Options, stdout *os.File) error {
	opts.applyDefaults()

	container := filepath.Join(opts.WorkingDirectory, "local-"+newID())
	if err := os.MkdirAll(container, 0700); err != nil {
		return xerr.New(xerr.WorkdirUnusable, err)
	}

	clonePath := filepath.Join(container, localName(opts.RemoteIsFile, opts.RemotePath))

	if err := vcs.Clone(opts.CloneURL, clonePath); err != nil {
		os.RemoveAll(container)
		return errors.WithMessage(err, "unable to clone remote repository")
	}

	if err := vcs.ConfigSet(clonePath, "xeno.remoteIsFile", boolString(opts.RemoteIsFile)); err != nil {
		return err
	}
	if err := vcs.ConfigSet(clonePath, "xeno.remotePath", opts.RemotePath); err != nil {
		return err
	}
	if err := vcs.ConfigSet(clonePath, "xeno.cloneUrl", opts.CloneURL); err != nil {
		return err
	}

	editable := EditablePath(clonePath, opts.RemoteIsFile, opts.RemotePath)

	// os.File writes go straight to the underlying fd (Go does not
	// buffer them in userspace), so the launching process (interceptor
	// or foreground edit driver), which blocks reading this line before
	// we daemonize, sees it immediately.
	fmt.Fprintln(stdout, editable)

	st := state{
		Container:            container,
		ClonePath:            clonePath,
		RemoteIsFile:         opts.RemoteIsFile,
		RemotePath:           opts.RemotePath,
		CloneURL:             opts.CloneURL,
		IntervalMs:           opts.Interval.Milliseconds(),
		PollForRemoteChanges: opts.PollForRemoteChanges,
		AltReceiveProgram:    opts.AltReceiveProgram,
	}

	if opts.NoDaemon {
		if err := vcs.ConfigSet(clonePath, "xeno.syncProcessId", strconv.Itoa(os.Getpid())); err != nil {
			return err
		}
		return loop(st)
	}

	return daemonize(st)
}

// RunCapturingPath runs the daemon exactly like Run, but captures the
// printed editable path instead of sending it to a caller-visible
// stream, for use by callers (like the SSH interceptor) that start the
// daemon programmatically and need the path as a value. opts.NoDaemon
// must be false: this helper relies on Run returning promptly once the
// daemon has forked, not looping in the foreground.
func RunCapturingPath(opts Options) (string, error) {
	opts.NoDaemon = false

	r, w, err := os.Pipe()
	if err != nil {
		return "", err
	}
	defer r.Close()

	runErr := Run(opts, w)
	w.Close()
	if runErr != nil {
		return "", runErr
	}

	buf := make([]byte, 4096)
	n, _ := r.Read(buf)
	return strings.TrimRight(string(buf[:n]), "\n"), nil
}

func boolString(b bool) string {
	if b {
		return "True"
	}
	return "False"
}

func newID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

func encodeState(st state) (string, error) {
	b, err := json.Marshal(st)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func decodeState() (state, error) {
	var st state
	raw := os.Getenv(stateEnvVar)
	if raw == "" {
		return st, errors.New("missing daemon state")
	}
	err := json.Unmarshal([]byte(raw), &st)
	return st, err
}

// daemonize performs the double-fork sequence described in spec.md
// section 4.5 step 5, implemented as two self-re-exec hops (Go has no
// raw fork()): the first hop detaches from the controlling terminal
// (new session, redirected stdio), the second hop is the one whose
// pid is recorded as syncProcessId, matching the "final child's pid"
// requirement.
func daemonize(st state) error {
	encoded, err := encodeState(st)
	if err != nil {
		return err
	}

	self, err := os.Executable()
	if err != nil {
		return errors.WithMessage(err, "unable to determine own executable path")
	}

	devNull, err := os.OpenFile(os.DevNull, os.O_RDWR, 0)
	if err != nil {
		return errors.WithMessage(err, "unable to open null device")
	}
	defer devNull.Close()

	cmd := exec.Command(self, Stage1Arg)
	cmd.Env = append(os.Environ(), stateEnvVar+"="+encoded)
	cmd.Dir = "/"
	cmd.Stdin = devNull
	cmd.Stdout = devNull
	cmd.Stderr = devNull
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}

	return cmd.Start()
}

// runStage1 is the first detached hop: it establishes the process
// environment (chdir, umask) and immediately spawns the second hop,
// exiting without waiting for it (the classic double-fork idiom,
// ensuring the final daemon is reparented away from this transient
// process).
func runStage1() error {
	st, err := decodeState()
	if err != nil {
		return err
	}

	if err := os.Chdir("/"); err != nil {
		return err
	}
	syscall.Umask(0)

	encoded, err := encodeState(st)
	if err != nil {
		return err
	}

	self, err := os.Executable()
	if err != nil {
		return err
	}

	devNull, err := os.OpenFile(os.DevNull, os.O_RDWR, 0)
	if err != nil {
		return err
	}
	defer devNull.Close()

	cmd := exec.Command(self, Stage2Arg)
	cmd.Env = append(os.Environ(), stateEnvVar+"="+encoded)
	cmd.Dir = "/"
	cmd.Stdin = devNull
	cmd.Stdout = devNull
	cmd.Stderr = devNull

	return cmd.Start()
}

// runStage2 is the final daemon process: it records its own pid and
// runs the interval loop until signaled.
func runStage2() error {
	st, err := decodeState()
	if err != nil {
		return err
	}
	if err := vcs.ConfigSet(st.ClonePath, "xeno.syncProcessId", strconv.Itoa(os.Getpid())); err != nil {
		xio.Warning("unable to record sync process id: %v", err)
	}
	return loop(st)
}

// loop installs SIGINT/SIGTERM handlers and runs the commit-push-pull
// cycle on a fixed interval until signaled, per spec.md section 4.5
// steps 6-7 and the cleanup described afterward. The interval remains
// the sole driver of commit/push timing; an fsnotify watch over the
// work tree only sets a dirty flag, letting each tick skip the
// `git status --porcelain` subprocess call entirely when nothing
// changed since the last one.
func loop(st state) error {
	var once sync.Once
	cleanupDone := make(chan struct{})

	sig := make(chan os.Signal, 2)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sig
		once.Do(func() {
			cleanup(st)
			close(cleanupDone)
		})
		os.Exit(0)
	}()

	interval := time.Duration(st.IntervalMs) * time.Millisecond
	if interval <= 0 {
		interval = DefaultInterval
	}

	var dirty atomic.Bool
	dirty.Store(true) // force a status check on the first tick
	watching := true
	if watcher, err := startWatcher(st.ClonePath, &dirty); err != nil {
		xio.Warning("unable to watch work tree for changes, falling back to interval-only sync: %v", err)
		watching = false
	} else {
		defer watcher.Close()
	}

	lastIterationFailed := false
	for {
		select {
		case <-cleanupDone:
			return nil
		case <-time.After(interval):
			wasDirty := dirty.Swap(false) || !watching
			lastIterationFailed = runIteration(st, lastIterationFailed, wasDirty)
		}
	}
}

// startWatcher installs an fsnotify watch across every directory under
// clonePath (skipping .git, whose own churn from our commits would
// otherwise retrigger the watch), setting dirty whenever something
// changes. Per SPEC_FULL.md's domain-stack fsnotify wiring.
func startWatcher(clonePath string, dirty *atomic.Bool) (*fsnotify.Watcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	if err := addWatchTree(watcher, clonePath); err != nil {
		watcher.Close()
		return nil, err
	}

	go func() {
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Op&fsnotify.Create != 0 {
					if info, err := os.Stat(event.Name); err == nil && info.IsDir() && info.Name() != ".git" {
						watcher.Add(event.Name)
					}
				}
				dirty.Store(true)
			case _, ok := <-watcher.Errors:
				if !ok {
					return
				}
			}
		}
	}()

	return watcher, nil
}

// addWatchTree recursively adds every directory under root, so
// changes anywhere in the work tree (not just its top level) surface
// as events.
func addWatchTree(watcher *fsnotify.Watcher, root string) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			return nil
		}
		if info.Name() == ".git" {
			return filepath.SkipDir
		}
		return watcher.Add(path)
	})
}

// runIteration performs one pass of spec.md section 4.5 step 7,
// returning whether the iteration failed (fed back as
// lastIterationFailed on the next call).
// dirty is false when the fsnotify watch (see loop) observed no
// work-tree change since the last tick, letting this skip the
// `git status` subprocess call entirely. It is a pure optimization,
// never a correctness gate: a push can still happen this iteration
// via PollForRemoteChanges or a retry after a prior failure.
func runIteration(st state, lastIterationFailed, dirty bool) bool {
	committed := false

	if dirty {
		status, err := vcs.Status(st.ClonePath)
		if err != nil {
			return true
		}
		committed = stageAndCommit(st, status)
	}

	hasUnpushed, _ := vcs.HasDiverged(st.ClonePath, "origin/master")

	shouldPush := committed || hasUnpushed || st.PollForRemoteChanges || lastIterationFailed
	if !shouldPush {
		return false
	}

	if err := vcs.Push(st.ClonePath, "master:incoming", st.AltReceiveProgram); err != nil {
		return true
	}

	if err := vcs.Pull(st.ClonePath, vcs.PullOptions{
		Strategy:     "recursive",
		ConflictSide: "ours",
		AutoCommit:   true,
	}); err != nil {
		return true
	}

	return false
}

// stageAndCommit stages and commits changes per category, honoring
// the file-mode-vs-directory-mode asymmetry from spec.md section 4.5
// step b: a single-file session only ever commits modifications
// (creations/deletions of *other* files in the parent work tree are
// never part of that session's concern).
func stageAndCommit(st state, status vcs.StatusResult) bool {
	commitCreated := !st.RemoteIsFile
	commitDeleted := !st.RemoteIsFile

	changed := false

	if commitCreated && len(status.Created) > 0 {
		if err := vcs.Add(st.ClonePath, status.Created); err == nil {
			changed = true
		}
	}
	if len(status.Modified) > 0 {
		if err := vcs.Add(st.ClonePath, status.Modified); err == nil {
			changed = true
		}
	}
	if commitDeleted && len(status.Deleted) > 0 {
		if err := vcs.Rm(st.ClonePath, status.Deleted); err == nil {
			changed = true
		}
	}

	if !changed {
		return false
	}

	err := vcs.Commit(st.ClonePath, vcs.CommitOptions{
		Message: "xeno-commit",
		Author:  placeholderAuthor,
	})
	return err == nil
}

// cleanup implements spec.md section 4.5's "Cleanup (on signal)":
// a best-effort self-destruct commit pushed to master:incoming
// (recognized by the remote receive hook), followed by removing the
// local container directory.
func cleanup(st state) {
	_ = vcs.Commit(st.ClonePath, vcs.CommitOptions{
		Message:    receivehook.SelfDestructMessage,
		Author:     placeholderAuthor,
		AllowEmpty: true,
	})
	_ = vcs.Push(st.ClonePath, "master:incoming", "")
	_ = os.RemoveAll(st.Container)
}
