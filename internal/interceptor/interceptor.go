// Package interceptor implements the SSH output interception /
// initialization-token handshake described in spec.md section 4.6:
// it runs an interactive remote shell, watches its output for a
// discovery token, and when one appears, freezes the shell, starts
// the local sync daemon, and launches an editor, all without
// disturbing the user's terminal session.
//
// Grounded on original_source/xeno/commands/ssh.py's shape, but using
// the in-process pump spec.md section 9 explicitly prefers over the
// original's external `tee` + named-pipe composition: a goroutine
// reads the shell's stdout once and fans it out to both the real
// terminal and the token scanner, which removes the POSIX-specific
// named pipe and its post-spawn-open race entirely.
package interceptor

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/pkg/errors"
	"golang.org/x/term"

	"github.com/xenoscopic/xeno/internal/daemon"
	"github.com/xenoscopic/xeno/internal/editorlaunch"
	"github.com/xenoscopic/xeno/internal/token"
	"github.com/xenoscopic/xeno/internal/xerr"
	"github.com/xenoscopic/xeno/internal/xio"
)

// Options configures one intercepted SSH invocation.
type Options struct {
	SSHArgs              []string
	WorkingDirectory     string
	Editor               string
	Interval             time.Duration // 0 uses daemon.DefaultInterval
	PollForRemoteChanges bool
}

// sshTarget is what we recover from the ssh argv for clone-URL
// construction; everything else is passed through unchanged.
type sshTarget struct {
	user string
	host string
	port int
}

// flagsWithValues lists ssh flags that consume a following argv
// value, so the target/command scan doesn't mistake a flag's value
// for the destination or remote command.
var flagsWithValues = map[string]bool{
	"-p": true, "-l": true, "-i": true, "-o": true,
	"-F": true, "-L": true, "-R": true, "-D": true,
	"-W": true, "-w": true, "-b": true, "-c": true, "-e": true,
	"-J": true, "-E": true, "-I": true, "-Q": true, "-B": true,
	"-m": true, "-O": true, "-S": true,
}

// parseArgs recovers the ssh target (for clone-URL construction) and
// whether an explicit remote command was given (making this a
// non-interactive invocation that skips interception entirely, per
// spec.md section 4.6's last paragraph).
func parseArgs(args []string) (target sshTarget, hasCommand bool) {
	i := 0
	sawTarget := false
	for i < len(args) {
		a := args[i]
		if strings.HasPrefix(a, "-") {
			if a == "-p" || strings.HasPrefix(a, "-p") && a != "-p" {
				if a == "-p" && i+1 < len(args) {
					if p, err := strconv.Atoi(args[i+1]); err == nil {
						target.port = p
					}
					i += 2
					continue
				} else if len(a) > 2 {
					if p, err := strconv.Atoi(a[2:]); err == nil {
						target.port = p
					}
					i++
					continue
				}
			}
			if a == "-l" && i+1 < len(args) {
				target.user = args[i+1]
				i += 2
				continue
			}
			if flagsWithValues[a] {
				i += 2
				continue
			}
			i++
			continue
		}

		if !sawTarget {
			sawTarget = true
			spec := a
			if idx := strings.Index(spec, "@"); idx >= 0 {
				target.user = spec[:idx]
				spec = spec[idx+1:]
			}
			target.host = spec
			i++
			continue
		}

		// Anything positional after the target is a remote command.
		hasCommand = true
		i++
	}
	return target, hasCommand
}

func cloneURL(t sshTarget, repoPath string) string {
	var b strings.Builder
	b.WriteString("ssh://")
	if t.user != "" {
		b.WriteString(t.user)
		b.WriteString("@")
	}
	b.WriteString(t.host)
	if t.port != 0 {
		fmt.Fprintf(&b, ":%d", t.port)
	}
	b.WriteString(repoPath)
	return b.String()
}

// Run executes the interception wrapper and returns the remote
// shell's exit code.
func Run(opts Options) (int, error) {
	target, hasCommand := parseArgs(opts.SSHArgs)

	if hasCommand {
		return runPassthrough(opts.SSHArgs)
	}

	restore := makeStdinRaw()
	defer restore()

	cmd := exec.Command("ssh", opts.SSHArgs...)
	cmd.Stdin = os.Stdin
	cmd.Stderr = os.Stderr

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return 1, errors.WithMessage(err, "unable to attach to ssh stdout")
	}

	if err := cmd.Start(); err != nil {
		return 1, errors.WithMessage(err, "unable to start ssh")
	}

	lines := make(chan string)
	go pump(stdout, os.Stdout, lines)

	for line := range lines {
		tok := token.Decode(line)
		if tok == nil {
			continue
		}
		if err := handleToken(cmd.Process, target, tok, opts); err != nil {
			xio.Warning("unable to complete xeno handover: %v", err)
		}
	}

	err = cmd.Wait()
	if err == nil {
		return 0, nil
	}
	if exitErr, ok := err.(*exec.ExitError); ok {
		return exitErr.ExitCode(), nil
	}
	return 1, err
}

// runPassthrough is used for non-interactive invocations (an explicit
// remote command was given): just forward ssh's output unchanged.
func runPassthrough(args []string) (int, error) {
	cmd := exec.Command("ssh", args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	err := cmd.Run()
	if err == nil {
		return 0, nil
	}
	if exitErr, ok := err.(*exec.ExitError); ok {
		return exitErr.ExitCode(), nil
	}
	return 1, err
}

// pump reads r byte-by-byte, writing every byte through to w (so the
// user's terminal is unaffected) while also reconstructing logical
// lines (split on '\n' or '\r') to hand off for token scanning.
func pump(r io.Reader, w io.Writer, lines chan<- string) {
	defer close(lines)

	reader := bufio.NewReader(r)
	var current strings.Builder

	for {
		b, err := reader.ReadByte()
		if err != nil {
			if current.Len() > 0 {
				lines <- current.String()
			}
			return
		}

		w.Write([]byte{b})

		if b == '\n' || b == '\r' {
			if current.Len() > 0 {
				lines <- current.String()
				current.Reset()
			}
			continue
		}

		current.WriteByte(b)
	}
}

func handleToken(proc *os.Process, target sshTarget, tok *token.Token, opts Options) error {
	if err := proc.Signal(syscall.SIGSTOP); err != nil {
		return xerr.New(xerr.TokenHandshakeFailure, errors.WithMessage(err, "unable to pause remote shell"))
	}
	defer proc.Signal(syscall.SIGCONT)

	url := cloneURL(target, tok.RepoPath)

	editablePath, err := daemon.RunCapturingPath(daemon.Options{
		RemoteIsFile:         tok.IsFile,
		RemotePath:           tok.RemotePath,
		CloneURL:             url,
		WorkingDirectory:     opts.WorkingDirectory,
		Interval:             opts.Interval,
		PollForRemoteChanges: opts.PollForRemoteChanges,
	})
	if err != nil {
		return xerr.New(xerr.TokenHandshakeFailure, errors.WithMessage(err, "unable to start sync daemon"))
	}

	// Missing editor must not kill the shell session; just warn.
	if _, err := editorlaunch.Launch(opts.Editor, editablePath); err != nil {
		xio.Warning("%v", err)
	}

	return nil
}

// IsInteractiveTerminal reports whether fd 1 is a terminal, used by
// callers deciding whether interception is meaningful at all.
func IsInteractiveTerminal() bool {
	return isatty.IsTerminal(os.Stdout.Fd())
}

// makeStdinRaw puts the controlling terminal into raw mode for the
// duration of an intercepted interactive session, so keystrokes pass
// through to the remote shell unaffected by local line editing around
// the freeze/editor/resume handover, restoring it on return. It is a
// no-op (returning a no-op restore) when stdin isn't a real terminal,
// e.g. under `xeno ssh host cmd` or in tests.
func makeStdinRaw() func() {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return func() {}
	}

	prior, err := term.MakeRaw(fd)
	if err != nil {
		return func() {}
	}

	return func() {
		term.Restore(fd, prior)
	}
}
