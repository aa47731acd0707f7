// Package editorlaunch launches the user's editor on a local path and
// waits for it to exit, mirroring spec.md's "editor process
// launching" external collaborator (out of scope for format/config,
// but the launch mechanics live here since every command path needs
// it). Grounded on the teacher's cmd/co/cmd/open.go invocation shape.
package editorlaunch

import (
	"os"
	"os/exec"

	"github.com/xenoscopic/xeno/internal/xerr"
)

// Launch runs editor against path, connected to the calling
// process's stdio, and blocks until it exits. It returns the editor's
// exit code on a normal (non-zero or zero) exit.
func Launch(editor, path string) (int, error) {
	if editor == "" {
		return 0, xerr.New(xerr.EditorUnavailable, errNoEditor{})
	}

	if _, err := exec.LookPath(editor); err != nil {
		return 0, xerr.New(xerr.EditorUnavailable, err)
	}

	cmd := exec.Command(editor, path)
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

	return 0, xerr.New(xerr.EditorUnavailable, err)
}

type errNoEditor struct{}

func (errNoEditor) Error() string {
	return "unable to identify editor: set the xeno 'core.editor' option or the EDITOR environment variable"
}
