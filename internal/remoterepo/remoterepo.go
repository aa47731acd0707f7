// Package remoterepo implements the remote repository builder: the
// routine that runs on the remote host to turn a user-supplied path
// into a bare, git-backed working tree ready for cloning. See
// spec.md section 4.4.
package remoterepo

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/xenoscopic/xeno/internal/fs"
	"github.com/xenoscopic/xeno/internal/receivehook"
	"github.com/xenoscopic/xeno/internal/token"
	"github.com/xenoscopic/xeno/internal/vcs"
	"github.com/xenoscopic/xeno/internal/xerr"
)

// scmDirs are nested other-VCS directories always excluded from a
// directory-mode remote repository, per spec.md section 4.4 step 5.
var scmDirs = []string{".git", ".svn", ".hg"}

const placeholderAuthor = "xeno <xeno@xeno>"

// Options configures Build. Additional holds caller-supplied exclude
// patterns (standard gitignore grammar), appended last so that
// "!"-prefixed re-inclusions can override the built-in rules.
type Options struct {
	WorkingDirectory string
	Additional       []string
	// SkipBuiltinExcludes disables layering the common
	// dependency/build-artifact ignore set on top of the
	// spec-mandated minimal excludes. Directory-mode only.
	SkipBuiltinExcludes bool
}

// Result describes a freshly built remote repository.
type Result struct {
	RepoPath   string
	RemotePath string
	IsFile     bool
	Token      string
}

// Build performs the full remote-repository-builder routine described
// in spec.md section 4.4, returning the discovery token alongside the
// repository metadata. On any failure it removes a partially created
// repository directory before returning.
func Build(path string, opts Options) (Result, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return Result{}, xerr.New(xerr.PathMissing, err)
	}
	resolved, err := filepath.EvalSymlinks(abs)
	if err != nil {
		return Result{}, xerr.New(xerr.PathMissing, errors.Wrapf(err, "requested path does not exist: %s", abs))
	}

	info, err := os.Stat(resolved)
	if err != nil {
		return Result{}, xerr.New(xerr.PathMissing, errors.Wrapf(err, "requested path does not exist: %s", resolved))
	}
	isFile := !info.IsDir()

	workTree := resolved
	if isFile {
		workTree = filepath.Dir(resolved)
	}

	repoPath := filepath.Join(opts.WorkingDirectory, "remote-"+newID())

	if err := vcs.Init(repoPath, workTree); err != nil {
		os.RemoveAll(repoPath)
		return Result{}, errors.WithMessage(err, "unable to initialize remote repository")
	}

	if err := writeExcludes(repoPath, workTree, resolved, isFile, opts); err != nil {
		os.RemoveAll(repoPath)
		return Result{}, errors.WithMessage(err, "unable to write exclude rules")
	}

	if err := seedInitialCommit(repoPath); err != nil {
		os.RemoveAll(repoPath)
		return Result{}, errors.WithMessage(err, "unable to add initial commit to remote repository")
	}

	if err := vcs.Branch(repoPath, "incoming"); err != nil {
		os.RemoveAll(repoPath)
		return Result{}, errors.WithMessage(err, "unable to add incoming branch to remote repository")
	}

	if err := installHook(repoPath); err != nil {
		os.RemoveAll(repoPath)
		return Result{}, errors.WithMessage(err, "unable to install receive-side hook")
	}

	if err := vcs.ConfigSet(repoPath, "xeno.remoteIsFile", boolString(isFile)); err != nil {
		os.RemoveAll(repoPath)
		return Result{}, err
	}
	if err := vcs.ConfigSet(repoPath, "xeno.remotePath", resolved); err != nil {
		os.RemoveAll(repoPath)
		return Result{}, err
	}

	return Result{
		RepoPath:   repoPath,
		RemotePath: resolved,
		IsFile:     isFile,
		Token:      token.EncodeKnown(isFile, resolved, repoPath),
	}, nil
}

func newID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

func boolString(b bool) string {
	if b {
		return "True"
	}
	return "False"
}

// writeExcludes appends exclusion rules to the bare repository's
// info/exclude file, following spec.md section 4.4 step 5 exactly for
// the mandatory rules, then layering the built-in ignore set (ported
// from the teacher's dependency/build-artifact excludes, see
// DESIGN.md) and finally the caller-supplied patterns.
func writeExcludes(repoPath, workTree, target string, isFile bool, opts Options) error {
	f, err := os.OpenFile(filepath.Join(repoPath, "info", "exclude"), os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	defer f.Close()

	var lines []string

	if isFile {
		lines = append(lines, "*", "!"+filepath.Base(target))
	} else {
		if rel, err := filepath.Rel(workTree, repoPath); err == nil && !strings.HasPrefix(rel, "..") {
			lines = append(lines, rel)
		}
		lines = append(lines, scmDirs...)

		if !opts.SkipBuiltinExcludes {
			lines = append(lines, fs.BuiltinExcludes...)
		}
	}

	lines = append(lines, opts.Additional...)

	for _, l := range lines {
		if _, err := f.WriteString(l + "\n"); err != nil {
			return err
		}
	}
	return nil
}

// seedInitialCommit adds every created file under the work tree and
// commits it with a placeholder author and empty message, allowing an
// empty commit so that an entirely-excluded work tree still seeds a
// usable history (spec.md section 4.4 step 6).
func seedInitialCommit(repoPath string) error {
	status, err := vcs.Status(repoPath)
	if err != nil {
		return err
	}
	if err := vcs.Add(repoPath, status.Created); err != nil {
		return err
	}
	return vcs.Commit(repoPath, vcs.CommitOptions{
		Message:    "",
		Author:     placeholderAuthor,
		AllowEmpty: true,
	})
}

func installHook(repoPath string) error {
	hookPath := filepath.Join(repoPath, "hooks", "post-receive")
	if err := os.WriteFile(hookPath, []byte(receivehook.PostReceiveScript), 0700); err != nil {
		return err
	}
	return os.Chmod(hookPath, 0700)
}
