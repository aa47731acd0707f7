package cmd

import (
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/xenoscopic/xeno/internal/config"
	"github.com/xenoscopic/xeno/internal/daemon"
	"github.com/xenoscopic/xeno/internal/editorlaunch"
	"github.com/xenoscopic/xeno/internal/pathspec"
	"github.com/xenoscopic/xeno/internal/remoterepo"
	"github.com/xenoscopic/xeno/internal/token"
	"github.com/xenoscopic/xeno/internal/xerr"
)

var editIgnorePatterns []string

var editCmd = &cobra.Command{
	Use:   "edit [[user@]host[:port]:]file_path",
	Short: "Edit a local or remote path",
	Args:  cobra.ExactArgs(1),
	RunE:  runEdit,
}

func init() {
	editCmd.Flags().StringArrayVarP(&editIgnorePatterns, "ignore", "i", nil, "additional gitignore-style exclude pattern, appended after the built-in rules")
	rootCmd.AddCommand(editCmd)
}

// inSSHSession reports whether a secure-shell connection marker is
// present in the environment, per spec.md section 6's "Environment"
// entry: its presence switches `edit` from launching the editor
// locally to building a remote repository and printing a token.
func inSSHSession() bool {
	return os.Getenv("SSH_CONNECTION") != ""
}

func runEdit(cmd *cobra.Command, args []string) error {
	spec, err := pathspec.Parse(args[0])
	if err != nil {
		return err
	}

	cfg := loadConfig()

	if spec.IsLocal() {
		if inSSHSession() {
			return buildRemoteRepoAndPrintToken(cfg, spec.FilePath)
		}
		return launchEditorLocally(cfg.Editor(), spec.FilePath)
	}

	return editViaSSH(cfg, spec)
}

func buildRemoteRepoAndPrintToken(cfg *config.Config, path string) error {
	workdir, err := cfg.WorkingDirectory()
	if err != nil {
		return err
	}

	result, err := remoterepo.Build(path, remoterepo.Options{
		WorkingDirectory: workdir,
		Additional:       editIgnorePatterns,
	})
	if err != nil {
		return err
	}

	fmt.Println(result.Token)
	return nil
}

func launchEditorLocally(editor, path string) error {
	code, err := editorlaunch.Launch(editor, path)
	if err != nil {
		return err
	}
	os.Exit(code)
	return nil
}

// editViaSSH implements the remote branch of spec.md section 4.4/4.6:
// invoke `xeno edit` on the remote host over ssh to obtain a discovery
// token, start the local sync daemon against the resulting clone URL,
// then launch the editor on the synced path.
func editViaSSH(cfg *config.Config, spec pathspec.Spec) error {
	tok, err := requestRemoteToken(spec)
	if err != nil {
		return err
	}

	workdir, err := cfg.WorkingDirectory()
	if err != nil {
		return err
	}

	editablePath, err := daemon.RunCapturingPath(daemon.Options{
		RemoteIsFile:         tok.IsFile,
		RemotePath:           tok.RemotePath,
		CloneURL:             cloneURL(spec, tok.RepoPath),
		WorkingDirectory:     workdir,
		Interval:             cfg.SyncInterval(),
		PollForRemoteChanges: cfg.PollForRemoteChanges(),
	})
	if err != nil {
		return xerr.New(xerr.TokenHandshakeFailure, err)
	}

	return launchEditorLocally(cfg.Editor(), editablePath)
}

// requestRemoteToken runs `xeno edit <path>` on the remote host over
// ssh and decodes the discovery token from its output, mirroring the
// original's initialization_token_from_remote_path.
func requestRemoteToken(spec pathspec.Spec) (*token.Token, error) {
	sshArgs := []string{}
	if spec.HasPort() {
		sshArgs = append(sshArgs, "-p", strconv.Itoa(spec.Port))
	}

	target := spec.Host
	if spec.User != "" {
		target = spec.User + "@" + spec.Host
	}
	sshArgs = append(sshArgs, target)
	sshArgs = append(sshArgs, "xeno edit "+strings.ReplaceAll(spec.FilePath, " ", "\\ "))

	out, err := exec.Command("ssh", sshArgs...).Output()
	if err != nil {
		return nil, xerr.New(xerr.TokenHandshakeFailure, err)
	}

	tok := token.Decode(strings.TrimSpace(string(out)))
	if tok == nil {
		return nil, xerr.New(xerr.TokenHandshakeFailure, fmt.Errorf("unable to find a discovery token in remote output"))
	}
	return tok, nil
}

func cloneURL(spec pathspec.Spec, repoPath string) string {
	var b strings.Builder
	b.WriteString("ssh://")
	if spec.User != "" {
		b.WriteString(spec.User)
		b.WriteString("@")
	}
	b.WriteString(spec.Host)
	if spec.HasPort() {
		fmt.Fprintf(&b, ":%d", spec.Port)
	}
	b.WriteString(repoPath)
	return b.String()
}
