package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/xenoscopic/xeno/internal/daemon"
)

var (
	syncRemotePath string
	syncCloneURL   string
	syncIsFile     bool
	syncNoDaemon   bool
)

// syncCmd is internal: `edit`/`ssh` invoke it indirectly via the
// daemon package rather than shelling out to this subcommand, but it
// is kept as a directly-invocable entry point per spec.md section 6's
// command list ("internal, not for direct use") and for manual
// debugging (`--no-daemon`, supplementing the original's
// commands/sync.py flag of the same name).
var syncCmd = &cobra.Command{
	Use:    "sync",
	Short:  "Start the local sync daemon against a remote repository (internal)",
	Hidden: true,
	RunE:   runSync,
}

func init() {
	syncCmd.Flags().StringVarP(&syncRemotePath, "remote-path", "r", "", "the original remote path being edited")
	syncCmd.Flags().StringVarP(&syncCloneURL, "clone-url", "c", "", "the ssh:// URL of the remote repository to clone")
	syncCmd.Flags().BoolVarP(&syncIsFile, "file", "f", false, "the remote path is a single file, not a directory")
	syncCmd.Flags().BoolVar(&syncNoDaemon, "no-daemon", false, "run the sync loop in the foreground instead of detaching")
	syncCmd.MarkFlagRequired("remote-path")
	syncCmd.MarkFlagRequired("clone-url")
	rootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()

	workdir, err := cfg.WorkingDirectory()
	if err != nil {
		return err
	}

	return daemon.Run(daemon.Options{
		RemoteIsFile:         syncIsFile,
		RemotePath:           syncRemotePath,
		CloneURL:             syncCloneURL,
		WorkingDirectory:     workdir,
		Interval:             cfg.SyncInterval(),
		PollForRemoteChanges: cfg.PollForRemoteChanges(),
		NoDaemon:             syncNoDaemon,
	}, os.Stdout)
}
