package cmd

import (
	"github.com/spf13/cobra"

	"github.com/xenoscopic/xeno/internal/registry"
)

var stopAll bool

var stopCmd = &cobra.Command{
	Use:   "stop [pid]",
	Short: "Stop an active sync session",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runStop,
}

func init() {
	stopCmd.Flags().BoolVarP(&stopAll, "all", "a", false, "stop every active session")
	rootCmd.AddCommand(stopCmd)
}

func runStop(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	workdir, err := cfg.WorkingDirectory()
	if err != nil {
		return err
	}

	if stopAll {
		return registry.StopAll(workdir)
	}

	session, err := selectSession(workdir, args, "Stop which session?")
	if err != nil {
		return err
	}

	return registry.Stop(session.ProcessID)
}
