package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/xenoscopic/xeno/internal/interceptor"
)

var sshCmd = &cobra.Command{
	Use:                "ssh [args...]",
	Short:              "Run an SSH session, transparently handing off to xeno when the remote invokes an edit",
	DisableFlagParsing: true, // every flag belongs to ssh(1), not us
	RunE:               runSSH,
}

func init() {
	rootCmd.AddCommand(sshCmd)
}

func runSSH(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()

	workdir, err := cfg.WorkingDirectory()
	if err != nil {
		return err
	}

	code, err := interceptor.Run(interceptor.Options{
		SSHArgs:              args,
		WorkingDirectory:     workdir,
		Editor:               cfg.Editor(),
		Interval:             cfg.SyncInterval(),
		PollForRemoteChanges: cfg.PollForRemoteChanges(),
	})
	if err != nil {
		return err
	}

	os.Exit(code)
	return nil
}
