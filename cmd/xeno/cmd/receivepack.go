package cmd

import (
	"github.com/spf13/cobra"

	"github.com/xenoscopic/xeno/internal/receivehook"
)

var receivePackCmd = &cobra.Command{
	Use:                "receive-pack <repo-path> [git-receive-pack args...]",
	Short:              "Wrap git-receive-pack with a pre-commit step (installed remotely)",
	DisableFlagParsing: true, // every flag belongs to git-receive-pack, not us
	Args:               cobra.MinimumNArgs(0),
	RunE:               runReceivePack,
}

func init() {
	rootCmd.AddCommand(receivePackCmd)
}

func runReceivePack(cmd *cobra.Command, args []string) error {
	repoPath := ""
	if len(args) > 0 {
		repoPath = args[0]
	}
	return receivehook.Run(repoPath, args)
}
