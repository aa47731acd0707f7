// Package cmd implements xeno's cobra command tree: one file per
// subcommand, following the teacher's cmd/co/cmd layout (a
// package-level *cobra.Command per file, wired together in root.go's
// init).
package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/xenoscopic/xeno/internal/config"
)

var rootCmd = &cobra.Command{
	Use:   "xeno",
	Short: "Transparent synchronous remote file/directory editing over SSH",
	Long: `xeno lets you edit a remote file or directory as if it were local:
it builds an ephemeral git-backed working tree on the remote host,
clones it locally, and keeps the two in sync on a fixed interval while
you edit with your normal local editor.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() error {
	return rootCmd.Execute()
}

// loadConfig loads ~/.xenoconfig, exiting the command with a one-line
// message on failure per spec.md section 7 ("configuration errors are
// fatal at the invocation point").
func loadConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	return cfg
}
