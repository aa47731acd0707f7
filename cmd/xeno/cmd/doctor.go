package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/xenoscopic/xeno/internal/doctor"
)

var doctorRepair bool

// doctorCmd is a supplemented subcommand (not in spec.md's
// distillation; see SPEC_FULL.md's "SUPPLEMENTED FEATURES"): it scans
// for local repositories whose daemon died without running cleanup
// (spec.md section 5's "leaked local directory" note) and optionally
// repairs them.
var doctorCmd = &cobra.Command{
	Use:   "doctor",
	Short: "Find and optionally repair stale/leaked xeno sync sessions",
	RunE:  runDoctor,
}

func init() {
	doctorCmd.Flags().BoolVar(&doctorRepair, "repair", false, "remove leaked local session directories (best-effort remote notification first)")
	rootCmd.AddCommand(doctorCmd)
}

func runDoctor(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	workdir, err := cfg.WorkingDirectory()
	if err != nil {
		return err
	}

	stale, err := doctor.FindStaleSessions(workdir)
	if err != nil {
		return err
	}

	if len(stale) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "no stale sessions found")
		return nil
	}

	for _, s := range stale {
		fmt.Fprintf(cmd.OutOrStdout(), "stale session: %s (pid %d, clone %s)\n", s.RepoPath, s.LastPID, s.CloneURL)
		if doctorRepair {
			if err := doctor.Repair(s); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "  unable to repair: %v\n", err)
				continue
			}
			fmt.Fprintln(cmd.OutOrStdout(), "  repaired")
		}
	}

	return nil
}
