package cmd

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/xenoscopic/xeno/internal/journal"
	"github.com/xenoscopic/xeno/internal/registry"
)

var listVerbose bool

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List active xeno sync sessions",
	RunE:  runList,
}

func init() {
	listCmd.Flags().BoolVarP(&listVerbose, "verbose", "v", false, "also show each session's recent journal entries")
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, args []string) error {
	cfg := loadConfig()
	workdir, err := cfg.WorkingDirectory()
	if err != nil {
		return err
	}

	sessions, err := registry.List(workdir)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()

	// Columns are aligned either way and never truncated: two spaces
	// of padding on a real terminal, a single space when piped.
	var w *tabwriter.Writer
	if isatty.IsTerminal(os.Stdout.Fd()) {
		w = tabwriter.NewWriter(out, 0, 2, 2, ' ', 0)
	} else {
		w = tabwriter.NewWriter(out, 0, 0, 1, ' ', 0)
	}

	fmt.Fprintln(w, "PID\tSTATUS\tHOST\tREMOTE PATH\tLOCAL PATH")
	for _, s := range sessions {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n", s.ProcessID, s.SyncStatus, s.Host, s.RemotePath, s.EditablePath())
	}
	w.Flush()

	if listVerbose {
		for _, s := range sessions {
			printJournal(out, s)
		}
	}

	return nil
}

func printJournal(out io.Writer, s registry.Session) {
	db, err := journal.Open(journal.Path(s.RepoPath))
	if err != nil {
		return
	}
	defer db.Close()

	entries, err := db.Recent(5)
	if err != nil || len(entries) == 0 {
		return
	}

	fmt.Fprintf(out, "\npid %d recent activity:\n", s.ProcessID)
	for _, e := range entries {
		fmt.Fprintf(out, "  %d  committed=%v pushed=%v pulled=%v failed=%v %s\n",
			e.OccurredAt, e.Committed, e.Pushed, e.Pulled, e.Failed, e.Detail)
	}
}
