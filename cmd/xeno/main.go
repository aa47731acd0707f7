// Command xeno implements transparent synchronous remote file/directory
// editing over SSH, backed by an ephemeral git working tree. See
// spec.md for the protocol and internal/*/*.go for the implementation.
package main

import (
	"fmt"
	"os"

	"github.com/xenoscopic/xeno/cmd/xeno/cmd"
	"github.com/xenoscopic/xeno/internal/daemon"
)

func main() {
	// The sync daemon re-execs this same binary to detach itself from
	// its controlling terminal (Go has no fork()); intercept those
	// hidden re-exec stages before cobra ever sees argv, matching
	// spec.md section 9's double-fork-equivalent guidance.
	if handled, err := daemon.DispatchStage(os.Args[1:]); handled {
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		os.Exit(0)
	}

	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
