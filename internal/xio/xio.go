// Package xio holds xeno's small set of user-facing output helpers.
package xio

import (
	"fmt"
	"os"
)

func Warning(format string, args ...interface{}) {
	fmt.Fprintln(os.Stderr, "WARNING: "+fmt.Sprintf(format, args...))
}

func Error(format string, args ...interface{}) {
	fmt.Fprintln(os.Stderr, "ERROR: "+fmt.Sprintf(format, args...))
}
