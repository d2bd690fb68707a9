//go:build !linux

package cmd

import (
	"fmt"
	"io"
)

func withInstructionCount(out io.Writer, f func() error) error {
	fmt.Fprintf(out, "perf counters are only available on linux\n")
	return f()
}
