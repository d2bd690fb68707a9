package cmd

import (
	"fmt"
	"io"

	perf "github.com/hodgesds/perf-utils"
)

// withInstructionCount runs f under a hardware instruction counter. When the
// counter can't be opened (perf_event_paranoid, containers) f runs uncounted.
func withInstructionCount(out io.Writer, f func() error) error {
	var (
		ran  bool
		ferr error
	)
	pv, err := perf.CPUInstructions(func() error {
		ran = true
		ferr = f()
		return ferr
	})
	if !ran {
		fmt.Fprintf(out, "perf counters unavailable: %v\n", err)
		return f()
	}
	if ferr != nil {
		return ferr
	}
	if err != nil {
		fmt.Fprintf(out, "perf counters unavailable: %v\n", err)
		return nil
	}
	fmt.Fprintf(out, "CPU instructions: %d\n", pv.Value)
	return nil
}
