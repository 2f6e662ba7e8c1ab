//go:build linux
// +build linux

package euler

import (
	perf "github.com/hodgesds/perf-utils"
)

// CountHardware runs f twice under hardware counters and reports retired
// instructions and CPU cycles. Linux only; other platforms report
// unsupported.
func CountHardware(f func()) (instructions, cycles uint64, err error) {
	pv, err := perf.CPUInstructions(func() error {
		f()
		return nil
	})
	if err != nil {
		return
	}
	instructions = pv.Value
	pv, err = perf.CPUCycles(func() error {
		f()
		return nil
	})
	if err != nil {
		return
	}
	cycles = pv.Value
	return
}
