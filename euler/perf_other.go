//go:build !linux
// +build !linux

package euler

import "fmt"

// CountHardware reports hardware instruction and cycle counts on platforms
// with perf events; everywhere else it runs f once and reports unsupported.
func CountHardware(f func()) (instructions, cycles uint64, err error) {
	f()
	err = fmt.Errorf("hardware performance counters are only supported on linux")
	return
}
