//go:build !linux && !darwin

package contract

import "runtime"

// PeakRSS approximates peak usage with the memory obtained from the OS by
// the Go runtime; rusage is not available on this platform.
func PeakRSS() int64 {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	return int64(ms.Sys)
}
