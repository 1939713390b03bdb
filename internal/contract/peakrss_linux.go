//go:build linux

package contract

import "golang.org/x/sys/unix"

// PeakRSS returns the peak resident set size of the current process in bytes.
func PeakRSS() int64 {
	var ru unix.Rusage
	if err := unix.Getrusage(unix.RUSAGE_SELF, &ru); err != nil {
		return 0
	}
	// ru_maxrss is in kilobytes on Linux.
	return int64(ru.Maxrss) * 1024
}
