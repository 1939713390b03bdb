//go:build linux

package invoker

import (
	"fmt"
	"os"
	"syscall"

	"golang.org/x/sys/unix"
)

// applyLimits sets rlimits on an already started child. There is a short
// window between exec and prlimit in which the child runs unlimited.
func applyLimits(pid int, l Limits) error {
	if l.MaxMemoryBytes > 0 {
		rl := unix.Rlimit{Cur: uint64(l.MaxMemoryBytes), Max: uint64(l.MaxMemoryBytes)}
		if err := unix.Prlimit(pid, unix.RLIMIT_AS, &rl, nil); err != nil {
			return fmt.Errorf("RLIMIT_AS: %w", err)
		}
	}
	if l.MaxCPUSeconds > 0 {
		rl := unix.Rlimit{Cur: uint64(l.MaxCPUSeconds), Max: uint64(l.MaxCPUSeconds)}
		if err := unix.Prlimit(pid, unix.RLIMIT_CPU, &rl, nil); err != nil {
			return fmt.Errorf("RLIMIT_CPU: %w", err)
		}
	}
	return nil
}

// peakRSS returns the child's peak resident set size in bytes.
func peakRSS(state *os.ProcessState) *int64 {
	if state == nil {
		return nil
	}
	ru, ok := state.SysUsage().(*syscall.Rusage)
	if !ok || ru == nil {
		return nil
	}
	v := int64(ru.Maxrss) * 1024 // kilobytes on Linux
	return &v
}
