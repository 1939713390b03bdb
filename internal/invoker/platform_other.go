//go:build !linux

package invoker

import (
	"errors"
	"os"
)

var errLimitsUnsupported = errors.New("resource limits are only enforced on linux")

func applyLimits(_ int, l Limits) error {
	if l.MaxMemoryBytes > 0 || l.MaxCPUSeconds > 0 {
		return errLimitsUnsupported
	}
	return nil
}

// peakRSS is only observed on linux.
func peakRSS(*os.ProcessState) *int64 {
	return nil
}
