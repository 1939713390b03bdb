package contract

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/pflag"

	"github.com/daryltucker/ua-bench/internal/model"
)

// Detector is the engine-specific part of a Go adapter.
type Detector interface {
	// Detect classifies one user-agent string. A returned error is a logical
	// parse failure and is reported in result.err.
	Detect(ua string) (model.CanonicalRecord, error)
}

// DetectorFunc adapts a function to the Detector interface.
type DetectorFunc func(ua string) (model.CanonicalRecord, error)

func (f DetectorFunc) Detect(ua string) (model.CanonicalRecord, error) { return f(ua) }

// Serve runs the adapter side of the protocol: parse --ua, warm up with
// WarmUpInput, time the scored call, report peak RSS and write the envelope
// to stdout. It returns the process exit code.
func Serve(args []string, stdout, stderr io.Writer, version string, d Detector) int {
	fs := pflag.NewFlagSet("adapter", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	ua := fs.String(FlagUA, "", "user-agent string to detect")
	if err := fs.Parse(args); err != nil {
		return 2
	}
	hasUA := fs.Changed(FlagUA)

	ready := time.Now()
	_, _ = d.Detect(WarmUpInput)
	initTime := time.Since(ready)

	env := Envelope{
		HasUA:    hasUA,
		Headers:  map[string]string{HeaderUserAgent: *ua},
		InitTime: initTime.Seconds(),
		Version:  version,
	}

	if hasUA {
		start := time.Now()
		rec, err := d.Detect(*ua)
		env.ParseTime = time.Since(start).Seconds()

		if err != nil {
			env.Result.Err = &ErrorDescriptor{Message: err.Error()}
		} else {
			norm := model.Normalize(rec)
			env.Result.Parsed = &norm
		}
	}

	env.MemoryUsed = PeakRSS()

	if err := Encode(stdout, env); err != nil {
		fmt.Fprintf(stderr, "write envelope: %v\n", err)
		return 1
	}
	return 0
}
