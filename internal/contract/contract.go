/*
PURPOSE:
  The Adapter Contract: the process-level protocol every engine wrapper
  implements, whatever its native language.

REQUIREMENTS:
  User-specified:
  - Invocation: optional `--ua <string>`; no flag = warm-up path only.
  - stdout: exactly one JSON document with the keys hasUa, headers, result,
    parse_time, init_time, memory_used, version.
  - Exit 0 means the adapter believes it succeeded; logical parse failures
    travel in result.err.
  - Warm-up with the fixed sentinel input before any scored call.

  Implementation-discovered:
  - Decoding is strict: unknown or missing keys and wrong types are
    rejected, never coerced. Callers classify that as MalformedOutput.

ARCHITECTURE INTEGRATION:
  - Used by: internal/invoker (Args, Decode), cmd/ua-adapter-* (Serve)
  - Depends on: internal/model

ERROR HANDLING:
  - Every validation error wraps ErrMalformed.

RELATED FILES:
  - envelope.go, serve.go
*/

package contract

const (
	// WarmUpInput is detected once before any scored call and never scored.
	WarmUpInput = "Test String"

	// FlagUA is the argument carrying the input string.
	FlagUA = "ua"

	// HeaderUserAgent is the header key echoed back in the envelope.
	HeaderUserAgent = "user-agent"
)

// Args returns the argument list that passes input to an adapter.
func Args(input string) []string {
	return []string{"--" + FlagUA, input}
}
