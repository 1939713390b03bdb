/*
PURPOSE:
  Reference adapter wrapping github.com/mssola/useragent behind the
  adapter protocol. Doubles as a template for Go adapters and as a
  real engine for end-to-end runs.

REQUIREMENTS:
  User-specified:
  - Speak the adapter protocol: optional --ua, one envelope on stdout.

  Implementation-discovered:
  - The library has no device type and no robot version split; those
    canonical fields stay unsupported.

ARCHITECTURE INTEGRATION:
  - Calls: internal/contract.Serve()

USAGE:
  go build -o bin/ua-adapter-mssola ./cmd/ua-adapter-mssola
  ./bin/ua-adapter-mssola --ua "Mozilla/5.0 ..."

RELATED FILES:
  - internal/contract/serve.go
*/

package main

import (
	"os"
	"runtime/debug"

	"github.com/daryltucker/ua-bench/internal/contract"
)

const modulePath = "github.com/mssola/useragent"

func main() {
	os.Exit(contract.Serve(os.Args[1:], os.Stdout, os.Stderr, engineVersion(), detector{}))
}

// engineVersion reports the linked library version from the build info.
func engineVersion() string {
	info, ok := debug.ReadBuildInfo()
	if !ok {
		return "unknown"
	}
	for _, dep := range info.Deps {
		if dep.Path == modulePath {
			return dep.Version
		}
	}
	return "unknown"
}
