// main.go soir entry point
package main

import (
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/soir-live/soir/cmd"
	"github.com/soir-live/soir/internal/buildinfo"
	"github.com/soir-live/soir/internal/conf"
)

// version and buildDate are populated at build time via:
//
//	go build -ldflags "-X main.version=1.2.3 -X main.buildDate=2026-07-30T00:00:00Z"
var (
	version   = "dev"
	buildDate = "unknown"
)

func main() {
	settings, err := conf.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error loading configuration: %v\n", err)
		os.Exit(1)
	}

	info := buildinfo.NewContext(version, buildDate, systemID())

	if err := cmd.RootCommand(settings, info).Execute(); err != nil {
		os.Exit(1)
	}
}

// systemID derives a per-process identifier for diagnostics events and the
// status endpoint. It is not persisted (SPEC_FULL.md carries no session
// state), so it is freshly generated on every process start.
func systemID() string {
	return uuid.NewString()
}
