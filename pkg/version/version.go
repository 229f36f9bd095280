package version

import (
	"fmt"
	"runtime"
)

// Set at build time via -ldflags
var (
	Version = "unknown"
	Commit  = "unknown"
)

func PrintableVersion() string {
	return fmt.Sprintf("%s\t%s\t%s\n", Version, Commit, runtime.Version())
}
