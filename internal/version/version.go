// Package version reports the ingester build.
//
// Set at link time:
//
//	go build -ldflags "-X github.com/rickgao/tickstore/internal/version.Version=1.0.0 \
//	                   -X github.com/rickgao/tickstore/internal/version.Commit=$(git rev-parse --short HEAD) \
//	                   -X github.com/rickgao/tickstore/internal/version.BuildTime=$(date -u +%Y-%m-%dT%H:%M:%SZ)" \
//	    ./cmd/ingester
package version

import "runtime"

// Overridden via ldflags.
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

// Info is the build description served on /health.
type Info struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	BuildTime string `json:"build_time"`
	GoVersion string `json:"go_version"`
}

// Get returns the current build info.
func Get() Info {
	return Info{
		Version:   Version,
		Commit:    Commit,
		BuildTime: BuildTime,
		GoVersion: runtime.Version(),
	}
}

// String returns "version (commit) built time".
func String() string {
	return Version + " (" + Commit + ") built " + BuildTime
}
