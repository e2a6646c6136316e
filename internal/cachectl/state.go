// Package cachectl is the offline cache controller: a versioned set of
// cache buckets driven by lifecycle events (install, activate) and by the
// requests, sync signals, pushes and page messages it receives.
package cachectl

import "fmt"

// State is the controller's lifecycle position.
type State int32

const (
	Uninstalled State = iota
	Installing
	Waiting
	Active
)

func (s State) String() string {
	switch s {
	case Uninstalled:
		return "uninstalled"
	case Installing:
		return "installing"
	case Waiting:
		return "waiting"
	case Active:
		return "active"
	default:
		return fmt.Sprintf("state(%d)", int32(s))
	}
}

// MarshalText lets State appear as its name in JSON and logs.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

const (
	// DefaultVersion is the cache version tag embedded in bucket names.
	DefaultVersion = "1.2.0"
	// OfflinePath is the reserved fallback document.
	OfflinePath = "/offline"
	// SyncTag is the only background sync tag the controller acts on.
	SyncTag = "sync-user-data"
)

// StaticManifest lists the critical paths cached on install.
var StaticManifest = []string{"/", OfflinePath, "/manifest.json", "/favicon.ico"}

// Buckets are the names owned by one cache version.
type Buckets struct {
	Main    string
	Static  string
	Dynamic string
}

// BucketsFor returns the bucket names for version.
func BucketsFor(version string) Buckets {
	return Buckets{
		Main:    "clock-time-v" + version,
		Static:  "clock-time-static-v" + version,
		Dynamic: "clock-time-dynamic-v" + version,
	}
}

// Owns reports whether name belongs to this version.
func (b Buckets) Owns(name string) bool {
	return name == b.Main || name == b.Static || name == b.Dynamic
}

func inManifest(path string) bool {
	for _, p := range StaticManifest {
		if p == path {
			return true
		}
	}
	return false
}
