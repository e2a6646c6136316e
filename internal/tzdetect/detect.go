package tzdetect

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Tiliavir/clocktime/internal/model"
)

// Source reports the environment's IANA timezone name.
type Source func() (string, error)

// Static returns a Source that always reports tz.
func Static(tz string) Source {
	return func() (string, error) { return tz, nil }
}

// Detect reads the timezone from src and resolves it. Errors and panics
// raised by src become an unmatched result; Detect never panics.
func Detect(src Source, countries []model.Country) model.DetectionResult {
	return Resolver{}.Detect(src, countries)
}

// Detect is like the package-level Detect but uses r's alias table.
func (r Resolver) Detect(src Source, countries []model.Country) (res model.DetectionResult) {
	defer func() {
		if p := recover(); p != nil {
			res = failed(fmt.Errorf("%v", p))
		}
	}()

	tz, err := src()
	if err != nil {
		return failed(err)
	}
	return r.Resolve(tz, countries)
}

func failed(err error) model.DetectionResult {
	return model.DetectionResult{
		Timezone: FallbackTimezone,
		Error:    fmt.Sprintf("Timezone detection failed: %v", err),
	}
}

var localtimePath = "/etc/localtime"

// SystemTimezone reports the host's IANA zone from $TZ, the /etc/localtime
// link, or a named time.Local, in that order. An empty string with a nil
// error means the host exposes no zone name.
func SystemTimezone() (string, error) {
	if tz, ok := os.LookupEnv("TZ"); ok {
		tz = strings.TrimPrefix(tz, ":")
		if tz == "" {
			return "UTC", nil
		}
		if _, err := time.LoadLocation(tz); err != nil {
			return "", fmt.Errorf("invalid TZ %q: %w", tz, err)
		}
		return tz, nil
	}

	if target, err := filepath.EvalSymlinks(localtimePath); err == nil {
		if name := zoneFromPath(target); name != "" {
			return name, nil
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("reading %s: %w", localtimePath, err)
	}

	if name := time.Local.String(); name != "Local" {
		return name, nil
	}
	return "", nil
}

// zoneFromPath extracts the zone name from a zoneinfo file path, skipping
// the posix/ and right/ subtrees some distributions link into.
func zoneFromPath(target string) string {
	_, name, ok := strings.Cut(filepath.ToSlash(target), "zoneinfo/")
	if !ok {
		return ""
	}
	for _, prefix := range []string{"posix/", "right/"} {
		if rest, found := strings.CutPrefix(name, prefix); found {
			return rest
		}
	}
	return name
}
