package tzdetect

import (
	"os"
	"path/filepath"
	"testing"
)

func TestZoneFromPath(t *testing.T) {
	tests := map[string]string{
		"/usr/share/zoneinfo/Europe/Berlin":       "Europe/Berlin",
		"/usr/share/zoneinfo/posix/Europe/Berlin": "Europe/Berlin",
		"/usr/share/zoneinfo/right/Asia/Tokyo":    "Asia/Tokyo",
		"/usr/share/zoneinfo/UTC":                 "UTC",
		"/usr/share/zoneinfo/":                    "",
		"/etc/localtime":                          "",
	}
	for path, want := range tests {
		if got := zoneFromPath(path); got != want {
			t.Errorf("zoneFromPath(%q) = %q, want %q", path, got, want)
		}
	}
}

func TestSystemTimezoneFromPosixLink(t *testing.T) {
	dir := t.TempDir()
	zone := filepath.Join(dir, "zoneinfo", "posix", "Europe", "Berlin")
	if err := os.MkdirAll(filepath.Dir(zone), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(zone, []byte("TZif"), 0o644); err != nil {
		t.Fatal(err)
	}
	link := filepath.Join(dir, "localtime")
	if err := os.Symlink(zone, link); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}

	t.Setenv("TZ", "")
	os.Unsetenv("TZ")
	old := localtimePath
	localtimePath = link
	t.Cleanup(func() { localtimePath = old })

	tz, err := SystemTimezone()
	if err != nil {
		t.Fatal(err)
	}
	if tz != "Europe/Berlin" {
		t.Errorf("SystemTimezone = %q, want Europe/Berlin", tz)
	}
}
