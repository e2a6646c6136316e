package tzdetect_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/Tiliavir/clocktime/internal/catalog"
	"github.com/Tiliavir/clocktime/internal/model"
	"github.com/Tiliavir/clocktime/internal/tzdetect"
)

func table() []model.Country {
	return []model.Country{
		{Name: "United States", Timezone: "America/New_York", Code: "US", Flag: "🇺🇸"},
		{Name: "Canada", Timezone: "America/Toronto", Code: "CA", Flag: "🇨🇦"},
		{Name: "Germany", Timezone: "Europe/Berlin", Code: "DE", Flag: "🇩🇪"},
		{Name: "United Kingdom", Timezone: "Europe/London", Code: "GB", Flag: "🇬🇧"},
		{Name: "Japan", Timezone: "Asia/Tokyo", Code: "JP", Flag: "🇯🇵"},
	}
}

func TestResolveExactMatch(t *testing.T) {
	countries := table()
	for _, c := range countries {
		res := tzdetect.Resolve(c.Timezone, countries)
		if !res.Detected || res.Country == nil {
			t.Fatalf("Resolve(%q): not detected: %+v", c.Timezone, res)
		}
		if res.Country.Code != c.Code {
			t.Errorf("Resolve(%q) = %s, want %s", c.Timezone, res.Country.Code, c.Code)
		}
		if res.Error != "" {
			t.Errorf("Resolve(%q): unexpected error %q", c.Timezone, res.Error)
		}
	}
}

func TestResolveAlias(t *testing.T) {
	tests := []struct {
		tz   string
		want string
	}{
		{"Europe/Brussels", "DE"},
		{"Europe/Paris", "DE"},
		{"GB-Eire", "GB"},
		{"Japan", "JP"},
		{"America/Detroit", "US"},
	}
	for _, tt := range tests {
		res := tzdetect.Resolve(tt.tz, table())
		if !res.Detected || res.Country == nil {
			t.Fatalf("Resolve(%q): not detected", tt.tz)
		}
		if res.Country.Code != tt.want {
			t.Errorf("Resolve(%q) = %s, want %s", tt.tz, res.Country.Code, tt.want)
		}
		if res.Timezone != tt.tz {
			t.Errorf("Resolve(%q).Timezone = %q", tt.tz, res.Timezone)
		}
	}
}

func TestResolveBrusselsScenario(t *testing.T) {
	res := tzdetect.Resolve("Europe/Brussels", catalog.Countries())
	if !res.Detected {
		t.Fatalf("expected detection, got %+v", res)
	}
	if res.Country.Timezone != "Europe/Berlin" {
		t.Errorf("country timezone = %q, want Europe/Berlin", res.Country.Timezone)
	}
}

func TestResolveExactBeatsAlias(t *testing.T) {
	// Europe/Paris is in the Berlin alias group but has its own entry here.
	countries := append(table(), model.Country{Name: "France", Timezone: "Europe/Paris", Code: "FR"})
	res := tzdetect.Resolve("Europe/Paris", countries)
	if res.Country == nil || res.Country.Code != "FR" {
		t.Fatalf("Resolve(Europe/Paris) = %+v, want FR", res.Country)
	}
}

func TestResolveAliasGroupWithoutCountryFallsThrough(t *testing.T) {
	r := tzdetect.Resolver{Aliases: []tzdetect.AliasGroup{
		{Canonical: "Europe/Nowhere", Members: []string{"Europe/Vienna"}},
		{Canonical: "Europe/London", Members: []string{"Europe/Vienna"}},
	}}
	res := r.Resolve("Europe/Vienna", table())
	if res.Country == nil || res.Country.Code != "GB" {
		t.Fatalf("Resolve = %+v, want GB from second group", res.Country)
	}
}

func TestResolveRegionFallbackFirstInTableOrder(t *testing.T) {
	res := tzdetect.Resolve("America/Unknown_City", table())
	if !res.Detected || res.Country == nil {
		t.Fatalf("expected region fallback, got %+v", res)
	}
	if res.Country.Code != "US" {
		t.Errorf("region fallback = %s, want US (first America/ entry)", res.Country.Code)
	}
}

func TestResolveRegionFallbackIsPlausibleNotExact(t *testing.T) {
	// Asia/Kathmandu has no entry and no alias; any Asia/ country is accepted.
	res := tzdetect.Resolve("Asia/Kathmandu", table())
	if res.Country == nil || res.Country.Code != "JP" {
		t.Fatalf("Resolve(Asia/Kathmandu) = %+v, want JP", res.Country)
	}
}

func TestResolveNoMatch(t *testing.T) {
	res := tzdetect.Resolve("Antarctica/Vostok", table())
	if res.Detected || res.Country != nil {
		t.Fatalf("expected no match, got %+v", res)
	}
	if !strings.Contains(res.Error, "Antarctica/Vostok") {
		t.Errorf("error %q does not mention the input", res.Error)
	}
	if res.Timezone != "Antarctica/Vostok" {
		t.Errorf("Timezone = %q", res.Timezone)
	}
}

func TestResolveEmpty(t *testing.T) {
	res := tzdetect.Resolve("", table())
	if res.Detected {
		t.Error("empty timezone must not be detected")
	}
	if res.Timezone != "UTC" {
		t.Errorf("Timezone = %q, want UTC", res.Timezone)
	}
	if res.Error == "" {
		t.Error("expected an error message")
	}
}

func TestResolveIdempotent(t *testing.T) {
	countries := catalog.Countries()
	for _, tz := range []string{"", "Europe/Brussels", "America/Boise", "Antarctica/Vostok", "Asia/Tokyo"} {
		a := tzdetect.Resolve(tz, countries)
		b := tzdetect.Resolve(tz, countries)
		if diff := cmp.Diff(a, b); diff != "" {
			t.Errorf("Resolve(%q) not idempotent (-first +second):\n%s", tz, diff)
		}
	}
}

func TestResolveDoesNotAliasTable(t *testing.T) {
	countries := table()
	res := tzdetect.Resolve("Asia/Tokyo", countries)
	res.Country.Name = "changed"
	if countries[4].Name != "Japan" {
		t.Error("result must not alias the input table")
	}
}

func TestDetectSourceError(t *testing.T) {
	res := tzdetect.Detect(func() (string, error) { return "", errors.New("no intl") }, table())
	if res.Detected || res.Timezone != "UTC" {
		t.Fatalf("unexpected result %+v", res)
	}
	if !strings.Contains(res.Error, "no intl") {
		t.Errorf("error = %q", res.Error)
	}
}

func TestDetectRecoversPanic(t *testing.T) {
	res := tzdetect.Detect(func() (string, error) { panic("boom") }, table())
	if res.Detected || !strings.Contains(res.Error, "boom") {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestDetectStatic(t *testing.T) {
	res := tzdetect.Detect(tzdetect.Static("Europe/Warsaw"), table())
	if res.Country == nil || res.Country.Code != "DE" {
		t.Fatalf("Detect(Europe/Warsaw) = %+v", res)
	}
}

func TestDescribe(t *testing.T) {
	matched := tzdetect.Resolve("Asia/Tokyo", table())
	info := tzdetect.Describe(matched)
	if !info.IsCurrentLocation || info.DisplayName != "🇯🇵 Japan (Your Location)" {
		t.Errorf("Describe(matched) = %+v", info)
	}

	unmatched := tzdetect.Resolve("Antarctica/Vostok", table())
	info = tzdetect.Describe(unmatched)
	if info.IsCurrentLocation || info.DisplayName != "🌍 Antarctica/Vostok (Detected Timezone)" {
		t.Errorf("Describe(unmatched) = %+v", info)
	}
}

func TestSystemTimezoneFromEnv(t *testing.T) {
	t.Setenv("TZ", "Asia/Tokyo")
	tz, err := tzdetect.SystemTimezone()
	if err != nil {
		t.Fatal(err)
	}
	if tz != "Asia/Tokyo" {
		t.Errorf("SystemTimezone = %q", tz)
	}

	t.Setenv("TZ", ":Europe/Berlin")
	tz, err = tzdetect.SystemTimezone()
	if err != nil || tz != "Europe/Berlin" {
		t.Errorf("SystemTimezone = %q, %v", tz, err)
	}

	t.Setenv("TZ", "Not/AZone")
	if _, err := tzdetect.SystemTimezone(); err == nil {
		t.Error("expected error for invalid TZ")
	}
}
