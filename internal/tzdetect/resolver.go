// Package tzdetect maps an environment-reported IANA timezone onto one of
// the world clock's country records.
package tzdetect

import (
	"fmt"
	"strings"

	"github.com/Tiliavir/clocktime/internal/model"
)

// FallbackTimezone is reported when no timezone could be detected.
const FallbackTimezone = "UTC"

// Resolver matches timezones against a country table using an alias table.
// The zero value uses DefaultAliases.
type Resolver struct {
	Aliases []AliasGroup
}

// Resolve matches tz using DefaultAliases.
func Resolve(tz string, countries []model.Country) model.DetectionResult {
	return Resolver{}.Resolve(tz, countries)
}

// Resolve matches tz by exact zone, then alias group, then region prefix.
// Ties resolve by table order. The region fallback can attach tz to a
// different city on the same continent; that is accepted.
func (r Resolver) Resolve(tz string, countries []model.Country) model.DetectionResult {
	if tz == "" {
		return model.DetectionResult{
			Timezone: FallbackTimezone,
			Error:    "Could not detect timezone",
		}
	}

	match := findByZone(countries, tz)
	if match == nil {
		match = r.matchAlias(tz, countries)
	}
	if match == nil {
		region, _, _ := strings.Cut(tz, "/")
		prefix := region + "/"
		for i := range countries {
			if strings.HasPrefix(countries[i].Timezone, prefix) {
				match = &countries[i]
				break
			}
		}
	}

	if match == nil {
		return model.DetectionResult{
			Timezone: tz,
			Error:    fmt.Sprintf("No matching location found for timezone: %s", tz),
		}
	}
	c := *match
	return model.DetectionResult{Country: &c, Timezone: tz, Detected: true}
}

func (r Resolver) matchAlias(tz string, countries []model.Country) *model.Country {
	aliases := r.Aliases
	if aliases == nil {
		aliases = DefaultAliases
	}
	for _, g := range aliases {
		if !g.Contains(tz) {
			continue
		}
		if c := findByZone(countries, g.Canonical); c != nil {
			return c
		}
	}
	return nil
}

func findByZone(countries []model.Country, tz string) *model.Country {
	for i := range countries {
		if countries[i].Timezone == tz {
			return &countries[i]
		}
	}
	return nil
}

// Describe turns a detection result into the label shown next to the local clock.
func Describe(res model.DetectionResult) model.LocationInfo {
	if res.Detected && res.Country != nil {
		return model.LocationInfo{
			DisplayName:       fmt.Sprintf("%s %s (Your Location)", res.Country.Flag, res.Country.Name),
			IsCurrentLocation: true,
			Timezone:          res.Timezone,
		}
	}
	return model.LocationInfo{
		DisplayName: fmt.Sprintf("🌍 %s (Detected Timezone)", res.Timezone),
		Timezone:    res.Timezone,
	}
}
