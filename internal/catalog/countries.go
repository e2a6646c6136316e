package catalog

import (
	"strings"
	"time"

	"github.com/Tiliavir/clocktime/internal/model"
)

var countries = []model.Country{
	{Name: "United States", Timezone: "America/New_York", Code: "US", Coordinates: model.Coordinates{Lat: 40.7128, Lng: -74.0060}, Flag: "🇺🇸"},
	{Name: "United States (Chicago)", Timezone: "America/Chicago", Code: "US-CHI", Coordinates: model.Coordinates{Lat: 41.8781, Lng: -87.6298}, Flag: "🇺🇸"},
	{Name: "United States (Los Angeles)", Timezone: "America/Los_Angeles", Code: "US-LA", Coordinates: model.Coordinates{Lat: 34.0522, Lng: -118.2437}, Flag: "🇺🇸"},
	{Name: "Canada", Timezone: "America/Toronto", Code: "CA", Coordinates: model.Coordinates{Lat: 43.6532, Lng: -79.3832}, Flag: "🇨🇦"},
	{Name: "Mexico", Timezone: "America/Mexico_City", Code: "MX", Coordinates: model.Coordinates{Lat: 19.4326, Lng: -99.1332}, Flag: "🇲🇽"},
	{Name: "Brazil", Timezone: "America/Sao_Paulo", Code: "BR", Coordinates: model.Coordinates{Lat: -23.5505, Lng: -46.6333}, Flag: "🇧🇷"},
	{Name: "Argentina", Timezone: "America/Argentina/Buenos_Aires", Code: "AR", Coordinates: model.Coordinates{Lat: -34.6037, Lng: -58.3816}, Flag: "🇦🇷"},
	{Name: "United Kingdom", Timezone: "Europe/London", Code: "GB", Coordinates: model.Coordinates{Lat: 51.5074, Lng: -0.1278}, Flag: "🇬🇧"},
	{Name: "Germany", Timezone: "Europe/Berlin", Code: "DE", Coordinates: model.Coordinates{Lat: 52.5200, Lng: 13.4050}, Flag: "🇩🇪"},
	{Name: "France", Timezone: "Europe/Paris", Code: "FR", Coordinates: model.Coordinates{Lat: 48.8566, Lng: 2.3522}, Flag: "🇫🇷"},
	{Name: "Russia", Timezone: "Europe/Moscow", Code: "RU", Coordinates: model.Coordinates{Lat: 55.7558, Lng: 37.6173}, Flag: "🇷🇺"},
	{Name: "Egypt", Timezone: "Africa/Cairo", Code: "EG", Coordinates: model.Coordinates{Lat: 30.0444, Lng: 31.2357}, Flag: "🇪🇬"},
	{Name: "Nigeria", Timezone: "Africa/Lagos", Code: "NG", Coordinates: model.Coordinates{Lat: 6.5244, Lng: 3.3792}, Flag: "🇳🇬"},
	{Name: "South Africa", Timezone: "Africa/Johannesburg", Code: "ZA", Coordinates: model.Coordinates{Lat: -26.2041, Lng: 28.0473}, Flag: "🇿🇦"},
	{Name: "United Arab Emirates", Timezone: "Asia/Dubai", Code: "AE", Coordinates: model.Coordinates{Lat: 25.2048, Lng: 55.2708}, Flag: "🇦🇪"},
	{Name: "India", Timezone: "Asia/Kolkata", Code: "IN", Coordinates: model.Coordinates{Lat: 28.6139, Lng: 77.2090}, Flag: "🇮🇳"},
	{Name: "Singapore", Timezone: "Asia/Singapore", Code: "SG", Coordinates: model.Coordinates{Lat: 1.3521, Lng: 103.8198}, Flag: "🇸🇬"},
	{Name: "China", Timezone: "Asia/Shanghai", Code: "CN", Coordinates: model.Coordinates{Lat: 31.2304, Lng: 121.4737}, Flag: "🇨🇳"},
	{Name: "South Korea", Timezone: "Asia/Seoul", Code: "KR", Coordinates: model.Coordinates{Lat: 37.5665, Lng: 126.9780}, Flag: "🇰🇷"},
	{Name: "Japan", Timezone: "Asia/Tokyo", Code: "JP", Coordinates: model.Coordinates{Lat: 35.6762, Lng: 139.6503}, Flag: "🇯🇵"},
	{Name: "Australia", Timezone: "Australia/Sydney", Code: "AU", Coordinates: model.Coordinates{Lat: -33.8688, Lng: 151.2093}, Flag: "🇦🇺"},
	{Name: "New Zealand", Timezone: "Pacific/Auckland", Code: "NZ", Coordinates: model.Coordinates{Lat: -36.8485, Lng: 174.7633}, Flag: "🇳🇿"},
}

// Countries returns a copy of the world clock table in display order.
func Countries() []model.Country {
	out := make([]model.Country, len(countries))
	copy(out, countries)
	return out
}

// FindCountry looks a country up by code, case-insensitively.
func FindCountry(code string) (model.Country, bool) {
	for _, c := range countries {
		if strings.EqualFold(c.Code, strings.TrimSpace(code)) {
			return c, true
		}
	}
	return model.Country{}, false
}

// ResolveZone accepts a country code or an IANA zone name and returns the zone.
func ResolveZone(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}
	if c, ok := FindCountry(s); ok {
		return c.Timezone, true
	}
	if _, err := time.LoadLocation(s); err != nil {
		return "", false
	}
	return s, true
}
