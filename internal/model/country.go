package model

// Coordinates is a latitude/longitude pair in decimal degrees.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Country is one entry of the static world clock table.
// Code is unique across the table and Timezone is an IANA zone name.
type Country struct {
	Name        string      `json:"name"`
	Timezone    string      `json:"timezone"`
	Code        string      `json:"code"`
	Coordinates Coordinates `json:"coordinates"`
	Flag        string      `json:"flag"`
}

// SavedCountry is a country the user pinned, with an optional nickname.
type SavedCountry struct {
	Country  Country `json:"country"`
	Nickname string  `json:"nickname,omitempty"`
}

// DisplayName returns the nickname when set, the country name otherwise.
func (s SavedCountry) DisplayName() string {
	if s.Nickname != "" {
		return s.Nickname
	}
	return s.Country.Name
}

// DetectionResult is the outcome of one timezone detection attempt.
// It is produced fresh on every attempt and never mutated.
type DetectionResult struct {
	Country  *Country `json:"country"`
	Timezone string   `json:"timezone"`
	Detected bool     `json:"isDetected"`
	Error    string   `json:"error,omitempty"`
}

// LocationInfo is the user-facing summary of a DetectionResult.
type LocationInfo struct {
	DisplayName       string `json:"displayName"`
	IsCurrentLocation bool   `json:"isCurrentLocation"`
	Timezone          string `json:"timezone"`
}
