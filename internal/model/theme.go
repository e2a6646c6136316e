package model

// Theme is a named colour scheme. The colour fields hold hex colours used
// by both the web page and the terminal clock.
type Theme struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Primary    string `json:"primary"`
	Secondary  string `json:"secondary"`
	Background string `json:"background"`
	Text       string `json:"text"`
}

// Weather is a point-in-time weather report for a location.
type Weather struct {
	Temperature int    `json:"temperature"`
	Description string `json:"description"`
	Humidity    int    `json:"humidity"`
	WindSpeed   int    `json:"windSpeed"`
	Icon        string `json:"icon"`
}
