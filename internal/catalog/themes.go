package catalog

import "github.com/Tiliavir/clocktime/internal/model"

// DefaultThemeID is used when no theme has been selected yet.
const DefaultThemeID = "default"

var themes = []model.Theme{
	{ID: "default", Name: "Default", Primary: "#2563eb", Secondary: "#dbeafe", Background: "#eff6ff", Text: "#111827"},
	{ID: "dark", Name: "Dark", Primary: "#1f2937", Secondary: "#374151", Background: "#030712", Text: "#ffffff"},
	{ID: "sunset", Name: "Sunset", Primary: "#ea580c", Secondary: "#ffedd5", Background: "#fed7aa", Text: "#111827"},
	{ID: "ocean", Name: "Ocean", Primary: "#0d9488", Secondary: "#ccfbf1", Background: "#ecfeff", Text: "#111827"},
	{ID: "forest", Name: "Forest", Primary: "#16a34a", Secondary: "#dcfce7", Background: "#ecfdf5", Text: "#111827"},
}

// Themes returns a copy of the theme table.
func Themes() []model.Theme {
	out := make([]model.Theme, len(themes))
	copy(out, themes)
	return out
}

// FindTheme returns the theme with the given id.
func FindTheme(id string) (model.Theme, bool) {
	for _, t := range themes {
		if t.ID == id {
			return t, true
		}
	}
	return model.Theme{}, false
}
