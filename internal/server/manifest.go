package server

// Manifest is the web app manifest served at /manifest.json.
type Manifest struct {
	Name            string     `json:"name"`
	ShortName       string     `json:"short_name"`
	Description     string     `json:"description"`
	StartURL        string     `json:"start_url"`
	Display         string     `json:"display"`
	BackgroundColor string     `json:"background_color"`
	ThemeColor      string     `json:"theme_color"`
	Orientation     string     `json:"orientation"`
	Scope           string     `json:"scope"`
	Lang            string     `json:"lang"`
	Categories      []string   `json:"categories"`
	Icons           []Icon     `json:"icons"`
	Shortcuts       []Shortcut `json:"shortcuts"`
}

type Icon struct {
	Src     string `json:"src"`
	Sizes   string `json:"sizes"`
	Type    string `json:"type"`
	Purpose string `json:"purpose,omitempty"`
}

type Shortcut struct {
	Name        string `json:"name"`
	ShortName   string `json:"short_name"`
	Description string `json:"description"`
	URL         string `json:"url"`
	Icons       []Icon `json:"icons"`
}

// DefaultManifest describes the installable world clock.
func DefaultManifest() Manifest {
	icon := func(size, purpose string) Icon {
		return Icon{Src: "/icons/icon-" + size + ".png", Sizes: size, Type: "image/png", Purpose: purpose}
	}
	shortcut := func(name, short, desc, id, iconName string) Shortcut {
		return Shortcut{
			Name:        name,
			ShortName:   short,
			Description: desc,
			URL:         "/?shortcut=" + id,
			Icons:       []Icon{{Src: "/icons/shortcut-" + iconName + ".png", Sizes: "96x96", Type: "image/png"}},
		}
	}
	return Manifest{
		Name:            "Clock Time - Real-Time World Clock & Time Zone Converter",
		ShortName:       "Clock Time",
		Description:     "Free online clock time display with automatic location detection. Works offline with PWA capabilities.",
		StartURL:        "/",
		Display:         "standalone",
		BackgroundColor: "#ffffff",
		ThemeColor:      "#3b82f6",
		Orientation:     "portrait-primary",
		Scope:           "/",
		Lang:            "en",
		Categories:      []string{"utilities", "productivity", "lifestyle"},
		Icons: []Icon{
			icon("72x72", "maskable"),
			icon("96x96", "maskable"),
			icon("128x128", "maskable"),
			icon("144x144", "maskable"),
			icon("152x152", "maskable"),
			icon("192x192", "maskable any"),
			icon("384x384", "maskable"),
			icon("512x512", "maskable any"),
		},
		Shortcuts: []Shortcut{
			shortcut("Current Time", "Time", "View your current local time", "current-time", "time"),
			shortcut("World Clock", "World", "View world clock for multiple time zones", "world-clock", "world"),
			shortcut("Time Converter", "Convert", "Convert time between time zones", "converter", "converter"),
			shortcut("Alarms", "Alarms", "Manage your time zone alarms", "alarms", "alarms"),
		},
	}
}
