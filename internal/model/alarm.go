package model

// Alarm is a local-only alarm persisted under the "alarms" key.
type Alarm struct {
	ID       string   `json:"id"`
	Time     string   `json:"time"` // HH:MM
	Timezone string   `json:"timezone"`
	Label    string   `json:"label"`
	Enabled  bool     `json:"enabled"`
	Days     []string `json:"days"`
}
