package timecalc

import (
	"fmt"
	"strings"
	"time"
)

// Recurrence keywords accepted in an alarm's days list, besides weekday names.
const (
	Daily    = "daily"
	Weekdays = "weekdays"
	Weekends = "weekends"
)

var weekdayNames = map[string]time.Weekday{
	"sun": time.Sunday, "sunday": time.Sunday,
	"mon": time.Monday, "monday": time.Monday,
	"tue": time.Tuesday, "tuesday": time.Tuesday,
	"wed": time.Wednesday, "wednesday": time.Wednesday,
	"thu": time.Thursday, "thursday": time.Thursday,
	"fri": time.Friday, "friday": time.Friday,
	"sat": time.Saturday, "saturday": time.Saturday,
}

// ParseDays expands a recurrence list into the set of weekdays it covers.
func ParseDays(days []string) (map[time.Weekday]bool, error) {
	set := map[time.Weekday]bool{}
	if len(days) == 0 {
		days = []string{Daily}
	}
	for _, d := range days {
		key := strings.ToLower(strings.TrimSpace(d))
		switch key {
		case Daily:
			for wd := time.Sunday; wd <= time.Saturday; wd++ {
				set[wd] = true
			}
		case Weekdays:
			for wd := time.Monday; wd <= time.Friday; wd++ {
				set[wd] = true
			}
		case Weekends:
			set[time.Saturday] = true
			set[time.Sunday] = true
		default:
			wd, ok := weekdayNames[key]
			if !ok {
				return nil, fmt.Errorf("unknown day %q", d)
			}
			set[wd] = true
		}
	}
	return set, nil
}

// NextOccurrence returns the first instant strictly after now at which a
// wall clock of hhmm in tz falls on one of days.
func NextOccurrence(hhmm, tz string, days []string, now time.Time) (time.Time, error) {
	hour, minute, err := ParseHHMM(hhmm)
	if err != nil {
		return time.Time{}, err
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return time.Time{}, fmt.Errorf("unknown timezone %q: %w", tz, err)
	}
	set, err := ParseDays(days)
	if err != nil {
		return time.Time{}, err
	}

	day := StartOfDay(now.In(loc))
	for i := 0; i <= 7; i++ {
		d := day.AddDate(0, 0, i)
		candidate := time.Date(d.Year(), d.Month(), d.Day(), hour, minute, 0, 0, loc)
		if set[candidate.Weekday()] && candidate.After(now) {
			return candidate, nil
		}
	}
	return time.Time{}, fmt.Errorf("no occurrence for %s in %s", hhmm, tz)
}
