package timecalc

import (
	"crypto/rand"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
)

const (
	// InvalidTime replaces a clock reading that cannot be formatted.
	InvalidTime = "Invalid Time"
	// InvalidDate replaces a date that cannot be formatted.
	InvalidDate = "Invalid Date"
	// InvalidConversion is returned by ConvertTime for bad input.
	InvalidConversion = "Invalid time"
)

// GenerateID creates a unique, time-ordered ID for t.
func GenerateID(t time.Time) string {
	return ulid.MustNew(ulid.Timestamp(t), rand.Reader).String()
}

// FormatDuration formats seconds as a human-readable string like "1h 40m" or "45m" or "30s".
func FormatDuration(seconds int64) string {
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	if h > 0 {
		return fmt.Sprintf("%dh %dm", h, m)
	}
	if m > 0 {
		return fmt.Sprintf("%dm", m)
	}
	return fmt.Sprintf("%ds", s)
}

// In returns t in the named zone.
func In(t time.Time, tz string) (time.Time, error) {
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return time.Time{}, fmt.Errorf("unknown timezone %q: %w", tz, err)
	}
	return t.In(loc), nil
}

// FormatClock renders t as a wall clock reading in tz, or InvalidTime.
func FormatClock(t time.Time, tz string, use24h bool) string {
	local, err := In(t, tz)
	if err != nil || tz == "" {
		return InvalidTime
	}
	if use24h {
		return local.Format("15:04:05")
	}
	return local.Format("03:04:05 PM")
}

// FormatDate renders the calendar date of t in tz, or InvalidDate.
func FormatDate(t time.Time, tz string) string {
	local, err := In(t, tz)
	if err != nil || tz == "" {
		return InvalidDate
	}
	return local.Format("Monday, January 2, 2006")
}

// OffsetLabel returns the UTC offset of tz at t, e.g. "UTC+05:30".
func OffsetLabel(t time.Time, tz string) string {
	local, err := In(t, tz)
	if err != nil {
		return ""
	}
	_, offset := local.Zone()
	sign := "+"
	if offset < 0 {
		sign = "-"
		offset = -offset
	}
	return fmt.Sprintf("UTC%s%02d:%02d", sign, offset/3600, (offset%3600)/60)
}

// ParseHHMM parses a 24h "HH:MM" string.
func ParseHHMM(s string) (hour, minute int, err error) {
	hh, mm, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok || len(hh) == 0 || len(hh) > 2 || len(mm) != 2 {
		return 0, 0, fmt.Errorf("invalid time %q: want HH:MM", s)
	}
	if !digits(hh) || !digits(mm) {
		return 0, 0, fmt.Errorf("invalid time %q: want HH:MM", s)
	}
	hour, err = strconv.Atoi(hh)
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, fmt.Errorf("invalid hour in %q", s)
	}
	minute, err = strconv.Atoi(mm)
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("invalid minute in %q", s)
	}
	return hour, minute, nil
}

func digits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// ConvertTime interprets hhmm as a wall clock time in fromTZ on the date of
// day (as seen in fromTZ) and renders it in toTZ as "03:04 PM".
func ConvertTime(hhmm, fromTZ, toTZ string, day time.Time) string {
	hour, minute, err := ParseHHMM(hhmm)
	if err != nil {
		return InvalidConversion
	}
	from, err := time.LoadLocation(fromTZ)
	if err != nil {
		return InvalidConversion
	}
	to, err := time.LoadLocation(toTZ)
	if err != nil {
		return InvalidConversion
	}
	d := day.In(from)
	src := time.Date(d.Year(), d.Month(), d.Day(), hour, minute, 0, 0, from)
	return src.In(to).Format("03:04 PM")
}

// StartOfDay returns 00:00:00 of the same day.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// SameDay reports whether two times fall on the same calendar day.
func SameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// DayLabel names the calendar day of t relative to now, both seen in t's
// location: "today", "tomorrow", or "Mon Jan 2".
func DayLabel(t, now time.Time) string {
	now = now.In(t.Location())
	switch {
	case SameDay(t, now):
		return "today"
	case SameDay(t, StartOfDay(now).AddDate(0, 0, 1)):
		return "tomorrow"
	}
	return t.Format("Mon Jan 2")
}
