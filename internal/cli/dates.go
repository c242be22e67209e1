package cli

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// GatewayTimeLayout is the layout the gateway expects for schedule and
// expiry start times, e.g. "2026-11-01 09:00:00 +0700".
const GatewayTimeLayout = "2006-01-02 15:04:05 -0700"

// Matches: "30m", "2h", "1d", "2w", "1mo", optionally prefixed with "in ".
var relativeFutureRegex = regexp.MustCompile(`^(?:in\s+)?(\d+)\s*(mo|w|d|h|m)$`)

// ParseScheduleTime parses a start time for recurring charges.
// Supports: "now", "tomorrow", "monday", "next tue", "30m", "in 2d",
// "2026-11-01", "2026-11-01 09:00", the gateway layout, and RFC3339.
// Times before now are rejected.
func ParseScheduleTime(s string, now time.Time) (time.Time, error) {
	t, err := parseTime(s, now)
	if err != nil {
		return time.Time{}, err
	}
	if t.Before(now.Truncate(time.Minute)) {
		return time.Time{}, fmt.Errorf("start time %q is in the past", strings.TrimSpace(s))
	}
	return t, nil
}

// FormatGatewayTime renders t in GatewayTimeLayout, keeping its offset.
func FormatGatewayTime(t time.Time) string {
	return t.Format(GatewayTimeLayout)
}

func parseTime(s string, now time.Time) (time.Time, error) {
	raw := strings.TrimSpace(s)
	if raw == "" {
		return time.Time{}, fmt.Errorf("empty time expression")
	}

	input := strings.ToLower(raw)
	switch input {
	case "now":
		return now, nil
	case "tomorrow":
		return startOfDay(now).AddDate(0, 0, 1), nil
	}

	if t, ok := parseWeekday(input, now); ok {
		return t, nil
	}

	if matches := relativeFutureRegex.FindStringSubmatch(input); len(matches) == 3 {
		value, err := strconv.Atoi(matches[1])
		if err != nil || value < 1 {
			return time.Time{}, fmt.Errorf("invalid relative time %q", raw)
		}
		return applyRelative(now, value, matches[2])
	}

	for _, layout := range []string{GatewayTimeLayout, time.RFC3339} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	for _, layout := range []string{"2006-01-02 15:04:05", "2006-01-02 15:04", "2006-01-02"} {
		if t, err := time.ParseInLocation(layout, raw, now.Location()); err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("invalid time expression %q", raw)
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// parseWeekday resolves "mon", "next monday", or "this fri" to the start of
// the next such day. Today's weekday means a week from today.
func parseWeekday(expr string, now time.Time) (time.Time, bool) {
	input := strings.TrimSpace(expr)
	for _, prefix := range []string{"next ", "this "} {
		input = strings.TrimSpace(strings.TrimPrefix(input, prefix))
	}

	weekday, ok := weekdayMap[input]
	if !ok {
		return time.Time{}, false
	}

	base := startOfDay(now)
	delta := (int(weekday) - int(base.Weekday()) + 7) % 7
	if delta == 0 {
		delta = 7
	}
	return base.AddDate(0, 0, delta), true
}

var weekdayMap = map[string]time.Weekday{
	"sun":       time.Sunday,
	"sunday":    time.Sunday,
	"mon":       time.Monday,
	"monday":    time.Monday,
	"tue":       time.Tuesday,
	"tues":      time.Tuesday,
	"tuesday":   time.Tuesday,
	"wed":       time.Wednesday,
	"wednesday": time.Wednesday,
	"thu":       time.Thursday,
	"thur":      time.Thursday,
	"thurs":     time.Thursday,
	"thursday":  time.Thursday,
	"fri":       time.Friday,
	"friday":    time.Friday,
	"sat":       time.Saturday,
	"saturday":  time.Saturday,
}

func applyRelative(now time.Time, value int, unit string) (time.Time, error) {
	switch unit {
	case "mo":
		return now.AddDate(0, value, 0), nil
	case "w":
		return now.AddDate(0, 0, 7*value), nil
	case "d":
		return now.AddDate(0, 0, value), nil
	case "h":
		return now.Add(time.Duration(value) * time.Hour), nil
	case "m":
		return now.Add(time.Duration(value) * time.Minute), nil
	default:
		return time.Time{}, fmt.Errorf("invalid relative time unit %q", unit)
	}
}
