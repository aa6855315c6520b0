// Package classify labels events by their time-of-day pattern.
package classify

import "time"

// Event type labels. LabelUnknown is the fallback when no rule matches or the
// timestamps cannot be parsed.
const (
	LabelFestival     = "Festival"
	LabelDayIntoNight = "Day Into Night"
	LabelClubNight    = "Club Night"
	LabelEarlyNight   = "Early Night"
	LabelDayParty     = "Day Party"
	LabelAfters       = "Afters"
	LabelUnknown      = "Unknown"
)

const hoursPerDay = 24

// Classify maps a start/end timestamp pair to an event type label using UTC
// hour-of-day and total duration. The rules overlap and are evaluated in
// order, first match wins; do not reorder them.
func Classify(start, end time.Time) string {
	startHour := start.UTC().Hour()
	endHour := end.UTC().Hour()
	duration := end.Sub(start).Hours()

	switch {
	case duration >= hoursPerDay:
		return LabelFestival
	case startHour >= 12 && startHour < 18 &&
		(end.UTC().Day() > start.UTC().Day() || duration > 8) && endHour >= 3:
		return LabelDayIntoNight
	case ((startHour >= 21 && startHour <= 23) || startHour <= 1) &&
		endHour >= 3 && endHour <= 9:
		return LabelClubNight
	case startHour >= 17 && startHour < 22 && (endHour >= 22 || endHour <= 3):
		return LabelEarlyNight
	case startHour >= 12 && startHour < 18 && (endHour >= 17 || endHour <= 1):
		return LabelDayParty
	case startHour >= 4 && startHour < 11:
		return LabelAfters
	default:
		return LabelUnknown
	}
}

// FromStrings parses RFC 3339 timestamps and classifies the pair. Unparseable
// input yields LabelUnknown.
func FromStrings(start, end string) string {
	startTime, err := time.Parse(time.RFC3339, start)
	if err != nil {
		return LabelUnknown
	}
	endTime, err := time.Parse(time.RFC3339, end)
	if err != nil {
		return LabelUnknown
	}
	return Classify(startTime, endTime)
}
