package parser

import (
	"fmt"
	"strconv"
	"time"
)

// CenturyBase is added to the two-digit year of a log date.
// Logs are assumed to be written in 2000-2099.
const CenturyBase = 2000

// ParseTimestamp combines a YYMMDD date and HHMMSS time into a UTC time.
// Out-of-range calendar values are rejected rather than normalized.
func ParseTimestamp(date, clock string) (time.Time, error) {
	if len(date) != 6 || len(clock) != 6 {
		return time.Time{}, fmt.Errorf("timestamp %s_%s: want 6-digit date and time", date, clock)
	}

	fields := [6]int{}
	parts := []string{date[0:2], date[2:4], date[4:6], clock[0:2], clock[2:4], clock[4:6]}
	for i, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return time.Time{}, fmt.Errorf("timestamp %s_%s: %w", date, clock, err)
		}
		fields[i] = n
	}

	year, month, day := CenturyBase+fields[0], fields[1], fields[2]
	hour, minute, second := fields[3], fields[4], fields[5]

	ts := time.Date(year, time.Month(month), day, hour, minute, second, 0, time.UTC)
	if ts.Month() != time.Month(month) || ts.Day() != day ||
		ts.Hour() != hour || ts.Minute() != minute || ts.Second() != second {
		return time.Time{}, fmt.Errorf("timestamp %s_%s: out of range", date, clock)
	}

	return ts, nil
}
