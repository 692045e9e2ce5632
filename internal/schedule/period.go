package schedule

import (
	"fmt"
	"strconv"
	"strings"
)

// MinutesPerSlot is the fixed booking granularity.
const MinutesPerSlot = 30

// ParseHHMM converts a 24-hour "HH:MM" wall-clock string into minutes
// since midnight.
func ParseHHMM(s string) (int, error) {
	parts := strings.SplitN(s, ":", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("invalid time %q: want HH:MM", s)
	}
	h, err := strconv.Atoi(parts[0])
	if err != nil || h < 0 || h > 23 {
		return 0, fmt.Errorf("invalid hour in %q", s)
	}
	m, err := strconv.Atoi(parts[1])
	if err != nil || m < 0 || m > 59 {
		return 0, fmt.Errorf("invalid minute in %q", s)
	}
	return h*60 + m, nil
}

// FormatHHMM renders minutes since midnight as "HH:MM".
func FormatHHMM(min int) string {
	return fmt.Sprintf("%02d:%02d", min/60, min%60)
}

// PeriodForMinute buckets a slot start by its hour:
// 06:00–11:59 morning, 12:00–16:59 afternoon, 17:00–20:59 evening,
// everything else night.
func PeriodForMinute(min int) Period {
	switch hour := min / 60; {
	case hour >= 6 && hour < 12:
		return PeriodMorning
	case hour >= 12 && hour < 17:
		return PeriodAfternoon
	case hour >= 17 && hour < 21:
		return PeriodEvening
	default:
		return PeriodNight
	}
}

// InBreak reports whether a slot starting at min falls inside the
// template's half-open break window. A template without a break never
// blocks anything.
func (s *Schedule) InBreak(min int) bool {
	if s.BreakStart == nil || s.BreakEnd == nil {
		return false
	}
	from, err := ParseHHMM(*s.BreakStart)
	if err != nil {
		return false
	}
	to, err := ParseHHMM(*s.BreakEnd)
	if err != nil {
		return false
	}
	return min >= from && min < to
}
