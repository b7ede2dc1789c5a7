package scoring

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// AllTimePeriod is the key of the unbounded leaderboard window.
const AllTimePeriod = "all-time"

// WeeklyPeriod returns the leaderboard key for the week containing t, e.g.
// "weekly-2026-W35". The week number is ceil(daysSinceJan1/7) zero-padded to
// two digits. This is intentionally not ISO-8601 week numbering; existing
// leaderboard rows were written with this formula and it must be preserved.
func WeeklyPeriod(t time.Time) string {
	days := t.YearDay() - 1
	week := int(math.Ceil(float64(days) / 7))
	if week < 1 {
		week = 1
	}
	return fmt.Sprintf("weekly-%d-W%02d", t.Year(), week)
}

// MonthlyPeriod returns the leaderboard key for the month containing t,
// e.g. "monthly-2026-08".
func MonthlyPeriod(t time.Time) string {
	return fmt.Sprintf("monthly-%d-%02d", t.Year(), int(t.Month()))
}

// PeriodKeys returns every leaderboard window a reward event at t belongs to.
func PeriodKeys(t time.Time) []string {
	return []string{AllTimePeriod, WeeklyPeriod(t), MonthlyPeriod(t)}
}

// PeriodRange resolves a period key back to its half-open [start, end) time
// range, used to reconcile leaderboard totals against raw progress rows. The
// all-time period spans all representable time.
func PeriodRange(key string, loc *time.Location) (time.Time, time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}

	switch {
	case key == AllTimePeriod:
		return time.Time{}, time.Date(9999, time.December, 31, 0, 0, 0, 0, loc), nil

	case strings.HasPrefix(key, "weekly-"):
		var year, week int
		if _, err := fmt.Sscanf(key, "weekly-%d-W%d", &year, &week); err != nil {
			return time.Time{}, time.Time{}, fmt.Errorf("malformed weekly period %q", key)
		}
		if week < 1 {
			return time.Time{}, time.Time{}, fmt.Errorf("malformed weekly period %q", key)
		}
		// Week w spans year days 7(w-1)+1 .. 7w under the ceil formula,
		// with day zero folded into week one.
		jan1 := time.Date(year, time.January, 1, 0, 0, 0, 0, loc)
		start := jan1.AddDate(0, 0, (week-1)*7+1)
		if week == 1 {
			start = jan1
		}
		return start, jan1.AddDate(0, 0, week*7+1), nil

	case strings.HasPrefix(key, "monthly-"):
		parts := strings.SplitN(strings.TrimPrefix(key, "monthly-"), "-", 2)
		if len(parts) != 2 {
			return time.Time{}, time.Time{}, fmt.Errorf("malformed monthly period %q", key)
		}
		year, yerr := strconv.Atoi(parts[0])
		month, merr := strconv.Atoi(parts[1])
		if yerr != nil || merr != nil || month < 1 || month > 12 {
			return time.Time{}, time.Time{}, fmt.Errorf("malformed monthly period %q", key)
		}
		start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, loc)
		return start, start.AddDate(0, 1, 0), nil
	}

	return time.Time{}, time.Time{}, fmt.Errorf("unknown period %q", key)
}
