package dashboard

import (
	"fmt"
	"strings"
	"time"
)

// Mode selects the dashboard time window.
type Mode int

const (
	ThisMonth Mode = iota
	LastMonth
	SpecificYear
	AllTime
)

func (m Mode) String() string {
	switch m {
	case ThisMonth:
		return "this-month"
	case LastMonth:
		return "last-month"
	case SpecificYear:
		return "year"
	case AllTime:
		return "all-time"
	default:
		panic(fmt.Sprintf("unknown mode %d", m))
	}
}

// ParseMode reads a window mode from user input.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(s) {
	case "this-month", "thismonth":
		return ThisMonth, nil
	case "last-month", "lastmonth":
		return LastMonth, nil
	case "year", "specific-year":
		return SpecificYear, nil
	case "all-time", "alltime", "all":
		return AllTime, nil
	default:
		return ThisMonth, fmt.Errorf("unknown window mode %q", s)
	}
}

// Granularity is the bucket size for the chart series.
type Granularity int

const (
	ByDay Granularity = iota
	ByMonth
)

// Window is a resolved time-window selection. Year is only meaningful
// for SpecificYear; zero means the current year.
type Window struct {
	Mode Mode
	Year int
}

// Granularity returns day buckets for month-scoped windows and month
// buckets for year-scoped or unbounded windows.
func (w Window) Granularity() Granularity {
	switch w.Mode {
	case ThisMonth, LastMonth:
		return ByDay
	default:
		return ByMonth
	}
}

// Range resolves the window to an inclusive [from, to] interval
// relative to now. AllTime is unbounded and reports bounded=false.
func (w Window) Range(now time.Time) (from, to time.Time, bounded bool) {
	switch w.Mode {
	case ThisMonth:
		from = firstOfMonth(now)
		to = from.AddDate(0, 1, 0).Add(-time.Nanosecond)
		return from, to, true
	case LastMonth:
		thisMonth := firstOfMonth(now)
		from = thisMonth.AddDate(0, -1, 0)
		to = thisMonth.Add(-time.Nanosecond)
		return from, to, true
	case SpecificYear:
		year := w.Year
		if year == 0 {
			year = now.Year()
		}
		from = time.Date(year, time.January, 1, 0, 0, 0, 0, now.Location())
		to = from.AddDate(1, 0, 0).Add(-time.Nanosecond)
		return from, to, true
	default:
		return time.Time{}, time.Time{}, false
	}
}

func firstOfMonth(t time.Time) time.Time {
	year, month, _ := t.Date()
	return time.Date(year, month, 1, 0, 0, 0, 0, t.Location())
}
