package model

import (
	"fmt"
	"time"
)

// Period is a relative time window anchored to a reference date, as opposed
// to an explicit start/end range.
type Period int

// Relative periods. PeriodNone means no period filter is active.
const (
	PeriodNone Period = iota
	PeriodDay
	PeriodWeek
	PeriodMonth
	PeriodYear
)

// ParsePeriod converts a user-supplied period name to a Period.
func ParsePeriod(s string) (Period, error) {
	switch s {
	case "", "none":
		return PeriodNone, nil
	case "day":
		return PeriodDay, nil
	case "week":
		return PeriodWeek, nil
	case "month":
		return PeriodMonth, nil
	case "year":
		return PeriodYear, nil
	default:
		return PeriodNone, fmt.Errorf("invalid period: %s", s)
	}
}

func (p Period) String() string {
	switch p {
	case PeriodDay:
		return "day"
	case PeriodWeek:
		return "week"
	case PeriodMonth:
		return "month"
	case PeriodYear:
		return "year"
	default:
		return "none"
	}
}

// DateRange is an inclusive [Start, End] window.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// FilterState captures the active expense filter for one session.
//
// An explicit Range always takes precedence over a relative Period. An empty
// allow-list with AllCategories set means no category filtering at all.
type FilterState struct {
	Range          *DateRange
	Categories     []string
	Period         Period
	AllCategories  bool
	SortDescending bool
}

// RangeActive reports whether any date filtering applies.
func (f FilterState) RangeActive() bool {
	return f.Range != nil || f.Period != PeriodNone
}
