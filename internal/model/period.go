package model

import (
	"errors"
	"fmt"
	"strings"
)

// Period is the report granularity requested from every source in a batch.
type Period string

const (
	// PeriodWeek requests daily rows for the last weeks ("16 дек 1234 567").
	PeriodWeek Period = "week"

	// PeriodMonth requests monthly rows ("Мар 23 1787096 592185").
	PeriodMonth Period = "month"
)

// ErrInvalidPeriod is returned by ParsePeriod for anything but week or month.
var ErrInvalidPeriod = errors.New("invalid period: must be week or month")

// ParsePeriod converts a user supplied string into a Period.
func ParsePeriod(s string) (Period, error) {
	switch Period(strings.ToLower(strings.TrimSpace(s))) {
	case PeriodWeek:
		return PeriodWeek, nil
	case PeriodMonth:
		return PeriodMonth, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidPeriod, s)
	}
}

// IsMonthly reports whether dates of this period carry a month and an
// optional year instead of a day and a month.
func (p Period) IsMonthly() bool {
	return p == PeriodMonth
}

// String returns the period as used in query strings and file names.
func (p Period) String() string {
	return string(p)
}

// Title returns the human readable report title for the period.
func (p Period) Title() string {
	if p.IsMonthly() {
		return "Отчёт LiveInternet месячный"
	}
	return "Отчёт LiveInternet недельный"
}
