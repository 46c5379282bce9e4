package datekey

import (
	"cmp"
	"strings"
	"time"

	"github.com/nao1215/listat/internal/parser"
)

const (
	// ReferenceYear anchors weekly tokens, which carry no year.
	ReferenceYear = 2025

	// DefaultYear is assumed for monthly tokens without a year.
	DefaultYear = 2025

	// centuryPivot splits two digit years: below it is 20xx, from it on 19xx.
	centuryPivot = 50
)

// Key is a comparable date. Month is 0-based. Day is 0 for monthly keys.
type Key struct {
	Year  int `json:"year"`
	Month int `json:"month"`
	Day   int `json:"day"`
}

// Compare returns -1, 0 or +1 ordering k before, equal to or after o.
func (k Key) Compare(o Key) int {
	if c := cmp.Compare(k.Year, o.Year); c != 0 {
		return c
	}
	if c := cmp.Compare(k.Month, o.Month); c != 0 {
		return c
	}
	return cmp.Compare(k.Day, o.Day)
}

// Before reports whether k sorts before o.
func (k Key) Before(o Key) bool {
	return k.Compare(o) < 0
}

// Normalize converts token to a Key. monthly selects the monthly token
// grammar; it is the same for every token in a batch.
func Normalize(token string, monthly bool) Key {
	if monthly {
		return normalizeMonthly(token)
	}
	return normalizeWeekly(token)
}

// normalizeWeekly handles "<day> <month>". An unparsable or zero day is 1,
// an unknown or missing month is January. Days past the end of the month roll
// over the way time.Date does.
func normalizeWeekly(token string) Key {
	fields := strings.Fields(token)

	day := 1
	if len(fields) > 0 {
		if d := int(parser.ParseCount(fields[0])); d > 0 {
			day = d
		}
	}

	month := 0
	if len(fields) > 1 {
		if m, ok := MonthOrdinal(fields[1]); ok {
			month = m
		}
	}

	t := time.Date(ReferenceYear, time.Month(month+1), day, 0, 0, 0, 0, time.UTC)
	return Key{Year: t.Year(), Month: int(t.Month()) - 1, Day: t.Day()}
}

// normalizeMonthly handles "<month> [year]".
func normalizeMonthly(token string) Key {
	fields := strings.Fields(token)

	month := 0
	if len(fields) > 0 {
		if m, ok := MonthOrdinal(fields[0]); ok {
			month = m
		}
	}

	year := DefaultYear
	if len(fields) > 1 {
		year = ResolveYear(fields[1])
	}

	return Key{Year: year, Month: month}
}

// ResolveYear expands a year token. Values 0-49 become 2000-2049, 50-99
// become 1950-1999 and larger values are used as is. A token without a
// leading number yields DefaultYear.
func ResolveYear(token string) int {
	if token == "" || token[0] < '0' || token[0] > '9' {
		return DefaultYear
	}
	n := int(parser.ParseCount(token))
	switch {
	case n < centuryPivot:
		return 2000 + n
	case n < 100:
		return 1900 + n
	default:
		return n
	}
}
