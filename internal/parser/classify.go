package parser

import (
	"strings"
	"unicode/utf8"

	"github.com/nao1215/listat/internal/model"
)

// minTokens is the smallest token count that can carry a date and two
// counters.
const minTokens = 3

// Rule is one entry of the classifier decision table.
type Rule struct {
	// Name is the layout name, used in tests and debug logs.
	Name string

	// Layout is the layout the rule produces.
	Layout model.Layout

	// Match reports whether the rule applies. tokens has at least minTokens
	// elements.
	Match func(tokens []string) bool

	// Extract builds the row. It is only called after Match returned true.
	Extract func(tokens []string) model.Row
}

// rules is the decision table in priority order. The last rule always
// matches.
var rules = []Rule{
	{
		Name:   model.LayoutWeekly.String(),
		Layout: model.LayoutWeekly,
		Match: func(t []string) bool {
			return isDayNumber(t[0]) && startsWithLetter(t[1])
		},
		Extract: func(t []string) model.Row {
			return model.WeeklyRow{Day: t[0], Month: t[1], Views: count(t, 2), Visitors: count(t, 3)}
		},
	},
	{
		Name:   model.LayoutMonthlyShortYear.String(),
		Layout: model.LayoutMonthlyShortYear,
		Match: func(t []string) bool {
			return startsWithLetter(t[0]) && isDigits(t[1], 2)
		},
		Extract: func(t []string) model.Row {
			return model.MonthlyShortYearRow{Month: t[0], Year: t[1], Views: count(t, 2), Visitors: count(t, 3)}
		},
	},
	{
		Name:   model.LayoutMonthlyLongYear.String(),
		Layout: model.LayoutMonthlyLongYear,
		Match: func(t []string) bool {
			return startsWithLetter(t[0]) && isDigits(t[1], 4)
		},
		Extract: func(t []string) model.Row {
			return model.MonthlyLongYearRow{Month: t[0], Year: t[1], Views: count(t, 2), Visitors: count(t, 3)}
		},
	},
	{
		Name:   model.LayoutMonthlyBare.String(),
		Layout: model.LayoutMonthlyBare,
		Match: func(t []string) bool {
			return startsWithLetter(t[0])
		},
		Extract: func(t []string) model.Row {
			return model.MonthlyBareRow{Month: t[0], Views: count(t, 1), Visitors: count(t, 2)}
		},
	},
	{
		Name:   model.LayoutFallback.String(),
		Layout: model.LayoutFallback,
		Match:  func([]string) bool { return true },
		Extract: func(t []string) model.Row {
			return model.FallbackRow{Token: t[0], Views: count(t, 1), Visitors: count(t, 2)}
		},
	},
}

// Rules returns a copy of the decision table in priority order.
func Rules() []Rule {
	out := make([]Rule, len(rules))
	copy(out, rules)
	return out
}

// Classify runs the decision table over tokens. It returns false when there
// are fewer than three tokens.
func Classify(tokens []string) (model.Row, bool) {
	if len(tokens) < minTokens {
		return nil, false
	}
	for _, rule := range rules {
		if rule.Match(tokens) {
			return rule.Extract(tokens), true
		}
	}
	return nil, false
}

// ParseLine splits line on whitespace runs and classifies it.
func ParseLine(line string) (model.Record, bool) {
	row, ok := Classify(strings.Fields(line))
	if !ok {
		return model.Record{}, false
	}
	return row.Record(), true
}

// ParseLines parses every line and returns the records in order together
// with the number of lines that produced nothing.
func ParseLines(lines []string) ([]model.Record, int) {
	records := make([]model.Record, 0, len(lines))
	dropped := 0
	for _, line := range lines {
		record, ok := ParseLine(line)
		if !ok {
			dropped++
			continue
		}
		records = append(records, record)
	}
	return records, dropped
}

// ParseBlock tokenizes block and parses every candidate line.
func ParseBlock(block string) []model.Record {
	records, _ := ParseLines(Tokenize(block))
	return records
}

// isDayNumber reports whether s is a one or two digit number.
func isDayNumber(s string) bool {
	return isDigits(s, 1) || isDigits(s, 2)
}

// isDigits reports whether s is exactly n ASCII digits.
func isDigits(s string, n int) bool {
	if len(s) != n {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// startsWithLetter reports whether s begins with a Cyrillic letter.
func startsWithLetter(s string) bool {
	r, _ := utf8.DecodeRuneInString(s)
	return isSourceLetter(r)
}

// count parses tokens[i] as a counter, or returns 0 if it is missing.
func count(tokens []string, i int) int64 {
	if i >= len(tokens) {
		return 0
	}
	return ParseCount(tokens[i])
}
