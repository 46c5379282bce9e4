package datekey

import (
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// monthIndex maps Russian month names to 0-based month ordinals. It accepts
// the three letter abbreviations used by the tables, the nominative names and
// the genitive forms.
var monthIndex = map[string]int{
	"янв": 0, "январь": 0, "января": 0,
	"фев": 1, "февраль": 1, "февраля": 1,
	"мар": 2, "март": 2, "марта": 2,
	"апр": 3, "апрель": 3, "апреля": 3,
	"май": 4, "мая": 4,
	"июн": 5, "июнь": 5, "июня": 5,
	"июл": 6, "июль": 6, "июля": 6,
	"авг": 7, "август": 7, "августа": 7,
	"сен": 8, "сентябрь": 8, "сентября": 8,
	"окт": 9, "октябрь": 9, "октября": 9,
	"ноя": 10, "ноябрь": 10, "ноября": 10,
	"дек": 11, "декабрь": 11, "декабря": 11,
}

// MonthOrdinal returns the 0-based month of name, ignoring case.
// The second result is false for unknown names.
func MonthOrdinal(name string) (int, bool) {
	// A Caser is stateful, so each call gets its own.
	m, ok := monthIndex[cases.Lower(language.Russian).String(name)]
	return m, ok
}
