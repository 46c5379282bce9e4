package model

// Layout identifies which line shape produced a Record.
type Layout int

const (
	// LayoutFallback is a line that matched none of the known shapes.
	// The first token is taken as the date verbatim.
	LayoutFallback Layout = iota

	// LayoutWeekly is "<day> <month> <views> <visitors>".
	LayoutWeekly

	// LayoutMonthlyShortYear is "<month> <yy> <views> <visitors>".
	LayoutMonthlyShortYear

	// LayoutMonthlyLongYear is "<month> <yyyy> <views> <visitors>".
	LayoutMonthlyLongYear

	// LayoutMonthlyBare is "<month> <views> <visitors>".
	LayoutMonthlyBare
)

// String returns the layout name used in logs and JSON output.
func (l Layout) String() string {
	switch l {
	case LayoutWeekly:
		return "weekly"
	case LayoutMonthlyShortYear:
		return "monthly-short-year"
	case LayoutMonthlyLongYear:
		return "monthly-long-year"
	case LayoutMonthlyBare:
		return "monthly-bare"
	case LayoutFallback:
		return "fallback"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (l Layout) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler. Unknown names decode
// to LayoutFallback.
func (l *Layout) UnmarshalText(text []byte) error {
	switch string(text) {
	case "weekly":
		*l = LayoutWeekly
	case "monthly-short-year":
		*l = LayoutMonthlyShortYear
	case "monthly-long-year":
		*l = LayoutMonthlyLongYear
	case "monthly-bare":
		*l = LayoutMonthlyBare
	default:
		*l = LayoutFallback
	}
	return nil
}

// Record is one parsed traffic row, independent of the layout it came from.
type Record struct {
	// DateToken is the raw date text, e.g. "16 дек", "Мар 23" or "декабрь".
	// Lookups across sources match this string exactly.
	DateToken string `json:"date"`

	// Views is the page view count. Never negative.
	Views int64 `json:"views"`

	// Visitors is the unique visitor count. Never negative.
	Visitors int64 `json:"visitors"`

	// Layout is the line shape the record was extracted from.
	Layout Layout `json:"layout"`
}

// Row is a layout-specific parse result. Each implementation keeps the
// fields of its own line shape and collapses to a Record on demand.
type Row interface {
	Layout() Layout
	Record() Record
}

// WeeklyRow is a "<day> <month> <views> <visitors>" line.
type WeeklyRow struct {
	Day      string
	Month    string
	Views    int64
	Visitors int64
}

// Layout implements Row.
func (r WeeklyRow) Layout() Layout { return LayoutWeekly }

// Record implements Row.
func (r WeeklyRow) Record() Record {
	return Record{DateToken: r.Day + " " + r.Month, Views: r.Views, Visitors: r.Visitors, Layout: LayoutWeekly}
}

// MonthlyShortYearRow is a "<month> <yy> <views> <visitors>" line.
type MonthlyShortYearRow struct {
	Month    string
	Year     string
	Views    int64
	Visitors int64
}

// Layout implements Row.
func (r MonthlyShortYearRow) Layout() Layout { return LayoutMonthlyShortYear }

// Record implements Row.
func (r MonthlyShortYearRow) Record() Record {
	return Record{DateToken: r.Month + " " + r.Year, Views: r.Views, Visitors: r.Visitors, Layout: LayoutMonthlyShortYear}
}

// MonthlyLongYearRow is a "<month> <yyyy> <views> <visitors>" line.
type MonthlyLongYearRow struct {
	Month    string
	Year     string
	Views    int64
	Visitors int64
}

// Layout implements Row.
func (r MonthlyLongYearRow) Layout() Layout { return LayoutMonthlyLongYear }

// Record implements Row.
func (r MonthlyLongYearRow) Record() Record {
	return Record{DateToken: r.Month + " " + r.Year, Views: r.Views, Visitors: r.Visitors, Layout: LayoutMonthlyLongYear}
}

// MonthlyBareRow is a "<month> <views> <visitors>" line without a year.
type MonthlyBareRow struct {
	Month    string
	Views    int64
	Visitors int64
}

// Layout implements Row.
func (r MonthlyBareRow) Layout() Layout { return LayoutMonthlyBare }

// Record implements Row.
func (r MonthlyBareRow) Record() Record {
	return Record{DateToken: r.Month, Views: r.Views, Visitors: r.Visitors, Layout: LayoutMonthlyBare}
}

// FallbackRow is any other line with at least three tokens.
type FallbackRow struct {
	Token    string
	Views    int64
	Visitors int64
}

// Layout implements Row.
func (r FallbackRow) Layout() Layout { return LayoutFallback }

// Record implements Row.
func (r FallbackRow) Record() Record {
	return Record{DateToken: r.Token, Views: r.Views, Visitors: r.Visitors, Layout: LayoutFallback}
}
