package budget

import (
	"time"
)

// =============================================================================
// TIME POINT - Day-granular date (all budget math is per calendar day)
// =============================================================================

type TimePoint struct {
	Time time.Time
}

const DateLayout = "2006-01-02"

// Constructors
func NewTimePoint(year int, month time.Month, day int) TimePoint {
	return TimePoint{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// FromTime truncates t to its calendar day in UTC.
func FromTime(t time.Time) TimePoint {
	t = t.UTC()
	return NewTimePoint(t.Year(), t.Month(), t.Day())
}

// ParseTimePoint parses a YYYY-MM-DD date.
func ParseTimePoint(s string) (TimePoint, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return TimePoint{}, err
	}
	return FromTime(t), nil
}

// Comparison
func (tp TimePoint) Before(other TimePoint) bool        { return tp.Time.Before(other.Time) }
func (tp TimePoint) Equal(other TimePoint) bool         { return tp.Time.Equal(other.Time) }
func (tp TimePoint) After(other TimePoint) bool         { return tp.Time.After(other.Time) }
func (tp TimePoint) BeforeOrEqual(other TimePoint) bool { return !tp.After(other) }
func (tp TimePoint) AfterOrEqual(other TimePoint) bool  { return !tp.Before(other) }

// Arithmetic
func (tp TimePoint) AddDays(n int) TimePoint { return TimePoint{Time: tp.Time.AddDate(0, 0, n)} }

// Properties
func (tp TimePoint) Year() int         { return tp.Time.Year() }
func (tp TimePoint) Month() time.Month { return tp.Time.Month() }
func (tp TimePoint) Day() int          { return tp.Time.Day() }
func (tp TimePoint) IsZero() bool      { return tp.Time.IsZero() }
func (tp TimePoint) String() string    { return tp.Time.Format(DateLayout) }

// MonthIndex returns the zero-based month (January = 0).
func (tp TimePoint) MonthIndex() int { return int(tp.Time.Month()) - 1 }

// =============================================================================
// PERIOD - Inclusive date window
// =============================================================================

type Period struct {
	Start TimePoint
	End   TimePoint
}

// Contains returns true if the time point is within [Start, End].
func (p Period) Contains(t TimePoint) bool {
	return t.AfterOrEqual(p.Start) && t.BeforeOrEqual(p.End)
}

// Days returns the inclusive day count, or 0 for an inverted period.
func (p Period) Days() int {
	if p.Start.After(p.End) {
		return 0
	}
	return DaysBetween(p.Start, p.End) + 1
}

func (p Period) String() string {
	return "[" + p.Start.String() + ", " + p.End.String() + "]"
}

// =============================================================================
// YEAR-BOUNDED DATE MATH
// =============================================================================

func DaysBetween(from, to TimePoint) int { return int(to.Time.Sub(from.Time).Hours() / 24) }
func StartOfYear(year int) TimePoint     { return NewTimePoint(year, time.January, 1) }
func EndOfYear(year int) TimePoint       { return NewTimePoint(year, time.December, 31) }

// YearWindow returns Jan 1 - Dec 31 of year.
func YearWindow(year int) Period {
	return Period{Start: StartOfYear(year), End: EndOfYear(year)}
}

// Clamp narrows [start, end] into the window. Nil bounds default to the
// window edges. The result may be inverted (Start after End) when the
// range lies outside the window.
func (p Period) Clamp(start, end *TimePoint) Period {
	out := p
	if start != nil && start.After(out.Start) {
		out.Start = *start
	}
	if end != nil && end.Before(out.End) {
		out.End = *end
	}
	return out
}

// OverlapDays returns how many days of the window the assignment covers.
// Assignments entirely outside the window return 0; whole-year
// assignments return 365 or 366.
func OverlapDays(a Assignment, window Period) int {
	return window.Clamp(a.StartDate, a.EndDate).Days()
}
