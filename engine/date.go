package engine

import (
	"time"
)

// =============================================================================
// DATE - Day-granular time point (all engine inputs are calendar dates)
// =============================================================================

type Date struct {
	Time time.Time
}

// Constructors
func NewDate(year int, month time.Month, day int) Date {
	return Date{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

func DateOf(t time.Time) Date {
	return NewDate(t.Year(), t.Month(), t.Day())
}

func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Date{}, err
	}
	return DateOf(t), nil
}

// Comparison
func (d Date) Before(o Date) bool        { return d.normalize().Before(o.normalize()) }
func (d Date) Equal(o Date) bool         { return d.normalize().Equal(o.normalize()) }
func (d Date) After(o Date) bool         { return d.normalize().After(o.normalize()) }
func (d Date) BeforeOrEqual(o Date) bool { return d.Before(o) || d.Equal(o) }
func (d Date) AfterOrEqual(o Date) bool  { return d.After(o) || d.Equal(o) }

func (d Date) normalize() time.Time {
	return time.Date(d.Time.Year(), d.Time.Month(), d.Time.Day(), 0, 0, 0, 0, time.UTC)
}

// Arithmetic
func (d Date) AddDays(n int) Date { return Date{Time: d.Time.AddDate(0, 0, n)} }

// Properties
func (d Date) Year() int             { return d.Time.Year() }
func (d Date) Month() time.Month     { return d.Time.Month() }
func (d Date) Day() int              { return d.Time.Day() }
func (d Date) Weekday() time.Weekday { return d.Time.Weekday() }
func (d Date) IsZero() bool          { return d.Time.IsZero() }

func (d Date) String() string { return d.Time.Format("2006-01-02") }

// DaysBetween returns whole days from one date to another. Negative when
// `to` precedes `from`.
func DaysBetween(from, to Date) int {
	return int(to.normalize().Sub(from.normalize()).Hours() / 24)
}

// =============================================================================
// DATE RANGE - Half-open interval [From, To)
// =============================================================================

// DateRange is a half-open interval: From is included, To is not. A two-night
// hotel stay arriving July 3 is [2024-07-03, 2024-07-05).
type DateRange struct {
	From Date
	To   Date
}

func NewDateRange(from, to Date) (DateRange, error) {
	r := DateRange{From: from, To: to}
	if err := r.Validate(); err != nil {
		return DateRange{}, err
	}
	return r, nil
}

// Validate enforces the From < To invariant.
func (r DateRange) Validate() error {
	if !r.From.Before(r.To) {
		return &InvalidDateRangeError{From: r.From, To: r.To}
	}
	return nil
}

// Nights returns the number of nights (or service days) the range spans.
func (r DateRange) Nights() int {
	return DaysBetween(r.From, r.To)
}

// Dates returns each date in the range, excluding To.
func (r DateRange) Dates() []Date {
	var dates []Date
	for d := r.From; d.Before(r.To); d = d.AddDays(1) {
		dates = append(dates, d)
	}
	return dates
}

// Contains reports whether the date falls within [From, To).
func (r DateRange) Contains(d Date) bool {
	return d.AfterOrEqual(r.From) && d.Before(r.To)
}

// Within reports whether the whole range lies inside the outer range.
func (r DateRange) Within(outer DateRange) bool {
	return r.From.AfterOrEqual(outer.From) && r.To.BeforeOrEqual(outer.To)
}

func (r DateRange) String() string {
	return "[" + r.From.String() + ", " + r.To.String() + ")"
}
