// Package bizdate fixes all day and month boundary arithmetic to a
// single business timezone, independent of the host clock.
package bizdate

import (
	"fmt"
	"time"
)

// DefaultTimezone is used when no timezone is configured.
const DefaultTimezone = "Europe/Amsterdam"

// Calendar resolves dates against one fixed business timezone.
type Calendar struct {
	loc *time.Location
}

// New creates a Calendar for the given IANA timezone name.
func New(name string) (*Calendar, error) {
	if name == "" {
		name = DefaultTimezone
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("load business timezone %q: %w", name, err)
	}
	return &Calendar{loc: loc}, nil
}

// MustNew is New for static configuration; panics on a bad name.
func MustNew(name string) *Calendar {
	c, err := New(name)
	if err != nil {
		panic(err)
	}
	return c
}

// Location returns the underlying business location.
func (c *Calendar) Location() *time.Location { return c.loc }

// In shifts t into the business timezone.
func (c *Calendar) In(t time.Time) time.Time { return t.In(c.loc) }

// DayOfMonth returns t's day of month in the business timezone.
func (c *Calendar) DayOfMonth(t time.Time) int { return t.In(c.loc).Day() }

// DaysInMonth returns the length of t's month in the business timezone.
func (c *Calendar) DaysInMonth(t time.Time) int {
	bt := t.In(c.loc)
	first := time.Date(bt.Year(), bt.Month(), 1, 0, 0, 0, 0, c.loc)
	return first.AddDate(0, 1, -1).Day()
}

// MonthKey returns the period key for t's business month, e.g. "2026-08".
func (c *Calendar) MonthKey(t time.Time) string {
	return t.In(c.loc).Format("2006-01")
}

// Weekday returns t's weekday in the business timezone.
func (c *Calendar) Weekday(t time.Time) time.Weekday {
	return t.In(c.loc).Weekday()
}

// SameDay reports whether a and b fall on the same business-local day.
func (c *Calendar) SameDay(a, b time.Time) bool {
	ba, bb := a.In(c.loc), b.In(c.loc)
	return ba.Year() == bb.Year() && ba.YearDay() == bb.YearDay()
}

// StartOfMonth returns midnight on the first of t's business month.
func (c *Calendar) StartOfMonth(t time.Time) time.Time {
	bt := t.In(c.loc)
	return time.Date(bt.Year(), bt.Month(), 1, 0, 0, 0, 0, c.loc)
}

// StartOfDay returns midnight of t's business-local day.
func (c *Calendar) StartOfDay(t time.Time) time.Time {
	bt := t.In(c.loc)
	return time.Date(bt.Year(), bt.Month(), bt.Day(), 0, 0, 0, 0, c.loc)
}
