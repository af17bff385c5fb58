// Package calendar holds the clinic's weekly opening rules and the slot grid
// derived from them. Everything here is pure; callers supply the dates.
package calendar

import (
	"errors"
	"fmt"
	"time"
)

// SlotStep is the spacing between two bookable start times
const SlotStep = 30 * time.Minute

var (
	ErrInvalidDate = errors.New("date must be formatted as YYYY-MM-DD")
	ErrInvalidSlot = errors.New("time must be formatted as HH:MM")
)

// DayPolicy is the opening window of one calendar day. CloseHour is exclusive
// apart from the optional close-hour edge, see Policy.AllowsTime.
type DayPolicy struct {
	Weekday   time.Weekday
	IsOpen    bool
	OpenHour  int
	CloseHour int
}

// HoursLabel renders the window the way patients see it, e.g. "9:00 AM - 6:00 PM".
func (d DayPolicy) HoursLabel() string {
	if !d.IsOpen {
		return "clinic is closed"
	}
	return fmt.Sprintf("%s - %s", hourLabel(d.OpenHour), hourLabel(d.CloseHour))
}

func hourLabel(hour int) string {
	return time.Date(2000, 1, 1, hour, 0, 0, 0, time.UTC).Format("3:04 PM")
}

// weeklyHours is the fixed week: Sunday closed, weekdays 9-18, Saturday 9-14.
var weeklyHours = map[time.Weekday][2]int{
	time.Monday:    {9, 18},
	time.Tuesday:   {9, 18},
	time.Wednesday: {9, 18},
	time.Thursday:  {9, 18},
	time.Friday:    {9, 18},
	time.Saturday:  {9, 14},
}

type Policy struct {
	loc            *time.Location
	allowCloseHour bool
}

// NewPolicy builds a policy for a clinic in loc. When allowCloseHour is set a
// booking exactly at the close hour (18:00 on weekdays) passes validation even
// though the grid never offers it.
func NewPolicy(loc *time.Location, allowCloseHour bool) *Policy {
	if loc == nil {
		loc = time.UTC
	}
	return &Policy{loc: loc, allowCloseHour: allowCloseHour}
}

// LoadPolicy resolves an IANA timezone name and builds the policy.
func LoadPolicy(timezone string, allowCloseHour bool) (*Policy, error) {
	loc, err := time.LoadLocation(timezone)
	if err != nil {
		return nil, fmt.Errorf("load clinic timezone %q: %w", timezone, err)
	}
	return NewPolicy(loc, allowCloseHour), nil
}

// Location is where calendar dates and slot times are interpreted
func (p *Policy) Location() *time.Location {
	return p.loc
}

func (p *Policy) AllowsCloseHour() bool {
	return p.allowCloseHour
}

// DayPolicy returns the opening window for the calendar date of date.
func (p *Policy) DayPolicy(date time.Time) DayPolicy {
	weekday := date.Weekday()
	hours, ok := weeklyHours[weekday]
	if !ok {
		return DayPolicy{Weekday: weekday}
	}
	return DayPolicy{Weekday: weekday, IsOpen: true, OpenHour: hours[0], CloseHour: hours[1]}
}

// AllowsTime reports whether hour:minute on date falls inside the opening window.
func (p *Policy) AllowsTime(date time.Time, hour, minute int) bool {
	day := p.DayPolicy(date)
	if !day.IsOpen || minute < 0 || minute > 59 {
		return false
	}
	if hour >= day.OpenHour && hour < day.CloseHour {
		return true
	}
	return p.allowCloseHour && hour == day.CloseHour && minute == 0
}

// Today returns the clinic-local calendar date of now.
func (p *Policy) Today(now time.Time) time.Time {
	return DateOf(now.In(p.loc))
}

// At combines a calendar date and a slot time into an instant in clinic time.
func (p *Policy) At(date time.Time, slot string) (time.Time, error) {
	hour, minute, err := ParseSlot(slot)
	if err != nil {
		return time.Time{}, err
	}
	y, m, d := date.Date()
	return time.Date(y, m, d, hour, minute, 0, 0, p.loc), nil
}

// DateOf strips the clock from t, keeping its calendar date. Calendar dates are
// carried as midnight UTC so they compare and format the same everywhere.
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD calendar date.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, ErrInvalidDate
	}
	return t, nil
}

// ParseSlot splits a strict HH:MM 24-hour time.
func ParseSlot(s string) (hour, minute int, err error) {
	if len(s) != 5 {
		return 0, 0, ErrInvalidSlot
	}
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, 0, ErrInvalidSlot
	}
	return t.Hour(), t.Minute(), nil
}

// IsGridAligned reports whether minute sits on a slot boundary.
func IsGridAligned(minute int) bool {
	return minute%int(SlotStep/time.Minute) == 0
}
