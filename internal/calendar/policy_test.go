package calendar

import (
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := ParseDate(s)
	require.NoError(t, err)
	return d
}

func TestDayPolicy(t *testing.T) {
	p := NewPolicy(time.UTC, true)

	tests := []struct {
		name  string
		date  string
		open  bool
		hours [2]int
		label string
	}{
		{"monday", "2024-06-10", true, [2]int{9, 18}, "9:00 AM - 6:00 PM"},
		{"friday", "2024-06-14", true, [2]int{9, 18}, "9:00 AM - 6:00 PM"},
		{"saturday", "2024-06-15", true, [2]int{9, 14}, "9:00 AM - 2:00 PM"},
		{"sunday", "2024-06-16", false, [2]int{0, 0}, "clinic is closed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			day := p.DayPolicy(date(t, tt.date))
			assert.Equal(t, tt.open, day.IsOpen)
			assert.Equal(t, tt.hours[0], day.OpenHour)
			assert.Equal(t, tt.hours[1], day.CloseHour)
			assert.Equal(t, tt.label, day.HoursLabel())
		})
	}
}

func TestAllowsTime_CloseHourEdge(t *testing.T) {
	monday := date(t, "2024-06-10")
	saturday := date(t, "2024-06-15")

	lenient := NewPolicy(time.UTC, true)
	assert.True(t, lenient.AllowsTime(monday, 9, 0))
	assert.True(t, lenient.AllowsTime(monday, 17, 59))
	assert.True(t, lenient.AllowsTime(monday, 18, 0))
	assert.False(t, lenient.AllowsTime(monday, 18, 1))
	assert.False(t, lenient.AllowsTime(monday, 8, 59))
	assert.True(t, lenient.AllowsTime(saturday, 14, 0))
	assert.False(t, lenient.AllowsTime(saturday, 14, 30))

	strict := NewPolicy(time.UTC, false)
	assert.False(t, strict.AllowsTime(monday, 18, 0))
	assert.True(t, strict.AllowsTime(monday, 17, 30))
	assert.False(t, strict.AllowsTime(saturday, 14, 0))
}

func TestAllowsTime_ClosedDay(t *testing.T) {
	p := NewPolicy(time.UTC, true)
	assert.False(t, p.AllowsTime(date(t, "2024-06-16"), 10, 0))
}

func TestToday_UsesClinicTimezone(t *testing.T) {
	loc, err := time.LoadLocation("Asia/Karachi")
	require.NoError(t, err)
	p := NewPolicy(loc, true)

	// 20:30 UTC is already 01:30 the next day in Karachi (UTC+5)
	now := time.Date(2024, 6, 10, 20, 30, 0, 0, time.UTC)
	assert.Equal(t, "2024-06-11", p.Today(now).Format("2006-01-02"))
}

func TestAt(t *testing.T) {
	loc, err := time.LoadLocation("Asia/Karachi")
	require.NoError(t, err)
	p := NewPolicy(loc, true)

	at, err := p.At(date(t, "2024-06-12"), "10:30")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 6, 12, 5, 30, 0, 0, time.UTC), at.UTC())

	_, err = p.At(date(t, "2024-06-12"), "1030")
	assert.ErrorIs(t, err, ErrInvalidSlot)
}

func TestParseSlot(t *testing.T) {
	hour, minute, err := ParseSlot("09:30")
	require.NoError(t, err)
	assert.Equal(t, 9, hour)
	assert.Equal(t, 30, minute)

	for _, bad := range []string{"9:30", "24:00", "09:60", "", "ab:cd", "09:30:00"} {
		_, _, err := ParseSlot(bad)
		assert.ErrorIs(t, err, ErrInvalidSlot, bad)
	}
}

func TestParseDate(t *testing.T) {
	_, err := ParseDate("2024-13-01")
	assert.ErrorIs(t, err, ErrInvalidDate)

	d, err := ParseDate("2024-06-12")
	require.NoError(t, err)
	assert.Equal(t, time.Wednesday, d.Weekday())
}

func TestIsGridAligned(t *testing.T) {
	assert.True(t, IsGridAligned(0))
	assert.True(t, IsGridAligned(30))
	assert.False(t, IsGridAligned(15))
	assert.False(t, IsGridAligned(45))
}

func TestLoadPolicy_UnknownZone(t *testing.T) {
	_, err := LoadPolicy("Mars/Olympus_Mons", true)
	assert.Error(t, err)
}
