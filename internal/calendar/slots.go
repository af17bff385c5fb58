package calendar

import (
	"fmt"
	"time"
)

// GenerateSlots returns the ordered start times the clinic offers on date.
// Every open hour contributes HH:00 and HH:30, so a weekday runs 09:00..17:30
// and Saturday 09:00..13:30. Closed days yield an empty grid.
func (p *Policy) GenerateSlots(date time.Time) []string {
	day := p.DayPolicy(date)
	if !day.IsOpen {
		return []string{}
	}

	perHour := int(time.Hour / SlotStep)
	slots := make([]string, 0, (day.CloseHour-day.OpenHour)*perHour)
	for hour := day.OpenHour; hour < day.CloseHour; hour++ {
		for i := 0; i < perHour; i++ {
			minute := i * int(SlotStep/time.Minute)
			slots = append(slots, fmt.Sprintf("%02d:%02d", hour, minute))
		}
	}
	return slots
}

// IsOffered reports whether slot is part of the grid for date.
func (p *Policy) IsOffered(date time.Time, slot string) bool {
	for _, s := range p.GenerateSlots(date) {
		if s == slot {
			return true
		}
	}
	return false
}
