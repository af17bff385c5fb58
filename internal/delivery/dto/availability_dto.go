package dto

// AvailabilityResponse lists the open and taken slots of one calendar date.
// Closed days carry empty lists.
type AvailabilityResponse struct {
	Date           string   `json:"date"`
	Closed         bool     `json:"closed"`
	ClinicHours    string   `json:"clinic_hours"`
	AvailableSlots []string `json:"available_slots"`
	BookedSlots    []string `json:"booked_slots"`
}
