package entity

import (
	"time"

	"github.com/google/uuid"
)

// AppointmentStatus represents where an appointment is in its lifecycle
type AppointmentStatus string

const (
	AppointmentStatusPending   AppointmentStatus = "pending"
	AppointmentStatusApproved  AppointmentStatus = "approved"
	AppointmentStatusCancelled AppointmentStatus = "cancelled"
	AppointmentStatusCompleted AppointmentStatus = "completed"
)

// appointmentTransitions lists the statuses reachable from each status.
// Completed and cancelled are terminal; nothing leads back to pending.
var appointmentTransitions = map[AppointmentStatus][]AppointmentStatus{
	AppointmentStatusPending:   {AppointmentStatusApproved, AppointmentStatusCancelled},
	AppointmentStatusApproved:  {AppointmentStatusCompleted, AppointmentStatusCancelled},
	AppointmentStatusCompleted: nil,
	AppointmentStatusCancelled: nil,
}

// IsValid reports whether s is one of the known statuses
func (s AppointmentStatus) IsValid() bool {
	_, ok := appointmentTransitions[s]
	return ok
}

// CanTransitionTo reports whether moving from s to next is a legal lifecycle step
func (s AppointmentStatus) CanTransitionTo(next AppointmentStatus) bool {
	for _, allowed := range appointmentTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// IsTerminal reports whether no further transition is possible
func (s AppointmentStatus) IsTerminal() bool {
	return s.IsValid() && len(appointmentTransitions[s]) == 0
}

// AppointmentSource is a provenance tag; it never affects lifecycle rules
type AppointmentSource string

const (
	AppointmentSourceWebsite AppointmentSource = "website"
	AppointmentSourceChatbot AppointmentSource = "chatbot"
	AppointmentSourcePhone   AppointmentSource = "phone"
	AppointmentSourceWalkIn  AppointmentSource = "walk-in"
)

func (s AppointmentSource) IsValid() bool {
	switch s {
	case AppointmentSourceWebsite, AppointmentSourceChatbot, AppointmentSourcePhone, AppointmentSourceWalkIn:
		return true
	}
	return false
}

const (
	// DateLayout is the calendar date format used on the wire and in slot keys
	DateLayout = "2006-01-02"
	// TimeLayout is the slot time format
	TimeLayout = "15:04"

	DefaultServiceLabel = "General Consultation"
	DefaultPatientName  = "Patient"
)

// Appointment is a booking of one slot at the clinic
type Appointment struct {
	ID          uuid.UUID         `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	PatientID   *uuid.UUID        `gorm:"type:uuid;index" json:"patient_id,omitempty"`
	GuestName   string            `gorm:"type:varchar(255)" json:"guest_name,omitempty"`
	GuestPhone  string            `gorm:"type:varchar(30)" json:"guest_phone,omitempty"`
	GuestEmail  string            `gorm:"type:varchar(255)" json:"guest_email,omitempty"`
	ServiceID   *uuid.UUID        `gorm:"type:uuid;index" json:"service_id,omitempty"`
	ServiceType string            `gorm:"type:varchar(255)" json:"service_type,omitempty"`
	Date        time.Time         `gorm:"column:appointment_date;type:date;not null;index" json:"date"`
	Time        string            `gorm:"column:appointment_time;type:varchar(5);not null" json:"time"`
	Status      AppointmentStatus `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	Source      AppointmentSource `gorm:"type:varchar(20);not null;default:'website'" json:"source"`
	Notes       string            `gorm:"type:text" json:"notes,omitempty"`
	CreatedAt   time.Time         `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time         `gorm:"autoUpdateTime" json:"updated_at"`

	// Relationships
	Patient *User    `gorm:"foreignKey:PatientID" json:"patient,omitempty"`
	Service *Service `gorm:"foreignKey:ServiceID" json:"service,omitempty"`
}

func (Appointment) TableName() string {
	return "appointments"
}

// IsPending checks if appointment is awaiting staff approval
func (a *Appointment) IsPending() bool {
	return a.Status == AppointmentStatusPending
}

// IsCancelled checks if appointment is cancelled
func (a *Appointment) IsCancelled() bool {
	return a.Status == AppointmentStatusCancelled
}

// DateString returns the calendar date as YYYY-MM-DD
func (a *Appointment) DateString() string {
	return a.Date.Format(DateLayout)
}

// StartsAt combines the calendar date and slot time in loc.
func (a *Appointment) StartsAt(loc *time.Location) (time.Time, error) {
	t, err := time.ParseInLocation(TimeLayout, a.Time, loc)
	if err != nil {
		return time.Time{}, err
	}
	y, m, d := a.Date.Date()
	return time.Date(y, m, d, t.Hour(), t.Minute(), 0, 0, loc), nil
}

// Contact returns who the appointment belongs to. A linked registered patient wins
// over inline guest details; nil means there is nobody to contact.
func (a *Appointment) Contact() Contact {
	if a.Patient != nil && a.Patient.Email != "" {
		return RegisteredContact{User: *a.Patient}
	}
	if a.GuestName != "" || a.GuestPhone != "" || a.GuestEmail != "" {
		return GuestContact{Name: a.GuestName, Phone: a.GuestPhone, EmailAddress: a.GuestEmail}
	}
	return nil
}

// ServiceLabel returns the linked service name, the free-text type, or the default label
func (a *Appointment) ServiceLabel() string {
	if a.Service != nil && a.Service.Name != "" {
		return a.Service.Name
	}
	if a.ServiceType != "" {
		return a.ServiceType
	}
	return DefaultServiceLabel
}

// IsOwnedBy reports whether the registered patient userID booked this appointment
func (a *Appointment) IsOwnedBy(userID uuid.UUID) bool {
	return a.PatientID != nil && *a.PatientID == userID
}
