package dto

import (
	"time"

	"github.com/google/uuid"
)

// Request DTOs

// CreateAppointmentRequest is a website booking by the logged-in patient
type CreateAppointmentRequest struct {
	ServiceID *uuid.UUID `json:"service_id"`
	Date      string     `json:"date" validate:"required,calendar_date"`
	Time      string     `json:"time" validate:"required,slot_time"`
	Notes     string     `json:"notes" validate:"omitempty,max=1000"`
}

// ChatbotAppointmentRequest is a guest booking collected by the chat widget
type ChatbotAppointmentRequest struct {
	Name        string `json:"name" validate:"required,min=2,max=255"`
	Phone       string `json:"phone" validate:"required,min=7,max=30"`
	Email       string `json:"email" validate:"omitempty,email"`
	ServiceType string `json:"service_type" validate:"omitempty,max=255"`
	Date        string `json:"date" validate:"required,calendar_date"`
	Time        string `json:"time" validate:"required,slot_time"`
	Notes       string `json:"notes" validate:"omitempty,max=1000"`
}

// StaffAppointmentRequest is a phone or walk-in booking entered by staff
type StaffAppointmentRequest struct {
	Source      string     `json:"source" validate:"required,oneof=phone walk-in"`
	GuestName   string     `json:"guest_name" validate:"required,min=2,max=255"`
	GuestPhone  string     `json:"guest_phone" validate:"required,min=7,max=30"`
	GuestEmail  string     `json:"guest_email" validate:"omitempty,email"`
	ServiceID   *uuid.UUID `json:"service_id"`
	ServiceType string     `json:"service_type" validate:"omitempty,max=255"`
	Date        string     `json:"date" validate:"required,calendar_date"`
	Time        string     `json:"time" validate:"required,slot_time"`
	Notes       string     `json:"notes" validate:"omitempty,max=1000"`
}

type UpdateAppointmentStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// Response DTOs

type GuestResponse struct {
	Name  string `json:"name"`
	Phone string `json:"phone,omitempty"`
	Email string `json:"email,omitempty"`
}

type AppointmentResponse struct {
	ID          uuid.UUID        `json:"id"`
	PatientID   *uuid.UUID       `json:"patient_id,omitempty"`
	Patient     *UserResponse    `json:"patient,omitempty"`
	Guest       *GuestResponse   `json:"guest,omitempty"`
	ServiceID   *uuid.UUID       `json:"service_id,omitempty"`
	Service     *ServiceResponse `json:"service,omitempty"`
	ServiceType string           `json:"service_type,omitempty"`
	Date        string           `json:"date"`
	Time        string           `json:"time"`
	Status      string           `json:"status"`
	Source      string           `json:"source"`
	Notes       string           `json:"notes,omitempty"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

type AppointmentListResponse struct {
	Appointments []AppointmentResponse `json:"appointments"`
	Total        int                   `json:"total"`
}
