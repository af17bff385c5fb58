package converter

import (
	"dental-booking/internal/delivery/dto"
	"dental-booking/internal/domain/entity"
)

// AppointmentToResponse converts an Appointment entity to AppointmentResponse DTO.
// Patient and service are included only when they were preloaded.
func AppointmentToResponse(appointment *entity.Appointment) *dto.AppointmentResponse {
	if appointment == nil {
		return nil
	}

	response := &dto.AppointmentResponse{
		ID:          appointment.ID,
		PatientID:   appointment.PatientID,
		Patient:     UserToResponse(appointment.Patient),
		ServiceID:   appointment.ServiceID,
		Service:     ServiceToResponse(appointment.Service),
		ServiceType: appointment.ServiceType,
		Date:        appointment.DateString(),
		Time:        appointment.Time,
		Status:      string(appointment.Status),
		Source:      string(appointment.Source),
		Notes:       appointment.Notes,
		CreatedAt:   appointment.CreatedAt,
		UpdatedAt:   appointment.UpdatedAt,
	}

	if appointment.GuestName != "" || appointment.GuestPhone != "" || appointment.GuestEmail != "" {
		response.Guest = &dto.GuestResponse{
			Name:  appointment.GuestName,
			Phone: appointment.GuestPhone,
			Email: appointment.GuestEmail,
		}
	}

	return response
}

// AppointmentsToResponses converts a slice of Appointment entities to slice of AppointmentResponse DTOs
func AppointmentsToResponses(appointments []entity.Appointment) []dto.AppointmentResponse {
	responses := make([]dto.AppointmentResponse, len(appointments))
	for i := range appointments {
		responses[i] = *AppointmentToResponse(&appointments[i])
	}
	return responses
}
