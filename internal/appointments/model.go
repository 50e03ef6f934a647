package appointments

import (
	"strings"
	"time"
)

// Appointment statuses. Cancellation is a state change, never a delete, so
// history is preserved and a cancelled slot becomes bookable again.
const (
	StatusScheduled = "scheduled"
	StatusCompleted = "completed"
	StatusCancelled = "cancelled"
)

// Appointment is a booked slot owned by this service.
type Appointment struct {
	ID        int64     `json:"id"`
	PatientID string    `json:"patient_id"`
	DoctorID  string    `json:"doctor_id"`
	StartAt   time.Time `json:"start_at"`
	Reason    string    `json:"reason,omitempty"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

// BookRequest is the body of POST /appointments.
type BookRequest struct {
	PatientID string `json:"patientId"`
	DoctorID  string `json:"doctorId"`
	Date      string `json:"date"` // YYYY-MM-DD
	Time      string `json:"time"` // HH:MM
	Reason    string `json:"reason"`
}

// Validate checks required fields are present.
func (r *BookRequest) Validate() error {
	if strings.TrimSpace(r.PatientID) == "" ||
		strings.TrimSpace(r.DoctorID) == "" ||
		strings.TrimSpace(r.Date) == "" ||
		strings.TrimSpace(r.Time) == "" {
		return ErrInvalidRequest
	}
	return nil
}

// CancelRequest is the body of POST /appointments/{id}/cancel. The patient id
// arrives in the request because session management lives outside this service.
type CancelRequest struct {
	PatientID string `json:"patientId"`
}

// BookingConfirmation echoes the committed appointment for confirmation
// messaging.
type BookingConfirmation struct {
	AppointmentID    int64  `json:"appointmentId"`
	ConfirmationCode string `json:"confirmationCode"`
	DoctorID         string `json:"doctorId"`
	DoctorName       string `json:"doctorName"`
	Date             string `json:"date"`
	Time             string `json:"time"`
	Reason           string `json:"reason,omitempty"`
	Status           string `json:"status"`
}
