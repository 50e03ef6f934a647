package appointments

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidRequest is returned for malformed booking input
	ErrInvalidRequest = errors.New("invalid booking request")

	// ErrDoctorNotFound is returned when the directory has no such doctor
	ErrDoctorNotFound = errors.New("doctor not found")

	// ErrDoctorInactive is returned when the doctor exists but is not accepting appointments
	ErrDoctorInactive = errors.New("doctor is not active")

	// ErrPastSlot is returned when the requested timestamp is in the past
	ErrPastSlot = errors.New("cannot book an appointment in the past")

	// ErrSlotTaken is returned when the slot already has a scheduled appointment
	ErrSlotTaken = errors.New("slot is already taken")

	// ErrNotFound is returned when an appointment id is unknown
	ErrNotFound = errors.New("appointment not found")

	// ErrForbidden is returned when a patient acts on someone else's appointment
	ErrForbidden = errors.New("appointment belongs to another patient")

	// ErrAlreadyPast is returned when cancelling an appointment that already started
	ErrAlreadyPast = errors.New("cannot cancel a past appointment")
)

// SlotConflictError carries enough context about a booking collision for the
// caller to render a precise message. errors.Is(err, ErrSlotTaken) holds.
type SlotConflictError struct {
	DoctorID   string
	DoctorName string
	Date       string
	Time       string
	PatientID  string
}

func (e *SlotConflictError) Error() string {
	return fmt.Sprintf("slot %s %s with doctor %s is already taken", e.Date, e.Time, e.DoctorID)
}

func (e *SlotConflictError) Unwrap() error {
	return ErrSlotTaken
}
