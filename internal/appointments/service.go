package appointments

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/clinicware/booking-platform/internal/directory"
	"github.com/clinicware/booking-platform/internal/observability/metrics"
	"github.com/clinicware/booking-platform/internal/scheduling"
	"github.com/clinicware/booking-platform/pkg/logging"
)

const (
	dateLayout = "2006-01-02"
)

// Service implements the booking transaction, availability lookups and
// cancellation on top of the doctor directory and the appointment store.
type Service struct {
	directory directory.Directory
	store     Store
	metrics   *metrics.BookingMetrics
	logger    *logging.Logger
	locks     *keyedMutex
	now       func() time.Time
}

// NewService creates a booking service.
func NewService(dir directory.Directory, store Store, m *metrics.BookingMetrics, logger *logging.Logger) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	return &Service{
		directory: dir,
		store:     store,
		metrics:   m,
		logger:    logger,
		locks:     newKeyedMutex(),
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// WithClock overrides the time source, mainly for tests.
func (s *Service) WithClock(now func() time.Time) *Service {
	if now != nil {
		s.now = now
	}
	return s
}

// Book validates the request and commits the appointment exactly once.
// Concurrent attempts for the same doctor are serialized; exactly one wins a
// contested slot and the rest receive ErrSlotTaken.
func (s *Service) Book(ctx context.Context, req *BookRequest) (*BookingConfirmation, error) {
	if err := req.Validate(); err != nil {
		s.metrics.ObserveBooking("invalid")
		return nil, err
	}

	doc, err := s.lookupDoctor(ctx, req.DoctorID)
	if err != nil {
		switch {
		case errors.Is(err, ErrDoctorNotFound):
			s.metrics.ObserveBooking("doctor_not_found")
		case errors.Is(err, ErrDoctorInactive):
			s.metrics.ObserveBooking("doctor_inactive")
		default:
			s.metrics.ObserveBooking("directory_error")
		}
		return nil, err
	}

	startAt, tod, err := parseSlotTimestamp(req.Date, req.Time)
	if err != nil {
		s.metrics.ObserveBooking("invalid")
		return nil, err
	}

	if startAt.Before(s.now()) {
		s.metrics.ObserveBooking("past_slot")
		return nil, ErrPastSlot
	}

	onBoundary, err := scheduling.IsSlotStart(doc.WorkStart, doc.WorkEnd, doc.SlotMinutes, tod)
	if err != nil {
		s.metrics.ObserveBooking("bad_doctor_config")
		return nil, fmt.Errorf("appointments: doctor %s has invalid schedule: %w", doc.ID, err)
	}
	if !onBoundary {
		s.metrics.ObserveBooking("invalid")
		return nil, fmt.Errorf("%w: %s is not a bookable slot for doctor %s", ErrInvalidRequest, req.Time, doc.ID)
	}

	unlock := s.locks.lock(doc.ID)
	defer unlock()

	appt, err := s.store.Create(ctx, req.PatientID, doc.ID, startAt, req.Reason)
	if err != nil {
		if errors.Is(err, ErrSlotTaken) {
			s.metrics.ObserveBooking("slot_taken")
			return nil, &SlotConflictError{
				DoctorID:   doc.ID,
				DoctorName: doc.Name,
				Date:       req.Date,
				Time:       req.Time,
				PatientID:  req.PatientID,
			}
		}
		s.metrics.ObserveBooking("store_error")
		return nil, fmt.Errorf("appointments: commit booking: %w", err)
	}

	s.metrics.ObserveBooking("booked")
	s.logger.Info("appointment booked",
		"appointment_id", appt.ID,
		"doctor_id", doc.ID,
		"start_at", appt.StartAt,
	)

	return &BookingConfirmation{
		AppointmentID:    appt.ID,
		ConfirmationCode: uuid.New().String(),
		DoctorID:         doc.ID,
		DoctorName:       doc.Name,
		Date:             req.Date,
		Time:             req.Time,
		Reason:           req.Reason,
		Status:           appt.Status,
	}, nil
}

// Availability returns the free slots for a doctor on a date. Availability is
// advisory: directory or store failures degrade to an empty list because the
// booking path re-validates authoritatively.
func (s *Service) Availability(ctx context.Context, doctorID string, date time.Time) []scheduling.TimeOfDay {
	started := time.Now()
	doc, err := s.directory.GetDoctor(ctx, doctorID)
	s.metrics.ObserveDirectoryLatency("get_doctor", time.Since(started).Seconds())
	if err != nil {
		if !errors.Is(err, directory.ErrNotFound) {
			s.logger.Warn("availability: directory lookup failed", "doctor_id", doctorID, "error", err)
		}
		return nil
	}

	return s.availabilityFor(ctx, doc, date)
}

func (s *Service) availabilityFor(ctx context.Context, doc *directory.Doctor, date time.Time) []scheduling.TimeOfDay {
	booked, err := s.store.ListScheduledTimes(ctx, doc.ID, date)
	if err != nil {
		s.logger.Warn("availability: listing booked slots failed", "doctor_id", doc.ID, "error", err)
		return nil
	}

	free, err := scheduling.Available(doc.WorkStart, doc.WorkEnd, doc.SlotMinutes, date, s.now(), booked)
	if err != nil {
		s.logger.Warn("availability: slot generation failed", "doctor_id", doc.ID, "error", err)
		return nil
	}
	return free
}

// Cancel marks the appointment cancelled. Only the owning patient may cancel,
// only before the appointment starts. Re-cancelling an already cancelled
// appointment is a no-op success.
func (s *Service) Cancel(ctx context.Context, id int64, patientID string) error {
	appt, err := s.store.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			s.metrics.ObserveCancellation("not_found")
			return err
		}
		s.metrics.ObserveCancellation("store_error")
		return fmt.Errorf("appointments: load for cancel: %w", err)
	}

	if appt.PatientID != patientID {
		s.metrics.ObserveCancellation("forbidden")
		return ErrForbidden
	}
	if appt.Status == StatusCancelled {
		s.metrics.ObserveCancellation("already_cancelled")
		return nil
	}
	if appt.StartAt.Before(s.now()) {
		s.metrics.ObserveCancellation("already_past")
		return ErrAlreadyPast
	}

	if err := s.store.MarkCancelled(ctx, id); err != nil {
		s.metrics.ObserveCancellation("store_error")
		return fmt.Errorf("appointments: cancel: %w", err)
	}

	s.metrics.ObserveCancellation("cancelled")
	s.logger.Info("appointment cancelled", "appointment_id", id)
	return nil
}

// ListForPatient returns the patient's appointments, newest first.
func (s *Service) ListForPatient(ctx context.Context, patientID string) ([]Appointment, error) {
	appts, err := s.store.ListByPatient(ctx, patientID)
	if err != nil {
		return nil, fmt.Errorf("appointments: list for patient: %w", err)
	}
	return appts, nil
}

// DoctorAvailability pairs a doctor with their free slots for a day.
type DoctorAvailability struct {
	Doctor directory.Doctor       `json:"doctor"`
	Slots  []scheduling.TimeOfDay `json:"slots"`
}

// FindDoctors lists active doctors, optionally filtered by specialty and
// annotated with free slots when a date is given. Directory failures degrade
// to an empty list.
func (s *Service) FindDoctors(ctx context.Context, specialty string, date *time.Time) []DoctorAvailability {
	started := time.Now()
	var (
		doctors []directory.Doctor
		err     error
	)
	if specialty != "" {
		doctors, err = s.directory.ListBySpecialty(ctx, specialty)
		s.metrics.ObserveDirectoryLatency("list_by_specialty", time.Since(started).Seconds())
	} else {
		doctors, err = s.directory.ListAll(ctx)
		s.metrics.ObserveDirectoryLatency("list_all", time.Since(started).Seconds())
	}
	if err != nil {
		s.logger.Warn("doctor search: directory unavailable", "error", err)
		return nil
	}

	var out []DoctorAvailability
	for i := range doctors {
		if !doctors[i].Active {
			continue
		}
		entry := DoctorAvailability{Doctor: doctors[i]}
		if date != nil {
			entry.Slots = s.availabilityFor(ctx, &doctors[i], *date)
		}
		out = append(out, entry)
	}
	return out
}

func (s *Service) lookupDoctor(ctx context.Context, doctorID string) (*directory.Doctor, error) {
	started := time.Now()
	doc, err := s.directory.GetDoctor(ctx, doctorID)
	s.metrics.ObserveDirectoryLatency("get_doctor", time.Since(started).Seconds())
	if err != nil {
		if errors.Is(err, directory.ErrNotFound) {
			return nil, ErrDoctorNotFound
		}
		return nil, fmt.Errorf("appointments: doctor lookup: %w", err)
	}
	if !doc.Active {
		return nil, ErrDoctorInactive
	}
	return doc, nil
}

func parseSlotTimestamp(dateStr, timeStr string) (time.Time, scheduling.TimeOfDay, error) {
	date, err := time.ParseInLocation(dateLayout, dateStr, time.UTC)
	if err != nil {
		return time.Time{}, 0, fmt.Errorf("%w: bad date %q", ErrInvalidRequest, dateStr)
	}
	tod, err := scheduling.ParseTimeOfDay(timeStr)
	if err != nil {
		return time.Time{}, 0, fmt.Errorf("%w: bad time %q", ErrInvalidRequest, timeStr)
	}
	return tod.At(date), tod, nil
}
