package appointments

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/clinicware/booking-platform/internal/scheduling"
)

// Store is the durable record of appointments. Create must be atomic: it
// either inserts a scheduled appointment or reports ErrSlotTaken, and two
// concurrent calls for the same (doctor, start) must never both succeed.
type Store interface {
	Create(ctx context.Context, patientID, doctorID string, startAt time.Time, reason string) (*Appointment, error)
	GetByID(ctx context.Context, id int64) (*Appointment, error)
	MarkCancelled(ctx context.Context, id int64) error
	ListScheduledTimes(ctx context.Context, doctorID string, date time.Time) ([]scheduling.TimeOfDay, error)
	ListByPatient(ctx context.Context, patientID string) ([]Appointment, error)
}

// InMemoryStore is a Store for tests and single-process development runs.
type InMemoryStore struct {
	mu     sync.Mutex
	nextID int64
	byID   map[int64]*Appointment
}

// NewInMemoryStore creates an empty in-memory store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{byID: make(map[int64]*Appointment)}
}

// Create inserts a scheduled appointment, enforcing the one-scheduled-per-
// (doctor, start) invariant under the store lock.
func (s *InMemoryStore) Create(_ context.Context, patientID, doctorID string, startAt time.Time, reason string) (*Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, a := range s.byID {
		if a.DoctorID == doctorID && a.StartAt.Equal(startAt) && a.Status == StatusScheduled {
			return nil, ErrSlotTaken
		}
	}

	s.nextID++
	appt := &Appointment{
		ID:        s.nextID,
		PatientID: patientID,
		DoctorID:  doctorID,
		StartAt:   startAt,
		Reason:    reason,
		Status:    StatusScheduled,
		CreatedAt: time.Now().UTC(),
	}
	s.byID[appt.ID] = appt

	out := *appt
	return &out, nil
}

// GetByID returns a copy of the appointment or ErrNotFound.
func (s *InMemoryStore) GetByID(_ context.Context, id int64) (*Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	appt, ok := s.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	out := *appt
	return &out, nil
}

// MarkCancelled flips the status to cancelled.
func (s *InMemoryStore) MarkCancelled(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	appt, ok := s.byID[id]
	if !ok {
		return ErrNotFound
	}
	appt.Status = StatusCancelled
	return nil
}

// ListScheduledTimes returns the start times of scheduled appointments for
// the doctor on the given calendar day, ascending.
func (s *InMemoryStore) ListScheduledTimes(_ context.Context, doctorID string, date time.Time) ([]scheduling.TimeOfDay, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	y, m, d := date.Date()
	var times []scheduling.TimeOfDay
	for _, a := range s.byID {
		if a.DoctorID != doctorID || a.Status != StatusScheduled {
			continue
		}
		ay, am, ad := a.StartAt.Date()
		if ay == y && am == m && ad == d {
			times = append(times, scheduling.TimeOfDay(a.StartAt.Hour()*60+a.StartAt.Minute()))
		}
	}
	sort.Slice(times, func(i, j int) bool { return times[i] < times[j] })
	return times, nil
}

// ListByPatient returns the patient's appointments, newest first.
func (s *InMemoryStore) ListByPatient(_ context.Context, patientID string) ([]Appointment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []Appointment
	for _, a := range s.byID {
		if a.PatientID == patientID {
			out = append(out, *a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartAt.After(out[j].StartAt) })
	return out, nil
}
