package scheduling

import (
	"errors"
	"time"
)

// ErrInvalidSlotDuration is returned when a doctor's slot duration is not positive.
var ErrInvalidSlotDuration = errors.New("slot duration must be at least one minute")

// Slots returns the candidate appointment start times for a working window.
//
// Starts are emitted from workStart, advancing by durationMinutes, while the
// start remains strictly before workEnd. The final slot may therefore end past
// workEnd when the duration does not divide the window evenly; callers that
// care can trim, but the booking flow deliberately accepts those starts.
// An empty (or inverted) window yields no slots and no error.
func Slots(workStart, workEnd TimeOfDay, durationMinutes int) ([]TimeOfDay, error) {
	if durationMinutes <= 0 {
		return nil, ErrInvalidSlotDuration
	}

	var slots []TimeOfDay
	for t := workStart; t < workEnd; t += TimeOfDay(durationMinutes) {
		slots = append(slots, t)
	}
	return slots, nil
}

// Available subtracts booked start times from the candidate slots of a
// doctor's working window on the given date. Dates before today have no
// availability. Exclusion is by exact start-time equality; overlap of slot
// durations is not considered.
//
// The caller supplies both the booked times and "today" so the function stays
// pure and side-effect free.
func Available(workStart, workEnd TimeOfDay, durationMinutes int, date, today time.Time, booked []TimeOfDay) ([]TimeOfDay, error) {
	if dateBefore(date, today) {
		return nil, nil
	}

	slots, err := Slots(workStart, workEnd, durationMinutes)
	if err != nil {
		return nil, err
	}

	taken := make(map[TimeOfDay]struct{}, len(booked))
	for _, b := range booked {
		taken[b] = struct{}{}
	}

	var free []TimeOfDay
	for _, s := range slots {
		if _, ok := taken[s]; !ok {
			free = append(free, s)
		}
	}
	return free, nil
}

// IsSlotStart reports whether t falls on a slot boundary of the window.
func IsSlotStart(workStart, workEnd TimeOfDay, durationMinutes int, t TimeOfDay) (bool, error) {
	slots, err := Slots(workStart, workEnd, durationMinutes)
	if err != nil {
		return false, err
	}
	for _, s := range slots {
		if s == t {
			return true, nil
		}
	}
	return false, nil
}

func dateBefore(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	if ay != by {
		return ay < by
	}
	if am != bm {
		return am < bm
	}
	return ad < bd
}
