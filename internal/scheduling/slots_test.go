package scheduling

import (
	"errors"
	"testing"
	"time"
)

func mustTime(t *testing.T, s string) TimeOfDay {
	t.Helper()
	v, err := ParseTimeOfDay(s)
	if err != nil {
		t.Fatalf("parse %q: %v", s, err)
	}
	return v
}

func TestSlots_FullWorkday(t *testing.T) {
	start := mustTime(t, "08:00")
	end := mustTime(t, "17:00")

	slots, err := Slots(start, end, 30)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(slots) != 18 {
		t.Fatalf("expected 18 slots for 08:00-17:00 every 30m, got %d", len(slots))
	}
	if slots[0].String() != "08:00" {
		t.Errorf("first slot should be 08:00, got %s", slots[0])
	}
	if slots[len(slots)-1].String() != "16:30" {
		t.Errorf("last slot should be 16:30, got %s", slots[len(slots)-1])
	}
	for i := 1; i < len(slots); i++ {
		if slots[i] <= slots[i-1] {
			t.Fatalf("slots not strictly ascending at %d: %s <= %s", i, slots[i], slots[i-1])
		}
	}
}

func TestSlots_UnevenWindowKeepsOverrunningSlot(t *testing.T) {
	// 09:00-10:15 with 30m slots: the 10:00 slot ends past the window but is
	// still emitted. Starts only have to fall inside the window.
	slots, err := Slots(mustTime(t, "09:00"), mustTime(t, "10:15"), 30)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"09:00", "09:30", "10:00"}
	if len(slots) != len(want) {
		t.Fatalf("expected %d slots, got %d (%v)", len(want), len(slots), slots)
	}
	for i, w := range want {
		if slots[i].String() != w {
			t.Errorf("slot %d: expected %s, got %s", i, w, slots[i])
		}
	}
}

func TestSlots_InvalidDuration(t *testing.T) {
	if _, err := Slots(mustTime(t, "08:00"), mustTime(t, "17:00"), 0); !errors.Is(err, ErrInvalidSlotDuration) {
		t.Fatalf("expected ErrInvalidSlotDuration, got %v", err)
	}
	if _, err := Slots(mustTime(t, "08:00"), mustTime(t, "17:00"), -15); !errors.Is(err, ErrInvalidSlotDuration) {
		t.Fatalf("expected ErrInvalidSlotDuration, got %v", err)
	}
}

func TestSlots_EmptyWindow(t *testing.T) {
	slots, err := Slots(mustTime(t, "17:00"), mustTime(t, "08:00"), 30)
	if err != nil {
		t.Fatalf("inverted window should not be an error: %v", err)
	}
	if len(slots) != 0 {
		t.Fatalf("inverted window should yield no slots, got %v", slots)
	}

	slots, err = Slots(mustTime(t, "09:00"), mustTime(t, "09:00"), 30)
	if err != nil || len(slots) != 0 {
		t.Fatalf("zero-width window should yield no slots, got %v err %v", slots, err)
	}
}

func TestAvailable_ExcludesBookedTimes(t *testing.T) {
	today := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	date := time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)

	booked := []TimeOfDay{mustTime(t, "08:30"), mustTime(t, "12:00")}
	free, err := Available(mustTime(t, "08:00"), mustTime(t, "17:00"), 30, date, today, booked)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(free) != 16 {
		t.Fatalf("expected 16 free slots, got %d", len(free))
	}
	for _, f := range free {
		for _, b := range booked {
			if f == b {
				t.Fatalf("booked slot %s leaked into availability", b)
			}
		}
	}
}

func TestAvailable_PastDateIsEmpty(t *testing.T) {
	today := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)
	date := time.Date(2025, 6, 9, 0, 0, 0, 0, time.UTC)

	free, err := Available(mustTime(t, "08:00"), mustTime(t, "17:00"), 30, date, today, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(free) != 0 {
		t.Fatalf("past dates must have no availability, got %v", free)
	}
}

func TestAvailable_TodayIsNotPast(t *testing.T) {
	// Same calendar day, later wall clock: the date-only comparison must not
	// treat today as past.
	today := time.Date(2025, 6, 10, 23, 0, 0, 0, time.UTC)
	date := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)

	free, err := Available(mustTime(t, "08:00"), mustTime(t, "09:00"), 30, date, today, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(free) != 2 {
		t.Fatalf("expected 2 slots for today, got %v", free)
	}
}

func TestAvailable_OneMinuteOffBookedSlotStaysFree(t *testing.T) {
	// Exact equality is the only exclusion criterion: a booking at 08:01 does
	// not block the 08:00 or 08:30 slots even though it overlaps both.
	today := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	date := today

	booked := []TimeOfDay{mustTime(t, "08:01")}
	free, err := Available(mustTime(t, "08:00"), mustTime(t, "09:00"), 30, date, today, booked)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(free) != 2 {
		t.Fatalf("expected both slots free, got %v", free)
	}
}

func TestIsSlotStart(t *testing.T) {
	start, end := mustTime(t, "08:00"), mustTime(t, "17:00")

	ok, err := IsSlotStart(start, end, 30, mustTime(t, "09:30"))
	if err != nil || !ok {
		t.Fatalf("09:30 should be a slot boundary (ok=%v err=%v)", ok, err)
	}
	ok, err = IsSlotStart(start, end, 30, mustTime(t, "09:45"))
	if err != nil || ok {
		t.Fatalf("09:45 should not be a slot boundary (ok=%v err=%v)", ok, err)
	}
	ok, err = IsSlotStart(start, end, 30, mustTime(t, "17:00"))
	if err != nil || ok {
		t.Fatalf("17:00 is past the window (ok=%v err=%v)", ok, err)
	}
}

func TestTimeOfDayJSONRoundTrip(t *testing.T) {
	v := mustTime(t, "14:05")
	data, err := v.MarshalJSON()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != `"14:05"` {
		t.Fatalf("unexpected JSON %s", data)
	}

	var back TimeOfDay
	if err := back.UnmarshalJSON(data); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if back != v {
		t.Fatalf("round trip mismatch: %v != %v", back, v)
	}
}

func TestParseTimeOfDayRejectsGarbage(t *testing.T) {
	for _, bad := range []string{"", "8am", "25:00", "12:61", "noon"} {
		if _, err := ParseTimeOfDay(bad); err == nil {
			t.Errorf("expected error for %q", bad)
		}
	}
}
