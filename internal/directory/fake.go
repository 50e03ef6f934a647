package directory

import (
	"context"
	"strings"
	"sync"
)

// FakeDirectory is an in-memory Directory for tests and local development.
type FakeDirectory struct {
	mu      sync.RWMutex
	doctors map[string]Doctor
}

// NewFakeDirectory creates a fake directory seeded with the given doctors.
func NewFakeDirectory(doctors ...Doctor) *FakeDirectory {
	f := &FakeDirectory{doctors: make(map[string]Doctor)}
	for _, d := range doctors {
		f.doctors[d.ID] = d
	}
	return f
}

// Put inserts or replaces a doctor record.
func (f *FakeDirectory) Put(d Doctor) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.doctors[d.ID] = d
}

// GetDoctor returns a copy of the doctor, or ErrNotFound.
func (f *FakeDirectory) GetDoctor(_ context.Context, id string) (*Doctor, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	d, ok := f.doctors[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &d, nil
}

// ListBySpecialty matches case-insensitively.
func (f *FakeDirectory) ListBySpecialty(_ context.Context, specialty string) ([]Doctor, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	var matched []Doctor
	for _, d := range f.doctors {
		if strings.EqualFold(d.Specialty, specialty) {
			matched = append(matched, d)
		}
	}
	return matched, nil
}

// ListAll returns every stored doctor.
func (f *FakeDirectory) ListAll(_ context.Context) ([]Doctor, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	out := make([]Doctor, 0, len(f.doctors))
	for _, d := range f.doctors {
		out = append(out, d)
	}
	return out, nil
}
