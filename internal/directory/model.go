package directory

import (
	"strings"

	"github.com/clinicware/booking-platform/internal/scheduling"
)

// Doctor is a read-only snapshot of a practitioner record owned by the
// remote employee directory. This service never mutates doctors.
type Doctor struct {
	ID          string               `json:"id"`
	Name        string               `json:"name"`
	Specialty   string               `json:"specialty"`
	Active      bool                 `json:"active"`
	WorkStart   scheduling.TimeOfDay `json:"workStart"`
	WorkEnd     scheduling.TimeOfDay `json:"workEnd"`
	SlotMinutes int                  `json:"slotMinutes"`
}

// IsDoctor reports whether a directory record represents a practitioner.
// The employee directory also lists administrative staff; only records
// carrying a specialty are bookable.
func (d Doctor) IsDoctor() bool {
	return strings.TrimSpace(d.Specialty) != ""
}
