package engine

import (
	"cmp"
	"slices"
	"time"

	"github.com/tartampluch/go-natal/internal/natal"
)

// ContactEntry is the per-contact result of a sync, served by /api/contacts.
type ContactEntry struct {
	// UID is the UUIDv5 shared by every event generated for this contact.
	UID string `json:"uid"`

	Name string `json:"name"`

	// DateOfBirth is UTC midnight. When YearKnown is false the year is
	// config.DefaultLeapYear and carries no meaning.
	DateOfBirth time.Time `json:"dateOfBirth"`
	YearKnown   bool      `json:"yearKnown"`

	// BirthTime is "HH:MM" when the vCard BDAY carried a time of day.
	BirthTime string `json:"birthTime,omitempty"`

	NextOccurrence time.Time `json:"nextOccurrence"`

	// AgeNext is the age reached at NextOccurrence. Zero when YearKnown is false.
	AgeNext int `json:"ageNext"`

	// NextWetonan is the next date with the same weton as the birth date.
	NextWetonan *time.Time `json:"nextWetonan,omitempty"`

	// Profile is nil when the birth year is unknown.
	Profile *natal.NatalProfile `json:"profile"`
}

// SortByNextOccurrence orders entries by upcoming birthday, then by name.
func SortByNextOccurrence(entries []ContactEntry) {
	slices.SortStableFunc(entries, func(a, b ContactEntry) int {
		if c := a.NextOccurrence.Compare(b.NextOccurrence); c != 0 {
			return c
		}
		return cmp.Compare(a.Name, b.Name)
	})
}
