package registry

import "time"

// Entry is the reputation record for one canonical phone number.
//
// Invariants:
// - Whitelisted and Blacklisted are mutually exclusive; writes enforce this
//   transactionally (setting one clears the other).
// - The phone number key is canonical (pkg/phone) and immutable once written.
// - Absence of an entry means neutral; Lookup surfaces that as a zero Entry
//   rather than an error so the decision engine has a single read path.
type Entry struct {
	PhoneNumber string    `json:"phone_number" db:"phone_number"`
	Whitelisted bool      `json:"whitelisted" db:"whitelisted"`
	Blacklisted bool      `json:"blacklisted" db:"blacklisted"`
	DisplayName string    `json:"display_name,omitempty" db:"display_name"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// Neutral reports whether the entry carries no reputation either way.
func (e Entry) Neutral() bool { return !e.Whitelisted && !e.Blacklisted }
