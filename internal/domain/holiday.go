package domain

import "time"

// Holiday is a named calendar occasion that drives content generation, keyed
// by its DD-MM-YYYY date. Dates are stored verbatim and are not unique;
// lookups take the first match.
type Holiday struct {
	ID          string    `json:"id"`
	Date        string    `json:"date"`
	Prompt      string    `json:"prompt"`
	Description string    `json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// HolidayUpdate carries the fields of a partial update. Nil leaves the stored
// value unchanged.
type HolidayUpdate struct {
	Date        *string
	Prompt      *string
	Description *string
}

// IsEmpty reports whether the update would change nothing.
func (u HolidayUpdate) IsEmpty() bool {
	return u.Date == nil && u.Prompt == nil && u.Description == nil
}
