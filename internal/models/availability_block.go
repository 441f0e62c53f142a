package models

import "time"

// AvailabilityBlock is a stored declared-availability block. Times are kept as
// entered ("8:30", "0830", ...) and parsed at the planner boundary.
type AvailabilityBlock struct {
	ID            string    `db:"id" json:"id"`
	SpecialistID  string    `db:"specialist_id" json:"specialist_id"`
	DayOfWeek     string    `db:"day_of_week" json:"day_of_week"`
	StartTime     string    `db:"start_time" json:"start_time"`
	EndTime       string    `db:"end_time" json:"end_time"`
	InPersonHours float64   `db:"in_person_hours" json:"in_person_hours"`
	RemoteHours   float64   `db:"remote_hours" json:"remote_hours"`
	CreatedAt     time.Time `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time `db:"updated_at" json:"updated_at"`
}
