package models

import "time"

// AccompanimentVisit is a visit already confirmed by the confirmation service.
type AccompanimentVisit struct {
	ID              string    `db:"id" json:"id"`
	SpecialistID    string    `db:"specialist_id" json:"specialist_id"`
	TeacherID       string    `db:"teacher_id" json:"teacher_id"`
	WeekID          string    `db:"week_id" json:"week_id"`
	DayOfWeek       int       `db:"day_of_week" json:"day_of_week"`
	StartMinute     int       `db:"start_minute" json:"start_minute"`
	DurationMinutes int       `db:"duration_minutes" json:"duration_minutes"`
	Course          string    `db:"course" json:"course"`
	Site            string    `db:"site" json:"site"`
	ConfirmedAt     time.Time `db:"confirmed_at" json:"confirmed_at"`
}
