package models

// TeacherClass is one weekly class meeting of a teacher accompanied by a specialist.
type TeacherClass struct {
	ID              string `db:"id" json:"id"`
	TeacherID       string `db:"teacher_id" json:"teacher_id"`
	TeacherName     string `db:"teacher_name" json:"teacher_name"`
	Course          string `db:"course" json:"course"`
	Site            string `db:"site" json:"site"`
	DayOfWeek       string `db:"day_of_week" json:"day_of_week"`
	StartTime       string `db:"start_time" json:"start_time"`
	DurationMinutes int    `db:"duration_minutes" json:"duration_minutes"`
	RosterPosition  int    `db:"roster_position" json:"roster_position"`
}
