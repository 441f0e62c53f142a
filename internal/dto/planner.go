package dto

import "time"

// LoadPlanningSessionRequest loads or refreshes a planning session. Only
// admins may target a specialist other than themselves.
type LoadPlanningSessionRequest struct {
	SpecialistID string `json:"specialistId" validate:"omitempty,max=64"`
}

// PlanningSessionResponse summarises the loaded inputs of a session.
type PlanningSessionResponse struct {
	SpecialistID       string    `json:"specialistId"`
	SpecialistName     string    `json:"specialistName"`
	MonthlyHourLimit   float64   `json:"monthlyHourLimit"`
	PreferredSites     []string  `json:"preferredSites"`
	Teachers           int       `json:"teachers"`
	Sessions           int       `json:"sessions"`
	AvailabilityBlocks int       `json:"availabilityBlocks"`
	CommittedWeeks     []string  `json:"committedWeeks"`
	SkippedRecords     int       `json:"skippedRecords"`
	ScheduleCached     bool      `json:"scheduleCached"`
	LoadedAt           time.Time `json:"loadedAt"`
	ExpiresAt          time.Time `json:"expiresAt"`
}

// SelectSessionRequest picks one of the teacher's candidate sessions by index.
type SelectSessionRequest struct {
	SessionIndex *int `json:"sessionIndex" validate:"required,min=0"`
}

// SessionDTO is one concrete class meeting within a week.
type SessionDTO struct {
	TeacherID       string `json:"teacherId"`
	TeacherName     string `json:"teacherName,omitempty"`
	Course          string `json:"course"`
	Site            string `json:"site"`
	DayOfWeek       int    `json:"dayOfWeek"`
	DayName         string `json:"dayName"`
	Date            string `json:"date"`
	StartTime       string `json:"startTime"`
	EndTime         string `json:"endTime"`
	DurationMinutes int    `json:"durationMinutes"`
}

// CandidateDTO annotates a session with the guards that currently apply to it.
type CandidateDTO struct {
	SessionDTO
	Index         int  `json:"index"`
	Compatible    bool `json:"compatible"`
	Free          bool `json:"free"`
	Past          bool `json:"past"`
	PreferredSite bool `json:"preferredSite"`
}

// TeacherPlanDTO groups a teacher's pick, confirmed visit and candidates for a week.
type TeacherPlanDTO struct {
	TeacherID   string         `json:"teacherId"`
	TeacherName string         `json:"teacherName"`
	Selected    *SessionDTO    `json:"selected,omitempty"`
	Committed   *SessionDTO    `json:"committed,omitempty"`
	Assigned    bool           `json:"assignedElsewhere"`
	Candidates  []CandidateDTO `json:"candidates"`
}

// WindowDTO is one declared availability window on a date of the week.
type WindowDTO struct {
	DayOfWeek int    `json:"dayOfWeek"`
	DayName   string `json:"dayName"`
	Date      string `json:"date"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
}

// BudgetResponse reports the monthly hour budget.
type BudgetResponse struct {
	Month          string  `json:"month"`
	LimitHours     float64 `json:"limitHours"`
	UsedHours      float64 `json:"usedHours"`
	RemainingHours float64 `json:"remainingHours"`
	AtLimit        bool    `json:"atLimit"`
}

// WeekPlanResponse is the planning screen for one ISO week.
type WeekPlanResponse struct {
	WeekID     string           `json:"weekId"`
	Monday     string           `json:"monday"`
	Generation uint64           `json:"generation"`
	Confirming bool             `json:"confirming"`
	Windows    []WindowDTO      `json:"windows"`
	Selected   []SessionDTO     `json:"selected"`
	Committed  []SessionDTO     `json:"committed"`
	Teachers   []TeacherPlanDTO `json:"teachers"`
	Budget     BudgetResponse   `json:"budget"`
}

// AutoAssignResponse lists what the greedy pass picked and whom it left out.
type AutoAssignResponse struct {
	Assigned []SessionDTO     `json:"assigned"`
	Skipped  []string         `json:"skipped"`
	Week     WeekPlanResponse `json:"week"`
}

// ConfirmationResponse is the reconciled outcome of a confirmation round trip.
type ConfirmationResponse struct {
	WeekID    string            `json:"weekId"`
	Status    string            `json:"status"`
	Confirmed []string          `json:"confirmed"`
	Rejected  []string          `json:"rejected"`
	Pending   []string          `json:"pending"`
	Week      *WeekPlanResponse `json:"week,omitempty"`
}

// AvailabilityBlockRequest creates or edits a declared availability block.
// Times accept "8", "830", "08:30" and "0830".
type AvailabilityBlockRequest struct {
	SpecialistID  string  `json:"specialistId" validate:"omitempty,max=64"`
	DayOfWeek     string  `json:"dayOfWeek" validate:"required"`
	StartTime     string  `json:"startTime" validate:"required,max=5"`
	EndTime       string  `json:"endTime" validate:"required,max=5"`
	InPersonHours float64 `json:"inPersonHours" validate:"gte=0"`
	RemoteHours   float64 `json:"remoteHours" validate:"gte=0"`
}

// AvailabilityBlockResponse is a stored block in normalised form.
type AvailabilityBlockResponse struct {
	ID              string  `json:"id"`
	DayOfWeek       int     `json:"dayOfWeek"`
	DayName         string  `json:"dayName"`
	StartTime       string  `json:"startTime"`
	EndTime         string  `json:"endTime"`
	DurationMinutes int     `json:"durationMinutes"`
	InPersonHours   float64 `json:"inPersonHours"`
	RemoteHours     float64 `json:"remoteHours"`
}

// AvailabilityMutationResponse returns the saved block, the ids it absorbed and the day's block set.
type AvailabilityMutationResponse struct {
	Block    AvailabilityBlockResponse   `json:"block"`
	Absorbed []string                    `json:"absorbed"`
	Blocks   []AvailabilityBlockResponse `json:"blocks"`
}
