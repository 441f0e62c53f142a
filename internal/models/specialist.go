package models

import (
	"time"

	"github.com/lib/pq"
)

// Specialist is a pedagogical accompaniment professional and their monthly budget.
type Specialist struct {
	ID               string         `db:"id" json:"id"`
	FullName         string         `db:"full_name" json:"full_name"`
	Email            string         `db:"email" json:"email"`
	MonthlyHourLimit float64        `db:"monthly_hour_limit" json:"monthly_hour_limit"`
	PreferredSites   pq.StringArray `db:"preferred_sites" json:"preferred_sites"`
	Active           bool           `db:"active" json:"active"`
	CreatedAt        time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time      `db:"updated_at" json:"updated_at"`
}
