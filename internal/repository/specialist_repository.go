package repository

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/accompaniment-planner-api/internal/models"
)

// SpecialistRepository reads specialist profiles.
type SpecialistRepository struct {
	db *sqlx.DB
}

// NewSpecialistRepository constructs the repository.
func NewSpecialistRepository(db *sqlx.DB) *SpecialistRepository {
	return &SpecialistRepository{db: db}
}

// FindByID returns the specialist profile including the monthly hour limit.
func (r *SpecialistRepository) FindByID(ctx context.Context, id string) (*models.Specialist, error) {
	const query = `SELECT id, full_name, email, monthly_hour_limit, preferred_sites, active, created_at, updated_at FROM specialists WHERE id = $1`
	var specialist models.Specialist
	if err := r.db.GetContext(ctx, &specialist, query, id); err != nil {
		return nil, err
	}
	return &specialist, nil
}
