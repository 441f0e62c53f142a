package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/accompaniment-planner-api/internal/models"
)

const availabilityColumns = `id, specialist_id, day_of_week, start_time, end_time, in_person_hours, remote_hours, created_at, updated_at`

// AvailabilityRepository persists declared availability blocks.
type AvailabilityRepository struct {
	db *sqlx.DB
}

// NewAvailabilityRepository constructs the repository.
func NewAvailabilityRepository(db *sqlx.DB) *AvailabilityRepository {
	return &AvailabilityRepository{db: db}
}

func (r *AvailabilityRepository) exec(exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return r.db
}

// ListBySpecialist returns all blocks of a specialist.
func (r *AvailabilityRepository) ListBySpecialist(ctx context.Context, specialistID string) ([]models.AvailabilityBlock, error) {
	query := `SELECT ` + availabilityColumns + ` FROM availability_blocks WHERE specialist_id = $1 ORDER BY created_at ASC, id ASC`
	var blocks []models.AvailabilityBlock
	if err := r.db.SelectContext(ctx, &blocks, query, specialistID); err != nil {
		return nil, fmt.Errorf("list availability blocks: %w", err)
	}
	return blocks, nil
}

// FindByID returns a single block owned by the specialist.
func (r *AvailabilityRepository) FindByID(ctx context.Context, specialistID, id string) (*models.AvailabilityBlock, error) {
	query := `SELECT ` + availabilityColumns + ` FROM availability_blocks WHERE specialist_id = $1 AND id = $2`
	var block models.AvailabilityBlock
	if err := r.db.GetContext(ctx, &block, query, specialistID, id); err != nil {
		return nil, err
	}
	return &block, nil
}

// ApplyMerge removes the absorbed blocks and inserts the merged one.
func (r *AvailabilityRepository) ApplyMerge(ctx context.Context, exec sqlx.ExtContext, specialistID string, removeIDs []string, merged *models.AvailabilityBlock) error {
	target := r.exec(exec)
	if len(removeIDs) > 0 {
		const del = `DELETE FROM availability_blocks WHERE specialist_id = $1 AND id = ANY($2)`
		if _, err := target.ExecContext(ctx, del, specialistID, pq.Array(removeIDs)); err != nil {
			return fmt.Errorf("delete absorbed availability blocks: %w", err)
		}
	}

	if merged.ID == "" {
		merged.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if merged.CreatedAt.IsZero() {
		merged.CreatedAt = now
	}
	merged.UpdatedAt = now
	merged.SpecialistID = specialistID

	const insert = `INSERT INTO availability_blocks (` + availabilityColumns + `)
VALUES (:id, :specialist_id, :day_of_week, :start_time, :end_time, :in_person_hours, :remote_hours, :created_at, :updated_at)`
	if _, err := sqlx.NamedExecContext(ctx, target, insert, merged); err != nil {
		return fmt.Errorf("insert merged availability block: %w", err)
	}
	return nil
}

// Delete removes a block owned by the specialist.
func (r *AvailabilityRepository) Delete(ctx context.Context, specialistID, id string) error {
	const query = `DELETE FROM availability_blocks WHERE specialist_id = $1 AND id = $2`
	res, err := r.db.ExecContext(ctx, query, specialistID, id)
	if err != nil {
		return fmt.Errorf("delete availability block: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete availability block rows: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
