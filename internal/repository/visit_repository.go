package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/accompaniment-planner-api/internal/models"
)

// VisitRepository stores visits accepted by the confirmation service.
type VisitRepository struct {
	db *sqlx.DB
}

// NewVisitRepository constructs the repository.
func NewVisitRepository(db *sqlx.DB) *VisitRepository {
	return &VisitRepository{db: db}
}

// ListBySpecialist returns confirmed visits from the given week onwards.
func (r *VisitRepository) ListBySpecialist(ctx context.Context, specialistID, fromWeek string) ([]models.AccompanimentVisit, error) {
	const query = `SELECT id, specialist_id, teacher_id, week_id, day_of_week, start_minute, duration_minutes, course, site, confirmed_at
FROM accompaniment_visits WHERE specialist_id = $1 AND week_id >= $2 ORDER BY week_id ASC, day_of_week ASC, start_minute ASC`
	var visits []models.AccompanimentVisit
	if err := r.db.SelectContext(ctx, &visits, query, specialistID, fromWeek); err != nil {
		return nil, fmt.Errorf("list accompaniment visits: %w", err)
	}
	return visits, nil
}

// InsertBatch records confirmed visits, ignoring duplicates of the same teacher and week.
func (r *VisitRepository) InsertBatch(ctx context.Context, visits []models.AccompanimentVisit) error {
	if len(visits) == 0 {
		return nil
	}
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin visit batch: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	const query = `INSERT INTO accompaniment_visits (id, specialist_id, teacher_id, week_id, day_of_week, start_minute, duration_minutes, course, site, confirmed_at)
VALUES (:id, :specialist_id, :teacher_id, :week_id, :day_of_week, :start_minute, :duration_minutes, :course, :site, :confirmed_at)
ON CONFLICT (specialist_id, teacher_id, week_id) DO NOTHING`
	now := time.Now().UTC()
	for i := range visits {
		visit := &visits[i]
		if visit.ID == "" {
			visit.ID = uuid.NewString()
		}
		if visit.ConfirmedAt.IsZero() {
			visit.ConfirmedAt = now
		}
		if _, err = tx.NamedExecContext(ctx, query, visit); err != nil {
			err = fmt.Errorf("insert accompaniment visit: %w", err)
			return err
		}
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit visit batch: %w", err)
	}
	return nil
}
