package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/accompaniment-planner-api/internal/models"
)

// TeacherScheduleRepository reads the class schedules of teachers accompanied by a specialist.
type TeacherScheduleRepository struct {
	db *sqlx.DB
}

// NewTeacherScheduleRepository constructs the repository.
func NewTeacherScheduleRepository(db *sqlx.DB) *TeacherScheduleRepository {
	return &TeacherScheduleRepository{db: db}
}

// ListBySpecialist returns raw class rows ordered by roster position, then by the
// teacher's own class order.
func (r *TeacherScheduleRepository) ListBySpecialist(ctx context.Context, specialistID string) ([]models.TeacherClass, error) {
	const query = `SELECT c.id, c.teacher_id, t.full_name AS teacher_name, c.course, c.site, c.day_of_week, c.start_time, c.duration_minutes, st.position AS roster_position
FROM specialist_teachers st
JOIN teachers t ON t.id = st.teacher_id
JOIN teacher_classes c ON c.teacher_id = st.teacher_id
WHERE st.specialist_id = $1 AND t.active = TRUE
ORDER BY st.position ASC, c.teacher_id ASC, c.sort_order ASC, c.id ASC`
	var classes []models.TeacherClass
	if err := r.db.SelectContext(ctx, &classes, query, specialistID); err != nil {
		return nil, fmt.Errorf("list teacher classes: %w", err)
	}
	return classes, nil
}
