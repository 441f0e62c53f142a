package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/accompaniment-planner-api/internal/models"
)

func TestAvailabilityRepositoryListBySpecialist(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAvailabilityRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "specialist_id", "day_of_week", "start_time", "end_time", "in_person_hours", "remote_hours", "created_at", "updated_at"}).
		AddRow("b-1", "spec-1", "MONDAY", "8:00", "10:00", 2.0, 0.0, now, now).
		AddRow("b-2", "spec-1", "TUESDAY", "1400", "1600", 0.0, 2.0, now, now)
	mock.ExpectQuery(regexp.QuoteMeta("FROM availability_blocks WHERE specialist_id = $1")).
		WithArgs("spec-1").
		WillReturnRows(rows)

	blocks, err := repo.ListBySpecialist(context.Background(), "spec-1")
	require.NoError(t, err)
	require.Len(t, blocks, 2)
	assert.Equal(t, "1400", blocks[1].StartTime)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAvailabilityRepositoryApplyMergeInTransaction(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAvailabilityRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM availability_blocks WHERE specialist_id = $1 AND id = ANY($2)")).
		WithArgs("spec-1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO availability_blocks")).
		WithArgs("merged-1", "spec-1", "MONDAY", "08:00", "10:00", 2.0, 1.0, sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	tx, err := db.BeginTxx(context.Background(), nil)
	require.NoError(t, err)
	merged := &models.AvailabilityBlock{ID: "merged-1", DayOfWeek: "MONDAY", StartTime: "08:00", EndTime: "10:00", InPersonHours: 2, RemoteHours: 1}
	require.NoError(t, repo.ApplyMerge(context.Background(), tx, "spec-1", []string{"b-1", "b-2"}, merged))
	require.NoError(t, tx.Commit())

	assert.Equal(t, "spec-1", merged.SpecialistID)
	assert.False(t, merged.CreatedAt.IsZero())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAvailabilityRepositoryApplyMergeWithoutAbsorbed(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAvailabilityRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO availability_blocks")).
		WillReturnResult(sqlmock.NewResult(1, 1))

	block := &models.AvailabilityBlock{DayOfWeek: "FRIDAY", StartTime: "09:00", EndTime: "10:00"}
	require.NoError(t, repo.ApplyMerge(context.Background(), nil, "spec-1", nil, block))
	assert.NotEmpty(t, block.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAvailabilityRepositoryDeleteMissing(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewAvailabilityRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM availability_blocks WHERE specialist_id = $1 AND id = $2")).
		WithArgs("spec-1", "nope").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Delete(context.Background(), "spec-1", "nope")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}
