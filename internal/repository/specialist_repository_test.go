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
)

func TestSpecialistRepositoryFindByID(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewSpecialistRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "full_name", "email", "monthly_hour_limit", "preferred_sites", "active", "created_at", "updated_at"}).
		AddRow("spec-1", "Ana Rojas", "ana@example.org", 40.0, "{Norte,Sur}", true, now, now)
	mock.ExpectQuery(regexp.QuoteMeta("FROM specialists WHERE id = $1")).
		WithArgs("spec-1").
		WillReturnRows(rows)

	specialist, err := repo.FindByID(context.Background(), "spec-1")
	require.NoError(t, err)
	assert.Equal(t, 40.0, specialist.MonthlyHourLimit)
	assert.Equal(t, []string{"Norte", "Sur"}, []string(specialist.PreferredSites))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSpecialistRepositoryFindByIDNotFound(t *testing.T) {
	db, mock, cleanup := newRepoMock(t)
	defer cleanup()
	repo := NewSpecialistRepository(db)

	mock.ExpectQuery("FROM specialists").WithArgs("missing").WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByID(context.Background(), "missing")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}
