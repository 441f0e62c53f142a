package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/accompaniment-planner-api/internal/dto"
	appErrors "github.com/noah-isme/accompaniment-planner-api/pkg/errors"
)

type weekPlanStub struct {
	plan *dto.WeekPlanResponse
	err  error
}

func (s weekPlanStub) WeekPlan(ctx context.Context, specialistID, weekID string) (*dto.WeekPlanResponse, error) {
	return s.plan, s.err
}

func samplePlan() *dto.WeekPlanResponse {
	return &dto.WeekPlanResponse{
		WeekID:    "2026-W42",
		Committed: []dto.SessionDTO{{TeacherID: "T1", TeacherName: "Luis", Course: "Historia", Site: "Sur", DayName: "MONDAY", Date: "2026-10-12", StartTime: "08:00", EndTime: "09:00"}},
		Selected:  []dto.SessionDTO{{TeacherID: "T2", Course: "Lenguaje", Site: "Norte", DayName: "TUESDAY", Date: "2026-10-13", StartTime: "10:00", EndTime: "11:00"}},
	}
}

func TestPlanExportCSV(t *testing.T) {
	svc := NewPlanExportService(weekPlanStub{plan: samplePlan()}, nil, nil, nil)
	out, err := svc.Export(context.Background(), "spec-1", "2026-W42", "")
	require.NoError(t, err)
	assert.Equal(t, "plan-2026-W42.csv", out.Filename)
	assert.Equal(t, "text/csv", out.ContentType)

	lines := strings.Split(strings.TrimSpace(string(out.Data)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Teacher,Course,Site,Day,Date,Start,End,Status", lines[0])
	assert.Equal(t, "Luis,Historia,Sur,MONDAY,2026-10-12,08:00,09:00,CONFIRMED", lines[1])
	assert.True(t, strings.HasPrefix(lines[2], "T2,"), "falls back to teacher id")
}

func TestPlanExportPDF(t *testing.T) {
	svc := NewPlanExportService(weekPlanStub{plan: samplePlan()}, nil, nil, nil)
	out, err := svc.Export(context.Background(), "spec-1", "2026-W42", "PDF")
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", out.ContentType)
	assert.True(t, strings.HasPrefix(string(out.Data), "%PDF"))
}

func TestPlanExportRejectsUnknownFormat(t *testing.T) {
	svc := NewPlanExportService(weekPlanStub{plan: samplePlan()}, nil, nil, nil)
	_, err := svc.Export(context.Background(), "spec-1", "2026-W42", "xlsx")
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}
