package service

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/accompaniment-planner-api/internal/dto"
	"github.com/noah-isme/accompaniment-planner-api/internal/gateway"
	"github.com/noah-isme/accompaniment-planner-api/internal/models"
	"github.com/noah-isme/accompaniment-planner-api/internal/planner"
	appErrors "github.com/noah-isme/accompaniment-planner-api/pkg/errors"
)

const planningWeekID = "2026-W42"

type specialistStub struct {
	specialist *models.Specialist
	err        error
}

func (s *specialistStub) FindByID(ctx context.Context, id string) (*models.Specialist, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.specialist, nil
}

type availabilityStub struct{ rows []models.AvailabilityBlock }

func (s *availabilityStub) ListBySpecialist(ctx context.Context, specialistID string) ([]models.AvailabilityBlock, error) {
	return s.rows, nil
}

type scheduleStub struct {
	rows  []models.TeacherClass
	calls int
}

func (s *scheduleStub) ListBySpecialist(ctx context.Context, specialistID string) ([]models.TeacherClass, error) {
	s.calls++
	return s.rows, nil
}

type visitReaderStub struct {
	rows     []models.AccompanimentVisit
	fromWeek string
}

func (s *visitReaderStub) ListBySpecialist(ctx context.Context, specialistID, fromWeek string) ([]models.AccompanimentVisit, error) {
	s.fromWeek = fromWeek
	return s.rows, nil
}

type recorderStub struct{ recorded []models.AccompanimentVisit }

func (r *recorderStub) Record(ctx context.Context, visits []models.AccompanimentVisit) error {
	r.recorded = append(r.recorded, visits...)
	return nil
}

type gatewayStub struct {
	resp     *gateway.ConfirmResponse
	err      error
	block    bool
	during   func()
	requests []gateway.ConfirmRequest
}

func (g *gatewayStub) Confirm(ctx context.Context, req gateway.ConfirmRequest) (*gateway.ConfirmResponse, error) {
	g.requests = append(g.requests, req)
	if g.during != nil {
		g.during()
	}
	if g.block {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	return g.resp, g.err
}

type planningFixture struct {
	svc       *PlanningService
	blocks    *availabilityStub
	schedules *scheduleStub
	visits    *visitReaderStub
	recorder  *recorderStub
	gateway   *gatewayStub
	cache     *CacheService
	now       time.Time
}

func newPlanningFixture(t *testing.T) *planningFixture {
	t.Helper()
	f := &planningFixture{
		schedules: &scheduleStub{rows: []models.TeacherClass{
			{ID: "c1", TeacherID: "T1", TeacherName: "Luis", Course: "Historia 1A", Site: "Sur", DayOfWeek: "MONDAY", StartTime: "08:00", DurationMinutes: 60, RosterPosition: 1},
			{ID: "c2", TeacherID: "T1", TeacherName: "Luis", Course: "Historia 2B", Site: "Sur", DayOfWeek: "WEDNESDAY", StartTime: "08:00", DurationMinutes: 60, RosterPosition: 1},
			{ID: "c3", TeacherID: "T2", TeacherName: "Eva", Course: "Lenguaje 3A", Site: "Norte", DayOfWeek: "MONDAY", StartTime: "08:30", DurationMinutes: 60, RosterPosition: 2},
			{ID: "c4", TeacherID: "T2", TeacherName: "Eva", Course: "Lenguaje 4B", Site: "Norte", DayOfWeek: "TUESDAY", StartTime: "10:00", DurationMinutes: 60, RosterPosition: 2},
			{ID: "c5", TeacherID: "T3", TeacherName: "Ana", Course: "Arte", Site: "Sur", DayOfWeek: "THURSDAY", StartTime: "25:00", DurationMinutes: 60, RosterPosition: 3},
		}},
		visits:   &visitReaderStub{},
		recorder: &recorderStub{},
		gateway:  &gatewayStub{resp: &gateway.ConfirmResponse{}},
		cache:    NewCacheService(newMemoryCacheRepo(), nil, time.Minute, nil, true),
		now:      time.Date(2026, time.October, 12, 7, 0, 0, 0, time.UTC),
	}
	f.blocks = &availabilityStub{rows: []models.AvailabilityBlock{
		{ID: "b1", DayOfWeek: "MONDAY", StartTime: "08:00", EndTime: "12:00"},
		{ID: "b2", DayOfWeek: "TUESDAY", StartTime: "08:00", EndTime: "12:00"},
		{ID: "b3", DayOfWeek: "WEDNESDAY", StartTime: "08:00", EndTime: "12:00"},
	}}
	specialist := &models.Specialist{ID: "spec-1", FullName: "Marta", MonthlyHourLimit: 10, PreferredSites: pq.StringArray{"Norte"}, Active: true}
	f.svc = NewPlanningService(PlanningServiceParams{
		Specialists:  &specialistStub{specialist: specialist},
		Availability: f.blocks,
		Schedules:    f.schedules,
		Visits:       f.visits,
		Recorder:     f.recorder,
		Gateway:      f.gateway,
		Cache:        f.cache,
		Metrics:      NewMetricsService(),
		Config:       PlanningConfig{SessionTTL: time.Hour, ConfirmTimeout: 50 * time.Millisecond},
		Now:          func() time.Time { return f.now },
	})
	return f
}

func (f *planningFixture) load(t *testing.T) *dto.PlanningSessionResponse {
	t.Helper()
	resp, err := f.svc.LoadSession(context.Background(), "spec-1", false)
	require.NoError(t, err)
	return resp
}

func pick(i int) dto.SelectSessionRequest {
	return dto.SelectSessionRequest{SessionIndex: &i}
}

func TestPlanningServiceLoadSession(t *testing.T) {
	f := newPlanningFixture(t)
	resp := f.load(t)

	assert.Equal(t, 2, resp.Teachers)
	assert.Equal(t, 4, resp.Sessions)
	assert.Equal(t, 3, resp.AvailabilityBlocks)
	assert.Equal(t, 1, resp.SkippedRecords)
	assert.False(t, resp.ScheduleCached)
	assert.Equal(t, "2026-W40", f.visits.fromWeek, "ledger starts at the week of October 1st")

	resp = f.load(t)
	assert.True(t, resp.ScheduleCached)
	assert.Equal(t, 1, f.schedules.calls)

	_, err := f.svc.LoadSession(context.Background(), "spec-1", true)
	require.NoError(t, err)
	assert.Equal(t, 2, f.schedules.calls, "refresh bypasses the cache")
}

func TestPlanningServiceLoadSessionUnknownSpecialist(t *testing.T) {
	svc := NewPlanningService(PlanningServiceParams{Specialists: &specialistStub{err: sql.ErrNoRows}})
	_, err := svc.LoadSession(context.Background(), "nope", false)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestPlanningServiceRequiresSession(t *testing.T) {
	f := newPlanningFixture(t)
	_, err := f.svc.WeekPlan(context.Background(), "spec-1", planningWeekID)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)

	f.load(t)
	f.now = f.now.Add(2 * time.Hour)
	_, err = f.svc.WeekPlan(context.Background(), "spec-1", planningWeekID)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code, "idle session expires")
}

func TestPlanningServiceSelectAndWeekView(t *testing.T) {
	f := newPlanningFixture(t)
	f.load(t)

	view, err := f.svc.Select(context.Background(), "spec-1", planningWeekID, "T1", pick(0))
	require.NoError(t, err)
	require.Len(t, view.Selected, 1)
	assert.Equal(t, "2026-10-12", view.Selected[0].Date)
	assert.InDelta(t, 1.0, view.Budget.UsedHours, 1e-9)

	require.Len(t, view.Teachers, 2)
	eva := view.Teachers[1]
	assert.False(t, eva.Candidates[0].Free, "Monday 08:30 overlaps Luis")
	assert.True(t, eva.Candidates[1].Free)
	assert.True(t, eva.Candidates[1].PreferredSite)

	_, err = f.svc.Select(context.Background(), "spec-1", planningWeekID, "T2", pick(0))
	assert.Equal(t, appErrors.ErrSlotConflict.Code, appErrors.FromError(err).Code)

	_, err = f.svc.Select(context.Background(), "spec-1", planningWeekID, "T2", pick(7))
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	_, err = f.svc.Select(context.Background(), "spec-1", planningWeekID, "ghost", pick(0))
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)

	_, err = f.svc.Select(context.Background(), "spec-1", "2026-W99", "T2", pick(0))
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	_, err = f.svc.Select(context.Background(), "spec-1", planningWeekID, "T2", dto.SelectSessionRequest{})
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)

	view, err = f.svc.Deselect(context.Background(), "spec-1", planningWeekID, "T1")
	require.NoError(t, err)
	assert.Empty(t, view.Selected)
}

func TestPlanningServiceAutoAssign(t *testing.T) {
	f := newPlanningFixture(t)
	f.load(t)

	resp, err := f.svc.AutoAssign(context.Background(), "spec-1", planningWeekID)
	require.NoError(t, err)
	require.Len(t, resp.Assigned, 2)
	assert.Equal(t, "T2", resp.Assigned[0].TeacherID, "preferred site first")
	assert.Equal(t, "MONDAY", resp.Assigned[0].DayName)
	assert.Equal(t, "WEDNESDAY", resp.Assigned[1].DayName, "Luis falls back to his free Wednesday session")
	assert.Empty(t, resp.Skipped)
}

func TestPlanningServiceConfirmPartial(t *testing.T) {
	f := newPlanningFixture(t)
	f.load(t)
	_, err := f.svc.Select(context.Background(), "spec-1", planningWeekID, "T1", pick(0))
	require.NoError(t, err)
	_, err = f.svc.Select(context.Background(), "spec-1", planningWeekID, "T2", pick(1))
	require.NoError(t, err)
	f.gateway.resp = &gateway.ConfirmResponse{Successful: []string{"T1"}, Failed: []string{"T2"}}

	resp, err := f.svc.Confirm(context.Background(), "spec-1", planningWeekID)
	require.NoError(t, err)
	assert.Equal(t, "PARTIAL", resp.Status)
	assert.Equal(t, []string{"T2"}, resp.Rejected)
	assert.Empty(t, resp.Pending)
	require.Len(t, resp.Week.Selected, 1)
	assert.Equal(t, "T2", resp.Week.Selected[0].TeacherID)
	require.Len(t, resp.Week.Committed, 1)

	require.Len(t, f.gateway.requests, 1)
	assert.Len(t, f.gateway.requests[0].Assignments, 2)
	require.Len(t, f.recorder.recorded, 1)
	assert.Equal(t, "T1", f.recorder.recorded[0].TeacherID)
	assert.Equal(t, 480, f.recorder.recorded[0].StartMinute)
}

func TestPlanningServiceConfirmFailureLeavesWeekUnchanged(t *testing.T) {
	f := newPlanningFixture(t)
	f.load(t)
	_, err := f.svc.Select(context.Background(), "spec-1", planningWeekID, "T1", pick(0))
	require.NoError(t, err)
	f.gateway.err = errors.New("connection reset")

	_, err = f.svc.Confirm(context.Background(), "spec-1", planningWeekID)
	assert.Equal(t, appErrors.ErrConfirmationUnavailable.Code, appErrors.FromError(err).Code)

	view, err := f.svc.WeekPlan(context.Background(), "spec-1", planningWeekID)
	require.NoError(t, err)
	assert.Len(t, view.Selected, 1)
	assert.False(t, view.Confirming)
	assert.Empty(t, f.recorder.recorded)
}

func TestPlanningServiceConfirmTimeout(t *testing.T) {
	f := newPlanningFixture(t)
	f.load(t)
	_, err := f.svc.Select(context.Background(), "spec-1", planningWeekID, "T1", pick(0))
	require.NoError(t, err)
	f.gateway.block = true

	_, err = f.svc.Confirm(context.Background(), "spec-1", planningWeekID)
	assert.Equal(t, appErrors.ErrConfirmationUnavailable.Code, appErrors.FromError(err).Code)

	_, err = f.svc.Deselect(context.Background(), "spec-1", planningWeekID, "T1")
	assert.NoError(t, err, "lock released after timeout")
}

func TestPlanningServiceConfirmStaleAfterDiscard(t *testing.T) {
	f := newPlanningFixture(t)
	f.load(t)
	_, err := f.svc.Select(context.Background(), "spec-1", planningWeekID, "T1", pick(0))
	require.NoError(t, err)
	f.gateway.resp = &gateway.ConfirmResponse{Successful: []string{"T1"}}
	f.gateway.during = func() {
		_, discardErr := f.svc.DiscardWeek(context.Background(), "spec-1", planningWeekID)
		require.NoError(t, discardErr)
	}

	resp, err := f.svc.Confirm(context.Background(), "spec-1", planningWeekID)
	require.NoError(t, err)
	assert.Equal(t, "STALE", resp.Status)
	assert.Empty(t, resp.Confirmed, "stale reply is not reconciled as a confirmation")
	assert.Empty(t, resp.Week.Selected)
	require.Len(t, resp.Week.Committed, 1, "server-accepted visit enters the ledger")
	assert.Equal(t, "T1", resp.Week.Committed[0].TeacherID)

	require.Len(t, f.recorder.recorded, 1)
	assert.Equal(t, "T1", f.recorder.recorded[0].TeacherID)
	assert.Equal(t, planningWeekID, f.recorder.recorded[0].WeekID)

	budget, err := f.svc.Budget(context.Background(), "spec-1", "2026-10")
	require.NoError(t, err)
	assert.InDelta(t, 1.0, budget.UsedHours, 1e-9)

	assigned, err := f.svc.AutoAssign(context.Background(), "spec-1", planningWeekID)
	require.NoError(t, err)
	for _, a := range assigned.Assigned {
		assert.NotEqual(t, "T1", a.TeacherID, "accepted teacher is not assigned again")
	}
}

func TestPlanningServiceConfirmStaleAfterReload(t *testing.T) {
	f := newPlanningFixture(t)
	f.load(t)
	_, err := f.svc.Select(context.Background(), "spec-1", planningWeekID, "T1", pick(0))
	require.NoError(t, err)
	f.gateway.resp = &gateway.ConfirmResponse{Successful: []string{"T1"}}
	f.gateway.during = func() {
		_, loadErr := f.svc.LoadSession(context.Background(), "spec-1", false)
		require.NoError(t, loadErr)
	}

	_, err = f.svc.Confirm(context.Background(), "spec-1", planningWeekID)
	require.NoError(t, err)
	require.Len(t, f.recorder.recorded, 1)

	view, err := f.svc.WeekPlan(context.Background(), "spec-1", planningWeekID)
	require.NoError(t, err)
	require.Len(t, view.Committed, 1, "reloaded store learns the accepted visit")
	assert.Equal(t, "T1", view.Committed[0].TeacherID)
}

func TestAcceptedSessionsSkipsFailedAndUnknown(t *testing.T) {
	batch := []planner.CandidateSession{{TeacherID: "T1"}, {TeacherID: "T2"}, {TeacherID: "T3"}}
	accepted := acceptedSessions(batch, []string{"T1", "T2", "ghost"}, []string{"T2"})
	require.Len(t, accepted, 1)
	assert.Equal(t, "T1", accepted[0].TeacherID)
}

func TestPlanningServiceSeedsCommittedVisits(t *testing.T) {
	f := newPlanningFixture(t)
	f.visits.rows = []models.AccompanimentVisit{
		{ID: "v1", TeacherID: "T1", WeekID: "2026-W41", DayOfWeek: 1, StartMinute: 480, DurationMinutes: 570},
	}
	f.load(t)

	budget, err := f.svc.Budget(context.Background(), "spec-1", "2026-10")
	require.NoError(t, err)
	assert.InDelta(t, 9.5, budget.UsedHours, 1e-9)
	assert.InDelta(t, 0.5, budget.RemainingHours, 1e-9)

	_, err = f.svc.Select(context.Background(), "spec-1", planningWeekID, "T1", pick(0))
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code, "teacher already visited this cycle")
	_, err = f.svc.Select(context.Background(), "spec-1", planningWeekID, "T2", pick(1))
	assert.Equal(t, appErrors.ErrBudgetExceeded.Code, appErrors.FromError(err).Code)

	_, err = f.svc.Budget(context.Background(), "spec-1", "October")
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestPlanningServiceRefreshAvailability(t *testing.T) {
	f := newPlanningFixture(t)
	require.NoError(t, f.svc.RefreshAvailability(context.Background(), "spec-1"), "no session loaded")
	f.load(t)

	view, err := f.svc.WeekPlan(context.Background(), "spec-1", planningWeekID)
	require.NoError(t, err)
	require.Len(t, view.Windows, 3)
	assert.Equal(t, "2026-10-12", view.Windows[0].Date)
	assert.Equal(t, "08:00", view.Windows[0].StartTime)
	assert.Equal(t, "12:00", view.Windows[0].EndTime)
	assert.True(t, view.Teachers[0].Candidates[0].Compatible)

	f.blocks.rows = []models.AvailabilityBlock{{ID: "b3", DayOfWeek: "WEDNESDAY", StartTime: "08:00", EndTime: "12:00"}}
	require.NoError(t, f.svc.RefreshAvailability(context.Background(), "spec-1"))

	view, err = f.svc.WeekPlan(context.Background(), "spec-1", planningWeekID)
	require.NoError(t, err)
	require.Len(t, view.Windows, 1)
	assert.Equal(t, "WEDNESDAY", view.Windows[0].DayName)
	assert.False(t, view.Teachers[0].Candidates[0].Compatible, "Monday window removed")
	assert.True(t, view.Teachers[0].Candidates[1].Compatible)
	assert.InDelta(t, 10.0, view.Budget.LimitHours, 1e-9)

	_, err = f.svc.Select(context.Background(), "spec-1", planningWeekID, "T1", pick(0))
	assert.Equal(t, appErrors.ErrSessionUnavailable.Code, appErrors.FromError(err).Code)
}

func TestPlanningServiceSweepExpired(t *testing.T) {
	f := newPlanningFixture(t)
	f.load(t)
	assert.Zero(t, f.svc.SweepExpired())
	f.now = f.now.Add(90 * time.Minute)
	assert.Equal(t, 1, f.svc.SweepExpired())
	f.svc.DiscardSession("spec-1")
}
