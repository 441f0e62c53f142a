package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/accompaniment-planner-api/internal/dto"
	"github.com/noah-isme/accompaniment-planner-api/internal/gateway"
	"github.com/noah-isme/accompaniment-planner-api/internal/models"
	"github.com/noah-isme/accompaniment-planner-api/internal/planner"
	appErrors "github.com/noah-isme/accompaniment-planner-api/pkg/errors"
)

const scheduleCacheKeyPrefix = "planner:schedule:"

type planningSpecialistReader interface {
	FindByID(ctx context.Context, id string) (*models.Specialist, error)
}

type planningAvailabilityReader interface {
	ListBySpecialist(ctx context.Context, specialistID string) ([]models.AvailabilityBlock, error)
}

type planningScheduleReader interface {
	ListBySpecialist(ctx context.Context, specialistID string) ([]models.TeacherClass, error)
}

type planningVisitReader interface {
	ListBySpecialist(ctx context.Context, specialistID, fromWeek string) ([]models.AccompanimentVisit, error)
}

type confirmedVisitRecorder interface {
	Record(ctx context.Context, visits []models.AccompanimentVisit) error
}

type confirmationGateway interface {
	Confirm(ctx context.Context, req gateway.ConfirmRequest) (*gateway.ConfirmResponse, error)
}

type scheduleCache interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Invalidate(ctx context.Context, pattern string) error
}

// PlanningConfig tunes planning sessions.
type PlanningConfig struct {
	SessionTTL     time.Duration
	ConfirmTimeout time.Duration
	Location       *time.Location
}

// PlanningServiceParams groups the dependencies of PlanningService.
type PlanningServiceParams struct {
	Specialists  planningSpecialistReader
	Availability planningAvailabilityReader
	Schedules    planningScheduleReader
	Visits       planningVisitReader
	Recorder     confirmedVisitRecorder
	Gateway      confirmationGateway
	Cache        scheduleCache
	Metrics      *MetricsService
	Validator    *validator.Validate
	Logger       *zap.Logger
	Config       PlanningConfig
	Now          func() time.Time
}

type planningSession struct {
	specialist   *models.Specialist
	store        *planner.SelectionStore
	availability *planner.AvailabilityIndex
	budget       planner.Budget
	roster       teacherRoster
	blocks       int
	loadedAt     time.Time
	lastUsed     time.Time
}

// PlanningService holds one in-memory planning session per specialist and
// drives selection, auto-assignment and confirmation against it.
type PlanningService struct {
	specialists  planningSpecialistReader
	availability planningAvailabilityReader
	schedules    planningScheduleReader
	visits       planningVisitReader
	recorder     confirmedVisitRecorder
	gateway      confirmationGateway
	cache        scheduleCache
	metrics      *MetricsService
	validator    *validator.Validate
	logger       *zap.Logger
	cfg          PlanningConfig
	now          func() time.Time

	mu       sync.Mutex
	sessions map[string]*planningSession
}

// NewPlanningService wires a planning service.
func NewPlanningService(params PlanningServiceParams) *PlanningService {
	cfg := params.Config
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = 4 * time.Hour
	}
	if cfg.ConfirmTimeout <= 0 {
		cfg.ConfirmTimeout = 15 * time.Second
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	validate := params.Validator
	if validate == nil {
		validate = validator.New()
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &PlanningService{
		specialists:  params.Specialists,
		availability: params.Availability,
		schedules:    params.Schedules,
		visits:       params.Visits,
		recorder:     params.Recorder,
		gateway:      params.Gateway,
		cache:        params.Cache,
		metrics:      params.Metrics,
		validator:    validate,
		logger:       logger,
		cfg:          cfg,
		now:          now,
		sessions:     make(map[string]*planningSession),
	}
}

func (s *PlanningService) today() time.Time {
	return s.now().In(s.cfg.Location)
}

// LoadSession reads the specialist's availability, teacher schedules and
// confirmed visits and replaces any previous session with a fresh one.
func (s *PlanningService) LoadSession(ctx context.Context, specialistID string, refreshSchedule bool) (*dto.PlanningSessionResponse, error) {
	specialist, err := s.specialists.FindByID(ctx, specialistID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "specialist not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load specialist")
	}
	if !specialist.Active {
		return nil, appErrors.Clone(appErrors.ErrForbidden, "specialist is inactive")
	}

	rows, err := s.availability.ListBySpecialist(ctx, specialistID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load availability")
	}
	blocks, skippedBlocks := ingestBlocks(rows, s.logger)
	s.metrics.RecordIngestSkipped("availability_block", skippedBlocks)

	classes, cached, err := s.loadClasses(ctx, specialistID, refreshSchedule)
	if err != nil {
		return nil, err
	}
	roster := ingestClasses(classes, s.logger)
	s.metrics.RecordIngestSkipped("teacher_class", roster.skipped)

	today := s.today()
	firstOfMonth := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC)
	visitRows, err := s.visits.ListBySpecialist(ctx, specialistID, string(planner.WeekOf(firstOfMonth)))
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load confirmed visits")
	}
	committed := ingestVisits(visitRows, s.logger)

	store := planner.NewSelectionStore()
	committedWeeks := make([]string, 0, len(committed))
	for week, sessions := range committed {
		store.SeedCommitted(week, sessions...)
	}
	for _, week := range store.Weeks() {
		committedWeeks = append(committedWeeks, string(week))
	}

	index := planner.NewAvailabilityIndex(planner.BlockWindows(blocks, specialist.PreferredSites, specialist.MonthlyHourLimit))
	session := &planningSession{
		specialist:   specialist,
		store:        store,
		availability: index,
		budget:       planner.NewBudget(sessionLimit(index, specialist)),
		roster:       roster,
		blocks:       len(blocks),
		loadedAt:     today,
		lastUsed:     today,
	}

	s.mu.Lock()
	s.sessions[specialistID] = session
	active := len(s.sessions)
	s.mu.Unlock()
	s.metrics.SetActiveSessions(active)

	sessionCount := 0
	for _, list := range roster.sessions {
		sessionCount += len(list)
	}
	s.logger.Info("planning session loaded",
		zap.String("specialist_id", specialistID),
		zap.Int("teachers", len(roster.order)),
		zap.Int("blocks", len(blocks)),
		zap.Int("committed_weeks", len(committedWeeks)),
		zap.Bool("schedule_cached", cached),
	)

	return &dto.PlanningSessionResponse{
		SpecialistID:       specialist.ID,
		SpecialistName:     specialist.FullName,
		MonthlyHourLimit:   specialist.MonthlyHourLimit,
		PreferredSites:     []string(specialist.PreferredSites),
		Teachers:           len(roster.order),
		Sessions:           sessionCount,
		AvailabilityBlocks: len(blocks),
		CommittedWeeks:     committedWeeks,
		SkippedRecords:     skippedBlocks + roster.skipped,
		ScheduleCached:     cached,
		LoadedAt:           session.loadedAt,
		ExpiresAt:          session.loadedAt.Add(s.cfg.SessionTTL),
	}, nil
}

func (s *PlanningService) loadClasses(ctx context.Context, specialistID string, refresh bool) ([]models.TeacherClass, bool, error) {
	key := scheduleCacheKeyPrefix + specialistID
	if s.cache != nil {
		if refresh {
			_ = s.cache.Invalidate(ctx, key)
		} else {
			var cached []models.TeacherClass
			if hit, err := s.cache.Get(ctx, key, &cached); err == nil && hit {
				return cached, true, nil
			}
		}
	}
	classes, err := s.schedules.ListBySpecialist(ctx, specialistID)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load teacher schedules")
	}
	if s.cache != nil {
		_ = s.cache.Set(ctx, key, classes, 0)
	}
	return classes, false, nil
}

// DiscardSession drops the specialist's session. Unknown sessions are ignored.
func (s *PlanningService) DiscardSession(specialistID string) {
	s.mu.Lock()
	delete(s.sessions, specialistID)
	active := len(s.sessions)
	s.mu.Unlock()
	s.metrics.SetActiveSessions(active)
}

// SweepExpired drops sessions idle for longer than the session TTL.
func (s *PlanningService) SweepExpired() int {
	cutoff := s.today().Add(-s.cfg.SessionTTL)
	s.mu.Lock()
	removed := 0
	for id, session := range s.sessions {
		if session.lastUsed.Before(cutoff) {
			delete(s.sessions, id)
			removed++
		}
	}
	active := len(s.sessions)
	s.mu.Unlock()
	if removed > 0 {
		s.metrics.SetActiveSessions(active)
		s.logger.Info("expired planning sessions dropped", zap.Int("removed", removed))
	}
	return removed
}

// RunJanitor sweeps expired sessions every interval until ctx is done.
func (s *PlanningService) RunJanitor(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.SweepExpired()
		}
	}
}

func (s *PlanningService) session(specialistID string) (*planningSession, error) {
	now := s.today()
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[specialistID]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "planning session not loaded")
	}
	if now.Sub(session.lastUsed) > s.cfg.SessionTTL {
		delete(s.sessions, specialistID)
		return nil, appErrors.Clone(appErrors.ErrNotFound, "planning session expired")
	}
	session.lastUsed = now
	return session, nil
}

// RefreshAvailability rebuilds the availability index of a loaded session
// after the specialist's blocks changed. Selections already made are kept.
// Without a loaded session it does nothing.
func (s *PlanningService) RefreshAvailability(ctx context.Context, specialistID string) error {
	s.mu.Lock()
	_, loaded := s.sessions[specialistID]
	s.mu.Unlock()
	if !loaded {
		return nil
	}

	rows, err := s.availability.ListBySpecialist(ctx, specialistID)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load availability")
	}
	blocks, skipped := ingestBlocks(rows, s.logger)
	s.metrics.RecordIngestSkipped("availability_block", skipped)

	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.sessions[specialistID]
	if !ok {
		return nil
	}
	index := planner.NewAvailabilityIndex(planner.BlockWindows(blocks, current.specialist.PreferredSites, current.specialist.MonthlyHourLimit))
	refreshed := *current
	refreshed.availability = index
	refreshed.budget = planner.NewBudget(sessionLimit(index, current.specialist))
	refreshed.blocks = len(blocks)
	s.sessions[specialistID] = &refreshed
	s.logger.Info("planning session availability refreshed", zap.String("specialist_id", specialistID), zap.Int("blocks", len(blocks)))
	return nil
}

func (s *PlanningService) rules(session *planningSession) planner.Rules {
	return planner.Rules{Availability: session.availability, Budget: session.budget, Today: s.today()}
}

// WeekPlan returns the planning view of weekID.
func (s *PlanningService) WeekPlan(ctx context.Context, specialistID, weekID string) (*dto.WeekPlanResponse, error) {
	week, err := planner.ParseWeekID(weekID)
	if err != nil {
		return nil, err
	}
	session, err := s.session(specialistID)
	if err != nil {
		return nil, err
	}
	view := s.weekResponse(session, week)
	return &view, nil
}

// Select picks the teacher's session at req.SessionIndex for weekID.
func (s *PlanningService) Select(ctx context.Context, specialistID, weekID, teacherID string, req dto.SelectSessionRequest) (*dto.WeekPlanResponse, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid selection payload")
	}
	week, err := planner.ParseWeekID(weekID)
	if err != nil {
		return nil, err
	}
	session, err := s.session(specialistID)
	if err != nil {
		return nil, err
	}
	candidates, ok := session.roster.sessions[teacherID]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "teacher is not accompanied by this specialist")
	}
	index := *req.SessionIndex
	if index >= len(candidates) {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("session index %d out of range", index))
	}

	err = session.store.Select(week, candidates[index], s.rules(session))
	if err != nil {
		s.metrics.RecordSelection(appErrors.FromError(err).Code)
		s.logger.Debug("selection rejected", zap.String("specialist_id", specialistID), zap.String("week", weekID), zap.String("teacher_id", teacherID), zap.Error(err))
		return nil, err
	}
	s.metrics.RecordSelection("OK")
	view := s.weekResponse(session, week)
	return &view, nil
}

// Deselect clears the teacher's pick in weekID.
func (s *PlanningService) Deselect(ctx context.Context, specialistID, weekID, teacherID string) (*dto.WeekPlanResponse, error) {
	week, err := planner.ParseWeekID(weekID)
	if err != nil {
		return nil, err
	}
	session, err := s.session(specialistID)
	if err != nil {
		return nil, err
	}
	if err := session.store.Deselect(week, teacherID); err != nil {
		return nil, err
	}
	view := s.weekResponse(session, week)
	return &view, nil
}

// AutoAssign runs the greedy pass over the roster for weekID.
func (s *PlanningService) AutoAssign(ctx context.Context, specialistID, weekID string) (*dto.AutoAssignResponse, error) {
	week, err := planner.ParseWeekID(weekID)
	if err != nil {
		return nil, err
	}
	session, err := s.session(specialistID)
	if err != nil {
		return nil, err
	}
	result, err := session.store.AutoAssign(week, session.roster.order, session.roster.sessions, s.rules(session))
	if err != nil {
		return nil, err
	}
	s.metrics.RecordAutoAssign(len(result.Assigned), len(result.Skipped))
	s.logger.Info("auto-assignment completed",
		zap.String("specialist_id", specialistID),
		zap.String("week", weekID),
		zap.Int("assigned", len(result.Assigned)),
		zap.Int("skipped", len(result.Skipped)),
		zap.Int("remaining_minutes", result.RemainingMinutes),
	)

	assigned := make([]dto.SessionDTO, 0, len(result.Assigned))
	for _, picked := range result.Assigned {
		assigned = append(assigned, sessionDTO(week, picked, session.roster.names))
	}
	skipped := result.Skipped
	if skipped == nil {
		skipped = []string{}
	}
	return &dto.AutoAssignResponse{Assigned: assigned, Skipped: skipped, Week: s.weekResponse(session, week)}, nil
}

// Confirm submits the week's selection to the confirmation service and
// reconciles the answer. A transport failure or timeout leaves the week
// exactly as it was.
func (s *PlanningService) Confirm(ctx context.Context, specialistID, weekID string) (*dto.ConfirmationResponse, error) {
	week, err := planner.ParseWeekID(weekID)
	if err != nil {
		return nil, err
	}
	session, err := s.session(specialistID)
	if err != nil {
		return nil, err
	}
	ticket, err := session.store.BeginConfirmation(week)
	if err != nil {
		return nil, err
	}

	req := gateway.ConfirmRequest{SpecialistID: specialistID, WeekID: string(week), Assignments: make([]gateway.Assignment, 0, len(ticket.Batch))}
	for _, picked := range ticket.Batch {
		req.Assignments = append(req.Assignments, gateway.Assignment{
			TeacherID: picked.TeacherID,
			Day:       int(picked.Interval.Day()),
			StartTime: planner.FormatClock(picked.Interval.Start()),
			EndTime:   planner.FormatClock(picked.Interval.End()),
			Course:    picked.Course,
			Site:      picked.Site,
		})
	}

	// The round trip outlives a disconnecting client so the ticket is always resolved.
	callCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.ConfirmTimeout)
	defer cancel()
	start := time.Now()
	resp, err := s.gateway.Confirm(callCtx, req)
	duration := time.Since(start)
	if err != nil {
		session.store.AbortConfirmation(ticket)
		s.metrics.RecordConfirmation("UNAVAILABLE", duration)
		s.logger.Warn("confirmation failed, week released unchanged", zap.String("specialist_id", specialistID), zap.String("week", weekID), zap.Error(err))
		if appErrors.Is(err, appErrors.ErrConfirmationUnavailable) {
			return nil, err
		}
		return nil, appErrors.Wrap(err, appErrors.ErrConfirmationUnavailable.Code, appErrors.ErrConfirmationUnavailable.Status, appErrors.ErrConfirmationUnavailable.Message)
	}

	outcome := session.store.CompleteConfirmation(ticket, planner.ConfirmationReport{Successful: resp.Successful, Failed: resp.Failed})
	s.metrics.RecordConfirmation(string(outcome.Status), duration)
	s.logger.Info("confirmation reconciled",
		zap.String("specialist_id", specialistID),
		zap.String("week", weekID),
		zap.String("status", string(outcome.Status)),
		zap.Int("confirmed", len(outcome.Confirmed)),
		zap.Int("rejected", len(outcome.Rejected)),
		zap.Int("pending", len(outcome.Pending)),
	)

	accepted := acceptedSessions(ticket.Batch, resp.Successful, resp.Failed)
	// The server committed these even when the reply no longer applies to the
	// store that sent them; the live store must still count them.
	if len(accepted) > 0 {
		if current, err := s.session(specialistID); err == nil && (outcome.Status == planner.OutcomeStale || current.store != session.store) {
			current.store.SeedCommitted(week, accepted...)
		}
	}
	if len(accepted) > 0 && s.recorder != nil {
		visits := visitsFromSessions(specialistID, week, accepted, s.now().UTC())
		if err := s.recorder.Record(context.WithoutCancel(ctx), visits); err != nil {
			s.logger.Error("failed to record confirmed visits", zap.String("specialist_id", specialistID), zap.String("week", weekID), zap.Error(err))
		}
	}

	view := s.weekResponse(session, week)
	return &dto.ConfirmationResponse{
		WeekID:    string(week),
		Status:    string(outcome.Status),
		Confirmed: nonNil(outcome.Confirmed),
		Rejected:  nonNil(outcome.Rejected),
		Pending:   nonNil(outcome.Pending),
		Week:      &view,
	}, nil
}

// acceptedSessions returns the batch entries the server reported as successful
// and did not also list as failed.
func acceptedSessions(batch []planner.CandidateSession, successful, failed []string) []planner.CandidateSession {
	ok := make(map[string]struct{}, len(successful))
	for _, id := range successful {
		ok[id] = struct{}{}
	}
	for _, id := range failed {
		delete(ok, id)
	}
	accepted := make([]planner.CandidateSession, 0, len(ok))
	for _, picked := range batch {
		if _, hit := ok[picked.TeacherID]; hit {
			accepted = append(accepted, picked)
		}
	}
	return accepted
}

// DiscardWeek drops the local selection of weekID; confirmed visits remain.
func (s *PlanningService) DiscardWeek(ctx context.Context, specialistID, weekID string) (*dto.WeekPlanResponse, error) {
	week, err := planner.ParseWeekID(weekID)
	if err != nil {
		return nil, err
	}
	session, err := s.session(specialistID)
	if err != nil {
		return nil, err
	}
	session.store.DiscardWeek(week)
	view := s.weekResponse(session, week)
	return &view, nil
}

// Budget reports the monthly hour budget for month ("YYYY-MM").
func (s *PlanningService) Budget(ctx context.Context, specialistID, month string) (*dto.BudgetResponse, error) {
	key, err := planner.ParseMonthKey(month)
	if err != nil {
		return nil, err
	}
	session, err := s.session(specialistID)
	if err != nil {
		return nil, err
	}
	budget := budgetResponse(session, key)
	return &budget, nil
}

func budgetResponse(session *planningSession, month planner.MonthKey) dto.BudgetResponse {
	return dto.BudgetResponse{
		Month:          string(month),
		LimitHours:     session.budget.LimitHours(),
		UsedHours:      session.budget.TotalHours(session.store, month),
		RemainingHours: session.budget.Remaining(session.store, month),
		AtLimit:        session.budget.AtLimit(session.store, month),
	}
}

func (s *PlanningService) weekResponse(session *planningSession, week planner.WeekID) dto.WeekPlanResponse {
	today := s.today()
	view := session.store.Week(week)
	occupancy := session.store.Occupancy(week)
	assigned := session.store.AssignedTeachers()
	names := session.roster.names

	selectedBy := make(map[string]planner.CandidateSession, len(view.Selected))
	resp := dto.WeekPlanResponse{
		WeekID:     string(week),
		Monday:     week.Monday().Format("2006-01-02"),
		Generation: view.Generation,
		Confirming: view.Confirming,
		Windows:    windowDTOs(week, session.availability),
		Selected:   make([]dto.SessionDTO, 0, len(view.Selected)),
		Committed:  make([]dto.SessionDTO, 0, len(view.Committed)),
		Teachers:   make([]dto.TeacherPlanDTO, 0, len(session.roster.order)),
		Budget:     budgetResponse(session, week.Month()),
	}
	for _, picked := range view.Selected {
		selectedBy[picked.TeacherID] = picked
		resp.Selected = append(resp.Selected, sessionDTO(week, picked, names))
	}
	committedBy := make(map[string]planner.CandidateSession, len(view.Committed))
	for _, visit := range view.Committed {
		committedBy[visit.TeacherID] = visit
		resp.Committed = append(resp.Committed, sessionDTO(week, visit, names))
	}

	for _, teacherID := range session.roster.order {
		plan := dto.TeacherPlanDTO{TeacherID: teacherID, TeacherName: names[teacherID]}
		own := occupancy
		if picked, ok := selectedBy[teacherID]; ok {
			item := sessionDTO(week, picked, names)
			plan.Selected = &item
			own = occupancy.Clone()
			own.Remove(picked.Interval)
		}
		if visit, ok := committedBy[teacherID]; ok {
			item := sessionDTO(week, visit, names)
			plan.Committed = &item
		}
		_, elsewhere := assigned[teacherID]
		plan.Assigned = elsewhere && plan.Selected == nil && plan.Committed == nil

		candidates := session.roster.sessions[teacherID]
		plan.Candidates = make([]dto.CandidateDTO, 0, len(candidates))
		for i, candidate := range candidates {
			plan.Candidates = append(plan.Candidates, dto.CandidateDTO{
				SessionDTO:    sessionDTO(week, candidate, names),
				Index:         i,
				Compatible:    session.availability.IsCompatible(candidate),
				Free:          own.IsFree(candidate.Interval),
				Past:          week.IsPast(candidate.Interval.Day(), today),
				PreferredSite: session.availability.IsPreferredSite(candidate.Site),
			})
		}
		resp.Teachers = append(resp.Teachers, plan)
	}
	return resp
}

func sessionDTO(week planner.WeekID, session planner.CandidateSession, names map[string]string) dto.SessionDTO {
	day := session.Interval.Day()
	return dto.SessionDTO{
		TeacherID:       session.TeacherID,
		TeacherName:     names[session.TeacherID],
		Course:          session.Course,
		Site:            session.Site,
		DayOfWeek:       int(day),
		DayName:         day.String(),
		Date:            week.Date(day).Format("2006-01-02"),
		StartTime:       planner.FormatClock(session.Interval.Start()),
		EndTime:         planner.FormatClock(session.Interval.End()),
		DurationMinutes: session.Interval.Duration(),
	}
}

func windowDTOs(week planner.WeekID, index *planner.AvailabilityIndex) []dto.WindowDTO {
	out := make([]dto.WindowDTO, 0)
	for day := planner.Monday; day <= planner.Sunday; day++ {
		for _, window := range index.Windows(day) {
			out = append(out, dto.WindowDTO{
				DayOfWeek: int(day),
				DayName:   day.String(),
				Date:      week.Date(day).Format("2006-01-02"),
				StartTime: planner.FormatClock(window.Start()),
				EndTime:   planner.FormatClock(window.End()),
			})
		}
	}
	return out
}

// sessionLimit reads the budget from the availability windows; a specialist
// without declared windows keeps the limit from the profile.
func sessionLimit(index *planner.AvailabilityIndex, specialist *models.Specialist) float64 {
	if limit := index.MonthlyLimit(); limit > 0 {
		return limit
	}
	return specialist.MonthlyHourLimit
}

func nonNil(ids []string) []string {
	if ids == nil {
		return []string{}
	}
	return ids
}
