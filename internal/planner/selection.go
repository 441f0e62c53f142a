package planner

import (
	"fmt"
	"sort"
	"sync"
	"time"

	appErrors "github.com/noah-isme/accompaniment-planner-api/pkg/errors"
)

// Rules are the guards shared by manual and automatic selection.
type Rules struct {
	Availability *AvailabilityIndex
	Budget       Budget
	Today        time.Time
}

// WeekView is a read-only snapshot of one planning week.
type WeekView struct {
	Week       WeekID
	Generation uint64
	Selected   []CandidateSession
	Committed  []CandidateSession
	Confirming bool
}

type weekPlan struct {
	generation uint64
	order      []string
	selected   map[string]CandidateSession
	committed  []CandidateSession
	occupancy  *Occupancy
	confirming bool
}

func (p *weekPlan) selectedInOrder() []CandidateSession {
	out := make([]CandidateSession, 0, len(p.order))
	for _, id := range p.order {
		out = append(out, p.selected[id])
	}
	return out
}

func (p *weekPlan) drop(teacherID string) (CandidateSession, bool) {
	session, ok := p.selected[teacherID]
	if !ok {
		return CandidateSession{}, false
	}
	delete(p.selected, teacherID)
	p.occupancy.Remove(session.Interval)
	for i, id := range p.order {
		if id == teacherID {
			p.order = append(p.order[:i:i], p.order[i+1:]...)
			break
		}
	}
	return session, true
}

func (p *weekPlan) hasCommitted(teacherID string) bool {
	for _, session := range p.committed {
		if session.TeacherID == teacherID {
			return true
		}
	}
	return false
}

func (p *weekPlan) put(session CandidateSession) {
	if _, exists := p.selected[session.TeacherID]; !exists {
		p.order = append(p.order, session.TeacherID)
	}
	p.selected[session.TeacherID] = session
	p.occupancy.Add(session.Interval)
}

// SelectionStore is the multi-week planning state of one specialist session.
// Phase-1 mutations are synchronous under the store lock; a week frozen by
// BeginConfirmation rejects them until the confirmation resolves.
type SelectionStore struct {
	mu                sync.Mutex
	weeks             map[WeekID]*weekPlan
	committedMinutes  map[MonthKey]int
	committedTeachers map[string]struct{}
	generation        uint64
}

// NewSelectionStore creates an empty store.
func NewSelectionStore() *SelectionStore {
	return &SelectionStore{
		weeks:             make(map[WeekID]*weekPlan),
		committedMinutes:  make(map[MonthKey]int),
		committedTeachers: make(map[string]struct{}),
	}
}

// UsedMinutes implements UsageSource.
func (s *SelectionStore) UsedMinutes(month MonthKey) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.usedMinutesLocked(month)
}

func (s *SelectionStore) usedMinutesLocked(month MonthKey) int {
	total := s.committedMinutes[month]
	for week, plan := range s.weeks {
		if week.Month() != month {
			continue
		}
		for _, session := range plan.selected {
			total += session.Interval.Duration()
		}
	}
	return total
}

type lockedUsage struct{ s *SelectionStore }

func (u lockedUsage) UsedMinutes(month MonthKey) int { return u.s.usedMinutesLocked(month) }

func (s *SelectionStore) plan(week WeekID) *weekPlan {
	p, ok := s.weeks[week]
	if !ok {
		s.generation++
		p = &weekPlan{
			generation: s.generation,
			selected:   make(map[string]CandidateSession),
			occupancy:  NewOccupancy(),
		}
		s.weeks[week] = p
	}
	return p
}

func (s *SelectionStore) mutable(week WeekID) (*weekPlan, error) {
	p := s.plan(week)
	if p.confirming {
		return nil, appErrors.Clone(appErrors.ErrConfirmationInProgress, fmt.Sprintf("week %s is being confirmed", week))
	}
	return p, nil
}

// Select records a manual pick for session.TeacherID, replacing any earlier pick
// of that teacher in the same week. Nothing changes when a guard rejects it.
func (s *SelectionStore) Select(week WeekID, session CandidateSession, rules Rules) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if session.TeacherID == "" {
		return appErrors.Clone(appErrors.ErrValidation, "teacher id is required")
	}
	plan, err := s.mutable(week)
	if err != nil {
		return err
	}
	if _, done := s.committedTeachers[session.TeacherID]; done {
		return appErrors.Clone(appErrors.ErrConflict, "teacher already has a confirmed visit")
	}
	if !rules.Availability.IsCompatible(session) {
		return appErrors.Clone(appErrors.ErrSessionUnavailable, "session is outside the declared availability")
	}
	if week.IsPast(session.Interval.Day(), rules.Today) {
		return appErrors.Clone(appErrors.ErrSessionUnavailable, "session date has already passed")
	}

	occupancy := plan.occupancy
	previous, hadPrevious := plan.selected[session.TeacherID]
	if hadPrevious {
		occupancy = occupancy.Clone()
		occupancy.Remove(previous.Interval)
	}
	if !occupancy.IsFree(session.Interval) {
		return appErrors.Clone(appErrors.ErrSlotConflict, fmt.Sprintf("%s overlaps another visit this week", session.Interval))
	}

	month := week.Month()
	needed := session.Interval.Duration()
	if hadPrevious {
		needed -= previous.Interval.Duration()
	}
	if !rules.Budget.Fits(lockedUsage{s}, month, needed) {
		return appErrors.Clone(appErrors.ErrBudgetExceeded, fmt.Sprintf("monthly limit reached: %.2f hours remaining in %s", rules.Budget.Remaining(lockedUsage{s}, month), month))
	}

	if hadPrevious {
		plan.drop(session.TeacherID)
	}
	plan.put(session)
	return nil
}

// Deselect removes the teacher's pick from week.
func (s *SelectionStore) Deselect(week WeekID, teacherID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	plan, err := s.mutable(week)
	if err != nil {
		return err
	}
	if _, ok := plan.drop(teacherID); !ok {
		return appErrors.Clone(appErrors.ErrNotFound, "teacher has no selection this week")
	}
	return nil
}

// AutoAssign fills week greedily for every roster teacher not yet planned anywhere.
func (s *SelectionStore) AutoAssign(week WeekID, roster []string, sessions map[string][]CandidateSession, rules Rules) (AutoAssignResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	plan, err := s.mutable(week)
	if err != nil {
		return AutoAssignResult{}, err
	}
	result := AutoAssign(AutoAssignInput{
		Week:             week,
		Teachers:         roster,
		Excluded:         s.assignedLocked(),
		Sessions:         sessions,
		Availability:     rules.Availability,
		Occupancy:        plan.occupancy,
		RemainingMinutes: rules.Budget.RemainingMinutes(lockedUsage{s}, week.Month()),
		Today:            rules.Today,
	})
	for _, session := range result.Assigned {
		plan.put(session)
	}
	return result, nil
}

// AssignedTeachers lists teachers selected in any week or already committed.
func (s *SelectionStore) AssignedTeachers() map[string]struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.assignedLocked()
}

func (s *SelectionStore) assignedLocked() map[string]struct{} {
	out := make(map[string]struct{}, len(s.committedTeachers))
	for id := range s.committedTeachers {
		out[id] = struct{}{}
	}
	for _, plan := range s.weeks {
		for id := range plan.selected {
			out[id] = struct{}{}
		}
	}
	return out
}

// SeedCommitted records visits confirmed outside the local reconciliation,
// either before this session started or by a reply that arrived stale.
// A teacher already committed is skipped and one still selected is dropped.
func (s *SelectionStore) SeedCommitted(week WeekID, sessions ...CandidateSession) {
	s.mu.Lock()
	defer s.mu.Unlock()
	plan := s.plan(week)
	for _, session := range sessions {
		if plan.hasCommitted(session.TeacherID) {
			continue
		}
		plan.drop(session.TeacherID)
		s.commitLocked(week, plan, session)
	}
}

func (s *SelectionStore) commitLocked(week WeekID, plan *weekPlan, session CandidateSession) {
	plan.committed = append(plan.committed, session)
	plan.occupancy.Add(session.Interval)
	s.committedMinutes[week.Month()] += session.Interval.Duration()
	s.committedTeachers[session.TeacherID] = struct{}{}
}

// Week returns a snapshot of week; unknown weeks read as empty.
func (s *SelectionStore) Week(week WeekID) WeekView {
	s.mu.Lock()
	defer s.mu.Unlock()
	plan, ok := s.weeks[week]
	if !ok {
		return WeekView{Week: week}
	}
	return WeekView{
		Week:       week,
		Generation: plan.generation,
		Selected:   plan.selectedInOrder(),
		Committed:  append([]CandidateSession(nil), plan.committed...),
		Confirming: plan.confirming,
	}
}

// Weeks lists weeks holding any state, oldest first.
func (s *SelectionStore) Weeks() []WeekID {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]WeekID, 0, len(s.weeks))
	for week := range s.weeks {
		out = append(out, week)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Occupancy returns a copy of the week's occupied intervals.
func (s *SelectionStore) Occupancy(week WeekID) *Occupancy {
	s.mu.Lock()
	defer s.mu.Unlock()
	plan, ok := s.weeks[week]
	if !ok {
		return NewOccupancy()
	}
	return plan.occupancy.Clone()
}

// DiscardWeek drops the local selection of week. Committed visits stay in the
// monthly ledger. A confirmation in flight for the week becomes stale.
func (s *SelectionStore) DiscardWeek(week WeekID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	plan, ok := s.weeks[week]
	if !ok {
		return
	}
	delete(s.weeks, week)
	if len(plan.committed) == 0 {
		return
	}
	fresh := s.plan(week)
	for _, session := range plan.committed {
		fresh.committed = append(fresh.committed, session)
		fresh.occupancy.Add(session.Interval)
	}
}
