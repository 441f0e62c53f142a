package planner

import (
	"fmt"

	appErrors "github.com/noah-isme/accompaniment-planner-api/pkg/errors"
)

// OutcomeStatus discriminates how a confirmation resolved.
type OutcomeStatus string

const (
	// OutcomeConfirmed means every submitted teacher was accepted.
	OutcomeConfirmed OutcomeStatus = "CONFIRMED"
	// OutcomePartial means some teachers were claimed by another specialist first.
	OutcomePartial OutcomeStatus = "PARTIAL"
	// OutcomeStale means the week was discarded while the request was in flight.
	OutcomeStale OutcomeStatus = "STALE"
)

// Ticket tags an in-flight confirmation with the week generation it targets.
type Ticket struct {
	Week       WeekID
	Generation uint64
	Batch      []CandidateSession
}

// ConfirmationReport is the per-teacher classification returned by the confirmation service.
type ConfirmationReport struct {
	Successful []string
	Failed     []string
}

// Outcome is the reconciled result of a confirmation.
type Outcome struct {
	Week      WeekID
	Status    OutcomeStatus
	Confirmed []string
	Rejected  []string
	// Pending lists submitted teachers the report did not mention; they stay selected.
	Pending []string
}

// BeginConfirmation freezes week and snapshots its selection for submission.
func (s *SelectionStore) BeginConfirmation(week WeekID) (Ticket, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	plan, ok := s.weeks[week]
	if !ok || len(plan.selected) == 0 {
		return Ticket{}, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("week %s has no selections to confirm", week))
	}
	if plan.confirming {
		return Ticket{}, appErrors.Clone(appErrors.ErrConfirmationInProgress, fmt.Sprintf("week %s is already being confirmed", week))
	}
	plan.confirming = true
	return Ticket{Week: week, Generation: plan.generation, Batch: plan.selectedInOrder()}, nil
}

// AbortConfirmation unfreezes the ticket's week without touching the selection.
func (s *SelectionStore) AbortConfirmation(ticket Ticket) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if plan, ok := s.current(ticket); ok {
		plan.confirming = false
	}
}

// CompleteConfirmation applies report: accepted teachers leave the selection and
// enter the committed ledger, rejected and unmentioned ones stay selected.
// Reports for a discarded week are ignored.
func (s *SelectionStore) CompleteConfirmation(ticket Ticket, report ConfirmationReport) Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()

	plan, ok := s.current(ticket)
	if !ok {
		return Outcome{Week: ticket.Week, Status: OutcomeStale}
	}
	plan.confirming = false

	successful := toSet(report.Successful)
	failed := toSet(report.Failed)
	outcome := Outcome{Week: ticket.Week, Status: OutcomeConfirmed}
	for _, submitted := range ticket.Batch {
		teacherID := submitted.TeacherID
		switch {
		case has(failed, teacherID):
			outcome.Rejected = append(outcome.Rejected, teacherID)
		case has(successful, teacherID):
			session, selected := plan.drop(teacherID)
			if !selected {
				session = submitted
			}
			s.commitLocked(ticket.Week, plan, session)
			outcome.Confirmed = append(outcome.Confirmed, teacherID)
		default:
			outcome.Pending = append(outcome.Pending, teacherID)
		}
	}
	if len(outcome.Rejected) > 0 || len(outcome.Pending) > 0 {
		outcome.Status = OutcomePartial
	}
	return outcome
}

func (s *SelectionStore) current(ticket Ticket) (*weekPlan, bool) {
	plan, ok := s.weeks[ticket.Week]
	if !ok || plan.generation != ticket.Generation {
		return nil, false
	}
	return plan, true
}

func toSet(ids []string) map[string]struct{} {
	out := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		out[id] = struct{}{}
	}
	return out
}

func has(set map[string]struct{}, id string) bool {
	_, ok := set[id]
	return ok
}
