package planner

import (
	"sort"
	"time"
)

// AutoAssignInput is everything the greedy pass needs; it holds no references
// back into a SelectionStore.
type AutoAssignInput struct {
	Week WeekID
	// Teachers is the candidate roster in its natural order.
	Teachers []string
	// Excluded holds teachers already selected or committed in any week.
	Excluded map[string]struct{}
	Sessions map[string][]CandidateSession

	Availability     *AvailabilityIndex
	Occupancy        *Occupancy
	RemainingMinutes int
	Today            time.Time
}

// AutoAssignResult lists picks in processing order and teachers left for manual handling.
type AutoAssignResult struct {
	Assigned         []CandidateSession
	Skipped          []string
	RemainingMinutes int
}

// AutoAssign runs a single greedy pass: teachers with a session at a preferred
// site go first, each teacher takes its first eligible session, nothing is
// revisited. A later teacher may miss a slot a different order would have freed.
func AutoAssign(in AutoAssignInput) AutoAssignResult {
	occupancy := NewOccupancy()
	if in.Occupancy != nil {
		occupancy = in.Occupancy.Clone()
	}
	result := AutoAssignResult{RemainingMinutes: in.RemainingMinutes}

	roster := make([]string, 0, len(in.Teachers))
	seen := make(map[string]struct{}, len(in.Teachers))
	for _, id := range in.Teachers {
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if _, excluded := in.Excluded[id]; excluded {
			continue
		}
		roster = append(roster, id)
	}
	preferred := make(map[string]bool, len(roster))
	for _, id := range roster {
		preferred[id] = hasPreferredSession(in, id)
	}
	sort.SliceStable(roster, func(i, j int) bool {
		return preferred[roster[i]] && !preferred[roster[j]]
	})

	for i, teacherID := range roster {
		if result.RemainingMinutes <= 0 {
			result.Skipped = append(result.Skipped, roster[i:]...)
			break
		}
		picked := false
		for _, session := range in.Sessions[teacherID] {
			if !eligible(in, occupancy, session, result.RemainingMinutes) {
				continue
			}
			session.TeacherID = teacherID
			occupancy.Add(session.Interval)
			result.RemainingMinutes -= session.Interval.Duration()
			result.Assigned = append(result.Assigned, session)
			picked = true
			break
		}
		if !picked {
			result.Skipped = append(result.Skipped, teacherID)
		}
	}
	return result
}

func eligible(in AutoAssignInput, occupancy *Occupancy, session CandidateSession, remaining int) bool {
	if session.Interval.IsZero() {
		return false
	}
	if !in.Availability.IsCompatible(session) {
		return false
	}
	if !occupancy.IsFree(session.Interval) {
		return false
	}
	if in.Week.IsPast(session.Interval.Day(), in.Today) {
		return false
	}
	return remaining-session.Interval.Duration() >= 0
}

func hasPreferredSession(in AutoAssignInput, teacherID string) bool {
	for _, session := range in.Sessions[teacherID] {
		if in.Availability.IsPreferredSite(session.Site) {
			return true
		}
	}
	return false
}
