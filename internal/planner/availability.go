package planner

import "strings"

// AvailabilityWindow is a declared weekly window of a specialist.
type AvailabilityWindow struct {
	Interval         TimeInterval
	PreferredSites   []string
	MonthlyHourLimit float64
}

// CandidateSession is one scheduled class meeting of a teacher.
type CandidateSession struct {
	Interval  TimeInterval
	TeacherID string
	Course    string
	Site      string
}

// AvailabilityIndex answers whether a session fits inside declared availability.
type AvailabilityIndex struct {
	byDay     map[Day][]TimeInterval
	preferred map[string]struct{}
	limit     float64
}

// NewAvailabilityIndex builds the index from a specialist's windows.
func NewAvailabilityIndex(windows []AvailabilityWindow) *AvailabilityIndex {
	idx := &AvailabilityIndex{
		byDay:     make(map[Day][]TimeInterval),
		preferred: make(map[string]struct{}),
	}
	for _, w := range windows {
		if w.Interval.IsZero() {
			continue
		}
		idx.byDay[w.Interval.Day()] = append(idx.byDay[w.Interval.Day()], w.Interval)
		for _, site := range w.PreferredSites {
			if key := siteKey(site); key != "" {
				idx.preferred[key] = struct{}{}
			}
		}
		if w.MonthlyHourLimit > idx.limit {
			idx.limit = w.MonthlyHourLimit
		}
	}
	return idx
}

// IsCompatible is true iff some window on the same day fully contains the session.
// A session straddling a window edge is not compatible.
func (a *AvailabilityIndex) IsCompatible(session CandidateSession) bool {
	if a == nil {
		return false
	}
	for _, window := range a.byDay[session.Interval.Day()] {
		if Contains(window, session.Interval) {
			return true
		}
	}
	return false
}

// IsPreferredSite reports whether the specialist prefers visiting site.
func (a *AvailabilityIndex) IsPreferredSite(site string) bool {
	if a == nil {
		return false
	}
	_, ok := a.preferred[siteKey(site)]
	return ok
}

// MonthlyLimit returns the monthly hour limit shared by the windows.
func (a *AvailabilityIndex) MonthlyLimit() float64 {
	if a == nil {
		return 0
	}
	return a.limit
}

// Windows returns the indexed intervals for day.
func (a *AvailabilityIndex) Windows(day Day) []TimeInterval {
	if a == nil {
		return nil
	}
	out := make([]TimeInterval, len(a.byDay[day]))
	copy(out, a.byDay[day])
	return out
}

func siteKey(site string) string {
	return strings.ToLower(strings.TrimSpace(site))
}
