package planner

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func session(teacherID string, day Day, start, end, site string) CandidateSession {
	return CandidateSession{TeacherID: teacherID, Interval: MustInterval(day, start, end), Course: "course-" + teacherID, Site: site}
}

func TestAvailabilityIndexContainment(t *testing.T) {
	idx := NewAvailabilityIndex([]AvailabilityWindow{
		{Interval: MustInterval(Monday, "08:00", "10:00"), MonthlyHourLimit: 10, PreferredSites: []string{" Sede Norte "}},
	})

	assert.True(t, idx.IsCompatible(session("t1", Monday, "08:30", "09:30", "")))
	assert.False(t, idx.IsCompatible(session("t1", Monday, "07:30", "09:00", "")), "straddles the window start")
	assert.False(t, idx.IsCompatible(session("t1", Monday, "09:30", "10:30", "")), "straddles the window end")
	assert.False(t, idx.IsCompatible(session("t1", Tuesday, "08:30", "09:30", "")))
	assert.True(t, idx.IsPreferredSite("sede norte"))
	assert.False(t, idx.IsPreferredSite("sede sur"))
	assert.Equal(t, 10.0, idx.MonthlyLimit())
}

func TestAvailabilityIndexNil(t *testing.T) {
	var idx *AvailabilityIndex
	assert.False(t, idx.IsCompatible(session("t1", Monday, "08:30", "09:30", "")))
	assert.Zero(t, idx.MonthlyLimit())
}

func TestOccupancyAddRemove(t *testing.T) {
	occ := NewOccupancy(MustInterval(Monday, "08:00", "09:00"))
	assert.False(t, occ.IsFree(MustInterval(Monday, "08:30", "09:30")))
	assert.True(t, occ.IsFree(MustInterval(Monday, "09:00", "10:00")), "adjacent is free")

	clone := occ.Clone()
	assert.True(t, occ.Remove(MustInterval(Monday, "08:00", "09:00")))
	assert.False(t, occ.Remove(MustInterval(Monday, "08:00", "09:00")))
	assert.True(t, occ.IsFree(MustInterval(Monday, "08:30", "09:30")))
	assert.Equal(t, 1, clone.Len(), "clone is independent")
}
