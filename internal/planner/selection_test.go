package planner

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/noah-isme/accompaniment-planner-api/pkg/errors"
)

func planningRules(limitHours float64) Rules {
	return Rules{Availability: weekdayAvailability(), Budget: NewBudget(limitHours), Today: planningToday}
}

func TestSelectRejectsConflictWithoutMutation(t *testing.T) {
	store := NewSelectionStore()
	rules := planningRules(20)
	require.NoError(t, store.Select(planningWeek, session("t1", Monday, "08:00", "09:00", ""), rules))

	err := store.Select(planningWeek, session("t2", Monday, "08:30", "09:30", ""), rules)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrSlotConflict.Code, appErrors.FromError(err).Code)

	view := store.Week(planningWeek)
	require.Len(t, view.Selected, 1)
	assert.Equal(t, "t1", view.Selected[0].TeacherID)
}

func TestSelectReplacesTeacherPickInSameWeek(t *testing.T) {
	store := NewSelectionStore()
	rules := planningRules(20)
	require.NoError(t, store.Select(planningWeek, session("t1", Monday, "08:00", "09:00", ""), rules))
	require.NoError(t, store.Select(planningWeek, session("t1", Monday, "08:30", "09:30", ""), rules), "own previous pick does not conflict")

	view := store.Week(planningWeek)
	require.Len(t, view.Selected, 1)
	assert.Equal(t, MustInterval(Monday, "08:30", "09:30"), view.Selected[0].Interval)
	assert.Equal(t, 1, store.Occupancy(planningWeek).Len())
}

func TestSelectRejectsIncompatibleAndPast(t *testing.T) {
	store := NewSelectionStore()
	rules := planningRules(20)

	err := store.Select(planningWeek, session("t1", Monday, "07:00", "08:30", ""), rules)
	assert.Equal(t, appErrors.ErrSessionUnavailable.Code, appErrors.FromError(err).Code)

	rules.Today = planningToday.AddDate(0, 0, 2)
	err = store.Select(planningWeek, session("t1", Monday, "08:00", "09:00", ""), rules)
	assert.Equal(t, appErrors.ErrSessionUnavailable.Code, appErrors.FromError(err).Code)
	assert.Empty(t, store.Week(planningWeek).Selected)
}

func TestBudgetScenarioNineAndAHalfHours(t *testing.T) {
	store := NewSelectionStore()
	rules := planningRules(10)
	// 9.5 hours already committed elsewhere in October.
	store.SeedCommitted(planningWeek.Next(), session("t0", Monday, "08:00", "17:30", ""))

	month := planningWeek.Month()
	assert.InDelta(t, 0.5, rules.Budget.Remaining(store, month), 1e-9)

	err := store.Select(planningWeek, session("t1", Tuesday, "08:00", "09:00", ""), rules)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrBudgetExceeded.Code, appErrors.FromError(err).Code)
	assert.Empty(t, store.Week(planningWeek).Selected)

	require.NoError(t, store.Select(planningWeek, session("t2", Tuesday, "08:00", "08:30", ""), rules))
	assert.Zero(t, rules.Budget.Remaining(store, month))
	assert.True(t, rules.Budget.AtLimit(store, month))
	assert.InDelta(t, 10.0, rules.Budget.TotalHours(store, month), 1e-9)
}

func TestSeedCommittedReplacesSelectionOnce(t *testing.T) {
	store := NewSelectionStore()
	rules := planningRules(20)
	require.NoError(t, store.Select(planningWeek, session("t1", Monday, "08:00", "09:00", ""), rules))

	accepted := session("t1", Monday, "08:00", "09:00", "")
	store.SeedCommitted(planningWeek, accepted)
	store.SeedCommitted(planningWeek, accepted)

	view := store.Week(planningWeek)
	assert.Empty(t, view.Selected)
	require.Len(t, view.Committed, 1)
	assert.Equal(t, 60, store.UsedMinutes(planningWeek.Month()))
	assert.Equal(t, 1, store.Occupancy(planningWeek).Len())
	assert.Contains(t, store.AssignedTeachers(), "t1")
}

func TestBudgetIsPerMonthOfMonday(t *testing.T) {
	store := NewSelectionStore()
	rules := planningRules(1)
	september := WeekID("2026-W40")
	require.NoError(t, store.Select(september, session("t1", Friday, "08:00", "09:00", ""), Rules{Availability: rules.Availability, Budget: rules.Budget, Today: september.Monday()}))
	assert.Equal(t, 60, store.UsedMinutes("2026-09"))
	assert.Zero(t, store.UsedMinutes("2026-10"), "Friday 2026-10-02 counts toward the Monday's month")
}

func TestAutoAssignThroughStoreExcludesTeachersPlannedElsewhere(t *testing.T) {
	store := NewSelectionStore()
	rules := planningRules(20)
	other := planningWeek.Next()
	require.NoError(t, store.Select(other, session("t1", Monday, "08:00", "09:00", ""), rules))

	sessions := map[string][]CandidateSession{
		"t1": {session("t1", Tuesday, "08:00", "09:00", "")},
		"t2": {session("t2", Tuesday, "08:00", "09:00", "")},
	}
	result, err := store.AutoAssign(planningWeek, []string{"t1", "t2"}, sessions, rules)
	require.NoError(t, err)
	require.Len(t, result.Assigned, 1)
	assert.Equal(t, "t2", result.Assigned[0].TeacherID)
	assert.Len(t, store.Week(planningWeek).Selected, 1)
}

func TestOccupancyExclusivityAfterRandomOperations(t *testing.T) {
	store := NewSelectionStore()
	rules := planningRules(1000)
	rng := rand.New(rand.NewSource(42))
	teachers := []string{"t1", "t2", "t3", "t4", "t5", "t6", "t7", "t8"}

	for i := 0; i < 400; i++ {
		teacher := teachers[rng.Intn(len(teachers))]
		switch rng.Intn(3) {
		case 0:
			start := 8*60 + rng.Intn(16)*30
			iv, err := NewInterval(Day(rng.Intn(5)+1), start, 30+rng.Intn(3)*30)
			require.NoError(t, err)
			_ = store.Select(planningWeek, CandidateSession{TeacherID: teacher, Interval: iv}, rules)
		case 1:
			_ = store.Deselect(planningWeek, teacher)
		default:
			sessions := map[string][]CandidateSession{}
			for _, id := range teachers {
				iv, err := NewInterval(Day(rng.Intn(5)+1), 8*60+rng.Intn(16)*30, 60)
				require.NoError(t, err)
				sessions[id] = []CandidateSession{{TeacherID: id, Interval: iv}}
			}
			_, err := store.AutoAssign(planningWeek, teachers, sessions, rules)
			require.NoError(t, err)
		}

		occupied := store.Occupancy(planningWeek).Intervals()
		for a := range occupied {
			for b := a + 1; b < len(occupied); b++ {
				require.False(t, Conflicts(occupied[a], occupied[b]), "step %d: %s vs %s", i, occupied[a], occupied[b])
			}
		}
		assert.Equal(t, len(store.Week(planningWeek).Selected), len(occupied))
	}
}

func TestBudgetNeverNegativeAfterAcceptedSelections(t *testing.T) {
	store := NewSelectionStore()
	rules := planningRules(3)
	rng := rand.New(rand.NewSource(7))
	month := planningWeek.Month()
	for i := 0; i < 200; i++ {
		iv, err := NewInterval(Day(rng.Intn(5)+1), 8*60+rng.Intn(18)*30, 30*(1+rng.Intn(4)))
		require.NoError(t, err)
		teacher := []string{"a", "b", "c", "d", "e", "f", "g"}[rng.Intn(7)]
		if err := store.Select(planningWeek, CandidateSession{TeacherID: teacher, Interval: iv}, rules); err == nil {
			assert.GreaterOrEqual(t, rules.Budget.Remaining(store, month), 0.0)
		}
	}
}
