package engine

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coursesched/internal/domain"
)

func testConfig() Config {
	return Config{OptimizeTimeout: 2 * time.Second, FeasibilityTimeout: 500 * time.Millisecond}
}

func intPtr(v int) *int { return &v }

func TestSolve_TrivialSingleSection(t *testing.T) {
	input := domain.SchedulingInput{
		Sections: []domain.Section{
			{ID: "s1", ExpectedEnrollment: 20, AllowedMeetingPatterns: []string{"p1"}},
		},
		Rooms:     []domain.Room{{ID: "r1", Capacity: 30}},
		Timeslots: []domain.Timeslot{{ID: "t1", Day: "Mon"}},
		MeetingPatterns: []domain.MeetingPattern{
			{ID: "p1", CompatibleTimeslotSets: [][]string{{"t1"}}},
		},
	}

	result := Solve(context.Background(), input, testConfig(), nil)

	require.Equal(t, "ok", result.Status)
	require.Len(t, result.Assignments, 1)
	assert.Equal(t, 25, result.TotalScore)
	require.NotNil(t, result.PenaltyBreakdown)
	assert.Equal(t, 10, result.PenaltyBreakdown.RoomWaste)
	assert.Equal(t, 10, result.PenaltyBreakdown.InstructorDayPreference)
	assert.Equal(t, 5, result.PenaltyBreakdown.InstructorPatternPreference)
	assert.Equal(t, result.TotalScore, result.PenaltyBreakdown.Total())
}

func TestSolve_AdjunctExcess(t *testing.T) {
	input := domain.SchedulingInput{
		Sections: []domain.Section{
			{ID: "s1", InstructorID: "adj1", ExpectedEnrollment: 10, AllowedMeetingPatterns: []string{"pm"}},
			{ID: "s2", InstructorID: "adj1", ExpectedEnrollment: 10, AllowedMeetingPatterns: []string{"pt"}},
		},
		Instructors: []domain.Instructor{
			{ID: "adj1", RankType: "Adjunct", Preferences: domain.Preferences{MaxTeachingDays: intPtr(1)}},
		},
		Rooms: []domain.Room{{ID: "r1", Capacity: 30}},
		Timeslots: []domain.Timeslot{
			{ID: "tm", Day: "Mon"},
			{ID: "tt", Day: "Tue"},
		},
		MeetingPatterns: []domain.MeetingPattern{
			{ID: "pm", CompatibleTimeslotSets: [][]string{{"tm"}}},
			{ID: "pt", CompatibleTimeslotSets: [][]string{{"tt"}}},
		},
	}

	result := Solve(context.Background(), input, testConfig(), nil)

	require.Equal(t, "ok", result.Status)
	require.NotNil(t, result.PenaltyBreakdown)
	assert.Equal(t, 15, result.PenaltyBreakdown.AdjunctDayExcess)
}

func TestSolve_CrossListSameRoom(t *testing.T) {
	input := domain.SchedulingInput{
		Sections: []domain.Section{
			{ID: "s1", ExpectedEnrollment: 15, AllowedMeetingPatterns: []string{"p1"}, CrosslistGroupID: "g1"},
			{ID: "s2", ExpectedEnrollment: 15, AllowedMeetingPatterns: []string{"p1"}, CrosslistGroupID: "g1"},
		},
		CrosslistGroups: []domain.CrossListGroup{
			{ID: "g1", MemberSectionIDs: []string{"s1", "s2"}, RequireSameRoom: true},
		},
		Rooms:     []domain.Room{{ID: "r1", Capacity: 40}},
		Timeslots: []domain.Timeslot{{ID: "t1", Day: "Mon"}},
		MeetingPatterns: []domain.MeetingPattern{
			{ID: "p1", CompatibleTimeslotSets: [][]string{{"t1"}}},
		},
	}

	result := Solve(context.Background(), input, testConfig(), nil)

	require.Equal(t, "ok", result.Status)
	require.Len(t, result.Assignments, 2)
	bySection := make(map[string]domain.Assignment)
	for _, a := range result.Assignments {
		bySection[a.SectionID] = a
	}
	assert.Equal(t, bySection["s1"].RoomID, bySection["s2"].RoomID)
	assert.ElementsMatch(t, bySection["s1"].TimeslotIDs, bySection["s2"].TimeslotIDs)
}

func TestSolve_SoftLockMismatch(t *testing.T) {
	input := domain.SchedulingInput{
		Sections: []domain.Section{
			{ID: "s1", ExpectedEnrollment: 10, AllowedMeetingPatterns: []string{"p1"}},
		},
		SoftLocks: []domain.SoftLock{
			{SectionID: "s1", PreferredRoom: "r2", Weight: 20},
		},
		Rooms:     []domain.Room{{ID: "r1", Capacity: 20}},
		Timeslots: []domain.Timeslot{{ID: "t1", Day: "Mon"}},
		MeetingPatterns: []domain.MeetingPattern{
			{ID: "p1", CompatibleTimeslotSets: [][]string{{"t1"}}},
		},
	}

	result := Solve(context.Background(), input, testConfig(), nil)

	require.Equal(t, "ok", result.Status)
	require.NotNil(t, result.PenaltyBreakdown)
	assert.Equal(t, 20, result.PenaltyBreakdown.SoftLockRoom)
}

// TestSolve_CrosslistCapacityAndNoFeasibleOptionsCoOccur checks that
// pre-validation and option-enumeration errors are returned together in one
// error list (SPEC_FULL §7): a cross-list capacity failure
// on one section and a no-feasible-options failure on an unrelated section
// must both appear in the same error list, not short-circuit each other.
func TestSolve_CrosslistCapacityAndNoFeasibleOptionsCoOccur(t *testing.T) {
	input := domain.SchedulingInput{
		Sections: []domain.Section{
			{ID: "s1", ExpectedEnrollment: 50, AllowedMeetingPatterns: []string{"p1"}, CrosslistGroupID: "g1"},
			{ID: "s2", ExpectedEnrollment: 10, RoomRequirements: []string{"laser"}, AllowedMeetingPatterns: []string{"p1"}},
		},
		CrosslistGroups: []domain.CrossListGroup{
			{ID: "g1", MemberSectionIDs: []string{"s1"}},
		},
		Rooms:     []domain.Room{{ID: "r1", Capacity: 20}},
		Timeslots: []domain.Timeslot{{ID: "t1", Day: "Mon"}},
		MeetingPatterns: []domain.MeetingPattern{
			{ID: "p1", CompatibleTimeslotSets: [][]string{{"t1"}}},
		},
	}

	result := Solve(context.Background(), input, testConfig(), nil)

	require.Equal(t, "error", result.Status)
	var gotCrosslist, gotNoFeasible bool
	for _, e := range result.Errors {
		switch e.Code {
		case "crosslist_capacity":
			gotCrosslist = true
		case "no_feasible_options":
			gotNoFeasible = true
		}
	}
	assert.True(t, gotCrosslist, "expected a crosslist_capacity error")
	assert.True(t, gotNoFeasible, "expected a no_feasible_options error")
}

func TestSolve_InfeasibleByLockAndBlock(t *testing.T) {
	input := domain.SchedulingInput{
		Sections: []domain.Section{
			{ID: "s1", ExpectedEnrollment: 10, AllowedMeetingPatterns: []string{"p1"}},
		},
		Locks: []domain.LockedAssignment{
			{SectionID: "s1", FixedTimeslotSet: []string{"t1"}},
		},
		BlockedTimes: []domain.BlockedTime{
			{Scope: "global", TimeslotIDs: []string{"t1"}},
		},
		Rooms:     []domain.Room{{ID: "r1", Capacity: 20}},
		Timeslots: []domain.Timeslot{{ID: "t1", Day: "Mon"}},
		MeetingPatterns: []domain.MeetingPattern{
			{ID: "p1", CompatibleTimeslotSets: [][]string{{"t1"}}},
		},
	}

	result := Solve(context.Background(), input, testConfig(), nil)

	require.Equal(t, "error", result.Status)
	found := false
	for _, e := range result.Errors {
		if e.Code == "no_feasible_options" {
			found = true
		}
	}
	assert.True(t, found)
	assert.Nil(t, result.Diagnostics)
}

func TestSolve_InfeasibleByInstructorConflict(t *testing.T) {
	input := domain.SchedulingInput{
		Sections: []domain.Section{
			{ID: "s1", InstructorID: "i1", ExpectedEnrollment: 10, AllowedMeetingPatterns: []string{"p1"}},
			{ID: "s2", InstructorID: "i1", ExpectedEnrollment: 10, AllowedMeetingPatterns: []string{"p1"}},
		},
		Instructors: []domain.Instructor{{ID: "i1"}},
		Rooms:       []domain.Room{{ID: "r1", Capacity: 20}, {ID: "r2", Capacity: 20}},
		Timeslots:   []domain.Timeslot{{ID: "t1", Day: "Mon"}},
		MeetingPatterns: []domain.MeetingPattern{
			{ID: "p1", CompatibleTimeslotSets: [][]string{{"t1"}}},
		},
	}

	result := Solve(context.Background(), input, testConfig(), nil)

	require.Equal(t, "error", result.Status)
	require.NotNil(t, result.Diagnostics)
	assert.Contains(t, result.Diagnostics.FeasibleIfRelax, "Instructor overlap constraints")
	assert.Contains(t, result.Diagnostics.FeasibleIfRemoveSection, "s1")
	assert.Contains(t, result.Diagnostics.FeasibleIfRemoveSection, "s2")
}

// TestSolve_ExactlyOneAndHardFeasibility exercises the universal properties
// against a slightly larger input with a room conflict risk and a
// no-overlap group.
func TestSolve_ExactlyOneAndHardFeasibility(t *testing.T) {
	input := domain.SchedulingInput{
		Sections: []domain.Section{
			{ID: "s1", ExpectedEnrollment: 10, AllowedMeetingPatterns: []string{"p1"}},
			{ID: "s2", ExpectedEnrollment: 10, AllowedMeetingPatterns: []string{"p1"}},
			{ID: "s3", ExpectedEnrollment: 10, AllowedMeetingPatterns: []string{"p1"}},
		},
		NoOverlapGroups: []domain.NoOverlapGroup{
			{ID: "no1", MemberSectionIDs: []string{"s2", "s3"}},
		},
		Rooms:     []domain.Room{{ID: "r1", Capacity: 20}, {ID: "r2", Capacity: 20}},
		Timeslots: []domain.Timeslot{{ID: "t1", Day: "Mon"}, {ID: "t2", Day: "Tue"}},
		MeetingPatterns: []domain.MeetingPattern{
			{ID: "p1", CompatibleTimeslotSets: [][]string{{"t1"}, {"t2"}}},
		},
	}

	result := Solve(context.Background(), input, testConfig(), nil)
	require.Equal(t, "ok", result.Status)
	require.Len(t, result.Assignments, 3)

	seenSections := make(map[string]bool)
	seenRoomTime := make(map[string]bool)
	noOverlapTime := ""
	for _, a := range result.Assignments {
		assert.False(t, seenSections[a.SectionID], "section assigned more than once")
		seenSections[a.SectionID] = true

		key := a.RoomID + "@" + a.TimeslotIDs[0]
		assert.False(t, seenRoomTime[key], "room double-booked")
		seenRoomTime[key] = true

		if a.SectionID == "s2" || a.SectionID == "s3" {
			if noOverlapTime == "" {
				noOverlapTime = a.TimeslotIDs[0]
			} else {
				assert.NotEqual(t, noOverlapTime, a.TimeslotIDs[0], "no-overlap group members share a timeslot")
			}
		}
	}
	for _, s := range input.Sections {
		assert.True(t, seenSections[s.ID], "missing assignment for %s", s.ID)
	}
}

func TestSolve_CapacityAndFeatures(t *testing.T) {
	input := domain.SchedulingInput{
		Sections: []domain.Section{
			{ID: "s1", ExpectedEnrollment: 25, RoomRequirements: []string{"projector"}, AllowedMeetingPatterns: []string{"p1"}},
		},
		Rooms: []domain.Room{
			{ID: "small", Capacity: 10, Features: []string{"projector"}},
			{ID: "noproj", Capacity: 30},
			{ID: "fit", Capacity: 30, Features: []string{"projector"}},
		},
		Timeslots: []domain.Timeslot{{ID: "t1", Day: "Mon"}},
		MeetingPatterns: []domain.MeetingPattern{
			{ID: "p1", CompatibleTimeslotSets: [][]string{{"t1"}}},
		},
	}

	result := Solve(context.Background(), input, testConfig(), nil)
	require.Equal(t, "ok", result.Status)
	require.Len(t, result.Assignments, 1)
	assert.Equal(t, "fit", result.Assignments[0].RoomID)
}

func TestSolve_LockCompliance(t *testing.T) {
	input := domain.SchedulingInput{
		Sections: []domain.Section{
			{ID: "s1", ExpectedEnrollment: 10, AllowedMeetingPatterns: []string{"p1"}},
		},
		Locks: []domain.LockedAssignment{
			{SectionID: "s1", FixedRoom: "r2"},
		},
		Rooms:     []domain.Room{{ID: "r1", Capacity: 20}, {ID: "r2", Capacity: 20}},
		Timeslots: []domain.Timeslot{{ID: "t1", Day: "Mon"}},
		MeetingPatterns: []domain.MeetingPattern{
			{ID: "p1", CompatibleTimeslotSets: [][]string{{"t1"}}},
		},
	}

	result := Solve(context.Background(), input, testConfig(), nil)
	require.Equal(t, "ok", result.Status)
	require.Len(t, result.Assignments, 1)
	assert.Equal(t, "r2", result.Assignments[0].RoomID)
}

func TestSolve_BlockedTimesExcluded(t *testing.T) {
	input := domain.SchedulingInput{
		Sections: []domain.Section{
			{ID: "s1", ExpectedEnrollment: 10, AllowedMeetingPatterns: []string{"p1"}},
		},
		BlockedTimes: []domain.BlockedTime{
			{Scope: "global", TimeslotIDs: []string{"t1"}},
		},
		Rooms:     []domain.Room{{ID: "r1", Capacity: 20}},
		Timeslots: []domain.Timeslot{{ID: "t1", Day: "Mon"}, {ID: "t2", Day: "Tue"}},
		MeetingPatterns: []domain.MeetingPattern{
			{ID: "p1", CompatibleTimeslotSets: [][]string{{"t1"}, {"t2"}}},
		},
	}

	result := Solve(context.Background(), input, testConfig(), nil)
	require.Equal(t, "ok", result.Status)
	require.Len(t, result.Assignments, 1)
	assert.Equal(t, []string{"t2"}, result.Assignments[0].TimeslotIDs)
}

func TestSolve_DeterministicAcrossRepeatedRuns(t *testing.T) {
	input := domain.SchedulingInput{
		Sections: []domain.Section{
			{ID: "s1", ExpectedEnrollment: 10, AllowedMeetingPatterns: []string{"p1"}},
			{ID: "s2", ExpectedEnrollment: 10, AllowedMeetingPatterns: []string{"p1"}},
		},
		Rooms:     []domain.Room{{ID: "r1", Capacity: 30}, {ID: "r2", Capacity: 10}},
		Timeslots: []domain.Timeslot{{ID: "t1", Day: "Mon"}},
		MeetingPatterns: []domain.MeetingPattern{
			{ID: "p1", CompatibleTimeslotSets: [][]string{{"t1"}}},
		},
	}

	first := Solve(context.Background(), input, testConfig(), nil)
	second := Solve(context.Background(), input, testConfig(), nil)

	require.Equal(t, "ok", first.Status)
	require.Equal(t, "ok", second.Status)
	assert.Equal(t, first.TotalScore, second.TotalScore)
	assert.ElementsMatch(t, first.Assignments, second.Assignments)
}
