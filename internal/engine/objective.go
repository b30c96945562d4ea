package engine

import (
	"sort"

	"coursesched/internal/domain"
	"coursesched/internal/solver"
)

// Weight constants for the soft-penalty objective terms. These are
// compile-time tunables, never overridable by request payload.
const (
	WRoomWaste     = 1
	WPrefDay       = 10
	WPrefPattern   = 5
	WAdjunct       = 15
	WSoftLockBase  = 1
)

// addObjective adds every soft-penalty term to the model's minimize
// expression: room waste, instructor day/pattern preference misses,
// adjunct teaching-day excess, and soft-lock mismatches.
func addObjective(m *solver.BacktrackModel, input domain.SchedulingInput, idx indices, build *modelBuild) {
	var terms []solver.Term

	for _, section := range input.Sections {
		// Preference penalties apply even when the section names no
		// instructor record: an empty preferred_days/preferred_patterns set
		// has empty intersection with anything, so the zero-value
		// Instructor still scores a miss on both terms.
		instr := idx.instructorByID[section.InstructorID]
		softLocks := idx.softLocksBySection[section.ID]

		for _, ov := range build.bySection[section.ID] {
			coef := 0
			coef += roomWastePenalty(ov.option)
			coef += dayPreferencePenalty(ov.option, instr, idx)
			coef += patternPreferencePenalty(ov.option, instr)
			for _, sl := range softLocks {
				timeP, roomP := softLockPenalties(ov.option, sl)
				coef += timeP + roomP
			}
			if coef != 0 {
				terms = append(terms, solver.Term{Var: ov.v, Coef: coef})
			}
		}
	}

	addAdjunctExcessTerms(m, input, idx, build, &terms)

	m.Minimize(terms)
}

func roomWastePenalty(opt domain.Option) int {
	return opt.RoomWaste * WRoomWaste
}

// dayPreferencePenalty charges W_PREF_DAY whenever the option's days don't
// intersect the instructor's preferred days — including when preferred_days
// is empty, since intersection with the empty set is always empty.
func dayPreferencePenalty(opt domain.Option, instr domain.Instructor, idx indices) int {
	for _, d := range daysOf(opt.TimeslotSet, idx) {
		if contains(instr.Preferences.PreferredDays, d) {
			return 0
		}
	}
	return WPrefDay
}

// patternPreferencePenalty charges W_PREF_PATTERN whenever the option's
// pattern isn't in the instructor's preferred patterns, including when that
// list is empty.
func patternPreferencePenalty(opt domain.Option, instr domain.Instructor) int {
	if contains(instr.Preferences.PreferredPatterns, opt.PatternID) {
		return 0
	}
	return WPrefPattern
}

// softLockPenalties returns the (time, room) mismatch penalties for one
// option against one soft lock, with the soft lock's weight truncated
// toward zero before being scaled by WSoftLockBase.
func softLockPenalties(opt domain.Option, sl domain.SoftLock) (timePenalty, roomPenalty int) {
	truncated := int(sl.Weight)
	if len(sl.PreferredTimeslotSet) > 0 && !setEqual(sl.PreferredTimeslotSet, opt.TimeslotSet) {
		timePenalty = truncated * WSoftLockBase
	}
	if sl.PreferredRoom != "" && sl.PreferredRoom != opt.RoomID {
		roomPenalty = truncated * WSoftLockBase
	}
	return timePenalty, roomPenalty
}

// addAdjunctExcessTerms links one boolean per (adjunct instructor, day)
// to every option of that instructor's sections touching that day, then
// bounds an excess integer variable from below by the count of days used
// past the instructor's cap. The excess variable's minimize coefficient is
// what steers the search away from over-scheduling adjuncts.
func addAdjunctExcessTerms(m *solver.BacktrackModel, input domain.SchedulingInput, idx indices, build *modelBuild, terms *[]solver.Term) {
	for _, instr := range input.Instructors {
		if !instr.IsAdjunct() {
			continue
		}

		dayOptions := make(map[string][]solver.Term)
		for _, section := range input.Sections {
			if section.InstructorID != instr.ID {
				continue
			}
			for _, ov := range build.bySection[section.ID] {
				for _, d := range daysOf(ov.option.TimeslotSet, idx) {
					dayOptions[d] = append(dayOptions[d], solver.Term{Var: ov.v, Coef: 1})
				}
			}
		}
		if len(dayOptions) == 0 {
			continue
		}

		// Visit days in a fixed order rather than Go's randomized map
		// iteration order: variable-creation order feeds directly into the
		// backtracking search's branch order, and must stay deterministic
		// across identical runs.
		days := make([]string, 0, len(dayOptions))
		for d := range dayOptions {
			days = append(days, d)
		}
		sort.Strings(days)

		var dayVars []solver.Term
		for _, d := range days {
			dv := m.NewBoolVar("day:" + instr.ID)
			for _, t := range dayOptions[d] {
				m.AddLinearLE([]solver.Term{{Var: t.Var, Coef: 1}, {Var: dv, Coef: -1}}, 0)
			}
			dayVars = append(dayVars, solver.Term{Var: dv, Coef: 1})
		}

		maxDays := *instr.Preferences.MaxTeachingDays
		excess := m.NewIntVar(0, len(dayOptions), "excess:"+instr.ID)
		build.excessVar[instr.ID] = excess

		leTerms := append([]solver.Term(nil), dayVars...)
		leTerms = append(leTerms, solver.Term{Var: excess, Coef: -1})
		m.AddLinearLE(leTerms, maxDays)

		*terms = append(*terms, solver.Term{Var: excess, Coef: WAdjunct})
	}
}
