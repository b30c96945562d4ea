package engine

import (
	"fmt"
	"strings"

	"coursesched/internal/domain"
)

// assemble reconstructs the chosen option per section from the solved
// model, recomputes the per-option penalty terms from those options, and
// reads the adjunct day excess from the model's per-instructor excess
// variables.
func assemble(input domain.SchedulingInput, idx indices, build *modelBuild) domain.ScheduleResult {
	chosen := make(map[string]domain.Option, len(input.Sections))
	for _, section := range input.Sections {
		for _, ov := range build.bySection[section.ID] {
			if build.model.Value(ov.v) == 1 {
				chosen[section.ID] = ov.option
				break
			}
		}
	}

	breakdown := domain.PenaltyBreakdown{}
	assignments := make([]domain.Assignment, 0, len(input.Sections))
	explanations := make([]string, 0, len(input.Sections))

	for _, section := range input.Sections {
		opt, ok := chosen[section.ID]
		if !ok {
			continue
		}

		assignments = append(assignments, domain.Assignment{
			SectionID:        section.ID,
			MeetingPatternID: opt.PatternID,
			TimeslotIDs:      opt.TimeslotSet,
			RoomID:           opt.RoomID,
		})
		explanations = append(explanations, fmt.Sprintf(
			"Section %s assigned to %s at %s.",
			section.ID, opt.RoomID, strings.Join(opt.TimeslotSet, ", ")))

		breakdown.RoomWaste += roomWastePenalty(opt)

		instr := idx.instructorByID[section.InstructorID]
		breakdown.InstructorDayPreference += dayPreferencePenalty(opt, instr, idx)
		breakdown.InstructorPatternPreference += patternPreferencePenalty(opt, instr)

		for _, sl := range idx.softLocksBySection[section.ID] {
			timeP, roomP := softLockPenalties(opt, sl)
			breakdown.SoftLockTime += timeP
			breakdown.SoftLockRoom += roomP
		}
	}

	for _, excess := range build.excessVar {
		breakdown.AdjunctDayExcess += build.model.Value(excess) * WAdjunct
	}

	total := breakdown.Total()

	return domain.ScheduleResult{
		Status:           "ok",
		Assignments:      assignments,
		TotalScore:       total,
		PenaltyBreakdown: &breakdown,
		Explanations:     explanations,
	}
}

// adjunctDayExcessTotal sums, across every adjunct instructor with a
// teaching-day cap, the weighted excess of distinct days their chosen
// assignments occupy beyond that cap.
func adjunctDayExcessTotal(input domain.SchedulingInput, idx indices, chosen map[string]domain.Option) int {
	daysByInstructor := make(map[string]map[string]bool)
	for _, section := range input.Sections {
		opt, ok := chosen[section.ID]
		if !ok || section.InstructorID == "" {
			continue
		}
		set := daysByInstructor[section.InstructorID]
		if set == nil {
			set = make(map[string]bool)
			daysByInstructor[section.InstructorID] = set
		}
		for _, d := range daysOf(opt.TimeslotSet, idx) {
			set[d] = true
		}
	}

	total := 0
	for _, instr := range input.Instructors {
		if !instr.IsAdjunct() {
			continue
		}
		days := len(daysByInstructor[instr.ID])
		excess := days - *instr.Preferences.MaxTeachingDays
		if excess > 0 {
			total += excess * WAdjunct
		}
	}
	return total
}
