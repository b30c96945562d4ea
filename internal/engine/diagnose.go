package engine

import (
	"context"

	"coursesched/internal/domain"
	"coursesched/internal/solver"
)

type relaxCandidate struct {
	key   string
	label string
	flags RelaxFlags
	model ConstraintRelax
}

// relaxCandidates enumerates the nine single-category relaxations, in the
// fixed order the diagnoser must try them in, each with the human-readable
// label reported when that relaxation restores feasibility.
var relaxCandidates = []relaxCandidate{
	{key: "blocked_times", label: "Blocked time constraints", flags: RelaxFlags{IgnoreBlockedTimes: true}},
	{key: "locks", label: "Locked assignments", flags: RelaxFlags{IgnoreLocks: true}},
	{key: "room_capacity", label: "Room capacity", flags: RelaxFlags{IgnoreRoomCapacity: true}},
	{key: "room_features", label: "Room feature requirements", flags: RelaxFlags{IgnoreRoomFeatures: true}},
	{key: "crosslist_capacity", label: "Cross-list capacity", flags: RelaxFlags{IgnoreCrosslistCapacity: true}},
	{key: "room_conflicts", label: "Room overlap constraints", model: ConstraintRelax{SkipRoomConflicts: true}},
	{key: "instructor_conflicts", label: "Instructor overlap constraints", model: ConstraintRelax{SkipInstructorConflicts: true}},
	{key: "no_overlap_groups", label: "No-overlap groups", model: ConstraintRelax{SkipNoOverlapGroups: true}},
	{key: "crosslist_time_room", label: "Cross-list time/room equality", model: ConstraintRelax{SkipCrosslistTimeRoom: true}},
}

// Diagnose runs after a failed optimizing solve. It tries each relaxation
// category in turn, then tries removing each section in turn, reporting
// every single-step change that would restore feasibility.
func Diagnose(ctx context.Context, input domain.SchedulingInput, idx indices, cfg Config) domain.Diagnostics {
	var diag domain.Diagnostics

	for _, rc := range relaxCandidates {
		skipCrosslistCapacityCheck := rc.key == "crosslist_capacity"
		if CheckFeasible(ctx, input, idx, rc.flags, rc.model, skipCrosslistCapacityCheck, cfg) {
			diag.FeasibleIfRelax = append(diag.FeasibleIfRelax, rc.label)
		}
	}

	for _, section := range input.Sections {
		stripped, strippedIdx := StripSection(input, section.ID)
		if CheckFeasible(ctx, stripped, strippedIdx, RelaxFlags{}, ConstraintRelax{}, false, cfg) {
			diag.FeasibleIfRemoveSection = append(diag.FeasibleIfRemoveSection, section.ID)
		}
	}

	return diag
}

// CheckFeasible builds the hard-constraint-only model (no objective) under
// the given relaxations and reports whether a feasibility-only solve
// within cfg.FeasibilityTimeout succeeds.
func CheckFeasible(ctx context.Context, input domain.SchedulingInput, idx indices, flags RelaxFlags, relax ConstraintRelax, skipCrosslistValidation bool, cfg Config) bool {
	if !skipCrosslistValidation {
		if errs := ValidateCrosslistCapacity(input, idx); len(errs) > 0 {
			return false
		}
	}

	optionsBySection, optErrs := BuildOptions(input, idx, flags)
	if len(optErrs) > 0 {
		return false
	}

	build := buildModel(input, idx, optionsBySection, relax)
	status := build.model.Solve(ctx, cfg.FeasibilityTimeout)
	return status == solver.StatusOptimal || status == solver.StatusFeasible
}

// StripSection returns a copy of input with the named section removed:
// cross-list and no-overlap groups lose that member (and are dropped
// entirely if fewer than two members remain), and locks/soft locks for it
// are removed.
func StripSection(input domain.SchedulingInput, sectionID string) (domain.SchedulingInput, indices) {
	out := input

	out.Sections = make([]domain.Section, 0, len(input.Sections)-1)
	for _, s := range input.Sections {
		if s.ID != sectionID {
			out.Sections = append(out.Sections, s)
		}
	}

	out.CrosslistGroups = stripFromGroups(input.CrosslistGroups, sectionID, func(g domain.CrossListGroup, members []string) domain.CrossListGroup {
		g.MemberSectionIDs = members
		return g
	})
	out.NoOverlapGroups = stripFromNoOverlap(input.NoOverlapGroups, sectionID)

	out.Locks = make([]domain.LockedAssignment, 0, len(input.Locks))
	for _, l := range input.Locks {
		if l.SectionID != sectionID {
			out.Locks = append(out.Locks, l)
		}
	}
	out.SoftLocks = make([]domain.SoftLock, 0, len(input.SoftLocks))
	for _, sl := range input.SoftLocks {
		if sl.SectionID != sectionID {
			out.SoftLocks = append(out.SoftLocks, sl)
		}
	}

	return out, buildIndices(out)
}

func stripFromGroups(groups []domain.CrossListGroup, sectionID string, rebuild func(domain.CrossListGroup, []string) domain.CrossListGroup) []domain.CrossListGroup {
	out := make([]domain.CrossListGroup, 0, len(groups))
	for _, g := range groups {
		members := make([]string, 0, len(g.MemberSectionIDs))
		for _, m := range g.MemberSectionIDs {
			if m != sectionID {
				members = append(members, m)
			}
		}
		if len(members) < 2 {
			continue
		}
		out = append(out, rebuild(g, members))
	}
	return out
}

func stripFromNoOverlap(groups []domain.NoOverlapGroup, sectionID string) []domain.NoOverlapGroup {
	out := make([]domain.NoOverlapGroup, 0, len(groups))
	for _, g := range groups {
		members := make([]string, 0, len(g.MemberSectionIDs))
		for _, m := range g.MemberSectionIDs {
			if m != sectionID {
				members = append(members, m)
			}
		}
		if len(members) < 2 {
			continue
		}
		g.MemberSectionIDs = members
		out = append(out, g)
	}
	return out
}
