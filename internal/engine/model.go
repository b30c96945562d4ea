package engine

import (
	"sort"

	"coursesched/internal/domain"
	"coursesched/internal/solver"
)

// optionVar pairs a generated option with the boolean decision variable the
// model created for it.
type optionVar struct {
	option domain.Option
	v      solver.BoolVar
}

// ConstraintRelax names the four constraint families that may be dropped
// one at a time while diagnosing infeasibility. It is distinct from
// RelaxFlags, which governs option generation instead.
type ConstraintRelax struct {
	SkipRoomConflicts      bool
	SkipInstructorConflicts bool
	SkipNoOverlapGroups    bool
	SkipCrosslistTimeRoom  bool
}

// modelBuild is everything buildModel produced: the solver model plus the
// bookkeeping assemble.go and objective.go need to read results back out.
type modelBuild struct {
	model       *solver.BacktrackModel
	bySection   map[string][]optionVar
	excessVar   map[string]solver.IntVar // instructor id -> excess var
}

// buildModel creates one boolean variable per generated option and adds the
// hard constraint families named by spec: exactly-one-per-section, room
// non-overlap (via the cross-list roomshare key), instructor non-overlap,
// no-overlap groups, and cross-list time/room equality. Families named in
// relax are skipped entirely, for use by the infeasibility diagnoser.
func buildModel(input domain.SchedulingInput, idx indices, optionsBySection map[string][]domain.Option, relax ConstraintRelax) *modelBuild {
	m := solver.NewBacktrackModel()
	build := &modelBuild{
		model:     m,
		bySection: make(map[string][]optionVar, len(optionsBySection)),
		excessVar: make(map[string]solver.IntVar),
	}

	for _, section := range input.Sections {
		opts := optionsBySection[section.ID]
		vars := make([]optionVar, 0, len(opts))
		terms := make([]solver.Term, 0, len(opts))
		for _, opt := range opts {
			v := m.NewBoolVar(section.ID + "#" + opt.PatternID + "@" + opt.RoomID)
			vars = append(vars, optionVar{option: opt, v: v})
			terms = append(terms, solver.Term{Var: v, Coef: 1})
		}
		build.bySection[section.ID] = vars
		m.AddLinearEQ(terms, 1)
	}

	if !relax.SkipRoomConflicts {
		addRoomNonOverlap(m, input, idx, build)
	}
	if !relax.SkipInstructorConflicts {
		addInstructorNonOverlap(m, input, build)
	}
	if !relax.SkipNoOverlapGroups {
		addNoOverlapGroups(m, input, build)
	}
	if !relax.SkipCrosslistTimeRoom {
		addCrosslistTimeRoom(m, input, build)
	}

	return build
}

// addRoomNonOverlap forbids two options that are not in the same roomshare
// group from occupying the same room at the same timeslot. Cross-list
// members sharing a room deliberately collide, so they are bucketed under
// one indicator instead of being compared pairwise.
func addRoomNonOverlap(m *solver.BacktrackModel, input domain.SchedulingInput, idx indices, build *modelBuild) {
	type bucketKey struct {
		room, timeslot, shareKey string
	}
	buckets := make(map[bucketKey][]solver.Term)

	for _, section := range input.Sections {
		key := roomshareKey(section, idx)
		for _, ov := range build.bySection[section.ID] {
			for _, tid := range ov.option.TimeslotSet {
				bk := bucketKey{room: ov.option.RoomID, timeslot: tid, shareKey: key}
				buckets[bk] = append(buckets[bk], solver.Term{Var: ov.v, Coef: 1})
			}
		}
	}

	// Variable-creation order feeds directly into the backtracking search's
	// branch order (internal/solver/backtrack.go's boolOrder), so buckets
	// must be visited in a fixed order rather than Go's randomized map
	// iteration order, to keep results deterministic across identical runs.
	keys := make([]bucketKey, 0, len(buckets))
	for bk := range buckets {
		keys = append(keys, bk)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].room != keys[j].room {
			return keys[i].room < keys[j].room
		}
		if keys[i].timeslot != keys[j].timeslot {
			return keys[i].timeslot < keys[j].timeslot
		}
		return keys[i].shareKey < keys[j].shareKey
	})

	byRoomTimeOrder := make([]string, 0, len(keys))
	byRoomTime := make(map[string][]solver.Term)
	for _, bk := range keys {
		terms := buckets[bk]
		u := m.NewBoolVar("u:" + bk.room + ":" + bk.timeslot + ":" + bk.shareKey)
		for _, t := range terms {
			m.AddLinearLE([]solver.Term{{Var: t.Var, Coef: 1}, {Var: u, Coef: -1}}, 0)
		}
		rtKey := bk.room + ":" + bk.timeslot
		if _, seen := byRoomTime[rtKey]; !seen {
			byRoomTimeOrder = append(byRoomTimeOrder, rtKey)
		}
		byRoomTime[rtKey] = append(byRoomTime[rtKey], solver.Term{Var: u, Coef: 1})
	}

	for _, rtKey := range byRoomTimeOrder {
		terms := byRoomTime[rtKey]
		if len(terms) > 1 {
			m.AddLinearLE(terms, 1)
		}
	}
}

func addInstructorNonOverlap(m *solver.BacktrackModel, input domain.SchedulingInput, build *modelBuild) {
	type key struct{ instructor, timeslot string }
	buckets := make(map[key][]solver.Term)

	for _, section := range input.Sections {
		if section.InstructorID == "" {
			continue
		}
		for _, ov := range build.bySection[section.ID] {
			for _, tid := range ov.option.TimeslotSet {
				k := key{instructor: section.InstructorID, timeslot: tid}
				buckets[k] = append(buckets[k], solver.Term{Var: ov.v, Coef: 1})
			}
		}
	}
	for _, terms := range buckets {
		if len(terms) > 1 {
			m.AddLinearLE(terms, 1)
		}
	}
}

func addNoOverlapGroups(m *solver.BacktrackModel, input domain.SchedulingInput, build *modelBuild) {
	for _, group := range input.NoOverlapGroups {
		buckets := make(map[string][]solver.Term)
		for _, sid := range group.MemberSectionIDs {
			for _, ov := range build.bySection[sid] {
				for _, tid := range ov.option.TimeslotSet {
					buckets[tid] = append(buckets[tid], solver.Term{Var: ov.v, Coef: 1})
				}
			}
		}
		for _, terms := range buckets {
			if len(terms) > 1 {
				m.AddLinearLE(terms, 1)
			}
		}
	}
}

func addCrosslistTimeRoom(m *solver.BacktrackModel, input domain.SchedulingInput, build *modelBuild) {
	for _, group := range input.CrosslistGroups {
		members := group.MemberSectionIDs
		for i := 0; i < len(members); i++ {
			for j := i + 1; j < len(members); j++ {
				optsA := build.bySection[members[i]]
				optsB := build.bySection[members[j]]
				for _, a := range optsA {
					for _, b := range optsB {
						conflict := !tupleEqual(a.option.TimeslotSet, b.option.TimeslotSet)
						if !conflict && group.RequireSameRoom && a.option.RoomID != b.option.RoomID {
							conflict = true
						}
						if conflict {
							m.AddLinearLE([]solver.Term{{Var: a.v, Coef: 1}, {Var: b.v, Coef: 1}}, 1)
						}
					}
				}
			}
		}
	}
}
