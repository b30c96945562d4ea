// Package engine implements the scheduling pipeline as a pure function from
// a domain.SchedulingInput to a domain.ScheduleResult: pre-validation,
// option generation, constraint model construction, objective construction,
// solving, infeasibility diagnosis, and result assembly.
package engine

import "coursesched/internal/domain"

// indices bundles the lookup tables every stage of the pipeline needs,
// built once per solve attempt from the raw input slices.
type indices struct {
	sectionByID   map[string]domain.Section
	instructorByID map[string]domain.Instructor
	roomByID      map[string]domain.Room
	timeslotByID  map[string]domain.Timeslot
	patternByID   map[string]domain.MeetingPattern
	groupByID     map[string]domain.CrossListGroup
	lockBySection map[string]domain.LockedAssignment
	softLocksBySection map[string][]domain.SoftLock
	globalBlocked map[string]bool
	crosslistCapacity map[string]int
}

func buildIndices(input domain.SchedulingInput) indices {
	idx := indices{
		sectionByID:        make(map[string]domain.Section, len(input.Sections)),
		instructorByID:     make(map[string]domain.Instructor, len(input.Instructors)),
		roomByID:           make(map[string]domain.Room, len(input.Rooms)),
		timeslotByID:       make(map[string]domain.Timeslot, len(input.Timeslots)),
		patternByID:        make(map[string]domain.MeetingPattern, len(input.MeetingPatterns)),
		groupByID:          make(map[string]domain.CrossListGroup, len(input.CrosslistGroups)),
		lockBySection:      make(map[string]domain.LockedAssignment, len(input.Locks)),
		softLocksBySection: make(map[string][]domain.SoftLock, len(input.SoftLocks)),
		globalBlocked:      make(map[string]bool),
		crosslistCapacity:  make(map[string]int, len(input.CrosslistGroups)),
	}

	for _, s := range input.Sections {
		idx.sectionByID[s.ID] = s
	}
	for _, i := range input.Instructors {
		idx.instructorByID[i.ID] = i
	}
	for _, r := range input.Rooms {
		idx.roomByID[r.ID] = r
	}
	for _, t := range input.Timeslots {
		idx.timeslotByID[t.ID] = t
	}
	for _, p := range input.MeetingPatterns {
		idx.patternByID[p.ID] = p
	}
	for _, g := range input.CrosslistGroups {
		idx.groupByID[g.ID] = g
	}
	for _, l := range input.Locks {
		idx.lockBySection[l.SectionID] = l
	}
	for _, sl := range input.SoftLocks {
		idx.softLocksBySection[sl.SectionID] = append(idx.softLocksBySection[sl.SectionID], sl)
	}
	for _, bt := range input.BlockedTimes {
		if bt.Scope != "global" {
			continue
		}
		for _, tid := range bt.TimeslotIDs {
			idx.globalBlocked[tid] = true
		}
	}
	// Computed once from the full section list, keyed by each section's own
	// CrosslistGroupID, rather than by walking CrossListGroup.MemberSectionIDs
	// — the two can diverge, and this is the field the rest of the pipeline
	// (option generation, validation) treats as authoritative.
	for _, s := range input.Sections {
		if s.CrosslistGroupID == "" {
			continue
		}
		idx.crosslistCapacity[s.CrosslistGroupID] += s.ExpectedEnrollment
	}

	return idx
}

// roomshareKey identifies the group of sections that may legitimately share
// a room at the same time: members of a require-same-room cross-list group
// share one key, every other section gets a key unique to itself.
func roomshareKey(section domain.Section, idx indices) string {
	if section.CrosslistGroupID != "" {
		if g, ok := idx.groupByID[section.CrosslistGroupID]; ok && g.RequireSameRoom {
			return "group:" + g.ID
		}
	}
	return "section:" + section.ID
}

// setEqual reports whether a and b contain the same elements, ignoring order
// and duplicates.
func setEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	seen := make(map[string]int, len(a))
	for _, v := range a {
		seen[v]++
	}
	for _, v := range b {
		if seen[v] == 0 {
			return false
		}
		seen[v]--
	}
	return true
}

// tupleEqual reports whether a and b hold the same elements in the same
// order — the ordered comparison the cross-list time/room equality
// constraint needs, as opposed to setEqual's order-insensitive comparison.
func tupleEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func contains(list []string, want string) bool {
	for _, v := range list {
		if v == want {
			return true
		}
	}
	return false
}

func daysOf(timeslotIDs []string, idx indices) []string {
	seen := make(map[string]bool)
	var days []string
	for _, tid := range timeslotIDs {
		t, ok := idx.timeslotByID[tid]
		if !ok || seen[t.Day] {
			continue
		}
		seen[t.Day] = true
		days = append(days, t.Day)
	}
	return days
}
