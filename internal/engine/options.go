package engine

import (
	"fmt"

	"coursesched/internal/domain"
)

// RelaxFlags names the five option-generation filters that may be relaxed
// one at a time while diagnosing infeasibility.
type RelaxFlags struct {
	IgnoreBlockedTimes      bool
	IgnoreLocks             bool
	IgnoreRoomCapacity      bool
	IgnoreRoomFeatures      bool
	IgnoreCrosslistCapacity bool
}

// BuildOptions materializes, per section and in input order, every
// (meeting pattern, timeslot set, room) combination that satisfies the hard
// per-section filters, honoring whichever RelaxFlags are set. A section
// that admits no option still appears in the returned map, with a nil
// slice, and contributes a no_feasible_options error.
func BuildOptions(input domain.SchedulingInput, idx indices, flags RelaxFlags) (map[string][]domain.Option, []domain.ValidationError) {
	result := make(map[string][]domain.Option, len(input.Sections))
	var errs []domain.ValidationError

	for _, section := range input.Sections {
		lock, hasLock := idx.lockBySection[section.ID]

		eligibleRooms := make([]domain.Room, 0, len(input.Rooms))
		for _, room := range input.Rooms {
			if !flags.IgnoreRoomCapacity && room.Capacity < section.ExpectedEnrollment {
				continue
			}
			if !flags.IgnoreRoomFeatures && !room.HasFeatures(section.RoomRequirements) {
				continue
			}
			if section.CrosslistGroupID != "" && !flags.IgnoreCrosslistCapacity && !flags.IgnoreRoomCapacity {
				if room.Capacity < idx.crosslistCapacity[section.CrosslistGroupID] {
					continue
				}
			}
			eligibleRooms = append(eligibleRooms, room)
		}

		var options []domain.Option
		for _, patternID := range section.AllowedMeetingPatterns {
			pattern, ok := idx.patternByID[patternID]
			if !ok {
				continue
			}
			for _, tsSet := range pattern.CompatibleTimeslotSets {
				if !flags.IgnoreBlockedTimes && anyBlocked(tsSet, idx) {
					continue
				}
				if !flags.IgnoreLocks && hasLock && len(lock.FixedTimeslotSet) > 0 && !setEqual(lock.FixedTimeslotSet, tsSet) {
					continue
				}
				for _, room := range eligibleRooms {
					if !flags.IgnoreLocks && hasLock && lock.FixedRoom != "" && lock.FixedRoom != room.ID {
						continue
					}
					setCopy := append([]string(nil), tsSet...)
					options = append(options, domain.Option{
						SectionID:   section.ID,
						PatternID:   pattern.ID,
						TimeslotSet: setCopy,
						RoomID:      room.ID,
						RoomWaste:   room.Capacity - section.ExpectedEnrollment,
					})
				}
			}
		}

		result[section.ID] = options
		if len(options) == 0 {
			errs = append(errs, domain.ValidationError{
				Code:    "no_feasible_options",
				Message: fmt.Sprintf("Section %s has no feasible assignment options.", section.ID),
			})
		}
	}

	return result, errs
}

func anyBlocked(timeslotIDs []string, idx indices) bool {
	for _, tid := range timeslotIDs {
		if idx.globalBlocked[tid] {
			return true
		}
	}
	return false
}
