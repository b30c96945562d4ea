// Package export renders a solved schedule as a tabular report, in either
// CSV or PDF form, for operators who want a printable artifact alongside
// the JSON response.
package export

import (
	"strconv"
	"strings"

	"coursesched/internal/domain"
)

// Dataset is a generic header/rows table both renderers consume.
type Dataset struct {
	Headers []string
	Rows    []map[string]string
}

// FromResult builds a Dataset from a solved schedule: one row per
// assignment, plus a trailing TOTAL row carrying the total score when a
// penalty breakdown is present. The individual penalty terms are not
// included in the rows.
func FromResult(result domain.ScheduleResult) Dataset {
	headers := []string{"section_id", "meeting_pattern_id", "timeslot_ids", "room_id"}
	rows := make([]map[string]string, 0, len(result.Assignments)+1)

	for _, a := range result.Assignments {
		rows = append(rows, map[string]string{
			"section_id":         a.SectionID,
			"meeting_pattern_id": a.MeetingPatternID,
			"timeslot_ids":       joinCSV(a.TimeslotIDs),
			"room_id":            a.RoomID,
		})
	}

	if result.PenaltyBreakdown != nil {
		rows = append(rows, map[string]string{
			"section_id":         "TOTAL",
			"meeting_pattern_id": "",
			"timeslot_ids":       "",
			"room_id":            "score=" + strconv.Itoa(result.TotalScore),
		})
	}

	return Dataset{Headers: headers, Rows: rows}
}

func joinCSV(ids []string) string {
	return strings.Join(ids, ", ")
}
