package router

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"coursesched/internal/domain"
	"coursesched/internal/engine"
	"coursesched/pkg/solvecache"
)

func newTestRouter(t *testing.T) *Router {
	t.Helper()
	r := New()
	r.Setup(Deps{
		Log:     zap.NewNop(),
		Config:  engine.DefaultConfig(),
		Reports: solvecache.NewReportCache(8),
		Gate:    solvecache.NewConcurrencyGate(nil, 0),
	})
	return r
}

func TestRouter_Health(t *testing.T) {
	r := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRouter_SolveTrivialSection(t *testing.T) {
	r := newTestRouter(t)

	input := domain.SchedulingInput{
		Sections: []domain.Section{
			{ID: "sec1", ExpectedEnrollment: 10, AllowedMeetingPatterns: []string{"p1"}},
		},
		Rooms:     []domain.Room{{ID: "r1", Capacity: 30}},
		Timeslots: []domain.Timeslot{{ID: "t1", Day: "Mon"}},
		MeetingPatterns: []domain.MeetingPattern{
			{ID: "p1", CompatibleTimeslotSets: [][]string{{"t1"}}},
		},
	}
	body, err := json.Marshal(map[string]any{"input": input})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/solve", bytes.NewReader(body))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)

	var result domain.ScheduleResult
	require.NoError(t, json.NewDecoder(w.Body).Decode(&result))
	assert.Equal(t, "ok", result.Status)
	require.Len(t, result.Assignments, 1)
	assert.Equal(t, "sec1", result.Assignments[0].SectionID)
}

func TestRouter_SolveInvalidBody(t *testing.T) {
	r := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/solve", bytes.NewReader([]byte("not json")))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRouter_ReportMissingProposal(t *testing.T) {
	r := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/solve/report?proposalId=missing", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRouter_SolveThenFetchReport(t *testing.T) {
	r := newTestRouter(t)

	input := domain.SchedulingInput{
		Sections: []domain.Section{
			{ID: "sec1", ExpectedEnrollment: 10, AllowedMeetingPatterns: []string{"p1"}},
		},
		Rooms:     []domain.Room{{ID: "r1", Capacity: 30}},
		Timeslots: []domain.Timeslot{{ID: "t1", Day: "Mon"}},
		MeetingPatterns: []domain.MeetingPattern{
			{ID: "p1", CompatibleTimeslotSets: [][]string{{"t1"}}},
		},
	}
	body, err := json.Marshal(map[string]any{"input": input})
	require.NoError(t, err)

	solveReq := httptest.NewRequest(http.MethodPost, "/solve", bytes.NewReader(body))
	solveW := httptest.NewRecorder()
	r.ServeHTTP(solveW, solveReq)
	require.Equal(t, http.StatusOK, solveW.Code)

	proposalID := solveW.Header().Get("X-Proposal-Id")
	require.NotEmpty(t, proposalID)

	reportReq := httptest.NewRequest(http.MethodGet, "/solve/report?proposalId="+proposalID, nil)
	reportW := httptest.NewRecorder()
	r.ServeHTTP(reportW, reportReq)

	assert.Equal(t, http.StatusOK, reportW.Code)
	assert.Equal(t, "text/csv", reportW.Header().Get("Content-Type"))
	assert.Contains(t, reportW.Body.String(), "sec1")
}
