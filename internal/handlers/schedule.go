package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"coursesched/internal/domain"
	"coursesched/internal/engine"
	"coursesched/pkg/errors"
	"coursesched/pkg/export"
	"coursesched/pkg/solvecache"
)

// solveRequest is the POST /solve request envelope.
type solveRequest struct {
	Input domain.SchedulingInput `json:"input"`
}

// ScheduleHandler serves the scheduling engine over HTTP: POST /solve runs
// one solve attempt, GET /solve/report renders the most recent result for
// a given proposal id.
type ScheduleHandler struct {
	log     *zap.Logger
	cfg     engine.Config
	metrics engine.Recorder
	gate    *solvecache.ConcurrencyGate
	reports *solvecache.ReportCache
}

// NewScheduleHandler builds a ScheduleHandler. metrics and gate may be nil.
func NewScheduleHandler(log *zap.Logger, cfg engine.Config, metrics engine.Recorder, gate *solvecache.ConcurrencyGate, reports *solvecache.ReportCache) *ScheduleHandler {
	return &ScheduleHandler{log: log, cfg: cfg, metrics: metrics, gate: gate, reports: reports}
}

// Solve handles POST /solve.
func (h *ScheduleHandler) Solve(w http.ResponseWriter, r *http.Request) error {
	var req solveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return errors.NewCodedValidationError(errors.CodeInvalidInput, "request body is not valid JSON")
	}

	acquired, release := h.gate.Acquire(r.Context())
	defer release()
	if !acquired {
		return errors.NewConflictError("too many concurrent solve requests, try again shortly")
	}

	result := engine.Solve(r.Context(), req.Input, h.cfg, h.metrics)

	if h.reports != nil && result.Status == "ok" {
		proposalID := uuid.New().String()
		h.reports.Put(proposalID, result)
		w.Header().Set("X-Proposal-Id", proposalID)
	}

	w.Header().Set("Content-Type", "application/json")
	if result.Status != "ok" {
		w.WriteHeader(http.StatusUnprocessableEntity)
	}
	return json.NewEncoder(w).Encode(result)
}

// Report handles GET /solve/report?proposalId=...&format=csv|pdf.
func (h *ScheduleHandler) Report(w http.ResponseWriter, r *http.Request) error {
	proposalID := r.URL.Query().Get("proposalId")
	if proposalID == "" {
		return errors.NewValidationError("proposalId is required", "")
	}

	result, ok := h.reports.Get(proposalID)
	if !ok {
		return errors.NewNotFoundError(fmt.Sprintf("no cached result for proposal %s", proposalID))
	}

	dataset := export.FromResult(result)
	format := r.URL.Query().Get("format")

	switch format {
	case "pdf":
		bytes, err := (export.PDFExporter{}).Render(dataset, "Schedule Report")
		if err != nil {
			return errors.NewInternalError("failed to render PDF report", err)
		}
		w.Header().Set("Content-Type", "application/pdf")
		_, err = w.Write(bytes)
		return err
	default:
		bytes, err := (export.CSVExporter{}).Render(dataset)
		if err != nil {
			return errors.NewInternalError("failed to render CSV report", err)
		}
		w.Header().Set("Content-Type", "text/csv")
		_, err = w.Write(bytes)
		return err
	}
}

// Health handles GET /.
func (h *ScheduleHandler) Health(w http.ResponseWriter, r *http.Request) error {
	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(map[string]string{
		"service": "scheduler",
		"status":  "ok",
	})
}
