package engine

import (
	"context"
	"time"

	"coursesched/internal/domain"
	"coursesched/internal/solver"
)

// Config bounds the wall-clock time given to the optimization solve and to
// each feasibility check performed during diagnosis. Production callers
// should use DefaultConfig(); the fields exist mainly so tests can shrink
// the budgets.
type Config struct {
	OptimizeTimeout    time.Duration
	FeasibilityTimeout time.Duration
}

// DefaultConfig returns the timeouts this system specifies: five seconds
// for a full optimizing solve, two seconds for each single-category
// feasibility check made while diagnosing an infeasible input.
func DefaultConfig() Config {
	return Config{
		OptimizeTimeout:    5 * time.Second,
		FeasibilityTimeout: 2 * time.Second,
	}
}

// Recorder receives solve telemetry. A nil Recorder disables recording so
// the engine stays callable without any observability dependency wired in.
type Recorder interface {
	RecordSolve(outcome string, duration time.Duration, optionCount int)
	RecordDiagnosis()
}

// Solve runs the full pipeline against one input: shape and cross-list
// validation, option generation, constraint/objective model construction,
// solving, and — on failure — infeasibility diagnosis. It never mutates
// its input and never blocks past ctx's cancellation or its own timeouts.
func Solve(ctx context.Context, input domain.SchedulingInput, cfg Config, rec Recorder) domain.ScheduleResult {
	start := time.Now()
	idx := buildIndices(input)

	var errs []domain.ValidationError
	errs = append(errs, ValidateShape(input)...)
	errs = append(errs, ValidateCrosslistCapacity(input, idx)...)

	optionsBySection, optErrs := BuildOptions(input, idx, RelaxFlags{})
	errs = append(errs, optErrs...)

	optionCount := 0
	for _, opts := range optionsBySection {
		optionCount += len(opts)
	}

	if len(errs) > 0 {
		recordSolve(rec, "validation_error", start, optionCount)
		return domain.ScheduleResult{Status: "error", Errors: errs}
	}

	build := buildModel(input, idx, optionsBySection, ConstraintRelax{})
	addObjective(build.model, input, idx, build)

	status := build.model.Solve(ctx, cfg.OptimizeTimeout)
	if status != solver.StatusOptimal && status != solver.StatusFeasible {
		recordSolve(rec, "infeasible", start, optionCount)
		diag := Diagnose(ctx, input, idx, cfg)
		recordDiagnosis(rec)
		return domain.ScheduleResult{
			Status: "error",
			Errors: []domain.ValidationError{
				{Code: "infeasible", Message: "No feasible schedule found."},
			},
			Diagnostics: &diag,
		}
	}

	result := assemble(input, idx, build)
	recordSolve(rec, "ok", start, optionCount)
	return result
}

func recordSolve(rec Recorder, outcome string, start time.Time, optionCount int) {
	if rec == nil {
		return
	}
	rec.RecordSolve(outcome, time.Since(start), optionCount)
}

func recordDiagnosis(rec Recorder) {
	if rec == nil {
		return
	}
	rec.RecordDiagnosis()
}
