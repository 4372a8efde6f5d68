package build

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// Stage is a discrete unit of work in a build cycle.
type Stage func(ctx context.Context, st *cycleState) error

// StageErrorKind enumerates structured stage error categories.
type StageErrorKind string

const (
	StageErrorFatal    StageErrorKind = "fatal"    // Cycle must abort.
	StageErrorWarning  StageErrorKind = "warning"  // Non-fatal; record and continue.
	StageErrorCanceled StageErrorKind = "canceled" // Context cancellation.
)

// StageError carries the category and underlying cause of a stage failure.
type StageError struct {
	Kind  StageErrorKind
	Stage string
	Err   error
}

func (e *StageError) Error() string { return fmt.Sprintf("%s stage %s: %v", e.Kind, e.Stage, e.Err) }
func (e *StageError) Unwrap() error { return e.Err }

func newFatalStageError(stage string, err error) *StageError {
	return &StageError{Kind: StageErrorFatal, Stage: stage, Err: err}
}
func newWarnStageError(stage string, err error) *StageError {
	return &StageError{Kind: StageErrorWarning, Stage: stage, Err: err}
}
func newCanceledStageError(stage string, err error) *StageError {
	return &StageError{Kind: StageErrorCanceled, Stage: stage, Err: err}
}

type namedStage struct {
	name string
	fn   Stage
}

// runStages executes stages strictly in order, recording timings and
// stopping on the first fatal or canceled error. Warnings are logged and the
// cycle proceeds.
func (p *Pipeline) runStages(ctx context.Context, st *cycleState, stages []namedStage) error {
	for _, stage := range stages {
		select {
		case <-ctx.Done():
			return newCanceledStageError(stage.name, ctx.Err())
		default:
		}

		t0 := time.Now()
		err := stage.fn(ctx, st)
		dur := time.Since(t0)
		st.timings[stage.name] = dur
		if p.recorder != nil {
			p.recorder.ObserveStage(stage.name, dur)
		}

		if err == nil {
			slog.Debug("Stage completed", "stage", stage.name, "duration", dur)
			continue
		}

		var se *StageError
		if !errors.As(err, &se) {
			// Unknown errors are fatal by default.
			se = newFatalStageError(stage.name, err)
		}
		switch se.Kind {
		case StageErrorWarning:
			slog.Warn("Stage degraded, continuing", "stage", stage.name, "error", se.Err)
			st.warnings = append(st.warnings, se)
			continue
		default:
			slog.Error("Stage failed, aborting cycle", "stage", stage.name, "error", se.Err)
			return se
		}
	}
	return nil
}
