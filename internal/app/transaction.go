package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// Bulk operations (import, remote import, merge) run as a staged
// transaction: decode → compute → confirm → commit. Nothing is written
// until the full result is computed and the user has agreed to it.

// Stage names a step of a transaction.
type Stage string

const (
	StageDecode  Stage = "decode"
	StageCompute Stage = "compute"
	StageConfirm Stage = "confirm"
	StageCommit  Stage = "commit"
)

// ErrDeclined is returned when the user answers no to a confirmation.
var ErrDeclined = errors.New("operation declined")

// StageError wraps a failure with the transaction and stage it came from.
type StageError struct {
	Op    string
	Stage Stage
	Cause error
}

// Error implements the error interface.
func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %s: %v", e.Op, e.Stage, e.Cause)
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *StageError) Unwrap() error {
	return e.Cause
}

// FailedStage extracts the stage from a transaction error.
func FailedStage(err error) (Stage, bool) {
	var stageErr *StageError
	if errors.As(err, &stageErr) {
		return stageErr.Stage, true
	}

	return "", false
}

// Transaction describes a bulk operation. D is the decoded input, P the
// computed plan and R the committed result. Compute and Confirm are
// optional; without Compute the decoded input is the plan, which requires
// D and P to be the same type.
type Transaction[D, P, R any] struct {
	Name string

	Decode  func(ctx context.Context) (D, error)
	Compute func(ctx context.Context, decoded D) (P, error)

	// Confirm returns the question to ask about the plan. An empty
	// message skips the confirmation stage.
	Confirm func(plan P) string

	Commit func(ctx context.Context, plan P) (R, error)
}

// RunTransaction executes tx. ask answers the confirmation question; a nil
// ask accepts every plan.
func RunTransaction[D, P, R any](
	ctx context.Context,
	logger *slog.Logger,
	tx Transaction[D, P, R],
	ask func(ctx context.Context, message string) (bool, error),
) (R, error) {
	var zero R

	if logger == nil {
		logger = slog.Default()
	}

	logger = logger.With(slog.String("operation", tx.Name))
	start := time.Now()

	fail := func(stage Stage, err error) (R, error) {
		logger.WarnContext(ctx, "transaction aborted",
			slog.String("stage", string(stage)),
			slog.Any("error", err),
		)

		return zero, &StageError{Op: tx.Name, Stage: stage, Cause: err}
	}

	decoded, err := tx.Decode(ctx)
	if err != nil {
		return fail(StageDecode, err)
	}

	var plan P
	if tx.Compute != nil {
		plan, err = tx.Compute(ctx, decoded)
		if err != nil {
			return fail(StageCompute, err)
		}
	} else {
		p, ok := any(decoded).(P)
		if !ok {
			return fail(StageCompute, fmt.Errorf("decoded %T is not a plan", decoded))
		}

		plan = p
	}

	if tx.Confirm != nil && ask != nil {
		if msg := tx.Confirm(plan); msg != "" {
			ok, err := ask(ctx, msg)
			if err != nil {
				return fail(StageConfirm, err)
			}

			if !ok {
				return fail(StageConfirm, ErrDeclined)
			}
		}
	}

	result, err := tx.Commit(ctx, plan)
	if err != nil {
		return fail(StageCommit, err)
	}

	logger.InfoContext(ctx, "transaction completed", slog.Duration("duration", time.Since(start)))

	return result, nil
}
