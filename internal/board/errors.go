package board

import (
	"errors"

	"github.com/dfalmeida/pipeboard/internal/entity"
)

var (
	// ErrConflict marks a persistence failure caused by a stale session
	// or concurrent write. Gateway implementations wrap with it.
	ErrConflict = errors.New("stage update conflicted")

	// ErrMoveInFlight rejects a second move of a lead whose first move
	// has not settled yet.
	ErrMoveInFlight = errors.New("a move for this lead is already in flight")

	// ErrStaleLoad signals that a finished load was discarded because the
	// pipeline selection changed (or the store was invalidated) mid-flight.
	ErrStaleLoad = errors.New("board load superseded, result discarded")
)

type FailureClass string

const (
	FailureTransient  FailureClass = "transient"
	FailureConflict   FailureClass = "conflict"
	FailureValidation FailureClass = "validation"
)

// MoveFailure is the user-facing outcome of a rolled-back move.
type MoveFailure struct {
	Class          FailureClass `json:"class"`
	Message        string       `json:"message"`
	SessionExpired bool         `json:"session_expired,omitempty"`
	Err            error        `json:"-"`
}

func (f *MoveFailure) Error() string {
	return f.Message
}

func ClassifyMoveError(err error) FailureClass {
	switch {
	case errors.Is(err, ErrConflict):
		return FailureConflict
	case errors.Is(err, entity.ErrLeadNotFound),
		errors.Is(err, entity.ErrStageNotFound),
		errors.Is(err, entity.ErrLeadAlreadyClosed):
		return FailureValidation
	default:
		return FailureTransient
	}
}
