package board

import (
	"context"
	"log"
	"sync"

	"github.com/dfalmeida/pipeboard/internal/entity"
)

type MoveState string

const (
	MoveIdle          MoveState = "idle"
	MoveAwaitingNotes MoveState = "awaiting_notes"
	MoveCommitted     MoveState = "committed"
	MoveRolledBack    MoveState = "rolled_back"
)

// PendingStageMove is a move parked while the mandatory-notes dialog
// collects its note. It carries everything needed to resume or discard.
type PendingStageMove struct {
	LeadID      string `json:"lead_id"`
	LeadName    string `json:"lead_name"`
	FromStageID string `json:"from_stage_id"`
	ToStageID   string `json:"to_stage_id"`
}

// MoveResult is the settled outcome of a gesture. Exactly one of Pending,
// Failure or Lead is set, matching State.
type MoveResult struct {
	State   MoveState         `json:"state"`
	Pending *PendingStageMove `json:"pending,omitempty"`
	Failure *MoveFailure      `json:"failure,omitempty"`
	Lead    *entity.Lead      `json:"lead,omitempty"`
}

// Executor runs a stage move through
// Idle -> OptimisticallyMoved -> {Committed | RolledBack}, with
// AwaitingNotes in front when the pipeline mandates stage-change notes.
// The optimistic mutation always lands before the persistence call starts,
// and the revert (if any) only after it settles.
type Executor struct {
	store     *StateStore
	gateway   Gateway
	refresher SessionRefresher
	evaluator *Evaluator

	// lifetime outlives individual gestures but ends with the session,
	// so closing the session cancels automation parked on a prompt
	lifetime context.Context

	mu       sync.Mutex
	inflight map[string]bool

	wg sync.WaitGroup
}

func NewExecutor(store *StateStore, gateway Gateway, refresher SessionRefresher, evaluator *Evaluator) *Executor {
	return &Executor{
		store:     store,
		gateway:   gateway,
		refresher: refresher,
		evaluator: evaluator,
		lifetime:  context.Background(),
		inflight:  make(map[string]bool),
	}
}

// AttemptMove starts a move. On a pipeline requiring stage notes it parks
// the move untouched and returns it as Pending; board state only changes
// once ConfirmMove supplies the note. A second move of a lead whose first
// has not settled is rejected with ErrMoveInFlight.
func (e *Executor) AttemptMove(ctx context.Context, pipeline *entity.Pipeline, intent MoveIntent) (*MoveResult, error) {
	if failure := e.closedLeadFailure(intent.LeadID); failure != nil {
		return &MoveResult{State: MoveRolledBack, Failure: failure}, nil
	}

	if pipeline.RequireStageNotes {
		name := ""
		if lead, ok := e.store.Lead(intent.LeadID); ok {
			name = lead.Name
		}
		return &MoveResult{
			State: MoveAwaitingNotes,
			Pending: &PendingStageMove{
				LeadID:      intent.LeadID,
				LeadName:    name,
				FromStageID: intent.FromStageID,
				ToStageID:   intent.ToStageID,
			},
		}, nil
	}

	return e.execute(ctx, intent, "")
}

// ConfirmMove resumes a move parked in AwaitingNotes with the collected note.
func (e *Executor) ConfirmMove(ctx context.Context, pending *PendingStageMove, notes string) (*MoveResult, error) {
	intent := MoveIntent{
		LeadID:      pending.LeadID,
		FromStageID: pending.FromStageID,
		ToStageID:   pending.ToStageID,
	}
	return e.execute(ctx, intent, notes)
}

// CancelMove discards a pending move. The board was never touched.
func (e *Executor) CancelMove(pending *PendingStageMove) {
	log.Printf("[board] move cancelled lead=%s %s->%s", pending.LeadID, pending.FromStageID, pending.ToStageID)
}

func (e *Executor) execute(ctx context.Context, intent MoveIntent, notes string) (*MoveResult, error) {
	if !e.acquire(intent.LeadID) {
		return nil, ErrMoveInFlight
	}
	defer e.release(intent.LeadID)

	// a lead closed between parking and confirm must not move
	if failure := e.closedLeadFailure(intent.LeadID); failure != nil {
		return &MoveResult{State: MoveRolledBack, Failure: failure}, nil
	}

	// optimistic apply, before any network call
	if !e.store.applyMove(intent.LeadID, intent.FromStageID, intent.ToStageID) {
		return &MoveResult{
			State: MoveRolledBack,
			Failure: &MoveFailure{
				Class:   FailureValidation,
				Message: "lead is no longer on the board",
				Err:     entity.ErrLeadNotFound,
			},
		}, nil
	}

	updated, err := e.gateway.UpdateLeadStage(ctx, intent.LeadID, intent.ToStageID, notes)
	if err != nil {
		e.store.revertMove(intent.LeadID, intent.FromStageID, intent.ToStageID)
		return &MoveResult{State: MoveRolledBack, Failure: e.failureFor(ctx, intent, err)}, nil
	}

	e.store.replaceLead(updated)

	// automation runs after commit and never blocks the gesture; it is
	// detached from the request context but dies with the session
	if e.evaluator != nil {
		e.wg.Add(1)
		go func() {
			defer e.wg.Done()
			e.evaluator.Evaluate(e.lifetime, updated, intent.FromStageID, intent.ToStageID)
		}()
	}

	return &MoveResult{State: MoveCommitted, Lead: updated}, nil
}

// Wait blocks until all in-flight automation runs finish. Used on shutdown
// and by tests.
func (e *Executor) Wait() {
	e.wg.Wait()
}

// closedLeadFailure rejects moves of sold or lost leads before anything
// touches the board or the database.
func (e *Executor) closedLeadFailure(leadID string) *MoveFailure {
	lead, ok := e.store.Lead(leadID)
	if !ok || !lead.IsClosed() {
		return nil
	}
	return &MoveFailure{
		Class:   FailureValidation,
		Message: "move rejected: " + entity.ErrLeadAlreadyClosed.Error(),
		Err:     entity.ErrLeadAlreadyClosed,
	}
}

func (e *Executor) acquire(leadID string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.inflight[leadID] {
		return false
	}
	e.inflight[leadID] = true
	return true
}

func (e *Executor) release(leadID string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.inflight, leadID)
}

func (e *Executor) failureFor(ctx context.Context, intent MoveIntent, err error) *MoveFailure {
	class := ClassifyMoveError(err)
	log.Printf("[board] move failed lead=%s %s->%s class=%s: %v",
		intent.LeadID, intent.FromStageID, intent.ToStageID, class, err)

	switch class {
	case FailureConflict:
		// one refresh attempt; the move itself is never re-run, it may
		// already have been applied remotely
		if e.refresher != nil {
			if refreshErr := e.refresher.Refresh(ctx); refreshErr == nil {
				return &MoveFailure{
					Class:   FailureConflict,
					Message: "session refreshed, please retry the move",
					Err:     err,
				}
			}
		}
		return &MoveFailure{
			Class:          FailureConflict,
			Message:        "session expired, please sign in again",
			SessionExpired: true,
			Err:            err,
		}
	case FailureValidation:
		return &MoveFailure{
			Class:   FailureValidation,
			Message: "move rejected: " + err.Error(),
			Err:     err,
		}
	default:
		return &MoveFailure{
			Class:   FailureTransient,
			Message: "failed to move lead, please try again",
			Err:     err,
		}
	}
}
