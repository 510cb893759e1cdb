package board

import (
	"context"
	"sync"

	"github.com/dfalmeida/pipeboard/internal/entity"
)

// Session is one user's live view of one pipeline: the store, the drag
// controller, the move executor and the prompt bridge, wired together.
// The hosting surface registers its prompt handlers on Bridge() and drives
// gestures through Move / Confirm / Cancel.
type Session struct {
	store    *StateStore
	drag     *DragController
	executor *Executor
	bridge   *Bridge

	cancel context.CancelFunc // ends automation still parked on a prompt

	mu       sync.Mutex
	pipeline *entity.Pipeline
	pending  map[string]*PendingStageMove // keyed by lead id
}

type SessionDeps struct {
	Gateway   Gateway
	Refresher SessionRefresher
	Rules     RuleSource
	Actions   Actions
}

func NewSession(pipeline *entity.Pipeline, deps SessionDeps) *Session {
	store := NewStateStore(deps.Gateway)
	bridge := NewBridge()
	evaluator := NewEvaluator(deps.Rules, bridge, deps.Actions)
	executor := NewExecutor(store, deps.Gateway, deps.Refresher, evaluator)
	ctx, cancel := context.WithCancel(context.Background())
	executor.lifetime = ctx

	return &Session{
		store:    store,
		drag:     NewDragController(store),
		executor: executor,
		bridge:   bridge,
		cancel:   cancel,
		pipeline: pipeline,
		pending:  make(map[string]*PendingStageMove),
	}
}

func (s *Session) Open(ctx context.Context) error {
	return s.store.Load(ctx, s.pipeline.ID, s.pipeline.Stages)
}

// Reload invalidates the cache and loads fresh. Used by the automation
// completion handler and after out-of-band mutations.
func (s *Session) Reload(ctx context.Context) error {
	s.store.Invalidate()
	return s.store.Load(ctx, s.pipeline.ID, s.pipeline.Stages)
}

func (s *Session) Pipeline() *entity.Pipeline {
	return s.pipeline
}

func (s *Session) Bridge() *Bridge {
	return s.bridge
}

func (s *Session) Board() map[string][]*entity.Lead {
	return s.store.Snapshot()
}

func (s *Session) StageOrder() []string {
	return s.store.StageOrder()
}

// Move runs a full drag gesture: start on the lead, drop on the target,
// and hand any resulting intent to the executor. Parked moves are kept on
// the session until confirmed or cancelled.
func (s *Session) Move(ctx context.Context, leadID, overTargetID string) (*MoveResult, error) {
	s.drag.DragStart(leadID)
	intent, ok := s.drag.DragEnd(overTargetID)
	if !ok {
		return &MoveResult{State: MoveIdle}, nil
	}

	result, err := s.executor.AttemptMove(ctx, s.pipeline, intent)
	if err != nil {
		return nil, err
	}

	if result.State == MoveAwaitingNotes {
		s.mu.Lock()
		s.pending[result.Pending.LeadID] = result.Pending
		s.mu.Unlock()
	}
	return result, nil
}

func (s *Session) Confirm(ctx context.Context, leadID, notes string) (*MoveResult, error) {
	pending, ok := s.takePending(leadID)
	if !ok {
		return nil, entity.ErrLeadNotFound
	}
	return s.executor.ConfirmMove(ctx, pending, notes)
}

func (s *Session) Cancel(leadID string) bool {
	pending, ok := s.takePending(leadID)
	if !ok {
		return false
	}
	s.executor.CancelMove(pending)
	return true
}

// Close cancels automation still waiting on a prompt and blocks until
// every in-flight run has returned. The session is done after this.
func (s *Session) Close() {
	s.cancel()
	s.executor.Wait()
}

// Drain waits for in-flight automation to settle without ending the
// session. Used between gestures when the caller needs the board final.
func (s *Session) Drain() {
	s.executor.Wait()
}

func (s *Session) takePending(leadID string) (*PendingStageMove, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	pending, ok := s.pending[leadID]
	if ok {
		delete(s.pending, leadID)
	}
	return pending, ok
}
