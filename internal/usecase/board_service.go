package usecase

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/dfalmeida/pipeboard/internal/board"
	"github.com/dfalmeida/pipeboard/internal/entity"
	"github.com/dfalmeida/pipeboard/internal/infra/queue"
)

// repoGateway exposes the lead repository under the board's gateway port.
type repoGateway struct {
	leads entity.LeadRepositoryInterface
}

func (g repoGateway) FetchLeadsForPipeline(ctx context.Context, pipelineID string) ([]*entity.Lead, error) {
	return g.leads.FindByPipeline(ctx, pipelineID)
}

func (g repoGateway) UpdateLeadStage(ctx context.Context, leadID, newStageID, notes string) (*entity.Lead, error) {
	return g.leads.UpdateStage(ctx, leadID, newStageID, notes)
}

type repoRules struct {
	rules entity.AutomationRuleRepositoryInterface
}

func (r repoRules) RulesFor(ctx context.Context, pipelineID, stageID string) ([]*entity.AutomationRule, error) {
	return r.rules.FindByTrigger(ctx, pipelineID, stageID)
}

// BoardService owns the live board sessions, one per open pipeline, and
// drives gestures through them. Session lifetime bounds everything
// registered on the session's bridge.
type BoardService struct {
	PipelineRepo entity.PipelineRepositoryInterface
	Queue        QueueProducerInterface

	deps board.SessionDeps

	mu       sync.Mutex
	sessions map[string]*board.Session
}

func NewBoardService(
	pipelineRepo entity.PipelineRepositoryInterface,
	leadRepo entity.LeadRepositoryInterface,
	ruleRepo entity.AutomationRuleRepositoryInterface,
	refresher board.SessionRefresher,
	actions board.Actions,
	producer QueueProducerInterface,
) *BoardService {
	return &BoardService{
		PipelineRepo: pipelineRepo,
		Queue:        producer,
		deps: board.SessionDeps{
			Gateway:   repoGateway{leads: leadRepo},
			Refresher: refresher,
			Rules:     repoRules{rules: ruleRepo},
			Actions:   actions,
		},
		sessions: make(map[string]*board.Session),
	}
}

// Open loads (or reloads) the board for a pipeline and returns its session.
func (s *BoardService) Open(ctx context.Context, pipelineID string) (*board.Session, error) {
	pipeline, err := s.PipelineRepo.FindByID(ctx, pipelineID)
	if err != nil {
		return nil, &DomainError{Code: "PIPELINE_NOT_FOUND", Message: "invalid pipeline: " + err.Error()}
	}

	s.mu.Lock()
	session, ok := s.sessions[pipelineID]
	if !ok {
		session = board.NewSession(pipeline, s.deps)
		s.sessions[pipelineID] = session

		// an applied automation effect invalidates the board; reload so
		// the next read sees it
		sess := session
		session.Bridge().RegisterCompletionHandler(func(leadID string) {
			if err := sess.Reload(context.Background()); err != nil {
				log.Printf("[board] reload after automation for lead %s failed: %v", leadID, err)
			}
		})
	}
	s.mu.Unlock()

	if err := session.Open(ctx); err != nil {
		return nil, &TechnicalError{Code: "BOARD_LOAD_FAILED", Message: "failed to load board: " + err.Error()}
	}
	return session, nil
}

func (s *BoardService) Session(pipelineID string) (*board.Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[pipelineID]
	return session, ok
}

// Move runs a drag gesture against an open board.
func (s *BoardService) Move(ctx context.Context, pipelineID, leadID, overTargetID string) (*board.MoveResult, error) {
	session, ok := s.Session(pipelineID)
	if !ok {
		return nil, &DomainError{Code: "BOARD_NOT_OPEN", Message: "open the board before moving leads"}
	}

	result, err := session.Move(ctx, leadID, overTargetID)
	if err != nil {
		return nil, err
	}

	if result.State == board.MoveCommitted {
		s.publishStageChanged(ctx, result.Lead)
	}
	return result, nil
}

func (s *BoardService) Confirm(ctx context.Context, pipelineID, leadID, notes string) (*board.MoveResult, error) {
	session, ok := s.Session(pipelineID)
	if !ok {
		return nil, &DomainError{Code: "BOARD_NOT_OPEN", Message: "open the board before moving leads"}
	}

	result, err := session.Confirm(ctx, leadID, notes)
	if err != nil {
		return nil, err
	}

	if result.State == board.MoveCommitted {
		s.publishStageChanged(ctx, result.Lead)
	}
	return result, nil
}

func (s *BoardService) Cancel(pipelineID, leadID string) bool {
	session, ok := s.Session(pipelineID)
	if !ok {
		return false
	}
	return session.Cancel(leadID)
}

// Close cancels a session's pending automation, waits for it to return
// and drops the session, taking its bridge registrations with it.
func (s *BoardService) Close(pipelineID string) {
	s.mu.Lock()
	session, ok := s.sessions[pipelineID]
	if ok {
		delete(s.sessions, pipelineID)
	}
	s.mu.Unlock()

	if ok {
		session.Close()
	}
}

func (s *BoardService) publishStageChanged(ctx context.Context, lead *entity.Lead) {
	if s.Queue == nil || lead == nil {
		return
	}
	err := s.Queue.PublishLeadEvent(ctx, queue.LeadEventPayload{
		Event:      queue.EventStageChanged,
		AccountID:  lead.AccountID,
		LeadID:     lead.ID,
		LeadName:   lead.Name,
		PipelineID: lead.PipelineID,
		ToStageID:  lead.StageID,
		OccurredAt: time.Now(),
	})
	if err != nil {
		log.Printf("[board] move committed but event publish failed for lead %s: %v", lead.ID, err)
	}
}
