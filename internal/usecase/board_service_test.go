package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/dfalmeida/pipeboard/internal/board"
	"github.com/dfalmeida/pipeboard/internal/entity"
	"github.com/dfalmeida/pipeboard/internal/infra/queue"
)

func boardFixture(t *testing.T, requireNotes bool) (*BoardService, *entity.Pipeline, *entity.Lead, *mockLeadRepo, *mockQueueProducer) {
	t.Helper()

	pipeline := testPipeline(requireNotes)
	lead := testLead(pipeline, "Acme Corp", pipeline.Stages[0].ID)

	leadRepo := new(mockLeadRepo)
	pipelineRepo := new(mockPipelineRepo)
	ruleRepo := new(mockRuleRepo)
	producer := new(mockQueueProducer)

	pipelineRepo.On("FindByID", mock.Anything, pipeline.ID).Return(pipeline, nil)
	leadRepo.On("FindByPipeline", mock.Anything, pipeline.ID).Return([]*entity.Lead{lead}, nil)
	ruleRepo.On("FindByTrigger", mock.Anything, pipeline.ID, mock.Anything).
		Return([]*entity.AutomationRule{}, nil)

	service := NewBoardService(pipelineRepo, leadRepo, ruleRepo, nil, nil, producer)
	return service, pipeline, lead, leadRepo, producer
}

func TestBoardServiceOpenAndRead(t *testing.T) {
	ctx := context.Background()
	service, pipeline, lead, _, _ := boardFixture(t, false)

	session, err := service.Open(ctx, pipeline.ID)
	assert.NoError(t, err)

	state := session.Board()
	assert.Len(t, state[pipeline.Stages[0].ID], 1)
	assert.Equal(t, lead.ID, state[pipeline.Stages[0].ID][0].ID)

	// reopening returns the same session
	again, err := service.Open(ctx, pipeline.ID)
	assert.NoError(t, err)
	assert.Same(t, session, again)
}

func TestBoardServiceOpenUnknownPipeline(t *testing.T) {
	ctx := context.Background()

	pipelineRepo := new(mockPipelineRepo)
	pipelineRepo.On("FindByID", mock.Anything, "pipe-missing").Return(nil, entity.ErrPipelineNotFound)

	service := NewBoardService(pipelineRepo, new(mockLeadRepo), new(mockRuleRepo), nil, nil, nil)

	session, err := service.Open(ctx, "pipe-missing")
	assert.Error(t, err)
	assert.Nil(t, session)
	assert.True(t, IsDomainError(err))
}

func TestBoardServiceMoveCommitsAndPublishes(t *testing.T) {
	ctx := context.Background()
	service, pipeline, lead, leadRepo, producer := boardFixture(t, false)
	target := pipeline.Stages[1].ID

	moved := *lead
	moved.StageID = target
	leadRepo.On("UpdateStage", mock.Anything, lead.ID, target, "").Return(&moved, nil)
	producer.On("PublishLeadEvent", mock.Anything, mock.MatchedBy(func(p queue.LeadEventPayload) bool {
		return p.Event == queue.EventStageChanged && p.ToStageID == target
	})).Return(nil)

	_, err := service.Open(ctx, pipeline.ID)
	assert.NoError(t, err)

	result, err := service.Move(ctx, pipeline.ID, lead.ID, target)
	assert.NoError(t, err)
	assert.Equal(t, board.MoveCommitted, result.State)

	service.Close(pipeline.ID)
	producer.AssertExpectations(t)
}

func TestBoardServiceMoveWithoutOpenBoard(t *testing.T) {
	ctx := context.Background()
	service, pipeline, lead, _, _ := boardFixture(t, false)

	result, err := service.Move(ctx, pipeline.ID, lead.ID, pipeline.Stages[1].ID)
	assert.Error(t, err)
	assert.Nil(t, result)
	var domainErr *DomainError
	assert.True(t, errors.As(err, &domainErr))
	assert.Equal(t, "BOARD_NOT_OPEN", domainErr.Code)
}

func TestBoardServiceRollbackDoesNotPublish(t *testing.T) {
	ctx := context.Background()
	service, pipeline, lead, leadRepo, producer := boardFixture(t, false)
	target := pipeline.Stages[1].ID

	leadRepo.On("UpdateStage", mock.Anything, lead.ID, target, "").
		Return(nil, errors.New("connection reset"))

	_, err := service.Open(ctx, pipeline.ID)
	assert.NoError(t, err)

	result, err := service.Move(ctx, pipeline.ID, lead.ID, target)
	assert.NoError(t, err)
	assert.Equal(t, board.MoveRolledBack, result.State)
	assert.NotNil(t, result.Failure)

	producer.AssertNotCalled(t, "PublishLeadEvent", mock.Anything, mock.Anything)
}

func TestBoardServiceConflictTriggersSessionRefresh(t *testing.T) {
	ctx := context.Background()

	pipeline := testPipeline(false)
	lead := testLead(pipeline, "Acme Corp", pipeline.Stages[0].ID)
	target := pipeline.Stages[1].ID

	leadRepo := new(mockLeadRepo)
	pipelineRepo := new(mockPipelineRepo)
	ruleRepo := new(mockRuleRepo)
	refresher := new(mockRefresher)

	pipelineRepo.On("FindByID", mock.Anything, pipeline.ID).Return(pipeline, nil)
	leadRepo.On("FindByPipeline", mock.Anything, pipeline.ID).Return([]*entity.Lead{lead}, nil)
	leadRepo.On("UpdateStage", mock.Anything, lead.ID, target, "").Return(nil, board.ErrConflict)
	refresher.On("Refresh", mock.Anything).Return(nil)

	service := NewBoardService(pipelineRepo, leadRepo, ruleRepo, refresher, nil, nil)

	_, err := service.Open(ctx, pipeline.ID)
	assert.NoError(t, err)

	result, err := service.Move(ctx, pipeline.ID, lead.ID, target)
	assert.NoError(t, err)
	assert.Equal(t, board.MoveRolledBack, result.State)
	assert.Equal(t, board.FailureConflict, result.Failure.Class)
	assert.False(t, result.Failure.SessionExpired)
	refresher.AssertNumberOfCalls(t, "Refresh", 1)
}

func TestBoardServiceMandatoryNotesFlow(t *testing.T) {
	ctx := context.Background()
	service, pipeline, lead, leadRepo, producer := boardFixture(t, true)
	target := pipeline.Stages[1].ID

	moved := *lead
	moved.StageID = target
	leadRepo.On("UpdateStage", mock.Anything, lead.ID, target, "left voicemail").Return(&moved, nil)
	producer.On("PublishLeadEvent", mock.Anything, mock.Anything).Return(nil)

	_, err := service.Open(ctx, pipeline.ID)
	assert.NoError(t, err)

	result, err := service.Move(ctx, pipeline.ID, lead.ID, target)
	assert.NoError(t, err)
	assert.Equal(t, board.MoveAwaitingNotes, result.State)

	confirmed, err := service.Confirm(ctx, pipeline.ID, lead.ID, "left voicemail")
	assert.NoError(t, err)
	assert.Equal(t, board.MoveCommitted, confirmed.State)

	service.Close(pipeline.ID)
}

func TestBoardServiceCancelPendingMove(t *testing.T) {
	ctx := context.Background()
	service, pipeline, lead, leadRepo, _ := boardFixture(t, true)

	_, err := service.Open(ctx, pipeline.ID)
	assert.NoError(t, err)

	result, err := service.Move(ctx, pipeline.ID, lead.ID, pipeline.Stages[1].ID)
	assert.NoError(t, err)
	assert.Equal(t, board.MoveAwaitingNotes, result.State)

	assert.True(t, service.Cancel(pipeline.ID, lead.ID))
	assert.False(t, service.Cancel(pipeline.ID, lead.ID))
	leadRepo.AssertNotCalled(t, "UpdateStage", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
