package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/dfalmeida/pipeboard/internal/entity"
	"github.com/dfalmeida/pipeboard/internal/infra/queue"
)

func TestCreateTaskSuccess(t *testing.T) {
	ctx := context.Background()

	pipeline := testPipeline(false)
	lead := testLead(pipeline, "Acme Corp", pipeline.Stages[0].ID)

	taskRepo := new(mockTaskRepo)
	leadRepo := new(mockLeadRepo)
	producer := new(mockQueueProducer)

	leadRepo.On("FindByID", ctx, lead.ID).Return(lead, nil)
	taskRepo.On("Create", ctx, mock.Anything).Return(nil)
	producer.On("PublishLeadEvent", ctx, mock.MatchedBy(func(p queue.LeadEventPayload) bool {
		return p.Event == queue.EventTaskCreated && p.TaskTitle == "Call to schedule demo"
	})).Return(nil)

	uc := NewCreateTaskUseCase(taskRepo, leadRepo, producer, "sales@acme.test")

	task, err := uc.Execute(ctx, CreateTaskInput{
		AccountID: "acc-1",
		LeadID:    lead.ID,
		Title:     "Call to schedule demo",
		DueDate:   "2026-09-04",
		DueTime:   "10:30",
	})

	assert.NoError(t, err)
	assert.NotNil(t, task)
	assert.Equal(t, lead.ID, task.LeadID)
	assert.False(t, task.Done)
	producer.AssertExpectations(t)
}

func TestCreateTaskLeadNotFound(t *testing.T) {
	ctx := context.Background()

	taskRepo := new(mockTaskRepo)
	leadRepo := new(mockLeadRepo)
	leadRepo.On("FindByID", ctx, "lead-missing").Return(nil, entity.ErrLeadNotFound)

	uc := NewCreateTaskUseCase(taskRepo, leadRepo, nil, "")

	task, err := uc.Execute(ctx, CreateTaskInput{
		AccountID: "acc-1",
		LeadID:    "lead-missing",
		Title:     "Follow up",
		DueDate:   "2026-09-04",
	})

	assert.Error(t, err)
	assert.Nil(t, task)
	assert.True(t, IsDomainError(err))
	taskRepo.AssertNotCalled(t, "Create")
}

func TestCreateTaskInvalidDueDate(t *testing.T) {
	ctx := context.Background()

	pipeline := testPipeline(false)
	lead := testLead(pipeline, "Acme Corp", pipeline.Stages[0].ID)

	taskRepo := new(mockTaskRepo)
	leadRepo := new(mockLeadRepo)
	leadRepo.On("FindByID", ctx, lead.ID).Return(lead, nil)

	uc := NewCreateTaskUseCase(taskRepo, leadRepo, nil, "")

	task, err := uc.Execute(ctx, CreateTaskInput{
		AccountID: "acc-1",
		LeadID:    lead.ID,
		Title:     "Follow up",
		DueDate:   "04/09/2026",
	})

	assert.Error(t, err)
	assert.Nil(t, task)
	assert.True(t, IsDomainError(err))
	taskRepo.AssertNotCalled(t, "Create")
}

func TestCreateTaskDatabaseFailure(t *testing.T) {
	ctx := context.Background()

	pipeline := testPipeline(false)
	lead := testLead(pipeline, "Acme Corp", pipeline.Stages[0].ID)

	taskRepo := new(mockTaskRepo)
	leadRepo := new(mockLeadRepo)
	producer := new(mockQueueProducer)

	leadRepo.On("FindByID", ctx, lead.ID).Return(lead, nil)
	taskRepo.On("Create", ctx, mock.Anything).Return(errors.New("disk full"))

	uc := NewCreateTaskUseCase(taskRepo, leadRepo, producer, "")

	task, err := uc.Execute(ctx, CreateTaskInput{
		AccountID: "acc-1",
		LeadID:    lead.ID,
		Title:     "Follow up",
		DueDate:   "2026-09-04",
	})

	assert.Error(t, err)
	assert.Nil(t, task)
	assert.True(t, IsTechnicalError(err))
	producer.AssertNotCalled(t, "PublishLeadEvent")
}
