package usecase

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/dfalmeida/pipeboard/internal/entity"
	"github.com/dfalmeida/pipeboard/internal/infra/queue"
)

type mockLeadRepo struct {
	mock.Mock
}

func (m *mockLeadRepo) Create(ctx context.Context, lead *entity.Lead) error {
	args := m.Called(ctx, lead)
	return args.Error(0)
}

func (m *mockLeadRepo) FindByID(ctx context.Context, id string) (*entity.Lead, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Lead), args.Error(1)
}

func (m *mockLeadRepo) FindByPipeline(ctx context.Context, pipelineID string) ([]*entity.Lead, error) {
	args := m.Called(ctx, pipelineID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Lead), args.Error(1)
}

func (m *mockLeadRepo) Update(ctx context.Context, lead *entity.Lead) error {
	args := m.Called(ctx, lead)
	return args.Error(0)
}

func (m *mockLeadRepo) UpdateStage(ctx context.Context, leadID, stageID, notes string) (*entity.Lead, error) {
	args := m.Called(ctx, leadID, stageID, notes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Lead), args.Error(1)
}

func (m *mockLeadRepo) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type mockPipelineRepo struct {
	mock.Mock
}

func (m *mockPipelineRepo) Create(ctx context.Context, p *entity.Pipeline) error {
	args := m.Called(ctx, p)
	return args.Error(0)
}

func (m *mockPipelineRepo) FindByID(ctx context.Context, id string) (*entity.Pipeline, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Pipeline), args.Error(1)
}

func (m *mockPipelineRepo) FindByAccount(ctx context.Context, accountID string) ([]*entity.Pipeline, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Pipeline), args.Error(1)
}

type mockTaskRepo struct {
	mock.Mock
}

func (m *mockTaskRepo) Create(ctx context.Context, task *entity.Task) error {
	args := m.Called(ctx, task)
	return args.Error(0)
}

func (m *mockTaskRepo) FindByLead(ctx context.Context, leadID string) ([]*entity.Task, error) {
	args := m.Called(ctx, leadID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Task), args.Error(1)
}

func (m *mockTaskRepo) FindDueBefore(ctx context.Context, cutoff time.Time) ([]*entity.Task, error) {
	args := m.Called(ctx, cutoff)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Task), args.Error(1)
}

func (m *mockTaskRepo) MarkDone(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type mockRuleRepo struct {
	mock.Mock
}

func (m *mockRuleRepo) FindByPipeline(ctx context.Context, pipelineID string) ([]*entity.AutomationRule, error) {
	args := m.Called(ctx, pipelineID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.AutomationRule), args.Error(1)
}

func (m *mockRuleRepo) FindByTrigger(ctx context.Context, pipelineID, stageID string) ([]*entity.AutomationRule, error) {
	args := m.Called(ctx, pipelineID, stageID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.AutomationRule), args.Error(1)
}

func (m *mockRuleRepo) Create(ctx context.Context, rule *entity.AutomationRule) error {
	args := m.Called(ctx, rule)
	return args.Error(0)
}

type mockQueueProducer struct {
	mock.Mock
}

func (m *mockQueueProducer) PublishLeadEvent(ctx context.Context, payload queue.LeadEventPayload) error {
	args := m.Called(ctx, payload)
	return args.Error(0)
}

type mockRefresher struct {
	mock.Mock
}

func (m *mockRefresher) Refresh(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func testPipeline(requireNotes bool) *entity.Pipeline {
	pipeline, _ := entity.NewPipeline("acc-1", "Sales", []string{"New", "Contacted", "Won"})
	pipeline.RequireStageNotes = requireNotes
	return pipeline
}

func testLead(pipeline *entity.Pipeline, name, stageID string) *entity.Lead {
	lead, _ := entity.NewLead("acc-1", name, pipeline.ID, stageID)
	return lead
}
