package board

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/dfalmeida/pipeboard/internal/entity"
)

// Shared mocks and fixtures for the board package tests.

type mockGateway struct {
	mock.Mock
}

func (m *mockGateway) FetchLeadsForPipeline(ctx context.Context, pipelineID string) ([]*entity.Lead, error) {
	args := m.Called(ctx, pipelineID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.Lead), args.Error(1)
}

func (m *mockGateway) UpdateLeadStage(ctx context.Context, leadID, newStageID, notes string) (*entity.Lead, error) {
	args := m.Called(ctx, leadID, newStageID, notes)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entity.Lead), args.Error(1)
}

type mockRefresher struct {
	mock.Mock
}

func (m *mockRefresher) Refresh(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

type mockRuleSource struct {
	mock.Mock
}

func (m *mockRuleSource) RulesFor(ctx context.Context, pipelineID, stageID string) ([]*entity.AutomationRule, error) {
	args := m.Called(ctx, pipelineID, stageID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entity.AutomationRule), args.Error(1)
}

type mockActions struct {
	mock.Mock
}

func (m *mockActions) CreateTask(ctx context.Context, lead *entity.Lead, title, dueDate, dueTime string) error {
	args := m.Called(ctx, lead, title, dueDate, dueTime)
	return args.Error(0)
}

func (m *mockActions) MarkSold(ctx context.Context, lead *entity.Lead, valueCents int64, notes string) error {
	args := m.Called(ctx, lead, valueCents, notes)
	return args.Error(0)
}

func (m *mockActions) MarkLost(ctx context.Context, lead *entity.Lead, reason, notes string) error {
	args := m.Called(ctx, lead, reason, notes)
	return args.Error(0)
}

const (
	stageNew       = "stage-new"
	stageContacted = "stage-contacted"
	stageWon       = "stage-won"
)

func salesPipeline(requireNotes bool) *entity.Pipeline {
	return &entity.Pipeline{
		ID:                "pipe-sales",
		AccountID:         "acc-1",
		Name:              "Sales",
		RequireStageNotes: requireNotes,
		Stages: []entity.Stage{
			{ID: stageNew, PipelineID: "pipe-sales", Name: "New", Position: 0},
			{ID: stageContacted, PipelineID: "pipe-sales", Name: "Contacted", Position: 1},
			{ID: stageWon, PipelineID: "pipe-sales", Name: "Won", Position: 2},
		},
	}
}

func leadAt(id, name, stageID string) *entity.Lead {
	return &entity.Lead{
		ID:         id,
		AccountID:  "acc-1",
		Name:       name,
		PipelineID: "pipe-sales",
		StageID:    stageID,
		ValueCents: 500000,
		CreatedAt:  time.Now(),
		UpdatedAt:  time.Now(),
	}
}

// loadedStore builds a store already holding the given leads.
func loadedStore(gw *mockGateway, leads ...*entity.Lead) *StateStore {
	pipe := salesPipeline(false)
	store := NewStateStore(gw)
	gw.On("FetchLeadsForPipeline", mock.Anything, pipe.ID).Return(leads, nil).Once()
	if err := store.Load(context.Background(), pipe.ID, pipe.Stages); err != nil {
		panic(err)
	}
	return store
}
