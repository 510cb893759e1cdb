package board

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/dfalmeida/pipeboard/internal/entity"
)

func TestLoadGroupsLeadsWithEveryStagePresent(t *testing.T) {
	gw := new(mockGateway)
	pipe := salesPipeline(false)
	store := NewStateStore(gw)

	gw.On("FetchLeadsForPipeline", mock.Anything, pipe.ID).Return([]*entity.Lead{
		leadAt("lead-1", "Acme Corp", stageNew),
		leadAt("lead-2", "Globex", stageNew),
		leadAt("lead-3", "Initech", stageContacted),
	}, nil)

	err := store.Load(context.Background(), pipe.ID, pipe.Stages)
	assert.NoError(t, err)

	snap := store.Snapshot()
	assert.Len(t, snap, 3)
	assert.Len(t, snap[stageNew], 2)
	assert.Len(t, snap[stageContacted], 1)
	// empty stage still has its key
	assert.NotNil(t, snap[stageWon])
	assert.Empty(t, snap[stageWon])
}

func TestLoadDropsLeadsOutsideStageSet(t *testing.T) {
	gw := new(mockGateway)
	pipe := salesPipeline(false)
	store := NewStateStore(gw)

	gw.On("FetchLeadsForPipeline", mock.Anything, pipe.ID).Return([]*entity.Lead{
		leadAt("lead-1", "Acme Corp", "stage-from-another-pipeline"),
	}, nil)

	err := store.Load(context.Background(), pipe.ID, pipe.Stages)
	assert.NoError(t, err)

	for _, list := range store.Snapshot() {
		assert.Empty(t, list)
	}
}

// A load that was in flight when the selection changed must never
// overwrite the store once it resolves.
func TestStaleLoadIsDiscarded(t *testing.T) {
	gw := new(mockGateway)
	pipe := salesPipeline(false)
	store := NewStateStore(gw)

	firstFetchStarted := make(chan struct{})
	releaseFirstFetch := make(chan struct{})

	gw.On("FetchLeadsForPipeline", mock.Anything, pipe.ID).Return([]*entity.Lead{
		leadAt("lead-stale", "Stale Corp", stageNew),
	}, nil).Once().Run(func(args mock.Arguments) {
		close(firstFetchStarted)
		<-releaseFirstFetch
	})
	gw.On("FetchLeadsForPipeline", mock.Anything, pipe.ID).Return([]*entity.Lead{
		leadAt("lead-fresh", "Fresh Corp", stageNew),
	}, nil).Once()

	var wg sync.WaitGroup
	wg.Add(1)
	var firstErr error
	go func() {
		defer wg.Done()
		firstErr = store.Load(context.Background(), pipe.ID, pipe.Stages)
	}()

	<-firstFetchStarted
	// second load supersedes the first while its fetch is still blocked
	err := store.Load(context.Background(), pipe.ID, pipe.Stages)
	assert.NoError(t, err)

	close(releaseFirstFetch)
	wg.Wait()

	assert.ErrorIs(t, firstErr, ErrStaleLoad)

	snap := store.Snapshot()
	assert.Len(t, snap[stageNew], 1)
	assert.Equal(t, "lead-fresh", snap[stageNew][0].ID)
}

func TestInvalidateSupersedesInFlightLoad(t *testing.T) {
	gw := new(mockGateway)
	pipe := salesPipeline(false)
	store := NewStateStore(gw)

	fetchStarted := make(chan struct{})
	releaseFetch := make(chan struct{})

	gw.On("FetchLeadsForPipeline", mock.Anything, pipe.ID).Return([]*entity.Lead{
		leadAt("lead-1", "Acme Corp", stageNew),
	}, nil).Once().Run(func(args mock.Arguments) {
		close(fetchStarted)
		<-releaseFetch
	})

	var wg sync.WaitGroup
	wg.Add(1)
	var loadErr error
	go func() {
		defer wg.Done()
		loadErr = store.Load(context.Background(), pipe.ID, pipe.Stages)
	}()

	<-fetchStarted
	store.Invalidate()
	close(releaseFetch)
	wg.Wait()

	assert.ErrorIs(t, loadErr, ErrStaleLoad)
	assert.False(t, store.Loaded())
}

func TestApplyAndRevertRestoreOriginalState(t *testing.T) {
	gw := new(mockGateway)
	store := loadedStore(gw,
		leadAt("lead-1", "Acme Corp", stageNew),
		leadAt("lead-2", "Globex", stageNew),
	)

	before := store.Snapshot()

	assert.True(t, store.applyMove("lead-1", stageNew, stageContacted))
	mid := store.Snapshot()
	assert.Len(t, mid[stageNew], 1)
	assert.Len(t, mid[stageContacted], 1)
	assert.Equal(t, stageContacted, mid[stageContacted][0].StageID)

	store.revertMove("lead-1", stageNew, stageContacted)
	after := store.Snapshot()

	assert.Len(t, after[stageNew], len(before[stageNew]))
	assert.Empty(t, after[stageContacted])
	for _, lead := range after[stageNew] {
		assert.Equal(t, stageNew, lead.StageID)
	}
}

func TestApplyMoveUnknownLead(t *testing.T) {
	gw := new(mockGateway)
	store := loadedStore(gw, leadAt("lead-1", "Acme Corp", stageNew))

	assert.False(t, store.applyMove("lead-missing", stageNew, stageContacted))
	assert.False(t, store.applyMove("lead-1", stageNew, "stage-missing"))
}
