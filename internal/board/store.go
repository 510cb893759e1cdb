package board

import (
	"context"
	"sync"

	"github.com/dfalmeida/pipeboard/internal/entity"
)

// StateStore holds the in-memory leads-per-stage view for the selected
// pipeline. It is a cache: rebuilt by Load, mutated only by the executor's
// optimistic apply/revert, and guarded against stale loads by a generation
// counter. All access is serialized behind the mutex.
type StateStore struct {
	gateway Gateway

	mu         sync.Mutex
	gen        uint64
	pipelineID string
	stageOrder []string
	leads      map[string][]*entity.Lead
	loaded     bool
}

func NewStateStore(gateway Gateway) *StateStore {
	return &StateStore{
		gateway: gateway,
		leads:   make(map[string][]*entity.Lead),
	}
}

// Load fetches every lead of the pipeline in one gateway call and replaces
// the mapping atomically, with every stage key present even when empty.
// If the selection changed (or Invalidate ran) while the fetch was in
// flight, the result is discarded and ErrStaleLoad returned: a stale load
// must never overwrite a newer one.
func (s *StateStore) Load(ctx context.Context, pipelineID string, stages []entity.Stage) error {
	s.mu.Lock()
	s.gen++
	gen := s.gen
	s.pipelineID = pipelineID
	s.mu.Unlock()

	fetched, err := s.gateway.FetchLeadsForPipeline(ctx, pipelineID)
	if err != nil {
		return err
	}

	grouped := make(map[string][]*entity.Lead, len(stages))
	order := make([]string, 0, len(stages))
	for _, st := range stages {
		grouped[st.ID] = []*entity.Lead{}
		order = append(order, st.ID)
	}
	for _, lead := range fetched {
		if _, ok := grouped[lead.StageID]; !ok {
			// lead points at a stage outside the current stage set;
			// leave it off the board rather than invent a column
			continue
		}
		grouped[lead.StageID] = append(grouped[lead.StageID], lead)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.gen != gen || s.pipelineID != pipelineID {
		return ErrStaleLoad
	}

	s.leads = grouped
	s.stageOrder = order
	s.loaded = true
	return nil
}

// Invalidate marks the mapping stale so the next Load always refetches,
// even for the same pipeline.
func (s *StateStore) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	s.loaded = false
}

func (s *StateStore) Loaded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loaded
}

// Snapshot returns a copy of the stage -> leads mapping safe to render
// or serialize while moves continue.
func (s *StateStore) Snapshot() map[string][]*entity.Lead {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[string][]*entity.Lead, len(s.leads))
	for stageID, list := range s.leads {
		cp := make([]*entity.Lead, len(list))
		copy(cp, list)
		out[stageID] = cp
	}
	return out
}

func (s *StateStore) StageOrder() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.stageOrder...)
}

// StageOf reports which stage currently owns the lead. Used by the drag
// controller to normalize card drops to their owning column.
func (s *StateStore) StageOf(leadID string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for stageID, list := range s.leads {
		for _, lead := range list {
			if lead.ID == leadID {
				return stageID, true
			}
		}
	}
	return "", false
}

func (s *StateStore) Lead(leadID string) (*entity.Lead, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, list := range s.leads {
		for _, lead := range list {
			if lead.ID == leadID {
				return lead, true
			}
		}
	}
	return nil, false
}

func (s *StateStore) hasStage(stageID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.leads[stageID]
	return ok
}

// applyMove removes the lead from the source column and appends it to the
// destination, rewriting its StageID. Synchronous: the caller sees the UI
// view updated before any network call starts.
func (s *StateStore) applyMove(leadID, fromStageID, toStageID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	from, ok := s.leads[fromStageID]
	if !ok {
		return false
	}
	if _, ok := s.leads[toStageID]; !ok {
		return false
	}

	for i, lead := range from {
		if lead.ID != leadID {
			continue
		}
		s.leads[fromStageID] = append(from[:i:i], from[i+1:]...)
		lead.StageID = toStageID
		s.leads[toStageID] = append(s.leads[toStageID], lead)
		return true
	}
	return false
}

// revertMove undoes applyMove after a failed persistence call: the lead
// goes back to the source column (append semantics) with its original
// StageID restored.
func (s *StateStore) revertMove(leadID, fromStageID, toStageID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	to, ok := s.leads[toStageID]
	if !ok {
		return
	}

	for i, lead := range to {
		if lead.ID != leadID {
			continue
		}
		s.leads[toStageID] = append(to[:i:i], to[i+1:]...)
		lead.StageID = fromStageID
		s.leads[fromStageID] = append(s.leads[fromStageID], lead)
		return
	}
}

// replaceLead swaps the in-memory record for the persisted one returned by
// the gateway, keeping its position in the column.
func (s *StateStore) replaceLead(updated *entity.Lead) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for stageID, list := range s.leads {
		for i, lead := range list {
			if lead.ID == updated.ID {
				s.leads[stageID][i] = updated
				return
			}
		}
	}
}
