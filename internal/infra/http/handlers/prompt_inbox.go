package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/google/uuid"

	"github.com/dfalmeida/pipeboard/internal/board"
	"github.com/dfalmeida/pipeboard/internal/infra/http/middleware"
)

var ErrPromptNotFound = errors.New("prompt not found or already resolved")

// PromptInbox is the server-side stand-in for modal dialogs: automation
// prompt requests park here until the client answers them through the
// API. Binding an inbox to a session registers handlers on the session's
// bridge, so a request suspends until Resolve delivers the user's answer
// (or dismissal). Each prompt resolves exactly once.
type PromptInbox struct {
	mu      sync.Mutex
	pending map[string]*pendingPrompt
}

type pendingPrompt struct {
	view    PromptView
	resolve chan json.RawMessage // nil payload = dismissed
}

type PromptView struct {
	ID         string `json:"id"`
	PipelineID string `json:"pipeline_id"`
	Kind       string `json:"kind"`
	Input      any    `json:"input"`
}

func NewPromptInbox() *PromptInbox {
	return &PromptInbox{pending: make(map[string]*pendingPrompt)}
}

// BindSession wires this inbox into the session's prompt bridge. The
// registrations live exactly as long as the session does.
func (i *PromptInbox) BindSession(session *board.Session) {
	pipelineID := session.Pipeline().ID
	bridge := session.Bridge()

	bridge.RegisterTaskPrompt(func(ctx context.Context, in board.TaskPromptInput) (*board.TaskPromptResult, error) {
		raw, err := i.await(ctx, pipelineID, "create_task", in)
		if err != nil || raw == nil {
			return nil, err
		}
		var res board.TaskPromptResult
		if err := json.Unmarshal(raw, &res); err != nil {
			return nil, err
		}
		return &res, nil
	})

	bridge.RegisterSalePrompt(func(ctx context.Context, in board.SalePromptInput) (*board.SalePromptResult, error) {
		raw, err := i.await(ctx, pipelineID, "mark_sold", in)
		if err != nil || raw == nil {
			return nil, err
		}
		var res board.SalePromptResult
		if err := json.Unmarshal(raw, &res); err != nil {
			return nil, err
		}
		return &res, nil
	})

	bridge.RegisterLossPrompt(func(ctx context.Context, in board.LossPromptInput) (*board.LossPromptResult, error) {
		raw, err := i.await(ctx, pipelineID, "mark_lost", in)
		if err != nil || raw == nil {
			return nil, err
		}
		var res board.LossPromptResult
		if err := json.Unmarshal(raw, &res); err != nil {
			return nil, err
		}
		return &res, nil
	})
}

// await parks a prompt and blocks until Resolve answers it. There is no
// timeout: a prompt waits for a human.
func (i *PromptInbox) await(ctx context.Context, pipelineID, kind string, input any) (json.RawMessage, error) {
	p := &pendingPrompt{
		view: PromptView{
			ID:         uuid.New().String(),
			PipelineID: pipelineID,
			Kind:       kind,
			Input:      input,
		},
		resolve: make(chan json.RawMessage, 1),
	}

	i.mu.Lock()
	i.pending[p.view.ID] = p
	i.mu.Unlock()

	defer func() {
		i.mu.Lock()
		delete(i.pending, p.view.ID)
		i.mu.Unlock()
	}()

	select {
	case raw := <-p.resolve:
		outcome := "answered"
		if raw == nil {
			outcome = "dismissed"
		}
		middleware.RecordPromptResolution(kind, outcome)
		return raw, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (i *PromptInbox) List(pipelineID string) []PromptView {
	i.mu.Lock()
	defer i.mu.Unlock()

	views := []PromptView{}
	for _, p := range i.pending {
		if pipelineID == "" || p.view.PipelineID == pipelineID {
			views = append(views, p.view)
		}
	}
	return views
}

// Resolve delivers the user's answer. A nil result is a dismissal: the
// automation action is abandoned with no side effect.
func (i *PromptInbox) Resolve(id string, result json.RawMessage) error {
	i.mu.Lock()
	p, ok := i.pending[id]
	if ok {
		delete(i.pending, id)
	}
	i.mu.Unlock()

	if !ok {
		return ErrPromptNotFound
	}

	if len(result) == 0 || string(result) == "null" {
		p.resolve <- nil
	} else {
		p.resolve <- result
	}
	return nil
}
