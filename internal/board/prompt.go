package board

import (
	"context"
	"sync"
)

// Prompt inputs and results. A nil result means the user dismissed the
// dialog; that is a normal outcome, never an error.

type TaskPromptInput struct {
	LeadID         string `json:"lead_id"`
	LeadName       string `json:"lead_name"`
	DefaultTitle   string `json:"default_title"`
	DefaultDueDate string `json:"default_due_date"`
	DefaultDueTime string `json:"default_due_time"`
}

type TaskPromptResult struct {
	Title   string `json:"title"`
	DueDate string `json:"due_date"`
	DueTime string `json:"due_time"`
}

type SalePromptInput struct {
	LeadID              string `json:"lead_id"`
	LeadName            string `json:"lead_name"`
	EstimatedValueCents int64  `json:"estimated_value_cents"`
}

type SalePromptResult struct {
	ValueCents int64  `json:"value_cents"`
	Notes      string `json:"notes,omitempty"`
}

type LossPromptInput struct {
	LeadID   string `json:"lead_id"`
	LeadName string `json:"lead_name"`
}

type LossPromptResult struct {
	ReasonCategory string `json:"reason_category"`
	Notes          string `json:"notes,omitempty"`
}

type (
	TaskPromptHandler func(ctx context.Context, in TaskPromptInput) (*TaskPromptResult, error)
	SalePromptHandler func(ctx context.Context, in SalePromptInput) (*SalePromptResult, error)
	LossPromptHandler func(ctx context.Context, in LossPromptInput) (*LossPromptResult, error)

	// CompletionHandler tells the host a rule finished applying its
	// effect, so it can invalidate and reload the board.
	CompletionHandler func(leadID string)
)

// Bridge connects the automation evaluator, which has no UI, to whatever
// surface is currently able to show a dialog. It belongs to one board
// session: handlers registered on it die with the session, rather than
// lingering in process-wide state. Last registration per kind wins.
//
// A request with no registered handler resolves immediately to nil, so
// the evaluator never blocks on a missing UI.
type Bridge struct {
	mu         sync.RWMutex
	task       TaskPromptHandler
	sale       SalePromptHandler
	loss       LossPromptHandler
	completion CompletionHandler
}

func NewBridge() *Bridge {
	return &Bridge{}
}

func (b *Bridge) RegisterTaskPrompt(h TaskPromptHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.task = h
}

func (b *Bridge) RegisterSalePrompt(h SalePromptHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.sale = h
}

func (b *Bridge) RegisterLossPrompt(h LossPromptHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.loss = h
}

func (b *Bridge) RegisterCompletionHandler(h CompletionHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.completion = h
}

func (b *Bridge) RequestTaskPrompt(ctx context.Context, in TaskPromptInput) (*TaskPromptResult, error) {
	b.mu.RLock()
	h := b.task
	b.mu.RUnlock()
	if h == nil {
		return nil, nil
	}
	return h(ctx, in)
}

func (b *Bridge) RequestSalePrompt(ctx context.Context, in SalePromptInput) (*SalePromptResult, error) {
	b.mu.RLock()
	h := b.sale
	b.mu.RUnlock()
	if h == nil {
		return nil, nil
	}
	return h(ctx, in)
}

func (b *Bridge) RequestLossPrompt(ctx context.Context, in LossPromptInput) (*LossPromptResult, error) {
	b.mu.RLock()
	h := b.loss
	b.mu.RUnlock()
	if h == nil {
		return nil, nil
	}
	return h(ctx, in)
}

func (b *Bridge) NotifyCompletion(leadID string) {
	b.mu.RLock()
	h := b.completion
	b.mu.RUnlock()
	if h != nil {
		h(leadID)
	}
}
