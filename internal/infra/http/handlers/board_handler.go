package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dfalmeida/pipeboard/internal/board"
	"github.com/dfalmeida/pipeboard/internal/entity"
	"github.com/dfalmeida/pipeboard/internal/infra/http/middleware"
	"github.com/dfalmeida/pipeboard/internal/usecase"
)

type BoardHandler struct {
	Service *usecase.BoardService
	Inbox   *PromptInbox
}

func NewBoardHandler(service *usecase.BoardService, inbox *PromptInbox) *BoardHandler {
	return &BoardHandler{Service: service, Inbox: inbox}
}

type boardResponse struct {
	Pipeline   *entity.Pipeline          `json:"pipeline"`
	StageOrder []string                  `json:"stage_order"`
	Columns    map[string][]*entity.Lead `json:"columns"`
}

type moveRequest struct {
	LeadID       string `json:"lead_id"`
	OverTargetID string `json:"over_target_id"`
}

type confirmRequest struct {
	LeadID string `json:"lead_id"`
	Notes  string `json:"notes"`
}

type cancelRequest struct {
	LeadID string `json:"lead_id"`
}

func (h *BoardHandler) HandleOpen(w http.ResponseWriter, r *http.Request) {
	pipelineID := chi.URLParam(r, "pipelineId")

	session, err := h.Service.Open(r.Context(), pipelineID)
	if err != nil {
		writeUseCaseError(w, err)
		return
	}

	h.Inbox.BindSession(session)
	middleware.RecordBoardLoad()
	writeJSON(w, http.StatusOK, boardResponse{
		Pipeline:   session.Pipeline(),
		StageOrder: session.StageOrder(),
		Columns:    session.Board(),
	})
}

func (h *BoardHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	pipelineID := chi.URLParam(r, "pipelineId")

	session, ok := h.Service.Session(pipelineID)
	if !ok {
		http.Error(w, "board not open", http.StatusNotFound)
		return
	}

	writeJSON(w, http.StatusOK, boardResponse{
		Pipeline:   session.Pipeline(),
		StageOrder: session.StageOrder(),
		Columns:    session.Board(),
	})
}

func (h *BoardHandler) HandleMove(w http.ResponseWriter, r *http.Request) {
	pipelineID := chi.URLParam(r, "pipelineId")

	var req moveRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}

	result, err := h.Service.Move(r.Context(), pipelineID, req.LeadID, req.OverTargetID)
	if err != nil {
		if errors.Is(err, board.ErrMoveInFlight) {
			middleware.RecordLeadMove("rejected_in_flight")
			http.Error(w, err.Error(), http.StatusConflict)
			return
		}
		writeUseCaseError(w, err)
		return
	}

	middleware.RecordLeadMove(string(result.State))
	writeJSON(w, http.StatusOK, result)
}

func (h *BoardHandler) HandleConfirm(w http.ResponseWriter, r *http.Request) {
	pipelineID := chi.URLParam(r, "pipelineId")

	var req confirmRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}

	result, err := h.Service.Confirm(r.Context(), pipelineID, req.LeadID, req.Notes)
	if err != nil {
		if errors.Is(err, board.ErrMoveInFlight) {
			http.Error(w, err.Error(), http.StatusConflict)
			return
		}
		if errors.Is(err, entity.ErrLeadNotFound) {
			http.Error(w, "no pending move for this lead", http.StatusNotFound)
			return
		}
		writeUseCaseError(w, err)
		return
	}

	middleware.RecordLeadMove(string(result.State))
	writeJSON(w, http.StatusOK, result)
}

func (h *BoardHandler) HandleCancel(w http.ResponseWriter, r *http.Request) {
	pipelineID := chi.URLParam(r, "pipelineId")

	var req cancelRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}

	if !h.Service.Cancel(pipelineID, req.LeadID) {
		http.Error(w, "no pending move for this lead", http.StatusNotFound)
		return
	}
	middleware.RecordLeadMove("cancelled")
	w.WriteHeader(http.StatusNoContent)
}

// HandleClose retires a board session. Automation parked on an
// unanswered prompt is cancelled rather than waited on.
func (h *BoardHandler) HandleClose(w http.ResponseWriter, r *http.Request) {
	pipelineID := chi.URLParam(r, "pipelineId")
	h.Service.Close(pipelineID)
	w.WriteHeader(http.StatusNoContent)
}

func (h *BoardHandler) HandleListPrompts(w http.ResponseWriter, r *http.Request) {
	pipelineID := chi.URLParam(r, "pipelineId")
	writeJSON(w, http.StatusOK, h.Inbox.List(pipelineID))
}

type resolvePromptRequest struct {
	Result json.RawMessage `json:"result"`
}

func (h *BoardHandler) HandleResolvePrompt(w http.ResponseWriter, r *http.Request) {
	promptID := chi.URLParam(r, "promptId")

	var req resolvePromptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.Inbox.Resolve(promptID, req.Result); err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeUseCaseError(w http.ResponseWriter, err error) {
	if usecase.IsDomainError(err) {
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	http.Error(w, err.Error(), http.StatusInternalServerError)
}
