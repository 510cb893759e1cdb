package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dfalmeida/pipeboard/internal/entity"
)

type PipelineHandler struct {
	PipelineRepo entity.PipelineRepositoryInterface
}

func NewPipelineHandler(pipelineRepo entity.PipelineRepositoryInterface) *PipelineHandler {
	return &PipelineHandler{PipelineRepo: pipelineRepo}
}

type createPipelineRequest struct {
	AccountID         string   `json:"account_id"`
	Name              string   `json:"name"`
	Stages            []string `json:"stages"`
	RequireStageNotes bool     `json:"require_stage_notes"`
}

func (h *PipelineHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var req createPipelineRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}

	pipeline, err := entity.NewPipeline(req.AccountID, req.Name, req.Stages)
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}
	pipeline.RequireStageNotes = req.RequireStageNotes

	if err := h.PipelineRepo.Create(r.Context(), pipeline); err != nil {
		http.Error(w, "failed to create pipeline: "+err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, pipeline)
}

func (h *PipelineHandler) HandleList(w http.ResponseWriter, r *http.Request) {
	accountID := r.URL.Query().Get("account_id")
	if accountID == "" {
		http.Error(w, "account_id is required", http.StatusBadRequest)
		return
	}

	pipelines, err := h.PipelineRepo.FindByAccount(r.Context(), accountID)
	if err != nil {
		if errors.Is(err, entity.ErrPipelineNotFound) {
			writeJSON(w, http.StatusOK, []*entity.Pipeline{})
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, pipelines)
}
