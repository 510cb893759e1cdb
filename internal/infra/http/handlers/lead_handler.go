package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dfalmeida/pipeboard/internal/entity"
	"github.com/dfalmeida/pipeboard/internal/usecase"
)

type LeadHandler struct {
	CreateLeadUC *usecase.CreateLeadUseCase
	CloseLeadUC  *usecase.CloseLeadUseCase
	LeadRepo     entity.LeadRepositoryInterface
	rateLimiter  *RateLimiter
}

func NewLeadHandler(
	createLeadUC *usecase.CreateLeadUseCase,
	closeLeadUC *usecase.CloseLeadUseCase,
	leadRepo entity.LeadRepositoryInterface,
) *LeadHandler {
	return &LeadHandler{
		CreateLeadUC: createLeadUC,
		CloseLeadUC:  closeLeadUC,
		LeadRepo:     leadRepo,
		rateLimiter:  NewRateLimiter(10, time.Minute), // 10 req/min per IP
	}
}

func (h *LeadHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var input usecase.CreateLeadInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}

	lead, err := h.CreateLeadUC.Execute(r.Context(), input)
	if err != nil {
		writeUseCaseError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, lead)
}

// HandleCapture is the public web-form endpoint; rate limited per IP.
func (h *LeadHandler) HandleCapture(w http.ResponseWriter, r *http.Request) {
	if !h.rateLimiter.Allow(getClientIP(r)) {
		writeJSON(w, http.StatusTooManyRequests, map[string]any{
			"success": false,
			"message": "Too many requests. Please try again later.",
		})
		return
	}

	var input usecase.CreateLeadInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"success": false,
			"message": "Invalid JSON",
		})
		return
	}

	if _, err := h.CreateLeadUC.Execute(r.Context(), input); err != nil {
		status := http.StatusInternalServerError
		if usecase.IsDomainError(err) {
			status = http.StatusBadRequest
		}
		writeJSON(w, status, map[string]any{
			"success": false,
			"message": "Failed to capture lead",
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}

func (h *LeadHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	lead, err := h.LeadRepo.FindByID(r.Context(), chi.URLParam(r, "leadId"))
	if err != nil {
		if errors.Is(err, entity.ErrLeadNotFound) {
			http.Error(w, "lead not found", http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, lead)
}

type markSoldRequest struct {
	ValueCents int64  `json:"value_cents"`
	Notes      string `json:"notes,omitempty"`
}

func (h *LeadHandler) HandleMarkSold(w http.ResponseWriter, r *http.Request) {
	var req markSoldRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}

	lead, err := h.CloseLeadUC.MarkSold(r.Context(), chi.URLParam(r, "leadId"), req.ValueCents, req.Notes)
	if err != nil {
		writeUseCaseError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, lead)
}

type markLostRequest struct {
	ReasonCategory string `json:"reason_category"`
	Notes          string `json:"notes,omitempty"`
}

func (h *LeadHandler) HandleMarkLost(w http.ResponseWriter, r *http.Request) {
	var req markLostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}

	lead, err := h.CloseLeadUC.MarkLost(r.Context(), chi.URLParam(r, "leadId"), req.ReasonCategory, req.Notes)
	if err != nil {
		writeUseCaseError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, lead)
}

// HandleDelete hard-deletes a lead; admin action only.
func (h *LeadHandler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	err := h.LeadRepo.Delete(r.Context(), chi.URLParam(r, "leadId"))
	if err != nil {
		if errors.Is(err, entity.ErrLeadNotFound) {
			http.Error(w, "lead not found", http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func getClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		return xff
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	return r.RemoteAddr
}
