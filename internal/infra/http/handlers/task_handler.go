package handlers

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dfalmeida/pipeboard/internal/entity"
	"github.com/dfalmeida/pipeboard/internal/usecase"
)

type TaskHandler struct {
	CreateTaskUC *usecase.CreateTaskUseCase
	TaskRepo     entity.TaskRepositoryInterface
}

func NewTaskHandler(createTaskUC *usecase.CreateTaskUseCase, taskRepo entity.TaskRepositoryInterface) *TaskHandler {
	return &TaskHandler{CreateTaskUC: createTaskUC, TaskRepo: taskRepo}
}

func (h *TaskHandler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var input usecase.CreateTaskInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}

	task, err := h.CreateTaskUC.Execute(r.Context(), input)
	if err != nil {
		writeUseCaseError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, task)
}

func (h *TaskHandler) HandleListByLead(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.TaskRepo.FindByLead(r.Context(), chi.URLParam(r, "leadId"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if tasks == nil {
		tasks = []*entity.Task{}
	}
	writeJSON(w, http.StatusOK, tasks)
}

func (h *TaskHandler) HandleComplete(w http.ResponseWriter, r *http.Request) {
	err := h.TaskRepo.MarkDone(r.Context(), chi.URLParam(r, "taskId"))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			http.Error(w, "task not found", http.StatusNotFound)
			return
		}
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
