package httpx

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/tailfin-labs/tailfin/internal/core"
	"github.com/tailfin-labs/tailfin/internal/domain/model"
	"github.com/tailfin-labs/tailfin/internal/service"
)

// JobHandlers provides HTTP handlers for job management. Every mutation runs
// through the reconciler so the upstream subscription tracks the change.
type JobHandlers struct {
	reconciler *service.Reconciler
	jobs       core.JobRepository
	logger     *slog.Logger
}

// JobHandlersOptions configures JobHandlers.
type JobHandlersOptions struct {
	Reconciler *service.Reconciler
	Jobs       core.JobRepository
	Logger     *slog.Logger
}

// NewJobHandlers constructs JobHandlers.
func NewJobHandlers(opts JobHandlersOptions) *JobHandlers {
	return &JobHandlers{
		reconciler: opts.Reconciler,
		jobs:       opts.Jobs,
		logger:     opts.Logger.With("component", "job_handlers"),
	}
}

// Create handles POST /api/jobs.
func (h *JobHandlers) Create(w http.ResponseWriter, r *http.Request) {
	var req model.CreateJobRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	job, err := h.reconciler.CreateJob(r.Context(), &req)
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusCreated, job)
}

// List handles GET /api/jobs?user_id=...
func (h *JobHandlers) List(w http.ResponseWriter, r *http.Request) {
	userID := r.URL.Query().Get("user_id")
	if userID == "" {
		WriteError(w, ErrorParams{Code: http.StatusBadRequest, ErrCode: "missing_user_id",
			Err: errors.New("user_id query parameter is required")})
		return
	}

	jobs, err := h.jobs.List(r.Context(), userID)
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, map[string]any{"jobs": jobs})
}

// Get handles GET /api/jobs/{id}.
func (h *JobHandlers) Get(w http.ResponseWriter, r *http.Request) {
	job, err := h.jobs.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		WriteAppError(w, err)
		return
	}
	WriteJSON(w, http.StatusOK, job)
}

// Delete handles DELETE /api/jobs/{id}.
func (h *JobHandlers) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.reconciler.DeleteJob(r.Context(), r.PathValue("id")); err != nil {
		WriteAppError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type setStatusRequest struct {
	Status model.JobStatus `json:"status"`
}

// SetStatus handles POST /api/jobs/{id}/status to pause or resume a job.
func (h *JobHandlers) SetStatus(w http.ResponseWriter, r *http.Request) {
	var req setStatusRequest
	if !DecodeJSON(w, r, &req) {
		return
	}

	if err := h.reconciler.SetJobStatus(r.Context(), r.PathValue("id"), req.Status); err != nil {
		WriteAppError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
