package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/kiranshivaraju/vidforge/internal/api/response"
	"github.com/kiranshivaraju/vidforge/internal/store"
	"github.com/kiranshivaraju/vidforge/pkg/models"
)

// RunService defines the interface the run handlers depend on.
type RunService interface {
	Trigger(ctx context.Context, req models.GenerationRequest) (*models.Run, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Run, error)
	List(ctx context.Context, filter store.RunFilter) ([]*models.Run, int, error)
}

type triggerResponse struct {
	RunID  uuid.UUID `json:"run_id"`
	Status string    `json:"status"`
}

// NewTriggerRunHandler returns an http.HandlerFunc for POST /api/v1/runs.
func NewTriggerRunHandler(svc RunService, maxUploadBytes int64) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		req, err := parseGenerationRequest(w, r, maxUploadBytes)
		if err != nil {
			writeRequestError(w, err)
			return
		}

		run, err := svc.Trigger(r.Context(), req)
		if err != nil {
			writePipelineError(w, r, err)
			return
		}

		response.Accepted(w, "/api/v1/runs/"+run.ID.String(), triggerResponse{RunID: run.ID, Status: run.Status})
	}
}

// NewGetRunHandler returns an http.HandlerFunc for GET /api/v1/runs/{runID}.
func NewGetRunHandler(svc RunService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "runID"))
		if err != nil {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST", "run id must be a UUID", nil)
			return
		}

		run, err := svc.Get(r.Context(), id)
		if errors.Is(err, store.ErrNotFound) {
			response.Error(w, http.StatusNotFound, "NOT_FOUND", "Run not found", nil)
			return
		}
		if err != nil {
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An unexpected error occurred", nil)
			return
		}

		response.JSON(w, run)
	}
}

var listableStatuses = map[string]bool{
	"":                        true,
	models.RunStatusPending:   true,
	models.RunStatusRunning:   true,
	models.RunStatusCompleted: true,
	models.RunStatusFailed:    true,
}

// NewListRunsHandler returns an http.HandlerFunc for GET /api/v1/runs.
func NewListRunsHandler(svc RunService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		status := q.Get("status")
		if !listableStatuses[status] {
			response.Error(w, http.StatusBadRequest, "INVALID_REQUEST",
				"status must be one of pending, running, completed, failed", nil)
			return
		}

		page := queryInt(q.Get("page"), 1)
		limit := queryInt(q.Get("limit"), 20)
		if page < 1 {
			page = 1
		}
		if limit < 1 || limit > 100 {
			limit = 20
		}

		runs, total, err := svc.List(r.Context(), store.RunFilter{Status: status, Page: page, Limit: limit})
		if err != nil {
			response.Error(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An unexpected error occurred", nil)
			return
		}

		response.Collection(w, runs, response.PaginationMeta{
			Page:    page,
			Limit:   limit,
			Total:   total,
			HasNext: page*limit < total,
		})
	}
}

func queryInt(v string, def int) int {
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
