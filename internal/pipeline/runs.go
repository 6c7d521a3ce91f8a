package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/kiranshivaraju/vidforge/internal/cache"
	"github.com/kiranshivaraju/vidforge/internal/store"
	"github.com/kiranshivaraju/vidforge/pkg/models"
)

const runStatusTTL = 30 * time.Minute

// ErrShuttingDown is returned by Trigger once Wait has been called.
var ErrShuttingDown = errors.New("run service is shutting down")

// Submitter runs one pipeline invocation to completion.
type Submitter interface {
	Submit(ctx context.Context, req models.GenerationRequest) (*models.FinalResult, error)
}

// RunService executes pipeline invocations in the background and records their
// progress. Runs are bound to baseCtx and are not resumed after a restart.
type RunService struct {
	pipeline Submitter
	store    store.Store
	cache    cache.Cache
	timeout  time.Duration
	baseCtx  context.Context

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

// NewRunService creates a RunService. Cancelling baseCtx aborts every in-flight run.
func NewRunService(baseCtx context.Context, p Submitter, st store.Store, ca cache.Cache, timeout time.Duration) *RunService {
	return &RunService{
		pipeline: p,
		store:    st,
		cache:    ca,
		timeout:  timeout,
		baseCtx:  baseCtx,
	}
}

// Trigger validates req, records a pending run and starts it in a background goroutine.
// Returns the run immediately without waiting for the pipeline.
func (s *RunService) Trigger(ctx context.Context, req models.GenerationRequest) (*models.Run, error) {
	if err := req.Validate(); err != nil {
		return nil, Classify(err)
	}
	if s.isClosed() {
		return nil, shuttingDown()
	}

	now := time.Now().UTC()
	run := &models.Run{
		ID:           uuid.New(),
		Mode:         req.Input.Mode(),
		Prompt:       req.Prompt,
		SoundEnabled: req.SoundEnabled,
		Status:       models.RunStatusPending,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.store.CreateRun(ctx, run); err != nil {
		return nil, fmt.Errorf("creating run: %w", err)
	}

	_ = s.cache.SetRunStatus(ctx, run.ID, models.RunStatusPending, runStatusTTL)

	// Add and the closed check share the lock so Wait never races a new run.
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		pe := shuttingDown()
		s.fail(context.WithoutCancel(ctx), run.ID, pe)
		return nil, pe
	}
	s.wg.Add(1)
	s.mu.Unlock()

	go s.execute(run.ID, req)

	return run, nil
}

func (s *RunService) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func shuttingDown() *Error {
	return &Error{Category: CategoryCanceled, Message: "Server is shutting down", Err: ErrShuttingDown}
}

// Get returns the run with id. Finished runs are served from the cache when present;
// for unfinished runs the cached status wins over the stored one.
func (s *RunService) Get(ctx context.Context, id uuid.UUID) (*models.Run, error) {
	if raw, found, err := s.cache.Get(ctx, cache.RunSnapshotKey(id)); err == nil && found {
		var run models.Run
		if err := json.Unmarshal(raw, &run); err == nil {
			return &run, nil
		}
	}

	run, err := s.store.GetRun(ctx, id)
	if err != nil {
		return nil, err
	}

	if isFinished(run.Status) {
		if raw, err := json.Marshal(run); err == nil {
			_ = s.cache.Set(ctx, cache.RunSnapshotKey(id), raw, runStatusTTL)
		}
		return run, nil
	}

	if status, found, err := s.cache.GetRunStatus(ctx, id); err == nil && found {
		run.Status = status
	}
	return run, nil
}

// List returns a page of runs, newest first.
func (s *RunService) List(ctx context.Context, filter store.RunFilter) ([]*models.Run, int, error) {
	return s.store.ListRuns(ctx, filter)
}

// Wait stops accepting new runs and blocks until every started run has
// recorded its outcome.
func (s *RunService) Wait() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()

	s.wg.Wait()
}

// execute runs the pipeline for one run. It recovers from panics and always
// marks the run as completed or failed.
func (s *RunService) execute(runID uuid.UUID, req models.GenerationRequest) {
	defer s.wg.Done()

	ctx, cancel := context.WithTimeout(s.baseCtx, s.timeout)
	defer cancel()

	// Bookkeeping must survive cancellation of the run itself.
	bg := context.WithoutCancel(ctx)

	defer func() {
		if r := recover(); r != nil {
			slog.Error("panic in pipeline run", "error", r, "run_id", runID)
			s.fail(bg, runID, &Error{
				Category: CategoryInternal,
				Message:  "Processing error",
				Err:      fmt.Errorf("panic: %v", r),
			})
		}
	}()

	// Mark as running
	if err := s.store.UpdateRunStatus(bg, runID, models.RunStatusRunning); err != nil {
		slog.Error("marking run as running", "run_id", runID, "error", err)
	}
	_ = s.cache.SetRunStatus(bg, runID, models.RunStatusRunning, runStatusTTL)

	result, err := s.pipeline.Submit(ctx, req)
	if err != nil {
		s.fail(bg, runID, Classify(err))
		return
	}

	if err := s.store.UpdateRunStatus(bg, runID, models.RunStatusCompleted, store.WithResult(*result)); err != nil {
		slog.Error("recording run result", "run_id", runID, "error", err)
	}
	_ = s.cache.SetRunStatus(bg, runID, models.RunStatusCompleted, runStatusTTL)

	slog.Info("run completed", "run_id", runID, "degraded", result.Degraded)
}

func (s *RunService) fail(ctx context.Context, runID uuid.UUID, pe *Error) {
	slog.Warn("run failed", "run_id", runID, "category", pe.Category, "error", pe.Err)

	if err := s.store.UpdateRunStatus(ctx, runID, models.RunStatusFailed,
		store.WithErrorCategory(string(pe.Category)),
		store.WithErrorMessage(pe.Message)); err != nil {
		slog.Error("recording run failure", "run_id", runID, "error", err)
	}
	_ = s.cache.SetRunStatus(ctx, runID, models.RunStatusFailed, runStatusTTL)
}

func isFinished(status string) bool {
	return status == models.RunStatusCompleted || status == models.RunStatusFailed
}
