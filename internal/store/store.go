package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/kiranshivaraju/vidforge/pkg/models"
)

var ErrNotFound = errors.New("resource not found")
var ErrDuplicateKey = errors.New("duplicate key violation")

// Store is the data access interface. All database operations go through here.
type Store interface {
	Ping(ctx context.Context) error

	CreateRun(ctx context.Context, run *models.Run) error
	GetRun(ctx context.Context, id uuid.UUID) (*models.Run, error)
	ListRuns(ctx context.Context, filter RunFilter) ([]*models.Run, int, error)
	UpdateRunStatus(ctx context.Context, id uuid.UUID, status string, opts ...RunUpdateOption) error
}

type RunFilter struct {
	Status string
	Page   int
	Limit  int
}

// RunUpdate collects the optional columns written by UpdateRunStatus.
type RunUpdate struct {
	ErrorCategory *string
	ErrorMessage  *string
	Result        *models.FinalResult
}

type RunUpdateOption func(*RunUpdate)

// ApplyRunUpdateOptions folds opts into a RunUpdate.
func ApplyRunUpdateOptions(opts ...RunUpdateOption) RunUpdate {
	var u RunUpdate
	for _, opt := range opts {
		opt(&u)
	}
	return u
}

func WithErrorMessage(msg string) RunUpdateOption {
	return func(p *RunUpdate) {
		p.ErrorMessage = &msg
	}
}

func WithErrorCategory(category string) RunUpdateOption {
	return func(p *RunUpdate) {
		p.ErrorCategory = &category
	}
}

// WithResult records the output locators of a completed run.
func WithResult(res models.FinalResult) RunUpdateOption {
	return func(p *RunUpdate) {
		p.Result = &res
	}
}
