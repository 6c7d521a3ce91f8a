package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	RunStatusPending   = "pending"
	RunStatusRunning   = "running"
	RunStatusCompleted = "completed"
	RunStatusFailed    = "failed"
)

// Run tracks one asynchronous pipeline invocation. POST /api/v1/runs returns the run id;
// the client polls GET /api/v1/runs/{run_id} until status is completed or failed.
// Runs are not resumed after a restart.
type Run struct {
	ID            uuid.UUID  `db:"id"             json:"id"`
	Mode          InputMode  `db:"mode"           json:"mode"`
	Prompt        string     `db:"prompt"         json:"prompt"`
	SoundEnabled  bool       `db:"sound_enabled"  json:"sound_enabled"`
	Status        string     `db:"status"         json:"status"`
	VideoURL      *string    `db:"video_url"      json:"video_url,omitempty"`
	AudioURL      *string    `db:"audio_url"      json:"audio_url,omitempty"`
	Degraded      bool       `db:"degraded"       json:"degraded"`
	ErrorCategory *string    `db:"error_category" json:"error_category,omitempty"`
	ErrorMessage  *string    `db:"error_message"  json:"error_message,omitempty"`
	StartedAt     *time.Time `db:"started_at"     json:"started_at,omitempty"`
	CompletedAt   *time.Time `db:"completed_at"   json:"completed_at,omitempty"`
	CreatedAt     time.Time  `db:"created_at"     json:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at"     json:"updated_at"`
}
