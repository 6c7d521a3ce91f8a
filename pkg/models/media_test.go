package models_test

import (
	"testing"

	"github.com/kiranshivaraju/vidforge/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var allVideoStates = []models.VideoState{
	models.VideoSubmitted,
	models.VideoProcessing,
	models.VideoCompleted,
	models.VideoFailed,
	models.VideoTimedOut,
}

func TestVideoJob_TerminalStatesNeverChange(t *testing.T) {
	for _, from := range []models.VideoState{models.VideoCompleted, models.VideoFailed, models.VideoTimedOut} {
		for _, to := range allVideoStates {
			t.Run(string(from)+"->"+string(to), func(t *testing.T) {
				job := &models.VideoJob{ID: "gen-1", State: from}

				require.Error(t, job.Transition(to))
				assert.Equal(t, from, job.State)
				assert.True(t, job.State.Terminal())
			})
		}
	}
}

func TestVideoJob_Transitions(t *testing.T) {
	cases := []struct {
		from models.VideoState
		to   models.VideoState
		ok   bool
	}{
		{models.VideoSubmitted, models.VideoSubmitted, false},
		{models.VideoSubmitted, models.VideoProcessing, true},
		{models.VideoSubmitted, models.VideoCompleted, true},
		{models.VideoSubmitted, models.VideoFailed, true},
		{models.VideoSubmitted, models.VideoTimedOut, true},
		{models.VideoProcessing, models.VideoSubmitted, false},
		{models.VideoProcessing, models.VideoProcessing, true},
		{models.VideoProcessing, models.VideoCompleted, true},
		{models.VideoProcessing, models.VideoFailed, true},
		{models.VideoProcessing, models.VideoTimedOut, true},
	}

	for _, tc := range cases {
		t.Run(string(tc.from)+"->"+string(tc.to), func(t *testing.T) {
			job := &models.VideoJob{ID: "gen-1", State: tc.from}

			err := job.Transition(tc.to)
			if tc.ok {
				require.NoError(t, err)
				assert.Equal(t, tc.to, job.State)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tc.from, job.State)
		})
	}
}

func TestNewVideoJob_StartsSubmitted(t *testing.T) {
	job := models.NewVideoJob("gen-1")

	assert.Equal(t, "gen-1", job.ID)
	assert.Equal(t, models.VideoSubmitted, job.State)
	assert.False(t, job.State.Terminal())
}

func TestAudioResult_Absent(t *testing.T) {
	assert.True(t, models.NoAudio.Absent())
	assert.False(t, models.AudioResult{Path: "/tmp/a.mp3"}.Absent())
}
