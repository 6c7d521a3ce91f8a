package models

import "fmt"

// VideoState is the lifecycle state of a remote video generation.
type VideoState string

const (
	VideoSubmitted  VideoState = "submitted"
	VideoProcessing VideoState = "processing"
	VideoCompleted  VideoState = "completed"
	VideoFailed     VideoState = "failed"
	VideoTimedOut   VideoState = "timed_out"
)

// Terminal reports whether no further transition can happen from s.
func (s VideoState) Terminal() bool {
	return s == VideoCompleted || s == VideoFailed || s == VideoTimedOut
}

var videoTransitions = map[VideoState][]VideoState{
	VideoSubmitted:  {VideoProcessing, VideoCompleted, VideoFailed, VideoTimedOut},
	VideoProcessing: {VideoProcessing, VideoCompleted, VideoFailed, VideoTimedOut},
}

// VideoJob is the handle of one remote generation. It is owned by the pipeline
// invocation that submitted it and is never shared.
type VideoJob struct {
	ID            string     `json:"id"`
	State         VideoState `json:"state"`
	VideoURL      string     `json:"video_url,omitempty"`
	FailureReason string     `json:"failure_reason,omitempty"`
	Polls         int        `json:"polls"`
}

// NewVideoJob returns a handle in the Submitted state.
func NewVideoJob(id string) *VideoJob {
	return &VideoJob{ID: id, State: VideoSubmitted}
}

// Transition moves the job to state to. Terminal states never change.
func (j *VideoJob) Transition(to VideoState) error {
	for _, allowed := range videoTransitions[j.State] {
		if allowed == to {
			j.State = to
			return nil
		}
	}
	return fmt.Errorf("invalid video job transition: %s -> %s", j.State, to)
}

// AudioResult is the outcome of sound-effect generation. A zero value means
// audio is absent, which consumers treat as a degrade signal and not an error.
type AudioResult struct {
	Path string
}

// Absent reports whether no audio was produced.
func (a AudioResult) Absent() bool { return a.Path == "" }

// NoAudio is the explicit absent marker.
var NoAudio = AudioResult{}

// FinalResult is the pipeline output handed back to the adapter.
type FinalResult struct {
	VideoURL string `json:"video_url"`
	// AudioURL is set only when audio was generated and muxed successfully.
	AudioURL string `json:"audio_url,omitempty"`
	Degraded bool   `json:"degraded"`
}
