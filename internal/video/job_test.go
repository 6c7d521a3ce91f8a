package video_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/kiranshivaraju/vidforge/internal/video"
	"github.com/kiranshivaraju/vidforge/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- fakes ---

// scriptedClient returns one status per poll, in order.
type scriptedClient struct {
	mu        sync.Mutex
	submitErr error
	submitted []video.SubmitRequest
	statuses  []*video.Generation
	statusErr map[int]error // poll index (1-based) -> error
	polls     int
}

func (c *scriptedClient) Submit(_ context.Context, req video.SubmitRequest) (string, error) {
	if c.submitErr != nil {
		return "", c.submitErr
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.submitted = append(c.submitted, req)
	return "gen-123", nil
}

func (c *scriptedClient) Status(_ context.Context, id string) (*video.Generation, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.polls++
	if err, ok := c.statusErr[c.polls]; ok {
		return nil, err
	}
	if c.polls > len(c.statuses) {
		return &video.Generation{ID: id, State: "processing"}, nil
	}
	g := c.statuses[c.polls-1]
	g.ID = id
	return g, nil
}

func state(s string) *video.Generation {
	return &video.Generation{State: s}
}

func completed(url string) *video.Generation {
	g := &video.Generation{State: "completed"}
	g.Assets.Video = url
	return g
}

// fakeSleeper records requested sleeps without waiting.
type fakeSleeper struct {
	mu     sync.Mutex
	sleeps []time.Duration
	err    error
}

func (s *fakeSleeper) Sleep(ctx context.Context, d time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sleeps = append(s.sleeps, d)
	if s.err != nil {
		return s.err
	}
	return ctx.Err()
}

var testPrompt = models.EnhancedPrompt{Prompt: "a cat on a skateboard", AspectRatio: "16:9", Duration: 5}

func newJob(c video.Client, s video.Sleeper, attempts int) *video.Job {
	return video.NewJob(c,
		video.WithPollInterval(7*time.Second),
		video.WithMaxAttempts(attempts),
		video.WithSleeper(s),
	)
}

// --- tests ---

func TestRun_CompletesAfterThreePolls(t *testing.T) {
	c := &scriptedClient{statuses: []*video.Generation{
		state("processing"), state("processing"), completed("https://cdn/video.mp4"),
	}}
	s := &fakeSleeper{}

	handle, err := newJob(c, s, 60).Run(context.Background(), testPrompt, models.Keyframes{})
	require.NoError(t, err)

	assert.Equal(t, models.VideoCompleted, handle.State)
	assert.Equal(t, "https://cdn/video.mp4", handle.VideoURL)
	assert.Equal(t, "gen-123", handle.ID)
	assert.Equal(t, 3, c.polls)
	assert.Equal(t, 3, handle.Polls)
	assert.Equal(t, []time.Duration{7 * time.Second, 7 * time.Second}, s.sleeps)
}

func TestRun_TimesOutWithinBudget(t *testing.T) {
	c := &scriptedClient{}
	s := &fakeSleeper{}

	handle, err := newJob(c, s, 4).Run(context.Background(), testPrompt, models.Keyframes{})
	require.Error(t, err)

	assert.ErrorIs(t, err, video.ErrJobTimedOut)
	assert.NotErrorIs(t, err, video.ErrJobFailed)
	var te *video.TimeoutError
	require.ErrorAs(t, err, &te)
	assert.Equal(t, "gen-123", te.GenerationID)
	assert.Equal(t, 4, te.Attempts)

	assert.Equal(t, models.VideoTimedOut, handle.State)
	assert.Equal(t, 4, c.polls)
	assert.Len(t, s.sleeps, 3, "no sleep after the last attempt")
}

func TestRun_FailedStopsPolling(t *testing.T) {
	g := state("failed")
	g.FailureReason = "prompt rejected by moderation"
	c := &scriptedClient{statuses: []*video.Generation{state("pending"), g, completed("never")}}

	handle, err := newJob(c, &fakeSleeper{}, 60).Run(context.Background(), testPrompt, models.Keyframes{})

	assert.ErrorIs(t, err, video.ErrJobFailed)
	var fe *video.FailureError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "prompt rejected by moderation", fe.Reason)
	assert.Equal(t, 2, c.polls)
	assert.Equal(t, models.VideoFailed, handle.State)
	assert.Equal(t, "prompt rejected by moderation", handle.FailureReason)
}

func TestRun_FailedOnFirstPoll(t *testing.T) {
	c := &scriptedClient{statuses: []*video.Generation{state("failed")}}
	s := &fakeSleeper{}

	_, err := newJob(c, s, 60).Run(context.Background(), testPrompt, models.Keyframes{})

	var fe *video.FailureError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "unknown reason", fe.Reason)
	assert.Equal(t, 1, c.polls)
	assert.Empty(t, s.sleeps)
}

func TestRun_CompletedWithoutVideoIsFailure(t *testing.T) {
	c := &scriptedClient{statuses: []*video.Generation{state("completed")}}

	handle, err := newJob(c, &fakeSleeper{}, 60).Run(context.Background(), testPrompt, models.Keyframes{})

	assert.ErrorIs(t, err, video.ErrJobFailed)
	assert.Equal(t, models.VideoFailed, handle.State)
}

func TestRun_TransportErrorDuringPollIsNotRetried(t *testing.T) {
	c := &scriptedClient{
		statuses:  []*video.Generation{state("processing")},
		statusErr: map[int]error{2: &video.StatusError{Op: "status", StatusCode: 503}},
	}

	handle, err := newJob(c, &fakeSleeper{}, 60).Run(context.Background(), testPrompt, models.Keyframes{})

	assert.ErrorIs(t, err, video.ErrTransport)
	assert.Equal(t, 2, c.polls)
	assert.False(t, handle.State.Terminal())
}

func TestRun_SubmitErrorReturnsNoHandle(t *testing.T) {
	c := &scriptedClient{submitErr: &video.StatusError{Op: "submit", StatusCode: 401}}

	handle, err := newJob(c, &fakeSleeper{}, 60).Run(context.Background(), testPrompt, models.Keyframes{})

	assert.Nil(t, handle)
	assert.ErrorIs(t, err, video.ErrTransport)
	var se *video.StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, 401, se.StatusCode)
	assert.Equal(t, 0, c.polls)
}

func TestRun_CancelledDuringSleep(t *testing.T) {
	c := &scriptedClient{}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	handle, err := newJob(c, &fakeSleeper{}, 60).Run(ctx, testPrompt, models.Keyframes{})

	assert.ErrorIs(t, err, context.Canceled)
	assert.NotErrorIs(t, err, video.ErrJobTimedOut)
	assert.Equal(t, 1, c.polls)
	assert.False(t, handle.State.Terminal())
}

func TestRun_RealSleeperHonoursCancel(t *testing.T) {
	c := &scriptedClient{}
	j := video.NewJob(c, video.WithPollInterval(time.Hour))
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err := j.Run(ctx, testPrompt, models.Keyframes{})

	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Less(t, time.Since(start), 5*time.Second)
}

func TestRun_SendsKeyframes(t *testing.T) {
	c := &scriptedClient{statuses: []*video.Generation{completed("https://cdn/v.mp4")}}

	_, err := newJob(c, &fakeSleeper{}, 60).Run(context.Background(), testPrompt,
		models.Keyframes{Frame0: "https://i/first.png", Frame1: "https://i/last.png"})
	require.NoError(t, err)

	require.Len(t, c.submitted, 1)
	req := c.submitted[0]
	assert.Equal(t, "a cat on a skateboard", req.Prompt)
	assert.Equal(t, 5, req.DurationSeconds)
	assert.Equal(t, video.Keyframe{Type: "image", URL: "https://i/first.png"}, req.Keyframes["frame0"])
	assert.Equal(t, video.Keyframe{Type: "image", URL: "https://i/last.png"}, req.Keyframes["frame1"])
}

func TestRun_RejectsFrame1WithoutFrame0(t *testing.T) {
	c := &scriptedClient{}

	_, err := newJob(c, &fakeSleeper{}, 60).Run(context.Background(), testPrompt, models.Keyframes{Frame1: "https://i/x.png"})

	require.Error(t, err)
	assert.Empty(t, c.submitted)
}
