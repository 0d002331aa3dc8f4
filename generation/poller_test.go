package generation

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"pgregory.net/rapid"

	"github.com/BaSui01/creativeflow/types"
)

// scriptedFetcher 按序返回状态，末尾后停留在最后一个状态
type scriptedFetcher struct {
	mu       sync.Mutex
	statuses map[string][]JobStatus
	calls    map[string]int
	err      error
}

func newScriptedFetcher() *scriptedFetcher {
	return &scriptedFetcher{statuses: map[string][]JobStatus{}, calls: map[string]int{}}
}

func (f *scriptedFetcher) script(id string, s ...JobStatus) *scriptedFetcher {
	f.statuses[id] = s
	return f
}

func (f *scriptedFetcher) GetJobStatus(_ context.Context, id string) (*Job, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := f.calls[id]
	f.calls[id] = n + 1
	if f.err != nil {
		return nil, f.err
	}
	seq, ok := f.statuses[id]
	if !ok {
		return nil, types.NewJobNotFoundError(id)
	}
	if n >= len(seq) {
		n = len(seq) - 1
	}
	job := &Job{ID: id, Provider: "fake", Status: seq[n]}
	if job.Status == StatusFailed {
		job.Error = "model refused"
	}
	return job, nil
}

func (f *scriptedFetcher) count(id string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[id]
}

type recordingObserver struct {
	mu       sync.Mutex
	polls    []string
	attempts []int
	jobs     []string
}

func (o *recordingObserver) ObserveAttempt(string, string, string, string, time.Duration) {}

func (o *recordingObserver) ObserveJob(_ string, _ types.ContentType, status string, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.jobs = append(o.jobs, status)
}

func (o *recordingObserver) ObservePoll(_ string, outcome string, attempts int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.polls = append(o.polls, outcome)
	o.attempts = append(o.attempts, attempts)
}

var fastPoll = PollOptions{Interval: time.Millisecond, MaxAttempts: 5}

func TestPoller_CompletesAfterProcessing(t *testing.T) {
	f := newScriptedFetcher().script("j1", StatusPending, StatusProcessing, StatusProcessing, StatusCompleted)
	obs := &recordingObserver{}
	p := NewPoller(f, "fake", zaptest.NewLogger(t), obs)

	job, err := p.PollToCompletion(context.Background(), "j1", fastPoll)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, job.Status)
	assert.Equal(t, 4, f.count("j1"))
	assert.Equal(t, []string{"completed"}, obs.polls)
	assert.Equal(t, []int{4}, obs.attempts)
}

func TestPoller_TimeoutAfterExactlyMaxAttempts(t *testing.T) {
	f := newScriptedFetcher().script("slow", StatusProcessing)
	p := NewPoller(f, "fake", nil, nil)

	start := time.Now()
	job, err := p.PollToCompletion(context.Background(), "slow", PollOptions{Interval: 20 * time.Millisecond, MaxAttempts: 3})
	elapsed := time.Since(start)

	assert.Nil(t, job)
	e, ok := types.AsError(err)
	require.True(t, ok)
	assert.Equal(t, types.ErrPollingTimeout, e.Code)
	assert.Equal(t, 3, e.Attempts)
	assert.Equal(t, "slow", e.JobID)
	assert.Equal(t, 3, f.count("slow"))
	// 两次间隔，最后一次查询后不再等待
	assert.GreaterOrEqual(t, elapsed, 40*time.Millisecond)
	assert.Less(t, elapsed, 2*time.Second)
}

func TestPoller_FailedAndCancelled(t *testing.T) {
	f := newScriptedFetcher().
		script("bad", StatusProcessing, StatusFailed).
		script("gone", StatusCancelled)
	p := NewPoller(f, "fake", nil, nil)

	job, err := p.PollToCompletion(context.Background(), "bad", fastPoll)
	require.NotNil(t, job)
	assert.Equal(t, StatusFailed, job.Status)
	e, ok := types.AsError(err)
	require.True(t, ok)
	assert.Equal(t, types.ErrJobFailed, e.Code)
	assert.Equal(t, "model refused", e.Message)

	job, err = p.PollToCompletion(context.Background(), "gone", fastPoll)
	require.NotNil(t, job)
	assert.True(t, types.IsErrorCode(err, types.ErrJobCancelled))
	assert.Equal(t, 1, f.count("gone"))
}

func TestPoller_FetchErrorPropagates(t *testing.T) {
	p := NewPoller(newScriptedFetcher(), "fake", nil, nil)
	_, err := p.PollToCompletion(context.Background(), "missing", fastPoll)
	assert.True(t, types.IsJobNotFound(err))

	f := newScriptedFetcher().script("x", StatusPending)
	f.err = types.NewRateLimitError("slow down", 0)
	_, err = NewPoller(f, "fake", nil, nil).PollToCompletion(context.Background(), "x", fastPoll)
	assert.True(t, types.IsRateLimitError(err))
	assert.Equal(t, 1, f.count("x"))
}

func TestPoller_EmptyID(t *testing.T) {
	f := newScriptedFetcher()
	_, err := NewPoller(f, "fake", nil, nil).PollToCompletion(context.Background(), "", fastPoll)
	assert.True(t, types.IsValidationError(err))
	assert.Empty(t, f.calls)
}

func TestPoller_ContextCancelledWhileWaiting(t *testing.T) {
	f := newScriptedFetcher().script("j", StatusProcessing)
	obs := &recordingObserver{}
	p := NewPoller(f, "fake", nil, obs)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := p.PollToCompletion(ctx, "j", PollOptions{Interval: time.Hour, MaxAttempts: 10})
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 1, f.count("j"))
	assert.Equal(t, []string{"cancelled"}, obs.polls)
}

func TestPoller_IgnoresStatusRegression(t *testing.T) {
	f := newScriptedFetcher().script("j", StatusProcessing, StatusPending, StatusCompleted)
	job, err := NewPoller(f, "fake", zaptest.NewLogger(t), nil).PollToCompletion(context.Background(), "j", fastPoll)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, job.Status)
}

func TestPoller_DefaultsApplied(t *testing.T) {
	f := newScriptedFetcher().script("j", StatusCompleted)
	job, err := NewPoller(f, "fake", nil, nil).PollToCompletion(context.Background(), "j", PollOptions{})
	require.NoError(t, err)
	assert.Equal(t, "j", job.ID)
}

func TestPoller_PollAll(t *testing.T) {
	f := newScriptedFetcher().
		script("a", StatusProcessing, StatusCompleted).
		script("b", StatusCompleted).
		script("c", StatusPending, StatusProcessing, StatusCompleted)
	p := NewPoller(f, "fake", nil, nil)

	jobs, err := p.PollAll(context.Background(), []string{"a", "b", "c"}, fastPoll)
	require.NoError(t, err)
	require.Len(t, jobs, 3)
	for i, id := range []string{"a", "b", "c"} {
		assert.Equal(t, id, jobs[i].ID)
		assert.Equal(t, StatusCompleted, jobs[i].Status)
	}
}

func TestPoller_PollAllFailsFast(t *testing.T) {
	f := newScriptedFetcher().
		script("ok", StatusProcessing).
		script("bad", StatusFailed)
	p := NewPoller(f, "fake", nil, nil)

	jobs, err := p.PollAll(context.Background(), []string{"ok", "bad"}, PollOptions{Interval: time.Hour, MaxAttempts: 100})
	assert.Nil(t, jobs)
	assert.True(t, types.IsErrorCode(err, types.ErrJobFailed))
}

// 对任意 k < MaxAttempts 个非终态后跟 completed，恰好查询 k+1 次
func TestPoller_AttemptCountProperty(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		maxAttempts := rapid.IntRange(1, 8).Draw(rt, "max")
		k := rapid.IntRange(0, 10).Draw(rt, "pending")
		seq := make([]JobStatus, 0, k+1)
		for i := 0; i < k; i++ {
			seq = append(seq, StatusProcessing)
		}
		seq = append(seq, StatusCompleted)
		f := newScriptedFetcher().script("j", seq...)

		_, err := NewPoller(f, "fake", nil, nil).PollToCompletion(context.Background(), "j",
			PollOptions{Interval: time.Microsecond, MaxAttempts: maxAttempts})
		if k < maxAttempts {
			if err != nil || f.count("j") != k+1 {
				rt.Fatalf("k=%d max=%d: err=%v calls=%d", k, maxAttempts, err, f.count("j"))
			}
			return
		}
		if !types.IsPollingTimeout(err) || f.count("j") != maxAttempts {
			rt.Fatalf("k=%d max=%d: expected timeout after %d calls, got err=%v calls=%d",
				k, maxAttempts, maxAttempts, err, f.count("j"))
		}
	})
}

func TestPoller_CallerErrorIsNotWrapped(t *testing.T) {
	sentinel := errors.New("boom")
	f := newScriptedFetcher().script("j", StatusPending)
	f.err = sentinel
	_, err := NewPoller(f, "fake", nil, nil).PollToCompletion(context.Background(), "j", fastPoll)
	assert.ErrorIs(t, err, sentinel)
}
