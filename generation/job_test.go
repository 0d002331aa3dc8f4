package generation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

var allStatuses = []JobStatus{StatusPending, StatusProcessing, StatusCompleted, StatusFailed, StatusCancelled}

func TestJobStatus_IsTerminal(t *testing.T) {
	assert.False(t, StatusPending.IsTerminal())
	assert.False(t, StatusProcessing.IsTerminal())
	assert.True(t, StatusCompleted.IsTerminal())
	assert.True(t, StatusFailed.IsTerminal())
	assert.True(t, StatusCancelled.IsTerminal())
	assert.False(t, JobStatus("queued").Valid())
}

func TestCanTransition(t *testing.T) {
	assert.True(t, CanTransition(StatusPending, StatusProcessing))
	assert.True(t, CanTransition(StatusPending, StatusCompleted))
	assert.True(t, CanTransition(StatusProcessing, StatusFailed))
	assert.True(t, CanTransition(StatusProcessing, StatusProcessing))
	assert.False(t, CanTransition(StatusProcessing, StatusPending))
	assert.False(t, CanTransition(StatusCompleted, StatusFailed))
	assert.False(t, CanTransition(StatusCancelled, StatusProcessing))
}

func TestJob_Advance(t *testing.T) {
	at := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	job := &Job{ID: "j1", Status: StatusPending}

	require.NoError(t, job.Advance(StatusProcessing, at))
	assert.Equal(t, at, job.UpdatedAt)
	require.NoError(t, job.Advance(StatusCompleted, at.Add(time.Second)))

	err := job.Advance(StatusProcessing, at.Add(2*time.Second))
	require.Error(t, err)
	assert.Equal(t, StatusCompleted, job.Status)
	assert.Equal(t, at.Add(time.Second), job.UpdatedAt)

	assert.Error(t, job.Advance("bogus", at))
}

// 任意合法推进序列下，终态一旦到达就不再改变
func TestJob_AdvanceMonotonicProperty(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		steps := rapid.SliceOfN(rapid.SampledFrom(allStatuses), 1, 12).Draw(rt, "steps")
		job := &Job{ID: "p", Status: StatusPending}
		var terminal JobStatus
		for _, s := range steps {
			before := job.Status
			err := job.Advance(s, time.Time{})
			if err == nil && before.rank() > s.rank() {
				rt.Fatalf("regressed %s -> %s", before, s)
			}
			if terminal != "" && job.Status != terminal {
				rt.Fatalf("left terminal %s for %s", terminal, job.Status)
			}
			if job.Status.IsTerminal() {
				terminal = job.Status
			}
		}
	})
}

func TestVariationCount(t *testing.T) {
	assert.Equal(t, 1, (&ImageRequest{}).VariationCount())
	assert.Equal(t, 3, (&ImageRequest{Variations: 3}).VariationCount())
	assert.Equal(t, 1, (&VideoRequest{}).VariationCount())
}

func TestTerminalError(t *testing.T) {
	assert.NoError(t, terminalError(&Job{Status: StatusCompleted}))

	err := terminalError(&Job{ID: "j", Provider: "async", Status: StatusFailed, Error: "nsfw"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nsfw")

	err = terminalError(&Job{ID: "j", Status: StatusCancelled})
	require.Error(t, err)
}
