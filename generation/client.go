package generation

import (
	"context"
	"time"

	"github.com/BaSui01/creativeflow/types"
)

// JobClient is the uniform contract over async and inline backends.
// Implementations hold only immutable configuration and are safe for concurrent use.
type JobClient interface {
	Name() string
	Capabilities() Capabilities
	SubmitImage(ctx context.Context, req *ImageRequest) (*Job, error)
	SubmitVideo(ctx context.Context, req *VideoRequest) (*Job, error)
	GetJobStatus(ctx context.Context, jobID string) (*Job, error)
	CancelJob(ctx context.Context, jobID string) (*CancelResult, error)
	// PollToCompletion waits for a terminal state. nil opts selects the client default.
	PollToCompletion(ctx context.Context, jobID string, opts *PollOptions) (*Job, error)
}

// Observer receives client-level events. internal/metrics.Collector implements it.
type Observer interface {
	ObserveAttempt(provider, method, route, outcome string, duration time.Duration)
	ObserveJob(provider string, contentType types.ContentType, status string, duration time.Duration)
	ObservePoll(provider, outcome string, attempts int)
}

type pollingDefaults interface {
	PollingFor(contentType types.ContentType) PollOptions
}

func pollingFor(c JobClient, ct types.ContentType, opts *PollOptions) *PollOptions {
	if opts != nil {
		return opts
	}
	if pd, ok := c.(pollingDefaults); ok {
		o := pd.PollingFor(ct)
		return &o
	}
	o := DefaultImagePolling()
	if ct == types.ContentVideo {
		o = DefaultVideoPolling()
	}
	return &o
}

// GenerateImageAndWait submits req and, unless the job is already terminal, polls it
// with the image polling budget (or opts).
func GenerateImageAndWait(ctx context.Context, c JobClient, req *ImageRequest, opts *PollOptions) (*Job, error) {
	job, err := c.SubmitImage(ctx, req)
	if err != nil {
		return job, err
	}
	return waitTerminal(ctx, c, job, pollingFor(c, types.ContentImage, opts))
}

// GenerateVideoAndWait submits req and polls it with the video polling budget (or opts).
func GenerateVideoAndWait(ctx context.Context, c JobClient, req *VideoRequest, opts *PollOptions) (*Job, error) {
	job, err := c.SubmitVideo(ctx, req)
	if err != nil {
		return job, err
	}
	return waitTerminal(ctx, c, job, pollingFor(c, types.ContentVideo, opts))
}

func waitTerminal(ctx context.Context, c JobClient, job *Job, opts *PollOptions) (*Job, error) {
	if job.Status.IsTerminal() {
		return job, terminalError(job)
	}
	return c.PollToCompletion(ctx, job.ID, opts)
}

// terminalError maps a terminal job to its error, nil for completed.
func terminalError(job *Job) error {
	switch job.Status {
	case StatusFailed:
		return types.NewJobFailedError(job.ID, job.Error).WithProvider(job.Provider)
	case StatusCancelled:
		return types.NewJobCancelledError(job.ID).WithProvider(job.Provider)
	}
	return nil
}
