package generation

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/BaSui01/creativeflow/types"
)

const instrumentationName = "github.com/BaSui01/creativeflow/generation"

// StatusFetcher queries one job snapshot.
type StatusFetcher interface {
	GetJobStatus(ctx context.Context, jobID string) (*Job, error)
}

// Poller repeatedly queries a job until it is terminal or the attempt budget is spent.
// PollingTimeout only stops the caller's wait; the remote job is not cancelled.
type Poller struct {
	fetcher  StatusFetcher
	provider string
	logger   *zap.Logger
	observer Observer
	tracer   trace.Tracer
}

// NewPoller 创建轮询器. observer 可为 nil.
func NewPoller(fetcher StatusFetcher, provider string, logger *zap.Logger, observer Observer) *Poller {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Poller{
		fetcher:  fetcher,
		provider: provider,
		logger:   logger.With(zap.String("component", "poller")),
		observer: observer,
		tracer:   otel.Tracer(instrumentationName),
	}
}

// PollToCompletion queries jobID at most opts.MaxAttempts times, sleeping opts.Interval between
// non-terminal answers. completed returns the job; failed and cancelled return the job together
// with JOB_FAILED / JOB_CANCELLED; status query errors are returned unchanged.
func (p *Poller) PollToCompletion(ctx context.Context, jobID string, opts PollOptions) (*Job, error) {
	return p.poll(ctx, jobID, opts, nil)
}

// poll 与 PollToCompletion 相同; rebudget 非 nil 时在首次快照后按其内容类型重新确定预算.
func (p *Poller) poll(ctx context.Context, jobID string, opts PollOptions, rebudget func(types.ContentType) PollOptions) (*Job, error) {
	if jobID == "" {
		return nil, types.NewValidationError("job_id", "job_id is required")
	}
	opts = opts.orDefault(DefaultImagePolling())

	ctx, span := p.tracer.Start(ctx, "generation.poll",
		trace.WithAttributes(
			attribute.String("generation.provider", p.provider),
			attribute.String("generation.job_id", jobID),
			attribute.Int("generation.max_attempts", opts.MaxAttempts),
		))
	defer span.End()

	var last JobStatus
	for attempt := 1; attempt <= opts.MaxAttempts; attempt++ {
		job, err := p.fetcher.GetJobStatus(ctx, jobID)
		if err != nil {
			p.finish(span, "error", attempt, err)
			return nil, err
		}
		if attempt == 1 && rebudget != nil {
			opts = rebudget(job.ContentType).orDefault(opts)
			span.SetAttributes(attribute.Int("generation.max_attempts", opts.MaxAttempts))
		}

		if last != "" && !CanTransition(last, job.Status) {
			p.logger.Warn("作业状态回退，忽略",
				zap.String("job_id", jobID),
				zap.String("from", string(last)),
				zap.String("to", string(job.Status)))
		} else {
			last = job.Status
		}

		switch job.Status {
		case StatusCompleted:
			p.finish(span, "completed", attempt, nil)
			return job, nil
		case StatusFailed, StatusCancelled:
			err := terminalError(job)
			p.finish(span, string(job.Status), attempt, err)
			return job, err
		}

		if attempt == opts.MaxAttempts {
			break
		}

		p.logger.Debug("作业未完成，等待下一次轮询",
			zap.String("job_id", jobID),
			zap.String("status", string(job.Status)),
			zap.Int("attempt", attempt),
			zap.Duration("interval", opts.Interval))

		timer := time.NewTimer(opts.Interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			p.finish(span, "cancelled", attempt, ctx.Err())
			return nil, ctx.Err()
		case <-timer.C:
		}
	}

	err := types.NewPollingTimeoutError(jobID, opts.MaxAttempts).WithProvider(p.provider)
	p.logger.Warn("轮询超时", zap.String("job_id", jobID), zap.Int("attempts", opts.MaxAttempts))
	p.finish(span, "timeout", opts.MaxAttempts, err)
	return nil, err
}

// PollAll polls several jobs concurrently and fails fast on the first error.
// Results are returned in input order.
func (p *Poller) PollAll(ctx context.Context, jobIDs []string, opts PollOptions) ([]*Job, error) {
	jobs := make([]*Job, len(jobIDs))
	g, gctx := errgroup.WithContext(ctx)
	for i, id := range jobIDs {
		g.Go(func() error {
			job, err := p.PollToCompletion(gctx, id, opts)
			if err != nil {
				return err
			}
			jobs[i] = job
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return jobs, nil
}

func (p *Poller) finish(span trace.Span, outcome string, attempts int, err error) {
	span.SetAttributes(attribute.Int("generation.attempts", attempts), attribute.String("generation.outcome", outcome))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, outcome)
	}
	if p.observer != nil {
		p.observer.ObservePoll(p.provider, outcome, attempts)
	}
}
