package jobstore

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/BaSui01/creativeflow/generation"
	"github.com/BaSui01/creativeflow/types"
)

// Recorder wraps a JobClient and saves every snapshot it returns. For backends without
// status lookup, GetJobStatus and PollToCompletion answer from the store instead.
type Recorder struct {
	generation.JobClient
	store  Store
	logger *zap.Logger
}

// NewRecorder 创建记录器
func NewRecorder(client generation.JobClient, store Store, logger *zap.Logger) *Recorder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Recorder{
		JobClient: client,
		store:     store,
		logger:    logger.With(zap.String("component", "recorder"), zap.String("provider", client.Name())),
	}
}

func (r *Recorder) SubmitImage(ctx context.Context, req *generation.ImageRequest) (*generation.Job, error) {
	job, err := r.JobClient.SubmitImage(ctx, req)
	r.record(ctx, job)
	return job, err
}

func (r *Recorder) SubmitVideo(ctx context.Context, req *generation.VideoRequest) (*generation.Job, error) {
	job, err := r.JobClient.SubmitVideo(ctx, req)
	r.record(ctx, job)
	return job, err
}

func (r *Recorder) GetJobStatus(ctx context.Context, jobID string) (*generation.Job, error) {
	job, err := r.JobClient.GetJobStatus(ctx, jobID)
	if types.IsErrorCode(err, types.ErrStatusLookupUnsupported) {
		return r.fromStore(ctx, jobID, err)
	}
	r.record(ctx, job)
	return job, err
}

func (r *Recorder) PollToCompletion(ctx context.Context, jobID string, opts *generation.PollOptions) (*generation.Job, error) {
	job, err := r.JobClient.PollToCompletion(ctx, jobID, opts)
	if types.IsErrorCode(err, types.ErrStatusLookupUnsupported) {
		return r.fromStore(ctx, jobID, err)
	}
	r.record(ctx, job)
	return job, err
}

// PollingFor 沿用被包装客户端的轮询预算
func (r *Recorder) PollingFor(ct types.ContentType) generation.PollOptions {
	if pd, ok := r.JobClient.(interface {
		PollingFor(types.ContentType) generation.PollOptions
	}); ok {
		return pd.PollingFor(ct)
	}
	if ct == types.ContentVideo {
		return generation.DefaultVideoPolling()
	}
	return generation.DefaultImagePolling()
}

// fromStore 用持久化快照代替不支持查询的后端. 找不到时返回原始错误.
func (r *Recorder) fromStore(ctx context.Context, jobID string, lookupErr error) (*generation.Job, error) {
	job, err := r.store.Get(ctx, jobID)
	if errors.Is(err, ErrNotFound) {
		return nil, lookupErr
	}
	if err != nil {
		return nil, err
	}
	switch job.Status {
	case generation.StatusFailed:
		return job, types.NewJobFailedError(job.ID, job.Error).WithProvider(job.Provider)
	case generation.StatusCancelled:
		return job, types.NewJobCancelledError(job.ID).WithProvider(job.Provider)
	}
	return job, nil
}

func (r *Recorder) record(ctx context.Context, job *generation.Job) {
	if job == nil {
		return
	}
	err := r.store.Save(ctx, job)
	switch {
	case err == nil:
	case errors.Is(err, ErrStatusRegression):
		r.logger.Debug("跳过过期快照", zap.String("job_id", job.ID), zap.Error(err))
	default:
		r.logger.Warn("保存作业快照失败", zap.String("job_id", job.ID), zap.Error(err))
	}
}
