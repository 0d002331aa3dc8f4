package generation

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/BaSui01/creativeflow/generation/prompt"
	"github.com/BaSui01/creativeflow/types"
)

// InlineImageRequest is one inline generation call: a single output format, a single image.
type InlineImageRequest struct {
	Prompt          string
	NegativePrompt  string
	AspectRatio     string
	OutputFormat    types.OutputFormat
	Seed            *int64
	ReferenceImages []types.ReferenceImage
}

// InlineGenerator produces images synchronously.
type InlineGenerator interface {
	Name() string
	Model() string
	GenerateImage(ctx context.Context, req InlineImageRequest) (*GeneratedImage, error)
}

// SyncClient adapts an inline generator to JobClient. Each submit returns a locally
// created job that is already completed or failed. Status lookup and cancel are not
// supported because nothing is ever in flight once submit returns.
type SyncClient struct {
	gen      InlineGenerator
	limits   Limits
	logger   *zap.Logger
	observer Observer
	now      func() time.Time
	newID    func() string
}

// NewSyncClient 创建同步内联客户端
func NewSyncClient(gen InlineGenerator, opts ...ClientOption) *SyncClient {
	o := collectOptions(opts)
	newID := o.newID
	if newID == nil {
		newID = func() string { return uuid.NewString() }
	}
	return &SyncClient{
		gen:      gen,
		limits:   SyncImageLimits(),
		logger:   o.logger.With(zap.String("component", "sync_client"), zap.String("provider", gen.Name())),
		observer: o.observer,
		now:      o.now,
		newID:    newID,
	}
}

func (c *SyncClient) Name() string { return c.gen.Name() }

func (c *SyncClient) Capabilities() Capabilities {
	return Capabilities{Image: true}
}

// PollingFor is provided for interface symmetry; the shim never polls.
func (c *SyncClient) PollingFor(ct types.ContentType) PollOptions {
	if ct == types.ContentVideo {
		return DefaultVideoPolling()
	}
	return DefaultImagePolling()
}

// SubmitImage runs the generation inline, one call per output format and variation,
// sequentially. On failure the failed job is returned together with the error.
func (c *SyncClient) SubmitImage(ctx context.Context, req *ImageRequest) (*Job, error) {
	if err := ValidateImage(req, c.limits); err != nil {
		return nil, err
	}
	refs := prompt.OrganizeReferenceImages(req.ReferenceImages, c.limits.References)
	if dropped := len(req.ReferenceImages) - len(refs); dropped > 0 {
		c.logger.Debug("参考图超出上限，已截断", zap.Int("dropped", dropped))
	}

	created := c.now()
	job := &Job{
		ID:          c.newID(),
		Provider:    c.gen.Name(),
		ContentType: types.ContentImage,
		Status:      StatusProcessing,
		CreatedAt:   created,
		UpdatedAt:   created,
		Metadata: JobMetadata{
			Prompt:         req.Prompt,
			NegativePrompt: req.NegativePrompt,
			StylePreset:    req.StylePreset,
			ModelVersion:   c.gen.Model(),
		},
	}

	var images []GeneratedImage
	for _, format := range req.OutputFormats {
		for v := 0; v < req.VariationCount(); v++ {
			call := InlineImageRequest{
				Prompt:          req.Prompt,
				NegativePrompt:  req.NegativePrompt,
				AspectRatio:     format.Ratio(),
				OutputFormat:    format,
				Seed:            variationSeed(req.Seed, v),
				ReferenceImages: refs,
			}
			img, err := c.gen.GenerateImage(ctx, call)
			if err != nil {
				return c.fail(job, created, err)
			}
			img.OutputFormat = format.Name
			if img.Width == 0 {
				img.Width, img.Height = format.Width, format.Height
			}
			images = append(images, *img)
		}
	}

	settle(job, StatusCompleted, c.now())
	job.Result = &JobResult{Images: images}
	c.observeJob(string(StatusCompleted), job.UpdatedAt.Sub(created))
	c.logger.Info("内联生成完成", zap.String("job_id", job.ID), zap.Int("images", len(images)))
	return job, nil
}

func (c *SyncClient) fail(job *Job, created time.Time, err error) (*Job, error) {
	settle(job, StatusFailed, c.now())
	job.Error = err.Error()
	if e, ok := types.AsError(err); ok {
		job.Error = e.Message
	}
	c.observeJob(string(StatusFailed), job.UpdatedAt.Sub(created))
	c.logger.Warn("内联生成失败", zap.String("job_id", job.ID), zap.Error(err))
	return job, err
}

// settle 结束内联作业. 作业始终处于 processing，到任一终态的迁移都合法.
func settle(job *Job, status JobStatus, at time.Time) {
	job.Status = status
	job.UpdatedAt = at
}

// SubmitVideo is not supported by inline backends.
func (c *SyncClient) SubmitVideo(ctx context.Context, req *VideoRequest) (*Job, error) {
	return nil, types.NewValidationError("content_type", "video generation is not supported by "+c.gen.Name()).
		WithProvider(c.gen.Name())
}

// GetJobStatus always fails with STATUS_LOOKUP_UNSUPPORTED (VALIDATION for an empty id).
func (c *SyncClient) GetJobStatus(ctx context.Context, jobID string) (*Job, error) {
	if strings.TrimSpace(jobID) == "" {
		return nil, types.NewValidationError("job_id", "job_id is required")
	}
	return nil, types.NewStatusLookupUnsupportedError(c.gen.Name(), jobID)
}

// CancelJob is a no-op that reports failure.
func (c *SyncClient) CancelJob(ctx context.Context, jobID string) (*CancelResult, error) {
	if strings.TrimSpace(jobID) == "" {
		return nil, types.NewValidationError("job_id", "job_id is required")
	}
	return &CancelResult{
		JobID:     jobID,
		Cancelled: false,
		Message:   "inline generation has already finished, there is nothing to cancel",
	}, nil
}

// PollToCompletion cannot replay state; it fails like GetJobStatus.
func (c *SyncClient) PollToCompletion(ctx context.Context, jobID string, _ *PollOptions) (*Job, error) {
	return c.GetJobStatus(ctx, jobID)
}

func (c *SyncClient) observeJob(status string, d time.Duration) {
	if c.observer != nil {
		c.observer.ObserveJob(c.gen.Name(), types.ContentImage, status, d)
	}
}

// variationSeed derives a distinct deterministic seed per variation.
func variationSeed(seed *int64, variation int) *int64 {
	if seed == nil {
		return nil
	}
	s := *seed + int64(variation)
	return &s
}
