package generation

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/BaSui01/creativeflow/generation/prompt"
	"github.com/BaSui01/creativeflow/generation/transport"
	"github.com/BaSui01/creativeflow/types"
)

// Async backend endpoints.
const (
	endpointImages = "/v1/generations/images"
	endpointVideos = "/v1/generations/videos"
	endpointJobs   = "/v1/jobs/"
)

// AsyncClient drives the asynchronous job-queue backend.
type AsyncClient struct {
	name        string
	transport   *transport.Client
	poller      *Poller
	logger      *zap.Logger
	observer    Observer
	imageLimits Limits
	videoLimits Limits
	polling     map[types.ContentType]PollOptions
}

// ClientOption customizes a client at construction.
type ClientOption func(*clientOptions)

type clientOptions struct {
	logger     *zap.Logger
	httpClient *http.Client
	observer   Observer
	now        func() time.Time
	newID      func() string
}

// WithLogger sets the client logger.
func WithLogger(logger *zap.Logger) ClientOption {
	return func(o *clientOptions) { o.logger = logger }
}

// WithHTTPClient sets the HTTP client used for provider calls.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(o *clientOptions) { o.httpClient = hc }
}

// WithObserver registers a metrics observer.
func WithObserver(obs Observer) ClientOption {
	return func(o *clientOptions) { o.observer = obs }
}

// WithClock overrides time.Now for job timestamps.
func WithClock(now func() time.Time) ClientOption {
	return func(o *clientOptions) { o.now = now }
}

// WithIDGenerator overrides how synthetic job ids are generated.
func WithIDGenerator(newID func() string) ClientOption {
	return func(o *clientOptions) { o.newID = newID }
}

func collectOptions(opts []ClientOption) clientOptions {
	o := clientOptions{logger: zap.NewNop(), now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = zap.NewNop()
	}
	if o.now == nil {
		o.now = time.Now
	}
	return o
}

// NewAsyncClient 创建异步作业客户端
func NewAsyncClient(cfg AsyncConfig, opts ...ClientOption) (*AsyncClient, error) {
	o := collectOptions(opts)
	if cfg.Name == "" {
		cfg.Name = DefaultAsyncConfig().Name
	}
	if cfg.Transport.Provider == "" {
		cfg.Transport.Provider = cfg.Name
	}

	topts := []transport.Option{transport.WithLogger(o.logger), transport.WithHTTPClient(o.httpClient)}
	if o.observer != nil {
		topts = append(topts, transport.WithObserver(o.observer))
	}
	tc, err := transport.NewClient(cfg.Transport, topts...)
	if err != nil {
		return nil, fmt.Errorf("async client: %w", err)
	}

	c := &AsyncClient{
		name:        cfg.Name,
		transport:   tc,
		logger:      o.logger.With(zap.String("component", "async_client"), zap.String("provider", cfg.Name)),
		observer:    o.observer,
		imageLimits: AsyncImageLimits(),
		videoLimits: AsyncVideoLimits(),
		polling: map[types.ContentType]PollOptions{
			types.ContentImage: cfg.ImagePolling.orDefault(DefaultImagePolling()),
			types.ContentVideo: cfg.VideoPolling.orDefault(DefaultVideoPolling()),
		},
	}
	c.poller = NewPoller(c, cfg.Name, o.logger, o.observer)
	return c, nil
}

func (c *AsyncClient) Name() string { return c.name }

func (c *AsyncClient) Capabilities() Capabilities {
	return Capabilities{Image: true, Video: true, StatusLookup: true, Cancel: true}
}

// PollingFor returns the configured polling budget for a content type.
func (c *AsyncClient) PollingFor(ct types.ContentType) PollOptions {
	return c.polling[ct]
}

// SubmitImage validates req, bounds its reference images and enqueues it.
func (c *AsyncClient) SubmitImage(ctx context.Context, req *ImageRequest) (*Job, error) {
	if err := ValidateImage(req, c.imageLimits); err != nil {
		return nil, err
	}
	body := *req
	body.ReferenceImages = prompt.OrganizeReferenceImages(req.ReferenceImages, c.imageLimits.References)
	if dropped := len(req.ReferenceImages) - len(body.ReferenceImages); dropped > 0 {
		c.logger.Debug("参考图超出上限，已截断", zap.Int("dropped", dropped))
	}
	return c.submit(ctx, endpointImages, types.ContentImage, &body, JobMetadata{
		Prompt:         req.Prompt,
		NegativePrompt: req.NegativePrompt,
		StylePreset:    req.StylePreset,
	})
}

// SubmitVideo validates req and enqueues it. More than five reference images are rejected.
func (c *AsyncClient) SubmitVideo(ctx context.Context, req *VideoRequest) (*Job, error) {
	if err := ValidateVideo(req, c.videoLimits); err != nil {
		return nil, err
	}
	body := *req
	body.ReferenceImages = prompt.OrganizeReferenceImages(req.ReferenceImages, c.videoLimits.References)
	return c.submit(ctx, endpointVideos, types.ContentVideo, &body, JobMetadata{
		Prompt:         req.Prompt,
		NegativePrompt: req.NegativePrompt,
		StylePreset:    req.StylePreset,
	})
}

func (c *AsyncClient) submit(ctx context.Context, endpoint string, ct types.ContentType, body any, meta JobMetadata) (*Job, error) {
	start := time.Now()
	var env jobEnvelope
	if err := c.transport.DoJSON(ctx, http.MethodPost, endpoint, body, &env); err != nil {
		c.observeJob(ct, "submit_error", time.Since(start))
		return nil, err
	}
	job, err := env.toJob(c.name, ct)
	if err != nil {
		return nil, err
	}
	if job.Metadata.Prompt == "" {
		job.Metadata.Prompt = meta.Prompt
	}
	if job.Metadata.NegativePrompt == "" {
		job.Metadata.NegativePrompt = meta.NegativePrompt
	}
	if job.Metadata.StylePreset == "" {
		job.Metadata.StylePreset = meta.StylePreset
	}
	c.observeJob(ct, "submitted", time.Since(start))
	c.logger.Info("作业已提交",
		zap.String("job_id", job.ID),
		zap.String("content_type", string(ct)),
		zap.String("status", string(job.Status)))
	return job, nil
}

// GetJobStatus fetches the current job snapshot. An empty id fails without a network call.
func (c *AsyncClient) GetJobStatus(ctx context.Context, jobID string) (*Job, error) {
	if strings.TrimSpace(jobID) == "" {
		return nil, types.NewValidationError("job_id", "job_id is required")
	}
	var env jobEnvelope
	if err := c.transport.DoJSON(ctx, http.MethodGet, jobPath(jobID), nil, &env); err != nil {
		return nil, err
	}
	if env.JobID == "" && env.ID == "" {
		env.JobID = jobID
	}
	return env.toJob(c.name, "")
}

// CancelJob asks the backend to cancel jobID. An empty id fails without a network call.
func (c *AsyncClient) CancelJob(ctx context.Context, jobID string) (*CancelResult, error) {
	if strings.TrimSpace(jobID) == "" {
		return nil, types.NewValidationError("job_id", "job_id is required")
	}
	var env jobEnvelope
	if err := c.transport.DoJSON(ctx, http.MethodPost, jobPath(jobID)+"/cancel", nil, &env); err != nil {
		return nil, err
	}
	status := JobStatus(env.Status)
	res := &CancelResult{JobID: jobID, Status: status, Cancelled: status == StatusCancelled}
	switch {
	case env.Message != "":
		res.Message = env.Message
	case res.Cancelled:
		res.Message = "job cancelled"
	default:
		res.Message = fmt.Sprintf("job is %s and cannot be cancelled", status)
	}
	c.logger.Info("取消作业", zap.String("job_id", jobID), zap.Bool("cancelled", res.Cancelled))
	return res, nil
}

// PollToCompletion polls jobID. nil opts starts with the image budget and switches to the
// budget of the content type reported by the first snapshot.
func (c *AsyncClient) PollToCompletion(ctx context.Context, jobID string, opts *PollOptions) (*Job, error) {
	start := time.Now()
	var (
		job *Job
		err error
	)
	if opts != nil {
		job, err = c.poller.PollToCompletion(ctx, jobID, opts.orDefault(c.polling[types.ContentImage]))
	} else {
		job, err = c.poller.poll(ctx, jobID, c.polling[types.ContentImage], c.PollingFor)
	}
	if job != nil {
		c.observeJob(job.ContentType, string(job.Status), time.Since(start))
	}
	return job, err
}

// Poller exposes the client's poller, e.g. for PollAll.
func (c *AsyncClient) Poller() *Poller { return c.poller }

func (c *AsyncClient) observeJob(ct types.ContentType, status string, d time.Duration) {
	if c.observer != nil {
		c.observer.ObserveJob(c.name, ct, status, d)
	}
}

func jobPath(jobID string) string {
	return endpointJobs + url.PathEscape(jobID)
}

// =============================================================================
// Wire format
// =============================================================================

type jobEnvelope struct {
	JobID       string          `json:"job_id"`
	ID          string          `json:"id"`
	Status      string          `json:"status"`
	ContentType string          `json:"content_type"`
	Images      []wireImage     `json:"images"`
	Video       *wireVideo      `json:"video"`
	Error       json.RawMessage `json:"error"`
	Message     string          `json:"message"`
	Metadata    struct {
		Prompt         string `json:"prompt"`
		NegativePrompt string `json:"negative_prompt"`
		StylePreset    string `json:"style_preset"`
		ModelVersion   string `json:"model_version"`
		Model          string `json:"model"`
	} `json:"metadata"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type wireImage struct {
	URL          string `json:"url"`
	Width        int    `json:"width"`
	Height       int    `json:"height"`
	Format       string `json:"format"`
	OutputFormat string `json:"output_format"`
}

type wireVideo struct {
	URL          string `json:"url"`
	Duration     int    `json:"duration"`
	AspectRatio  string `json:"aspect_ratio"`
	ThumbnailURL string `json:"thumbnail_url"`
}

func (e *jobEnvelope) toJob(provider string, fallback types.ContentType) (*Job, error) {
	id := e.JobID
	if id == "" {
		id = e.ID
	}
	if id == "" {
		return nil, types.NewServiceError(types.ServiceCodeDecode, "response has no job id").
			WithRetryable(false).WithProvider(provider)
	}
	status := JobStatus(strings.ToLower(e.Status))
	if status == "queued" {
		status = StatusPending
	}
	if !status.Valid() {
		return nil, types.NewServiceError(types.ServiceCodeDecode, fmt.Sprintf("unknown job status %q", e.Status)).
			WithRetryable(false).WithProvider(provider)
	}

	ct := types.ContentType(e.ContentType)
	if ct == "" {
		ct = fallback
	}
	if ct == "" && e.Video != nil {
		ct = types.ContentVideo
	} else if ct == "" {
		ct = types.ContentImage
	}

	job := &Job{
		ID:          id,
		Provider:    provider,
		ContentType: ct,
		Status:      status,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
		Error:       errorText(e.Error),
		Metadata: JobMetadata{
			Prompt:         e.Metadata.Prompt,
			NegativePrompt: e.Metadata.NegativePrompt,
			StylePreset:    types.StylePreset(e.Metadata.StylePreset),
			ModelVersion:   e.Metadata.ModelVersion,
		},
	}
	if job.Metadata.ModelVersion == "" {
		job.Metadata.ModelVersion = e.Metadata.Model
	}
	if job.UpdatedAt.IsZero() {
		job.UpdatedAt = job.CreatedAt
	}
	if status == StatusFailed && job.Error == "" {
		job.Error = e.Message
	}

	if len(e.Images) > 0 || e.Video != nil {
		job.Result = &JobResult{}
		for _, img := range e.Images {
			job.Result.Images = append(job.Result.Images, GeneratedImage{
				URL:          img.URL,
				MimeType:     mimeFromFormat(img.Format),
				Width:        img.Width,
				Height:       img.Height,
				OutputFormat: img.OutputFormat,
			})
		}
		if e.Video != nil {
			job.Result.Video = &GeneratedVideo{
				URL:             e.Video.URL,
				ThumbnailURL:    e.Video.ThumbnailURL,
				DurationSeconds: e.Video.Duration,
				AspectRatio:     e.Video.AspectRatio,
			}
		}
	}
	return job, nil
}

// errorText accepts "error": "msg" and "error": {"message": "msg"}.
func errorText(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if json.Unmarshal(raw, &s) == nil {
		return s
	}
	var obj struct {
		Message string `json:"message"`
	}
	if json.Unmarshal(raw, &obj) == nil {
		return obj.Message
	}
	return string(raw)
}

func mimeFromFormat(format string) string {
	switch strings.ToLower(format) {
	case "":
		return ""
	case "jpg", "jpeg":
		return "image/jpeg"
	default:
		return "image/" + strings.ToLower(format)
	}
}
