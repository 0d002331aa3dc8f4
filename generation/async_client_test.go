package generation_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/BaSui01/creativeflow/generation"
	"github.com/BaSui01/creativeflow/testutil"
	"github.com/BaSui01/creativeflow/testutil/fixtures"
	"github.com/BaSui01/creativeflow/testutil/mocks"
	"github.com/BaSui01/creativeflow/types"
)

func newAsyncClient(t *testing.T, server *mocks.JobServer) *generation.AsyncClient {
	t.Helper()
	cfg := generation.DefaultAsyncConfig()
	cfg.Transport.BaseURL = server.URL()
	cfg.Transport.APIKey = "sk-test"
	cfg.Transport.MaxRetries = 2
	cfg.Transport.BaseDelay = time.Millisecond
	cfg.Transport.Timeout = 2 * time.Second
	cfg.ImagePolling = generation.PollOptions{Interval: time.Millisecond, MaxAttempts: 10}
	cfg.VideoPolling = generation.PollOptions{Interval: time.Millisecond, MaxAttempts: 20}
	c, err := generation.NewAsyncClient(cfg, generation.WithLogger(zaptest.NewLogger(t)))
	require.NoError(t, err)
	return c
}

func imageRequest() *generation.ImageRequest {
	return &generation.ImageRequest{
		BrandID:       "brand-aurora",
		Prompt:        "hero shot of a cold brew can",
		StylePreset:   types.StyleMinimal,
		OutputFormats: []types.OutputFormat{types.FormatSquare, types.FormatPortrait},
	}
}

func videoRequest() *generation.VideoRequest {
	return &generation.VideoRequest{
		BrandID:         "brand-aurora",
		Prompt:          "slow orbit around the can",
		DurationSeconds: 15,
		AspectRatio:     "16:9",
	}
}

func TestAsyncClient_SubmitImage(t *testing.T) {
	server := mocks.NewJobServer(t)
	c := newAsyncClient(t, server)
	ctx := testutil.TestContext(t)

	req := imageRequest()
	req.ReferenceImages = fixtures.ReferenceImages(6, types.RefTalent)
	job, err := c.SubmitImage(ctx, req)
	require.NoError(t, err)

	assert.Equal(t, "job-1", job.ID)
	assert.Equal(t, generation.StatusPending, job.Status)
	assert.Equal(t, types.ContentImage, job.ContentType)
	assert.Equal(t, "async", job.Provider)
	assert.Equal(t, req.Prompt, job.Metadata.Prompt)
	assert.Equal(t, types.StyleMinimal, job.Metadata.StylePreset)

	reqs := server.Requests()
	require.Len(t, reqs, 1)
	assert.Equal(t, "Bearer sk-test", reqs[0].Header.Get("Authorization"))
	var sent generation.ImageRequest
	require.NoError(t, json.Unmarshal(reqs[0].Body, &sent))
	assert.Len(t, sent.ReferenceImages, 5, "human references are capped, not rejected")
	assert.Len(t, sent.OutputFormats, 2)
}

func TestAsyncClient_SubmitVideoRejectsSixReferences(t *testing.T) {
	server := mocks.NewJobServer(t)
	c := newAsyncClient(t, server)

	req := videoRequest()
	req.ReferenceImages = fixtures.ReferenceImages(6, types.RefProduct)
	job, err := c.SubmitVideo(testutil.TestContext(t), req)
	assert.Nil(t, job)
	e := testutil.AssertErrorCode(t, err, types.ErrValidation)
	assert.Equal(t, "reference_images", e.Field)
	assert.Contains(t, e.Message, "cannot provide more than 5 reference images")
	assert.Empty(t, server.Requests())
}

func TestAsyncClient_SubmitVideoValidation(t *testing.T) {
	server := mocks.NewJobServer(t)
	c := newAsyncClient(t, server)

	req := videoRequest()
	req.DurationSeconds = 400
	_, err := c.SubmitVideo(testutil.TestContext(t), req)
	e := testutil.AssertErrorCode(t, err, types.ErrValidation)
	assert.Equal(t, "duration", e.Field)

	req = videoRequest()
	req.AspectRatio = "21:9"
	_, err = c.SubmitVideo(testutil.TestContext(t), req)
	e = testutil.AssertErrorCode(t, err, types.ErrValidation)
	assert.Equal(t, "aspect_ratio", e.Field)
	assert.Contains(t, e.Message, "16:9, 9:16, 1:1, 4:5")
	assert.Empty(t, server.Requests())
}

func TestAsyncClient_GenerateVideoAndWait(t *testing.T) {
	server := mocks.NewJobServer(t).WithStatuses("pending", "processing", "processing", "completed")
	c := newAsyncClient(t, server)

	job, err := generation.GenerateVideoAndWait(testutil.TestContext(t), c, videoRequest(), nil)
	require.NoError(t, err)
	assert.Equal(t, generation.StatusCompleted, job.Status)
	require.NotNil(t, job.Result)
	require.NotNil(t, job.Result.Video)
	assert.Equal(t, 15, job.Result.Video.DurationSeconds)
	assert.Equal(t, types.ContentVideo, job.ContentType)
	assert.Equal(t, 3, server.Count(http.MethodGet, "/v1/jobs/job-1"))
}

func TestAsyncClient_PollTimeout(t *testing.T) {
	server := mocks.NewJobServer(t).WithStatuses("pending", "processing")
	c := newAsyncClient(t, server)
	ctx := testutil.TestContext(t)

	job, err := c.SubmitImage(ctx, imageRequest())
	require.NoError(t, err)

	_, err = c.PollToCompletion(ctx, job.ID, &generation.PollOptions{Interval: time.Millisecond, MaxAttempts: 4})
	e := testutil.AssertErrorCode(t, err, types.ErrPollingTimeout)
	assert.Equal(t, 4, e.Attempts)
	assert.Equal(t, 4, server.Count(http.MethodGet, "/v1/jobs/"))
}

func TestAsyncClient_NilPollOptionsFollowContentType(t *testing.T) {
	server := mocks.NewJobServer(t).
		AddJob("v1", "video", "processing").
		AddJob("i1", "image", "processing")
	cfg := generation.DefaultAsyncConfig()
	cfg.Transport.BaseURL = server.URL()
	cfg.Transport.BaseDelay = time.Millisecond
	cfg.ImagePolling = generation.PollOptions{Interval: time.Millisecond, MaxAttempts: 3}
	cfg.VideoPolling = generation.PollOptions{Interval: time.Millisecond, MaxAttempts: 7}
	c, err := generation.NewAsyncClient(cfg, generation.WithLogger(zaptest.NewLogger(t)))
	require.NoError(t, err)
	ctx := testutil.TestContext(t)

	_, err = c.PollToCompletion(ctx, "v1", nil)
	e := testutil.AssertErrorCode(t, err, types.ErrPollingTimeout)
	assert.Equal(t, 7, e.Attempts)
	assert.Equal(t, 7, server.Count(http.MethodGet, "/v1/jobs/v1"))

	_, err = c.PollToCompletion(ctx, "i1", nil)
	e = testutil.AssertErrorCode(t, err, types.ErrPollingTimeout)
	assert.Equal(t, 3, e.Attempts)
	assert.Equal(t, 3, server.Count(http.MethodGet, "/v1/jobs/i1"))
}

func TestAsyncClient_FailedJob(t *testing.T) {
	server := mocks.NewJobServer(t).WithStatuses("pending", "failed")
	c := newAsyncClient(t, server)

	job, err := generation.GenerateImageAndWait(testutil.TestContext(t), c, imageRequest(), nil)
	require.NotNil(t, job)
	assert.Equal(t, generation.StatusFailed, job.Status)
	assert.Equal(t, "generation failed", job.Error)
	testutil.AssertErrorCode(t, err, types.ErrJobFailed)
}

func TestAsyncClient_GetJobStatus(t *testing.T) {
	server := mocks.NewJobServer(t).AddJob("abc", "image", "processing", "completed")
	c := newAsyncClient(t, server)
	ctx := testutil.TestContext(t)

	job, err := c.GetJobStatus(ctx, "abc")
	require.NoError(t, err)
	assert.Equal(t, generation.StatusCompleted, job.Status)
	require.Len(t, job.Result.Images, 1)
	assert.Equal(t, "image/png", job.Result.Images[0].MimeType)

	_, err = c.GetJobStatus(ctx, "nope")
	e := testutil.AssertErrorCode(t, err, types.ErrJobNotFound)
	assert.Equal(t, "nope", e.JobID)
}

func TestAsyncClient_DecodesEnvelopes(t *testing.T) {
	bodies := map[string]string{
		"/v1/jobs/img-1": fixtures.CompletedImageEnvelope("img-1"),
		"/v1/jobs/vid-1": fixtures.CompletedVideoEnvelope("vid-1"),
		"/v1/jobs/bad-1": fixtures.FailedEnvelope("bad-1", "content policy"),
		"/v1/jobs/new-1": fixtures.JobEnvelope("new-1", "queued"),
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := bodies[r.URL.Path]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	cfg := generation.DefaultAsyncConfig()
	cfg.Transport.BaseURL = srv.URL
	cfg.Transport.MaxRetries = 0
	c, err := generation.NewAsyncClient(cfg)
	require.NoError(t, err)
	ctx := testutil.TestContext(t)

	img, err := c.GetJobStatus(ctx, "img-1")
	require.NoError(t, err)
	assert.Equal(t, types.ContentImage, img.ContentType)
	require.Len(t, img.Result.Images, 1)
	assert.Equal(t, "https://cdn.example.com/out/img-1-0.png", img.Result.Images[0].URL)
	assert.Equal(t, "image/png", img.Result.Images[0].MimeType)
	assert.Equal(t, "instagram_square", img.Result.Images[0].OutputFormat)
	assert.Equal(t, types.StyleBold, img.Metadata.StylePreset)
	assert.Equal(t, "imagegen-3", img.Metadata.ModelVersion)

	vid, err := c.GetJobStatus(ctx, "vid-1")
	require.NoError(t, err)
	assert.Equal(t, types.ContentVideo, vid.ContentType)
	require.NotNil(t, vid.Result.Video)
	assert.Equal(t, 15, vid.Result.Video.DurationSeconds)
	assert.Equal(t, "9:16", vid.Result.Video.AspectRatio)
	assert.Equal(t, "https://cdn.example.com/out/vid-1.jpg", vid.Result.Video.ThumbnailURL)

	bad, err := c.GetJobStatus(ctx, "bad-1")
	require.NoError(t, err)
	assert.Equal(t, generation.StatusFailed, bad.Status)
	assert.Equal(t, "content policy", bad.Error)

	queued, err := c.GetJobStatus(ctx, "new-1")
	require.NoError(t, err)
	assert.Equal(t, generation.StatusPending, queued.Status)
	assert.Nil(t, queued.Result)
	assert.Equal(t, queued.CreatedAt.Add(5*time.Second), queued.UpdatedAt)
}

func TestAsyncClient_EmptyJobIDMakesNoRequest(t *testing.T) {
	server := mocks.NewJobServer(t)
	c := newAsyncClient(t, server)
	ctx := testutil.TestContext(t)

	_, err := c.GetJobStatus(ctx, "")
	testutil.AssertErrorCode(t, err, types.ErrValidation)
	_, err = c.CancelJob(ctx, "")
	testutil.AssertErrorCode(t, err, types.ErrValidation)
	_, err = c.PollToCompletion(ctx, "", nil)
	testutil.AssertErrorCode(t, err, types.ErrValidation)
	assert.Empty(t, server.Requests())
}

func TestAsyncClient_CancelJob(t *testing.T) {
	server := mocks.NewJobServer(t).
		AddJob("running", "video", "processing").
		AddJob("done", "image", "completed")
	c := newAsyncClient(t, server)
	ctx := testutil.TestContext(t)

	res, err := c.CancelJob(ctx, "running")
	require.NoError(t, err)
	assert.True(t, res.Cancelled)
	assert.Equal(t, generation.StatusCancelled, res.Status)

	_, err = c.PollToCompletion(ctx, "running", nil)
	testutil.AssertErrorCode(t, err, types.ErrJobCancelled)

	res, err = c.CancelJob(ctx, "done")
	require.NoError(t, err)
	assert.False(t, res.Cancelled)
	assert.Equal(t, "job already completed", res.Message)

	_, err = c.CancelJob(ctx, "ghost")
	testutil.AssertErrorCode(t, err, types.ErrJobNotFound)
}

func TestAsyncClient_RetriesThenSucceeds(t *testing.T) {
	server := mocks.NewJobServer(t).FailNext(
		mocks.Failure{Status: http.StatusServiceUnavailable, Body: `{"error":{"message":"overloaded"}}`},
		mocks.Failure{Status: http.StatusTooManyRequests, Header: http.Header{"Retry-After": {"0"}}},
	)
	c := newAsyncClient(t, server)

	job, err := c.SubmitImage(testutil.TestContext(t), imageRequest())
	require.NoError(t, err)
	assert.Equal(t, "job-1", job.ID)
	assert.Equal(t, 3, server.Count(http.MethodPost, "/v1/generations/images"))
}

func TestAsyncClient_AuthenticationIsNotRetried(t *testing.T) {
	server := mocks.NewJobServer(t).FailNext(mocks.Failure{Status: http.StatusUnauthorized, Body: `{"error":"bad key"}`})
	c := newAsyncClient(t, server)

	_, err := c.SubmitImage(testutil.TestContext(t), imageRequest())
	testutil.AssertErrorCode(t, err, types.ErrAuthentication)
	assert.Len(t, server.Requests(), 1)
}

func TestAsyncClient_UnknownStatusIsDecodeError(t *testing.T) {
	server := mocks.NewJobServer(t).AddJob("weird", "image", "processing", "exploded")
	c := newAsyncClient(t, server)

	_, err := c.GetJobStatus(testutil.TestContext(t), "weird")
	e := testutil.AssertErrorCode(t, err, types.ErrServiceError)
	assert.Equal(t, types.ServiceCodeDecode, e.ServiceCode)
}

func TestAsyncClient_PollAll(t *testing.T) {
	server := mocks.NewJobServer(t)
	c := newAsyncClient(t, server)
	ctx := testutil.TestContext(t)

	var ids []string
	for i := 0; i < 3; i++ {
		job, err := c.SubmitImage(ctx, imageRequest())
		require.NoError(t, err)
		ids = append(ids, job.ID)
	}
	jobs, err := c.Poller().PollAll(ctx, ids, c.PollingFor(types.ContentImage))
	require.NoError(t, err)
	for i, job := range jobs {
		assert.Equal(t, ids[i], job.ID)
		assert.Equal(t, generation.StatusCompleted, job.Status)
	}
}

func TestAsyncClient_Capabilities(t *testing.T) {
	c := newAsyncClient(t, mocks.NewJobServer(t))
	assert.Equal(t, generation.Capabilities{Image: true, Video: true, StatusLookup: true, Cancel: true}, c.Capabilities())
	assert.Equal(t, 20, c.PollingFor(types.ContentVideo).MaxAttempts)

	_, err := generation.NewAsyncClient(generation.DefaultAsyncConfig())
	assert.Error(t, err, "base url is required")
}
