package generation

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/BaSui01/creativeflow/types"
)

func newGeminiForTest(t *testing.T, handler http.HandlerFunc) *GeminiGenerator {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	cfg := DefaultGeminiConfig()
	cfg.APIKey = "gm-key"
	cfg.BaseURL = server.URL
	cfg.MaxRetries = 1
	cfg.BaseDelay = time.Millisecond
	cfg.Timeout = 2 * time.Second
	g, err := NewGeminiGenerator(cfg, WithLogger(zaptest.NewLogger(t)))
	require.NoError(t, err)
	return g
}

func TestGemini_GenerateImage(t *testing.T) {
	var body map[string]any
	g := newGeminiForTest(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1beta/models/gemini-2.5-flash-image:generateContent", r.URL.Path)
		assert.Equal(t, "gm-key", r.Header.Get("x-goog-api-key"))
		raw, _ := io.ReadAll(r.Body)
		assert.NoError(t, json.Unmarshal(raw, &body))
		_, _ = io.WriteString(w, `{"candidates":[{"content":{"parts":[{"text":"ok"},{"inlineData":{"mimeType":"image/png","data":"iVBORw0KGgo="}}]}}]}`)
	})

	seed := int64(42)
	img, err := g.GenerateImage(context.Background(), InlineImageRequest{
		Prompt:         "a coffee can on marble",
		NegativePrompt: "blurry",
		AspectRatio:    "1080:1350",
		Seed:           &seed,
		ReferenceImages: []types.ReferenceImage{
			{URL: "https://cdn.example.com/can.png?v=2", Type: types.RefProduct},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "iVBORw0KGgo=", img.B64Data)
	assert.Equal(t, "image/png", img.MimeType)

	contents := body["contents"].([]any)
	parts := contents[0].(map[string]any)["parts"].([]any)
	require.Len(t, parts, 2)
	assert.Equal(t, "a coffee can on marble\n\nAvoid: blurry", parts[0].(map[string]any)["text"])
	file := parts[1].(map[string]any)["fileData"].(map[string]any)
	assert.Equal(t, "image/png", file["mimeType"])

	cfg := body["generationConfig"].(map[string]any)
	assert.Equal(t, float64(42), cfg["seed"])
	assert.Equal(t, "4:5", cfg["imageConfig"].(map[string]any)["aspectRatio"])
}

func TestGemini_BlockedAndEmpty(t *testing.T) {
	t.Run("blocked", func(t *testing.T) {
		g := newGeminiForTest(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = io.WriteString(w, `{"promptFeedback":{"blockReason":"SAFETY"}}`)
		})
		_, err := g.GenerateImage(context.Background(), InlineImageRequest{Prompt: "p"})
		e, ok := types.AsError(err)
		require.True(t, ok)
		assert.Equal(t, "CONTENT_BLOCKED", e.ServiceCode)
		assert.False(t, e.Retryable)
	})
	t.Run("no image", func(t *testing.T) {
		g := newGeminiForTest(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = io.WriteString(w, `{"candidates":[{"content":{"parts":[{"text":"sorry"}]},"finishReason":"IMAGE_SAFETY"}]}`)
		})
		_, err := g.GenerateImage(context.Background(), InlineImageRequest{Prompt: "p"})
		e, ok := types.AsError(err)
		require.True(t, ok)
		assert.Equal(t, "NO_IMAGE", e.ServiceCode)
		assert.Contains(t, e.Message, "IMAGE_SAFETY")
	})
}

func TestGemini_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	g := newGeminiForTest(t, func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = io.WriteString(w, `{"candidates":[{"content":{"parts":[{"inlineData":{"mimeType":"image/jpeg","data":"abc"}}]}}]}`)
	})
	img, err := g.GenerateImage(context.Background(), InlineImageRequest{Prompt: "p"})
	require.NoError(t, err)
	assert.Equal(t, "image/jpeg", img.MimeType)
	assert.Equal(t, int32(2), calls.Load())
}

func TestGemini_ThroughSyncClient(t *testing.T) {
	g := newGeminiForTest(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"candidates":[{"content":{"parts":[{"inlineData":{"mimeType":"image/png","data":"abc"}}]}}]}`)
	})
	c := NewSyncClient(g)
	job, err := c.SubmitImage(context.Background(), validImage())
	require.NoError(t, err)
	assert.Equal(t, "gemini", job.Provider)
	assert.Equal(t, "gemini-2.5-flash-image", job.Metadata.ModelVersion)
	require.Len(t, job.Result.Images, 1)
	assert.Equal(t, 1080, job.Result.Images[0].Width)
}

func TestGeminiConfig_Validate(t *testing.T) {
	_, err := NewGeminiGenerator(DefaultGeminiConfig())
	assert.Error(t, err)

	cfg := DefaultGeminiConfig()
	cfg.APIKey = "k"
	cfg.Model = ""
	assert.Error(t, cfg.Validate())
}

func TestNearestGeminiAspectRatio(t *testing.T) {
	tests := map[string]string{
		"1:1":       "1:1",
		"16:9":      "16:9",
		"1080:1350": "4:5",
		"1080:1920": "9:16",
		"1.91:1":    "",
		"2:1":       "16:9",
		"5:2":       "21:9",
		"7:5":       "4:3",
		"bogus":     "",
	}
	for in, want := range tests {
		assert.Equal(t, want, NearestGeminiAspectRatio(in), in)
	}
}

func TestMimeFromURL(t *testing.T) {
	assert.Equal(t, "image/png", mimeFromURL("https://x/y.PNG?sig=1"))
	assert.Equal(t, "image/jpeg", mimeFromURL("https://x/y"))
}
