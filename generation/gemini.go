package generation

import (
	"context"
	"fmt"
	"math"
	"mime"
	"net/http"
	"path"
	"strings"

	"go.uber.org/zap"

	"github.com/BaSui01/creativeflow/generation/transport"
	"github.com/BaSui01/creativeflow/types"
)

// geminiAspectRatios are the ratios accepted by Gemini image generation.
var geminiAspectRatios = []string{"1:1", "2:3", "3:2", "3:4", "4:3", "4:5", "5:4", "9:16", "16:9", "21:9"}

// GeminiGenerator implements InlineGenerator on Gemini generateContent.
type GeminiGenerator struct {
	cfg       GeminiConfig
	transport *transport.Client
	logger    *zap.Logger
}

// NewGeminiGenerator 创建 Gemini 内联生成器. 调用沿用 transport 的超时与重试.
func NewGeminiGenerator(cfg GeminiConfig, opts ...ClientOption) (*GeminiGenerator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	d := DefaultGeminiConfig()
	if cfg.BaseURL == "" {
		cfg.BaseURL = d.BaseURL
	}
	o := collectOptions(opts)

	topts := []transport.Option{transport.WithLogger(o.logger), transport.WithHTTPClient(o.httpClient)}
	if o.observer != nil {
		topts = append(topts, transport.WithObserver(o.observer))
	}
	tc, err := transport.NewClient(transport.Config{
		BaseURL:      cfg.BaseURL,
		APIKey:       cfg.APIKey,
		APIKeyHeader: "x-goog-api-key",
		Provider:     "gemini",
		Timeout:      cfg.Timeout,
		MaxRetries:   cfg.MaxRetries,
		BaseDelay:    cfg.BaseDelay,
	}, topts...)
	if err != nil {
		return nil, fmt.Errorf("gemini generator: %w", err)
	}
	return &GeminiGenerator{
		cfg:       cfg,
		transport: tc,
		logger:    o.logger.With(zap.String("component", "gemini")),
	}, nil
}

func (g *GeminiGenerator) Name() string  { return "gemini" }
func (g *GeminiGenerator) Model() string { return g.cfg.Model }

type geminiPart struct {
	Text     string          `json:"text,omitempty"`
	FileData *geminiFileData `json:"fileData,omitempty"`
}

type geminiFileData struct {
	MimeType string `json:"mimeType"`
	FileURI  string `json:"fileUri"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
	Role  string       `json:"role,omitempty"`
}

type geminiImageConfig struct {
	AspectRatio string `json:"aspectRatio,omitempty"`
}

type geminiGenConfig struct {
	ResponseModalities []string           `json:"responseModalities"`
	Seed               *int64             `json:"seed,omitempty"`
	ImageConfig        *geminiImageConfig `json:"imageConfig,omitempty"`
}

type geminiRequest struct {
	Contents         []geminiContent `json:"contents"`
	GenerationConfig geminiGenConfig `json:"generationConfig"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text       string `json:"text,omitempty"`
				InlineData *struct {
					MimeType string `json:"mimeType"`
					Data     string `json:"data"`
				} `json:"inlineData,omitempty"`
			} `json:"parts"`
		} `json:"content"`
		FinishReason string `json:"finishReason"`
	} `json:"candidates"`
	PromptFeedback struct {
		BlockReason string `json:"blockReason"`
	} `json:"promptFeedback"`
	ModelVersion string `json:"modelVersion"`
}

// GenerateImage performs one generateContent call and returns the first inline image.
func (g *GeminiGenerator) GenerateImage(ctx context.Context, req InlineImageRequest) (*GeneratedImage, error) {
	parts := []geminiPart{{Text: geminiPromptText(req)}}
	for _, ref := range req.ReferenceImages {
		parts = append(parts, geminiPart{FileData: &geminiFileData{MimeType: mimeFromURL(ref.URL), FileURI: ref.URL}})
	}

	body := geminiRequest{
		Contents: []geminiContent{{Role: "user", Parts: parts}},
		GenerationConfig: geminiGenConfig{
			ResponseModalities: []string{"IMAGE"},
			Seed:               req.Seed,
		},
	}
	if ratio := NearestGeminiAspectRatio(req.AspectRatio); ratio != "" {
		body.GenerationConfig.ImageConfig = &geminiImageConfig{AspectRatio: ratio}
	}

	var resp geminiResponse
	endpoint := fmt.Sprintf("/v1beta/models/%s:generateContent", g.cfg.Model)
	if err := g.transport.DoJSON(ctx, http.MethodPost, endpoint, body, &resp); err != nil {
		return nil, err
	}

	if reason := resp.PromptFeedback.BlockReason; reason != "" {
		return nil, types.NewServiceError("CONTENT_BLOCKED", "prompt blocked: "+reason).
			WithRetryable(false).WithProvider(g.Name())
	}
	for _, cand := range resp.Candidates {
		for _, part := range cand.Content.Parts {
			if part.InlineData != nil && part.InlineData.Data != "" {
				return &GeneratedImage{B64Data: part.InlineData.Data, MimeType: part.InlineData.MimeType}, nil
			}
		}
	}

	reason := "no image returned"
	if len(resp.Candidates) > 0 && resp.Candidates[0].FinishReason != "" {
		reason += " (finish reason " + resp.Candidates[0].FinishReason + ")"
	}
	g.logger.Warn("Gemini 未返回图像", zap.String("reason", reason))
	return nil, types.NewServiceError("NO_IMAGE", reason).WithRetryable(false).WithProvider(g.Name())
}

func geminiPromptText(req InlineImageRequest) string {
	text := strings.TrimSpace(req.Prompt)
	if neg := strings.TrimSpace(req.NegativePrompt); neg != "" {
		text += "\n\nAvoid: " + neg
	}
	return text
}

// NearestGeminiAspectRatio maps any W:H ratio to the closest supported one.
// Returns "" for an unparsable ratio.
func NearestGeminiAspectRatio(ratio string) string {
	w, h, err := types.ParseAspectRatio(ratio)
	if err != nil {
		return ""
	}
	target := math.Log(float64(w) / float64(h))
	best, bestDiff := "", math.Inf(1)
	for _, cand := range geminiAspectRatios {
		cw, ch, _ := types.ParseAspectRatio(cand)
		if diff := math.Abs(math.Log(float64(cw)/float64(ch)) - target); diff < bestDiff {
			best, bestDiff = cand, diff
		}
	}
	return best
}

func mimeFromURL(u string) string {
	if i := strings.IndexAny(u, "?#"); i >= 0 {
		u = u[:i]
	}
	if t := mime.TypeByExtension(strings.ToLower(path.Ext(u))); t != "" {
		if i := strings.Index(t, ";"); i >= 0 {
			t = t[:i]
		}
		return t
	}
	return "image/jpeg"
}
