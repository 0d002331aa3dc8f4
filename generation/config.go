package generation

import (
	"errors"
	"time"

	"github.com/BaSui01/creativeflow/generation/transport"
)

// PollOptions 轮询参数，可按调用覆盖.
type PollOptions struct {
	Interval    time.Duration `json:"interval" yaml:"interval"`
	MaxAttempts int           `json:"max_attempts" yaml:"max_attempts"`
}

// DefaultImagePolling 图像默认轮询预算：2s × 30 ≈ 1 分钟.
func DefaultImagePolling() PollOptions {
	return PollOptions{Interval: 2 * time.Second, MaxAttempts: 30}
}

// DefaultVideoPolling 视频默认轮询预算：5s × 120 ≈ 10 分钟.
func DefaultVideoPolling() PollOptions {
	return PollOptions{Interval: 5 * time.Second, MaxAttempts: 120}
}

func (o PollOptions) orDefault(d PollOptions) PollOptions {
	if o.Interval <= 0 {
		o.Interval = d.Interval
	}
	if o.MaxAttempts <= 0 {
		o.MaxAttempts = d.MaxAttempts
	}
	return o
}

// AsyncConfig 配置异步作业队列后端.
type AsyncConfig struct {
	Name         string           `json:"name" yaml:"name"`
	Transport    transport.Config `json:"transport" yaml:"transport"`
	ImagePolling PollOptions      `json:"image_polling" yaml:"image_polling"`
	VideoPolling PollOptions      `json:"video_polling" yaml:"video_polling"`
}

// DefaultAsyncConfig 返回默认异步后端配置.
func DefaultAsyncConfig() AsyncConfig {
	return AsyncConfig{
		Name:         "async",
		Transport:    transport.DefaultConfig(),
		ImagePolling: DefaultImagePolling(),
		VideoPolling: DefaultVideoPolling(),
	}
}

// GeminiConfig 配置 Gemini 内联图像生成.
type GeminiConfig struct {
	APIKey     string        `json:"-" yaml:"api_key"`
	BaseURL    string        `json:"base_url" yaml:"base_url"`
	Model      string        `json:"model" yaml:"model"`
	Timeout    time.Duration `json:"timeout" yaml:"timeout"`
	MaxRetries int           `json:"max_retries" yaml:"max_retries"`
	BaseDelay  time.Duration `json:"base_delay" yaml:"base_delay"`
}

// DefaultGeminiConfig 返回默认 Gemini 配置.
func DefaultGeminiConfig() GeminiConfig {
	return GeminiConfig{
		BaseURL:    "https://generativelanguage.googleapis.com",
		Model:      "gemini-2.5-flash-image",
		Timeout:    120 * time.Second,
		MaxRetries: 2,
		BaseDelay:  2 * time.Second,
	}
}

// Validate 校验 Gemini 配置.
func (c GeminiConfig) Validate() error {
	if c.APIKey == "" {
		return errors.New("gemini: api_key is required")
	}
	if c.Model == "" {
		return errors.New("gemini: model is required")
	}
	return nil
}
