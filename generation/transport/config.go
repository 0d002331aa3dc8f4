package transport

import (
	"errors"
	"time"
)

// Config 配置传输客户端。构造后不可变。
type Config struct {
	BaseURL string `json:"base_url" yaml:"base_url"`
	APIKey  string `json:"-" yaml:"api_key"`
	// APIKeyHeader sends the key verbatim in this header instead of "Authorization: Bearer".
	APIKeyHeader string        `json:"api_key_header,omitempty" yaml:"api_key_header"`
	Provider     string        `json:"provider" yaml:"provider"`
	Timeout      time.Duration `json:"timeout" yaml:"timeout"`         // 单次尝试超时
	MaxRetries   int           `json:"max_retries" yaml:"max_retries"` // 0 表示不重试
	BaseDelay    time.Duration `json:"base_delay" yaml:"base_delay"`   // 第 n 次重试等待 BaseDelay*(n+1)
	RateLimit    float64       `json:"rate_limit" yaml:"rate_limit"`   // 每秒请求数，0 表示不限流
	RateBurst    int           `json:"rate_burst" yaml:"rate_burst"`
	UserAgent    string        `json:"user_agent" yaml:"user_agent"`
}

// DefaultConfig 返回默认传输配置.
func DefaultConfig() Config {
	return Config{
		Provider:   "async",
		Timeout:    30 * time.Second,
		MaxRetries: 3,
		BaseDelay:  time.Second,
		RateBurst:  1,
		UserAgent:  "creativeflow/1.0",
	}
}

// withDefaults fills zero fields. MaxRetries is kept as given.
func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.Provider == "" {
		c.Provider = d.Provider
	}
	if c.Timeout <= 0 {
		c.Timeout = d.Timeout
	}
	if c.MaxRetries < 0 {
		c.MaxRetries = 0
	}
	if c.BaseDelay <= 0 {
		c.BaseDelay = d.BaseDelay
	}
	if c.RateBurst <= 0 {
		c.RateBurst = d.RateBurst
	}
	if c.UserAgent == "" {
		c.UserAgent = d.UserAgent
	}
	return c
}

// Validate 校验配置.
func (c Config) Validate() error {
	if c.BaseURL == "" {
		return errors.New("transport: base_url is required")
	}
	if c.RateLimit < 0 {
		return errors.New("transport: rate_limit must be >= 0")
	}
	return nil
}

// Policy returns the linear retry schedule for this config.
func (c Config) Policy() RetryPolicy {
	return RetryPolicy{MaxRetries: c.MaxRetries, BaseDelay: c.BaseDelay}
}

// RetryPolicy is the linear backoff schedule.
type RetryPolicy struct {
	MaxRetries int
	BaseDelay  time.Duration
}

// Delay returns the wait before the retry that follows attempt (0-based).
// A positive server hint overrides the schedule.
func (p RetryPolicy) Delay(attempt int, serverHint time.Duration) time.Duration {
	if serverHint > 0 {
		return serverHint
	}
	return p.BaseDelay * time.Duration(attempt+1)
}
