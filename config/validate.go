package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate 校验配置的内部一致性. 不检查外部资源是否可达.
func (c *Config) Validate() error {
	var errs []error

	a := c.Async
	if a.Timeout <= 0 {
		errs = append(errs, errors.New("async.timeout must be positive"))
	}
	if a.MaxRetries < 0 {
		errs = append(errs, errors.New("async.max_retries must be >= 0"))
	}
	if a.RateLimit < 0 {
		errs = append(errs, errors.New("async.rate_limit must be >= 0"))
	}
	if a.ImagePollInterval <= 0 || a.ImagePollAttempts <= 0 {
		errs = append(errs, errors.New("async image polling needs a positive interval and attempt count"))
	}
	if a.VideoPollInterval <= 0 || a.VideoPollAttempts <= 0 {
		errs = append(errs, errors.New("async video polling needs a positive interval and attempt count"))
	}

	if c.Gemini.Enabled {
		if c.Gemini.APIKey == "" {
			errs = append(errs, errors.New("gemini.api_key is required when gemini is enabled"))
		}
		if c.Gemini.Model == "" {
			errs = append(errs, errors.New("gemini.model is required when gemini is enabled"))
		}
	}

	p := c.Prompt
	if p.MaxReferenceImages <= 0 || p.MaxObjectReferences < 0 || p.MaxHumanReferences < 0 {
		errs = append(errs, errors.New("prompt reference limits must be positive"))
	}

	switch c.JobStore.Backend {
	case "", "none":
	case "redis":
		if c.JobStore.Redis.Addr == "" {
			errs = append(errs, errors.New("job_store.redis.addr is required"))
		}
	case "database":
		switch c.JobStore.Database.Driver {
		case "postgres", "mysql", "sqlite":
		default:
			errs = append(errs, fmt.Errorf("job_store.database.driver %q is not supported", c.JobStore.Database.Driver))
		}
	default:
		errs = append(errs, fmt.Errorf("job_store.backend %q must be none, redis or database", c.JobStore.Backend))
	}

	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Errorf("log.level %q is invalid", c.Log.Level))
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		errs = append(errs, fmt.Errorf("log.format %q is invalid", c.Log.Format))
	}

	if c.Telemetry.SampleRate < 0 || c.Telemetry.SampleRate > 1 {
		errs = append(errs, errors.New("telemetry.sample_rate must be within [0, 1]"))
	}

	return errors.Join(errs...)
}

// Redacted 返回隐藏密钥后的副本，用于日志输出
func (c Config) Redacted() Config {
	mask := func(s string) string {
		if s == "" {
			return ""
		}
		return "***"
	}
	c.Async.APIKey = mask(c.Async.APIKey)
	c.Gemini.APIKey = mask(c.Gemini.APIKey)
	c.JobStore.Redis.Password = mask(c.JobStore.Redis.Password)
	c.JobStore.Database.Password = mask(c.JobStore.Database.Password)
	return c
}
