// =============================================================================
// 📦 CreativeFlow 默认配置
// =============================================================================
// 提供所有配置项的合理默认值
// =============================================================================
package config

import "time"

// DefaultConfig 返回默认配置
func DefaultConfig() *Config {
	return &Config{
		Async:     DefaultAsyncConfig(),
		Gemini:    DefaultGeminiConfig(),
		Prompt:    DefaultPromptConfig(),
		JobStore:  DefaultJobStoreConfig(),
		Log:       DefaultLogConfig(),
		Telemetry: DefaultTelemetryConfig(),
		Metrics:   DefaultMetricsConfig(),
	}
}

// DefaultAsyncConfig 返回默认异步后端配置
// 图像 2s × 30，视频 5s × 120
func DefaultAsyncConfig() AsyncConfig {
	return AsyncConfig{
		Name:              "async",
		Timeout:           30 * time.Second,
		MaxRetries:        3,
		BaseDelay:         time.Second,
		RateBurst:         1,
		ImagePollInterval: 2 * time.Second,
		ImagePollAttempts: 30,
		VideoPollInterval: 5 * time.Second,
		VideoPollAttempts: 120,
	}
}

// DefaultGeminiConfig 返回默认 Gemini 配置
func DefaultGeminiConfig() GeminiConfig {
	return GeminiConfig{
		Enabled:    false,
		BaseURL:    "https://generativelanguage.googleapis.com",
		Model:      "gemini-2.5-flash-image",
		Timeout:    120 * time.Second,
		MaxRetries: 2,
		BaseDelay:  2 * time.Second,
	}
}

// DefaultPromptConfig 返回默认提示词配置
func DefaultPromptConfig() PromptConfig {
	return PromptConfig{
		MaxReferenceImages:  14,
		MaxObjectReferences: 6,
		MaxHumanReferences:  5,
	}
}

// DefaultJobStoreConfig 返回默认作业存储配置（不持久化）
func DefaultJobStoreConfig() JobStoreConfig {
	return JobStoreConfig{
		Backend:     "none",
		AutoMigrate: true,
		Redis:       DefaultRedisConfig(),
		Database:    DefaultDatabaseConfig(),
	}
}

// DefaultRedisConfig 返回默认 Redis 配置
func DefaultRedisConfig() RedisConfig {
	return RedisConfig{
		Addr:      "localhost:6379",
		Password:  "",
		DB:        0,
		PoolSize:  10,
		KeyPrefix: "creativeflow:job:",
		TTL:       7 * 24 * time.Hour,
	}
}

// DefaultDatabaseConfig 返回默认数据库配置
func DefaultDatabaseConfig() DatabaseConfig {
	return DatabaseConfig{
		Driver:          "sqlite",
		Host:            "localhost",
		Port:            5432,
		User:            "creativeflow",
		Password:        "",
		Name:            "creativeflow.db",
		SSLMode:         "disable",
		MaxOpenConns:    10,
		MaxIdleConns:    2,
		ConnMaxLifetime: 30 * time.Minute,
	}
}

// DefaultLogConfig 返回默认日志配置
func DefaultLogConfig() LogConfig {
	return LogConfig{
		Level:            "info",
		Format:           "console",
		OutputPaths:      []string{"stderr"},
		EnableCaller:     false,
		EnableStacktrace: false,
	}
}

// DefaultTelemetryConfig 返回默认遥测配置
func DefaultTelemetryConfig() TelemetryConfig {
	return TelemetryConfig{
		Enabled:      false,
		OTLPEndpoint: "localhost:4317",
		ServiceName:  "creativeflow",
		SampleRate:   0.1,
	}
}

// DefaultMetricsConfig 返回默认指标配置
func DefaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Enabled:   false,
		Namespace: "creativeflow",
	}
}
