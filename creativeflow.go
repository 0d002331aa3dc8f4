// Package creativeflow wires the generation clients, prompt assembler, job
// store and metrics from one config.Config.
//
// Usage:
//
//	import "github.com/BaSui01/creativeflow"
//
//	cfg := config.MustLoad("creativeflow.yaml")
//	stack, err := creativeflow.New(cfg, logger)
//	defer stack.Close()
//
//	client, err := stack.Client(creativeflow.BackendAsync)
//	job, err := generation.GenerateImageAndWait(ctx, client, req, nil)
//
// Clients are built once and are safe for concurrent use. Calling New again
// yields an independent instance.
package creativeflow

import (
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/BaSui01/creativeflow/config"
	"github.com/BaSui01/creativeflow/generation"
	"github.com/BaSui01/creativeflow/generation/prompt"
	"github.com/BaSui01/creativeflow/generation/transport"
	"github.com/BaSui01/creativeflow/internal/metrics"
	"github.com/BaSui01/creativeflow/internal/tlsutil"
	"github.com/BaSui01/creativeflow/jobstore"
)

// Backend names accepted by Stack.Client.
const (
	BackendAsync  = "async"
	BackendGemini = "gemini"
)

// Stack holds everything built from a config.
type Stack struct {
	Async     *generation.AsyncClient
	Sync      *generation.SyncClient
	Assembler *prompt.Assembler
	Metrics   *metrics.Collector
	Store     jobstore.Store

	logger  *zap.Logger
	closers []func() error
}

// Option customizes New.
type Option func(*options)

type options struct {
	httpClient *http.Client
}

// WithHTTPClient replaces the TLS-hardened provider client, e.g. in tests.
func WithHTTPClient(hc *http.Client) Option {
	return func(o *options) { o.httpClient = hc }
}

// New builds the stack. The async client is skipped when async.base_url is empty and
// the Gemini client when gemini.enabled is false; Client reports which one is missing.
func New(cfg *config.Config, logger *zap.Logger, opts ...Option) (*Stack, error) {
	if cfg == nil {
		return nil, errors.New("creativeflow: config is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	var o options
	for _, opt := range opts {
		opt(&o)
	}

	s := &Stack{logger: logger}

	assembler, err := newAssembler(cfg.Prompt)
	if err != nil {
		return nil, err
	}
	s.Assembler = assembler

	clientOpts := []generation.ClientOption{generation.WithLogger(logger)}
	if cfg.Metrics.Enabled {
		s.Metrics = metrics.NewCollector(cfg.Metrics.Namespace, logger)
		clientOpts = append(clientOpts, generation.WithObserver(s.Metrics))
	}

	if cfg.Async.BaseURL != "" {
		hc := o.httpClient
		if hc == nil {
			hc = tlsutil.ProviderHTTPClient(tlsutil.ClientOptions{InsecureSkipVerify: cfg.Async.InsecureSkipVerify})
		}
		s.Async, err = generation.NewAsyncClient(asyncConfig(cfg.Async), append(clientOpts, generation.WithHTTPClient(hc))...)
		if err != nil {
			return nil, err
		}
	}

	if cfg.Gemini.Enabled {
		hc := o.httpClient
		if hc == nil {
			hc = tlsutil.ProviderHTTPClient(tlsutil.ClientOptions{})
		}
		gen, err := generation.NewGeminiGenerator(geminiConfig(cfg.Gemini), append(clientOpts, generation.WithHTTPClient(hc))...)
		if err != nil {
			return nil, err
		}
		s.Sync = generation.NewSyncClient(gen, clientOpts...)
	}

	if err := s.openStore(cfg.JobStore); err != nil {
		return nil, s.abort(err)
	}

	logger.Debug("creativeflow stack ready",
		zap.Bool("async", s.Async != nil),
		zap.Bool("gemini", s.Sync != nil),
		zap.String("job_store", cfg.JobStore.Backend),
		zap.Bool("metrics", s.Metrics != nil))
	return s, nil
}

// Client returns the named backend, wrapped in a jobstore.Recorder when a store is configured.
func (s *Stack) Client(backend string) (generation.JobClient, error) {
	var client generation.JobClient
	switch backend {
	case BackendAsync, "":
		if s.Async == nil {
			return nil, errors.New("async backend is not configured (set async.base_url)")
		}
		client = s.Async
	case BackendGemini:
		if s.Sync == nil {
			return nil, errors.New("gemini backend is not enabled (set gemini.enabled)")
		}
		client = s.Sync
	default:
		return nil, fmt.Errorf("unknown backend %q (supported: %s, %s)", backend, BackendAsync, BackendGemini)
	}
	if s.Store != nil {
		return jobstore.NewRecorder(client, s.Store, s.logger), nil
	}
	return client, nil
}

// Composer returns a composer over entities using the configured assembler.
func (s *Stack) Composer(entities generation.EntityProvider) *generation.Composer {
	return generation.NewComposer(entities, s.Assembler)
}

// Close releases store connections.
func (s *Stack) Close() error {
	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	s.closers = nil
	return errors.Join(errs...)
}

func (s *Stack) openStore(cfg config.JobStoreConfig) error {
	switch cfg.Backend {
	case "", "none":
		return nil
	case "redis":
		store, err := jobstore.NewRedisStore(jobstore.RedisConfig{
			Addr:      cfg.Redis.Addr,
			Password:  cfg.Redis.Password,
			DB:        cfg.Redis.DB,
			KeyPrefix: cfg.Redis.KeyPrefix,
			TTL:       cfg.Redis.TTL,
			PoolSize:  cfg.Redis.PoolSize,
		}, s.logger)
		if err != nil {
			return fmt.Errorf("open redis job store: %w", err)
		}
		s.Store = store
		s.closers = append(s.closers, store.Close)
		return nil
	case "database":
		db, err := OpenDatabase(cfg.Database, s.logger)
		if err != nil {
			return err
		}
		s.closers = append(s.closers, func() error { return closeDB(db) })
		store, err := jobstore.NewSQLStore(db, cfg.AutoMigrate, s.logger)
		if err != nil {
			return fmt.Errorf("open database job store: %w", err)
		}
		s.Store = store
		return nil
	default:
		return fmt.Errorf("unsupported job store backend: %s", cfg.Backend)
	}
}

// OpenDatabase 根据配置打开数据库连接
func OpenDatabase(cfg config.DatabaseConfig, logger *zap.Logger) (*gorm.DB, error) {
	return jobstore.OpenSQL(jobstore.SQLConfig{
		Driver:          cfg.Driver,
		DSN:             cfg.DSN(),
		MaxOpenConns:    cfg.MaxOpenConns,
		MaxIdleConns:    cfg.MaxIdleConns,
		ConnMaxLifetime: cfg.ConnMaxLifetime,
	}, logger)
}

// abort 释放已打开的资源并返回原始错误
func (s *Stack) abort(err error) error {
	if cerr := s.Close(); cerr != nil {
		s.logger.Warn("failed to release partially built stack", zap.Error(cerr))
	}
	return err
}

func closeDB(db *gorm.DB) error {
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func newAssembler(cfg config.PromptConfig) (*prompt.Assembler, error) {
	pc := prompt.Config{References: prompt.ReferenceLimits{
		Total:  cfg.MaxReferenceImages,
		Object: cfg.MaxObjectReferences,
		Human:  cfg.MaxHumanReferences,
	}}
	if cfg.ArchetypesFile != "" {
		extra, err := prompt.LoadArchetypes(cfg.ArchetypesFile)
		if err != nil {
			return nil, err
		}
		pc.Extra = extra
	}
	return prompt.NewAssembler(pc), nil
}

func asyncConfig(c config.AsyncConfig) generation.AsyncConfig {
	return generation.AsyncConfig{
		Name: c.Name,
		Transport: transport.Config{
			BaseURL:    c.BaseURL,
			APIKey:     c.APIKey,
			Provider:   c.Name,
			Timeout:    c.Timeout,
			MaxRetries: c.MaxRetries,
			BaseDelay:  c.BaseDelay,
			RateLimit:  c.RateLimit,
			RateBurst:  c.RateBurst,
		},
		ImagePolling: generation.PollOptions{Interval: c.ImagePollInterval, MaxAttempts: c.ImagePollAttempts},
		VideoPolling: generation.PollOptions{Interval: c.VideoPollInterval, MaxAttempts: c.VideoPollAttempts},
	}
}

func geminiConfig(c config.GeminiConfig) generation.GeminiConfig {
	return generation.GeminiConfig{
		APIKey:     c.APIKey,
		BaseURL:    c.BaseURL,
		Model:      c.Model,
		Timeout:    c.Timeout,
		MaxRetries: c.MaxRetries,
		BaseDelay:  c.BaseDelay,
	}
}
