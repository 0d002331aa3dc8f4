package jobstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/BaSui01/creativeflow/generation"
)

// =============================================================================
// 💾 Redis 快照存储
// =============================================================================

// RedisConfig Redis 存储配置
type RedisConfig struct {
	// Redis 地址
	Addr string `yaml:"addr" json:"addr" env:"ADDR"`

	// 密码
	Password string `yaml:"password" json:"-" env:"PASSWORD"`

	// 数据库编号
	DB int `yaml:"db" json:"db" env:"DB"`

	// 键前缀
	KeyPrefix string `yaml:"key_prefix" json:"key_prefix" env:"KEY_PREFIX"`

	// 快照保留时间，0 表示不过期
	TTL time.Duration `yaml:"ttl" json:"ttl" env:"TTL"`

	// 最大重试次数
	MaxRetries int `yaml:"max_retries" json:"max_retries" env:"MAX_RETRIES"`

	// 连接池大小
	PoolSize int `yaml:"pool_size" json:"pool_size" env:"POOL_SIZE"`
}

// DefaultRedisConfig 返回默认 Redis 存储配置
func DefaultRedisConfig() RedisConfig {
	return RedisConfig{
		Addr:       "localhost:6379",
		KeyPrefix:  "creativeflow:job:",
		TTL:        7 * 24 * time.Hour,
		MaxRetries: 3,
		PoolSize:   10,
	}
}

// watchRetries 乐观锁冲突时的重试次数
const watchRetries = 5

// RedisStore 以 JSON 保存作业快照，Save 使用 WATCH 保证状态单调
type RedisStore struct {
	client *redis.Client
	config RedisConfig
	logger *zap.Logger
}

// NewRedisStore 连接 Redis 并创建存储
func NewRedisStore(config RedisConfig, logger *zap.Logger) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:       config.Addr,
		Password:   config.Password,
		DB:         config.DB,
		MaxRetries: config.MaxRetries,
		PoolSize:   config.PoolSize,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return NewRedisStoreWithClient(client, config, logger), nil
}

// NewRedisStoreWithClient 使用已有客户端创建存储
func NewRedisStoreWithClient(client *redis.Client, config RedisConfig, logger *zap.Logger) *RedisStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.KeyPrefix == "" {
		config.KeyPrefix = DefaultRedisConfig().KeyPrefix
	}
	logger.Info("redis job store initialized", zap.String("addr", client.Options().Addr))
	return &RedisStore{
		client: client,
		config: config,
		logger: logger.With(zap.String("component", "jobstore_redis")),
	}
}

func (s *RedisStore) key(id string) string { return s.config.KeyPrefix + id }

// Save 保存快照
func (s *RedisStore) Save(ctx context.Context, job *generation.Job) error {
	if err := checkJob(job); err != nil {
		return err
	}
	data, err := json.Marshal(job)
	if err != nil {
		return fmt.Errorf("failed to marshal job: %w", err)
	}
	key := s.key(job.ID)

	txf := func(tx *redis.Tx) error {
		prev, err := tx.Get(ctx, key).Bytes()
		switch {
		case errors.Is(err, redis.Nil):
		case err != nil:
			return err
		default:
			var old generation.Job
			if err := json.Unmarshal(prev, &old); err != nil {
				return fmt.Errorf("failed to unmarshal stored job: %w", err)
			}
			if err := checkTransition(job.ID, old.Status, job.Status); err != nil {
				return err
			}
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, s.config.TTL)
			return nil
		})
		return err
	}

	for i := 0; i < watchRetries; i++ {
		err = s.client.Watch(ctx, txf, key)
		if !errors.Is(err, redis.TxFailedErr) {
			break
		}
		s.logger.Debug("快照写入冲突，重试", zap.String("job_id", job.ID), zap.Int("attempt", i+1))
	}
	if err != nil {
		if !errors.Is(err, ErrStatusRegression) {
			s.logger.Error("job save failed", zap.String("job_id", job.ID), zap.Error(err))
		}
		return err
	}
	return nil
}

// Get 读取快照
func (s *RedisStore) Get(ctx context.Context, id string) (*generation.Job, error) {
	data, err := s.client.Get(ctx, s.key(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("job get failed: %w", err)
	}
	var job generation.Job
	if err := json.Unmarshal(data, &job); err != nil {
		return nil, fmt.Errorf("failed to unmarshal stored job: %w", err)
	}
	return &job, nil
}

// Ping 检查 Redis 连接
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close 关闭连接
func (s *RedisStore) Close() error {
	return s.client.Close()
}
