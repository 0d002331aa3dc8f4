package jobstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/BaSui01/creativeflow/generation"
	"github.com/BaSui01/creativeflow/types"
)

// =============================================================================
// 🗄️ SQL 快照存储 (GORM)
// =============================================================================

// SQLConfig 数据库连接配置
type SQLConfig struct {
	// 驱动类型: postgres, mysql, sqlite
	Driver string `yaml:"driver" json:"driver"`

	// 连接串; sqlite 为文件路径或 ":memory:"
	DSN string `yaml:"dsn" json:"-"`

	MaxOpenConns    int           `yaml:"max_open_conns" json:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns" json:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime" json:"conn_max_lifetime"`
}

// OpenSQL 根据驱动打开数据库并配置连接池
func OpenSQL(cfg SQLConfig, logger *zap.Logger) (*gorm.DB, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	var dialector gorm.Dialector
	switch cfg.Driver {
	case "postgres":
		dialector = postgres.Open(cfg.DSN)
	case "mysql":
		dialector = mysql.Open(cfg.DSN)
	case "sqlite":
		dialector = sqlite.Open(cfg.DSN)
	case "":
		return nil, fmt.Errorf("database driver not configured")
	default:
		return nil, fmt.Errorf("unsupported database driver: %s (supported: postgres, mysql, sqlite)", cfg.Driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get sql.DB: %w", err)
	}
	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	logger.Info("database connected", zap.String("driver", cfg.Driver))
	return db, nil
}

// jobRecord 作业快照表. 结果与元数据以 JSON 文本保存.
type jobRecord struct {
	ID          string `gorm:"primaryKey;size:128"`
	Provider    string `gorm:"size:64;index"`
	ContentType string `gorm:"size:16"`
	Status      string `gorm:"size:16;index"`
	Error       string `gorm:"type:text"`
	Result      string `gorm:"type:text"`
	Metadata    string `gorm:"type:text"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (jobRecord) TableName() string { return "generation_jobs" }

// SQLStore 基于 GORM 的快照存储
type SQLStore struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewSQLStore 创建存储. migrate 为 true 时执行 AutoMigrate.
func NewSQLStore(db *gorm.DB, migrate bool, logger *zap.Logger) (*SQLStore, error) {
	if db == nil {
		return nil, fmt.Errorf("db cannot be nil")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if migrate {
		if err := db.AutoMigrate(&jobRecord{}); err != nil {
			return nil, fmt.Errorf("failed to migrate job table: %w", err)
		}
	}
	return &SQLStore{db: db, logger: logger.With(zap.String("component", "jobstore_sql"))}, nil
}

// Save 在事务内读取旧快照、校验状态单调后写入
func (s *SQLStore) Save(ctx context.Context, job *generation.Job) error {
	if err := checkJob(job); err != nil {
		return err
	}
	rec, err := toRecord(job)
	if err != nil {
		return err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var old jobRecord
		err := tx.Where("id = ?", job.ID).Take(&old).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			return tx.Create(rec).Error
		case err != nil:
			return err
		}
		if err := checkTransition(job.ID, generation.JobStatus(old.Status), job.Status); err != nil {
			return err
		}
		return tx.Model(&jobRecord{}).Where("id = ?", job.ID).Updates(map[string]any{
			"provider":     rec.Provider,
			"content_type": rec.ContentType,
			"status":       rec.Status,
			"error":        rec.Error,
			"result":       rec.Result,
			"metadata":     rec.Metadata,
			"updated_at":   rec.UpdatedAt,
		}).Error
	})
	if err != nil && !errors.Is(err, ErrStatusRegression) {
		s.logger.Error("job save failed", zap.String("job_id", job.ID), zap.Error(err))
		return fmt.Errorf("job save failed: %w", err)
	}
	return err
}

// Get 读取快照
func (s *SQLStore) Get(ctx context.Context, id string) (*generation.Job, error) {
	var rec jobRecord
	err := s.db.WithContext(ctx).Where("id = ?", id).Take(&rec).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("job get failed: %w", err)
	}
	return rec.toJob()
}

func toRecord(job *generation.Job) (*jobRecord, error) {
	rec := &jobRecord{
		ID:          job.ID,
		Provider:    job.Provider,
		ContentType: string(job.ContentType),
		Status:      string(job.Status),
		Error:       job.Error,
		CreatedAt:   job.CreatedAt,
		UpdatedAt:   job.UpdatedAt,
	}
	if rec.UpdatedAt.IsZero() {
		rec.UpdatedAt = time.Now()
	}
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = rec.UpdatedAt
	}
	if job.Result != nil {
		data, err := json.Marshal(job.Result)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal job result: %w", err)
		}
		rec.Result = string(data)
	}
	meta, err := json.Marshal(job.Metadata)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal job metadata: %w", err)
	}
	rec.Metadata = string(meta)
	return rec, nil
}

func (r *jobRecord) toJob() (*generation.Job, error) {
	job := &generation.Job{
		ID:          r.ID,
		Provider:    r.Provider,
		ContentType: types.ContentType(r.ContentType),
		Status:      generation.JobStatus(r.Status),
		Error:       r.Error,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
	if r.Result != "" {
		job.Result = &generation.JobResult{}
		if err := json.Unmarshal([]byte(r.Result), job.Result); err != nil {
			return nil, fmt.Errorf("failed to unmarshal job result: %w", err)
		}
	}
	if r.Metadata != "" {
		if err := json.Unmarshal([]byte(r.Metadata), &job.Metadata); err != nil {
			return nil, fmt.Errorf("failed to unmarshal job metadata: %w", err)
		}
	}
	return job, nil
}
