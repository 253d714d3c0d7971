// Package dao implements the data access layer
package dao

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/haierkeys/knowledge-graph-service/internal/model"
	"github.com/haierkeys/knowledge-graph-service/pkg/util"
	"github.com/haierkeys/knowledge-graph-service/pkg/writequeue"

	"github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
	"gorm.io/gorm/schema"
)

// DatabaseConfig database configuration for the DAO layer
// DatabaseConfig DAO 层数据库配置
type DatabaseConfig struct {
	Type            string
	Path            string
	UserName        string
	Password        string
	Host            string
	Name            string
	TablePrefix     string
	AutoMigrate     bool
	Charset         string
	ParseTime       bool
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime string
	ConnMaxIdleTime string
	RunMode         string
}

// Dao holds the database handle and write serialization facilities
// Dao 持有数据库句柄和写串行化设施
type Dao struct {
	db     *gorm.DB
	ctx    context.Context
	config *DatabaseConfig
	logger *zap.Logger

	writeQueueMgr *writequeue.Manager

	// onceKeys records one-time actions such as per-table migration
	// onceKeys 记录一次性动作，例如按表迁移
	onceKeys sync.Map
}

// Option configures a Dao
type Option func(*Dao)

func WithConfig(c *DatabaseConfig) Option {
	return func(d *Dao) { d.config = c }
}

func WithLogger(lg *zap.Logger) Option {
	return func(d *Dao) { d.logger = lg }
}

func WithWriteQueueManager(m *writequeue.Manager) Option {
	return func(d *Dao) { d.writeQueueMgr = m }
}

// New creates a Dao instance
func New(db *gorm.DB, ctx context.Context, opts ...Option) *Dao {
	d := &Dao{db: db, ctx: ctx}
	for _, opt := range opts {
		opt(d)
	}
	if d.logger == nil {
		d.logger = zap.NewNop()
	}
	return d
}

// DB returns the underlying gorm handle
func (d *Dao) DB() *gorm.DB {
	return d.db
}

// EnsureMigrated runs AutoMigrate for a model key exactly once per process
// EnsureMigrated 每个进程只为一个模型 key 执行一次 AutoMigrate
func (d *Dao) EnsureMigrated(key string) *gorm.DB {
	if d.config == nil || d.config.AutoMigrate {
		migrateKey := key + "#migrated"
		if _, loaded := d.onceKeys.LoadOrStore(migrateKey, true); !loaded {
			if err := model.AutoMigrate(d.db, key); err != nil {
				d.logger.Error("auto migrate failed", zap.String("model", key), zap.Error(err))
			}
		}
	}
	return d.db
}

// ExecuteWrite executes a write function serialized by key
// Writes sharing a key run strictly FIFO; distinct keys run concurrently
// ExecuteWrite 按 key 串行化执行写函数
// 同一 key 的写严格 FIFO，不同 key 并发执行
func (d *Dao) ExecuteWrite(ctx context.Context, key string, fn func(db *gorm.DB) error) error {
	if d.writeQueueMgr == nil {
		return fn(d.db)
	}
	return d.writeQueueMgr.Execute(ctx, key, func() error {
		return fn(d.db)
	})
}

// NewDBEngineWithConfig opens the database connection described by c
// NewDBEngineWithConfig 根据配置打开数据库连接
func NewDBEngineWithConfig(c DatabaseConfig, lg *zap.Logger) (*gorm.DB, error) {
	dialector, err := buildDialector(c)
	if err != nil {
		return nil, err
	}

	logMode := gormlogger.Silent
	if c.RunMode == "debug" {
		logMode = gormlogger.Info
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(logMode),
		NamingStrategy: schema.NamingStrategy{
			TablePrefix:   c.TablePrefix,
			SingularTable: true,
		},
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}

	if c.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(c.MaxIdleConns)
	}
	if c.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(c.MaxOpenConns)
	}
	if c.ConnMaxLifetime != "" {
		if lifetime, err := util.ParseDuration(c.ConnMaxLifetime); err == nil {
			sqlDB.SetConnMaxLifetime(lifetime)
		}
	}
	if c.ConnMaxIdleTime != "" {
		if idleTime, err := util.ParseDuration(c.ConnMaxIdleTime); err == nil {
			sqlDB.SetConnMaxIdleTime(idleTime)
		}
	}

	if lg != nil {
		lg.Info("database engine initialized",
			zap.String("type", c.Type),
			zap.Int("maxIdleConns", c.MaxIdleConns),
			zap.Int("maxOpenConns", c.MaxOpenConns))
	}

	return db, nil
}

// buildDialector selects the gorm dialector by database type
// buildDialector 根据数据库类型选择 gorm 方言
func buildDialector(c DatabaseConfig) (gorm.Dialector, error) {
	switch c.Type {
	case "sqlite", "":
		// busy_timeout keeps concurrent writers waiting instead of failing
		// busy_timeout 让并发写入等待而不是直接失败
		dsn := fmt.Sprintf("%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)", c.Path)
		return sqlite.Open(dsn), nil
	case "mysql":
		charset := c.Charset
		if charset == "" {
			charset = "utf8mb4"
		}
		dsn := fmt.Sprintf("%s:%s@tcp(%s)/%s?charset=%s&parseTime=%t&loc=Local",
			c.UserName, c.Password, c.Host, c.Name, charset, c.ParseTime)
		return mysql.Open(dsn), nil
	case "postgres":
		dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s sslmode=disable",
			c.Host, c.UserName, c.Password, c.Name)
		return postgres.Open(dsn), nil
	default:
		return nil, fmt.Errorf("unsupported database type: %s", c.Type)
	}
}

// Ping verifies the database connection is alive
// Ping 检查数据库连接是否存活
func (d *Dao) Ping(ctx context.Context) error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return err
	}
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	return sqlDB.PingContext(pingCtx)
}
