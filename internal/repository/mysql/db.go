package mysql

import (
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	mysqldriver "gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var (
	ErrMemberNotFound    = errors.New("member not found")
	ErrCommunityNotFound = errors.New("community not found")
	ErrInvalidDelta      = errors.New("increment must be positive")
)

// Options 连接池与日志参数
type Options struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	SlowThreshold   time.Duration
	LogLevel        logger.LogLevel
}

// Store 持久化入口：guild、成员计数、投票、配置和出站事件。
// 由调用方显式 Open / Close，不再使用包级别的全局连接。
type Store struct {
	*CommunityRepository
	*MemberRepository

	db       *gorm.DB
	Votes    *VoteRepository
	Outbox   *OutboxRepository
	Settings *SettingRepository
}

// OpenMySQL 生产环境入口
func OpenMySQL(dsn string, opts Options) (*Store, error) {
	return Open(mysqldriver.Open(dsn), opts)
}

// Open 使用任意 gorm 方言建立连接（测试里用 sqlite）
func Open(dialector gorm.Dialector, opts Options) (*Store, error) {
	if opts.LogLevel == 0 {
		opts.LogLevel = logger.Warn
	}
	if opts.SlowThreshold <= 0 {
		opts.SlowThreshold = 200 * time.Millisecond
	}
	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: logger.New(&log.Logger, logger.Config{
			SlowThreshold:             opts.SlowThreshold,
			LogLevel:                  opts.LogLevel,
			IgnoreRecordNotFoundError: true,
		}),
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("database handle: %w", err)
	}
	if opts.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(opts.MaxOpenConns)
	}
	if opts.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(opts.MaxIdleConns)
	}
	if opts.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(opts.ConnMaxLifetime)
	}
	return NewStore(db), nil
}

// NewStore 包装已有连接
func NewStore(db *gorm.DB) *Store {
	return &Store{
		CommunityRepository: &CommunityRepository{DB: db},
		MemberRepository:    &MemberRepository{DB: db},
		db:                  db,
		Votes:               &VoteRepository{DB: db},
		Outbox:              &OutboxRepository{DB: db},
		Settings:            &SettingRepository{DB: db},
	}
}

// DB 暴露底层连接，迁移和测试使用
func (s *Store) DB() *gorm.DB {
	return s.db
}

// Close 关闭连接池
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
