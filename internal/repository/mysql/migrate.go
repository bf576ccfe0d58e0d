package mysql

import (
	"context"
	"fmt"
	"time"

	"NWord_Counter/internal/model"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

type migration struct {
	version int
	name    string
	up      func(tx *gorm.DB) error
}

// 按版本号顺序执行，每个版本只执行一次；新字段只能通过追加版本引入
var migrations = []migration{
	{
		version: 1,
		name:    "base tables",
		up: func(tx *gorm.DB) error {
			return tx.AutoMigrate(
				&model.Community{},
				&model.Member{},
				&model.Vote{},
				&model.Setting{},
				&model.DetectionOutbox{},
			)
		},
	},
	{
		version: 2,
		name:    "member ranking index",
		up: func(tx *gorm.DB) error {
			// MySQL 的 DDL 会隐式提交，重跑时索引可能已经存在
			if tx.Migrator().HasIndex(&model.Member{}, "idx_members_rank") {
				return nil
			}
			return tx.Exec("CREATE INDEX idx_members_rank ON members (community_id, detection_count)").Error
		},
	},
}

// LatestSchemaVersion 当前代码期望的 schema 版本
func LatestSchemaVersion() int {
	return migrations[len(migrations)-1].version
}

// Migrate 执行尚未应用的迁移，返回本次执行的版本数
func Migrate(ctx context.Context, db *gorm.DB) (int, error) {
	db = db.WithContext(ctx)
	if err := db.AutoMigrate(&model.SchemaMigration{}); err != nil {
		return 0, fmt.Errorf("schema_migrations: %w", err)
	}
	var applied []int
	if err := db.Model(&model.SchemaMigration{}).Pluck("version", &applied).Error; err != nil {
		return 0, fmt.Errorf("load applied versions: %w", err)
	}
	done := make(map[int]bool, len(applied))
	for _, v := range applied {
		done[v] = true
	}

	n := 0
	for _, m := range migrations {
		if done[m.version] {
			continue
		}
		err := db.Transaction(func(tx *gorm.DB) error {
			if err := m.up(tx); err != nil {
				return err
			}
			return tx.Create(&model.SchemaMigration{
				Version:   m.version,
				Name:      m.name,
				AppliedAt: time.Now(),
			}).Error
		})
		if err != nil {
			return n, fmt.Errorf("migration %d (%s): %w", m.version, m.name, err)
		}
		log.Info().Int("version", m.version).Str("name", m.name).Msg("schema migration applied")
		n++
	}
	return n, nil
}

// SchemaVersion 已应用的最高版本，未迁移时为 0
func SchemaVersion(ctx context.Context, db *gorm.DB) (int, error) {
	if !db.Migrator().HasTable(&model.SchemaMigration{}) {
		return 0, nil
	}
	var v int
	err := db.WithContext(ctx).Model(&model.SchemaMigration{}).
		Select("COALESCE(MAX(version), 0)").
		Scan(&v).Error
	return v, err
}
