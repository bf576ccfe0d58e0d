package mysql

import (
	"context"
	"time"

	"NWord_Counter/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SettingRepository struct {
	DB *gorm.DB
}

// List guild 已保存的配置覆盖值
func (r *SettingRepository) List(ctx context.Context, communityID uint64) ([]model.Setting, error) {
	var list []model.Setting
	err := r.DB.WithContext(ctx).
		Where("community_id = ?", communityID).
		Order("name ASC").
		Find(&list).Error
	return list, err
}

// Get 单个配置；未设置时 ok=false
func (r *SettingRepository) Get(ctx context.Context, communityID uint64, name string) (string, bool, error) {
	var list []model.Setting
	if err := r.DB.WithContext(ctx).
		Where("community_id = ? AND name = ?", communityID, name).
		Limit(1).
		Find(&list).Error; err != nil {
		return "", false, err
	}
	if len(list) == 0 {
		return "", false, nil
	}
	return list[0].Value, true, nil
}

// Upsert 写入或覆盖配置
func (r *SettingRepository) Upsert(ctx context.Context, communityID uint64, name, value string) error {
	return r.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "community_id"}, {Name: "name"}},
		DoUpdates: clause.Assignments(map[string]any{"value": value, "updated_at": time.Now()}),
	}).Create(&model.Setting{
		CommunityID: communityID,
		Name:        name,
		Value:       value,
	}).Error
}
