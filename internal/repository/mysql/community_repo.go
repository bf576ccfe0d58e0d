package mysql

import (
	"context"

	"NWord_Counter/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type CommunityRepository struct {
	DB *gorm.DB
}

// CommunityCount 全局 guild 排行的一行
type CommunityCount struct {
	CommunityID uint64 `json:"community_id"`
	Name        string `json:"name"`
	Total       int64  `json:"total"`
}

// CommunityExists 判断 guild 是否已经记录
func (r *CommunityRepository) CommunityExists(ctx context.Context, id uint64) (bool, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&model.Community{}).
		Where("id = ?", id).
		Count(&count).Error
	return count > 0, err
}

// CreateCommunity 幂等插入：并发下重复创建不报错
func (r *CommunityRepository) CreateCommunity(ctx context.Context, id uint64, name string) error {
	return r.DB.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoNothing: true,
	}).Create(&model.Community{ID: id, Name: name}).Error
}

// CommunityTotal 用聚合查询求 guild 内所有成员计数之和，不在客户端累加
func (r *CommunityRepository) CommunityTotal(ctx context.Context, id uint64) (int64, error) {
	var total int64
	err := r.DB.WithContext(ctx).Model(&model.Member{}).
		Select("COALESCE(SUM(detection_count), 0)").
		Where("community_id = ?", id).
		Scan(&total).Error
	return total, err
}

// GlobalTotal 所有 guild 的计数之和
func (r *CommunityRepository) GlobalTotal(ctx context.Context) (int64, error) {
	var total int64
	err := r.DB.WithContext(ctx).Model(&model.Member{}).
		Select("COALESCE(SUM(detection_count), 0)").
		Scan(&total).Error
	return total, err
}

// TopGlobalCommunities 按 guild 汇总后倒序，limit 在库里完成
func (r *CommunityRepository) TopGlobalCommunities(ctx context.Context, limit int) ([]CommunityCount, error) {
	var list []CommunityCount
	err := r.DB.WithContext(ctx).Table("members").
		Select("members.community_id AS community_id, communities.name AS name, SUM(members.detection_count) AS total").
		Joins("JOIN communities ON communities.id = members.community_id").
		Group("members.community_id, communities.name").
		Order("total DESC, members.community_id ASC").
		Limit(limit).
		Scan(&list).Error
	return list, err
}
