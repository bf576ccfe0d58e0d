package mysql

import (
	"context"
	"errors"

	"NWord_Counter/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type MemberRepository struct {
	DB *gorm.DB
}

// MemberCount 全局用户排行的一行，同一用户在多个 guild 的计数合并
type MemberCount struct {
	UserID uint64 `json:"user_id"`
	Name   string `json:"name"`
	Total  int64  `json:"total"`
}

// FindMember 返回完整记录；不存在时返回 ErrMemberNotFound
func (r *MemberRepository) FindMember(ctx context.Context, communityID, userID uint64) (*model.Member, error) {
	var m model.Member
	err := r.DB.WithContext(ctx).
		Where("community_id = ? AND user_id = ?", communityID, userID).
		First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrMemberNotFound
	}
	if err != nil {
		return nil, err
	}
	return &m, nil
}

// CreateMember 计数全部为 0；guild 不存在返回 ErrCommunityNotFound，(community_id, user_id) 冲突时不报错
func (r *MemberRepository) CreateMember(ctx context.Context, communityID, userID uint64, name string) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&model.Community{}).Where("id = ?", communityID).Count(&n).Error; err != nil {
			return err
		}
		if n == 0 {
			return ErrCommunityNotFound
		}
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "community_id"}, {Name: "user_id"}},
			DoNothing: true,
		}).Create(&model.Member{
			CommunityID: communityID,
			UserID:      userID,
			Name:        name,
		}).Error
	})
}

// IncrementDetectionCount 单条 UPDATE 原子自增，成员不存在时返回 ErrMemberNotFound（不会 upsert）
func (r *MemberRepository) IncrementDetectionCount(ctx context.Context, communityID, userID uint64, delta int64) error {
	if delta <= 0 {
		return ErrInvalidDelta
	}
	return r.increment(ctx, communityID, userID, map[string]any{
		"detection_count": gorm.Expr("detection_count + ?", delta),
	})
}

// IncrementPassCount 同上；pass 数大于 0 即视为持有 pass
func (r *MemberRepository) IncrementPassCount(ctx context.Context, communityID, userID uint64, delta int64) error {
	if delta <= 0 {
		return ErrInvalidDelta
	}
	return r.increment(ctx, communityID, userID, map[string]any{
		"pass_count": gorm.Expr("pass_count + ?", delta),
		"has_pass":   true,
	})
}

func (r *MemberRepository) increment(ctx context.Context, communityID, userID uint64, cols map[string]any) error {
	tx := r.DB.WithContext(ctx).Model(&model.Member{}).
		Where("community_id = ? AND user_id = ?", communityID, userID).
		UpdateColumns(cols)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return ErrMemberNotFound
	}
	return nil
}

// RankedMembers guild 内按计数倒序，计数相同按插入顺序
func (r *MemberRepository) RankedMembers(ctx context.Context, communityID uint64) ([]model.Member, error) {
	var list []model.Member
	err := r.DB.WithContext(ctx).
		Where("community_id = ?", communityID).
		Order("detection_count DESC, id ASC").
		Find(&list).Error
	return list, err
}

// TopGlobalMembers 跨 guild 按用户汇总
func (r *MemberRepository) TopGlobalMembers(ctx context.Context, limit int) ([]MemberCount, error) {
	var list []MemberCount
	err := r.DB.WithContext(ctx).Model(&model.Member{}).
		Select("user_id, MAX(name) AS name, SUM(detection_count) AS total").
		Group("user_id").
		Order("total DESC, user_id ASC").
		Limit(limit).
		Scan(&list).Error
	return list, err
}

// TotalRecordCount 成员记录总数，诊断用
func (r *MemberRepository) TotalRecordCount(ctx context.Context) (int64, error) {
	var count int64
	err := r.DB.WithContext(ctx).Model(&model.Member{}).Count(&count).Error
	return count, err
}

// VerifiedNames guild 内已通过投票认证的成员
func (r *MemberRepository) VerifiedNames(ctx context.Context, communityID uint64) ([]string, error) {
	return r.namesWhere(ctx, communityID, "verified = ?")
}

// PassHolderNames guild 内持有 pass 的成员
func (r *MemberRepository) PassHolderNames(ctx context.Context, communityID uint64) ([]string, error) {
	return r.namesWhere(ctx, communityID, "has_pass = ?")
}

func (r *MemberRepository) namesWhere(ctx context.Context, communityID uint64, cond string) ([]string, error) {
	var names []string
	err := r.DB.WithContext(ctx).Model(&model.Member{}).
		Where("community_id = ?", communityID).
		Where(cond, true).
		Order("detection_count DESC, id ASC").
		Pluck("name", &names).Error
	return names, err
}
