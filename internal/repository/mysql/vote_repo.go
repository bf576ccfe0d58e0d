package mysql

import (
	"context"
	"errors"

	"NWord_Counter/internal/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type VoteRepository struct {
	DB *gorm.DB
}

// VoteChange 一次投票/撤票之后的状态
type VoteChange struct {
	Changed  bool
	Votes    int64
	Verified bool
}

// Vote 把 voter 加入 votee 的投票集合（幂等）。
// 成员行加锁后在同一事务里写投票行并重新计算 verified。
func (r *VoteRepository) Vote(ctx context.Context, communityID, voteeID, voterID uint64, threshold int) (VoteChange, error) {
	return r.apply(ctx, communityID, voteeID, voterID, threshold, true)
}

// Unvote 从集合里移除 voter（幂等）
func (r *VoteRepository) Unvote(ctx context.Context, communityID, voteeID, voterID uint64, threshold int) (VoteChange, error) {
	return r.apply(ctx, communityID, voteeID, voterID, threshold, false)
}

func (r *VoteRepository) apply(ctx context.Context, communityID, voteeID, voterID uint64, threshold int, add bool) (VoteChange, error) {
	var res VoteChange
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var m model.Member
		// select for update，同一 votee 的并发投票在这里串行
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("community_id = ? AND user_id = ?", communityID, voteeID).
			First(&m).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrMemberNotFound
			}
			return err
		}

		var n int64
		if err := tx.Model(&model.Vote{}).
			Where("community_id = ? AND votee_id = ? AND voter_id = ?", communityID, voteeID, voterID).
			Count(&n).Error; err != nil {
			return err
		}
		voted := n > 0

		switch {
		case add && !voted:
			if err := tx.Create(&model.Vote{
				CommunityID: communityID,
				VoteeID:     voteeID,
				VoterID:     voterID,
			}).Error; err != nil {
				return err
			}
			res.Changed = true
		case !add && voted:
			if err := tx.Where("community_id = ? AND votee_id = ? AND voter_id = ?", communityID, voteeID, voterID).
				Delete(&model.Vote{}).Error; err != nil {
				return err
			}
			res.Changed = true
		}

		if err := tx.Model(&model.Vote{}).
			Where("community_id = ? AND votee_id = ?", communityID, voteeID).
			Count(&res.Votes).Error; err != nil {
			return err
		}

		// 幂等命中不做任何写入
		if !res.Changed {
			res.Verified = m.Verified
			return nil
		}
		res.Verified = res.Votes >= int64(threshold)
		return tx.Model(&model.Member{}).
			Where("id = ?", m.ID).
			UpdateColumn("verified", res.Verified).Error
	})
	return res, err
}

// Voters 返回 votee 的投票人集合
func (r *VoteRepository) Voters(ctx context.Context, communityID, voteeID uint64) ([]uint64, error) {
	var ids []uint64
	err := r.DB.WithContext(ctx).Model(&model.Vote{}).
		Where("community_id = ? AND votee_id = ?", communityID, voteeID).
		Order("id ASC").
		Pluck("voter_id", &ids).Error
	return ids, err
}
