package mysql

import (
	"context"
	"encoding/json"
	"time"

	"NWord_Counter/internal/model"

	"gorm.io/gorm"
)

type OutboxRepository struct {
	DB *gorm.DB
}

// RecordDetection 原子自增计数，并在同一事务里写出站事件
func (r *OutboxRepository) RecordDetection(ctx context.Context, communityID, userID uint64, delta int64) error {
	return r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		mRepo := &MemberRepository{DB: tx}
		if err := mRepo.IncrementDetectionCount(ctx, communityID, userID, delta); err != nil {
			return err
		}
		return r.insert(tx, communityID, userID, delta)
	})
}

func (r *OutboxRepository) insert(tx *gorm.DB, communityID, userID uint64, delta int64) error {
	payload, _ := json.Marshal(map[string]any{
		"event_time":   time.Now().UTC().Format(time.RFC3339Nano),
		"community_id": communityID,
		"user_id":      userID,
		"delta":        delta,
	})
	return tx.Create(&model.DetectionOutbox{
		CommunityID: communityID,
		UserID:      userID,
		Delta:       delta,
		Payload:     string(payload),
		Status:      model.OutboxPending,
	}).Error
}

// List 待投递（含失败待重试）的事件，按 id 升序
func (r *OutboxRepository) List(ctx context.Context, batchSize, maxRetry int) ([]model.DetectionOutbox, error) {
	var list []model.DetectionOutbox
	if err := r.DB.WithContext(ctx).
		Where("status = ? OR (status = ? AND retry < ?)", model.OutboxPending, model.OutboxFailed, maxRetry).
		Order("id ASC").
		Limit(batchSize).
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

// RetryUpdate 投递失败
func (r *OutboxRepository) RetryUpdate(ctx context.Context, id uint64) error {
	return r.DB.WithContext(ctx).Model(&model.DetectionOutbox{}).Where("id = ?", id).
		Updates(map[string]any{"status": model.OutboxFailed, "retry": gorm.Expr("retry + 1")}).Error
}

// SuccessUpdate 投递成功
func (r *OutboxRepository) SuccessUpdate(ctx context.Context, id uint64) error {
	return r.DB.WithContext(ctx).Model(&model.DetectionOutbox{}).Where("id = ?", id).
		Update("status", model.OutboxSent).Error
}
