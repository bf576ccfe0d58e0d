package model

import "time"

const (
	OutboxPending = 0
	OutboxSent    = 1
	OutboxFailed  = 2
)

// DetectionOutbox 检测事件出站表，和计数自增写在同一个事务里
type DetectionOutbox struct {
	ID          uint64 `gorm:"primaryKey"`
	CommunityID uint64 `gorm:"not null"`
	UserID      uint64 `gorm:"not null"`
	Delta       int64  `gorm:"not null"`
	Payload     string `gorm:"type:text;not null"`
	Status      int8   `gorm:"not null;default:0;index;comment:'0=pending,1=sent,2=failed'"`
	Retry       int    `gorm:"not null;default:0"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func (DetectionOutbox) TableName() string { return "detection_outbox" }

// SchemaMigration 已执行的 schema 版本
type SchemaMigration struct {
	Version   int    `gorm:"primaryKey;autoIncrement:false"`
	Name      string `gorm:"size:100;not null"`
	AppliedAt time.Time
}
