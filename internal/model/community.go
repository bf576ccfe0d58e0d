package model

import "time"

// Community 对应一个 guild，ID 直接使用平台侧的 guild id
type Community struct {
	ID        uint64 `gorm:"primaryKey;autoIncrement:false"`
	Name      string `gorm:"size:100;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Member 某个用户在某个 guild 内的计数记录；自增 ID 记录插入顺序，用于排行并列时的稳定排序
type Member struct {
	ID             uint64 `gorm:"primaryKey"`
	CommunityID    uint64 `gorm:"not null;uniqueIndex:uk_community_user"`
	UserID         uint64 `gorm:"not null;uniqueIndex:uk_community_user;index"`
	Name           string `gorm:"size:100;not null"`
	DetectionCount int64  `gorm:"not null;default:0"`
	Verified       bool   `gorm:"not null;default:false"`
	HasPass        bool   `gorm:"not null;default:false"`
	PassCount      int64  `gorm:"not null;default:0"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Setting guild 级别的配置项覆盖值
type Setting struct {
	CommunityID uint64 `gorm:"primaryKey;autoIncrement:false"`
	Name        string `gorm:"primaryKey;size:64"`
	Value       string `gorm:"size:255;not null"`
	UpdatedAt   time.Time
}
