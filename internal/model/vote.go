package model

import "time"

// Vote 投票关系 voter -> votee，唯一索引保证同一 voter 不会重复出现在集合里
type Vote struct {
	ID          uint64 `gorm:"primaryKey;autoIncrement"`
	CommunityID uint64 `gorm:"not null;uniqueIndex:uk_vote"`
	VoteeID     uint64 `gorm:"not null;uniqueIndex:uk_vote"`
	VoterID     uint64 `gorm:"not null;uniqueIndex:uk_vote"`
	CreatedAt   time.Time
}

func (Vote) TableName() string {
	return "votes"
}
