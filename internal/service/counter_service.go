package service

import (
	"context"

	"NWord_Counter/internal/repository/mysql"
	"NWord_Counter/internal/scanner"

	"github.com/rs/zerolog/log"
)

// MessageEvent 平台侧推送的一条消息
type MessageEvent struct {
	CommunityID   uint64 `json:"guild_id" binding:"required"`
	CommunityName string `json:"guild_name"`
	AuthorID      uint64 `json:"author_id" binding:"required"`
	AuthorName    string `json:"author_name"`
	Content       string `json:"content"`
	IsWebhook     bool   `json:"is_webhook"`
}

// Detection 一条消息的处理结果；Reply 为空表示不回复
type Detection struct {
	Count   int    `json:"count"`
	Counted bool   `json:"counted"`
	Reply   string `json:"reply,omitempty"`
}

type CounterService struct {
	store    *mysql.Store
	votes    *VoteService
	settings *SettingsService
	limiter  *ReplyLimiter
	pick     func(n int) int
}

func NewCounterService(store *mysql.Store, votes *VoteService, settings *SettingsService, limiter *ReplyLimiter) *CounterService {
	if limiter == nil {
		limiter = NewReplyLimiter(0, 0)
	}
	return &CounterService{
		store:    store,
		votes:    votes,
		settings: settings,
		limiter:  limiter,
	}
}

// HandleMessage 检测并计数。
// 自增失败只记录一次日志并丢弃该事件，不重试，避免重复计数。
func (s *CounterService) HandleMessage(ctx context.Context, ev MessageEvent) (Detection, error) {
	if ev.CommunityID == 0 || ev.AuthorID == 0 {
		return Detection{}, ErrInvalidID
	}
	if err := ensureCommunity(ctx, s.store, ev.CommunityID, ev.CommunityName); err != nil {
		return Detection{}, err
	}

	n := scanner.Count(ev.Content)
	if n == 0 {
		return Detection{}, nil
	}
	det := Detection{Count: n}
	if ev.IsWebhook {
		det.Reply = WebhookReply
		return det, nil
	}

	if _, err := ensureMember(ctx, s.store, ev.CommunityID, ev.AuthorID, ev.AuthorName); err != nil {
		return det, err
	}
	if err := s.store.Outbox.RecordDetection(ctx, ev.CommunityID, ev.AuthorID, int64(n)); err != nil {
		log.Error().Err(err).
			Uint64("guild_id", ev.CommunityID).
			Uint64("user_id", ev.AuthorID).
			Int("count", n).
			Msg("detection dropped")
		return det, nil
	}
	det.Counted = true

	// 计数已提交，之后的读失败只影响回复，不能让调用方重试
	verified, err := s.votes.IsVerified(ctx, ev.CommunityID, ev.AuthorID)
	if err != nil || verified {
		return det, nil
	}
	send, err := s.settings.Bool(ctx, ev.CommunityID, SettingSendMessage)
	if err != nil || !send {
		return det, nil
	}
	if !s.limiter.Allow(ev.CommunityID) {
		log.Debug().Uint64("guild_id", ev.CommunityID).Msg("reply rate limited")
		return det, nil
	}
	det.Reply = ReplyFor(n, s.pick)
	return det, nil
}
