package service

import (
	"math/rand"
	"sync"

	"golang.org/x/time/rate"
)

const WebhookReply = "Not a person, I won't count this."

var replyTiers = []struct {
	below   int
	replies []string
}{
	{5, []string{
		"Bro? :face_with_raised_eyebrow::camera_with_flash:",
		"??? :face_with_raised_eyebrow::camera_with_flash:",
		"CAUGHT :camera_with_flash:",
		"4K :camera_with_flash:",
		":face_with_raised_eyebrow:",
	}},
	{25, []string{
		"Bro chill with it :camera_with_flash:",
		"?????????? :camera_with_flash:",
		"Bro cmon :neutral_face:",
		"Bro...",
	}},
	{100, []string{
		"Bro wtf :face_with_raised_eyebrow:",
		":expressionless:",
		"CHILL",
		":camera_with_flash::camera_with_flash::camera_with_flash:",
		"...",
	}},
	{0, []string{
		"I have no words.",
		"Tf?",
		":exploding_head:",
		":flushed:",
		"I'm calling your employer",
	}},
}

// ReplyFor 按单条消息的命中数选择回复；pick(n) 返回 [0,n) 的下标，nil 时随机
func ReplyFor(count int, pick func(n int) int) string {
	if pick == nil {
		pick = rand.Intn
	}
	for _, tier := range replyTiers {
		if tier.below == 0 || count < tier.below {
			return tier.replies[pick(len(tier.replies))]
		}
	}
	return ""
}

// ReplyLimiter 按 guild 限制机器人回复频率，计数不受影响
type ReplyLimiter struct {
	limit rate.Limit
	burst int

	mu       sync.Mutex
	limiters map[uint64]*rate.Limiter
}

// NewReplyLimiter perSecond <= 0 表示不限流
func NewReplyLimiter(perSecond float64, burst int) *ReplyLimiter {
	limit := rate.Limit(perSecond)
	if perSecond <= 0 {
		limit = rate.Inf
	}
	if burst <= 0 {
		burst = 1
	}
	return &ReplyLimiter{
		limit:    limit,
		burst:    burst,
		limiters: make(map[uint64]*rate.Limiter),
	}
}

func (l *ReplyLimiter) Allow(communityID uint64) bool {
	l.mu.Lock()
	lim, ok := l.limiters[communityID]
	if !ok {
		lim = rate.NewLimiter(l.limit, l.burst)
		l.limiters[communityID] = lim
	}
	l.mu.Unlock()
	return lim.Allow()
}
