package service

import (
	"context"
	"time"

	"NWord_Counter/internal/model"
	"NWord_Counter/internal/pkg"
	"NWord_Counter/internal/repository/mysql"

	"github.com/rs/zerolog/log"
)

type Sender func(ctx context.Context, ob *model.DetectionOutbox) error

// OutboxOptions 投递批大小、间隔和最大重试次数
type OutboxOptions struct {
	BatchSize int
	Interval  time.Duration
	MaxRetry  int
}

// OutboxRelayer 把 detection_outbox 里的检测事件异步投递出去
type OutboxRelayer struct {
	repo      *mysql.OutboxRepository
	batchSize int
	interval  time.Duration
	maxRetry  int
	sender    Sender
}

func NewOutboxRelayer(repo *mysql.OutboxRepository, sender Sender, opts OutboxOptions) *OutboxRelayer {
	if opts.BatchSize <= 0 {
		opts.BatchSize = 200
	}
	if opts.Interval <= 0 {
		opts.Interval = time.Second
	}
	if opts.MaxRetry <= 0 {
		opts.MaxRetry = 5
	}
	if sender == nil {
		sender = LogSender
	}
	return &OutboxRelayer{
		repo:      repo,
		batchSize: opts.BatchSize,
		interval:  opts.Interval,
		maxRetry:  opts.MaxRetry,
		sender:    sender,
	}
}

// Run 定时投递，ctx 取消后返回
func (r *OutboxRelayer) Run(ctx context.Context) {
	t := time.NewTicker(r.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			r.drainOnce(ctx)
		}
	}
}

// drainOnce 投递一批，返回成功条数
func (r *OutboxRelayer) drainOnce(ctx context.Context) int {
	rows, err := r.repo.List(ctx, r.batchSize, r.maxRetry)
	if err != nil {
		log.Error().Err(err).Msg("outbox query failed")
		return 0
	}
	sent := 0
	for i := range rows {
		ob := rows[i]
		if err := r.sender(ctx, &ob); err != nil {
			log.Warn().Err(err).Uint64("outbox_id", ob.ID).Int("retry", ob.Retry+1).Msg("outbox send failed")
			if err := r.repo.RetryUpdate(ctx, ob.ID); err != nil {
				log.Error().Err(err).Uint64("outbox_id", ob.ID).Msg("outbox retry update failed")
			}
			continue
		}
		if err := r.repo.SuccessUpdate(ctx, ob.ID); err != nil {
			log.Error().Err(err).Uint64("outbox_id", ob.ID).Msg("outbox success update failed")
			continue
		}
		sent++
	}
	return sent
}

// KafkaSender 以 guild id 作为 key，保证同一 guild 的事件落在同一分区
func KafkaSender(p *pkg.KafkaProducer) Sender {
	return func(ctx context.Context, ob *model.DetectionOutbox) error {
		return p.Send(ctx, pkg.MakeKeyFromID(ob.CommunityID), []byte(ob.Payload))
	}
}

// LogSender 没有配置 kafka 时只打日志
func LogSender(_ context.Context, ob *model.DetectionOutbox) error {
	log.Info().
		Uint64("guild_id", ob.CommunityID).
		Uint64("user_id", ob.UserID).
		Int64("delta", ob.Delta).
		Str("payload", ob.Payload).
		Msg("detection event")
	return nil
}
