package service

import (
	"context"
	"fmt"
	"time"

	"NWord_Counter/internal/repository/mysql"

	"github.com/rs/zerolog/log"
)

type VoteAction string

const (
	ActionVote   VoteAction = "vote"
	ActionUnvote VoteAction = "unvote"
)

type VoteStatus string

const (
	VoteSuccess          VoteStatus = "success"
	VoteAlreadyPerformed VoteStatus = "already_performed"
	VoteError            VoteStatus = "error"
)

const DefaultVoteTimeout = 5 * time.Second

// VoteRequest 投票命令；成员关系和活跃人数由平台侧提供
type VoteRequest struct {
	CommunityID    uint64     `json:"-"`
	CommunityName  string     `json:"guild_name"`
	VoterID        uint64     `json:"voter_id" binding:"required"`
	TargetID       uint64     `json:"target_id" binding:"required"`
	TargetName     string     `json:"target_name"`
	TargetIsMember bool       `json:"target_is_member"`
	ActiveMembers  int        `json:"active_members" binding:"min=0"`
	Action         VoteAction `json:"action" binding:"required,oneof=vote unvote"`
}

// VoteOutcome 投票结果和当前票数，用于展示
type VoteOutcome struct {
	Action    VoteAction `json:"action"`
	Status    VoteStatus `json:"status"`
	Votes     int64      `json:"votes"`
	Threshold int        `json:"threshold"`
	Verified  bool       `json:"verified"`
}

// Message 给用户看的提示
func (o VoteOutcome) Message() string {
	tally := fmt.Sprintf("(%d/%d) required votes so far!", o.Votes, o.Threshold)
	if o.Action == ActionUnvote {
		switch o.Status {
		case VoteAlreadyPerformed:
			return "You never voted for this person!\n" + tally
		case VoteSuccess:
			return "Successfully removed vote!\n" + tally
		}
		return "Couldn't unvote person"
	}
	switch o.Status {
	case VoteAlreadyPerformed:
		return "You already voted for this person!\n" + tally
	case VoteSuccess:
		return "Successfully voted!\n" + tally
	}
	return "Couldn't vote for person"
}

// Threshold 认证所需票数，随 guild 人数分段增长
func Threshold(memberCount int) int {
	switch {
	case memberCount < 3:
		return 1
	case memberCount < 10:
		return 2
	case memberCount < 50:
		return 3
	case memberCount < 100:
		return 4
	case memberCount < 250:
		return 5
	default:
		return 10
	}
}

type VoteService struct {
	store   *mysql.Store
	lock    Locker
	timeout time.Duration
}

func NewVoteService(store *mysql.Store, lock Locker, timeout time.Duration) *VoteService {
	if lock == nil {
		lock = NewKeyedMutex()
	}
	if timeout <= 0 {
		timeout = DefaultVoteTimeout
	}
	return &VoteService{store: store, lock: lock, timeout: timeout}
}

// CastVote 投票/撤票。
// 同一 votee 的操作先经过 Locker 串行，再在一个事务里改投票集合并重算 verified。
func (s *VoteService) CastVote(ctx context.Context, req VoteRequest) (VoteOutcome, error) {
	if req.Action != ActionVote && req.Action != ActionUnvote {
		return VoteOutcome{}, ErrUnknownAction
	}
	if req.CommunityID == 0 || req.VoterID == 0 || req.TargetID == 0 {
		return VoteOutcome{}, ErrInvalidID
	}
	if req.VoterID == req.TargetID {
		return VoteOutcome{}, ErrSelfVote
	}
	if !req.TargetIsMember {
		return VoteOutcome{}, ErrNotMember
	}

	threshold := Threshold(req.ActiveMembers)
	out := VoteOutcome{Action: req.Action, Status: VoteError, Threshold: threshold}

	if err := ensureCommunity(ctx, s.store, req.CommunityID, req.CommunityName); err != nil {
		return out, err
	}
	if _, err := ensureMember(ctx, s.store, req.CommunityID, req.TargetID, req.TargetName); err != nil {
		return out, err
	}

	lctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	unlock, err := s.lock.Lock(lctx, fmt.Sprintf("%d:%d", req.CommunityID, req.TargetID))
	if err != nil {
		return out, persistErr("acquire vote lock", err)
	}
	defer unlock()

	var res mysql.VoteChange
	if req.Action == ActionVote {
		res, err = s.store.Votes.Vote(lctx, req.CommunityID, req.TargetID, req.VoterID, threshold)
	} else {
		res, err = s.store.Votes.Unvote(lctx, req.CommunityID, req.TargetID, req.VoterID, threshold)
	}
	if err != nil {
		return out, persistErr("cast vote", err)
	}

	out.Votes = res.Votes
	out.Verified = res.Verified
	if res.Changed {
		out.Status = VoteSuccess
	} else {
		out.Status = VoteAlreadyPerformed
	}
	log.Debug().
		Uint64("guild_id", req.CommunityID).
		Uint64("voter_id", req.VoterID).
		Uint64("target_id", req.TargetID).
		Str("action", string(req.Action)).
		Str("status", string(out.Status)).
		Int64("votes", out.Votes).
		Int("threshold", threshold).
		Msg("vote cast")
	return out, nil
}

// IsVerified 成员当前是否已认证；没有记录视为未认证
func (s *VoteService) IsVerified(ctx context.Context, communityID, userID uint64) (bool, error) {
	m, err := s.store.FindMember(ctx, communityID, userID)
	if err != nil {
		if isMemberNotFound(err) {
			return false, nil
		}
		return false, persistErr("find member", err)
	}
	return m.Verified, nil
}
