package service

import (
	"context"

	"NWord_Counter/internal/model"
	"NWord_Counter/internal/ranking"
	"NWord_Counter/internal/repository/mysql"

	"golang.org/x/sync/errgroup"
)

// Target 命令里 @ 的成员
type Target struct {
	ID       uint64 `json:"id"`
	Name     string `json:"name"`
	IsMember bool   `json:"is_member"`
}

// Invocation 一次命令调用；Target 为空时作用于调用者本人
type Invocation struct {
	CommunityID   uint64
	CommunityName string
	InvokerID     uint64
	InvokerName   string
	Target        *Target
}

// subject 命令实际作用的成员
func (inv Invocation) subject() (uint64, string, error) {
	if inv.CommunityID == 0 {
		return 0, "", ErrInvalidID
	}
	if inv.Target == nil {
		if inv.InvokerID == 0 {
			return 0, "", ErrInvalidID
		}
		return inv.InvokerID, inv.InvokerName, nil
	}
	if inv.Target.ID == 0 {
		return 0, "", ErrInvalidID
	}
	if !inv.Target.IsMember {
		return 0, "", ErrNotMember
	}
	return inv.Target.ID, inv.Target.Name, nil
}

// RankedCommunity 全局 guild 排行的一行
type RankedCommunity struct {
	Rank        int    `json:"rank"`
	CommunityID uint64 `json:"guild_id"`
	Name        string `json:"name"`
	Count       int64  `json:"count"`
}

// RankedUser 全局用户排行的一行
type RankedUser struct {
	Rank   int    `json:"rank"`
	UserID uint64 `json:"user_id"`
	Name   string `json:"name"`
	Count  int64  `json:"count"`
}

// Rankings guild 内排行，已分页
type Rankings struct {
	CommunityID uint64         `json:"guild_id"`
	Total       int64          `json:"total"`
	Limit       int            `json:"limit"`
	Pages       []ranking.Page `json:"pages"`
}

type CommandService struct {
	store    *mysql.Store
	votes    *VoteService
	pageSize int
}

func NewCommandService(store *mysql.Store, votes *VoteService) *CommandService {
	return &CommandService{store: store, votes: votes, pageSize: ranking.DefaultPageSize}
}

// GetCount 成员计数，没有记录时为 0
func (s *CommandService) GetCount(ctx context.Context, inv Invocation) (int64, error) {
	uid, _, err := inv.subject()
	if err != nil {
		return 0, err
	}
	m, err := s.store.FindMember(ctx, inv.CommunityID, uid)
	if err != nil {
		if isMemberNotFound(err) {
			return 0, nil
		}
		return 0, persistErr("find member", err)
	}
	return m.DetectionCount, nil
}

func (s *CommandService) GetCommunityTotal(ctx context.Context, communityID uint64) (int64, error) {
	if communityID == 0 {
		return 0, ErrInvalidID
	}
	total, err := s.store.CommunityTotal(ctx, communityID)
	if err != nil {
		return 0, persistErr("community total", err)
	}
	return total, nil
}

func (s *CommandService) GetGlobalTotal(ctx context.Context) (int64, error) {
	total, err := s.store.GlobalTotal(ctx)
	if err != nil {
		return 0, persistErr("global total", err)
	}
	return total, nil
}

func (s *CommandService) GetTotalRecords(ctx context.Context) (int64, error) {
	n, err := s.store.TotalRecordCount(ctx)
	if err != nil {
		return 0, persistErr("total records", err)
	}
	return n, nil
}

func (s *CommandService) GetTopCommunities(ctx context.Context, limit int) ([]RankedCommunity, error) {
	if err := ValidateLimit(limit); err != nil {
		return nil, err
	}
	rows, err := s.store.TopGlobalCommunities(ctx, limit)
	if err != nil {
		return nil, persistErr("top communities", err)
	}
	out := make([]RankedCommunity, len(rows))
	for i, r := range rows {
		out[i] = RankedCommunity{Rank: i + 1, CommunityID: r.CommunityID, Name: r.Name, Count: r.Total}
	}
	return out, nil
}

func (s *CommandService) GetTopMembersGlobal(ctx context.Context, limit int) ([]RankedUser, error) {
	if err := ValidateLimit(limit); err != nil {
		return nil, err
	}
	rows, err := s.store.TopGlobalMembers(ctx, limit)
	if err != nil {
		return nil, persistErr("top members", err)
	}
	out := make([]RankedUser, len(rows))
	for i, r := range rows {
		out[i] = RankedUser{Rank: i + 1, UserID: r.UserID, Name: r.Name, Count: r.Total}
	}
	return out, nil
}

// GetCommunityRankings guild 排行和总数并发查询，再补位分页；没见过的 guild 返回 ErrNotFound
func (s *CommandService) GetCommunityRankings(ctx context.Context, communityID uint64, limit int) (Rankings, error) {
	if communityID == 0 {
		return Rankings{}, ErrInvalidID
	}
	if err := ValidateLimit(limit); err != nil {
		return Rankings{}, err
	}
	ok, err := s.store.CommunityExists(ctx, communityID)
	if err != nil {
		return Rankings{}, persistErr("community exists", err)
	}
	if !ok {
		return Rankings{}, ErrNotFound
	}

	var (
		members []model.Member
		total   int64
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		members, err = s.store.RankedMembers(gctx, communityID)
		return err
	})
	g.Go(func() error {
		var err error
		total, err = s.store.CommunityTotal(gctx, communityID)
		return err
	})
	if err := g.Wait(); err != nil {
		return Rankings{}, persistErr("community rankings", err)
	}

	return Rankings{
		CommunityID: communityID,
		Total:       total,
		Limit:       limit,
		Pages:       ranking.BuildPages(toRecords(members), limit, s.pageSize),
	}, nil
}

func toRecords(members []model.Member) []ranking.Record {
	out := make([]ranking.Record, len(members))
	for i, m := range members {
		out[i] = ranking.Record{
			Name:     m.Name,
			Count:    m.DetectionCount,
			Verified: m.Verified,
			HasPass:  m.HasPass,
		}
	}
	return out
}

// Vote 调用者给 target 投票
func (s *CommandService) Vote(ctx context.Context, inv Invocation, activeMembers int) (VoteOutcome, error) {
	return s.cast(ctx, inv, activeMembers, ActionVote)
}

// Unvote 撤回调用者的投票
func (s *CommandService) Unvote(ctx context.Context, inv Invocation, activeMembers int) (VoteOutcome, error) {
	return s.cast(ctx, inv, activeMembers, ActionUnvote)
}

func (s *CommandService) cast(ctx context.Context, inv Invocation, activeMembers int, action VoteAction) (VoteOutcome, error) {
	if inv.Target == nil {
		return VoteOutcome{}, ErrInvalidID
	}
	return s.votes.CastVote(ctx, VoteRequest{
		CommunityID:    inv.CommunityID,
		CommunityName:  inv.CommunityName,
		VoterID:        inv.InvokerID,
		TargetID:       inv.Target.ID,
		TargetName:     inv.Target.Name,
		TargetIsMember: inv.Target.IsMember,
		ActiveMembers:  activeMembers,
		Action:         action,
	})
}

func (s *CommandService) ListVerifiedMembers(ctx context.Context, communityID uint64) ([]string, error) {
	if communityID == 0 {
		return nil, ErrInvalidID
	}
	names, err := s.store.VerifiedNames(ctx, communityID)
	if err != nil {
		return nil, persistErr("verified members", err)
	}
	return names, nil
}

func (s *CommandService) ListPassHolders(ctx context.Context, communityID uint64) ([]string, error) {
	if communityID == 0 {
		return nil, ErrInvalidID
	}
	names, err := s.store.PassHolderNames(ctx, communityID)
	if err != nil {
		return nil, persistErr("pass holders", err)
	}
	return names, nil
}

// GetPasses 可用 pass 数；成员没有记录时先创建
func (s *CommandService) GetPasses(ctx context.Context, inv Invocation) (int64, error) {
	uid, name, err := inv.subject()
	if err != nil {
		return 0, err
	}
	if err := ensureCommunity(ctx, s.store, inv.CommunityID, inv.CommunityName); err != nil {
		return 0, err
	}
	m, err := ensureMember(ctx, s.store, inv.CommunityID, uid, name)
	if err != nil {
		return 0, err
	}
	return m.PassCount, nil
}

// GrantPasses 给成员增加 pass
func (s *CommandService) GrantPasses(ctx context.Context, inv Invocation, delta int64) (int64, error) {
	if delta <= 0 {
		return 0, ErrInvalidDelta
	}
	uid, name, err := inv.subject()
	if err != nil {
		return 0, err
	}
	if err := ensureCommunity(ctx, s.store, inv.CommunityID, inv.CommunityName); err != nil {
		return 0, err
	}
	if _, err := ensureMember(ctx, s.store, inv.CommunityID, uid, name); err != nil {
		return 0, err
	}
	if err := s.store.IncrementPassCount(ctx, inv.CommunityID, uid, delta); err != nil {
		return 0, persistErr("increment passes", err)
	}
	m, err := s.store.FindMember(ctx, inv.CommunityID, uid)
	if err != nil {
		return 0, persistErr("find member", err)
	}
	return m.PassCount, nil
}
