package service

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestThresholdBreakpoints(t *testing.T) {
	cases := map[int]int{
		0: 1, 2: 1,
		3: 2, 9: 2,
		10: 3, 49: 3,
		50: 4, 99: 4,
		100: 5, 249: 5,
		250: 10, 10000: 10,
	}
	for n, want := range cases {
		assert.Equal(t, want, Threshold(n), "members=%d", n)
	}

	prev := Threshold(0)
	for n := 1; n <= 300; n++ {
		cur := Threshold(n)
		assert.GreaterOrEqual(t, cur, prev, "members=%d", n)
		prev = cur
	}
}

func voteReq(voter, target uint64, action VoteAction) VoteRequest {
	return VoteRequest{
		CommunityID:    1,
		CommunityName:  "guild",
		VoterID:        voter,
		TargetID:       target,
		TargetName:     "target",
		TargetIsMember: true,
		ActiveMembers:  5,
		Action:         action,
	}
}

func TestVerificationFollowsVoteCount(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()

	out, err := s.votes.CastVote(ctx, voteReq(2, 1, ActionVote))
	require.NoError(t, err)
	assert.Equal(t, VoteSuccess, out.Status)
	assert.EqualValues(t, 1, out.Votes)
	assert.Equal(t, 2, out.Threshold)
	assert.False(t, out.Verified)

	out, err = s.votes.CastVote(ctx, voteReq(3, 1, ActionVote))
	require.NoError(t, err)
	assert.EqualValues(t, 2, out.Votes)
	assert.True(t, out.Verified)

	ok, err := s.votes.IsVerified(ctx, 1, 1)
	require.NoError(t, err)
	assert.True(t, ok)

	out, err = s.votes.CastVote(ctx, voteReq(2, 1, ActionUnvote))
	require.NoError(t, err)
	assert.Equal(t, VoteSuccess, out.Status)
	assert.EqualValues(t, 1, out.Votes)
	assert.False(t, out.Verified)

	ok, err = s.votes.IsVerified(ctx, 1, 1)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRepeatedVoteIsAlreadyPerformed(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()

	_, err := s.votes.CastVote(ctx, voteReq(2, 1, ActionVote))
	require.NoError(t, err)
	out, err := s.votes.CastVote(ctx, voteReq(2, 1, ActionVote))
	require.NoError(t, err)
	assert.Equal(t, VoteAlreadyPerformed, out.Status)
	assert.EqualValues(t, 1, out.Votes)
	assert.Equal(t, "You already voted for this person!\n(1/2) required votes so far!", out.Message())

	voters, err := s.store.Votes.Voters(ctx, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, []uint64{2}, voters)
}

func TestUnvoteWithoutVote(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()

	out, err := s.votes.CastVote(ctx, voteReq(2, 1, ActionUnvote))
	require.NoError(t, err)
	assert.Equal(t, VoteAlreadyPerformed, out.Status)
	assert.Zero(t, out.Votes)
	assert.Equal(t, "You never voted for this person!\n(0/2) required votes so far!", out.Message())

	// 目标成员记录会被创建
	m, err := s.store.FindMember(ctx, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, "target", m.Name)
	assert.Zero(t, m.DetectionCount)
}

func TestCastVoteValidation(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()

	self := voteReq(1, 1, ActionVote)
	_, err := s.votes.CastVote(ctx, self)
	assert.ErrorIs(t, err, ErrSelfVote)

	outsider := voteReq(2, 1, ActionVote)
	outsider.TargetIsMember = false
	_, err = s.votes.CastVote(ctx, outsider)
	assert.ErrorIs(t, err, ErrNotMember)

	_, err = s.votes.CastVote(ctx, voteReq(2, 1, "boost"))
	assert.ErrorIs(t, err, ErrUnknownAction)

	_, err = s.votes.CastVote(ctx, voteReq(0, 1, ActionVote))
	assert.ErrorIs(t, err, ErrInvalidID)
	assert.True(t, IsValidation(err))

	total, err := s.store.TotalRecordCount(ctx)
	require.NoError(t, err)
	assert.Zero(t, total)
}

func TestConcurrentVotesOnSameTarget(t *testing.T) {
	s := newServices(t)
	ctx := context.Background()

	const voters = 12
	var wg sync.WaitGroup
	errs := make(chan error, voters)
	for i := 0; i < voters; i++ {
		wg.Add(1)
		go func(voter uint64) {
			defer wg.Done()
			req := voteReq(voter, 1, ActionVote)
			req.ActiveMembers = 60
			if _, err := s.votes.CastVote(ctx, req); err != nil {
				errs <- fmt.Errorf("voter %d: %w", voter, err)
			}
		}(uint64(i + 2))
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}

	list, err := s.store.Votes.Voters(ctx, 1, 1)
	require.NoError(t, err)
	assert.Len(t, list, voters)

	ok, err := s.votes.IsVerified(ctx, 1, 1)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestVoteOutcomeMessages(t *testing.T) {
	o := VoteOutcome{Action: ActionVote, Status: VoteSuccess, Votes: 3, Threshold: 4}
	assert.Equal(t, "Successfully voted!\n(3/4) required votes so far!", o.Message())
	o.Status = VoteError
	assert.Equal(t, "Couldn't vote for person", o.Message())

	o = VoteOutcome{Action: ActionUnvote, Status: VoteSuccess, Votes: 0, Threshold: 1}
	assert.Equal(t, "Successfully removed vote!\n(0/1) required votes so far!", o.Message())
	o.Status = VoteError
	assert.Equal(t, "Couldn't unvote person", o.Message())
}

func TestIsVerifiedUnknownMember(t *testing.T) {
	s := newServices(t)
	ok, err := s.votes.IsVerified(context.Background(), 1, 99)
	require.NoError(t, err)
	assert.False(t, ok)
}
