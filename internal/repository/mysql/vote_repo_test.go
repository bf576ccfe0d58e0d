package mysql

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVoteAndUnvote(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	seedMember(t, st, 1, 10, "votee", 0)

	res, err := st.Votes.Vote(ctx, 1, 10, 20, 2)
	require.NoError(t, err)
	assert.Equal(t, VoteChange{Changed: true, Votes: 1, Verified: false}, res)

	res, err = st.Votes.Vote(ctx, 1, 10, 20, 2)
	require.NoError(t, err)
	assert.Equal(t, VoteChange{Changed: false, Votes: 1, Verified: false}, res)

	res, err = st.Votes.Vote(ctx, 1, 10, 21, 2)
	require.NoError(t, err)
	assert.Equal(t, VoteChange{Changed: true, Votes: 2, Verified: true}, res)

	m, err := st.FindMember(ctx, 1, 10)
	require.NoError(t, err)
	assert.True(t, m.Verified)

	voters, err := st.Votes.Voters(ctx, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, []uint64{20, 21}, voters)

	res, err = st.Votes.Unvote(ctx, 1, 10, 20, 2)
	require.NoError(t, err)
	assert.Equal(t, VoteChange{Changed: true, Votes: 1, Verified: false}, res)

	res, err = st.Votes.Unvote(ctx, 1, 10, 20, 2)
	require.NoError(t, err)
	assert.False(t, res.Changed)

	voters, err = st.Votes.Voters(ctx, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, []uint64{21}, voters)

	m, err = st.FindMember(ctx, 1, 10)
	require.NoError(t, err)
	assert.False(t, m.Verified)
}

func TestVoteScopedPerCommunity(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	seedMember(t, st, 1, 10, "votee", 0)
	seedMember(t, st, 2, 10, "votee", 0)

	_, err := st.Votes.Vote(ctx, 1, 10, 20, 1)
	require.NoError(t, err)

	voters, err := st.Votes.Voters(ctx, 2, 10)
	require.NoError(t, err)
	assert.Empty(t, voters)

	m, err := st.FindMember(ctx, 2, 10)
	require.NoError(t, err)
	assert.False(t, m.Verified)
}

func TestVoteMissingMember(t *testing.T) {
	st := newTestStore(t)
	require.NoError(t, st.CreateCommunity(context.Background(), 1, "guild"))

	_, err := st.Votes.Vote(context.Background(), 1, 10, 20, 1)
	assert.ErrorIs(t, err, ErrMemberNotFound)
}
