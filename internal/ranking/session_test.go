package ranking

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func threePages() []Page {
	return BuildPages(records(25), 30, 10)
}

func TestSessionNavigation(t *testing.T) {
	m := NewSessionManager(time.Minute, nil)
	defer m.Close()

	v, err := m.Open(7, threePages())
	require.NoError(t, err)
	assert.Equal(t, 0, v.Index)
	assert.Equal(t, 3, v.Total)
	assert.Equal(t, 1, v.Page.Number)

	steps := []struct {
		nav  Nav
		want int
	}{
		{NavPrev, 0},
		{NavNext, 1},
		{NavNext, 2},
		{NavNext, 2},
		{NavFirst, 0},
		{NavLast, 2},
		{NavPrev, 1},
	}
	for _, s := range steps {
		v, err = m.Navigate(v.SessionID, 7, s.nav)
		require.NoError(t, err)
		assert.Equal(t, s.want, v.Index, "after %s", s.nav)
		assert.Equal(t, s.want+1, v.Page.Number)
	}
}

func TestSessionOwnerOnly(t *testing.T) {
	m := NewSessionManager(time.Minute, nil)
	defer m.Close()

	v, err := m.Open(7, threePages())
	require.NoError(t, err)

	_, err = m.Navigate(v.SessionID, 8, NavNext)
	assert.ErrorIs(t, err, ErrNotOwner)

	got, err := m.Get(v.SessionID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Index)

	_, err = m.Navigate(v.SessionID, 7, Nav("sideways"))
	assert.ErrorIs(t, err, ErrUnknownNav)

	_, err = m.Navigate("missing", 7, NavNext)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestSessionRejectsEmptyPages(t *testing.T) {
	m := NewSessionManager(time.Minute, nil)
	defer m.Close()
	_, err := m.Open(1, nil)
	assert.ErrorIs(t, err, ErrNoPages)
}

func TestSessionExpires(t *testing.T) {
	expired := make(chan string, 1)
	m := NewSessionManager(20*time.Millisecond, func(id string) { expired <- id })
	defer m.Close()

	v, err := m.Open(7, threePages())
	require.NoError(t, err)

	select {
	case id := <-expired:
		assert.Equal(t, v.SessionID, id)
	case <-time.After(2 * time.Second):
		t.Fatal("session did not expire")
	}
	assert.Zero(t, m.Len())
	_, err = m.Navigate(v.SessionID, 7, NavNext)
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestSessionNavigationExtendsDeadline(t *testing.T) {
	m := NewSessionManager(200*time.Millisecond, nil)
	defer m.Close()

	v, err := m.Open(7, threePages())
	require.NoError(t, err)
	first := v.ExpiresAt

	for i := 0; i < 4; i++ {
		time.Sleep(70 * time.Millisecond)
		v, err = m.Navigate(v.SessionID, 7, NavNext)
		require.NoError(t, err)
	}
	assert.True(t, v.ExpiresAt.After(first))
	assert.Equal(t, 1, m.Len())
}

func TestSessionCloseCancelsTasks(t *testing.T) {
	called := make(chan struct{}, 1)
	m := NewSessionManager(50*time.Millisecond, func(string) { called <- struct{}{} })

	_, err := m.Open(7, threePages())
	require.NoError(t, err)
	m.Close()

	select {
	case <-called:
		t.Fatal("expiry ran after Close")
	case <-time.After(150 * time.Millisecond):
	}
	assert.Zero(t, m.Len())

	_, err = m.Open(7, threePages())
	assert.ErrorIs(t, err, ErrManagerClosed)
}
