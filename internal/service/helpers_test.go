package service

import (
	"context"
	"testing"

	"NWord_Counter/internal/repository/mysql"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm/logger"
)

func newTestStore(t *testing.T) *mysql.Store {
	t.Helper()
	st, err := mysql.Open(sqlite.Open(":memory:"), mysql.Options{MaxOpenConns: 1, LogLevel: logger.Silent})
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	_, err = mysql.Migrate(context.Background(), st.DB())
	require.NoError(t, err)
	return st
}

type services struct {
	store    *mysql.Store
	votes    *VoteService
	settings *SettingsService
	counter  *CounterService
	commands *CommandService
}

func newServices(t *testing.T) *services {
	t.Helper()
	st := newTestStore(t)
	votes := NewVoteService(st, NewKeyedMutex(), 0)
	settings := NewSettingsService(st)
	counter := NewCounterService(st, votes, settings, nil)
	counter.pick = func(int) int { return 0 }
	return &services{
		store:    st,
		votes:    votes,
		settings: settings,
		counter:  counter,
		commands: NewCommandService(st, votes),
	}
}

func member(id uint64, name string) *Target {
	return &Target{ID: id, Name: name, IsMember: true}
}
