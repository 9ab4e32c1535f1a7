package replacer

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLRU_EvictsLeastRecentlyAccessed(t *testing.T) {
	l := NewLRU()
	l.NotifyAccess(1)
	l.NotifyAccess(2)
	l.NotifyAccess(3)

	v, err := l.ChooseVictim()
	require.NoError(t, err)
	require.Equal(t, int64(1), v)
}

func TestLRU_AccessMovesToTail(t *testing.T) {
	l := NewLRU()
	l.NotifyAccess(1)
	l.NotifyAccess(2)
	l.NotifyAccess(1) // re-access 1, now 2 is oldest

	v, err := l.ChooseVictim()
	require.NoError(t, err)
	require.Equal(t, int64(2), v)
}

func TestLRU_NotifyEvictRemoves(t *testing.T) {
	l := NewLRU()
	l.NotifyAccess(1)
	l.NotifyAccess(2)
	l.NotifyEvict(1)

	v, err := l.ChooseVictim()
	require.NoError(t, err)
	require.Equal(t, int64(2), v)
}

func TestLRU_EmptyIsError(t *testing.T) {
	l := NewLRU()
	_, err := l.ChooseVictim()
	require.ErrorIs(t, err, ErrEmptyVictim)
}

func TestLRU_Init_Resets(t *testing.T) {
	l := NewLRU()
	l.NotifyAccess(1)
	l.Init()
	_, err := l.ChooseVictim()
	require.ErrorIs(t, err, ErrEmptyVictim)
}

func TestLRU_Name(t *testing.T) {
	require.Equal(t, "lru", NewLRU().Name())
}

func TestLRU_Deterministic(t *testing.T) {
	run := func() []int64 {
		l := NewLRU()
		var got []int64
		for _, o := range []int64{10, 20, 30, 20, 40} {
			l.NotifyAccess(o)
		}
		for i := 0; i < 3; i++ {
			v, err := l.ChooseVictim()
			require.NoError(t, err)
			l.NotifyEvict(v)
			got = append(got, v)
		}
		return got
	}
	require.Equal(t, run(), run())
}
