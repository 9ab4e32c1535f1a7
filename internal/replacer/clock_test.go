package replacer

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClock_EmptyIsError(t *testing.T) {
	c := NewClock(2)
	_, err := c.ChooseVictim()
	require.ErrorIs(t, err, ErrEmptyVictim)
}

func TestClock_EvictsUnreferencedFirst(t *testing.T) {
	c := NewClock(3)
	c.NotifyAccess(1)
	c.NotifyAccess(2)
	c.NotifyAccess(3)

	// Clear the reference bit on 2 only. The sweep starts at 1, which is
	// referenced and gets a second chance, then stops at 2; 3 is never
	// reached.
	c.entries[1].ref = false
	v, err := c.ChooseVictim()
	require.NoError(t, err)
	require.Equal(t, int64(2), v)
}

func TestClock_SecondChance(t *testing.T) {
	c := NewClock(2)
	c.NotifyAccess(1)
	c.NotifyAccess(2)

	// Both have ref=true: first sweep clears bits, second sweep evicts
	// whichever the hand lands on first (offset 1, since hand starts
	// at 0 and both were inserted in order).
	v, err := c.ChooseVictim()
	require.NoError(t, err)
	require.Equal(t, int64(1), v)
}

func TestClock_RefreshedEntrySurvivesOneSweep(t *testing.T) {
	c := NewClock(3)
	c.NotifyAccess(1)
	c.NotifyAccess(2)
	c.NotifyAccess(3)

	first, err := c.ChooseVictim()
	require.NoError(t, err)
	require.Equal(t, int64(1), first)

	// Refresh 2's reference bit; 3's bit is stale (cleared by the
	// sweep above).
	c.NotifyAccess(2)
	c.NotifyAccess(4)

	v, err := c.ChooseVictim()
	require.NoError(t, err)
	require.Equal(t, int64(3), v)
}

func TestClock_HandClampedAfterEvictingLastEntry(t *testing.T) {
	// Removing the entry at the tail must not leave the hand pointing
	// past the end of the (now shorter) entries slice.
	c := NewClock(2)
	c.NotifyAccess(1)
	c.NotifyAccess(2)
	// Only 2, the tail entry, is unreferenced, so the sweep skips 1 and
	// removes the entry at index 1 with the hand on it.
	c.entries[1].ref = false

	v1, err := c.ChooseVictim()
	require.NoError(t, err)
	require.Equal(t, int64(2), v1)
	c.NotifyEvict(v1)

	require.Less(t, c.hand, len(c.entries))

	v2, err := c.ChooseVictim()
	require.NoError(t, err)
	require.NotEqual(t, v1, v2)
}

func TestClock_NotifyAccessIgnoredWhenFull(t *testing.T) {
	c := NewClock(1)
	c.NotifyAccess(1)
	c.NotifyAccess(2) // no room; BufferManager always evicts first in practice

	require.Equal(t, 1, len(c.entries))
	v, err := c.ChooseVictim()
	require.NoError(t, err)
	require.Equal(t, int64(1), v)
}

func TestClock_Name(t *testing.T) {
	require.Equal(t, "clock", NewClock(4).Name())
}

func TestClock_Deterministic(t *testing.T) {
	run := func() []int64 {
		c := NewClock(4)
		for _, o := range []int64{1, 2, 3, 4} {
			c.NotifyAccess(o)
		}
		var got []int64
		for i := 0; i < 4; i++ {
			v, err := c.ChooseVictim()
			require.NoError(t, err)
			c.NotifyEvict(v)
			got = append(got, v)
		}
		return got
	}
	require.Equal(t, run(), run())
}
