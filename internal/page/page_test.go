package page

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tuannm99/heapcache/internal/record"
)

func TestNewPageAllSlotsFree(t *testing.T) {
	p := New()
	require.Equal(t, SlotCount, p.FreeSlotCount())
	for i := 0; i < SlotCount; i++ {
		require.False(t, p.IsSlotUsed(i))
	}
	require.Equal(t, 0, p.FirstFreeSlot())
}

func TestInsertGetDeleteRecord(t *testing.T) {
	p := New()
	r := record.New(7, []byte("payload"))

	p.InsertRecord(3, r)
	require.True(t, p.IsSlotUsed(3))
	require.Equal(t, SlotCount-1, p.FreeSlotCount())
	require.True(t, r.Equal(p.GetRecord(3)))

	p.DeleteRecord(3)
	require.False(t, p.IsSlotUsed(3))
	require.Equal(t, SlotCount, p.FreeSlotCount())
}

func TestInsertIntoUsedSlotPanics(t *testing.T) {
	p := New()
	p.InsertRecord(0, record.New(1, nil))
	require.Panics(t, func() { p.InsertRecord(0, record.New(2, nil)) })
}

func TestGetUnusedSlotPanics(t *testing.T) {
	p := New()
	require.Panics(t, func() { p.GetRecord(0) })
}

func TestDeleteUnusedSlotPanics(t *testing.T) {
	p := New()
	require.Panics(t, func() { p.DeleteRecord(0) })
}

func TestSlotIndexOutOfRangePanics(t *testing.T) {
	p := New()
	require.Panics(t, func() { p.IsSlotUsed(-1) })
	require.Panics(t, func() { p.IsSlotUsed(SlotCount) })
}

func TestToBytesFromBytesRoundTrip(t *testing.T) {
	p := New()
	p.InsertRecord(0, record.New(10, []byte("a")))
	p.InsertRecord(5, record.New(20, []byte("b")))
	p.InsertRecord(SlotCount-1, record.New(30, []byte("c")))

	buf := p.ToBytes()
	require.Len(t, buf, Size)

	got, err := FromBytes(buf)
	require.NoError(t, err)

	for i := 0; i < SlotCount; i++ {
		require.Equal(t, p.IsSlotUsed(i), got.IsSlotUsed(i))
		if p.IsSlotUsed(i) {
			require.True(t, p.GetRecord(i).Equal(got.GetRecord(i)))
		}
	}
}

func TestFromBytesRejectsWrongSize(t *testing.T) {
	_, err := FromBytes(make([]byte, Size-1))
	require.Error(t, err)
}

func TestFirstFreeSlotReturnsLowestFree(t *testing.T) {
	p := New()
	p.InsertRecord(0, record.New(1, nil))
	p.InsertRecord(1, record.New(2, nil))
	require.Equal(t, 2, p.FirstFreeSlot())
}

func TestFirstFreeSlotWhenFull(t *testing.T) {
	p := New()
	for i := 0; i < SlotCount; i++ {
		p.InsertRecord(i, record.New(int32(i), nil))
	}
	require.Equal(t, -1, p.FirstFreeSlot())
	require.Equal(t, 0, p.FreeSlotCount())
}
