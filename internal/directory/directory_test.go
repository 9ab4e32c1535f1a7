package directory

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tuannm99/heapcache/internal/page"
)

func TestAddPageAndValidateDensity(t *testing.T) {
	d := New()
	d.AddPage(PageInfo{Offset: 0, FreeSlots: page.SlotCount})
	d.AddPage(PageInfo{Offset: int64(page.Size), FreeSlots: page.SlotCount})

	require.Equal(t, 2, d.Len())
	require.NoError(t, d.Validate())
}

func TestUpdatePageInfoReplacesMatchingOffset(t *testing.T) {
	d := New()
	d.AddPage(PageInfo{Offset: 0, FreeSlots: page.SlotCount})

	require.NoError(t, d.UpdatePageInfo(PageInfo{Offset: 0, FreeSlots: page.SlotCount - 1}))
	require.Equal(t, page.SlotCount-1, d.Pages()[0].FreeSlots)
}

func TestUpdatePageInfoUnknownOffsetFails(t *testing.T) {
	d := New()
	d.AddPage(PageInfo{Offset: 0, FreeSlots: page.SlotCount})

	err := d.UpdatePageInfo(PageInfo{Offset: int64(page.Size), FreeSlots: 0})
	require.ErrorIs(t, err, ErrUnknownOffset)
}

func TestToBytesFromBytesRoundTrip(t *testing.T) {
	d := New()
	d.AddPage(PageInfo{Offset: 0, FreeSlots: 16})
	d.AddPage(PageInfo{Offset: int64(page.Size), FreeSlots: 10})
	d.AddPage(PageInfo{Offset: int64(2 * page.Size), FreeSlots: 0})

	buf := d.ToBytes()
	got, err := FromBytes(buf)
	require.NoError(t, err)
	require.Equal(t, d.Pages(), got.Pages())
}

func TestFromBytesRejectsTruncated(t *testing.T) {
	_, err := FromBytes([]byte{1, 2})
	require.Error(t, err)

	_, err = FromBytes([]byte{1, 0, 0, 0})
	require.Error(t, err)
}

func TestLoadMissingFileReturnsEmptyDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nonexistent.dir")
	d, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 0, d.Len())
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "heap.dir")

	d := New()
	d.AddPage(PageInfo{Offset: 0, FreeSlots: 16})
	d.AddPage(PageInfo{Offset: int64(page.Size), FreeSlots: 3})
	require.NoError(t, d.Save(path))

	got, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, d.Pages(), got.Pages())
}

func TestLoadEmptyFileReturnsEmptyDirectory(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.dir")
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	d, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 0, d.Len())
}

func TestValidateRejectsNonDenseOffsets(t *testing.T) {
	d := New()
	d.AddPage(PageInfo{Offset: int64(page.Size), FreeSlots: 0})
	require.Error(t, d.Validate())
}
