// Package directory implements the persistent page directory: an
// ordered catalog of (offset, free-slot-count) entries, one per page,
// serialized to a dedicated sidecar file.
package directory

import (
	"fmt"
	"io"
	"os"

	"github.com/tuannm99/heapcache/internal/alias/bx"
	"github.com/tuannm99/heapcache/internal/alias/util"
	"github.com/tuannm99/heapcache/internal/page"
)

// PageInfo is the per-page metadata tracked by the directory.
type PageInfo struct {
	Offset    int64 // byte offset in the data file; always a multiple of page.Size
	FreeSlots int   // in [0, page.SlotCount]
}

// entrySize is the on-disk size of one serialized PageInfo: an 8-byte
// offset followed by a 4-byte free-slot count.
const entrySize = 8 + 4

// ErrUnknownOffset is returned by UpdatePageInfo when no entry matches
// the given offset, rather than silently doing nothing.
var ErrUnknownOffset = fmt.Errorf("directory: no page at given offset")

// PageDirectory is the ordered sequence of PageInfo entries. Page
// identifier i always has PageInfo.Offset == i * page.Size.
type PageDirectory struct {
	pages []PageInfo
}

// New returns an empty directory.
func New() *PageDirectory {
	return &PageDirectory{}
}

// AddPage appends info to the directory. The caller guarantees
// info.Offset == len(pages) * page.Size.
func (d *PageDirectory) AddPage(info PageInfo) {
	d.pages = append(d.pages, info)
}

// Pages returns the ordered sequence of page metadata. Callers must
// treat the result as read-only.
func (d *PageDirectory) Pages() []PageInfo {
	return d.pages
}

// Len returns the number of pages tracked.
func (d *PageDirectory) Len() int {
	return len(d.pages)
}

// UpdatePageInfo replaces the entry whose offset matches info.Offset.
// It returns ErrUnknownOffset if no such entry exists.
func (d *PageDirectory) UpdatePageInfo(info PageInfo) error {
	for i := range d.pages {
		if d.pages[i].Offset == info.Offset {
			d.pages[i] = info
			return nil
		}
	}
	return fmt.Errorf("%w: offset=%d", ErrUnknownOffset, info.Offset)
}

// ToBytes serializes the directory as: little-endian u32 count,
// followed by that many (u64 offset, u32 free_slots) records.
func (d *PageDirectory) ToBytes() []byte {
	buf := make([]byte, 4+len(d.pages)*entrySize)
	bx.PutU32At(buf, 0, uint32(len(d.pages)))
	off := 4
	for _, pi := range d.pages {
		bx.PutU64At(buf, off, uint64(pi.Offset))
		bx.PutU32At(buf, off+8, uint32(pi.FreeSlots))
		off += entrySize
	}
	return buf
}

// FromBytes parses the format produced by ToBytes. Decoding is total
// for any well-formed byte stream produced by this package; malformed
// input (short reads, trailing bytes) is reported as an error.
func FromBytes(buf []byte) (*PageDirectory, error) {
	if len(buf) < 4 {
		return nil, fmt.Errorf("directory: FromBytes: truncated count header")
	}
	count := bx.U32At(buf, 0)
	want := 4 + int(count)*entrySize
	if len(buf) != want {
		return nil, fmt.Errorf("directory: FromBytes: expected %d bytes for %d entries, got %d", want, count, len(buf))
	}
	d := &PageDirectory{pages: make([]PageInfo, count)}
	off := 4
	for i := range d.pages {
		d.pages[i] = PageInfo{
			Offset:    int64(bx.U64At(buf, off)),
			FreeSlots: int(bx.U32At(buf, off+8)),
		}
		off += entrySize
	}
	return d, nil
}

// Load reads the directory sidecar file at path. A missing file is not
// an error: it means an empty, freshly-created directory.
func Load(path string) (*PageDirectory, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return New(), nil
		}
		return nil, fmt.Errorf("directory: open %s: %w", path, err)
	}
	defer util.CloseFile(f)

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("directory: read %s: %w", path, err)
	}
	if len(data) == 0 {
		return New(), nil
	}
	d, err := FromBytes(data)
	if err != nil {
		return nil, fmt.Errorf("directory: decode %s: %w", path, err)
	}
	return d, nil
}

// Save overwrites path with the full serialized directory, in one
// synchronous write.
func (d *PageDirectory) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("directory: create %s: %w", path, err)
	}
	defer util.CloseFile(f)

	if _, err := f.Write(d.ToBytes()); err != nil {
		return fmt.Errorf("directory: write %s: %w", path, err)
	}
	return nil
}

// Validate checks the directory-density invariant (offsets are dense:
// entry i has offset i*page.Size) and that every free-slot count is in
// range. It is used by tests, not the hot path.
func (d *PageDirectory) Validate() error {
	for i, pi := range d.pages {
		if pi.Offset != int64(i)*int64(page.Size) {
			return fmt.Errorf("directory: page %d has offset %d, want %d", i, pi.Offset, int64(i)*int64(page.Size))
		}
		if pi.FreeSlots < 0 || pi.FreeSlots > page.SlotCount {
			return fmt.Errorf("directory: page %d free_slots %d out of range", i, pi.FreeSlots)
		}
	}
	return nil
}
