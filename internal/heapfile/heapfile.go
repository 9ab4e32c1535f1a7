// Package heapfile implements the top-level record store API: insert,
// search (scan and hash-indexed), delete, and range scan over a paged
// heap file, backed by a page directory and a buffer pool.
package heapfile

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/tuannm99/heapcache/internal/alias/util"
	"github.com/tuannm99/heapcache/internal/bufferpool"
	"github.com/tuannm99/heapcache/internal/directory"
	"github.com/tuannm99/heapcache/internal/page"
	"github.com/tuannm99/heapcache/internal/record"
	"github.com/tuannm99/heapcache/internal/replacer"
)

var logPrefix = "heapfile: "

// ErrDuplicateKey is returned by InsertRecord when the key is already
// present in the hash index.
var ErrDuplicateKey = errors.New("heapfile: duplicate key")

// Location is the (pageId, slot) address of a record in the heap file.
type Location struct {
	PageID int
	Slot   int
}

// HeapFile is the top-level record store: a page directory, a buffer
// pool, and an in-memory hash index rebuilt at Open.
type HeapFile struct {
	dataFile      string
	directoryFile string

	dir   *directory.PageDirectory
	pool  *bufferpool.BufferManager
	index map[int32]Location
}

// Open loads the page directory (empty if the sidecar file is
// absent), constructs a buffer pool of poolSize pages backed by
// policy, and rebuilds the hash index by scanning every page.
func Open(dataFile, directoryFile string, poolSize int, policy replacer.Policy) (*HeapFile, error) {
	dir, err := directory.Load(directoryFile)
	if err != nil {
		return nil, fmt.Errorf("heapfile: load directory: %w", err)
	}

	policy.Init()
	pool := bufferpool.New(dataFile, poolSize, policy)

	hf := &HeapFile{
		dataFile:      dataFile,
		directoryFile: directoryFile,
		dir:           dir,
		pool:          pool,
		index:         make(map[int32]Location),
	}

	if err := hf.rebuildIndex(); err != nil {
		return nil, fmt.Errorf("heapfile: rebuild hash index: %w", err)
	}

	slog.Debug(logPrefix+"opened", "pages", dir.Len(), "indexed", len(hf.index))
	return hf, nil
}

func (hf *HeapFile) rebuildIndex() error {
	for _, pi := range hf.dir.Pages() {
		p, err := hf.pool.GetPage(pi.Offset)
		if err != nil {
			return err
		}
		pageID := int(pi.Offset / int64(page.Size))
		for s := 0; s < page.SlotCount; s++ {
			if !p.IsSlotUsed(s) {
				continue
			}
			r := p.GetRecord(s)
			hf.index[r.Key()] = Location{PageID: pageID, Slot: s}
		}
	}
	return nil
}

// InsertRecord stores r in the first page with a free slot, allocating
// a new page if none has room. Duplicate keys are rejected rather than
// silently overwriting the prior record's index entry.
func (hf *HeapFile) InsertRecord(r record.Record) error {
	if _, exists := hf.index[r.Key()]; exists {
		return fmt.Errorf("%w: key=%d", ErrDuplicateKey, r.Key())
	}

	pageID, offset, err := hf.findOrAllocatePage()
	if err != nil {
		return err
	}

	p, err := hf.pool.GetPage(offset)
	if err != nil {
		return err
	}

	slot := p.FirstFreeSlot()
	if slot < 0 {
		return fmt.Errorf("heapfile: page %d reported free_slots > 0 but has no free slot", pageID)
	}

	p.InsertRecord(slot, r)
	if err := hf.pool.MarkDirty(offset); err != nil {
		return err
	}

	pi := hf.dir.Pages()[pageID]
	pi.FreeSlots--
	if err := hf.dir.UpdatePageInfo(pi); err != nil {
		return fmt.Errorf("heapfile: update page info: %w", err)
	}
	if err := hf.dir.Save(hf.directoryFile); err != nil {
		return fmt.Errorf("heapfile: persist directory: %w", err)
	}

	hf.index[r.Key()] = Location{PageID: pageID, Slot: slot}
	slog.Debug(logPrefix+"inserted", "key", r.Key(), "page", pageID, "slot", slot)
	return nil
}

// findOrAllocatePage returns the pageID and byte offset of the first
// page with a free slot, allocating and zero-initializing a new page
// on disk if none qualifies. The new page's data is written before
// the directory entry so a crash in between leaves at worst an
// unreferenced allocated page rather than a dangling directory entry.
func (hf *HeapFile) findOrAllocatePage() (pageID int, offset int64, err error) {
	for i, pi := range hf.dir.Pages() {
		if pi.FreeSlots > 0 {
			return i, pi.Offset, nil
		}
	}

	pageID = hf.dir.Len()
	offset = int64(pageID) * int64(page.Size)

	empty := page.New()
	if err := hf.writePageImage(offset, empty.ToBytes()); err != nil {
		return 0, 0, fmt.Errorf("heapfile: allocate page %d: %w", pageID, err)
	}

	hf.dir.AddPage(directory.PageInfo{Offset: offset, FreeSlots: page.SlotCount})
	if err := hf.dir.Save(hf.directoryFile); err != nil {
		return 0, 0, fmt.Errorf("heapfile: persist directory after allocation: %w", err)
	}

	slog.Debug(logPrefix+"allocated page", "page", pageID, "offset", offset)
	return pageID, offset, nil
}

// writePageImage writes a fresh page image directly to the data file,
// bypassing the buffer pool. This is the one case, per the resource
// model, where the heap file writes a data page itself rather than
// going through the pool.
func (hf *HeapFile) writePageImage(offset int64, buf []byte) error {
	f, err := os.OpenFile(hf.dataFile, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return fmt.Errorf("open %s: %w", hf.dataFile, err)
	}
	defer util.CloseFile(f)

	if _, err := f.WriteAt(buf, offset); err != nil {
		return fmt.Errorf("write %s at offset %d: %w", hf.dataFile, offset, err)
	}
	return nil
}

// SearchRecord scans every page in directory order and returns the
// first record with the given key, or (Record{}, false) if absent.
func (hf *HeapFile) SearchRecord(key int32) (record.Record, bool, error) {
	for _, pi := range hf.dir.Pages() {
		p, err := hf.pool.GetPage(pi.Offset)
		if err != nil {
			return record.Record{}, false, err
		}
		for s := 0; s < page.SlotCount; s++ {
			if p.IsSlotUsed(s) && p.GetRecord(s).Key() == key {
				return p.GetRecord(s), true, nil
			}
		}
	}
	return record.Record{}, false, nil
}

// SearchRecordWithHash looks up key in the hash index and fetches its
// page directly, with no fallback to a full scan. If the indexed slot
// is no longer used (should not happen given the index invariants),
// it returns false rather than a stale record.
func (hf *HeapFile) SearchRecordWithHash(key int32) (record.Record, bool, error) {
	loc, ok := hf.index[key]
	if !ok {
		return record.Record{}, false, nil
	}
	offset := int64(loc.PageID) * int64(page.Size)
	p, err := hf.pool.GetPage(offset)
	if err != nil {
		return record.Record{}, false, err
	}
	if !p.IsSlotUsed(loc.Slot) {
		return record.Record{}, false, nil
	}
	return p.GetRecord(loc.Slot), true, nil
}

// DeleteRecord scans for the first record with the given key, frees
// its slot, and removes the hash index entry. It returns false if no
// record with that key exists.
func (hf *HeapFile) DeleteRecord(key int32) (bool, error) {
	for pageID, pi := range hf.dir.Pages() {
		p, err := hf.pool.GetPage(pi.Offset)
		if err != nil {
			return false, err
		}
		for s := 0; s < page.SlotCount; s++ {
			if !p.IsSlotUsed(s) || p.GetRecord(s).Key() != key {
				continue
			}
			p.DeleteRecord(s)
			if err := hf.pool.MarkDirty(pi.Offset); err != nil {
				return false, err
			}

			updated := pi
			updated.FreeSlots++
			if err := hf.dir.UpdatePageInfo(updated); err != nil {
				return false, fmt.Errorf("heapfile: update page info: %w", err)
			}
			if err := hf.dir.Save(hf.directoryFile); err != nil {
				return false, fmt.Errorf("heapfile: persist directory: %w", err)
			}

			delete(hf.index, key)
			slog.Debug(logPrefix+"deleted", "key", key, "page", pageID, "slot", s)
			return true, nil
		}
	}
	return false, nil
}

// RangeSearch returns every record whose key lies in [lo, hi], in
// page-then-slot order.
func (hf *HeapFile) RangeSearch(lo, hi int32) ([]record.Record, error) {
	var out []record.Record
	for _, pi := range hf.dir.Pages() {
		p, err := hf.pool.GetPage(pi.Offset)
		if err != nil {
			return nil, err
		}
		for s := 0; s < page.SlotCount; s++ {
			if !p.IsSlotUsed(s) {
				continue
			}
			r := p.GetRecord(s)
			if r.Key() >= lo && r.Key() <= hi {
				out = append(out, r)
			}
		}
	}
	return out, nil
}

// FlushAll delegates to the buffer pool, writing back every dirty
// page.
func (hf *HeapFile) FlushAll() error {
	return hf.pool.FlushAll()
}

// PrintAllPages writes a human-readable dump of every page's used
// slots to w.
func (hf *HeapFile) PrintAllPages(w io.Writer) error {
	for pageID, pi := range hf.dir.Pages() {
		p, err := hf.pool.GetPage(pi.Offset)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "page %d (offset=%d, free_slots=%d):\n", pageID, pi.Offset, pi.FreeSlots)
		for s := 0; s < page.SlotCount; s++ {
			if !p.IsSlotUsed(s) {
				continue
			}
			r := p.GetRecord(s)
			fmt.Fprintf(w, "  slot %d: key=%d\n", s, r.Key())
		}
	}
	return nil
}

// Pool exposes the underlying buffer manager for observability
// (counters, policy name) without letting callers bypass the heap
// file's write path.
func (hf *HeapFile) Pool() *bufferpool.BufferManager { return hf.pool }

// Directory exposes the underlying page directory, read-only, for
// tests and diagnostics.
func (hf *HeapFile) Directory() *directory.PageDirectory { return hf.dir }
