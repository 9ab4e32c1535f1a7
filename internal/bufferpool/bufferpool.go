// Package bufferpool implements the fixed-size page cache sitting in
// front of the heap file's data file. It is offset-keyed (not
// pageID-keyed): callers address pages by their byte offset in the
// data file, and the buffer manager owns exactly one file handle
// worth of I/O per call, opened and closed around the read or write.
package bufferpool

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/tuannm99/heapcache/internal/alias/util"
	"github.com/tuannm99/heapcache/internal/page"
	"github.com/tuannm99/heapcache/internal/replacer"
)

var logPrefix = "bufferpool: "

// ErrNotResident is returned by MarkDirty when the given offset is not
// currently cached.
var ErrNotResident = errors.New("bufferpool: page not resident")

// BufferManager caches decoded pages keyed by their byte offset in
// dataFile, bounded to poolSize entries. There is no pinning: the core
// is single-threaded, so any resident page is a valid eviction
// candidate the instant the caller's GetPage call returns.
type BufferManager struct {
	dataFile string
	poolSize int
	policy   replacer.Policy

	pages map[int64]*page.Page
	dirty map[int64]bool

	hitCount       uint64
	missCount      uint64
	diskReadCount  uint64
	diskWriteCount uint64
}

// New returns a buffer manager bounded to poolSize resident pages,
// backed by dataFile and the given replacement policy. The policy must
// be freshly initialized (or Init'd by the caller); New does not call
// Init itself so that a caller can inspect a pre-seeded policy in
// tests.
func New(dataFile string, poolSize int, policy replacer.Policy) *BufferManager {
	return &BufferManager{
		dataFile: dataFile,
		poolSize: poolSize,
		policy:   policy,
		pages:    make(map[int64]*page.Page),
		dirty:    make(map[int64]bool),
	}
}

// GetPage returns the page resident at offset, loading it from
// dataFile on a cache miss and evicting a victim first if the pool is
// already at capacity.
func (b *BufferManager) GetPage(offset int64) (*page.Page, error) {
	if p, ok := b.pages[offset]; ok {
		b.hitCount++
		b.policy.NotifyAccess(offset)
		slog.Debug(logPrefix+"hit", "offset", offset)
		return p, nil
	}

	b.missCount++
	slog.Debug(logPrefix+"miss", "offset", offset)

	if len(b.pages) >= b.poolSize {
		if err := b.evictOne(); err != nil {
			return nil, err
		}
	}

	buf := make([]byte, page.Size)
	if err := b.readAt(offset, buf); err != nil {
		return nil, err
	}
	p, err := page.FromBytes(buf)
	if err != nil {
		return nil, fmt.Errorf("bufferpool: decode page at offset %d: %w", offset, err)
	}

	b.pages[offset] = &p
	b.policy.NotifyAccess(offset)
	b.diskReadCount++
	return &p, nil
}

// MarkDirty flags the resident page at offset as modified, so it is
// written back on eviction or FlushAll. It fails if offset is not
// currently resident: the caller must GetPage it first.
func (b *BufferManager) MarkDirty(offset int64) error {
	if _, ok := b.pages[offset]; !ok {
		return fmt.Errorf("%w: offset=%d", ErrNotResident, offset)
	}
	b.dirty[offset] = true
	return nil
}

// FlushAll writes every dirty resident page back to dataFile.
func (b *BufferManager) FlushAll() error {
	n := len(b.dirty)
	for offset := range b.dirty {
		if err := b.writeBack(offset); err != nil {
			return err
		}
	}
	slog.Debug(logPrefix+"flushed", "pages", n)
	return nil
}

// evictOne chooses a victim via the replacement policy, writes it back
// if dirty, and drops it from residency.
func (b *BufferManager) evictOne() error {
	victim, err := b.policy.ChooseVictim()
	if err != nil {
		return fmt.Errorf("bufferpool: evict: %w", err)
	}

	if b.dirty[victim] {
		if err := b.writeBack(victim); err != nil {
			return err
		}
	}

	delete(b.pages, victim)
	b.policy.NotifyEvict(victim)
	slog.Debug(logPrefix+"evicted", "offset", victim, "policy", b.policy.Name())
	return nil
}

func (b *BufferManager) writeBack(offset int64) error {
	p, ok := b.pages[offset]
	if !ok {
		delete(b.dirty, offset)
		return nil
	}
	if err := b.writeAt(offset, p.ToBytes()); err != nil {
		return err
	}
	delete(b.dirty, offset)
	b.diskWriteCount++
	return nil
}

func (b *BufferManager) readAt(offset int64, dst []byte) error {
	f, err := os.OpenFile(b.dataFile, os.O_RDONLY|os.O_CREATE, 0o644)
	if err != nil {
		return fmt.Errorf("bufferpool: open %s: %w", b.dataFile, err)
	}
	defer util.CloseFile(f)

	n, err := f.ReadAt(dst, offset)
	if n == len(dst) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("bufferpool: read %s at offset %d: %w", b.dataFile, offset, err)
	}
	return fmt.Errorf("bufferpool: short read at offset %d: got %d of %d bytes", offset, n, len(dst))
}

func (b *BufferManager) writeAt(offset int64, src []byte) error {
	f, err := os.OpenFile(b.dataFile, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return fmt.Errorf("bufferpool: open %s: %w", b.dataFile, err)
	}
	defer util.CloseFile(f)

	if _, err := f.WriteAt(src, offset); err != nil {
		return fmt.Errorf("bufferpool: write %s at offset %d: %w", b.dataFile, offset, err)
	}
	return nil
}

// CurrentPoolSize returns the number of pages currently resident.
func (b *BufferManager) CurrentPoolSize() int { return len(b.pages) }

// HitCount returns the cumulative number of GetPage calls resolved
// without a disk read.
func (b *BufferManager) HitCount() uint64 { return b.hitCount }

// MissCount returns the cumulative number of GetPage calls that required
// a disk read.
func (b *BufferManager) MissCount() uint64 { return b.missCount }

// HitRatio returns hits / (hits + misses), or 0 if there have been no
// accesses yet.
func (b *BufferManager) HitRatio() float64 {
	total := b.hitCount + b.missCount
	if total == 0 {
		return 0
	}
	return float64(b.hitCount) / float64(total)
}

// DiskReadCount returns the cumulative number of page-sized reads issued
// against dataFile.
func (b *BufferManager) DiskReadCount() uint64 { return b.diskReadCount }

// DiskWriteCount returns the cumulative number of page-sized writes
// issued against dataFile.
func (b *BufferManager) DiskWriteCount() uint64 { return b.diskWriteCount }

// ReplacementPolicyName returns the name of the configured eviction
// policy, e.g. "lru", "mru", or "clock".
func (b *BufferManager) ReplacementPolicyName() string { return b.policy.Name() }

// ResetCounters zeroes the hit/miss/disk-I/O counters without disturbing
// cached pages or the replacement policy's state.
func (b *BufferManager) ResetCounters() {
	b.hitCount = 0
	b.missCount = 0
	b.diskReadCount = 0
	b.diskWriteCount = 0
}
