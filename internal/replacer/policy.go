// Package replacer implements the pluggable buffer-pool replacement
// policies: LRU, MRU, and CLOCK. Each is driven purely by the
// Access/Evict event stream the BufferManager issues; none of them
// inspect page contents or know about pinning.
package replacer

import "errors"

// ErrEmptyVictim is returned by ChooseVictim when the policy currently
// tracks no offsets at all. The BufferManager never triggers this: it
// only calls ChooseVictim when the pool is at capacity (>= 1 entry).
var ErrEmptyVictim = errors.New("replacer: choose victim on empty policy")

// ErrNotInitialized is returned by MRU's ChooseVictim when it holds no
// most-recently-used offset: before any access has been recorded, or
// after that offset has been evicted.
var ErrNotInitialized = errors.New("replacer: choose victim before any access")

// Policy is the capability contract a replacement strategy exposes to
// the BufferManager. Implementations are plain state machines: they
// hold no locks and make no I/O calls.
type Policy interface {
	// Init resets the policy to empty.
	Init()

	// NotifyAccess is called on every buffer-pool hit and immediately
	// after installing any miss.
	NotifyAccess(offset int64)

	// NotifyEvict is called once the BufferManager has removed the
	// frame for offset from its table.
	NotifyEvict(offset int64)

	// ChooseVictim selects the offset to evict. It is only called when
	// the pool is full, so an empty policy indicates a bug upstream.
	ChooseVictim() (int64, error)

	// Name identifies the strategy (e.g. "lru", "mru", "clock").
	Name() string
}
