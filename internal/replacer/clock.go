package replacer

// clockEntry is one slot in the CLOCK's circular array.
type clockEntry struct {
	offset int64
	ref    bool
}

// Clock implements the CLOCK (second-chance) replacement policy over a
// fixed capacity. It tracks presence and a per-entry reference bit
// only: the core is single-threaded and never pins, so every resident
// offset is always a candidate victim.
type Clock struct {
	capacity int
	entries  []clockEntry
	hand     int
}

var _ Policy = (*Clock)(nil)

// NewClock returns a fresh CLOCK policy bounded to capacity entries.
func NewClock(capacity int) *Clock {
	c := &Clock{capacity: capacity}
	c.Init()
	return c
}

func (c *Clock) Init() {
	c.entries = c.entries[:0]
	c.hand = 0
}

func (c *Clock) indexOf(offset int64) int {
	for i, e := range c.entries {
		if e.offset == offset {
			return i
		}
	}
	return -1
}

// NotifyAccess marks offset as recently used. If offset is not yet
// tracked and there is room, it is appended with its reference bit
// set. The BufferManager always evicts before installing a new page
// when the pool is full, so there is no "no room" branch to handle
// here beyond this no-op guard.
func (c *Clock) NotifyAccess(offset int64) {
	if i := c.indexOf(offset); i >= 0 {
		c.entries[i].ref = true
		return
	}
	if len(c.entries) < c.capacity {
		c.entries = append(c.entries, clockEntry{offset: offset, ref: true})
	}
}

// NotifyEvict removes offset from tracking. The hand is clamped modulo
// the new, smaller length so it never indexes past the end after the
// last entry is removed.
func (c *Clock) NotifyEvict(offset int64) {
	i := c.indexOf(offset)
	if i < 0 {
		return
	}
	c.entries = append(c.entries[:i], c.entries[i+1:]...)
	if len(c.entries) == 0 {
		c.hand = 0
		return
	}
	c.hand %= len(c.entries)
}

// ChooseVictim sweeps from the hand, giving every referenced entry one
// second chance. The first unreferenced entry found is removed from
// tracking immediately (the hand stays at that index, now pointing at
// whatever slides into it) and its offset is returned; a later
// NotifyEvict for the same offset is a harmless no-op. The sweep is
// bounded to two full passes, which always terminates because at
// least one entry's reference bit is cleared on every pass.
func (c *Clock) ChooseVictim() (int64, error) {
	n := len(c.entries)
	if n == 0 {
		return 0, ErrEmptyVictim
	}

	for scanned := 0; scanned < 2*n; scanned++ {
		if c.hand >= len(c.entries) {
			c.hand = 0
		}
		e := c.entries[c.hand]
		if !e.ref {
			c.entries = append(c.entries[:c.hand], c.entries[c.hand+1:]...)
			if len(c.entries) > 0 {
				c.hand %= len(c.entries)
			} else {
				c.hand = 0
			}
			return e.offset, nil
		}
		c.entries[c.hand].ref = false
		c.hand = (c.hand + 1) % len(c.entries)
	}

	// Unreachable in practice: every entry's ref bit is cleared within
	// one pass, guaranteeing a hit on the second.
	return 0, ErrEmptyVictim
}

func (c *Clock) Name() string { return "clock" }
