package replacer

// MRU evicts the single most-recently-accessed offset. Because the
// BufferManager always calls ChooseVictim, then NotifyEvict, then
// NotifyAccess for the newly installed page (in that order), the
// "most recently used" slot is always resident whenever initialized
// is true.
type MRU struct {
	mostRecentlyUsed int64
	initialized      bool
}

var _ Policy = (*MRU)(nil)

// NewMRU returns a fresh MRU policy.
func NewMRU() *MRU {
	m := &MRU{}
	m.Init()
	return m
}

func (m *MRU) Init() {
	m.mostRecentlyUsed = 0
	m.initialized = false
}

func (m *MRU) NotifyAccess(offset int64) {
	m.mostRecentlyUsed = offset
	m.initialized = true
}

func (m *MRU) NotifyEvict(offset int64) {
	if m.initialized && offset == m.mostRecentlyUsed {
		m.initialized = false
	}
}

func (m *MRU) ChooseVictim() (int64, error) {
	if !m.initialized {
		return 0, ErrNotInitialized
	}
	return m.mostRecentlyUsed, nil
}

func (m *MRU) Name() string { return "mru" }
