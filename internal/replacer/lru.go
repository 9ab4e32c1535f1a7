package replacer

import "container/list"

// LRU evicts the least-recently-accessed offset. State is an ordered
// doubly linked list from least- to most-recently accessed, with no
// external pinning and no mutex: the core is single-threaded.
type LRU struct {
	order *list.List
	elems map[int64]*list.Element
}

var _ Policy = (*LRU)(nil)

// NewLRU returns a fresh LRU policy.
func NewLRU() *LRU {
	l := &LRU{}
	l.Init()
	return l
}

func (l *LRU) Init() {
	l.order = list.New()
	l.elems = make(map[int64]*list.Element)
}

func (l *LRU) NotifyAccess(offset int64) {
	if e, ok := l.elems[offset]; ok {
		l.order.Remove(e)
	}
	l.elems[offset] = l.order.PushBack(offset)
}

func (l *LRU) NotifyEvict(offset int64) {
	if e, ok := l.elems[offset]; ok {
		l.order.Remove(e)
		delete(l.elems, offset)
	}
}

func (l *LRU) ChooseVictim() (int64, error) {
	front := l.order.Front()
	if front == nil {
		return 0, ErrEmptyVictim
	}
	return front.Value.(int64), nil
}

func (l *LRU) Name() string { return "lru" }
