package engine

// EventTarget receives a fired Event. Data Manager components register
// closures via FuncTarget rather than implementing this directly, but the
// interface is kept (rather than a bare func field) so that long-lived
// simulation objects — anything addressable through AddObject/GetObject —
// can also serve as a target.
type EventTarget interface {
	Execute(ev *Event)
}

// FuncTarget adapts a plain closure to EventTarget.
type FuncTarget func()

func (f FuncTarget) Execute(ev *Event) { f() }

// Event is a single scheduled occurrence. FireTime and Seq together give
// a total, deterministic order: events at the same cycle fire in
// registration order.
type Event struct {
	fireTime int64
	seq      uint64
	target   EventTarget
	Payload  any
	Type     int
	canceled bool
}

func (e *Event) FireTime() int64 { return e.fireTime }
func (e *Event) Seq() uint64     { return e.seq }

// SimObject is a long-lived object the engine can look up by id, mirroring
// Engine::AddObject/GetObject/RemoveObject.
type SimObject interface {
	ObjectID() int64
}

// eventHeap implements container/heap.Interface ordering by (fireTime, seq).
type eventHeap []*Event

func (h eventHeap) Len() int { return len(h) }
func (h eventHeap) Less(i, j int) bool {
	if h[i].fireTime != h[j].fireTime {
		return h[i].fireTime < h[j].fireTime
	}
	return h[i].seq < h[j].seq
}
func (h eventHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }
func (h *eventHeap) Push(x any)   { *h = append(*h, x.(*Event)) }
func (h *eventHeap) Pop() any {
	old := *h
	n := len(old)
	ev := old[n-1]
	old[n-1] = nil
	*h = old[:n-1]
	return ev
}
