package engine

import (
	"container/heap"
	"fmt"
	"math"
)

// EventEngine is the discrete-event scheduling core (C2), grounded on the
// original Engine::{Register_sim_event, Ignore_sim_event, AddObject,
// GetObject, RemoveObject, tick, set_sim_time, get_next_event_firetime,
// is_event_tree_empty} and on the teacher's heap.Interface-based
// EventHeap (sim/cluster/event_heap.go), generalized from a 3-key
// (timestamp, type-priority, id) tiebreak to 2-key (fireTime, registration
// sequence): this spec's determinism requirement is "same-cycle events
// fire in registration order", not a fixed type priority.
type EventEngine struct {
	simTime int64
	heap    eventHeap
	objects map[int64]SimObject
	nextSeq uint64
}

func NewEventEngine() *EventEngine {
	return &EventEngine{
		objects: make(map[int64]SimObject),
	}
}

func (e *EventEngine) SimTime() int64 { return e.simTime }

// SetSimTime forces the clock forward. Used by DataManager.SkipToNextEvent
// to jump close to the next scheduled firing before a final single-cycle
// tick lands exactly on it.
func (e *EventEngine) SetSimTime(t int64) {
	if t > e.simTime {
		e.simTime = t
	}
}

// RegisterEvent schedules target to fire at fireTime. Returns an error if
// fireTime precedes the current clock — the engine never schedules into
// its own past.
func (e *EventEngine) RegisterEvent(fireTime int64, target EventTarget, payload any, evType int) (*Event, error) {
	if fireTime < e.simTime {
		return nil, fmt.Errorf("engine: fire time %d precedes current sim time %d", fireTime, e.simTime)
	}
	e.nextSeq++
	ev := &Event{fireTime: fireTime, seq: e.nextSeq, target: target, Payload: payload, Type: evType}
	heap.Push(&e.heap, ev)
	return ev, nil
}

// IgnoreEvent cancels a previously registered event. A canceled event is
// skipped when popped rather than removed from the heap immediately,
// avoiding an O(n) heap search.
func (e *EventEngine) IgnoreEvent(ev *Event) {
	if ev != nil {
		ev.canceled = true
	}
}

func (e *EventEngine) AddObject(o SimObject)    { e.objects[o.ObjectID()] = o }
func (e *EventEngine) RemoveObject(o SimObject) { delete(e.objects, o.ObjectID()) }
func (e *EventEngine) GetObject(id int64) (SimObject, bool) {
	o, ok := e.objects[id]
	return o, ok
}

func (e *EventEngine) dropCanceled() {
	for len(e.heap) > 0 && e.heap[0].canceled {
		heap.Pop(&e.heap)
	}
}

// NextEventFiretime returns the fire time of the earliest pending,
// non-canceled event. Reports false if none remain.
func (e *EventEngine) NextEventFiretime() (int64, bool) {
	e.dropCanceled()
	if len(e.heap) == 0 {
		return 0, false
	}
	return e.heap[0].fireTime, true
}

// NextEventFiretimeOrMax is a convenience for callers (FlashSim,
// DataManager) that combine several "next firing" sources and want a
// sentinel rather than a bool.
func (e *EventEngine) NextEventFiretimeOrMax() int64 {
	if ft, ok := e.NextEventFiretime(); ok {
		return ft
	}
	return math.MaxInt64
}

// IsEventTreeEmpty reports whether any event remains scheduled.
func (e *EventEngine) IsEventTreeEmpty() bool {
	_, ok := e.NextEventFiretime()
	return !ok
}

func (e *EventEngine) fireDue() {
	for len(e.heap) > 0 && e.heap[0].fireTime <= e.simTime {
		ev := heap.Pop(&e.heap).(*Event)
		if ev.canceled {
			continue
		}
		ev.target.Execute(ev)
	}
}

// Tick advances the clock to the next scheduled fire time and executes
// every event due at or before that instant, in (fireTime, seq) order.
func (e *EventEngine) Tick() {
	ft, ok := e.NextEventFiretime()
	if !ok {
		return
	}
	if ft > e.simTime {
		e.simTime = ft
	}
	e.fireDue()
}

// FireThrough advances the clock to at least now (never backward) and
// fires everything now due. Used by FlashSim, which steps its own clock
// one cycle at a time rather than jumping to the next event.
func (e *EventEngine) FireThrough(now int64) {
	if now > e.simTime {
		e.simTime = now
	}
	e.fireDue()
}
