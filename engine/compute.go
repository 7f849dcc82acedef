package engine

import "math"

type delayedCall struct {
	cycle int64
	cb    func()
}

// delayLane is one FIFO, non-decreasing-cycle queue of delayed callbacks.
type delayLane struct {
	entries []delayedCall
}

func (l *delayLane) nextFiretime() (int64, bool) {
	if len(l.entries) == 0 {
		return 0, false
	}
	return l.entries[0].cycle, true
}

func (l *delayLane) drain(now int64) {
	for len(l.entries) > 0 && l.entries[0].cycle <= now {
		cb := l.entries[0].cb
		l.entries = l.entries[1:]
		cb()
	}
}

func (l *delayLane) lastCycle(now int64) int64 {
	if len(l.entries) == 0 {
		return now
	}
	return l.entries[len(l.entries)-1].cycle
}

// Aggregator is a single serialized compute-delay queue (C6): each new
// call is scheduled at max(now, last-scheduled)+latency, so throughput is
// bounded to one completion per latency interval no matter how many
// calls arrive in the same cycle. Grounded on data_manager.hh's
// aggregate() / aggregation queue.
type Aggregator struct {
	lane    delayLane
	latency int64
}

func NewAggregator(latencyCycles int64) *Aggregator {
	return &Aggregator{latency: latencyCycles}
}

// Schedule enqueues cb to fire at max(now, last scheduled completion)+latency.
func (a *Aggregator) Schedule(now int64, cb func()) {
	base := a.lane.lastCycle(now)
	if base < now {
		base = now
	}
	a.lane.entries = append(a.lane.entries, delayedCall{cycle: base + a.latency, cb: cb})
}

func (a *Aggregator) NextFiretime() (int64, bool) { return a.lane.nextFiretime() }
func (a *Aggregator) Drain(now int64)             { a.lane.drain(now) }

// Combiner is an N-lane parallel compute-delay queue (C6): each call
// picks whichever lane minimizes the call's own projected completion
// cycle, modeling N independent compute units. An idle lane pays the
// full combine_latency; a lane that already has work queued overlaps
// the new call with it, paying only pe_latency on top of the lane's
// last scheduled completion (the systolic array pipelines successive
// tiles rather than restarting from scratch). Grounded on
// data_manager.hh's combine() and its PE-array latency formula.
type Combiner struct {
	lanes     []delayLane
	latency   int64
	peLatency int64
}

// NewCombiner builds a Combiner with n parallel lanes. latencyCycles is
// the full combine_latency charged to an idle lane; peLatencyCycles is
// the smaller per-request overlap increment charged when piling onto an
// already-busy lane.
func NewCombiner(n int, latencyCycles, peLatencyCycles int64) *Combiner {
	return &Combiner{lanes: make([]delayLane, n), latency: latencyCycles, peLatency: peLatencyCycles}
}

// CombineLatencyCycles reproduces the original's systolic-array tiling
// cost model for one combine pass over a node_feature_dim-wide tensor on
// a 128x128 PE array: peLatency * 128 * 2 * tiles^2, tiles = ceil(dim/128).
func CombineLatencyCycles(peLatencyCycles int64, nodeFeatureDim uint32) int64 {
	tiles := int64((nodeFeatureDim + 127) / 128)
	return peLatencyCycles * 128 * 2 * tiles * tiles
}

// Schedule enqueues cb on the lane that minimizes its own completion
// time, breaking ties toward the lowest lane index. A lane with nothing
// scheduled at or after now is idle and pays the full combine latency;
// a lane with work still pending overlaps the new call on top of its
// last scheduled completion, paying only the per-tile PE latency.
func (c *Combiner) Schedule(now int64, cb func()) {
	bestIdx := 0
	bestFinish := int64(math.MaxInt64)
	for i := range c.lanes {
		last := c.lanes[i].lastCycle(now)
		var finish int64
		if last <= now {
			finish = now + c.latency
		} else {
			finish = last + c.peLatency
		}
		if finish < bestFinish {
			bestFinish = finish
			bestIdx = i
		}
	}
	c.lanes[bestIdx].entries = append(c.lanes[bestIdx].entries, delayedCall{cycle: bestFinish, cb: cb})
}

func (c *Combiner) NextFiretime() (int64, bool) {
	best := int64(math.MaxInt64)
	found := false
	for i := range c.lanes {
		if ft, ok := c.lanes[i].nextFiretime(); ok && ft < best {
			best = ft
			found = true
		}
	}
	return best, found
}

func (c *Combiner) Drain(now int64) {
	for i := range c.lanes {
		c.lanes[i].drain(now)
	}
}
