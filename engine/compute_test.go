package engine

import "testing"

func TestAggregator_Schedule_SerializesOnePerLatencyInterval(t *testing.T) {
	a := NewAggregator(5)
	var fires []int64

	a.Schedule(0, func() { fires = append(fires, 1) })
	a.Schedule(0, func() { fires = append(fires, 2) }) // same cycle, must queue behind the first
	a.Schedule(0, func() { fires = append(fires, 3) })

	for cycle := int64(0); cycle <= 15; cycle++ {
		a.Drain(cycle)
	}
	if len(fires) != 3 {
		t.Fatalf("expected all 3 to eventually drain, got %d", len(fires))
	}
	if fires[0] != 1 || fires[1] != 2 || fires[2] != 3 {
		t.Fatalf("expected FIFO firing order 1,2,3; got %v", fires)
	}
}

func TestAggregator_Drain_DoesNotFireBeforeScheduledCycle(t *testing.T) {
	a := NewAggregator(10)
	fired := false
	a.Schedule(0, func() { fired = true })

	a.Drain(9)
	if fired {
		t.Fatal("should not fire before its scheduled cycle")
	}
	a.Drain(10)
	if !fired {
		t.Fatal("should fire once its scheduled cycle is reached")
	}
}

func TestCombiner_Schedule_PicksLeastLoadedLane(t *testing.T) {
	c := NewCombiner(2, 10, 2)
	var order []int

	c.Schedule(0, func() { order = append(order, 1) }) // lane 0 idle: finishes at 10
	c.Schedule(0, func() { order = append(order, 2) }) // lane 1 idle (less loaded than busy lane 0): finishes at 10
	c.Schedule(1, func() { order = append(order, 3) }) // both lanes busy now: lane 0 overlaps, finishes at 10+2=12

	for cycle := int64(0); cycle <= 25; cycle++ {
		c.Drain(cycle)
	}
	if len(order) != 3 {
		t.Fatalf("expected all 3 callbacks to fire, got %d", len(order))
	}
	if order[0] != 1 || order[1] != 2 || order[2] != 3 {
		t.Fatalf("expected firing order 1,2,3 (both idle lanes at cycle 10, then the overlapped lane at cycle 12); got %v", order)
	}
}

func TestCombiner_Schedule_IdleLanePaysFullCombineLatency(t *testing.T) {
	c := NewCombiner(1, 10, 2)
	c.Schedule(0, func() {})
	ft, ok := c.NextFiretime()
	if !ok || ft != 10 {
		t.Fatalf("idle lane should finish at now+combine_latency=10, got %d (ok=%v)", ft, ok)
	}
}

func TestCombiner_Schedule_BusyLaneOverlapsWithPELatencyOnly(t *testing.T) {
	c := NewCombiner(1, 10, 2)
	var finishCycles []int64

	c.Schedule(0, func() {}) // idle: finishes at 0+10=10
	c.Schedule(0, func() {}) // busy (lane's last=10 > now=0): overlaps, finishes at 10+2=12

	for cycle := int64(0); cycle <= 12; cycle++ {
		if ft, ok := c.NextFiretime(); ok && ft == cycle {
			finishCycles = append(finishCycles, cycle)
		}
		c.Drain(cycle)
	}
	if len(finishCycles) != 2 || finishCycles[0] != 10 || finishCycles[1] != 12 {
		t.Fatalf("expected finishes at cycles [10,12] (full latency then PE-latency-only overlap), got %v", finishCycles)
	}
}

func TestCombineLatencyCycles_ScalesWithTileCount(t *testing.T) {
	small := CombineLatencyCycles(1, 128)  // exactly 1 tile
	large := CombineLatencyCycles(1, 129)  // rolls over to 2 tiles
	if large <= small {
		t.Fatalf("expanding past a 128-wide tile boundary should increase latency: small=%d large=%d", small, large)
	}
	want := int64(1) * 128 * 2 * 1 * 1
	if small != want {
		t.Fatalf("CombineLatencyCycles(1,128) = %d, want %d", small, want)
	}
}
