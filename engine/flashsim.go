package engine

import (
	"fmt"
	"math"
)

// SSDRequestType distinguishes a flash-array transaction (which costs a
// scheduled number of cycles resolved through the event engine) from a
// channel transfer (which drains at a fixed byte rate per cycle).
type SSDRequestType int

const (
	ReqReadLocal SSDRequestType = iota
	ReqRead
	ReqWriteLocal
	ReqWrite
	ReqPull
	ReqPush
)

func (t SSDRequestType) isFlash() bool {
	return t == ReqReadLocal || t == ReqRead || t == ReqWriteLocal || t == ReqWrite
}

func (t SSDRequestType) isWrite() bool {
	return t == ReqWriteLocal || t == ReqWrite
}

// SSDRequest is a single flash or channel transaction. Completion is
// invoked exactly once, either synchronously (Bytes==0) or from a later
// Tick.
type SSDRequest struct {
	Type       SSDRequestType
	Addrs      []FlashAddress
	Bytes      uint32
	Completion func()
}

// ChipStats accumulates per-chip flash traffic for epoch reporting.
type ChipStats struct {
	ReadCount  uint64
	ReadBytes  uint64
	WriteCount uint64
	WriteBytes uint64
}

type channelTransfer struct {
	remaining    float64
	boardToChip  bool
	completion   func()
}

type channel struct {
	queue []channelTransfer
	busy  bool
}

// FlashSim is the flash + channel timing simulator (C3): it drives its
// own EventEngine for flash-transaction latency and a byte-rate drain
// loop per channel for PULL/PUSH transfers, grounded on
// ssd_wrapper.{hh,cpp}'s handle_req_flash/handle_req_channel and tick().
type FlashSim struct {
	Geo    DeviceGeometry
	engine *EventEngine

	channels  []channel
	chipStats [][]ChipStats // [channel][chip]
	traffic   []uint64      // per-channel epoch byte total
}

func NewFlashSim(geo DeviceGeometry) *FlashSim {
	chipStats := make([][]ChipStats, geo.Channels)
	for c := range chipStats {
		chipStats[c] = make([]ChipStats, geo.ChipsPerChannel)
	}
	return &FlashSim{
		Geo:       geo,
		engine:    NewEventEngine(),
		channels:  make([]channel, geo.Channels),
		chipStats: chipStats,
		traffic:   make([]uint64, geo.Channels),
	}
}

func (f *FlashSim) Cycle() int64 { return f.engine.SimTime() }

// SetCycle moves the clock forward to c without firing events, draining
// every non-busy channel by the bytes the skipped cycles carry, so that a
// skip costs a channel transfer the same bytes as stepping Tick by Tick.
func (f *FlashSim) SetCycle(c int64) {
	skipped := c - f.Cycle()
	f.engine.SetSimTime(c)
	if skipped > 0 {
		f.drainChannels(float64(skipped))
	}
}

// SetChannelBusy/SetChannelIdle toggle the lower-level per-transaction
// busy flag that pauses a channel's byte-rate drain, matching
// ssd_wrapper.cpp's channel_busy_callback/channel_idle_callback.
func (f *FlashSim) SetChannelBusy(chanID uint32)  { f.channels[chanID].busy = true }
func (f *FlashSim) SetChannelIdle(chanID uint32)  { f.channels[chanID].busy = false }

// SendReq validates every address, then dispatches to the flash-latency
// path or the channel byte-rate path. A zero-byte request completes
// synchronously — there is nothing to schedule.
func (f *FlashSim) SendReq(req SSDRequest) error {
	for _, a := range req.Addrs {
		if !f.Geo.CheckAddr(a) {
			return fmt.Errorf("flashsim: address %s out of range", a)
		}
	}
	if req.Bytes == 0 {
		req.Completion()
		return nil
	}
	if req.Type.isFlash() {
		f.sendFlashReq(req)
	} else {
		f.sendChannelReq(req)
	}
	return nil
}

func (f *FlashSim) sendFlashReq(req SSDRequest) {
	numPages := f.Geo.PagesForBytes(req.Bytes)
	perPage := f.Geo.PageReadLatencyCycles
	if req.Type.isWrite() {
		perPage = f.Geo.PageWriteLatencyCycles
	}
	latency := int64(numPages) * perPage
	if latency < 1 {
		latency = 1
	}
	addr := req.Addrs[0]
	st := &f.chipStats[addr.Channel][addr.Chip]
	if req.Type.isWrite() {
		st.WriteCount++
		st.WriteBytes += uint64(req.Bytes)
	} else {
		st.ReadCount++
		st.ReadBytes += uint64(req.Bytes)
	}
	if _, err := f.engine.RegisterEvent(f.Cycle()+latency, FuncTarget(req.Completion), nil, int(req.Type)); err != nil {
		// fireTime derived from the current clock can never precede it.
		panic(err)
	}
}

func (f *FlashSim) sendChannelReq(req SSDRequest) {
	chanID := req.Addrs[0].Channel
	ch := &f.channels[chanID]
	ch.queue = append(ch.queue, channelTransfer{
		remaining:   float64(req.Bytes),
		boardToChip: req.Type == ReqPush,
		completion:  req.Completion,
	})
}

// Tick advances the flash simulator by exactly one cycle: its own event
// engine fires any flash-transaction completions now due, and every
// non-busy channel's head-of-queue transfer drains by BytesPerCycle.
func (f *FlashSim) Tick() {
	next := f.Cycle() + 1
	f.engine.FireThrough(next)
	f.drainChannels(1)
}

func (f *FlashSim) drainChannels(cycles float64) {
	budget := cycles * f.Geo.BytesPerCycle
	for i := range f.channels {
		ch := &f.channels[i]
		if ch.busy {
			continue
		}
		remainingBudget := budget
		for remainingBudget > 0 && len(ch.queue) > 0 {
			head := &ch.queue[0]
			if head.remaining <= remainingBudget {
				remainingBudget -= head.remaining
				f.traffic[i] += uint64(head.remaining)
				head.remaining = 0
				cb := head.completion
				ch.queue = ch.queue[1:]
				cb()
			} else {
				head.remaining -= remainingBudget
				f.traffic[i] += uint64(remainingBudget)
				remainingBudget = 0
			}
		}
	}
}

// NextEventFiretime returns the earliest cycle at which something in the
// flash simulator will next need attention: a scheduled flash-transaction
// completion, or a channel transfer's projected drain time.
func (f *FlashSim) NextEventFiretime() int64 {
	best := f.engine.NextEventFiretimeOrMax()
	for i := range f.channels {
		ch := &f.channels[i]
		if ch.busy || len(ch.queue) == 0 {
			continue
		}
		latency := int64(math.Ceil(ch.queue[0].remaining / f.Geo.BytesPerCycle))
		if latency < 1 {
			latency = 1
		}
		if ft := f.Cycle() + latency; ft < best {
			best = ft
		}
	}
	return best
}

// Busy reports whether the flash simulator has any work outstanding.
func (f *FlashSim) Busy() bool {
	if !f.engine.IsEventTreeEmpty() {
		return true
	}
	for i := range f.channels {
		if len(f.channels[i].queue) > 0 {
			return true
		}
	}
	return false
}

// ChipStatsFor returns the accumulated stats for one chip.
func (f *FlashSim) ChipStatsFor(channel, chip uint32) ChipStats {
	return f.chipStats[channel][chip]
}

// ChannelTraffic returns the total bytes drained on a channel this epoch.
func (f *FlashSim) ChannelTraffic(channel uint32) uint64 { return f.traffic[channel] }

// ResetEpochStats zeroes per-epoch counters without disturbing in-flight
// transactions.
func (f *FlashSim) ResetEpochStats() {
	for c := range f.chipStats {
		for chip := range f.chipStats[c] {
			f.chipStats[c][chip] = ChipStats{}
		}
	}
	for i := range f.traffic {
		f.traffic[i] = 0
	}
}
