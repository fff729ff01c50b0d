// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package simkernel implements the simulation kernel collaborator: a
// single-threaded, virtual-time discrete-event loop. Protocol applications
// never block — they arm callbacks with Schedule/ScheduleNow and return;
// the Kernel drives them in virtual-time order until Run's stop time.
package simkernel

import (
	"container/heap"

	"github.com/luxfi/log"

	"github.com/luxfi/qns/internal/qerr"
)

// Callback is a scheduled unit of work. args are opaque to the kernel; the
// caller closes over whatever it needs.
type Callback func()

// Kernel is the simulator-kernel collaborator spec.md's core consumes:
// now/schedule/schedule_now/stop_at/run/destroy.
type Kernel interface {
	Now() float64
	Schedule(delay float64, cb Callback)
	ScheduleNow(cb Callback)
	StopAt(t float64)
	Run()
	Destroy()
}

type event struct {
	at  float64
	seq uint64 // FIFO tie-break at equal virtual time
	cb  Callback
}

type eventHeap []*event

func (h eventHeap) Len() int { return len(h) }
func (h eventHeap) Less(i, j int) bool {
	if h[i].at != h[j].at {
		return h[i].at < h[j].at
	}
	return h[i].seq < h[j].seq
}
func (h eventHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *eventHeap) Push(x interface{}) { *h = append(*h, x.(*event)) }
func (h *eventHeap) Pop() interface{} {
	old := *h
	n := len(old)
	e := old[n-1]
	*h = old[:n-1]
	return e
}

// VirtualClock is the default Kernel: a heap-ordered event queue advancing
// a single float64 virtual-time counter. Not safe for concurrent use —
// protocols run cooperatively on the goroutine that calls Run.
type VirtualClock struct {
	log     log.Logger
	now     float64
	stopAt  float64
	nextSeq uint64
	events  eventHeap
	running bool
}

// NewVirtualClock returns a VirtualClock at time zero. A nil logger
// defaults to a no-op logger.
func NewVirtualClock(logger log.Logger) *VirtualClock {
	if logger == nil {
		logger = log.NewNoOpLogger()
	}
	vc := &VirtualClock{log: logger}
	heap.Init(&vc.events)
	return vc
}

func (vc *VirtualClock) Now() float64 { return vc.now }

// Schedule enqueues cb to run at now()+delay. delay must be >= 0; a
// negative delay is a programming error and panics via qerr.
func (vc *VirtualClock) Schedule(delay float64, cb Callback) {
	if delay < 0 {
		qerr.Panicf("simkernel: negative schedule delay %f", delay)
	}
	vc.push(vc.now+delay, cb)
}

// ScheduleNow enqueues cb to run at the current virtual time, after any
// already-queued same-time events (FIFO order).
func (vc *VirtualClock) ScheduleNow(cb Callback) {
	vc.push(vc.now, cb)
}

func (vc *VirtualClock) push(at float64, cb Callback) {
	vc.nextSeq++
	heap.Push(&vc.events, &event{at: at, seq: vc.nextSeq, cb: cb})
}

// StopAt sets the virtual time Run halts at. Events scheduled past this
// time are silently dropped, matching spec'd stop-time semantics.
func (vc *VirtualClock) StopAt(t float64) { vc.stopAt = t }

// Run drains the event queue in virtual-time order until it is empty or
// the next event's time exceeds stopAt. A Fatal taxonomy panic raised by a
// callback (via qerr.Panic/Panicf) is recovered here, logged at Error, and
// re-raised so the caller's test harness observes the failure — this is
// the simulation's single panic/recover boundary.
func (vc *VirtualClock) Run() {
	vc.running = true
	defer func() { vc.running = false }()

	for vc.events.Len() > 0 {
		next := vc.events[0]
		if next.at > vc.stopAt {
			vc.log.Debug("simkernel: dropping events past stop time", "stopAt", vc.stopAt, "pending", vc.events.Len())
			return
		}
		e := heap.Pop(&vc.events).(*event)
		vc.now = e.at
		vc.runOne(e.cb)
	}
}

func (vc *VirtualClock) runOne(cb Callback) {
	defer func() {
		if r := recover(); r != nil {
			if f, ok := r.(qerr.Fatal); ok {
				vc.log.Error("simkernel: fatal taxonomy class raised during callback", "err", f.Error(), "at", vc.now)
				panic(f)
			}
			panic(r)
		}
	}()
	cb()
}

// Destroy drops all pending events. The kernel instance is not reusable
// afterward.
func (vc *VirtualClock) Destroy() {
	vc.events = nil
	heap.Init(&vc.events)
}
