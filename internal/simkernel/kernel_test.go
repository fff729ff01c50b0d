// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package simkernel

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/luxfi/qns/internal/qerr"
)

func TestEventsFireInVirtualTimeOrder(t *testing.T) {
	vc := NewVirtualClock(nil)
	vc.StopAt(100)

	var order []string
	vc.Schedule(5, func() { order = append(order, "b") })
	vc.Schedule(1, func() { order = append(order, "a") })
	vc.Schedule(10, func() { order = append(order, "c") })

	vc.Run()
	require.Equal(t, []string{"a", "b", "c"}, order)
}

func TestSameTimeEventsFireFIFO(t *testing.T) {
	vc := NewVirtualClock(nil)
	vc.StopAt(10)

	var order []int
	vc.Schedule(1, func() { order = append(order, 1) })
	vc.Schedule(1, func() { order = append(order, 2) })
	vc.Schedule(1, func() { order = append(order, 3) })

	vc.Run()
	require.Equal(t, []int{1, 2, 3}, order)
}

func TestScheduleNowRunsAfterAlreadyQueuedSameTimeEvents(t *testing.T) {
	vc := NewVirtualClock(nil)
	vc.StopAt(10)

	var order []string
	vc.Schedule(0, func() {
		order = append(order, "first")
		vc.ScheduleNow(func() { order = append(order, "chained") })
	})
	vc.Schedule(0, func() { order = append(order, "second") })

	vc.Run()
	require.Equal(t, []string{"first", "second", "chained"}, order)
}

func TestEventsPastStopAtAreDropped(t *testing.T) {
	vc := NewVirtualClock(nil)
	vc.StopAt(5)

	ran := false
	vc.Schedule(1, func() {})
	vc.Schedule(10, func() { ran = true })

	vc.Run()
	require.False(t, ran)
}

func TestNowAdvancesAsEventsFire(t *testing.T) {
	vc := NewVirtualClock(nil)
	vc.StopAt(10)

	var seen []float64
	vc.Schedule(3, func() { seen = append(seen, vc.Now()) })
	vc.Schedule(7, func() { seen = append(seen, vc.Now()) })

	require.Equal(t, float64(0), vc.Now())
	vc.Run()
	require.Equal(t, []float64{3, 7}, seen)
}

func TestNegativeDelayPanics(t *testing.T) {
	vc := NewVirtualClock(nil)
	require.Panics(t, func() { vc.Schedule(-1, func() {}) })
}

func TestFatalPanicDuringCallbackPropagatesAfterRecover(t *testing.T) {
	vc := NewVirtualClock(nil)
	vc.StopAt(10)
	vc.Schedule(1, func() { qerr.Panicf("boom") })

	defer func() {
		r := recover()
		require.NotNil(t, r)
		_, ok := r.(qerr.Fatal)
		require.True(t, ok)
	}()
	vc.Run()
}

func TestDestroyClearsPendingEvents(t *testing.T) {
	vc := NewVirtualClock(nil)
	vc.StopAt(10)
	ran := false
	vc.Schedule(1, func() { ran = true })
	vc.Destroy()
	vc.Run()
	require.False(t, ran)
}
