// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package simkernel

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSendDeliversAfterLinkDelay(t *testing.T) {
	vc := NewVirtualClock(nil)
	vc.StopAt(100)
	link := NewLossyLink(1000, 2)
	net := NewNetwork(vc, link)

	var got []byte
	var deliveredAt float64
	net.Bind("bob", 9, func(p []byte) {
		got = p
		deliveredAt = vc.Now()
	})

	net.Send("bob", 9, []byte("q_src.q_dst"))
	vc.Run()

	require.Equal(t, []byte("q_src.q_dst"), got)
	require.Equal(t, float64(2), deliveredAt)
}

func TestSendToUnboundPortIsDropped(t *testing.T) {
	vc := NewVirtualClock(nil)
	vc.StopAt(100)
	net := NewNetwork(vc, NewLossyLink(1000, 1))

	require.NotPanics(t, func() {
		net.Send("nobody", 9, []byte("x"))
		vc.Run()
	})
}

func TestBindingSamePortTwicePanics(t *testing.T) {
	vc := NewVirtualClock(nil)
	net := NewNetwork(vc, NewLossyLink(1000, 1))
	net.Bind("alice", 9, func([]byte) {})
	require.Panics(t, func() { net.Bind("alice", 9, func([]byte) {}) })
}

func TestSocketConnectAndSendRoundTrip(t *testing.T) {
	vc := NewVirtualClock(nil)
	vc.StopAt(100)
	net := NewNetwork(vc, NewLossyLink(1000, 1))

	var received []byte
	bobSock := net.NewSocket("bob", 9, func(p []byte) { received = p })
	aliceSock := net.NewSocket("alice", 9, nil)
	aliceSock.Connect("bob", bobSock.LocalPort())

	aliceSock.Send([]byte("hello"))
	vc.Run()

	require.Equal(t, []byte("hello"), received)
}

func TestSendBeforeConnectPanics(t *testing.T) {
	vc := NewVirtualClock(nil)
	net := NewNetwork(vc, NewLossyLink(1000, 1))
	sock := net.NewSocket("alice", 9, nil)
	require.Panics(t, func() { sock.Send([]byte("x")) })
}
