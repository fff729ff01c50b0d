// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package simkernel

import (
	"fmt"

	"github.com/luxfi/qns/internal/qerr"
)

// Network is the simulated classical fabric protocols exchange packets
// over: a registry of (address, port) receive callbacks, with delivery
// scheduled through the Kernel after the Link's configured delay. Every
// protocol pair shares one socket pair per spec.md §4.7 ("one receive on
// the owner's allocated port, one send to the peer's next port").
type Network struct {
	kernel Kernel
	link   Link
	ports  map[portKey]func([]byte)
}

type portKey struct {
	addr string
	port uint16
}

// NewNetwork returns a Network driven by kernel for scheduling and link
// for transit delay.
func NewNetwork(kernel Kernel, link Link) *Network {
	return &Network{kernel: kernel, link: link, ports: make(map[portKey]func([]byte))}
}

// Bind registers onRecv as the receive callback for (addr, port). Binding
// an already-bound port is a programming error.
func (n *Network) Bind(addr string, port uint16, onRecv func([]byte)) {
	key := portKey{addr, port}
	if _, exists := n.ports[key]; exists {
		qerr.Panicf("simkernel: port already bound: %s:%d", addr, port)
	}
	n.ports[key] = onRecv
}

// Send schedules payload for delivery to (dstAddr, dstPort) after the
// link's transit delay. Delivery to an unbound port is silently dropped,
// matching the kernel's "events past stop time are dropped" spirit for an
// application that has already torn down.
func (n *Network) Send(dstAddr string, dstPort uint16, payload []byte) {
	delay := n.link.Send(payload)
	n.kernel.Schedule(delay, func() {
		cb, ok := n.ports[portKey{dstAddr, dstPort}]
		if !ok {
			return
		}
		cb(payload)
	})
}

// Socket is a bound (local addr, local port) endpoint with an optional
// connected peer, mirroring the "socket pair" spec.md's protocols share.
type Socket struct {
	net       *Network
	localAddr string
	localPort uint16
	peerAddr  string
	peerPort  uint16
}

// NewSocket binds a Socket to (localAddr, localPort) on net. onRecv is
// invoked with each delivered payload; pass nil to bind a send-only
// socket.
func (n *Network) NewSocket(localAddr string, localPort uint16, onRecv func([]byte)) *Socket {
	s := &Socket{net: n, localAddr: localAddr, localPort: localPort}
	if onRecv != nil {
		n.Bind(localAddr, localPort, onRecv)
	}
	return s
}

// Connect records the peer this socket's future Send calls target.
func (s *Socket) Connect(peerAddr string, peerPort uint16) {
	s.peerAddr, s.peerPort = peerAddr, peerPort
}

// Send transmits payload to the connected peer. Calling Send before
// Connect is a programming error.
func (s *Socket) Send(payload []byte) {
	if s.peerAddr == "" {
		qerr.Panic(fmt.Errorf("simkernel: socket %s:%d sent before connect", s.localAddr, s.localPort))
	}
	s.net.Send(s.peerAddr, s.peerPort, payload)
}

// LocalAddr and LocalPort report this socket's bound endpoint.
func (s *Socket) LocalAddr() string  { return s.localAddr }
func (s *Socket) LocalPort() uint16  { return s.localPort }
