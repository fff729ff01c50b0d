// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package distillnested implements recursive-halving distillation (spec
// §4.7.4): a list of 2^m pre-distributed EPR pairs is combined down to one
// surviving pair by recursively distilling the first half and second half
// of the list, then pairwise-distilling their two survivors together. Every
// leaf call (exactly 2 pairs) first distributes its own two EPR pairs
// before distilling them.
//
// A single source/destination app pair carries the whole recursion: every
// scheduled sub-step (EPR generation, pairwise combine) reuses the same
// sockets, sequenced by an "occupied time" counter that paces messages onto
// the shared channel.
package distillnested

import (
	"github.com/luxfi/log"

	"github.com/luxfi/qns/internal/entity"
	"github.com/luxfi/qns/internal/proto/epr"
	"github.com/luxfi/qns/internal/proto/protoutil"
	"github.com/luxfi/qns/internal/qchannel"
	"github.com/luxfi/qns/internal/simkernel"
	"github.com/luxfi/qns/internal/tensor"
)

// SrcApp is Alice's side of the recursive distillation.
type SrcApp struct {
	protoutil.Lifecycle
	ent      *entity.Entity
	kernel   simkernel.Kernel
	log      log.Logger
	conn     qchannel.Channel
	eprSrc   *epr.SrcApp
	sock     *simkernel.Socket
	occupied float64
	win      bool
}

// NewSrcApp returns a SrcApp ready to distillate over conn.
func NewSrcApp(ent *entity.Entity, net *simkernel.Network, kernel simkernel.Kernel, conn qchannel.Channel, logger log.Logger) *SrcApp {
	if logger == nil {
		logger = log.NewNoOpLogger()
	}
	return &SrcApp{
		ent: ent, kernel: kernel, log: logger, conn: conn,
		eprSrc: epr.NewSrcApp(ent, net, conn, logger),
	}
}

// ReplyPort carries the address/port a DstApp's combine replies must
// target.
type ReplyPort struct {
	Addr string
	Port uint16
}

// StartApplication arms the EPR sub-app toward eprDstPort and the combine
// socket toward nestedDstPort, then runs the full recursive schedule over
// srcQubits/dstQubits (len must be a power of two, >= 2). It returns the
// address/port a peer DstApp must target its combine replies at.
func (a *SrcApp) StartApplication(net *simkernel.Network, dstAddr string, eprDstPort, nestedDstPort uint16, srcQubits, dstQubits []string) ReplyPort {
	a.Start()
	a.eprSrc.StartApplication(dstAddr, eprDstPort)
	node, _ := a.ent.Node(a.conn.Src)
	replyPort := node.NextPort()
	net.Bind(node.Address, replyPort, a.handleReply)
	a.sock = net.NewSocket(node.Address, node.NextPort(), nil)
	a.sock.Connect(dstAddr, nestedDstPort)
	a.distillate(srcQubits, dstQubits)
	return ReplyPort{Addr: node.Address, Port: replyPort}
}

func (a *SrcApp) occupy(d float64) { a.occupied += d }

// distillate recursively halves (src, dst) down to leaf pairs, generating
// and distributing each leaf's EPR pairs, then combines the first half's
// survivor (index 0) with the second half's survivor (index len/2) via its
// own DistillateOnce — at every level of the recursion, not only the root.
func (a *SrcApp) distillate(srcQubits, dstQubits []string) {
	pairs := len(srcQubits)
	if pairs > 2 {
		half := pairs / 2
		a.distillate(srcQubits[:half], dstQubits[:half])
		a.distillate(srcQubits[half:], dstQubits[half:])
	} else {
		goalSrc, goalDst := srcQubits[0], dstQubits[0]
		measSrc, measDst := srcQubits[1], dstQubits[1]

		at := a.occupied
		a.kernel.Schedule(at, func() { a.eprSrc.GenerateAndDistribute(goalSrc, goalDst) })
		a.occupy(protoutil.NestedOccupyStep)

		at = a.occupied
		a.kernel.Schedule(at, func() { a.eprSrc.GenerateAndDistribute(measSrc, measDst) })
		a.occupy(protoutil.NestedOccupyStep)
	}

	goalSrc, goalDst := srcQubits[0], dstQubits[0]
	measSrc, measDst := srcQubits[len(srcQubits)/2], dstQubits[len(dstQubits)/2]
	at := a.occupied
	a.kernel.Schedule(at, func() { a.distillateOnce(goalSrc, measSrc, goalDst, measDst) })
	a.occupy(protoutil.NestedOccupyStep)
}

func (a *SrcApp) distillateOnce(goalSrc, measSrc, goalDst, measDst string) {
	a.ent.ApplyGate(entity.User(a.conn.Src), tensor.GateCNOT, nil, []string{measSrc, goalSrc})
	outcome, _, _ := a.ent.Measure(entity.User(a.conn.Src), measSrc)
	a.log.Debug("nested distill measured", "outcome", outcome, "goal", goalSrc, "meas", measSrc)
	a.sock.Send(protoutil.Join(protoutil.DigitString(outcome), goalDst, measDst))
}

func (a *SrcApp) handleReply(payload []byte) {
	switch string(payload) {
	case protoutil.Win:
		a.win = true
	case protoutil.Lose:
		a.win = false
	}
}

// Win reports the most recently completed combine's outcome. Since the
// root-level combine is scheduled after, and therefore fires after, every
// sub-combine beneath it, Win() settles to the root combine's result once
// the kernel has run to completion.
func (a *SrcApp) Win() bool { return a.win }

// DstApp is Bob's side of the recursive distillation.
type DstApp struct {
	protoutil.Lifecycle
	ent  *entity.Entity
	log  log.Logger
	conn qchannel.Channel
	sock *simkernel.Socket
	port uint16
	win  bool
}

// NewDstApp returns a DstApp, allocating its receive port from the
// destination node.
func NewDstApp(ent *entity.Entity, conn qchannel.Channel, logger log.Logger) *DstApp {
	if logger == nil {
		logger = log.NewNoOpLogger()
	}
	node, _ := ent.Node(conn.Dst)
	return &DstApp{ent: ent, log: logger, conn: conn, port: node.NextPort()}
}

// Port returns the allocated receive port.
func (a *DstApp) Port() uint16 { return a.port }

// StartApplication binds the receive socket and arms the reply socket
// toward the source's combine-listen address/port.
func (a *DstApp) StartApplication(net *simkernel.Network, reply ReplyPort) {
	a.Start()
	node, _ := a.ent.Node(a.conn.Dst)
	net.Bind(node.Address, a.port, a.handleRead)
	a.sock = net.NewSocket(node.Address, node.NextPort(), nil)
	a.sock.Connect(reply.Addr, reply.Port)
}

func (a *DstApp) handleRead(payload []byte) {
	fields := protoutil.Split(payload, 3)
	outcomeA := protoutil.Digit(fields[0])
	goalDst, measDst := fields[1], fields[2]

	a.ent.ApplyGate(entity.User(a.conn.Dst), tensor.GateCNOT, nil, []string{measDst, goalDst})
	outcomeB, _, _ := a.ent.Measure(entity.User(a.conn.Dst), measDst)

	if outcomeA == outcomeB {
		a.win = true
		a.sock.Send([]byte(protoutil.Win))
	} else {
		a.win = false
		a.sock.Send([]byte(protoutil.Lose))
	}
}

// Win reports the most recently completed combine's outcome as seen by the
// destination.
func (a *DstApp) Win() bool { return a.win }
