// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package distill implements one-shot entanglement distillation (spec
// §4.7.3). Two EPR pairs — goal (gA, gB) and measurement (mA, mB) — are
// pre-established. The source disentangles its measurement qubit onto
// its goal qubit and measures it; the destination does the same and
// compares outcomes, replying "win" on a match and "lose" on a mismatch.
// Both sides only record the outcome: on a lose the goal pair is not
// traced out and stays live and owned as before.
package distill

import (
	"github.com/luxfi/log"

	"github.com/luxfi/qns/internal/entity"
	"github.com/luxfi/qns/internal/proto/protoutil"
	"github.com/luxfi/qns/internal/qchannel"
	"github.com/luxfi/qns/internal/simkernel"
	"github.com/luxfi/qns/internal/tensor"
)

// SrcApp is Alice's side of the distillation.
type SrcApp struct {
	protoutil.Lifecycle
	ent      *entity.Entity
	log      log.Logger
	conn     qchannel.Channel
	gA, mA   string
	sock     *simkernel.Socket
	win      bool
	winKnown bool
}

// NewSrcApp returns a SrcApp distilling goal pair (gA, _) using
// measurement pair (mA, _).
func NewSrcApp(ent *entity.Entity, conn qchannel.Channel, gA, mA string, logger log.Logger) *SrcApp {
	if logger == nil {
		logger = log.NewNoOpLogger()
	}
	return &SrcApp{ent: ent, log: logger, conn: conn, gA: gA, mA: mA}
}

// StartApplication arms the send socket toward the peer's receive port
// and reply-receive socket, then immediately distills.
func (a *SrcApp) StartApplication(net *simkernel.Network, dstAddr string, dstPort uint16) *DstReplyPort {
	a.Start()
	node, _ := a.ent.Node(a.conn.Src)
	replyPort := node.NextPort()
	net.Bind(node.Address, replyPort, a.handleReply)
	a.sock = net.NewSocket(node.Address, node.NextPort(), nil)
	a.sock.Connect(dstAddr, dstPort)
	a.distill()
	return &DstReplyPort{Addr: node.Address, Port: replyPort}
}

// DstReplyPort carries the address/port the destination's reply must
// target, handed back so the caller can wire DstApp's reply socket.
type DstReplyPort struct {
	Addr string
	Port uint16
}

func (a *SrcApp) distill() {
	a.ent.ApplyGate(entity.User(a.conn.Src), tensor.GateCNOT, nil, []string{a.mA, a.gA})
	outcome, _, _ := a.ent.Measure(entity.User(a.conn.Src), a.mA)
	a.log.Debug("distill measured", "outcome", outcome)
	a.sock.Send(protoutil.Join(protoutil.DigitString(outcome)))
}

func (a *SrcApp) handleReply(payload []byte) {
	switch string(payload) {
	case protoutil.Win:
		a.win, a.winKnown = true, true
	case protoutil.Lose:
		a.win, a.winKnown = false, true
	}
}

// Win reports the distillation outcome and whether it has arrived yet.
func (a *SrcApp) Win() (win, known bool) { return a.win, a.winKnown }

// DstApp is Bob's side of the distillation.
type DstApp struct {
	protoutil.Lifecycle
	ent    *entity.Entity
	log    log.Logger
	conn   qchannel.Channel
	gB, mB string
	sock   *simkernel.Socket
	port   uint16
	win    bool
}

// NewDstApp returns a DstApp distilling goal pair (_, gB) using
// measurement pair (_, mB).
func NewDstApp(ent *entity.Entity, conn qchannel.Channel, gB, mB string, logger log.Logger) *DstApp {
	if logger == nil {
		logger = log.NewNoOpLogger()
	}
	node, _ := ent.Node(conn.Dst)
	return &DstApp{ent: ent, log: logger, conn: conn, gB: gB, mB: mB, port: node.NextPort()}
}

// Port returns the allocated receive port.
func (a *DstApp) Port() uint16 { return a.port }

// StartApplication binds the receive socket and the reply send socket.
func (a *DstApp) StartApplication(net *simkernel.Network, reply DstReplyPort) {
	a.Start()
	node, _ := a.ent.Node(a.conn.Dst)
	net.Bind(node.Address, a.port, a.handleRead)
	a.sock = net.NewSocket(node.Address, node.NextPort(), nil)
	a.sock.Connect(reply.Addr, reply.Port)
}

func (a *DstApp) handleRead(payload []byte) {
	fields := protoutil.Split(payload, 1)
	outcomeA := protoutil.Digit(fields[0])

	a.ent.ApplyGate(entity.User(a.conn.Dst), tensor.GateCNOT, nil, []string{a.mB, a.gB})
	outcomeB, _, _ := a.ent.Measure(entity.User(a.conn.Dst), a.mB)

	if outcomeA == outcomeB {
		a.win = true
		a.sock.Send([]byte(protoutil.Win))
	} else {
		a.win = false
		a.sock.Send([]byte(protoutil.Lose))
	}
}

// Win reports the distillation outcome as seen by the destination.
func (a *DstApp) Win() bool { return a.win }
