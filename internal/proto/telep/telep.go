// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package telep implements one-shot teleportation (spec §4.7.2): the
// source distributes an EPR pair, locally disentangles its half of the
// input state onto the Bell basis, measures both qubits, and ships the
// two correction bits; the destination applies the corresponding X/Z
// corrections to its half.
package telep

import (
	"github.com/luxfi/log"

	"github.com/luxfi/qns/internal/entity"
	"github.com/luxfi/qns/internal/proto/epr"
	"github.com/luxfi/qns/internal/proto/protoutil"
	"github.com/luxfi/qns/internal/qchannel"
	"github.com/luxfi/qns/internal/simkernel"
	"github.com/luxfi/qns/internal/tensor"
)

// SrcApp is Alice's side: qA0 is the qubit carrying the state to
// teleport (generated from Input if non-nil), qA1 is Alice's EPR half,
// qB is Bob's qubit name.
type SrcApp struct {
	protoutil.Lifecycle
	ent    *entity.Entity
	kernel simkernel.Kernel
	log    log.Logger
	conn   qchannel.Channel
	eprSrc *epr.SrcApp
	sock   *simkernel.Socket

	qA0, qA1, qB string
	input        []complex128 // nil if qA0 already exists
}

// NewSrcApp returns a SrcApp teleporting (qA0, qA1) to qB over conn. If
// input is non-nil, qA0 is generated from it at Teleport time; otherwise
// qA0 must already be live.
func NewSrcApp(ent *entity.Entity, net *simkernel.Network, kernel simkernel.Kernel, conn qchannel.Channel, qA0, qA1, qB string, input []complex128, logger log.Logger) *SrcApp {
	if logger == nil {
		logger = log.NewNoOpLogger()
	}
	return &SrcApp{
		ent: ent, kernel: kernel, log: logger, conn: conn,
		eprSrc: epr.NewSrcApp(ent, net, conn, logger),
		qA0: qA0, qA1: qA1, qB: qB, input: input,
	}
}

// StartApplication arms the EPR-distribution sub-app (targeting the
// peer's eprDstPort) and the correction-outcome send socket (targeting
// telepDstPort), then immediately runs Teleport — matching
// TelepSrcApp::StartApplication calling Teleport() synchronously at start
// time.
func (a *SrcApp) StartApplication(net *simkernel.Network, dstAddr string, eprDstPort, telepDstPort uint16) {
	a.Start()
	a.eprSrc.StartApplication(dstAddr, eprDstPort)
	node, _ := a.ent.Node(a.conn.Src)
	a.sock = net.NewSocket(node.Address, node.NextPort(), nil)
	a.sock.Connect(dstAddr, telepDstPort)
	a.Teleport()
}

// Teleport schedules the full one-shot protocol: generate (if needed),
// distribute, disentangle, and measure-and-send.
func (a *SrcApp) Teleport() {
	if a.input != nil {
		a.kernel.ScheduleNow(func() {
			a.ent.GeneratePureQubits(entity.User(a.conn.Src), a.input, []string{a.qA0})
		})
	}
	a.kernel.ScheduleNow(func() {
		a.eprSrc.GenerateAndDistribute(a.qA1, a.qB)
	})

	a.kernel.Schedule(protoutil.ClassicalDelay, func() {
		a.ent.ApplyGate(entity.User(a.conn.Src), tensor.GateCNOT, nil, []string{a.qA1, a.qA0})
	})
	a.kernel.Schedule(protoutil.ClassicalDelay, func() {
		a.ent.ApplyGate(entity.User(a.conn.Src), tensor.GateH, nil, []string{a.qA0})
	})
	a.kernel.Schedule(protoutil.ClassicalDelay, a.measureAndSend)
}

func (a *SrcApp) measureAndSend() {
	outcome0, _, _ := a.ent.Measure(entity.User(a.conn.Src), a.qA0)
	outcome1, _, _ := a.ent.Measure(entity.User(a.conn.Src), a.qA1)
	a.log.Debug("teleport measured", "z", outcome0, "x", outcome1)
	a.sock.Send(protoutil.Join(protoutil.DigitString(outcome0), protoutil.DigitString(outcome1)))
}

// DstApp is Bob's side: applies the X/Z corrections received from the
// source to its qubit.
type DstApp struct {
	protoutil.Lifecycle
	ent  *entity.Entity
	log  log.Logger
	conn qchannel.Channel
	qB   string
	port uint16
}

// NewDstApp returns a DstApp correcting qB, allocating its receive port
// from the destination node.
func NewDstApp(ent *entity.Entity, conn qchannel.Channel, qB string, logger log.Logger) *DstApp {
	if logger == nil {
		logger = log.NewNoOpLogger()
	}
	node, _ := ent.Node(conn.Dst)
	return &DstApp{ent: ent, log: logger, conn: conn, qB: qB, port: node.NextPort()}
}

// Port returns the allocated receive port.
func (a *DstApp) Port() uint16 { return a.port }

// StartApplication binds the receive socket.
func (a *DstApp) StartApplication(net *simkernel.Network) {
	a.Start()
	node, _ := a.ent.Node(a.conn.Dst)
	net.Bind(node.Address, a.port, a.handleRead)
}

func (a *DstApp) handleRead(payload []byte) {
	if !a.Running() {
		return
	}
	fields := protoutil.Split(payload, 2)
	zBit := protoutil.Digit(fields[0])
	xBit := protoutil.Digit(fields[1])

	xGate := tensor.GateI
	if xBit == 1 {
		xGate = tensor.GatePX
	}
	a.ent.ApplyGate(entity.User(a.conn.Dst), xGate, nil, []string{a.qB})

	zGate := tensor.GateI
	if zBit == 1 {
		zGate = tensor.GatePZ
	}
	a.ent.ApplyGate(entity.User(a.conn.Dst), zGate, nil, []string{a.qB})
}
