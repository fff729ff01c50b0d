// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package entswap implements chained entanglement swapping (spec §4.7.6): a
// longer-range EPR pair is purchased at the cost of several shorter,
// already-distributed hops. Every intermediate owner applies a Bell
// measurement to its local pair and sends the two outcome bits directly to
// the chain's last owner; the last owner XORs every middle owner's bits
// into a running flag pair and, once all of them have arrived, applies the
// corresponding X/Z correction to its own half.
package entswap

import (
	"github.com/luxfi/log"

	"github.com/luxfi/qns/internal/entity"
	"github.com/luxfi/qns/internal/proto/protoutil"
	"github.com/luxfi/qns/internal/qchannel"
	"github.com/luxfi/qns/internal/simkernel"
	"github.com/luxfi/qns/internal/tensor"
)

// SrcApp is an intermediate owner's side: it holds the two local halves of
// its hop pairs (q0 from its predecessor, q1 toward its successor) and
// reports its Bell measurement directly to the chain's last owner.
type SrcApp struct {
	protoutil.Lifecycle
	ent    *entity.Entity
	log    log.Logger
	conn   qchannel.Channel // this owner -> the chain's last owner
	q0, q1 string
	sock   *simkernel.Socket
}

// NewSrcApp returns a SrcApp for an intermediate owner measuring (q0, q1)
// and reporting the outcome across conn.
func NewSrcApp(ent *entity.Entity, conn qchannel.Channel, q0, q1 string, logger log.Logger) *SrcApp {
	if logger == nil {
		logger = log.NewNoOpLogger()
	}
	return &SrcApp{ent: ent, log: logger, conn: conn, q0: q0, q1: q1}
}

// StartApplication arms the report socket toward the last owner's receive
// port and immediately measures and sends.
func (a *SrcApp) StartApplication(net *simkernel.Network, dstAddr string, dstPort uint16) {
	a.Start()
	node, _ := a.ent.Node(a.conn.Src)
	a.sock = net.NewSocket(node.Address, node.NextPort(), nil)
	a.sock.Connect(dstAddr, dstPort)
	a.MeasureAndSend()
}

// MeasureAndSend is EntSwapSrcApp::MeasureAndSend: CNOT(q1, q0), H(q0),
// measure q0 then q1, discard both from the tensor network, and report
// "<z>.<x>" to the last owner.
func (a *SrcApp) MeasureAndSend() {
	owner := entity.User(a.conn.Src)
	a.ent.ApplyGate(owner, tensor.GateCNOT, nil, []string{a.q1, a.q0})
	a.ent.ApplyGate(owner, tensor.GateH, nil, []string{a.q0})

	outcome0, _, _ := a.ent.Measure(owner, a.q0)
	outcome1, _, _ := a.ent.Measure(owner, a.q1)
	a.ent.PartialTrace(owner, []string{a.q0, a.q1})

	a.log.Debug("ent-swap measured", "z", outcome0, "x", outcome1)
	a.sock.Send(protoutil.Join(protoutil.DigitString(outcome0), protoutil.DigitString(outcome1)))
}

// DstApp is the chain's last owner: it accumulates the XOR of every
// intermediate owner's correction bits and applies X/Z to its own qubit
// once all of them have arrived.
type DstApp struct {
	protoutil.Lifecycle
	ent    *entity.Entity
	log    log.Logger
	conn   qchannel.Channel
	qubit  string
	count  int
	flagX  bool
	flagZ  bool
	port   uint16
}

// NewDstApp returns a DstApp correcting qubit once count middle-owner
// reports have arrived, allocating its receive port from the destination
// node.
func NewDstApp(ent *entity.Entity, conn qchannel.Channel, qubit string, count int, logger log.Logger) *DstApp {
	if logger == nil {
		logger = log.NewNoOpLogger()
	}
	node, _ := ent.Node(conn.Dst)
	return &DstApp{ent: ent, log: logger, conn: conn, qubit: qubit, count: count, port: node.NextPort()}
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
	fields := protoutil.Split(payload, 2)
	a.flagZ = a.flagZ != (protoutil.Digit(fields[0]) == 1)
	a.flagX = a.flagX != (protoutil.Digit(fields[1]) == 1)
	a.count--
	if a.count > 0 {
		return
	}

	owner := entity.User(a.conn.Dst)
	xGate := tensor.GateI
	if a.flagX {
		xGate = tensor.GatePX
	}
	a.ent.ApplyGate(owner, xGate, nil, []string{a.qubit})

	zGate := tensor.GateI
	if a.flagZ {
		zGate = tensor.GatePZ
	}
	a.ent.ApplyGate(owner, zGate, nil, []string{a.qubit})
}
