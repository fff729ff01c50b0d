// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package epr implements EPR distribution (spec §4.7.1): the source
// generates a Bell pair owned by itself, hands the destination half off
// to the peer over the classical link, and the destination applies the
// channel's depolarization model on arrival.
package epr

import (
	"github.com/luxfi/log"

	"github.com/luxfi/qns/internal/entity"
	"github.com/luxfi/qns/internal/proto/protoutil"
	"github.com/luxfi/qns/internal/qchannel"
	"github.com/luxfi/qns/internal/simkernel"
)

// SrcApp generates and distributes an EPR pair to a peer Dst.
type SrcApp struct {
	protoutil.Lifecycle
	ent  *entity.Entity
	net  *simkernel.Network
	log  log.Logger
	conn qchannel.Channel
	sock *simkernel.Socket
}

// NewSrcApp returns a SrcApp distributing half of every pair it generates
// across conn.
func NewSrcApp(ent *entity.Entity, net *simkernel.Network, conn qchannel.Channel, logger log.Logger) *SrcApp {
	if logger == nil {
		logger = log.NewNoOpLogger()
	}
	return &SrcApp{ent: ent, net: net, conn: conn, log: logger}
}

// StartApplication arms the send socket toward the peer's allocated port,
// per spec.md §4.7's "socket pair" shared by every protocol.
func (a *SrcApp) StartApplication(dstAddr string, dstPort uint16) {
	a.Start()
	node, _ := a.ent.Node(a.conn.Src)
	a.sock = a.net.NewSocket(node.Address, node.NextPort(), nil)
	a.sock.Connect(dstAddr, dstPort)
}

// GenerateAndDistribute is DistributeEPRSrcProtocol::GenerateAndDistributeEPR:
// generates the Bell state owned by the channel's src, removes the
// destination qubit from src's memory, and sends "qSrc.qDst" to the peer.
func (a *SrcApp) GenerateAndDistribute(qSrc, qDst string) bool {
	if !a.Running() {
		return false
	}
	if !a.ent.GenerateBellPair(entity.User(a.conn.Src), qSrc, qDst) {
		return false
	}
	a.ent.DisownQubit(entity.User(a.conn.Src), qDst)
	a.log.Debug("distributing EPR half", "qSrc", qSrc, "qDst", qDst, "to", a.conn.Dst)
	a.sock.Send(protoutil.Join(qSrc, qDst))
	return true
}

// DstApp receives a distributed EPR half and adopts it.
type DstApp struct {
	protoutil.Lifecycle
	ent  *entity.Entity
	net  *simkernel.Network
	log  log.Logger
	conn qchannel.Channel
	port uint16
}

// NewDstApp returns a DstApp for conn, allocating its receive port from
// the destination node.
func NewDstApp(ent *entity.Entity, net *simkernel.Network, conn qchannel.Channel, logger log.Logger) *DstApp {
	if logger == nil {
		logger = log.NewNoOpLogger()
	}
	node, _ := ent.Node(conn.Dst)
	return &DstApp{ent: ent, net: net, conn: conn, log: logger, port: node.NextPort()}
}

// Port returns the allocated receive port, so a peer's SrcApp knows where
// to connect.
func (a *DstApp) Port() uint16 { return a.port }

// StartApplication binds the receive socket and arms the handler.
func (a *DstApp) StartApplication() {
	a.Start()
	node, _ := a.ent.Node(a.conn.Dst)
	a.net.Bind(node.Address, a.port, a.handleRead)
}

func (a *DstApp) handleRead(payload []byte) {
	if !a.Running() {
		return
	}
	fields := protoutil.Split(payload, 2)
	qSrc, qDst := fields[0], fields[1]

	a.ent.AdoptQubit(entity.User(a.conn.Dst), qDst)
	a.ent.ApplyChannelDepolar(a.conn.Src, a.conn.Dst, qDst)
	a.log.Debug("received EPR half", "qSrc", qSrc, "qDst", qDst)
}
