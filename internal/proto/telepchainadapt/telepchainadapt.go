// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package telepchainadapt implements chained adaptive teleportation (spec
// §4.7.9): a single qubit state is relayed down a chain of owners, one
// teleportation hop at a time, without ever measuring a correction along
// the way. Every owner generates and distributes its own outbound EPR pair,
// applies the usual local Bell-basis rotation, and then coherently folds
// its predecessor's two now-spent qubits into its own — so the correction
// that would otherwise need a classical bit from every hop instead rides
// along inside the tensor network itself. Only the chain's last owner
// collapses anything, applying a single controlled-X/controlled-Z driven by
// its immediate predecessor's folded qubits.
//
// The same App type plays all three roles (first owner, relay, last owner);
// role is determined by which of predecessor/successor it has.
package telepchainadapt

import (
	"github.com/luxfi/log"

	"github.com/luxfi/qns/internal/entity"
	"github.com/luxfi/qns/internal/proto/epr"
	"github.com/luxfi/qns/internal/proto/protoutil"
	"github.com/luxfi/qns/internal/qchannel"
	"github.com/luxfi/qns/internal/simkernel"
	"github.com/luxfi/qns/internal/tensor"
)

// App is one owner's hop in the chain.
type App struct {
	protoutil.Lifecycle
	ent   *entity.Entity
	log   log.Logger
	owner string

	hasSuccessor   bool
	hasPredecessor bool

	eprSrc      *epr.SrcApp // nil when this is the last owner
	eprSrcQubit string      // this owner's half of its own outbound EPR pair
	eprDstQubit string      // the successor's half of that same pair

	input      []complex128 // non-nil only for the chain's first owner
	inputQubit string       // the name the first owner generates the input state under

	qubitRelay string // the "psi" qubit currently held (m_qubits.first)
	qubitOut   string // this owner's own outbound EPR half, once generated (m_qubits.second)
	predRelay  string // predecessor's relayed psi-qubit name, as received (m_qubits_pred.first)
	predOut    string // predecessor's outbound-EPR-half name, as received (m_qubits_pred.second)

	sock *simkernel.Socket
	port uint16

	output []complex128
}

// NewFirstOwnerApp returns the chain's originating hop: it generates the
// input state (if inputState is non-nil) under inputQubit, then
// teleports it onward using its own (eprSrcQubit, eprDstQubit) pair.
func NewFirstOwnerApp(ent *entity.Entity, net *simkernel.Network, conn qchannel.Channel, inputState []complex128, inputQubit, eprSrcQubit, eprDstQubit string, logger log.Logger) *App {
	if logger == nil {
		logger = log.NewNoOpLogger()
	}
	return &App{
		ent: ent, log: logger, owner: conn.Src,
		hasSuccessor: true, hasPredecessor: false,
		eprSrc: epr.NewSrcApp(ent, net, conn, logger),
		eprSrcQubit: eprSrcQubit, eprDstQubit: eprDstQubit,
		input: inputState, inputQubit: inputQubit,
	}
}

// NewRelayOwnerApp returns a middle hop: it receives its predecessor's
// relay, folds it in, and teleports onward using its own (eprSrcQubit,
// eprDstQubit) pair. conn.Src is this owner; conn.Dst is its successor.
func NewRelayOwnerApp(ent *entity.Entity, net *simkernel.Network, conn qchannel.Channel, eprSrcQubit, eprDstQubit string, logger log.Logger) *App {
	if logger == nil {
		logger = log.NewNoOpLogger()
	}
	node, _ := ent.Node(conn.Src)
	return &App{
		ent: ent, log: logger, owner: conn.Src,
		hasSuccessor: true, hasPredecessor: true,
		eprSrc: epr.NewSrcApp(ent, net, conn, logger),
		eprSrcQubit: eprSrcQubit, eprDstQubit: eprDstQubit,
		port: node.NextPort(),
	}
}

// NewLastOwnerApp returns the chain's final hop: it only ever receives,
// folding its predecessor's relay in with a final controlled correction
// instead of teleporting any further.
func NewLastOwnerApp(ent *entity.Entity, owner string, logger log.Logger) *App {
	if logger == nil {
		logger = log.NewNoOpLogger()
	}
	node, _ := ent.Node(owner)
	return &App{
		ent: ent, log: logger, owner: owner,
		hasSuccessor: false, hasPredecessor: true,
		port: node.NextPort(),
	}
}

// Port returns the allocated receive port. Only meaningful for relay/last
// owners (hasPredecessor).
func (a *App) Port() uint16 { return a.port }

// StartApplication binds the receive socket (if this owner has a
// predecessor), arms the send socket toward the successor's relay port and
// the EPR sub-app toward the successor's (separately allocated) EPR
// adoption port, and — for the chain's first owner only — kicks off the
// first teleportation hop.
func (a *App) StartApplication(net *simkernel.Network, succAddr string, succEprDstPort, succRelayPort uint16) {
	a.Start()
	node, _ := a.ent.Node(a.owner)

	if a.hasPredecessor {
		net.Bind(node.Address, a.port, a.handleRead)
	}
	if a.hasSuccessor {
		a.eprSrc.StartApplication(succAddr, succEprDstPort)
		a.sock = net.NewSocket(node.Address, node.NextPort(), nil)
		a.sock.Connect(succAddr, succRelayPort)
	}
	if !a.hasPredecessor {
		a.teleport()
	}
}

// teleport is TelepLinAdaptApp::Teleport: generate and distribute this
// owner's own outbound EPR pair, apply the local Bell-basis rotation, fold
// in the predecessor's spent qubits (if any), and relay onward.
func (a *App) teleport() {
	owner := entity.User(a.owner)

	if a.input != nil {
		a.ent.GeneratePureQubits(owner, a.input, []string{a.inputQubit})
		a.qubitRelay = a.inputQubit
	}

	a.eprSrc.GenerateAndDistribute(a.eprSrcQubit, a.eprDstQubit)
	a.qubitOut = a.eprSrcQubit

	a.ent.ApplyGate(owner, tensor.GateCNOT, nil, []string{a.qubitOut, a.qubitRelay})
	a.ent.ApplyGate(owner, tensor.GateH, nil, []string{a.qubitRelay})

	if a.hasPredecessor {
		// The predecessor's two now-spent qubits are folded in coherently
		// rather than measured; this crosses into the predecessor's
		// ownership, so it runs as entity.System.
		a.ent.ApplyGate(entity.System, tensor.GateCNOT, nil, []string{a.qubitOut, a.predOut})
		a.ent.PartialTrace(entity.System, []string{a.predOut})
		a.ent.ApplyGate(entity.System, tensor.GateCNOT, nil, []string{a.qubitRelay, a.predRelay})
		a.ent.PartialTrace(entity.System, []string{a.predRelay})
	}

	a.log.Debug("chained telep hop relayed", "owner", a.owner, "relay", a.qubitRelay, "out", a.qubitOut)
	a.sock.Send(protoutil.Join(a.qubitRelay, a.qubitOut, a.eprDstQubit))
}

func (a *App) handleRead(payload []byte) {
	fields := protoutil.Split(payload, 3)
	a.predRelay, a.predOut = fields[0], fields[1]
	a.qubitRelay = fields[2]

	if a.hasSuccessor {
		a.teleport()
		return
	}

	// Last owner: a single controlled-X/controlled-Z, driven by the
	// predecessor's folded qubits, finishes the chain.
	a.ent.ApplyControlledOperation(entity.System, tensor.GatePX, tensor.GateCNOT, nil, []string{a.predOut}, []string{a.qubitRelay})
	a.ent.PartialTrace(entity.System, []string{a.predOut})
	a.ent.ApplyControlledOperation(entity.System, tensor.GatePZ, tensor.GateCZ, nil, []string{a.predRelay}, []string{a.qubitRelay})
	a.ent.PartialTrace(entity.System, []string{a.predRelay})

	a.ent.Contract("ascend")
	a.output = a.ent.PeekDM([]string{a.qubitRelay})
}

// Output returns the final owner's peeked density matrix, settled once the
// chain has run to completion. Empty until then.
func (a *App) Output() []complex128 { return a.output }
