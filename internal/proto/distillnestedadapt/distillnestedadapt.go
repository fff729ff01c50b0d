// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package distillnestedadapt implements nested distillation with adaptation
// (spec §4.7.5): the same recursive-halving combine structure as
// distillnested, but every pairwise combine is folded coherently into a
// running "win" flag instead of being measured and reported classically.
// The flag starts at |1> (won) and is AND-accumulated downward — a level's
// combine can only ever turn a won flag into a lost one, never the reverse —
// so the flag survives as 1 only if every recursive level's combine
// succeeds. Because the fold is coherent, Alice's app schedules operations
// on both her own and Bob's qubits directly; there is no classical
// round-trip and Bob's side has nothing of its own to run.
package distillnestedadapt

import (
	"github.com/luxfi/log"

	"github.com/luxfi/qns/internal/entity"
	"github.com/luxfi/qns/internal/proto/epr"
	"github.com/luxfi/qns/internal/proto/protoutil"
	"github.com/luxfi/qns/internal/qchannel"
	"github.com/luxfi/qns/internal/simkernel"
	"github.com/luxfi/qns/internal/tensor"
)

// SrcApp carries the whole coherent recursion: Alice's side schedules every
// sub-step, including the operations that touch Bob's half of each pair.
type SrcApp struct {
	protoutil.Lifecycle
	ent       *entity.Entity
	kernel    simkernel.Kernel
	log       log.Logger
	conn      qchannel.Channel
	eprSrc    *epr.SrcApp
	flagQubit string
	occupied  float64
	srcQubits []string
	dstQubits []string
	fidelity  float64
	win       bool
	winProb   float64
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

// StartApplication arms the EPR sub-app toward eprDstPort, allocates the
// |1>-initialized win flag, and runs the full recursive schedule over
// srcQubits/dstQubits (len must be a power of two, >= 2).
func (a *SrcApp) StartApplication(dstAddr string, eprDstPort uint16, srcQubits, dstQubits []string) {
	a.Start()
	a.eprSrc.StartApplication(dstAddr, eprDstPort)

	a.srcQubits = srcQubits
	a.dstQubits = dstQubits
	a.flagQubit = a.ent.NewAncillaName()
	a.ent.GeneratePureQubits(entity.User(a.conn.Src), []complex128{0, 1}, []string{a.flagQubit})

	a.distillate(srcQubits, dstQubits)
}

func (a *SrcApp) occupy(d float64) { a.occupied += d }

// distillate recursively halves (src, dst) down to leaf pairs, then folds
// the first half's survivor (index 0) and the second half's survivor
// (index len/2) together via its own DistillateOnce — at every level of the
// recursion, not only the root. Unlike distillnested, only DistillateOnce's
// own leaf-level EPR-generation steps advance the occupied-time counter;
// recursing and scheduling the combine itself do not.
func (a *SrcApp) distillate(srcQubits, dstQubits []string) {
	pairs := len(srcQubits)
	if pairs > 2 {
		half := pairs / 2
		a.distillate(srcQubits[:half], dstQubits[:half])
		a.distillate(srcQubits[half:], dstQubits[half:])
	}

	goalSrc, goalDst := srcQubits[0], dstQubits[0]
	measSrc, measDst := srcQubits[len(srcQubits)/2], dstQubits[len(dstQubits)/2]
	at := a.occupied
	a.kernel.Schedule(at, func() { a.distillateOnce(srcQubits, goalSrc, measSrc, goalDst, measDst) })
}

// distillateOnce is DistillNestedAdaptApp::DistillateOnce: at a leaf
// (exactly 2 pairs) it first generates and distributes both EPR pairs it
// combines; at every level it then coherently folds the meas pair's parity
// into the running win flag and discards the meas pair, never measuring
// anything. Only the outermost call (the one spanning the whole original
// qubit list) performs the final contract/measure/fidelity report.
func (a *SrcApp) distillateOnce(srcQubits []string, goalSrc, measSrc, goalDst, measDst string) {
	if len(srcQubits) == 2 {
		a.eprSrc.GenerateAndDistribute(goalSrc, goalDst)
		a.occupy(protoutil.NestedOccupyStep)
		a.eprSrc.GenerateAndDistribute(measSrc, measDst)
		a.occupy(protoutil.NestedOccupyStep)
	}

	aliceOwner := entity.User(a.conn.Src)
	bobOwner := entity.User(a.conn.Dst)

	a.ent.ApplyGate(aliceOwner, tensor.GateCNOT, nil, []string{measSrc, goalSrc})
	a.ent.ApplyGate(bobOwner, tensor.GateCNOT, nil, []string{measDst, goalDst})

	// Coherent parity check: fold Alice's meas qubit into Bob's, then
	// negate so that 1 (not 0) means "parities agreed".
	a.ent.ApplyGate(entity.System, tensor.GateCNOT, nil, []string{measDst, measSrc})
	a.ent.PartialTrace(entity.System, []string{measSrc})
	a.ent.ApplyGate(entity.System, tensor.GatePX, nil, []string{measDst})

	anc := a.ent.NewAncillaName()
	a.ent.GeneratePureQubits(entity.User(a.conn.Src), []complex128{1, 0}, []string{anc})
	a.ent.ApplyGate(entity.System, tensor.GateTOFF, nil, []string{anc, measDst, a.flagQubit})
	a.ent.PartialTrace(entity.System, []string{measDst})
	a.ent.ApplyGate(entity.System, tensor.GateSWAP, nil, []string{anc, a.flagQubit})
	a.ent.PartialTrace(entity.System, []string{anc})

	if len(srcQubits) != len(a.srcQubits) {
		return
	}

	a.ent.Contract("distill")
	outcome, probs, _ := a.ent.Measure(entity.User(a.conn.Src), a.flagQubit)
	a.win = outcome == 1
	a.winProb = probs[1]
	a.log.Debug("nested adaptive distill settled", "win", a.win, "goal", goalSrc)
	a.ent.PeekDM([]string{goalSrc, goalDst})
	a.fidelity = a.ent.CalculateFidelity(goalSrc, goalDst)
}

// Win reports the flag's measured outcome once the recursion has run to
// completion.
func (a *SrcApp) Win() bool { return a.win }

// Fidelity reports the final surviving pair's fidelity, settled alongside
// Win.
func (a *SrcApp) Fidelity() float64 { return a.fidelity }

// WinProbability reports the flag qubit's pre-measurement probability of
// collapsing to win (outcome 1), settled alongside Win. Unlike Win and
// Fidelity, this is deterministic given the channel model and qubit
// count — it does not depend on the measurement's random outcome.
func (a *SrcApp) WinProbability() float64 { return a.winProb }
