// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package entswapadaptlocal implements the nearest-neighbor-restricted
// adaptive variant of chained entanglement swapping (spec §4.7.8): like
// entswapadapt, correction information is carried coherently rather than
// measured and broadcast, but every step only ever touches a rank and its
// immediate next-rank neighbor — no operation reaches further than one hop,
// trading the other variant's two global flag qubits for a relay of local
// CNOTs that only the last two owners' controlled corrections escape.
package entswapadaptlocal

import (
	"github.com/luxfi/log"

	"github.com/luxfi/qns/internal/entity"
	"github.com/luxfi/qns/internal/proto/protoutil"
	"github.com/luxfi/qns/internal/simkernel"
	"github.com/luxfi/qns/internal/tensor"
)

// App runs the whole local-relay chain in one place: qubitsFormer[rank]
// and qubitsLatter[rank] are the two local hop-halves held by the owner
// at that rank.
type App struct {
	protoutil.Lifecycle
	ent          *entity.Entity
	kernel       simkernel.Kernel
	log          log.Logger
	qubitsFormer []string
	qubitsLatter []string
}

// NewApp returns an App for the chain described by qubitsFormer/
// qubitsLatter.
func NewApp(ent *entity.Entity, kernel simkernel.Kernel, qubitsFormer, qubitsLatter []string, logger log.Logger) *App {
	if logger == nil {
		logger = log.NewNoOpLogger()
	}
	return &App{ent: ent, kernel: kernel, log: logger, qubitsFormer: qubitsFormer, qubitsLatter: qubitsLatter}
}

// StartApplication schedules EntanglementSwapping to run immediately.
func (a *App) StartApplication() {
	a.Start()
	a.kernel.ScheduleNow(a.EntanglementSwapping)
}

// EntanglementSwapping is EntSwapAdaptLocalApp::EntanglementSwapping: every
// middle owner performs its local Bell rotation, then relays its half of
// the correction into its immediate successor's matching half (a strictly
// nearest-neighbor chain of CNOTs, discarding each rank's qubits as the
// relay passes through), and finally the second-to-last owner's
// accumulated halves drive a controlled-X/controlled-Z onto the last
// owner's qubit.
func (a *App) EntanglementSwapping() {
	owners := len(a.qubitsFormer)

	for rank := 1; rank < owners-1; rank++ {
		former := a.qubitsFormer[rank]
		latter := a.qubitsLatter[rank]
		a.ent.ApplyGate(entity.System, tensor.GateCNOT, nil, []string{latter, former})
		a.ent.ApplyGate(entity.System, tensor.GateH, nil, []string{former})
	}

	for rank := 1; rank < owners-2; rank++ {
		former := a.qubitsFormer[rank]
		latter := a.qubitsLatter[rank]
		formerNext := a.qubitsFormer[rank+1]
		latterNext := a.qubitsLatter[rank+1]

		a.ent.ApplyGate(entity.System, tensor.GateCNOT, nil, []string{latterNext, latter})
		a.ent.PartialTrace(entity.System, []string{latter})

		a.ent.ApplyGate(entity.System, tensor.GateCNOT, nil, []string{formerNext, former})
		a.ent.PartialTrace(entity.System, []string{former})
	}

	secondLast := owners - 2
	former := a.qubitsFormer[secondLast]
	latter := a.qubitsLatter[secondLast]
	lastQubit := a.qubitsFormer[owners-1]

	a.ent.ApplyControlledOperation(entity.System, tensor.GatePX, tensor.GateCNOT, nil, []string{latter}, []string{lastQubit})
	a.ent.PartialTrace(entity.System, []string{latter})

	a.ent.ApplyControlledOperation(entity.System, tensor.GatePZ, tensor.GateCZ, nil, []string{former}, []string{lastQubit})
	a.ent.PartialTrace(entity.System, []string{former})

	a.ent.Contract("")
}
