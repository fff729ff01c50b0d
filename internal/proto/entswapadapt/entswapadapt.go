// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package entswapadapt implements the coherent/adaptive variant of chained
// entanglement swapping (spec §4.7.7): instead of every middle owner
// measuring and broadcasting classical correction bits, every middle
// owner's Bell-basis information is coherently CNOT-ed into two running
// flag qubits (flag_x, flag_z); the intermediate qubits are then
// partial-traced away. A single controlled-X and controlled-Z, driven by
// the flag qubits, corrects the chain's last qubit at the end — deferring
// the measurement that the classical variant performs eagerly.
package entswapadapt

import (
	"github.com/luxfi/log"

	"github.com/luxfi/qns/internal/entity"
	"github.com/luxfi/qns/internal/proto/protoutil"
	"github.com/luxfi/qns/internal/simkernel"
	"github.com/luxfi/qns/internal/tensor"
)

// App runs the whole coherent chain in one place: qubitsFormer[rank] and
// qubitsLatter[rank] are the two local hop-halves held by the owner at
// that rank; index 0 is the chain's first owner (unused beyond being the
// root of the first hop) and the last index is the chain's last owner,
// whose qubitsFormer entry is the surviving long-range half corrected at
// the end.
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

// EntanglementSwapping is EntSwapAdaptApp::EntanglementSwapping: allocate
// two |0> flag ancillas, fold every middle owner's local Bell rotation
// coherently into them, discarding each middle owner's qubits as it goes,
// then apply the accumulated correction to the chain's last qubit.
func (a *App) EntanglementSwapping() {
	flagX := a.ent.NewAncillaName()
	flagZ := a.ent.NewAncillaName()
	a.ent.GeneratePureQubits(entity.System, []complex128{1, 0}, []string{flagX})
	a.ent.GeneratePureQubits(entity.System, []complex128{1, 0}, []string{flagZ})

	lastQubit := a.qubitsFormer[len(a.qubitsFormer)-1]

	for rank := 1; rank < len(a.qubitsFormer)-1; rank++ {
		former := a.qubitsFormer[rank]
		latter := a.qubitsLatter[rank]
		a.log.Debug("coherent ent-swap folding owner", "rank", rank, "former", former, "latter", latter)

		// local Bell rotation, as in the measured variant
		a.ent.ApplyGate(entity.System, tensor.GateCNOT, nil, []string{latter, former})
		a.ent.ApplyGate(entity.System, tensor.GateH, nil, []string{former})

		a.ent.ApplyGate(entity.System, tensor.GateCNOT, nil, []string{flagX, latter})
		a.ent.PartialTrace(entity.System, []string{latter})

		a.ent.ApplyGate(entity.System, tensor.GateCNOT, nil, []string{flagZ, former})
		a.ent.PartialTrace(entity.System, []string{former})
	}

	// The flag qubits are System-owned and the final corrections touch
	// them alongside the last owner's qubit in one call, so the whole
	// coherent fold runs as System rather than splitting ownership.
	a.ent.ApplyControlledOperation(entity.System, tensor.GatePX, tensor.GateCNOT, nil, []string{flagX}, []string{lastQubit})
	a.ent.PartialTrace(entity.System, []string{flagX})

	a.ent.ApplyControlledOperation(entity.System, tensor.GatePZ, tensor.GateCZ, nil, []string{flagZ}, []string{lastQubit})
	a.ent.PartialTrace(entity.System, []string{flagZ})

	a.ent.Contract("")
}
