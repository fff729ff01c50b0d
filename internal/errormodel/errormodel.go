// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package errormodel implements the three noise channels the Physical
// Entity wires around its mutation methods: per-qubit time-dephasing,
// per-gate dephasing, and per-channel depolarization. Each is modeled as
// a mixed-unitary operation so the density-matrix representation stays
// closed — no branching of the simulation tree.
//
// Deep class inheritance (the original model's QuantumErrorModel base
// with TimeModel/DephaseModel/DepolarModel subclasses, each overriding a
// virtual ApplyErrorModel) is replaced with a single tagged-variant type
// and one apply method dispatching on Kind — no virtual table needed.
package errormodel

import (
	"fmt"
	"math"

	"github.com/luxfi/qns/internal/tensor"
)

// GateDuration is the system-wide constant gate duration (seconds) used
// by the per-gate dephasing model.
const GateDuration = 2e-4

// Kind tags which of the three channels a Model value is.
type Kind int

const (
	TimeDephase Kind = iota
	GateDephase
	ChannelDepolar
)

// Model is a tagged-variant error model. Exactly one of T, R, or F is
// meaningful, selected by Kind.
type Model struct {
	Kind Kind
	T    float64 // TimeDephase: dephase time-constant, T > 0
	R    float64 // GateDephase: rate
	F    float64 // ChannelDepolar: target fidelity
}

func NewTimeDephase(t float64) Model    { return Model{Kind: TimeDephase, T: t} }
func NewGateDephase(r float64) Model    { return Model{Kind: GateDephase, R: r} }
func NewChannelDepolar(f float64) Model { return Model{Kind: ChannelDepolar, F: f} }
func DefaultGateDephase() Model         { return NewGateDephase(1) }
func DefaultChannelDepolar() Model      { return NewChannelDepolar(0.95) }

// OperationApplier is the one engine capability every variant needs: the
// ability to apply a named mixed operation, preparing it on first use,
// to a set of qubits owned by the caller.
type OperationApplier interface {
	ApplyOperation(opName string, kraus []string, probs []float64, qubits []string) bool
}

// Apply dispatches on m.Kind. now and lastTouched implement the
// time-dephasing model's "duration since this qubit was last touched"
// bookkeeping; lastTouched is mutated in place for TimeDephase so the
// caller (the Physical Entity) doesn't need its own copy of the logic.
func (m Model) Apply(eng OperationApplier, qubits []string, now float64, lastTouched map[string]float64) {
	switch m.Kind {
	case TimeDephase:
		m.applyTimeDephase(eng, qubits, now, lastTouched)
	case GateDephase:
		m.applyGateDephase(eng, qubits)
	case ChannelDepolar:
		m.applyChannelDepolar(eng, qubits)
	default:
		panic(fmt.Sprintf("errormodel: unknown kind %d", m.Kind))
	}
}

func (m Model) applyTimeDephase(eng OperationApplier, qubits []string, now float64, lastTouched map[string]float64) {
	for _, q := range qubits {
		last, ok := lastTouched[q]
		if !ok {
			last = now
		}
		delta := now - last
		if delta < 0 {
			lastTouched[q] = now
			continue
		}
		if math.Abs(delta) < tensor.EPS {
			lastTouched[q] = now
			continue
		}
		p := (1 - math.Exp(-delta/m.T)) / 2
		name := fmt.Sprintf("%sTIME_DEPHASE_%.6f", tensor.ReservedPrefix, p)
		eng.ApplyOperation(name, []string{tensor.GateI, tensor.GatePZ}, []float64{1 - p, p}, []string{q})
		lastTouched[q] = now
	}
}

func (m Model) applyGateDephase(eng OperationApplier, qubits []string) {
	rate := m.R
	if rate == 0 {
		rate = 1
	}
	p := (1 - math.Exp(-GateDuration/rate)) / 2
	name := fmt.Sprintf("%sGATE_DEPHASE_%.6f", tensor.ReservedPrefix, p)
	eng.ApplyOperation(name, []string{tensor.GateI, tensor.GatePZ}, []float64{1 - p, p}, qubits)
}

func (m Model) applyChannelDepolar(eng OperationApplier, qubits []string) {
	f := m.F
	name := fmt.Sprintf("%sCHANNEL_DEPOLAR_%.6f", tensor.ReservedPrefix, f)
	eng.ApplyOperation(name,
		[]string{tensor.GateI, tensor.GatePX, tensor.GatePY, tensor.GatePZ},
		[]float64{f, (1 - f) / 3, (1 - f) / 3, (1 - f) / 3},
		qubits)
}
