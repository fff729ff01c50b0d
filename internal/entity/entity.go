// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package entity implements the Physical Entity: the access-controlled
// aggregator that owns the Quantum State Engine plus every owner's Node,
// the per-channel depolarization bindings, and the qubit/node/gate error
// model tables. Every mutating method enforces ownership before it
// touches the engine, and wires in the correct error model around the
// call — protocols never talk to the engine directly.
package entity

import (
	"fmt"

	"github.com/luxfi/log"

	"github.com/luxfi/qns/internal/errormodel"
	"github.com/luxfi/qns/internal/qchannel"
	"github.com/luxfi/qns/internal/qengine"
	"github.com/luxfi/qns/internal/qnode"
	"github.com/luxfi/qns/internal/qrandom"
	"github.com/luxfi/qns/internal/telemetry"
	"github.com/luxfi/qns/internal/tensor"
)

// Clock is the one simulator-kernel capability the entity needs: the
// current virtual time, for the time-dephasing model's duration
// bookkeeping.
type Clock interface {
	Now() float64
}

// Entity is the Physical Entity.
type Entity struct {
	clock  Clock
	engine  *qengine.Engine
	rng     *qrandom.Stream
	log     log.Logger
	metrics *telemetry.Metrics

	nodes      map[string]*qnode.Node
	qubitOwner map[string]string // "" for System-generated, unowned qubits

	lastTouched map[string]float64

	qubitDephase map[string]errormodel.Model
	nodeDephase  map[string]errormodel.Model
	gateDephase  map[string]errormodel.Model // key: owner + "|" + gateName
	chanDepolar  map[qchannel.Channel]errormodel.Model

	ancillaCounter int
}

// New returns an empty Physical Entity wired to clock for timestamps and
// seed for its deterministic measurement random stream. A nil
// logger defaults to a no-op logger.
func New(clock Clock, seed []byte, logger log.Logger) *Entity {
	if logger == nil {
		logger = log.NewNoOpLogger()
	}
	store := tensor.NewStore(logger)
	return &Entity{
		clock:        clock,
		engine:       qengine.New(store, nil, logger),
		rng:          qrandom.New(seed),
		log:          logger,
		nodes:        make(map[string]*qnode.Node),
		qubitOwner:   make(map[string]string),
		lastTouched:  make(map[string]float64),
		qubitDephase: make(map[string]errormodel.Model),
		nodeDephase:  make(map[string]errormodel.Model),
		gateDephase:  make(map[string]errormodel.Model),
		chanDepolar:  make(map[qchannel.Channel]errormodel.Model),
	}
}

// Engine exposes the underlying engine for read-only reporting calls
// (PeekDM, CalculateFidelity, Contract) that spec.md does not gate behind
// ownership.
func (e *Entity) Engine() *qengine.Engine { return e.engine }

// SetMetrics attaches a telemetry.Metrics instance; subsequent operations
// report to it. A nil entity metrics field (the default) is a no-op, so
// attaching metrics is optional and test entities need not pay for it.
func (e *Entity) SetMetrics(m *telemetry.Metrics) { e.metrics = m }

// NewAncillaName allocates an ancilla qubit name that is unique within
// this entity, from a counter on the entity rather than a package-global
// one. The name carries no entity identifier, so two Entities hand out
// the same sequence of names; each Entity has its own engine.
func (e *Entity) NewAncillaName() string {
	e.ancillaCounter++
	return fmt.Sprintf("%s_%d", tensor.AncillaPrefix, e.ancillaCounter)
}

// AddOwner registers a fresh Node for owner, with an empty memory and a
// port allocator starting at 9.
func (e *Entity) AddOwner(owner string) *qnode.Node {
	n := qnode.New(owner)
	e.nodes[owner] = n
	return n
}

// Node returns the Node registered for owner.
func (e *Entity) Node(owner string) (*qnode.Node, bool) {
	n, ok := e.nodes[owner]
	return n, ok
}

func gateDephaseKey(owner, gateName string) string { return owner + "|" + gateName }

// SetQubitTimeDephase binds an explicit time-dephasing model to qubit,
// overriding whatever its owning node's default would otherwise supply.
func (e *Entity) SetQubitTimeDephase(qubit string, m errormodel.Model) {
	e.qubitDephase[qubit] = m
}

// SetNodeTimeDephase binds a default time-dephasing model for owner,
// inherited by qubits it generates that have no explicit per-qubit
// binding.
func (e *Entity) SetNodeTimeDephase(owner string, m errormodel.Model) {
	e.nodeDephase[owner] = m
}

// SetGateDephase binds a per-gate dephasing model for (owner, gateName).
func (e *Entity) SetGateDephase(owner, gateName string, m errormodel.Model) {
	e.gateDephase[gateDephaseKey(owner, gateName)] = m
}

// SetChannelDepolar implements qchannel.Channel.SetDepolarModel's
// collaborator interface, recording an (src,dst) -> fidelity binding.
func (e *Entity) SetChannelDepolar(ch qchannel.Channel, fidelity float64) {
	e.chanDepolar[ch] = errormodel.NewChannelDepolar(fidelity)
}

func (e *Entity) ownsAll(actor Actor, qubits []string) bool {
	if actor.IsSystem() {
		return true
	}
	for _, q := range qubits {
		if e.qubitOwner[q] != actor.Name() {
			return false
		}
	}
	return true
}

func (e *Entity) applyTimeDephase(qubits []string, now float64) {
	for _, q := range qubits {
		m, ok := e.qubitDephase[q]
		if !ok {
			continue
		}
		m.Apply(e.engine, []string{q}, now, e.lastTouched)
	}
}

func (e *Entity) applyGateDephase(actor Actor, gateName string, qubits []string) {
	for _, q := range qubits {
		m, ok := e.gateDephase[gateDephaseKey(actor.Name(), gateName)]
		if !ok {
			m = errormodel.DefaultGateDephase()
		}
		m.Apply(e.engine, []string{q}, 0, nil)
	}
}

func (e *Entity) bindGenerated(actor Actor, qubitNames []string) {
	now := e.clock.Now()
	for _, q := range qubitNames {
		e.lastTouched[q] = now
		if actor.IsSystem() {
			continue
		}
		node, ok := e.nodes[actor.Name()]
		if !ok {
			continue
		}
		node.Memory.Add(q)
		e.qubitOwner[q] = actor.Name()
		if _, bound := e.qubitDephase[q]; !bound {
			if m, ok2 := e.nodeDephase[actor.Name()]; ok2 {
				e.qubitDephase[q] = m
			}
		}
	}
}

// GeneratePureQubits generates a pure state and binds the new qubits into
// actor's node memory (unless actor is System, in which case the qubits
// are unowned internal bookkeeping ancillas). Returns false if actor
// names an unregistered owner.
func (e *Entity) GeneratePureQubits(actor Actor, stateVector []complex128, qubitNames []string) bool {
	if !actor.IsSystem() {
		if _, ok := e.nodes[actor.Name()]; !ok {
			e.log.Warn("generate-pure: unknown owner", "owner", actor.Name())
			return false
		}
	}
	e.engine.GeneratePureQubits(actor.String(), stateVector, qubitNames)
	e.bindGenerated(actor, qubitNames)
	if e.metrics != nil {
		e.metrics.QubitsGenerated(len(qubitNames))
	}
	return true
}

// GenerateMixedQubits is GeneratePureQubits' mixed-state counterpart.
func (e *Entity) GenerateMixedQubits(actor Actor, densityMatrix []complex128, qubitNames []string) bool {
	if !actor.IsSystem() {
		if _, ok := e.nodes[actor.Name()]; !ok {
			e.log.Warn("generate-mixed: unknown owner", "owner", actor.Name())
			return false
		}
	}
	e.engine.GenerateMixedQubits(actor.String(), densityMatrix, qubitNames)
	e.bindGenerated(actor, qubitNames)
	if e.metrics != nil {
		e.metrics.QubitsGenerated(len(qubitNames))
	}
	return true
}

// GenerateBellPair is sugar for generating the canonical |Φ+⟩ state on
// (qSrc, qDst), the core step of EPR distribution.
func (e *Entity) GenerateBellPair(actor Actor, qSrc, qDst string) bool {
	return e.GeneratePureQubits(actor, qengine.BellPhiPlus, []string{qSrc, qDst})
}

// DisownQubit removes qubit from owner's memory without touching the
// engine's underlying quantum state — the step a source app performs
// after handing off one half of a distributed EPR pair. Returns false if
// owner is unknown or did not have qubit in memory.
func (e *Entity) DisownQubit(owner Actor, qubit string) bool {
	node, ok := e.nodes[owner.Name()]
	if !ok {
		return false
	}
	if !node.Memory.Remove(qubit) {
		return false
	}
	delete(e.qubitOwner, qubit)
	return true
}

// AdoptQubit adds qubit to owner's memory and binds ownership — the step
// a destination app performs on receiving a distributed EPR half.
// Returns false if owner is unknown.
func (e *Entity) AdoptQubit(owner Actor, qubit string) bool {
	node, ok := e.nodes[owner.Name()]
	if !ok {
		return false
	}
	node.Memory.Add(qubit)
	e.qubitOwner[qubit] = owner.Name()
	return true
}

// ApplyChannelDepolar applies the (src,dst) channel's depolarization
// model (default F=0.95 if unbound) to qubit — the step EPR distribution
// performs on the destination qubit after receiving it.
func (e *Entity) ApplyChannelDepolar(src, dst, qubit string) {
	ch := qchannel.New(src, dst)
	m, ok := e.chanDepolar[ch]
	if !ok {
		m = errormodel.DefaultChannelDepolar()
	}
	m.Apply(e.engine, []string{qubit}, 0, nil)
}

// ApplyGate enforces ownership, applies pending time-dephasing to the
// affected qubits, calls the engine, then applies per-gate dephasing.
func (e *Entity) ApplyGate(actor Actor, gateName string, data []complex128, qubitNames []string) bool {
	if !e.ownsAll(actor, qubitNames) {
		e.log.Warn("access denied: gate", "actor", actor.String(), "gate", gateName, "qubits", qubitNames)
		return false
	}
	now := e.clock.Now()
	e.applyTimeDephase(qubitNames, now)
	if !e.engine.ApplyGate(actor.String(), gateName, data, qubitNames) {
		return false
	}
	e.applyGateDephase(actor, gateName, qubitNames)
	for _, q := range qubitNames {
		e.lastTouched[q] = now
	}
	if e.metrics != nil {
		e.metrics.GateApplied()
	}
	return true
}

// ApplyControlledOperation mirrors ApplyGate's access control around the
// engine's deferred-measurement-principle gate reduction.
func (e *Entity) ApplyControlledOperation(actor Actor, originalGateName, implementingGateName string, data []complex128, controlQubits, targetQubits []string) bool {
	all := append(append([]string{}, controlQubits...), targetQubits...)
	if !e.ownsAll(actor, all) {
		e.log.Warn("access denied: controlled-operation", "actor", actor.String())
		return false
	}
	ok := e.engine.ApplyControlledOperation(actor.String(), originalGateName, implementingGateName, data, controlQubits, targetQubits)
	if ok && e.metrics != nil {
		e.metrics.GateApplied()
	}
	return ok
}

// ApplyOperation enforces ownership over a mixed-unitary (Kraus) channel
// and reports it to telemetry distinctly from a unitary gate.
func (e *Entity) ApplyOperation(actor Actor, opName string, krausNames []string, probs []float64, qubitNames []string) bool {
	if !e.ownsAll(actor, qubitNames) {
		e.log.Warn("access denied: operation", "actor", actor.String(), "op", opName, "qubits", qubitNames)
		return false
	}
	ok := e.engine.ApplyOperation(opName, krausNames, probs, qubitNames)
	if ok && e.metrics != nil {
		e.metrics.OperationApplied()
	}
	return ok
}

// Measure enforces ownership, applies time-dephasing to every live
// qubit (not just the measured one — spec-mandated), then samples.
func (e *Entity) Measure(actor Actor, qubit string) (outcome int, probs [2]float64, ok bool) {
	if !e.ownsAll(actor, []string{qubit}) {
		e.log.Warn("access denied: measure", "actor", actor.String(), "qubit", qubit)
		return 0, [2]float64{}, false
	}
	now := e.clock.Now()
	e.applyTimeDephase(e.engine.LiveQubits(), now)
	outcome, probs = e.engine.Measure(qubit, e.rng)
	e.lastTouched[qubit] = now
	if e.metrics != nil {
		e.metrics.MeasurementPerformed()
	}
	return outcome, probs, true
}

// PartialTrace enforces ownership, removes each qubit from its owning
// node's memory and the ownership table, and traces it out of the engine.
func (e *Entity) PartialTrace(actor Actor, qubitNames []string) bool {
	if !e.ownsAll(actor, qubitNames) {
		e.log.Warn("access denied: partial-trace", "actor", actor.String(), "qubits", qubitNames)
		return false
	}
	e.engine.PartialTrace(qubitNames)
	for _, q := range qubitNames {
		owner := e.qubitOwner[q]
		if node, ok := e.nodes[owner]; ok {
			node.Memory.Remove(q)
		}
		delete(e.qubitOwner, q)
	}
	if e.metrics != nil {
		e.metrics.QubitsTraced(len(qubitNames))
	}
	return true
}

// PeekDM, CalculateFidelity, and Contract are read-only reporting
// operations spec.md does not gate behind ownership.
func (e *Entity) PeekDM(qubits []string) []complex128 { return e.engine.PeekDM(qubits) }

func (e *Entity) CalculateFidelity(a, b string) float64 {
	f := e.engine.CalculateFidelity(a, b)
	if e.metrics != nil {
		e.metrics.FidelitySample(f)
	}
	return f
}

func (e *Entity) Contract(optimizer string) { e.engine.Contract(optimizer) }
