// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package qengine implements the Quantum State Engine: the narrow,
// ket/bra-invariant-preserving command surface that drives the live
// tensor network on behalf of the Physical Entity and the protocol
// applications. It owns the qubit-name → component bookkeeping; the
// array algebra itself lives in internal/tensornet.
package qengine

import (
	"fmt"
	"math"
	"sync"

	"github.com/luxfi/log"

	"github.com/luxfi/qns/internal/qerr"
	"github.com/luxfi/qns/internal/qrandom"
	"github.com/luxfi/qns/internal/tensor"
	"github.com/luxfi/qns/internal/tensornet"
)

// Engine is the Quantum State Engine. All operations are total functions
// on a valid state, except Measure which is probabilistic. Not safe for
// concurrent use — the simulator kernel is single-threaded and every call
// is serialized through it.
type Engine struct {
	mu        sync.Mutex
	store     *tensor.Store
	backend   tensornet.Backend
	log       log.Logger
	component map[string]*tensornet.Component // live qubit -> its component
	allQubits map[string]bool                 // every name ever generated, never removed
	live      map[string]bool                 // currently live (not traced out)
	ancillaN  int                             // counter for internally generated tensor names
}

// New returns an Engine backed by store for named-tensor bookkeeping and
// backend for the live array algebra. A nil logger defaults to a no-op
// logger and a nil backend defaults to tensornet.NewDenseBackend().
func New(store *tensor.Store, backend tensornet.Backend, logger log.Logger) *Engine {
	if logger == nil {
		logger = log.NewNoOpLogger()
	}
	if backend == nil {
		backend = tensornet.NewDenseBackend()
	}
	return &Engine{
		store:     store,
		backend:   backend,
		log:       logger,
		component: make(map[string]*tensornet.Component),
		allQubits: make(map[string]bool),
		live:      make(map[string]bool),
	}
}

func (e *Engine) nextAncillaName() string {
	e.ancillaN++
	return fmt.Sprintf("%sSTATE_%d", tensor.AncillaPrefix, e.ancillaN)
}

// checkFresh panics (class 4: duplicate qubit generation) if any name has
// ever been generated before, live or traced out.
func (e *Engine) checkFresh(qubitNames []string) {
	for _, q := range qubitNames {
		if e.allQubits[q] {
			qerr.Panicf("qengine: qubit %q already generated", q)
		}
	}
}

func (e *Engine) register(qubitNames []string, c *tensornet.Component) {
	for _, q := range qubitNames {
		e.allQubits[q] = true
		e.live[q] = true
		e.component[q] = c
	}
}

// GeneratePureQubits prepares a fresh tensor from stateVector and appends
// it on both the ket side (as-is) and the bra side (conjugated implicit
// in the pure component representation), binding each of qubitNames to
// its position.
func (e *Engine) GeneratePureQubits(owner string, stateVector []complex128, qubitNames []string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.checkFresh(qubitNames)
	e.store.PreparePure(e.nextAncillaName(), stateVector)
	c := e.backend.NewComponent(qubitNames, stateVector)
	e.register(qubitNames, c)
	e.log.Debug("generated pure qubits", "owner", owner, "qubits", qubitNames)
}

// GenerateMixedQubits prepares a fresh tensor from densityMatrix (flat,
// bra-legs-first-then-ket-legs per the engine's wire convention) and
// appends it once as a joint component.
func (e *Engine) GenerateMixedQubits(owner string, densityMatrix []complex128, qubitNames []string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.checkFresh(qubitNames)
	e.store.PrepareMixed(e.nextAncillaName(), densityMatrix)
	c := e.backend.NewMixedComponent(qubitNames, densityMatrix)
	e.register(qubitNames, c)
	e.log.Debug("generated mixed qubits", "owner", owner, "qubits", qubitNames)
}

// mergeQubits collapses every distinct component touching qubitNames into
// one, rebinding every qubit that ends up in it, and returns it. Callers
// hold e.mu.
func (e *Engine) mergeQubits(qubitNames []string) *tensornet.Component {
	seen := make(map[*tensornet.Component]bool)
	var comps []*tensornet.Component
	for _, q := range qubitNames {
		c := e.component[q]
		if c != nil && !seen[c] {
			seen[c] = true
			comps = append(comps, c)
		}
	}
	merged := comps[0]
	for _, c := range comps[1:] {
		merged = e.backend.Merge(merged, c)
	}
	e.rebind(merged)
	return merged
}

func (e *Engine) rebind(c *tensornet.Component) {
	for _, q := range c.Qubits {
		e.component[q] = c
	}
}

func (e *Engine) allLive(qubitNames []string) bool {
	for _, q := range qubitNames {
		if !e.live[q] {
			return false
		}
	}
	return true
}

// ApplyGate validates every named qubit is live, prepares the gate tensor
// (canonical names short-circuit to frozen data), merges the touched
// components, and contracts the gate into the ket legs — and, if the
// result is a joint component, the conjugate into the bra legs. The i-th
// qubit in qubitNames binds to the gate's i-th leg; this ordering is
// observable.
func (e *Engine) ApplyGate(owner, gateName string, data []complex128, qubitNames []string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.allLive(qubitNames) {
		e.log.Warn("apply-gate on non-live qubit, skipping", "owner", owner, "gate", gateName, "qubits", qubitNames)
		return false
	}
	t := e.store.PrepareGate(gateName, data)
	dim := tensor.GateDim(t)
	merged := e.mergeQubits(qubitNames)
	out := e.backend.ApplyLocal(merged, qubitNames, t.Data, dim)
	e.rebind(out)
	return true
}

// ApplyControlledOperation reduces to ApplyGate on the concatenation
// [target_qubits, control_qubits] using implementingGateName, modeling a
// classical "if control then X" as a coherent controlled gate on an
// unmeasured control — valid under the deferred-measurement principle.
// originalGateName is carried only for diagnostics.
func (e *Engine) ApplyControlledOperation(owner, originalGateName, implementingGateName string, data []complex128, controlQubits, targetQubits []string) bool {
	qubits := make([]string, 0, len(targetQubits)+len(controlQubits))
	qubits = append(qubits, targetQubits...)
	qubits = append(qubits, controlQubits...)
	e.log.Debug("controlled operation reduced to gate", "original", originalGateName, "implementing", implementingGateName)
	return e.ApplyGate(owner, implementingGateName, data, qubits)
}

// ApplyOperation implements a mixed-unitary channel ρ ↦ Σ p_i U_i ρ U_i†.
// krausNames names each U_i (canonical gate names or previously-prepared
// gates); probs must sum to 1 and has the same length. The touched
// component is promoted to joint on first use, since a genuinely mixed
// channel can no longer be represented as a pure ket vector.
func (e *Engine) ApplyOperation(opName string, krausNames []string, probs []float64, qubitNames []string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.allLive(qubitNames) {
		e.log.Warn("apply-operation on non-live qubit, skipping", "op", opName, "qubits", qubitNames)
		return false
	}
	krausData := make([][]complex128, len(krausNames))
	var dim int
	for i, name := range krausNames {
		t := e.store.PrepareGate(name, nil)
		krausData[i] = t.Data
		if i == 0 {
			dim = tensor.GateDim(t)
		}
	}
	e.store.PrepareOperation(opName, krausData, probs)

	merged := e.mergeQubits(qubitNames)
	joint := e.backend.Promote(merged)
	e.rebind(joint)

	sum := make([]complex128, len(joint.Data))
	for i, u := range krausData {
		contrib := e.backend.ApplyLocal(joint, qubitNames, u, dim)
		p := complex(probs[i], 0)
		for j, v := range contrib.Data {
			sum[j] += p * v
		}
	}
	out := &tensornet.Component{Qubits: joint.Qubits, Joint: true, Extents: joint.Extents, Data: sum}
	e.rebind(out)
	return true
}

// Measure samples a projective measurement outcome on qubit using rng,
// collapsing the live state to the scaled post-measurement projector.
// Returns the sampled outcome (0 or 1) and (p0, p1).
func (e *Engine) Measure(qubit string, rng *qrandom.Stream) (int, [2]float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.live[qubit] {
		qerr.Panicf("qengine: measure on non-live qubit %q", qubit)
	}
	merged := e.mergeQubits([]string{qubit})
	joint := e.backend.Promote(merged)
	e.rebind(joint)

	probe := joint
	for _, q := range joint.Qubits {
		if q == qubit {
			continue
		}
		probe = e.backend.SelfTrace(probe, q)
	}
	// probe is now the 1-qubit reduced density matrix: [rho00, rho01, rho10, rho11].
	rho00 := probe.Data[0]
	if math.Abs(imag(rho00)) > tensor.EPS {
		qerr.Panicf("qengine: measurement probability has non-negligible imaginary part %v", rho00)
	}
	p0 := real(rho00)
	if p0 < 0 {
		p0 = 0
	}
	if p0 > 1 {
		p0 = 1
	}
	p1 := 1 - p0

	outcome := 0
	if rng.Bernoulli(p1) {
		outcome = 1
	}

	p := p0
	if outcome == 1 {
		p = p1
	}
	scale := complex(1/math.Sqrt(p), 0)
	proj := make([]complex128, 4)
	proj[outcome*2+outcome] = scale

	out := e.backend.ApplyLocal(joint, []string{qubit}, proj, 2)
	e.rebind(out)
	return outcome, [2]float64{p0, p1}
}

// PartialTrace removes each named qubit from the live network, summing
// out its ket/bra leg pair. Subsequent references to a traced-out name
// fail the live-qubit check in every other method.
func (e *Engine) PartialTrace(qubitNames []string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.allLive(qubitNames) {
		e.log.Warn("partial-trace on non-live qubit, skipping", "qubits", qubitNames)
		return
	}
	merged := e.mergeQubits(qubitNames)
	c := e.backend.Promote(merged)
	for _, q := range qubitNames {
		c = e.backend.SelfTrace(c, q)
		delete(e.component, q)
		delete(e.live, q)
	}
	if len(c.Qubits) > 0 {
		e.rebind(c)
	}
}

// PeekDM returns the flat complex data of the reduced density matrix over
// qubitList, ordered (ket-leg qubit_0..n-1, bra-leg qubit_0..n-1), without
// disturbing the live state of any other qubit.
func (e *Engine) PeekDM(qubitList []string) []complex128 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.peekDMLocked(qubitList)
}

func (e *Engine) peekDMLocked(qubitList []string) []complex128 {
	merged := e.mergeQubits(qubitList)
	c := e.backend.Promote(merged)
	e.rebind(c)

	selected := make(map[string]bool, len(qubitList))
	for _, q := range qubitList {
		selected[q] = true
	}
	probe := c
	for _, q := range c.Qubits {
		if !selected[q] {
			probe = e.backend.SelfTrace(probe, q)
		}
	}
	probe = e.backend.Reorder(probe, qubitList)
	return e.backend.Evaluate(probe, "")
}

// CalculateFidelity returns ⟨Φ+|ρ_AB|Φ+⟩, the overlap of the reduced
// state of (qubitA, qubitB) against the canonical Bell state.
func (e *Engine) CalculateFidelity(qubitA, qubitB string) float64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	data := e.peekDMLocked([]string{qubitA, qubitB})
	// Extents are [ket_a, ket_b, bra_a, bra_b], flat index = a*8+b*4+c*2+d.
	v := data[0] + data[3] + data[12] + data[15]
	v /= 2
	if math.Abs(imag(v)) > tensor.EPS {
		qerr.Panicf("qengine: fidelity has non-negligible imaginary part %v", v)
	}
	return real(v)
}

// Contract merges every currently-live component into one and evaluates
// it, naming optimizer for diagnostics. Because this engine already
// applies every gate and operation eagerly (no literal append-only DAG
// accumulates between calls), Contract's practical effect is bounding the
// number of distinct components rather than reducing already-materialized
// memory; it still fully implements the documented "replace the network
// with a single tensor over the live qubits" behavior.
func (e *Engine) Contract(optimizer string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if len(e.live) == 0 {
		return
	}
	names := make([]string, 0, len(e.live))
	for q := range e.live {
		names = append(names, q)
	}
	merged := e.mergeQubits(names)
	merged = e.backend.Promote(merged)
	data := e.backend.Evaluate(merged, optimizer)
	out := &tensornet.Component{Qubits: merged.Qubits, Joint: true, Extents: merged.Extents, Data: data}
	e.rebind(out)
}

// IsLive reports whether qubit is currently in the live-qubit set.
func (e *Engine) IsLive(qubit string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.live[qubit]
}

// LiveQubits returns every currently-live qubit name, in no particular
// order. Used by the Physical Entity to apply time-dephasing to the
// whole live set before a measurement.
func (e *Engine) LiveQubits() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]string, 0, len(e.live))
	for q := range e.live {
		out = append(out, q)
	}
	return out
}
