// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package tensornet

import "gonum.org/v1/gonum/mat"

// Backend is the tensor-contraction library collaborator (spec.md §6):
// given a Component it can apply a local operator, promote a pure
// component to its explicit joint (ket+bra) form, merge two components by
// outer product, self-trace a qubit's own ket/bra leg pair, reorder a
// joint component's legs into a requested qubit order, and evaluate the
// result into host-readable flat data. The default implementation,
// DenseBackend, is grounded on gonum's complex dense matrices.
type Backend interface {
	NewComponent(qubits []string, ketAmplitudes []complex128) *Component
	NewMixedComponent(qubits []string, braFirstData []complex128) *Component
	Promote(c *Component) *Component
	Merge(a, b *Component) *Component
	ApplyLocal(c *Component, qubits []string, matrix []complex128, dim int) *Component
	SelfTrace(c *Component, qubit string) *Component
	Reorder(c *Component, qubitOrder []string) *Component
	Evaluate(c *Component, optimizer string) []complex128
}

// DenseBackend implements Backend with gonum's mat.CDense for every local
// operator contraction — the one numerically hot path the engine calls on
// every gate, operation, and measurement. The optimizer name is accepted
// (per spec.md's "Non-goals: no optimization of tensor-contraction order
// beyond picking an externally-supplied optimizer name") and recorded for
// diagnostics but does not change how a single component's pairwise
// contractions are ordered — a component, by construction, is small
// enough (the protocols partial-trace and measure aggressively) that no
// contraction-order search is warranted.
type DenseBackend struct {
	LastOptimizer string
}

func NewDenseBackend() *DenseBackend {
	return &DenseBackend{}
}

func (b *DenseBackend) NewComponent(qubits []string, ketAmplitudes []complex128) *Component {
	ext := make([]int, len(qubits))
	for i := range ext {
		ext[i] = 2
	}
	return &Component{
		Qubits:  append([]string(nil), qubits...),
		Joint:   false,
		Extents: ext,
		Data:    append([]complex128(nil), ketAmplitudes...),
	}
}

// NewMixedComponent builds a joint component directly from a flat density
// matrix supplied in (bra legs first n, ket legs last n) order — the
// layout the engine's GenerateMixedQubits command receives its caller
// data in — and permutes it into the (ket, bra) layout every other
// Component in this package uses.
func (b *DenseBackend) NewMixedComponent(qubits []string, braFirstData []complex128) *Component {
	n := len(qubits)
	ext := make([]int, 2*n)
	for i := range ext {
		ext[i] = 2
	}
	perm := make([]int, 2*n)
	for i := 0; i < n; i++ {
		perm[i] = n + i   // new ket leg i <- old leg (n+i)
		perm[n+i] = i     // new bra leg i <- old leg i
	}
	newExt, newData := permuteLegs(ext, braFirstData, perm)
	return &Component{Qubits: append([]string(nil), qubits...), Joint: true, Extents: newExt, Data: newData}
}

// Promote materializes ρ = |ψ⟩⟨ψ| for a still-pure component: the new
// joint layout is (ket legs in qubit order, bra legs in qubit order), data
// = outer(ket, conj(ket)).
func (b *DenseBackend) Promote(c *Component) *Component {
	if c.Joint {
		return c
	}
	ext, data := outerProduct(c.Extents, c.Data, c.Extents, conjugate(c.Data))
	return &Component{Qubits: append([]string(nil), c.Qubits...), Joint: true, Extents: ext, Data: data}
}

// Merge outer-products two components, concatenating their qubit lists.
// If either component is joint, both are promoted first and the result's
// legs are interleaved back into (all kets, all bras) order so Merge's
// output always matches the Component layout contract.
func (b *DenseBackend) Merge(a, c *Component) *Component {
	if !a.Joint && !c.Joint {
		ext, data := outerProduct(a.Extents, a.Data, c.Extents, c.Data)
		return &Component{Qubits: append(append([]string(nil), a.Qubits...), c.Qubits...), Joint: false, Extents: ext, Data: data}
	}
	pa, pc := b.Promote(a), b.Promote(c)
	na, nc := len(pa.Qubits), len(pc.Qubits)
	ext, data := outerProduct(pa.Extents, pa.Data, pc.Extents, pc.Data)
	// Raw layout is [a-ket(na), a-bra(na), c-ket(nc), c-bra(nc)]; the
	// Component contract wants [a-ket, c-ket, a-bra, c-bra].
	perm := make([]int, 0, 2*(na+nc))
	for i := 0; i < na; i++ {
		perm = append(perm, i)
	}
	for i := 0; i < nc; i++ {
		perm = append(perm, 2*na+i)
	}
	for i := 0; i < na; i++ {
		perm = append(perm, na+i)
	}
	for i := 0; i < nc; i++ {
		perm = append(perm, 2*na+nc+i)
	}
	ext, data = permuteLegs(ext, data, perm)
	return &Component{
		Qubits:  append(append([]string(nil), pa.Qubits...), pc.Qubits...),
		Joint:   true,
		Extents: ext,
		Data:    data,
	}
}

// ApplyLocal contracts matrix (a dim x dim row-major operator, row =
// output, column = input) into the ket legs of the named qubits; if c is
// joint, the conjugated matrix is independently contracted into the same
// qubits' bra legs, implementing ρ ↦ U ρ U†.
func (b *DenseBackend) ApplyLocal(c *Component, qubits []string, matrix []complex128, dim int) *Component {
	ketPos := make([]int, len(qubits))
	for i, q := range qubits {
		ketPos[i] = c.position(q)
	}
	ext, data := applyOperator(c.Extents, c.Data, ketPos, matrix, dim)
	if !c.Joint {
		return &Component{Qubits: c.Qubits, Joint: false, Extents: ext, Data: data}
	}
	n := len(c.Qubits)
	braPos := make([]int, len(qubits))
	for i, p := range ketPos {
		braPos[i] = p + n
	}
	ext, data = applyOperator(ext, data, braPos, conjugate(matrix), dim)
	return &Component{Qubits: c.Qubits, Joint: true, Extents: ext, Data: data}
}

// SelfTrace contracts qubit's own ket leg directly against its own bra
// leg (Σ over the shared index), removing it from the component. Callers
// must promote c first; tracing a pure component is undefined since it
// has no explicit bra half to pair against.
func (b *DenseBackend) SelfTrace(c *Component, qubit string) *Component {
	n := len(c.Qubits)
	pos := c.position(qubit)
	ext, data := selfTraceLegs(c.Extents, c.Data, pos, pos+n)
	qubits := make([]string, 0, n-1)
	for _, q := range c.Qubits {
		if q != qubit {
			qubits = append(qubits, q)
		}
	}
	return &Component{Qubits: qubits, Joint: true, Extents: ext, Data: data}
}

// Reorder permutes a joint component's ket and bra legs so they follow
// qubitOrder instead of c.Qubits' order, producing the (ket_0..ket_{n-1},
// bra_0..bra_{n-1}) signature PeekDM and CalculateFidelity require.
func (b *DenseBackend) Reorder(c *Component, qubitOrder []string) *Component {
	n := len(c.Qubits)
	perm := make([]int, 0, 2*n)
	for _, q := range qubitOrder {
		perm = append(perm, c.position(q))
	}
	for _, q := range qubitOrder {
		perm = append(perm, c.position(q)+n)
	}
	ext, data := permuteLegs(c.Extents, c.Data, perm)
	return &Component{Qubits: append([]string(nil), qubitOrder...), Joint: true, Extents: ext, Data: data}
}

func (b *DenseBackend) Evaluate(c *Component, optimizer string) []complex128 {
	if optimizer == "" {
		optimizer = "greed"
	}
	b.LastOptimizer = optimizer
	return append([]complex128(nil), c.Data...)
}

// applyOperator contracts a dim x dim operator into the legs at
// positions (each of extent such that their product equals dim), via
// permute-to-front / reshape / gonum matrix multiply / permute-back. This
// is valid because row-major data with the target legs already leading is
// bit-identical to a [dim x cols] matrix in memory, so no data movement is
// needed beyond the two permutes.
func applyOperator(ext []int, data []complex128, positions []int, matrix []complex128, dim int) ([]int, []complex128) {
	n := len(ext)
	leading := make(map[int]bool, len(positions))
	for _, p := range positions {
		leading[p] = true
	}
	perm := append([]int(nil), positions...)
	for i := 0; i < n; i++ {
		if !leading[i] {
			perm = append(perm, i)
		}
	}
	permExt, permData := permuteLegs(ext, data, perm)

	cols := product(permExt) / dim
	a := mat.NewCDense(dim, dim, toGonum(matrix))
	input := mat.NewCDense(dim, cols, toGonum(permData))
	var out mat.CDense
	out.Mul(a, input)

	outData := fromGonum(&out, dim*cols)

	invPerm := make([]int, n)
	for i, p := range perm {
		invPerm[p] = i
	}
	return permuteLegs(permExt, outData, invPerm)
}

func toGonum(data []complex128) []complex128 {
	return data
}

func fromGonum(m *mat.CDense, n int) []complex128 {
	out := make([]complex128, n)
	rows, cols := m.Dims()
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			out[i*cols+j] = m.At(i, j)
		}
	}
	return out
}
