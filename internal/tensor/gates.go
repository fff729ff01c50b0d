// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package tensor

import "math"

// Canonical gate names. A gate tensor has 2n legs, all of extent 2: the
// first n legs are the output (the qubit's new ket/bra leg after
// application), the last n are the input (paired to the qubit's current
// open leg). Flattened row-major, that layout is bit-identical to the
// dim-by-dim matrix (dim = 2^n) with row = combined output bits, column =
// combined input bits — the ordinary physics convention, so a gate's
// Tensor.Data can be read directly as a dim*dim row-major matrix.
const (
	GateI    = GatePrefix + "I"
	GatePX   = GatePrefix + "PX"
	GatePY   = GatePrefix + "PY"
	GatePZ   = GatePrefix + "PZ"
	GateH    = GatePrefix + "H"
	GateCNOT = GatePrefix + "CNOT"
	GateTOFF = GatePrefix + "TOFF"
	GateQOR  = GatePrefix + "QOR"
	GateSWAP = GatePrefix + "SWAP"
	GateCZ   = GatePrefix + "CZ"
)

var invSqrt2 = complex(1/math.Sqrt2, 0)

var (
	pauliI = []complex128{1, 0, 0, 1}
	pauliX = []complex128{0, 1, 1, 0}
	pauliY = []complex128{0, -1i, 1i, 0}
	pauliZ = []complex128{1, 0, 0, -1}

	hadamard = []complex128{invSqrt2, invSqrt2, invSqrt2, -invSqrt2}

	// cnot flips the first (target) bit iff the second (control) bit is 1.
	cnot = []complex128{
		1, 0, 0, 0,
		0, 0, 0, 1,
		0, 0, 1, 0,
		0, 1, 0, 0,
	}

	swapGate = []complex128{
		1, 0, 0, 0,
		0, 0, 1, 0,
		0, 1, 0, 0,
		0, 0, 0, 1,
	}

	cz = []complex128{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, -1,
	}

	// toffoli flips the first (target) bit iff both controls (the second
	// and third bits) are 1.
	toffoli = identityWithSwappedRows(8, 3, 7)

	// qor ("quantum OR") sets the third (target) bit iff either control is
	// 1 — i.e. every basis state except |000> and |100>/|010>/|110>-with-
	// target-already-1 gets its target bit OR-ed in. Ported verbatim from
	// quantum-basis.h's `qor` table (target flips whenever at least one
	// control is 1 and target was 0, and the inverse transition is its own
	// mirror so the map stays a permutation).
	qor = []complex128{
		1, 0, 0, 0, 0, 0, 0, 0,
		0, 1, 0, 0, 0, 0, 0, 0,
		0, 0, 0, 1, 0, 0, 0, 0,
		0, 0, 1, 0, 0, 0, 0, 0,

		0, 0, 0, 0, 0, 1, 0, 0,
		0, 0, 0, 0, 1, 0, 0, 0,
		0, 0, 0, 0, 0, 0, 0, 1,
		0, 0, 0, 0, 0, 0, 1, 0,
	}
)

// identityWithSwappedRows builds the dim x dim permutation matrix for
// Toffoli: identity everywhere except rows/cols a and b, which are swapped.
func identityWithSwappedRows(dim, a, b int) []complex128 {
	m := make([]complex128, dim*dim)
	for i := 0; i < dim; i++ {
		m[i*dim+i] = 1
	}
	m[a*dim+a], m[b*dim+b] = 0, 0
	m[a*dim+b], m[b*dim+a] = 1, 1
	return m
}

type canonicalGate struct {
	extents []int
	data    []complex128
}

var canonicalGates = map[string]canonicalGate{
	GateI:    {uniformExtents(2), pauliI},
	GatePX:   {uniformExtents(2), pauliX},
	GatePY:   {uniformExtents(2), pauliY},
	GatePZ:   {uniformExtents(2), pauliZ},
	GateH:    {uniformExtents(2), hadamard},
	GateCNOT: {uniformExtents(4), cnot},
	GateTOFF: {uniformExtents(6), toffoli},
	GateQOR:  {uniformExtents(6), qor},
	GateSWAP: {uniformExtents(4), swapGate},
	GateCZ:   {uniformExtents(4), cz},
}

// IsCanonical reports whether name is one of the frozen canonical gate
// names, for callers that want to reject user data before even calling
// PrepareGate.
func IsCanonical(name string) bool {
	_, ok := canonicalGates[name]
	return ok
}

// GateDim returns the matrix dimension (2^n) of a prepared gate tensor.
func GateDim(t *Tensor) int {
	return 1 << (len(t.Extents) / 2)
}

func complexSqrt(p float64) complex128 {
	if p < 0 {
		p = 0
	}
	return complex(math.Sqrt(p), 0)
}
