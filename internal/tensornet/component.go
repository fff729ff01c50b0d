// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package tensornet is the Tensor Network: the substrate that holds a
// density-matrix circuit's live numeric state and performs the array
// algebra (outer product, local-operator contraction, partial trace,
// mode reordering) the Quantum State Engine drives.
//
// A Component is a maximal set of qubits whose legs have become connected
// by some prior gate or channel application. While a component has only
// ever seen unitary gates it stays "pure": only its ket half is
// materialized (Joint == false), and its implicit bra half is understood
// to be the elementwise conjugate — this is the structural half of the
// ket/bra Hermiticity invariant spec.md §3 describes. The first time a
// component is touched by anything non-unitary (a mixed operation, a
// measurement projector, or a partial trace) it is promoted to a joint
// representation that stores both halves explicitly; from that point the
// component behaves like an ordinary (reduced) density matrix block.
package tensornet

// Component is a contiguous block of qubit legs. Qubits lists the qubit
// names in the order their legs appear in Data. If Joint is false, Extents
// has len(Qubits) entries (all 2) and Data is the component's pure ket
// amplitude vector, length 2^len(Qubits). If Joint is true, Extents has
// 2*len(Qubits) entries (all 2): the first len(Qubits) are ket legs (in
// qubit order), the last len(Qubits) are bra legs (same order), and Data
// is the flattened density-matrix block, length 4^len(Qubits).
type Component struct {
	Qubits  []string
	Joint   bool
	Extents []int
	Data    []complex128
}

func (c *Component) dim() int {
	n := 1
	for _, e := range c.Extents {
		n *= e
	}
	return n
}

// position returns the leg index of qubit's ket leg (and, if Joint, bra
// leg) within c.
func (c *Component) position(qubit string) int {
	for i, q := range c.Qubits {
		if q == qubit {
			return i
		}
	}
	return -1
}
