// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package tensor implements the Tensor Store: a registry of immutable,
// complex-valued, named tensors (initial pure/mixed qubit states, unitary
// gates, and mixed-channel operations). Preparing the same name twice is a
// no-op logged as a diagnostic; a shape mismatch between supplied data and
// declared extents is a class-1 invariant violation.
package tensor

import (
	"errors"
	"fmt"
	"sync"

	"github.com/luxfi/log"

	"github.com/luxfi/qns/internal/qerr"
)

// Reserved name prefixes. Names beginning with ReservedPrefix are reserved
// for system-generated tensors, gates, and ancillas; callers must not use
// them for user-chosen qubit or tensor names.
const (
	ReservedPrefix = "QNS_"
	GatePrefix     = ReservedPrefix + "GATE_"
	AncillaPrefix  = ReservedPrefix + "ANCILLA"
	EPRPrefix      = ReservedPrefix + "EPR"
	ExaTNPrefix    = ReservedPrefix + "EXATN"
)

// EPS is the tolerance below which a value is treated as exactly zero:
// elapsed durations in the dephasing models, and the imaginary part of a
// measurement or fidelity probability. Ported from quantum-basis.h.
const EPS = 1e-6

// ErrShapeMismatch is a class-1 invariant violation: supplied data length
// does not match the product of the declared leg extents.
var ErrShapeMismatch = errors.New("tensor: data length does not match extents")

// ErrOperationArity is raised when a mixed-operation's Kraus list and
// probability list disagree in length, or the list is empty.
var ErrOperationArity = errors.New("tensor: operation factors and probabilities must be equal in length and non-empty")

// Tensor is immutable once returned from the Store: a named block of
// complex amplitude data with an ordered list of leg extents, flattened
// row-major.
type Tensor struct {
	Name    string
	Extents []int
	Data    []complex128
}

func product(extents []int) int {
	n := 1
	for _, e := range extents {
		n *= e
	}
	return n
}

// log2 returns k such that 2^k == n, or -1 if n is not a power of two.
func log2(n int) int {
	if n <= 0 {
		return -1
	}
	k := 0
	for v := n; v > 1; v >>= 1 {
		if v%2 != 0 {
			return -1
		}
		k++
	}
	return k
}

// Store holds every named tensor prepared during a run: canonical and
// user-defined gates, mixed operations, and initial pure/mixed qubit
// states. It never mutates a Tensor once stored; callers that need to
// evolve state clone the data into their own working copy.
type Store struct {
	mu      sync.RWMutex
	tensors map[string]*Tensor
	log     log.Logger
}

// NewStore returns an empty Store. A nil logger defaults to a no-op logger.
func NewStore(logger log.Logger) *Store {
	if logger == nil {
		logger = log.NewNoOpLogger()
	}
	return &Store{tensors: make(map[string]*Tensor), log: logger}
}

// Get fetches a previously prepared tensor by name.
func (s *Store) Get(name string) (*Tensor, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.tensors[name]
	return t, ok
}

func (s *Store) put(name string, extents []int, data []complex128) *Tensor {
	if existing, ok := s.tensors[name]; ok {
		s.log.Warn("tensor already prepared, ignoring duplicate", "name", name)
		return existing
	}
	t := &Tensor{
		Name:    name,
		Extents: append([]int(nil), extents...),
		Data:    append([]complex128(nil), data...),
	}
	s.tensors[name] = t
	return t
}

// PrepareTensor creates a general tensor: data length must equal the
// product of extents, or the call panics with a class-1 invariant
// violation.
func (s *Store) PrepareTensor(name string, extents []int, data []complex128) *Tensor {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.tensors[name]; ok {
		s.log.Warn("tensor already prepared, ignoring duplicate", "name", name)
		return t
	}
	want := product(extents)
	if len(data) != want {
		qerr.Panic(fmt.Errorf("%w: %q wants %d elements for extents %v, got %d",
			ErrShapeMismatch, name, want, extents, len(data)))
	}
	return s.put(name, extents, data)
}

// PreparePure creates an n-leg tensor (all extents 2) from a length-2^n
// pure state vector.
func (s *Store) PreparePure(name string, data []complex128) *Tensor {
	n := log2(len(data))
	if n < 0 {
		qerr.Panic(fmt.Errorf("%w: pure state %q length %d is not a power of two",
			ErrShapeMismatch, name, len(data)))
	}
	return s.PrepareTensor(name, uniformExtents(n), data)
}

// PrepareMixed creates a 2n-leg tensor (all extents 2) from a flat
// length-4^n density matrix.
func (s *Store) PrepareMixed(name string, data []complex128) *Tensor {
	p := log2(len(data))
	if p < 0 || p%2 != 0 {
		qerr.Panic(fmt.Errorf("%w: mixed state %q length %d is not a power of four",
			ErrShapeMismatch, name, len(data)))
	}
	return s.PrepareTensor(name, uniformExtents(p), data)
}

// PrepareGate creates a unitary gate tensor with the same shape as
// PrepareMixed. If name is one of the canonical gate names, the supplied
// data is ignored and the canonical matrix is used instead — canonical
// names always win, per the "reserved names short-circuit" rule.
func (s *Store) PrepareGate(name string, data []complex128) *Tensor {
	if canon, ok := canonicalGates[name]; ok {
		return s.PrepareTensor(name, canon.extents, canon.data)
	}
	return s.PrepareMixed(name, data)
}

// PrepareOperation combines a list of Kraus-like unitary factors and their
// probabilities into a single tensor: `sqrt(p_i)*U_i` concatenated along an
// extra trailing selector leg of extent len(kraus).
func (s *Store) PrepareOperation(name string, kraus [][]complex128, probs []float64) *Tensor {
	if len(kraus) == 0 || len(kraus) != len(probs) {
		qerr.Panic(fmt.Errorf("%w: %q has %d factors and %d probabilities",
			ErrOperationArity, name, len(kraus), len(probs)))
	}
	base := len(kraus[0])
	p := log2(base)
	if p < 0 || p%2 != 0 {
		qerr.Panic(fmt.Errorf("%w: operation %q factor length %d is not a power of four",
			ErrShapeMismatch, name, base))
	}
	k := len(kraus)
	extents := append(uniformExtents(p), k)
	data := make([]complex128, base*k)
	for i, u := range kraus {
		if len(u) != base {
			qerr.Panic(fmt.Errorf("%w: operation %q factor %d has length %d, want %d",
				ErrShapeMismatch, name, i, len(u), base))
		}
		sp := complexSqrt(probs[i])
		for j, v := range u {
			// Row-major with the selector as the fastest-varying (last)
			// dimension: data[gateFlatIndex*k + selectorIndex].
			data[j*k+i] = sp * v
		}
	}
	return s.PrepareTensor(name, extents, data)
}

func uniformExtents(n int) []int {
	e := make([]int, n)
	for i := range e {
		e[i] = 2
	}
	return e
}
