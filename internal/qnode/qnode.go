// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package qnode implements the Quantum Node and its per-owner qubit
// Memory: the technical carrier of an owner's classical address, port
// allocator, topology rank, and currently-owned qubit names.
package qnode

// firstPort is the first 16-bit port a Node's port allocator hands out.
const firstPort = 9

// Node is the technical carrier behind an owner: its classical address
// (set once during topology wiring), a monotonic port allocator, its
// topology rank, and its Memory of currently-owned qubit names.
type Node struct {
	Owner    string
	Address  string
	Rank     int
	nextPort uint16
	Memory   *Memory
}

// New returns a Node with its port allocator primed at 9 and an empty
// Memory.
func New(owner string) *Node {
	return &Node{Owner: owner, nextPort: firstPort, Memory: NewMemory()}
}

// SetAddress sets the node's classical address. Called once during
// topology wiring.
func (n *Node) SetAddress(addr string) { n.Address = addr }

// SetRank sets the node's topology rank. Called once during topology
// wiring.
func (n *Node) SetRank(rank int) { n.Rank = rank }

// NextPort hands out the next 16-bit port and advances the allocator.
func (n *Node) NextPort() uint16 {
	p := n.nextPort
	n.nextPort++
	return p
}

// Memory is an ordered list of qubit names currently owned by a Node.
type Memory struct {
	qubits []string
}

func NewMemory() *Memory {
	return &Memory{}
}

// Add appends q to the memory.
func (m *Memory) Add(q string) {
	m.qubits = append(m.qubits, q)
}

// Remove deletes q from the memory if present, returning whether it was
// found. Removing an absent qubit is not an error — callers use the
// false return to detect "already moved" conditions (e.g. EPR
// redistribution moving a qubit's ownership before this node ever
// receives it).
func (m *Memory) Remove(q string) bool {
	for i, name := range m.qubits {
		if name == q {
			m.qubits = append(m.qubits[:i], m.qubits[i+1:]...)
			return true
		}
	}
	return false
}

// Size returns the number of qubits currently in memory.
func (m *Memory) Size() int { return len(m.qubits) }

// At returns the qubit name at index i.
func (m *Memory) At(i int) string { return m.qubits[i] }

// Contains reports whether q is currently owned.
func (m *Memory) Contains(q string) bool {
	for _, name := range m.qubits {
		if name == q {
			return true
		}
	}
	return false
}
