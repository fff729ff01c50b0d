// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package stack implements the quantum network stack installer (spec
// §4.6): given a set of owners whose nodes are already addressed and
// topology-wired, it installs one EPR-distribution source/destination app
// pair per ordered (src, dst) owner pair — a full mesh — so that any
// protocol layered on top (teleportation, distillation, entanglement
// swapping) can immediately draw on a pre-established, always-running EPR
// supply for any hop it needs, exactly as the original stack helper
// installs distribute-EPR apps across every directed pair of a node
// container.
package stack

import (
	"github.com/luxfi/log"

	"github.com/luxfi/qns/internal/entity"
	"github.com/luxfi/qns/internal/proto/epr"
	"github.com/luxfi/qns/internal/qchannel"
	"github.com/luxfi/qns/internal/simkernel"
)

// Link is one directed channel's installed EPR-distribution apps.
type Link struct {
	Src *epr.SrcApp
	Dst *epr.DstApp
}

// Mesh is the full set of directed links installed across a node set,
// keyed by channel so protocol code can look up which apps serve a given
// (src, dst) hop.
type Mesh struct {
	links map[qchannel.Channel]*Link
}

// Link returns the installed Src/Dst pair for ch, if any.
func (m *Mesh) Link(ch qchannel.Channel) (*Link, bool) {
	l, ok := m.links[ch]
	return l, ok
}

// Install is QuantumNetStackHelper::Install(NodeContainer): for every
// ordered pair (src, dst) of distinct owners, it wires a QuantumChannel
// and installs + starts an EPR-distribution source app on src and
// destination app on dst. Every owner's node must already have its
// Address set (topology wiring is this package's caller's job, not this
// package's).
func Install(ent *entity.Entity, net *simkernel.Network, owners []string, logger log.Logger) *Mesh {
	if logger == nil {
		logger = log.NewNoOpLogger()
	}
	mesh := &Mesh{links: make(map[qchannel.Channel]*Link)}

	for _, src := range owners {
		for _, dst := range owners {
			if src == dst {
				continue
			}
			mesh.installLink(ent, net, qchannel.New(src, dst), logger)
		}
	}
	return mesh
}

func (m *Mesh) installLink(ent *entity.Entity, net *simkernel.Network, conn qchannel.Channel, logger log.Logger) {
	dstApp := epr.NewDstApp(ent, net, conn, logger)
	dstApp.StartApplication()

	srcApp := epr.NewSrcApp(ent, net, conn, logger)
	dstNode, _ := ent.Node(conn.Dst)
	srcApp.StartApplication(dstNode.Address, dstApp.Port())

	m.links[conn] = &Link{Src: srcApp, Dst: dstApp}
}
