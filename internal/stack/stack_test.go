// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package stack

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/luxfi/qns/internal/entity"
	"github.com/luxfi/qns/internal/qchannel"
	"github.com/luxfi/qns/internal/simkernel"
)

// TestInstallWiresEveryDirectedPair reproduces spec §4.6's full-mesh
// install across a 3-owner node set: every ordered pair should get its own
// live EPR-distribution link, and a single generate-and-distribute call
// over one such link should produce a live Bell pair.
func TestInstallWiresEveryDirectedPair(t *testing.T) {
	vc := simkernel.NewVirtualClock(nil)
	vc.StopAt(1000)
	ent := entity.New(vc, []byte("stack-test-seed"), nil)
	owners := []string{"alice", "bob", "carol"}
	for _, o := range owners {
		ent.AddOwner(o)
		node, _ := ent.Node(o)
		node.SetAddress(o + "-addr")
	}
	net := simkernel.NewNetwork(vc, simkernel.NewLossyLink(1000, 0.001))

	mesh := Install(ent, net, owners, nil)

	for _, src := range owners {
		for _, dst := range owners {
			if src == dst {
				continue
			}
			_, ok := mesh.Link(qchannel.New(src, dst))
			require.True(t, ok, "expected a link from %s to %s", src, dst)
		}
	}

	link, ok := mesh.Link(qchannel.New("alice", "bob"))
	require.True(t, ok)
	require.True(t, link.Src.GenerateAndDistribute("A0", "B0"))
	vc.Run()
	require.True(t, ent.Engine().IsLive("A0"))
	require.True(t, ent.Engine().IsLive("B0"))
}
