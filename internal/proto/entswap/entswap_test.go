// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package entswap

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/luxfi/qns/internal/entity"
	"github.com/luxfi/qns/internal/qchannel"
	"github.com/luxfi/qns/internal/qengine"
	"github.com/luxfi/qns/internal/simkernel"
)

func newTestHarness(t *testing.T) (*entity.Entity, *simkernel.VirtualClock, *simkernel.Network) {
	t.Helper()
	vc := simkernel.NewVirtualClock(nil)
	vc.StopAt(100)
	ent := entity.New(vc, []byte("entswap-test-seed"), nil)
	net := simkernel.NewNetwork(vc, simkernel.NewLossyLink(1000, 0.001))
	return ent, vc, net
}

// preEstablish creates a Bell pair (a, b) owned by ownerA, ownerB
// respectively, as if EPR distribution had already run for that hop.
func preEstablish(t *testing.T, ent *entity.Entity, ownerA, a, ownerB, b string) {
	t.Helper()
	require.True(t, ent.GeneratePureQubits(entity.User(ownerA), qengine.BellPhiPlus, []string{a, b}))
	require.True(t, ent.DisownQubit(entity.User(ownerA), b))
	require.True(t, ent.AdoptQubit(entity.User(ownerB), b))
}

// TestEntSwapChainsThreeHopsToTwoCorrectionsAtLast reproduces a 4-owner
// chain (alice - bob - carol - dave): bob and carol each hold two local
// hop-qubits and report their Bell measurement directly to dave, who XORs
// both reports in before applying its final correction.
func TestEntSwapChainsThreeHopsToTwoCorrectionsAtLast(t *testing.T) {
	ent, vc, net := newTestHarness(t)
	for _, o := range []string{"alice", "bob", "carol", "dave"} {
		ent.AddOwner(o)
		node, _ := ent.Node(o)
		node.SetAddress(o + "-addr")
	}

	// alice--bob hop: alice keeps A1, bob gets B0.
	preEstablish(t, ent, "alice", "A1", "bob", "B0")
	// bob--carol hop: bob keeps B1, carol gets C0.
	preEstablish(t, ent, "bob", "B1", "carol", "C0")
	// carol--dave hop: carol keeps C1, dave gets D0.
	preEstablish(t, ent, "carol", "C1", "dave", "D0")

	daveNode, _ := ent.Node("dave")
	lastConnBob := qchannel.New("bob", "dave")
	lastConnCarol := qchannel.New("carol", "dave")

	dst := NewDstApp(ent, lastConnBob, "D0", 2, nil)
	dst.StartApplication(net)

	bobSrc := NewSrcApp(ent, lastConnBob, "B0", "B1", nil)
	bobSrc.StartApplication(net, daveNode.Address, dst.Port())

	carolSrc := NewSrcApp(ent, lastConnCarol, "C0", "C1", nil)
	carolSrc.StartApplication(net, daveNode.Address, dst.Port())

	vc.Run()

	// alice's A1 and dave's D0 should now be fidelity-consistent (a fresh
	// end-to-end Bell pair modulo the chain's noise model), and both
	// middle hop qubits should have been discarded from the live set.
	require.False(t, ent.Engine().IsLive("B0"))
	require.False(t, ent.Engine().IsLive("B1"))
	require.False(t, ent.Engine().IsLive("C0"))
	require.False(t, ent.Engine().IsLive("C1"))
	require.True(t, ent.Engine().IsLive("A1"))
	require.True(t, ent.Engine().IsLive("D0"))
}
