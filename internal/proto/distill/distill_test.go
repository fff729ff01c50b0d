// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package distill

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/luxfi/qns/internal/entity"
	"github.com/luxfi/qns/internal/proto/epr"
	"github.com/luxfi/qns/internal/qchannel"
	"github.com/luxfi/qns/internal/qengine"
	"github.com/luxfi/qns/internal/simkernel"
)

func newTestHarness(t *testing.T) (*entity.Entity, *simkernel.VirtualClock, *simkernel.Network) {
	t.Helper()
	vc := simkernel.NewVirtualClock(nil)
	vc.StopAt(100)
	ent := entity.New(vc, []byte("distill-test-seed"), nil)
	net := simkernel.NewNetwork(vc, simkernel.NewLossyLink(1000, 0.001))
	return ent, vc, net
}

// preEstablish creates a Bell pair (a, b) owned by alice and bob
// respectively, as if EPR distribution had already run.
func preEstablish(t *testing.T, ent *entity.Entity, a, b string) {
	t.Helper()
	require.True(t, ent.GeneratePureQubits(entity.User("alice"), qengine.BellPhiPlus, []string{a, b}))
	require.True(t, ent.DisownQubit(entity.User("alice"), b))
	require.True(t, ent.AdoptQubit(entity.User("bob"), b))
}

func TestDistillWinsWhenOutcomesMatch(t *testing.T) {
	ent, vc, net := newTestHarness(t)
	ent.AddOwner("alice")
	ent.AddOwner("bob")
	aliceNode, _ := ent.Node("alice")
	aliceNode.SetAddress("alice-addr")
	bobNode, _ := ent.Node("bob")
	bobNode.SetAddress("bob-addr")
	conn := qchannel.New("alice", "bob")

	preEstablish(t, ent, "GA", "GB")
	preEstablish(t, ent, "MA", "MB")

	dst := NewDstApp(ent, conn, "GB", "MB", nil)

	src := NewSrcApp(ent, conn, "GA", "MA", nil)
	reply := src.StartApplication(net, bobNode.Address, dst.Port())
	dst.StartApplication(net, *reply)

	vc.Run()

	win, known := src.Win()
	require.True(t, known)
	require.Equal(t, win, dst.Win())
}

// TestDistillScenarioImprovesOrDiscardsAGoalPairUnderNoise reproduces
// spec §8's scenario 3: a goal pair (A0,B0) and a measurement pair
// (A1,B1) are distributed over a channel depolarized to F=0.93, then
// distilled against each other. On a win, the goal pair's fidelity must
// strictly exceed the pre-distillation channel fidelity; on a lose, only
// the agreed outcome is checked (the apps leave the goal pair live).
func TestDistillScenarioImprovesOrDiscardsAGoalPairUnderNoise(t *testing.T) {
	ent, vc, net := newTestHarness(t)
	ent.AddOwner("alice")
	ent.AddOwner("bob")
	aliceNode, _ := ent.Node("alice")
	aliceNode.SetAddress("alice-addr")
	bobNode, _ := ent.Node("bob")
	bobNode.SetAddress("bob-addr")
	conn := qchannel.New("alice", "bob")
	conn.SetDepolarModel(0.93, ent)

	eprDst := epr.NewDstApp(ent, net, conn, nil)
	eprDst.StartApplication()
	eprSrc := epr.NewSrcApp(ent, net, conn, nil)
	eprSrc.StartApplication(bobNode.Address, eprDst.Port())
	require.True(t, eprSrc.GenerateAndDistribute("A0", "B0"))
	require.True(t, eprSrc.GenerateAndDistribute("A1", "B1"))

	dst := NewDstApp(ent, conn, "B0", "B1", nil)
	src := NewSrcApp(ent, conn, "A0", "A1", nil)
	reply := src.StartApplication(net, bobNode.Address, dst.Port())
	dst.StartApplication(net, *reply)

	vc.Run()

	win, known := src.Win()
	require.True(t, known)
	require.Equal(t, win, dst.Win())
	if win {
		require.Greater(t, ent.CalculateFidelity("A0", "B0"), 0.93)
	}
}
