// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package distillnested

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/luxfi/qns/internal/entity"
	"github.com/luxfi/qns/internal/proto/epr"
	"github.com/luxfi/qns/internal/qchannel"
	"github.com/luxfi/qns/internal/simkernel"
)

func newTestHarness(t *testing.T) (*entity.Entity, *simkernel.VirtualClock, *simkernel.Network) {
	t.Helper()
	vc := simkernel.NewVirtualClock(nil)
	vc.StopAt(1000)
	ent := entity.New(vc, []byte("distillnested-test-seed"), nil)
	net := simkernel.NewNetwork(vc, simkernel.NewLossyLink(1000, 0.001))
	return ent, vc, net
}

func qubitNames(prefix string, n int) []string {
	names := make([]string, n)
	for i := range names {
		names[i] = prefix + string(rune('0'+i))
	}
	return names
}

// TestNestedDistillCombinesFourPairsDownToOne reproduces spec §4.7.4's
// recursive-halving scenario with 4 pre-registered pairs: two leaf
// distillations (pairs 0-1 and 2-3) each distribute their own EPR pairs
// and combine, then a root combine pairs the two survivors (index 0 and
// index 2) together.
func TestNestedDistillCombinesFourPairsDownToOne(t *testing.T) {
	ent, vc, net := newTestHarness(t)
	ent.AddOwner("alice")
	ent.AddOwner("bob")
	aliceNode, _ := ent.Node("alice")
	aliceNode.SetAddress("alice-addr")
	bobNode, _ := ent.Node("bob")
	bobNode.SetAddress("bob-addr")
	conn := qchannel.New("alice", "bob")

	srcQubits := qubitNames("A", 4)
	dstQubits := qubitNames("B", 4)

	eprDst := epr.NewDstApp(ent, net, conn, nil)
	eprDst.StartApplication()

	dst := NewDstApp(ent, conn, nil)

	src := NewSrcApp(ent, net, vc, conn, nil)
	reply := src.StartApplication(net, bobNode.Address, eprDst.Port(), dst.Port(), srcQubits, dstQubits)
	dst.StartApplication(net, reply)

	vc.Run()

	// Root combine is the last message exchanged; both sides should agree
	// on its outcome.
	require.Equal(t, src.Win(), dst.Win())
}
