// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package entswapadapt

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/luxfi/qns/internal/entity"
	"github.com/luxfi/qns/internal/qengine"
	"github.com/luxfi/qns/internal/simkernel"
)

// TestCoherentEntSwapDiscardsMiddleQubitsAndCorrectsLast reproduces a
// 4-owner chain (alice - bob - carol - dave) using the coherent/adaptive
// variant: bob and carol's qubits should end up discarded, and alice's/
// dave's surviving qubits should remain live.
func TestCoherentEntSwapDiscardsMiddleQubitsAndCorrectsLast(t *testing.T) {
	vc := simkernel.NewVirtualClock(nil)
	vc.StopAt(100)
	ent := entity.New(vc, []byte("entswapadapt-test-seed"), nil)
	ent.AddOwner("alice")
	ent.AddOwner("bob")
	ent.AddOwner("carol")
	ent.AddOwner("dave")

	require.True(t, ent.GeneratePureQubits(entity.User("alice"), qengine.BellPhiPlus, []string{"A1", "B0"}))
	require.True(t, ent.DisownQubit(entity.User("alice"), "B0"))
	require.True(t, ent.AdoptQubit(entity.User("bob"), "B0"))

	require.True(t, ent.GeneratePureQubits(entity.User("bob"), qengine.BellPhiPlus, []string{"B1", "C0"}))
	require.True(t, ent.DisownQubit(entity.User("bob"), "C0"))
	require.True(t, ent.AdoptQubit(entity.User("carol"), "C0"))

	require.True(t, ent.GeneratePureQubits(entity.User("carol"), qengine.BellPhiPlus, []string{"C1", "D0"}))
	require.True(t, ent.DisownQubit(entity.User("carol"), "D0"))
	require.True(t, ent.AdoptQubit(entity.User("dave"), "D0"))

	qubitsFormer := []string{"A1", "B0", "C0", "D0"}
	qubitsLatter := []string{"", "B1", "C1", ""}

	app := NewApp(ent, vc, qubitsFormer, qubitsLatter, nil)
	app.StartApplication()
	vc.Run()

	require.True(t, ent.Engine().IsLive("A1"))
	require.True(t, ent.Engine().IsLive("D0"))
	require.False(t, ent.Engine().IsLive("B0"))
	require.False(t, ent.Engine().IsLive("B1"))
	require.False(t, ent.Engine().IsLive("C0"))
	require.False(t, ent.Engine().IsLive("C1"))
}
