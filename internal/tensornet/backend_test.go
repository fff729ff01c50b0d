// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package tensornet

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func invSqrt2() complex128 { return complex(1/math.Sqrt2, 0) }

func TestNewComponentPureAmplitudes(t *testing.T) {
	b := NewDenseBackend()
	c := b.NewComponent([]string{"q0"}, []complex128{1, 0})
	require.False(t, c.Joint)
	require.Equal(t, []int{2}, c.Extents)
}

func TestApplyLocalHadamardOnPureQubit(t *testing.T) {
	b := NewDenseBackend()
	c := b.NewComponent([]string{"q0"}, []complex128{1, 0})
	h := []complex128{invSqrt2(), invSqrt2(), invSqrt2(), -invSqrt2()}
	out := b.ApplyLocal(c, []string{"q0"}, h, 2)
	require.False(t, out.Joint)
	require.InDelta(t, real(invSqrt2()), real(out.Data[0]), 1e-9)
	require.InDelta(t, real(invSqrt2()), real(out.Data[1]), 1e-9)
}

func TestPromoteBuildsOuterProductDensityMatrix(t *testing.T) {
	b := NewDenseBackend()
	c := b.NewComponent([]string{"q0"}, []complex128{1, 0})
	joint := b.Promote(c)
	require.True(t, joint.Joint)
	// rho = |0><0|: data = [1,0,0,0]
	require.Equal(t, []complex128{1, 0, 0, 0}, joint.Data)
}

func TestMergeTwoPureComponentsStaysPure(t *testing.T) {
	b := NewDenseBackend()
	a := b.NewComponent([]string{"q0"}, []complex128{1, 0})
	c := b.NewComponent([]string{"q1"}, []complex128{0, 1})
	m := b.Merge(a, c)
	require.False(t, m.Joint)
	require.Equal(t, []string{"q0", "q1"}, m.Qubits)
	// |0> tensor |1> = [0,1,0,0]
	require.Equal(t, []complex128{0, 1, 0, 0}, m.Data)
}

func TestMergeJointWithPurePromotesAndRestoresLegLayout(t *testing.T) {
	b := NewDenseBackend()
	a := b.NewComponent([]string{"q0"}, []complex128{1, 0})
	aj := b.Promote(a)
	c := b.NewComponent([]string{"q1"}, []complex128{1, 0})
	m := b.Merge(aj, c)
	require.True(t, m.Joint)
	require.Equal(t, []string{"q0", "q1"}, m.Qubits)
	require.Len(t, m.Extents, 4)
	// rho = |00><00|: only the (0,0,0,0) entry is 1.
	for i, v := range m.Data {
		if i == 0 {
			require.InDelta(t, 1.0, real(v), 1e-9)
		} else {
			require.InDelta(t, 0.0, real(v), 1e-9)
		}
	}
}

func TestSelfTraceRemovesQubitAndSumsDiagonal(t *testing.T) {
	b := NewDenseBackend()
	a := b.NewComponent([]string{"q0"}, []complex128{1, 0})
	c := b.NewComponent([]string{"q1"}, []complex128{0, 1})
	m := b.Promote(b.Merge(a, c))
	traced := b.SelfTrace(m, "q1")
	require.Equal(t, []string{"q0"}, traced.Qubits)
	// reduced state of q0 alone is |0><0| = [1,0,0,0]
	require.Equal(t, []complex128{1, 0, 0, 0}, traced.Data)
}

func TestReorderPermutesKetAndBraLegsTogether(t *testing.T) {
	b := NewDenseBackend()
	a := b.NewComponent([]string{"q0"}, []complex128{1, 0})
	c := b.NewComponent([]string{"q1"}, []complex128{0, 1})
	m := b.Promote(b.Merge(a, c))
	r := b.Reorder(m, []string{"q1", "q0"})
	require.Equal(t, []string{"q1", "q0"}, r.Qubits)
	// rho = |01><01| reordered to q1,q0 basis becomes |10><10|: index 1010(bin)=10
	want := make([]complex128, 16)
	want[10] = 1
	require.Equal(t, want, r.Data)
}

func TestApplyLocalOnJointComponentAppliesConjugateToBraLegs(t *testing.T) {
	b := NewDenseBackend()
	c := b.NewComponent([]string{"q0"}, []complex128{1, 0})
	joint := b.Promote(c)
	x := []complex128{0, 1, 1, 0}
	out := b.ApplyLocal(joint, []string{"q0"}, x, 2)
	require.True(t, out.Joint)
	// X|0><0|X = |1><1| = [0,0,0,1]
	require.Equal(t, []complex128{0, 0, 0, 1}, out.Data)
}
