// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package qrandom

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSameSeedReproducesSameSequence(t *testing.T) {
	seed := []byte("qns-test-seed")
	a := New(seed)
	b := New(seed)
	for i := 0; i < 16; i++ {
		require.Equal(t, a.Float64(), b.Float64())
	}
}

func TestBernoulliBoundaryProbabilities(t *testing.T) {
	s := New([]byte("boundary"))
	require.False(t, s.Bernoulli(0))
	require.True(t, s.Bernoulli(1))
}

func TestFloat64StaysInUnitRange(t *testing.T) {
	s := New([]byte("range-check"))
	for i := 0; i < 1000; i++ {
		v := s.Float64()
		require.GreaterOrEqual(t, v, 0.0)
		require.Less(t, v, 1.0)
	}
}
