// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package qnode

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNextPortStartsAtNineAndIncrements(t *testing.T) {
	n := New("alice")
	require.Equal(t, uint16(9), n.NextPort())
	require.Equal(t, uint16(10), n.NextPort())
}

func TestMemoryAddRemoveContains(t *testing.T) {
	m := NewMemory()
	m.Add("q0")
	m.Add("q1")
	require.Equal(t, 2, m.Size())
	require.True(t, m.Contains("q0"))

	require.True(t, m.Remove("q0"))
	require.False(t, m.Contains("q0"))
	require.Equal(t, 1, m.Size())
}

func TestMemoryRemoveAbsentReturnsFalse(t *testing.T) {
	m := NewMemory()
	require.False(t, m.Remove("ghost"))
}
