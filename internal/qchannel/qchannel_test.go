// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package qchannel

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type fakeEntity struct {
	bindings map[Channel]float64
}

func (f *fakeEntity) SetChannelDepolar(ch Channel, fidelity float64) {
	if f.bindings == nil {
		f.bindings = make(map[Channel]float64)
	}
	f.bindings[ch] = fidelity
}

func TestChannelIsValueEqualOnOrderedPair(t *testing.T) {
	require.Equal(t, New("alice", "bob"), New("alice", "bob"))
	require.NotEqual(t, New("alice", "bob"), New("bob", "alice"))
}

func TestSetDepolarModelRecordsBinding(t *testing.T) {
	e := &fakeEntity{}
	ch := New("alice", "bob")
	ch.SetDepolarModel(0.93, e)
	require.InDelta(t, 0.93, e.bindings[ch], 1e-9)
}
