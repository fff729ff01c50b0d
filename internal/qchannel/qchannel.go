// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package qchannel implements the Quantum Channel: a value type over an
// ordered (src, dst) pair of owners, used as a lookup key for per-channel
// depolarization bindings and protocol installation.
package qchannel

// Channel is value-equal on the ordered (Src, Dst) owner pair — safe to
// use as a map key.
type Channel struct {
	Src string
	Dst string
}

// New returns the channel from Src to Dst.
func New(src, dst string) Channel {
	return Channel{Src: src, Dst: dst}
}

// depolarSetter is the one thing SetDepolarModel needs from the Physical
// Entity: a place to record an (src, dst) -> fidelity binding. Defined
// here (rather than importing internal/entity) to avoid a dependency
// cycle, since entity depends on qchannel for its Channel-keyed maps.
type depolarSetter interface {
	SetChannelDepolar(ch Channel, fidelity float64)
}

// SetDepolarModel records an F-fidelity depolarization binding for this
// channel in entity.
func (c Channel) SetDepolarModel(fidelity float64, entity depolarSetter) {
	entity.SetChannelDepolar(c, fidelity)
}
