// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package entity

// Actor identifies the caller of a Physical Entity access-controlled
// method: either a named owner, or the reserved System actor that
// bypasses ownership checks entirely. This replaces the original
// model's sentinel owner string ("God") with a two-variant type, so the
// access check becomes pattern-matching instead of a string compare.
type Actor struct {
	system bool
	name   string
}

// User names an ordinary owner ("Alice", "Bob", "Owner_3", ...).
func User(name string) Actor { return Actor{name: name} }

// System is the reserved actor that bypasses ownership checks — used by
// the simulator's own controlled-operation reductions, never by a
// protocol directly.
var System = Actor{system: true}

// IsSystem reports whether a is the reserved System actor.
func (a Actor) IsSystem() bool { return a.system }

// Name returns the owner name; empty for System.
func (a Actor) Name() string { return a.name }

func (a Actor) String() string {
	if a.system {
		return "System"
	}
	return a.name
}
