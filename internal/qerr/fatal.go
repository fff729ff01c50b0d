// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package qerr carries the one panic/recover boundary shared by every core
// package: the fatal half of the error taxonomy (invariant violations,
// duplicate qubit generation, malformed classical payloads, out-of-epsilon
// measurement probabilities) panics with a Fatal value instead of bubbling
// an error return through every caller, and is recovered exactly once, at
// the simulator kernel's callback dispatch boundary.
package qerr

import "fmt"

// Fatal is the panic payload for taxonomy classes that abort a run: class 1
// (invariant violation), class 4b (qubit double-generation), class 5
// (malformed classical message), and class 6 (measurement probability with
// an out-of-epsilon imaginary part).
type Fatal struct {
	Err error
}

func (f Fatal) Error() string { return f.Err.Error() }

func (f Fatal) Unwrap() error { return f.Err }

// Panic raises a Fatal carrying err. Call sites use this instead of a bare
// panic so the kernel's recover boundary can distinguish a fatal taxonomy
// class from a genuine programming bug.
func Panic(err error) {
	panic(Fatal{Err: err})
}

// Panicf is Panic with fmt.Errorf-style formatting.
func Panicf(format string, args ...interface{}) {
	panic(Fatal{Err: fmt.Errorf(format, args...)})
}
