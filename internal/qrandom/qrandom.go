// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package qrandom provides the simulator's one source of randomness: a
// deterministic, seeded stream used by measurement outcome sampling (the
// error models apply their channels as mixtures and draw nothing from
// it). Every run with the same seed must
// reproduce the same sequence of outcomes, so this deliberately does not
// reach for crypto/rand — it seeds DEDIS Kyber's BLAKE2XB extendable
// output function once, from a caller-supplied seed, and reads from that
// single stream for the life of the run.
package qrandom

import (
	"encoding/binary"

	"go.dedis.ch/kyber/v3/xof/blake2xb"
)

// Stream is a deterministic source of uniform floats and Bernoulli
// outcomes, backed by a BLAKE2XB extendable output stream. Not safe for
// concurrent use — the simulator kernel is single-threaded by design, and
// a shared Stream preserves cross-run reproducibility only if every draw
// happens in the same order every time.
type Stream struct {
	xof interface {
		Read(p []byte) (int, error)
	}
}

// New seeds a Stream. The same seed always produces the same sequence of
// Float64/Bernoulli draws.
func New(seed []byte) *Stream {
	return &Stream{xof: blake2xb.New(seed)}
}

// Float64 draws a uniform value in [0, 1).
func (s *Stream) Float64() float64 {
	var buf [8]byte
	if _, err := s.xof.Read(buf[:]); err != nil {
		panic(err)
	}
	// Use the top 53 bits for a uniform double, matching math/rand's
	// construction.
	v := binary.BigEndian.Uint64(buf[:]) >> 11
	return float64(v) / (1 << 53)
}

// Bernoulli reports true with probability p (clamped to [0, 1]).
func (s *Stream) Bernoulli(p float64) bool {
	if p <= 0 {
		return false
	}
	if p >= 1 {
		return true
	}
	return s.Float64() < p
}
