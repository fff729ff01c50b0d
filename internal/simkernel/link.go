// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package simkernel

// Link is the classical-link collaborator: configurable as (data-rate,
// delay), carrying opaque byte payloads between owner addresses. Transit
// delay is deliberately simplified to a fixed per-send delay rather than a
// byte-proportional data-rate model — see LossyLink's doc comment.
type Link interface {
	// Send returns the virtual-time delay the kernel should wait before
	// the recipient observes payload; scheduling the delivery itself is
	// Network.Send's job.
	Send(payload []byte) float64
}

// LossyLink is the default Link: a fixed (data-rate, delay) pair. The
// wire format (spec.md §6) is small fixed-size ASCII payloads, so the
// data-rate term's effect on transit time is negligible next to the fixed
// propagation delay; DataRate is carried for fidelity to the collaborator
// shape and reported but not used to scale delay.
type LossyLink struct {
	DataRate float64 // bits/sec, informational
	Delay    float64 // virtual seconds, fixed propagation delay
}

// NewLossyLink returns a Link with the given data rate and delay.
func NewLossyLink(dataRate, delay float64) *LossyLink {
	return &LossyLink{DataRate: dataRate, Delay: delay}
}

func (l *LossyLink) Send(payload []byte) float64 { return l.Delay }
