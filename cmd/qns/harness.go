// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/luxfi/qns/internal/entity"
	"github.com/luxfi/qns/internal/qchannel"
	"github.com/luxfi/qns/internal/simkernel"
	"github.com/luxfi/qns/internal/telemetry"
)

// harness is the small topology + entity + clock bundle every scenario
// command needs, matching the pieces examples/*.cc wires up by hand at
// the top of each main().
type harness struct {
	clock *simkernel.VirtualClock
	net   *simkernel.Network
	ent   *entity.Entity
}

// newHarness builds a fresh entity over the given owners, addressing
// each owner's node at "<owner>-addr" and registering a metrics
// collector against a private (non-global) prometheus registry.
func newHarness(seed string, owners []string) *harness {
	clock := simkernel.NewVirtualClock(nil)
	clock.StopAt(1e6)
	ent := entity.New(clock, []byte(seed), nil)

	metrics, err := telemetry.New(prometheus.NewRegistry())
	if err == nil {
		ent.SetMetrics(metrics)
	}

	for _, o := range owners {
		node := ent.AddOwner(o)
		node.SetAddress(o + "-addr")
	}

	net := simkernel.NewNetwork(clock, simkernel.NewLossyLink(1e6, 1e-3))
	return &harness{clock: clock, net: net, ent: ent}
}

// applyUniformDepolar binds the same channel-depolarization model to
// every directed pair among owners, mirroring how each example wires a
// single "--fidelity" flag across its whole topology.
func (h *harness) applyUniformDepolar(owners []string, fidelity float64) {
	for _, src := range owners {
		for _, dst := range owners {
			if src == dst {
				continue
			}
			qchannel.New(src, dst).SetDepolarModel(fidelity, h.ent)
		}
	}
}

func (h *harness) run() { h.clock.Run() }

func printDensityMatrix(label string, dm []complex128) {
	fmt.Printf("%s density matrix:\n", label)
	dim := 1
	for dim*dim < len(dm) {
		dim++
	}
	for i := 0; i < dim; i++ {
		for j := 0; j < dim; j++ {
			fmt.Printf("  %6.3f%+6.3fi", real(dm[i*dim+j]), imag(dm[i*dim+j]))
		}
		fmt.Println()
	}
}

func printFidelity(label string, f float64) {
	fmt.Printf("%s fidelity: %.4f\n", label, f)
}

func repeatCount(cmd *cobra.Command) int {
	n, _ := cmd.Flags().GetInt("repeat")
	if n < 1 {
		n = 1
	}
	return n
}
