// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"math"

	"github.com/spf13/cobra"

	"github.com/luxfi/qns/internal/proto/epr"
	"github.com/luxfi/qns/internal/proto/telep"
	"github.com/luxfi/qns/internal/qchannel"
)

func teleportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "teleport",
		Short: "One-shot teleportation of a single qubit state",
		Long: `Runs spec.md Testable Properties scenario 2: teleports
|psi> = sqrt(5/7)|0> + sqrt(2/7)|1> from Alice to Bob over a
depolarized channel (default F=0.93), reporting Bob's final density
matrix.`,
		RunE: runTeleport,
	}
	addRepeatFlag(cmd)
	addSeedFlag(cmd)
	cmd.Flags().Float64("fidelity", 0.93, "target channel depolarization fidelity")
	return cmd
}

func runTeleport(cmd *cobra.Command, args []string) error {
	seed, _ := cmd.Flags().GetString("seed")
	fidelity, _ := cmd.Flags().GetFloat64("fidelity")
	owners := []string{"alice", "bob"}
	input := []complex128{complex(math.Sqrt(5.0/7.0), 0), complex(math.Sqrt(2.0/7.0), 0)}

	for i := 0; i < repeatCount(cmd); i++ {
		h := newHarness(seed, owners)
		h.applyUniformDepolar(owners, fidelity)
		conn := qchannel.New("alice", "bob")

		eprDst := epr.NewDstApp(h.ent, h.net, conn, nil)
		eprDst.StartApplication()

		dst := telep.NewDstApp(h.ent, conn, "B0", nil)
		dst.StartApplication(h.net)

		src := telep.NewSrcApp(h.ent, h.net, h.clock, conn, "A0", "A1", "B0", input, nil)
		bobNode, _ := h.ent.Node("bob")
		src.StartApplication(h.net, bobNode.Address, eprDst.Port(), dst.Port())

		h.run()

		printDensityMatrix("B0", h.ent.PeekDM([]string{"B0"}))
	}
	return nil
}
