// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"github.com/spf13/cobra"

	"github.com/luxfi/qns/internal/proto/epr"
	"github.com/luxfi/qns/internal/qchannel"
)

func eprCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "epr",
		Short: "Distribute a single EPR pair from Alice to Bob",
		Long: `Runs spec.md Testable Properties scenario 1: a two-owner EPR
distribution with noise disabled by default, reporting the Bell density
matrix.`,
		RunE: runEPR,
	}
	addRepeatFlag(cmd)
	addSeedFlag(cmd)
	cmd.Flags().Float64("fidelity", 1, "target channel depolarization fidelity (1 = noiseless)")
	return cmd
}

func runEPR(cmd *cobra.Command, args []string) error {
	seed, _ := cmd.Flags().GetString("seed")
	fidelity, _ := cmd.Flags().GetFloat64("fidelity")
	owners := []string{"alice", "bob"}

	for i := 0; i < repeatCount(cmd); i++ {
		h := newHarness(seed, owners)
		h.applyUniformDepolar(owners, fidelity)
		conn := qchannel.New("alice", "bob")

		dst := epr.NewDstApp(h.ent, h.net, conn, nil)
		dst.StartApplication()

		src := epr.NewSrcApp(h.ent, h.net, conn, nil)
		bobNode, _ := h.ent.Node("bob")
		src.StartApplication(bobNode.Address, dst.Port())
		src.GenerateAndDistribute("A0", "B0")

		h.run()

		printDensityMatrix("A0,B0", h.ent.PeekDM([]string{"A0", "B0"}))
	}
	return nil
}
