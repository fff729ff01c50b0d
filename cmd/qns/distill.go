// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/luxfi/qns/internal/proto/distill"
	"github.com/luxfi/qns/internal/proto/epr"
	"github.com/luxfi/qns/internal/qchannel"
)

func distillCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "distill",
		Short: "One-shot distillation of a goal pair against a measurement pair",
		Long: `Runs spec.md Testable Properties scenario 3: pre-establishes a
goal pair (A0,B0) and a measurement pair (A1,B1) over a depolarized
channel (default F=0.93), distills, and reports the goal pair's final
fidelity on a win, or notes the lose.`,
		RunE: runDistill,
	}
	addRepeatFlag(cmd)
	addSeedFlag(cmd)
	cmd.Flags().Float64("fidelity", 0.93, "target channel depolarization fidelity")
	return cmd
}

func runDistill(cmd *cobra.Command, args []string) error {
	seed, _ := cmd.Flags().GetString("seed")
	fidelity, _ := cmd.Flags().GetFloat64("fidelity")
	owners := []string{"alice", "bob"}

	for i := 0; i < repeatCount(cmd); i++ {
		h := newHarness(seed, owners)
		h.applyUniformDepolar(owners, fidelity)
		conn := qchannel.New("alice", "bob")
		bobNode, _ := h.ent.Node("bob")

		eprDst := epr.NewDstApp(h.ent, h.net, conn, nil)
		eprDst.StartApplication()
		eprSrc := epr.NewSrcApp(h.ent, h.net, conn, nil)
		eprSrc.StartApplication(bobNode.Address, eprDst.Port())
		eprSrc.GenerateAndDistribute("A0", "B0")
		eprSrc.GenerateAndDistribute("A1", "B1")

		dst := distill.NewDstApp(h.ent, conn, "B0", "B1", nil)
		src := distill.NewSrcApp(h.ent, conn, "A0", "A1", nil)
		reply := src.StartApplication(h.net, bobNode.Address, dst.Port())
		dst.StartApplication(h.net, *reply)

		h.run()

		if win, _ := src.Win(); win {
			printFidelity("A0,B0 (win)", h.ent.CalculateFidelity("A0", "B0"))
		} else {
			fmt.Println("A0,B0: lose")
		}
	}
	return nil
}
