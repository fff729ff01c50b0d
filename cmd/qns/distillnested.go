// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"github.com/spf13/cobra"

	"github.com/luxfi/qns/internal/proto/distillnested"
	"github.com/luxfi/qns/internal/proto/epr"
	"github.com/luxfi/qns/internal/qchannel"
)

func distillNestedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "distill-nested",
		Short: "Recursive-halving distillation down to one surviving pair",
		Long: `Combines 2^n pre-distributed pairs down to one via recursive
pairwise distillation, reporting whether the root combine won.`,
		RunE: runDistillNested,
	}
	addRepeatFlag(cmd)
	addSeedFlag(cmd)
	addFidelityFlag(cmd)
	cmd.Flags().Int("pairs", 4, "number of EPR pairs to combine (power of two)")
	return cmd
}

func runDistillNested(cmd *cobra.Command, args []string) error {
	seed, _ := cmd.Flags().GetString("seed")
	fidelity, _ := cmd.Flags().GetFloat64("fidelity")
	pairs, _ := cmd.Flags().GetInt("pairs")
	owners := []string{"alice", "bob"}

	for i := 0; i < repeatCount(cmd); i++ {
		h := newHarness(seed, owners)
		h.applyUniformDepolar(owners, fidelity)
		conn := qchannel.New("alice", "bob")
		bobNode, _ := h.ent.Node("bob")

		srcQubits := make([]string, pairs)
		dstQubits := make([]string, pairs)
		for i := range srcQubits {
			srcQubits[i] = qubitName("A", i)
			dstQubits[i] = qubitName("B", i)
		}

		eprDst := epr.NewDstApp(h.ent, h.net, conn, nil)
		eprDst.StartApplication()

		dst := distillnested.NewDstApp(h.ent, conn, nil)
		src := distillnested.NewSrcApp(h.ent, h.net, h.clock, conn, nil)
		reply := src.StartApplication(h.net, bobNode.Address, eprDst.Port(), dst.Port(), srcQubits, dstQubits)
		dst.StartApplication(h.net, reply)

		h.run()

		printWin("distill-nested", src.Win())
	}
	return nil
}

func qubitName(prefix string, i int) string {
	if i < 10 {
		return prefix + string(rune('0'+i))
	}
	return prefix + string(rune('0'+i/10)) + string(rune('0'+i%10))
}

func printWin(label string, win bool) {
	if win {
		println(label + ": win")
	} else {
		println(label + ": lose")
	}
}
