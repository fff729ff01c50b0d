// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"github.com/spf13/cobra"

	"github.com/luxfi/qns/internal/proto/entswapadapt"
)

func entSwapAdaptCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ent-swap-adapt",
		Short: "Coherent chained entanglement swap with two global flag qubits",
		Long: `Pre-distributes one EPR pair per adjacent owner in a chain,
then folds every middle owner's Bell rotation coherently into two
running flag qubits instead of measuring and broadcasting, correcting
the chain's last qubit once the fold is complete.`,
		RunE: runEntSwapAdapt,
	}
	addRepeatFlag(cmd)
	addSeedFlag(cmd)
	addFidelityFlag(cmd)
	cmd.Flags().Int("hops", 3, "number of chained EPR hops (>= 2)")
	return cmd
}

func runEntSwapAdapt(cmd *cobra.Command, args []string) error {
	seed, _ := cmd.Flags().GetString("seed")
	fidelity, _ := cmd.Flags().GetFloat64("fidelity")
	hops, _ := cmd.Flags().GetInt("hops")
	if hops < 2 {
		hops = 2
	}
	owners := chainOwners(hops)

	for i := 0; i < repeatCount(cmd); i++ {
		h := newHarness(seed, owners)
		h.applyUniformDepolar(owners, fidelity)

		qubitsFormer, qubitsLatter := buildEprChain(h, owners)

		app := entswapadapt.NewApp(h.ent, h.clock, qubitsFormer, qubitsLatter, nil)
		app.StartApplication()

		h.run()

		lastQubit := qubitsFormer[hops]
		printDensityMatrix(qubitsLatter[0]+","+lastQubit, h.ent.PeekDM([]string{qubitsLatter[0], lastQubit}))
	}
	return nil
}
