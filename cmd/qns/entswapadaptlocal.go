// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"github.com/spf13/cobra"

	"github.com/luxfi/qns/internal/proto/entswapadaptlocal"
)

func entSwapAdaptLocalCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ent-swap-adapt-local",
		Short: "Nearest-neighbor-restricted coherent chained entanglement swap",
		Long: `Runs spec.md Testable Properties scenario 5: pre-distributes
one EPR pair per adjacent owner in an 8-hop chain (default F=0.95), then
relays every middle owner's correction into only its immediate
successor (no global flag qubits), correcting the last owner's qubit
with the second-to-last owner's accumulated halves.`,
		RunE: runEntSwapAdaptLocal,
	}
	addRepeatFlag(cmd)
	addSeedFlag(cmd)
	cmd.Flags().Float64("fidelity", 0.95, "per-hop channel depolarization fidelity")
	cmd.Flags().Int("hops", 8, "number of chained EPR hops (>= 3)")
	return cmd
}

func runEntSwapAdaptLocal(cmd *cobra.Command, args []string) error {
	seed, _ := cmd.Flags().GetString("seed")
	fidelity, _ := cmd.Flags().GetFloat64("fidelity")
	hops, _ := cmd.Flags().GetInt("hops")
	if hops < 3 {
		hops = 3
	}
	owners := chainOwners(hops)

	for i := 0; i < repeatCount(cmd); i++ {
		h := newHarness(seed, owners)
		h.applyUniformDepolar(owners, fidelity)

		qubitsFormer, qubitsLatter := buildEprChain(h, owners)

		app := entswapadaptlocal.NewApp(h.ent, h.clock, qubitsFormer, qubitsLatter, nil)
		app.StartApplication()

		h.run()

		lastQubit := qubitsFormer[hops]
		printDensityMatrix(qubitsLatter[0]+","+lastQubit, h.ent.PeekDM([]string{qubitsLatter[0], lastQubit}))
		printFidelity(qubitsLatter[0]+","+lastQubit, h.ent.CalculateFidelity(qubitsLatter[0], lastQubit))
	}
	return nil
}
