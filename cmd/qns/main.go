// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "qns",
	Short: "Quantum network simulator scenarios",
	Long: `qns runs the quantum network simulator's protocol scenarios end to end:
EPR distribution, teleportation, distillation (one-shot and nested, plain
and adaptive), and entanglement swapping (chained, coherent, and
nearest-neighbor-restricted). Each subcommand wires a small topology,
runs the protocol to completion on a virtual clock, and reports the
surviving pair's density matrix and fidelity.`,
}

func main() {
	rootCmd.AddCommand(
		eprCmd(),
		teleportCmd(),
		teleportChainAdaptCmd(),
		distillCmd(),
		distillNestedCmd(),
		distillNestedAdaptCmd(),
		entSwapCmd(),
		entSwapAdaptCmd(),
		entSwapAdaptLocalCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func addRepeatFlag(cmd *cobra.Command) {
	cmd.Flags().Int("repeat", 1, "number of times to run the scenario")
}

func addFidelityFlag(cmd *cobra.Command) {
	cmd.Flags().Float64("fidelity", 0.95, "target channel depolarization fidelity")
}

func addSeedFlag(cmd *cobra.Command) {
	cmd.Flags().String("seed", "qns-cli-seed", "deterministic measurement/channel random seed")
}
