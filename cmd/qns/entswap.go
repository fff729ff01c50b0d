// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/luxfi/qns/internal/proto/entswap"
	"github.com/luxfi/qns/internal/proto/epr"
	"github.com/luxfi/qns/internal/qchannel"
)

func entSwapCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ent-swap",
		Short: "Chain N pre-distributed hops into one long-range EPR pair",
		Long: `Pre-distributes one EPR pair per adjacent owner in a chain,
then has every middle owner Bell-measure its local pair and report the
outcome classically to the chain's last owner, who corrects its half
once every report has arrived.`,
		RunE: runEntSwap,
	}
	addRepeatFlag(cmd)
	addSeedFlag(cmd)
	addFidelityFlag(cmd)
	cmd.Flags().Int("hops", 3, "number of chained EPR hops (>= 2)")
	return cmd
}

func chainOwners(hops int) []string {
	owners := make([]string, hops+1)
	for i := range owners {
		owners[i] = fmt.Sprintf("hop%d", i)
	}
	return owners
}

// buildEprChain pre-distributes one EPR pair per adjacent owner in the
// chain, returning each owner's former (left) and latter (right) half
// indexed by rank. Rank 0 has no former half and rank hops has no latter
// half.
func buildEprChain(h *harness, owners []string) (qubitsFormer, qubitsLatter []string) {
	hops := len(owners) - 1
	qubitsFormer = make([]string, hops+1)
	qubitsLatter = make([]string, hops+1)
	for hop := 0; hop < hops; hop++ {
		conn := qchannel.New(owners[hop], owners[hop+1])
		nextNode, _ := h.ent.Node(owners[hop+1])

		dst := epr.NewDstApp(h.ent, h.net, conn, nil)
		dst.StartApplication()
		src := epr.NewSrcApp(h.ent, h.net, conn, nil)
		src.StartApplication(nextNode.Address, dst.Port())

		srcQubit := fmt.Sprintf("R%d", hop)
		dstQubit := fmt.Sprintf("L%d", hop+1)
		src.GenerateAndDistribute(srcQubit, dstQubit)
		qubitsLatter[hop] = srcQubit
		qubitsFormer[hop+1] = dstQubit
	}
	return qubitsFormer, qubitsLatter
}

func runEntSwap(cmd *cobra.Command, args []string) error {
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

		lastOwner := owners[hops]
		lastNode, _ := h.ent.Node(lastOwner)
		lastConn := qchannel.New(owners[0], lastOwner)

		dst := entswap.NewDstApp(h.ent, lastConn, qubitsFormer[hops], hops-1, nil)
		dst.StartApplication(h.net)

		for rank := 1; rank < hops; rank++ {
			conn := qchannel.New(owners[rank], lastOwner)
			src := entswap.NewSrcApp(h.ent, conn, qubitsFormer[rank], qubitsLatter[rank], nil)
			src.StartApplication(h.net, lastNode.Address, dst.Port())
		}

		h.run()

		printDensityMatrix(qubitsLatter[0]+","+qubitsFormer[hops], h.ent.PeekDM([]string{qubitsLatter[0], qubitsFormer[hops]}))
	}
	return nil
}
