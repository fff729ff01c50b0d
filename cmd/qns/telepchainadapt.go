// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package main

import (
	"fmt"
	"math"

	"github.com/spf13/cobra"

	"github.com/luxfi/qns/internal/proto/epr"
	"github.com/luxfi/qns/internal/proto/telepchainadapt"
	"github.com/luxfi/qns/internal/qchannel"
)

func teleportChainAdaptCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "teleport-chain-adapt",
		Short: "Relay a qubit state down a chain of owners without a classical correction",
		Long: `Teleports |psi> = sqrt(5/7)|0> + sqrt(2/7)|1> through a chain
of owners one hop at a time, coherently folding each predecessor's
spent qubits instead of measuring a correction, and reports the final
owner's peeked density matrix.`,
		RunE: runTeleportChainAdapt,
	}
	addRepeatFlag(cmd)
	addSeedFlag(cmd)
	addFidelityFlag(cmd)
	cmd.Flags().Int("hops", 3, "number of relay hops (values below 2 run as 2)")
	return cmd
}

func runTeleportChainAdapt(cmd *cobra.Command, args []string) error {
	seed, _ := cmd.Flags().GetString("seed")
	fidelity, _ := cmd.Flags().GetFloat64("fidelity")
	hops, _ := cmd.Flags().GetInt("hops")
	if hops < 2 {
		hops = 2
	}
	owners := chainOwners(hops)
	input := []complex128{complex(math.Sqrt(5.0/7.0), 0), complex(math.Sqrt(2.0/7.0), 0)}

	for i := 0; i < repeatCount(cmd); i++ {
		h := newHarness(seed, owners)
		h.applyUniformDepolar(owners, fidelity)

		last := len(owners) - 1

		// One epr.DstApp per hop, bound on the receiving owner, so every
		// relay/first owner's own outbound EPR pair has a real adoption
		// port to target (distinct from the chain's relay-message port).
		eprDsts := make([]*epr.DstApp, last)
		for hop := 0; hop < last; hop++ {
			conn := qchannel.New(owners[hop], owners[hop+1])
			eprDsts[hop] = epr.NewDstApp(h.ent, h.net, conn, nil)
			eprDsts[hop].StartApplication()
		}

		apps := make([]*telepchainadapt.App, len(owners))
		apps[last] = telepchainadapt.NewLastOwnerApp(h.ent, owners[last], nil)
		for rank := last - 1; rank > 0; rank-- {
			conn := qchannel.New(owners[rank], owners[rank+1])
			apps[rank] = telepchainadapt.NewRelayOwnerApp(h.ent, h.net, conn, qubitName("E", rank), qubitName("F", rank), nil)
		}
		firstConn := qchannel.New(owners[0], owners[1])
		apps[0] = telepchainadapt.NewFirstOwnerApp(h.ent, h.net, firstConn, input, "psi", "E0", "F0", nil)

		apps[last].StartApplication(h.net, "", 0, 0)
		for rank := last - 1; rank >= 0; rank-- {
			succNode, _ := h.ent.Node(owners[rank+1])
			apps[rank].StartApplication(h.net, succNode.Address, eprDsts[rank].Port(), apps[rank+1].Port())
		}

		h.run()

		printDensityMatrix(fmt.Sprintf("%s final qubit", owners[last]), apps[last].Output())
	}
	return nil
}
