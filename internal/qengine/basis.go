// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package qengine

import "math"

var invSqrt2 = complex(1/math.Sqrt2, 0)

// Ket0, Ket1 are the computational basis state vectors.
var (
	Ket0 = []complex128{1, 0}
	Ket1 = []complex128{0, 1}
)

// BellPhiPlus is the canonical Bell state |Φ+⟩ = (|00⟩+|11⟩)/√2, used by
// EPR distribution (generate mixed/pure qubits in this state) and by
// CalculateFidelity's overlap computation.
var BellPhiPlus = []complex128{invSqrt2, 0, 0, invSqrt2}
