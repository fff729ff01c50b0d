// Copyright (C) 2019-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package tensornet

// forEachIndex enumerates every multi-index over extents in row-major
// order (the last dimension varies fastest), calling f with a reusable
// index slice.
func forEachIndex(extents []int, f func(idx []int)) {
	n := len(extents)
	if n == 0 {
		f(nil)
		return
	}
	total := 1
	for _, e := range extents {
		total *= e
	}
	idx := make([]int, n)
	for c := 0; c < total; c++ {
		f(idx)
		for d := n - 1; d >= 0; d-- {
			idx[d]++
			if idx[d] < extents[d] {
				break
			}
			idx[d] = 0
		}
	}
}

func flatIndex(extents, idx []int) int {
	f := 0
	for d, e := range extents {
		f = f*e + idx[d]
	}
	return f
}

func product(extents []int) int {
	n := 1
	for _, e := range extents {
		n *= e
	}
	return n
}

// outerProduct concatenates two tensors' leg lists (a's legs first, then
// b's) with no contraction: result[i,j] = a[i]*b[j].
func outerProduct(aExt []int, aData []complex128, bExt []int, bData []complex128) ([]int, []complex128) {
	newExt := append(append([]int(nil), aExt...), bExt...)
	newData := make([]complex128, product(newExt))
	forEachIndex(aExt, func(aIdx []int) {
		av := aData[flatIndex(aExt, aIdx)]
		ai := flatIndex(aExt, aIdx)
		forEachIndex(bExt, func(bIdx []int) {
			outIdx := make([]int, 0, len(newExt))
			outIdx = append(outIdx, aIdx...)
			outIdx = append(outIdx, bIdx...)
			newData[flatIndex(newExt, outIdx)] = av * bData[flatIndex(bExt, bIdx)]
			_ = ai
		})
	})
	return newExt, newData
}

// permuteLegs reorders a tensor's legs according to perm: the new leg at
// position i is the old leg at position perm[i].
func permuteLegs(ext []int, data []complex128, perm []int) ([]int, []complex128) {
	n := len(ext)
	newExt := make([]int, n)
	for i, p := range perm {
		newExt[i] = ext[p]
	}
	newData := make([]complex128, len(data))
	oldIdx := make([]int, n)
	forEachIndex(newExt, func(newIdx []int) {
		for i, p := range perm {
			oldIdx[p] = newIdx[i]
		}
		newData[flatIndex(newExt, newIdx)] = data[flatIndex(ext, oldIdx)]
	})
	return newExt, newData
}

// selfTraceLegs contracts legA against legB within a single tensor (they
// must share the same extent), summing the diagonal and removing both
// legs — the array-level implementation of "partial trace over one
// qubit's own ket/bra leg pair."
func selfTraceLegs(ext []int, data []complex128, legA, legB int) ([]int, []complex128) {
	if legA > legB {
		legA, legB = legB, legA
	}
	newExt := make([]int, 0, len(ext)-2)
	for i, e := range ext {
		if i == legA || i == legB {
			continue
		}
		newExt = append(newExt, e)
	}
	newData := make([]complex128, product(newExt))
	outIdx := make([]int, len(newExt))
	forEachIndex(ext, func(idx []int) {
		if idx[legA] != idx[legB] {
			return
		}
		o := 0
		for i, v := range idx {
			if i == legA || i == legB {
				continue
			}
			outIdx[o] = v
			o++
		}
		newData[flatIndex(newExt, outIdx)] += data[flatIndex(ext, idx)]
	})
	return newExt, newData
}

func conjugate(data []complex128) []complex128 {
	out := make([]complex128, len(data))
	for i, v := range data {
		out[i] = complex(real(v), -imag(v))
	}
	return out
}
