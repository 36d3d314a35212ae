package booking

import (
	"sort"

	"mesaYaApi/internal/model"
)

// forEachCombination visits every k-element subset of {0..n-1} in
// lexicographic order. The index slice passed to visit is reused between
// calls; callers must copy it if they keep it.
func forEachCombination(n, k int, visit func(idx []int)) {
	if k <= 0 || k > n {
		return
	}
	idx := make([]int, k)
	for i := range idx {
		idx[i] = i
	}
	for {
		visit(idx)
		// advance to the next combination
		i := k - 1
		for i >= 0 && idx[i] == n-k+i {
			i--
		}
		if i < 0 {
			return
		}
		idx[i]++
		for j := i + 1; j < k; j++ {
			idx[j] = idx[j-1] + 1
		}
	}
}

// SelectTables picks the best combination of at most maxTables tables that
// seats the party, or nil when none exists.
//
// Subsets are tried by size: all single tables first, then pairs, then
// triples; the first size with a feasible subset wins, so fewer tables are
// always preferred. Within a size, candidates are ranked by excess capacity
// (total minus party size, smaller is better) and ties broken by the
// largest single-table capacity in the subset (smaller is better, to avoid
// tying up an oversized table when an even split exists).
//
// The enumeration is brute force: O(n^k) for the k-table pass. The seeded
// fleet has five tables per location, which keeps this trivial; revisit the
// bound before enlarging the fleet substantially.
func SelectTables(tables []model.Table, partySize int, maxTables int) []model.Table {
	if len(tables) == 0 || partySize <= 0 {
		return nil
	}

	sorted := make([]model.Table, len(tables))
	copy(sorted, tables)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Capacity != sorted[j].Capacity {
			return sorted[i].Capacity < sorted[j].Capacity
		}
		return sorted[i].TableNumber < sorted[j].TableNumber
	})

	limit := maxTables
	if limit > len(sorted) {
		limit = len(sorted)
	}

	for size := 1; size <= limit; size++ {
		var best []model.Table
		bestExcess := -1
		bestMaxCap := 0

		forEachCombination(len(sorted), size, func(idx []int) {
			total := 0
			maxCap := 0
			for _, i := range idx {
				cap := int(sorted[i].Capacity)
				total += cap
				if cap > maxCap {
					maxCap = cap
				}
			}
			if total < partySize {
				return
			}
			excess := total - partySize
			if best == nil || excess < bestExcess || (excess == bestExcess && maxCap < bestMaxCap) {
				bestExcess = excess
				bestMaxCap = maxCap
				best = best[:0]
				for _, i := range idx {
					best = append(best, sorted[i])
				}
			}
		})

		if best != nil {
			return best
		}
	}
	return nil
}
