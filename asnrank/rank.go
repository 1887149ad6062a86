package asnrank

import (
	"cmp"
	"slices"
)

// compareResults orders by higher download, then higher upload, then lower
// latency. An unmeasured latency (+Inf) loses against any measured one.
func compareResults(a, b *Result) int {
	if c := cmp.Compare(b.AvgDL, a.AvgDL); c != 0 {
		return c
	}
	if c := cmp.Compare(b.AvgUL, a.AvgUL); c != 0 {
		return c
	}
	return cmp.Compare(a.AvgRTT, b.AvgRTT)
}

// Rank sorts results in place. Full ties keep their input order.
func Rank(results []*Result) {
	slices.SortStableFunc(results, compareResults)
}
