package asnrank

import "math"

func getMean(sum float64, n int) float64 {
	return sum / float64(n)
}

func getStdErrUsingMean(sqSum float64, mean float64, n int) float64 {
	variance := getMean(sqSum, n) - (mean * mean)
	// rounding can leave a tiny negative residue for constant series
	if variance <= 0 {
		return 0
	}

	ret := math.Sqrt(variance) / math.Sqrt(float64(n))
	if math.IsNaN(ret) || math.IsInf(ret, 0) {
		return 0
	}

	return ret
}

func finalize(asn ASN, aggregate *Aggregate) *Result {
	ret := &Result{
		ASN:      asn,
		ISP:      aggregate.ISP,
		Count:    aggregate.Count,
		RTTCount: aggregate.RTTCount,
		AvgRTT:   math.Inf(1),
	}

	ret.AvgDL = getMean(aggregate.DLSum, aggregate.Count)
	ret.AvgUL = getMean(aggregate.ULSum, aggregate.Count)
	ret.StdErrDL = getStdErrUsingMean(aggregate.DLSqSum, ret.AvgDL, aggregate.Count)
	ret.StdErrUL = getStdErrUsingMean(aggregate.ULSqSum, ret.AvgUL, aggregate.Count)

	if aggregate.RTTCount > 0 {
		ret.AvgRTT = getMean(aggregate.RTTSum, aggregate.RTTCount)
	}

	return ret
}
