package asnrank

import (
	"math"
	"testing"

	"gotest.tools/v3/assert"
)

func TestAggregator_Add(t *testing.T) {
	aggregator := NewAggregator()

	aggregator.Add(100, "ISP-A", &Measurement{Download: 50, Upload: 10, RTT: 15})
	aggregator.Add(100, "ISP-A renamed", &Measurement{Download: 70, Upload: 20, RTT: 0})

	aggregate, ok := aggregator.Get(100)
	assert.Equal(t, ok, true)
	assert.DeepEqual(t, *aggregate, Aggregate{
		ISP:      "ISP-A",
		Count:    2,
		DLSum:    120,
		DLSqSum:  50*50 + 70*70,
		ULSum:    30,
		ULSqSum:  10*10 + 20*20,
		RTTCount: 1,
		RTTSum:   15,
	})

	_, ok = aggregator.Get(200)
	assert.Equal(t, ok, false)
	assert.Equal(t, aggregator.Len(), 1)
}

func TestAggregator_Finalize(t *testing.T) {
	aggregator := NewAggregator()

	aggregator.Add(100, "ISP-A", &Measurement{Download: 50, Upload: 10, RTT: 15})
	aggregator.Add(100, "ISP-A", &Measurement{Download: 70, Upload: 20, RTT: 0})

	results := aggregator.Finalize()

	assert.Equal(t, len(results), 1)
	result := results[0]
	assert.Equal(t, result.ASN, ASN(100))
	assert.Equal(t, result.ISP, "ISP-A")
	assert.Equal(t, result.Count, 2)
	assert.Equal(t, result.AvgDL, 60.0)
	assert.Equal(t, result.AvgUL, 15.0)
	assert.Equal(t, result.RTTCount, 1)
	assert.Equal(t, result.AvgRTT, 15.0)
	assert.Assert(t, math.Abs(result.StdErrDL-10/math.Sqrt(2)) < 1e-9)
	assert.Assert(t, math.Abs(result.StdErrUL-5/math.Sqrt(2)) < 1e-9)
}

func TestAggregator_FinalizeWithoutRTT(t *testing.T) {
	aggregator := NewAggregator()

	aggregator.Add(100, "ISP-A", &Measurement{Download: 50, Upload: 10, RTT: 0})

	results := aggregator.Finalize()

	assert.Equal(t, results[0].RTTCount, 0)
	assert.Equal(t, results[0].HasRTT(), false)
	assert.Assert(t, math.IsInf(results[0].AvgRTT, 1))
	assert.Equal(t, results[0].StdErrDL, 0.0)
}

func TestAggregator_FinalizeKeepsFirstSeenOrder(t *testing.T) {
	aggregator := NewAggregator()

	for _, asn := range []ASN{300, 100, 200, 100, 300} {
		aggregator.Add(asn, "", &Measurement{Download: 1, Upload: 1, RTT: 1})
	}

	asns := []ASN{}
	for _, result := range aggregator.Finalize() {
		asns = append(asns, result.ASN)
	}

	assert.DeepEqual(t, asns, []ASN{300, 100, 200})
}

func TestFinalize_Mean(t *testing.T) {
	downloads := []float64{127, 19, 139, 34, 134, 236, 221, 61, 146, 151}
	aggregator := NewAggregator()

	sum := float64(0)
	for _, download := range downloads {
		aggregator.Add(1, "", &Measurement{Download: download, Upload: 0, RTT: 10})
		sum += download
	}

	results := aggregator.Finalize()

	assert.Assert(t, math.Abs(results[0].AvgDL-sum/float64(len(downloads))) < 1e-9)
	assert.Equal(t, results[0].AvgUL, 0.0)
	assert.Equal(t, results[0].AvgRTT, 10.0)
}

func TestGetStdErrUsingMean_Overflow(t *testing.T) {
	assert.Equal(t, getStdErrUsingMean(math.Inf(1), 1e200, 2), 0.0)
	assert.Equal(t, getStdErrUsingMean(math.NaN(), 1, 2), 0.0)
	assert.Equal(t, getStdErrUsingMean(5, 2, 1), 1.0)
}
