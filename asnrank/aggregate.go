package asnrank

// Aggregator accumulates per-ASN sums in a single pass. It is not safe for
// concurrent use.
type Aggregator struct {
	aggregates map[ASN]*Aggregate
	order      []ASN
}

func NewAggregator() *Aggregator {
	return &Aggregator{
		aggregates: map[ASN]*Aggregate{},
		order:      []ASN{},
	}
}

// Add accounts one measurement to asn. isp is only recorded the first time
// asn is seen.
func (a *Aggregator) Add(asn ASN, isp string, measurement *Measurement) {
	aggregate, ok := a.aggregates[asn]
	if !ok {
		aggregate = &Aggregate{ISP: isp}
		a.aggregates[asn] = aggregate
		a.order = append(a.order, asn)
	}

	aggregate.Count += 1
	aggregate.DLSum += measurement.Download
	aggregate.DLSqSum += measurement.Download * measurement.Download
	aggregate.ULSum += measurement.Upload
	aggregate.ULSqSum += measurement.Upload * measurement.Upload

	// zero RTT means "not measured"
	if measurement.RTT > 0 {
		aggregate.RTTCount += 1
		aggregate.RTTSum += measurement.RTT
	}
}

func (a *Aggregator) Len() int {
	return len(a.order)
}

func (a *Aggregator) Get(asn ASN) (*Aggregate, bool) {
	aggregate, ok := a.aggregates[asn]
	return aggregate, ok
}

// Finalize computes averages for every aggregate, in first-seen order.
func (a *Aggregator) Finalize() []*Result {
	ret := make([]*Result, 0, len(a.order))

	for _, asn := range a.order {
		ret = append(ret, finalize(asn, a.aggregates[asn]))
	}

	return ret
}
