package asnrank

// ASN is an Autonomous System Number.
type ASN uint32

type Network struct {
	ASN          ASN
	Organization string
}

// Measurement is one parsed speed-test row. IP is the raw address field,
// not yet normalized or classified.
type Measurement struct {
	IP       string
	Download float64
	Upload   float64
	RTT      float64
}

// Aggregate holds running sums for one ASN.
type Aggregate struct {
	ISP   string
	Count int

	DLSum   float64
	DLSqSum float64
	ULSum   float64
	ULSqSum float64

	RTTCount int
	RTTSum   float64
}

// Result is the finalized, read-only view of an Aggregate.
// AvgRTT is +Inf when no row carried a positive RTT.
type Result struct {
	ASN      ASN
	ISP      string
	Count    int
	AvgDL    float64
	AvgUL    float64
	StdErrDL float64
	StdErrUL float64
	RTTCount int
	AvgRTT   float64
}

// HasRTT reports whether at least one latency sample was seen.
func (r *Result) HasRTT() bool {
	return r.RTTCount > 0
}

type SkipStats struct {
	Rows       int
	Malformed  int
	NotPublic  int
	NotFound   int
	NotAllowed int
	Accepted   int
}
