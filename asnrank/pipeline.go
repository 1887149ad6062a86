package asnrank

import (
	"bufio"
	"io"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// Pipeline turns raw CSV lines into a ranked per-ASN result list. It holds no
// state between calls to Run.
type Pipeline struct {
	resolver Resolver
	allowed  map[ASN]struct{}
}

func NewPipeline(resolver Resolver, allowed []ASN) *Pipeline {
	p := &Pipeline{
		resolver: resolver,
		allowed:  make(map[ASN]struct{}, len(allowed)),
	}

	for _, asn := range allowed {
		p.allowed[asn] = struct{}{}
	}

	return p
}

func (p *Pipeline) isAllowed(asn ASN) bool {
	_, ok := p.allowed[asn]
	return ok
}

// Run processes lines, the first of which is a header and is discarded.
// Rows that are malformed, non-public, unresolved or outside the allowed set
// are skipped and counted in the returned SkipStats. A resolver failure other
// than ErrNotFound aborts the run.
func (p *Pipeline) Run(lines []string) ([]*Result, *SkipStats, error) {
	aggregator := NewAggregator()
	stats := &SkipStats{}

	for index, line := range lines {
		if index == 0 {
			continue
		}
		if line == "" || line == "\r" {
			continue
		}
		stats.Rows += 1

		measurement, err := ParseMeasurement(SplitRow(line))
		if err != nil {
			log.Debugf("line %d: %v", index+1, err)
			stats.Malformed += 1
			continue
		}

		addr, ok := Classify(measurement.IP)
		if !ok {
			log.Debugf("line %d: %q is not a public address", index+1, measurement.IP)
			stats.NotPublic += 1
			continue
		}

		network, err := p.resolver.Resolve(addr)
		if errors.Is(err, ErrNotFound) {
			log.Debugf("line %d: %v", index+1, err)
			stats.NotFound += 1
			continue
		}
		if err != nil {
			return nil, stats, errors.Wrapf(err, "line %d", index+1)
		}

		if !p.isAllowed(network.ASN) {
			stats.NotAllowed += 1
			continue
		}

		aggregator.Add(network.ASN, network.Organization, measurement)
		stats.Accepted += 1
	}

	results := aggregator.Finalize()
	Rank(results)

	return results, stats, nil
}

// ReadLines reads all lines from reader.
func ReadLines(reader io.Reader) ([]string, error) {
	lines := []string{}

	scanner := bufio.NewScanner(reader)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "could not read CSV")
	}

	return lines, nil
}
