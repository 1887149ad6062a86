package asnrank

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"math"
	"strings"

	"github.com/pkg/errors"
)

const (
	headerLeft  = "ASN - ISP"
	headerRight = "DL    / UL                 Latency"
)

func formatLatency(result *Result) string {
	if !result.HasRTT() {
		return "n/a"
	}
	return fmt.Sprintf("%.2fms", result.AvgRTT)
}

func labelWidth(results []*Result) int {
	width := len(headerLeft)

	for _, result := range results {
		if w := len(resultLabel(result)); w > width {
			width = w
		}
	}

	return width
}

func resultLabel(result *Result) string {
	return fmt.Sprintf("AS%d - %s", result.ASN, result.ISP)
}

func PrintSkipStats(printer *log.Logger, stats *SkipStats) {
	if stats != nil {
		printer.Printf("Rows: %d\n", stats.Rows)
		printer.Printf("Rows-accepted: %d\n", stats.Accepted)
		printer.Printf("Rows-malformed: %d\n", stats.Malformed)
		printer.Printf("Rows-nonpublic: %d\n", stats.NotPublic)
		printer.Printf("Rows-unresolved: %d\n", stats.NotFound)
		printer.Printf("Rows-notallowed: %d\n", stats.NotAllowed)
	}
}

// PrintResults writes the ranking as a two-column table.
func PrintResults(printer *log.Logger, results []*Result) {
	width := labelWidth(results)

	printer.Printf("%-*s  %s\n", width, headerLeft, headerRight)
	printer.Printf("%s\n", strings.Repeat("*", width+2+len(headerRight)))

	for _, result := range results {
		printer.Printf("%-*s  %.2f / %.2f [%d pts]    %s [%d pts]\n",
			width, resultLabel(result),
			result.AvgDL, result.AvgUL, result.Count,
			formatLatency(result), result.RTTCount,
		)
	}
}

type jsonResult struct {
	ASN      ASN      `json:"asn"`
	ISP      string   `json:"isp"`
	Count    int      `json:"count"`
	AvgDL    *float64 `json:"avg_dl"`
	StdErrDL *float64 `json:"stderr_dl"`
	AvgUL    *float64 `json:"avg_ul"`
	StdErrUL *float64 `json:"stderr_ul"`
	RTTCount int      `json:"rtt_count"`
	AvgRTT   *float64 `json:"avg_rtt"`
}

// finiteOrNil maps NaN and infinities, which JSON cannot carry, to null.
func finiteOrNil(value float64) *float64 {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return nil
	}
	return &value
}

func toJSONResult(result *Result) *jsonResult {
	return &jsonResult{
		ASN:      result.ASN,
		ISP:      result.ISP,
		Count:    result.Count,
		AvgDL:    finiteOrNil(result.AvgDL),
		StdErrDL: finiteOrNil(result.StdErrDL),
		AvgUL:    finiteOrNil(result.AvgUL),
		StdErrUL: finiteOrNil(result.StdErrUL),
		RTTCount: result.RTTCount,
		AvgRTT:   finiteOrNil(result.AvgRTT),
	}
}

// WriteJSON writes the ranking as a JSON array. Unmeasured latency and any
// non-finite value are null.
func WriteJSON(writer io.Writer, results []*Result) error {
	out := make([]*jsonResult, 0, len(results))
	for _, result := range results {
		out = append(out, toJSONResult(result))
	}

	encoder := json.NewEncoder(writer)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(out); err != nil {
		return errors.Wrap(err, "could not encode results")
	}

	return nil
}
