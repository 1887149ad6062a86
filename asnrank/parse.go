package asnrank

import (
	"encoding/csv"
	"math"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

const (
	fieldSeparator = ';'

	fieldIP       = 0
	fieldDownload = 5
	fieldUpload   = 6
	fieldRTT      = 7

	minFields = fieldRTT + 1

	// Squares of larger values could overflow the running sums.
	maxValue = 1e100
)

var ErrMalformedRow = errors.New("malformed row")

// SplitRow splits one semicolon-delimited CSV line into its fields.
// Quoting errors are tolerated: the line is then split on the bare separator
// and the resulting fields are returned as-is.
func SplitRow(line string) []string {
	line = strings.TrimRight(line, "\r\n")

	reader := csv.NewReader(strings.NewReader(line))
	reader.Comma = fieldSeparator
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	fields, err := reader.Read()
	if err != nil {
		return strings.Split(line, string(fieldSeparator))
	}

	return fields
}

// parseValue reads a non-negative numeric column. An empty column reads as 0.
func parseValue(field string, name string) (float64, error) {
	field = strings.TrimSpace(field)
	if field == "" {
		return 0, nil
	}

	value, err := strconv.ParseFloat(field, 64)
	if err != nil {
		return 0, errors.Wrapf(ErrMalformedRow, "%s %q", name, field)
	}
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, errors.Wrapf(ErrMalformedRow, "%s %q", name, field)
	}
	if value < 0 {
		return 0, errors.Wrapf(ErrMalformedRow, "negative %s %q", name, field)
	}
	if value > maxValue {
		return 0, errors.Wrapf(ErrMalformedRow, "%s %q out of range", name, field)
	}

	return value, nil
}

// ParseMeasurement picks the address, download, upload and RTT columns out of
// a split row.
func ParseMeasurement(fields []string) (*Measurement, error) {
	if len(fields) < minFields {
		return nil, errors.Wrapf(ErrMalformedRow, "%d fields, want at least %d", len(fields), minFields)
	}

	download, err := parseValue(fields[fieldDownload], "download")
	if err != nil {
		return nil, err
	}

	upload, err := parseValue(fields[fieldUpload], "upload")
	if err != nil {
		return nil, err
	}

	// an empty RTT column means latency was not measured
	rtt, err := parseValue(fields[fieldRTT], "rtt")
	if err != nil {
		return nil, err
	}

	return &Measurement{
		IP:       strings.TrimSpace(fields[fieldIP]),
		Download: download,
		Upload:   upload,
		RTT:      rtt,
	}, nil
}
