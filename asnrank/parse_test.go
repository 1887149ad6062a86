package asnrank

import (
	"testing"

	"gotest.tools/v3/assert"
)

func TestSplitRow(t *testing.T) {
	fields := SplitRow(`1.2.3.4;2020-04-01 10:00;"Athens; GR";x;y;50.5;10.25;15` + "\r\n")

	assert.DeepEqual(t, fields, []string{"1.2.3.4", "2020-04-01 10:00", "Athens; GR", "x", "y", "50.5", "10.25", "15"})
}

func TestSplitRow_BrokenQuoting(t *testing.T) {
	fields := SplitRow(`1.2.3.4;"a"b"c;x;y;z;50;10;15`)

	assert.Assert(t, len(fields) >= 1)
	assert.Equal(t, fields[0], "1.2.3.4")
}

func TestParseMeasurement(t *testing.T) {
	measurement, err := ParseMeasurement([]string{" 8.8.8.8 ", "", "", "", "", "50.5", "10.25", "15"})

	assert.NilError(t, err)
	assert.DeepEqual(t, *measurement, Measurement{
		IP:       "8.8.8.8",
		Download: 50.5,
		Upload:   10.25,
		RTT:      15,
	})
}

func TestParseMeasurement_EmptyRTT(t *testing.T) {
	measurement, err := ParseMeasurement([]string{"8.8.8.8", "", "", "", "", "50", "10", ""})

	assert.NilError(t, err)
	assert.Equal(t, measurement.RTT, 0.0)
}

func TestParseMeasurement_EmptyThroughput(t *testing.T) {
	measurement, err := ParseMeasurement([]string{"8.8.8.8", "", "", "", "", " ", "", "12"})

	assert.NilError(t, err)
	assert.Equal(t, measurement.Download, 0.0)
	assert.Equal(t, measurement.Upload, 0.0)
	assert.Equal(t, measurement.RTT, 12.0)
}

func TestParseMeasurement_LargestValue(t *testing.T) {
	measurement, err := ParseMeasurement([]string{"8.8.8.8", "", "", "", "", "1e100", "10", "12"})

	assert.NilError(t, err)
	assert.Equal(t, measurement.Download, 1e100)
}

func TestParseMeasurement_TooFewFields(t *testing.T) {
	_, err := ParseMeasurement([]string{"8.8.8.8", "", "", "", "", "50", "10"})

	assert.ErrorIs(t, err, ErrMalformedRow)
}

func TestParseMeasurement_BadValues(t *testing.T) {
	for _, fields := range [][]string{
		{"8.8.8.8", "", "", "", "", "fast", "10", "15"},
		{"8.8.8.8", "", "", "", "", "1e200", "10", "15"},
		{"8.8.8.8", "", "", "", "", "50", "10", "1.5e308"},
		{"8.8.8.8", "", "", "", "", "50", "-1", "15"},
		{"8.8.8.8", "", "", "", "", "NaN", "10", "15"},
		{"8.8.8.8", "", "", "", "", "50", "10", "+Inf"},
	} {
		_, err := ParseMeasurement(fields)
		assert.ErrorIs(t, err, ErrMalformedRow, "fields: %v", fields)
	}
}
