package report

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPrinter(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf, false)

	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	p.PrintStart("techniques")
	p.PrintEnd("techniques", start, start.Add(1500*time.Millisecond))
	p.PrintEnd(TotalLabel, start, start.Add(2*time.Minute))

	assert.Equal(t, "\nRunning module: techniques\ntechniques: 1.5s\nTOTAL Update Time: 2m0s\n", buf.String())
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "0s", FormatDuration(0))
	assert.Equal(t, "0s", FormatDuration(-time.Second))
	assert.Equal(t, "1.235s", FormatDuration(1234567*time.Microsecond))
}
