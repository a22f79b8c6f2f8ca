// Package report writes per-period simulation summaries to a persisted
// plain-text table, adapted from the teacher's trace.go TraceManager:
// accumulate records in memory, then flush the whole table to a file in
// one WriteToFile call.
package report

import (
	"fmt"
	"os"
	"strings"

	"github.com/optnetsim/optnetsim"
)

// Writer accumulates per-period records and flushes them to disk.
type Writer struct {
	records []optnetsim.PeriodMetrics
}

// NewWriter builds an empty report Writer.
func NewWriter() *Writer {
	return &Writer{}
}

// Record appends one period's metrics.
func (w *Writer) Record(m optnetsim.PeriodMetrics) {
	w.records = append(w.records, m)
}

// Records returns the accumulated metrics in recording order.
func (w *Writer) Records() []optnetsim.PeriodMetrics {
	return w.records
}

// WriteToFile renders the accumulated records as a fixed-width plain-text
// table and writes it to filename.
func (w *Writer) WriteToFile(filename string) error {
	var b strings.Builder
	fmt.Fprintf(&b, "%-8s%-14s%-16s%-16s%-12s%-16s\n",
		"period", "connections", "required_tbps", "allocated_tbps", "util_pct", "underprov_pct")
	for _, r := range w.records {
		fmt.Fprintf(&b, "%-8d%-14d%-16.2f%-16.2f%-12.2f%-16.2f\n",
			r.Period, r.Connections, r.RequiredTbps, r.AllocatedTbps, r.AverageUtilization*100, r.UnderProvisioning*100)
	}
	return os.WriteFile(filename, []byte(b.String()), 0o644)
}
