package runner

import (
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
)

const (
	// Histogram range in microseconds: 1us to 60s
	minLatencyUs = 1
	maxLatencyUs = 60_000_000
)

// LatencyStats summarizes the durations of the calls that reached the
// server.
type LatencyStats struct {
	Count int64
	Min   time.Duration
	Max   time.Duration
	Mean  time.Duration
	P50   time.Duration
	P95   time.Duration
	P99   time.Duration
}

// NewLatencyStats computes latency percentiles over results with a
// response. It returns nil when there are none.
func NewLatencyStats(results []*CallResult) *LatencyStats {
	h := hdrhistogram.New(minLatencyUs, maxLatencyUs, 3)
	for _, res := range results {
		if res.Record == nil {
			continue
		}
		us := res.Duration.Microseconds()
		if us < minLatencyUs {
			us = minLatencyUs
		}
		if us > maxLatencyUs {
			us = maxLatencyUs
		}
		_ = h.RecordValue(us)
	}
	if h.TotalCount() == 0 {
		return nil
	}

	return &LatencyStats{
		Count: h.TotalCount(),
		Min:   time.Duration(h.Min()) * time.Microsecond,
		Max:   time.Duration(h.Max()) * time.Microsecond,
		Mean:  time.Duration(h.Mean()) * time.Microsecond,
		P50:   time.Duration(h.ValueAtQuantile(50)) * time.Microsecond,
		P95:   time.Duration(h.ValueAtQuantile(95)) * time.Microsecond,
		P99:   time.Duration(h.ValueAtQuantile(99)) * time.Microsecond,
	}
}
