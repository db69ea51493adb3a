package coinselect

import "sort"

// Histogram buckets input counts seen across a batch of PayOutcomes. It is
// deliberately simple — a count map, read in input-count order through
// Buckets — since spec.md §4.6 excludes
// plotting/report generation from this harness's scope; producing actual
// charts is left to whatever consumes these numbers.
type Histogram struct {
	Counts map[int]int
}

// InputCountHistogram buckets every successful outcome's InputCount.
func InputCountHistogram(outcomes []PayOutcome) Histogram {
	h := Histogram{Counts: make(map[int]int)}
	for _, o := range outcomes {
		if o.Succeeded {
			h.Counts[o.Stats.InputCount]++
		}
	}
	return h
}

// Buckets returns h's (inputCount, occurrences) pairs sorted by input
// count, for deterministic iteration.
func (h Histogram) Buckets() []struct {
	InputCount  int
	Occurrences int
} {
	keys := make([]int, 0, len(h.Counts))
	for k := range h.Counts {
		keys = append(keys, k)
	}
	sort.Ints(keys)

	out := make([]struct {
		InputCount  int
		Occurrences int
	}, len(keys))
	for i, k := range keys {
		out[i] = struct {
			InputCount  int
			Occurrences int
		}{InputCount: k, Occurrences: h.Counts[k]}
	}
	return out
}

// TimeSeriesPoint is one sample of a diagnostic value at a given slot.
type TimeSeriesPoint struct {
	Slot  uint64
	Value float64
}

// ChangeRatioSeries extracts the change/payment ratio of every successful
// outcome as a time series ordered by slot, for comparing policies'
// change-leakage behavior over a simulated run.
func ChangeRatioSeries(outcomes []PayOutcome) []TimeSeriesPoint {
	var points []TimeSeriesPoint
	for _, o := range outcomes {
		if o.Succeeded {
			points = append(points, TimeSeriesPoint{Slot: o.Slot, Value: o.Stats.ChangeRatio})
		}
	}
	return points
}

// FailureRate returns the fraction of outcomes that did not succeed.
func FailureRate(outcomes []PayOutcome) float64 {
	if len(outcomes) == 0 {
		return 0
	}
	var failed int
	for _, o := range outcomes {
		if !o.Succeeded {
			failed++
		}
	}
	return float64(failed) / float64(len(outcomes))
}
