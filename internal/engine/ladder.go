// Package engine turns weather and air-quality telemetry into risk indices,
// field-work windows, daily advisories, crop rankings and activity verdicts.
//
// Every function in this package is pure: it reads only its arguments,
// performs no I/O and never returns an error. Missing telemetry yields
// explicit "No data" results instead.
package engine

import "math"

// rung pairs a predicate with the outcome it selects.
type rung[I, O any] struct {
	when func(I) bool
	then O
}

// ladder is an ordered threshold table scanned top to bottom; the first
// matching rung wins.
type ladder[I, O any] []rung[I, O]

func (l ladder[I, O]) pick(in I, otherwise O) O {
	for _, r := range l {
		if r.when(in) {
			return r.then
		}
	}
	return otherwise
}

func below(limit float64) func(float64) bool {
	return func(v float64) bool { return v < limit }
}

func atMost(limit float64) func(float64) bool {
	return func(v float64) bool { return v <= limit }
}

func above(limit float64) func(float64) bool {
	return func(v float64) bool { return v > limit }
}

func atLeast(limit float64) func(float64) bool {
	return func(v float64) bool { return v >= limit }
}

func within(lo, hi float64) func(float64) bool {
	return func(v float64) bool { return v >= lo && v <= hi }
}

// tier is a labelled band of a numeric score.
type tier struct {
	label  string
	level  string
	advice string
}

func clamp(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(0, math.Min(100, v))
}
