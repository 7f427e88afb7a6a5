// Package slicing provides per-axis range selections for cropping volume
// grids, with conversions between range form and integer corner
// coordinates.
package slicing

import (
	"fmt"
	"math"
)

// ToEnd marks a range that extends through the final element of its axis.
const ToEnd = math.MaxInt

// Range selects elements [Start, Stop) with the given step along one axis.
// A Scalar range selects the single index Start and collapses the axis.
type Range struct {
	Start int
	Stop  int
	Step  int
	// Scalar marks a single-index selection that removes the axis.
	Scalar bool
}

// All selects every element of an axis.
func All() Range {
	return Range{Start: 0, Stop: ToEnd, Step: 1}
}

// Span selects [start, stop) with unit step.
func Span(start, stop int) Range {
	return Range{Start: start, Stop: stop, Step: 1}
}

// Strided selects [start, stop) with the given step.
func Strided(start, stop, step int) Range {
	return Range{Start: start, Stop: stop, Step: step}
}

// Index selects the single element at i, collapsing the axis.
func Index(i int) Range {
	return Range{Start: i, Stop: i + 1, Step: 1, Scalar: true}
}

// Expand pads a partial range list with full-axis selections up to the
// given rank. An error is returned if more ranges are given than axes.
func Expand(ranges []Range, rank int) ([]Range, error) {
	if len(ranges) > rank {
		return nil, fmt.Errorf("got %d ranges for rank %d", len(ranges), rank)
	}
	out := make([]Range, rank)
	copy(out, ranges)
	for i := len(ranges); i < rank; i++ {
		out[i] = All()
	}
	return out, nil
}

// ToCoordinates resolves ranges against axis sizes, returning inclusive
// minimum and maximum corner coordinates and the per-axis step. Scalar
// ranges resolve like single-element spans; callers that forbid axis
// collapse must check Scalar before converting.
func ToCoordinates(ranges []Range, shape []int) (min, max, step []int, err error) {
	if len(ranges) != len(shape) {
		return nil, nil, nil, fmt.Errorf("got %d ranges for %d axes", len(ranges), len(shape))
	}
	min = make([]int, len(ranges))
	max = make([]int, len(ranges))
	step = make([]int, len(ranges))
	for i, r := range ranges {
		s := r.Step
		if s <= 0 {
			s = 1
		}
		start := r.Start
		if start < 0 {
			start = 0
		}
		stop := r.Stop
		if stop == ToEnd || stop > shape[i] {
			stop = shape[i]
		}
		if stop < start {
			stop = start
		}
		min[i] = start
		max[i] = stop - 1
		step[i] = s
	}
	return min, max, step, nil
}

// FromCoordinates builds ranges from inclusive corner coordinates. A nil
// step applies a unit step on every axis.
func FromCoordinates(min, max, step []int) []Range {
	out := make([]Range, len(min))
	for i := range min {
		s := 1
		if step != nil && step[i] > 0 {
			s = step[i]
		}
		out[i] = Range{Start: min[i], Stop: max[i] + 1, Step: s}
	}
	return out
}
