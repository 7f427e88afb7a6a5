package tensor

import "fmt"

// PadMode selects how padded regions are filled.
type PadMode int

const (
	// PadConstant fills with a constant value.
	PadConstant PadMode = iota
	// PadReflect mirrors the tensor around its edge elements.
	PadReflect
	// PadReplicate repeats the edge elements.
	PadReplicate
)

// String returns the pad mode name.
func (m PadMode) String() string {
	switch m {
	case PadConstant:
		return "constant"
	case PadReflect:
		return "reflect"
	case PadReplicate:
		return "replicate"
	default:
		return fmt.Sprintf("padmode(%d)", int(m))
	}
}

// Slice extracts a strided sub-tensor. min is inclusive, max exclusive,
// both per-dimension; a stride entry of 0 or 1 takes every element. The
// result is a copy, never a view.
func (t *Dense) Slice(min, max, stride []int) (*Dense, error) {
	rank := len(t.shape)
	if len(min) != rank || len(max) != rank || len(stride) != rank {
		return nil, fmt.Errorf("slice bounds must have rank %d", rank)
	}
	outShape := make([]int, rank)
	step := make([]int, rank)
	for i := 0; i < rank; i++ {
		s := stride[i]
		if s <= 0 {
			s = 1
		}
		if min[i] < 0 || max[i] > t.shape[i] || min[i] > max[i] {
			return nil, fmt.Errorf("slice bounds [%d, %d) out of range for dimension %d of size %d",
				min[i], max[i], i, t.shape[i])
		}
		step[i] = s
		outShape[i] = (max[i] - min[i] + s - 1) / s
	}

	out := New(t.dtype, outShape...)
	srcStrides := t.Strides()
	idx := make([]int, rank)
	for flat := 0; flat < len(out.data); flat++ {
		unravel(flat, outShape, idx)
		src := 0
		for i := 0; i < rank; i++ {
			src += (min[i] + idx[i]*step[i]) * srcStrides[i]
		}
		out.data[flat] = t.data[src]
	}
	return out, nil
}

// Pad extends the tensor by the given per-dimension element counts before
// and after the existing data. The fill value only applies to PadConstant
// and is quantized to the tensor dtype.
func (t *Dense) Pad(before, after []int, mode PadMode, value float64) (*Dense, error) {
	rank := len(t.shape)
	if len(before) != rank || len(after) != rank {
		return nil, fmt.Errorf("pad amounts must have rank %d", rank)
	}
	outShape := make([]int, rank)
	for i := 0; i < rank; i++ {
		if before[i] < 0 || after[i] < 0 {
			return nil, fmt.Errorf("negative pad amount for dimension %d", i)
		}
		outShape[i] = t.shape[i] + before[i] + after[i]
	}

	out := New(t.dtype, outShape...)
	value = t.dtype.quantize(value)
	srcStrides := t.Strides()
	idx := make([]int, rank)
	for flat := 0; flat < len(out.data); flat++ {
		unravel(flat, outShape, idx)
		src := 0
		inside := true
		for i := 0; i < rank && inside; i++ {
			p := idx[i] - before[i]
			switch {
			case p >= 0 && p < t.shape[i]:
			case mode == PadReplicate:
				p = clampIndex(p, t.shape[i])
			case mode == PadReflect:
				p = reflectIndex(p, t.shape[i])
			default:
				inside = false
			}
			src += p * srcStrides[i]
		}
		if inside {
			out.data[flat] = t.data[src]
		} else {
			out.data[flat] = value
		}
	}
	return out, nil
}

func clampIndex(i, n int) int {
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}

// reflectIndex mirrors an index around the edge elements, so the element
// adjacent to the border repeats first (period 2(n-1)).
func reflectIndex(i, n int) int {
	if n == 1 {
		return 0
	}
	period := 2 * (n - 1)
	i = ((i % period) + period) % period
	if i >= n {
		i = period - i
	}
	return i
}
