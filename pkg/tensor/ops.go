package tensor

import (
	"fmt"
	"math"
)

// Map applies f to every element and returns a new tensor with the given
// result dtype.
func Map(t *Dense, dtype DType, f func(float64) float64) *Dense {
	out := New(dtype, t.shape...)
	for i, v := range t.data {
		out.data[i] = dtype.quantize(f(v))
	}
	return out
}

// Map2 applies f elementwise over two tensors of identical shape.
func Map2(a, b *Dense, dtype DType, f func(x, y float64) float64) (*Dense, error) {
	if !SameShape(a, b) {
		return nil, fmt.Errorf("shape mismatch: %v vs %v", a.shape, b.shape)
	}
	out := New(dtype, a.shape...)
	for i := range a.data {
		out.data[i] = dtype.quantize(f(a.data[i], b.data[i]))
	}
	return out, nil
}

// MapInPlace applies f to every element of the tensor buffer.
func (t *Dense) MapInPlace(f func(float64) float64) {
	for i, v := range t.data {
		t.data[i] = t.dtype.quantize(f(v))
	}
}

// Map2InPlace applies f elementwise, storing results into the receiver.
func (t *Dense) Map2InPlace(other *Dense, f func(x, y float64) float64) error {
	if !SameShape(t, other) {
		return fmt.Errorf("shape mismatch: %v vs %v", t.shape, other.shape)
	}
	for i := range t.data {
		t.data[i] = t.dtype.quantize(f(t.data[i], other.data[i]))
	}
	return nil
}

// ReduceOp is a pairwise reduction operator.
type ReduceOp func(acc, v float64) float64

// Reduction operators for Reduce and ReduceDim.
var (
	OpMax ReduceOp = math.Max
	OpMin ReduceOp = math.Min
	OpSum ReduceOp = func(acc, v float64) float64 { return acc + v }
)

// Reduce collapses the whole tensor to a scalar with the given operator.
// Reducing an empty tensor returns 0.
func (t *Dense) Reduce(op ReduceOp) float64 {
	if len(t.data) == 0 {
		return 0
	}
	acc := t.data[0]
	for _, v := range t.data[1:] {
		acc = op(acc, v)
	}
	return acc
}

// ReduceDim collapses one dimension with the given operator, returning a
// tensor with that dimension removed.
func (t *Dense) ReduceDim(dim int, op ReduceOp) (*Dense, error) {
	if dim < 0 || dim >= len(t.shape) {
		return nil, fmt.Errorf("reduce dimension %d out of range for rank %d", dim, len(t.shape))
	}
	if t.shape[dim] == 0 {
		return nil, fmt.Errorf("cannot reduce empty dimension %d", dim)
	}
	outShape := make([]int, 0, len(t.shape)-1)
	outShape = append(outShape, t.shape[:dim]...)
	outShape = append(outShape, t.shape[dim+1:]...)
	out := New(t.dtype, outShape...)

	strides := t.Strides()
	dimStride := strides[dim]
	dimSize := t.shape[dim]

	// outer iterates dims before `dim`, inner iterates dims after it.
	outer := 1
	for _, s := range t.shape[:dim] {
		outer *= s
	}
	inner := dimStride

	for o := 0; o < outer; o++ {
		base := o * dimStride * dimSize
		for in := 0; in < inner; in++ {
			acc := t.data[base+in]
			for k := 1; k < dimSize; k++ {
				acc = op(acc, t.data[base+k*dimStride+in])
			}
			out.data[o*inner+in] = acc
		}
	}
	return out, nil
}

// NonzeroBounds returns the inclusive per-dimension index bounds of the
// nonzero elements. ok is false when the tensor has no nonzero element.
func (t *Dense) NonzeroBounds() (min, max []int, ok bool) {
	min = make([]int, len(t.shape))
	max = make([]int, len(t.shape))
	idx := make([]int, len(t.shape))
	for i := range min {
		min[i] = t.shape[i]
		max[i] = -1
	}
	for flat, v := range t.data {
		if v != 0 {
			ok = true
			unravel(flat, t.shape, idx)
			for i, ix := range idx {
				if ix < min[i] {
					min[i] = ix
				}
				if ix > max[i] {
					max[i] = ix
				}
			}
		}
	}
	return min, max, ok
}

// unravel decomposes a flat row-major offset into a multi-index.
func unravel(flat int, shape, out []int) {
	for i := len(shape) - 1; i >= 0; i-- {
		out[i] = flat % shape[i]
		flat /= shape[i]
	}
}
