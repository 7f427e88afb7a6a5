// Package tensor implements the dense array backend for volumetric image
// data. Values are stored in a flat row-major float64 buffer regardless of
// the logical element type, with a DType tag tracking how the values should
// be interpreted and quantized. Volumes use rank-4 (C, W, H, D) tensors;
// coordinate grids and reductions produce other ranks.
package tensor

import (
	"fmt"
	"math"
	"math/rand"
)

// DType identifies the logical element type of a tensor. All arithmetic is
// carried out in float64; integer and boolean dtypes quantize values when a
// tensor is converted.
type DType int

const (
	Float64 DType = iota
	Float32
	Int32
	Int16
	Uint8
	Bool
)

// String returns the dtype name.
func (d DType) String() string {
	switch d {
	case Float64:
		return "float64"
	case Float32:
		return "float32"
	case Int32:
		return "int32"
	case Int16:
		return "int16"
	case Uint8:
		return "uint8"
	case Bool:
		return "bool"
	default:
		return fmt.Sprintf("dtype(%d)", int(d))
	}
}

// ParseDType resolves a dtype name as produced by String.
func ParseDType(name string) (DType, error) {
	switch name {
	case "float64":
		return Float64, nil
	case "float32":
		return Float32, nil
	case "int32":
		return Int32, nil
	case "int16":
		return Int16, nil
	case "uint8":
		return Uint8, nil
	case "bool":
		return Bool, nil
	default:
		return 0, fmt.Errorf("unknown dtype %q", name)
	}
}

// IsFloat reports whether the dtype is a floating-point type.
func (d DType) IsFloat() bool {
	return d == Float64 || d == Float32
}

// quantize maps a raw float value onto the representable values of the
// dtype. Integer types truncate toward zero, matching tensor-library
// integer cast semantics.
func (d DType) quantize(v float64) float64 {
	switch d {
	case Float64:
		return v
	case Float32:
		return float64(float32(v))
	case Int32, Int16:
		return math.Trunc(v)
	case Uint8:
		t := math.Trunc(v)
		if t < 0 {
			return 0
		}
		if t > 255 {
			return 255
		}
		return t
	case Bool:
		if v != 0 {
			return 1
		}
		return 0
	}
	return v
}

// Dense is a dense n-dimensional array of float64 values with a logical
// element dtype.
type Dense struct {
	data  []float64
	shape []int
	dtype DType
}

// New allocates a zeroed tensor with the given dtype and shape.
func New(dtype DType, shape ...int) *Dense {
	n := 1
	for _, s := range shape {
		n *= s
	}
	return &Dense{
		data:  make([]float64, n),
		shape: append([]int(nil), shape...),
		dtype: dtype,
	}
}

// FromSlice builds a tensor around the given values. The values are used
// directly, not copied; the caller hands over ownership of the slice.
func FromSlice(dtype DType, values []float64, shape ...int) (*Dense, error) {
	n := 1
	for _, s := range shape {
		n *= s
	}
	if n != len(values) {
		return nil, fmt.Errorf("shape %v requires %d values, got %d", shape, n, len(values))
	}
	return &Dense{data: values, shape: append([]int(nil), shape...), dtype: dtype}, nil
}

// Full allocates a tensor filled with the given value.
func Full(dtype DType, fill float64, shape ...int) *Dense {
	t := New(dtype, shape...)
	fill = dtype.quantize(fill)
	for i := range t.data {
		t.data[i] = fill
	}
	return t
}

// Rand allocates a tensor of uniform random values on [0, 1).
func Rand(dtype DType, rng *rand.Rand, shape ...int) *Dense {
	t := New(dtype, shape...)
	for i := range t.data {
		t.data[i] = dtype.quantize(rng.Float64())
	}
	return t
}

// Randn allocates a tensor of normally distributed random values with mean
// 0 and variance 1.
func Randn(dtype DType, rng *rand.Rand, shape ...int) *Dense {
	t := New(dtype, shape...)
	for i := range t.data {
		t.data[i] = dtype.quantize(rng.NormFloat64())
	}
	return t
}

// Rank returns the number of dimensions.
func (t *Dense) Rank() int { return len(t.shape) }

// Dim returns the size of dimension i.
func (t *Dense) Dim(i int) int { return t.shape[i] }

// Shape returns a copy of the tensor shape.
func (t *Dense) Shape() []int {
	return append([]int(nil), t.shape...)
}

// Len returns the number of elements.
func (t *Dense) Len() int { return len(t.data) }

// DType returns the logical element type.
func (t *Dense) DType() DType { return t.dtype }

// Data returns the backing buffer. The buffer is shared with the tensor;
// callers that mutate it own the tensor exclusively.
func (t *Dense) Data() []float64 { return t.data }

// Strides returns the row-major stride of each dimension.
func (t *Dense) Strides() []int {
	strides := make([]int, len(t.shape))
	acc := 1
	for i := len(t.shape) - 1; i >= 0; i-- {
		strides[i] = acc
		acc *= t.shape[i]
	}
	return strides
}

// Index computes the flat offset of a multi-dimensional index.
func (t *Dense) Index(idx ...int) int {
	flat := 0
	for i, ix := range idx {
		flat = flat*t.shape[i] + ix
	}
	return flat
}

// At returns the value at a multi-dimensional index.
func (t *Dense) At(idx ...int) float64 {
	return t.data[t.Index(idx...)]
}

// Set stores a value at a multi-dimensional index, quantized to the
// tensor dtype.
func (t *Dense) Set(v float64, idx ...int) {
	t.data[t.Index(idx...)] = t.dtype.quantize(v)
}

// Clone returns a deep copy of the tensor.
func (t *Dense) Clone() *Dense {
	c := New(t.dtype, t.shape...)
	copy(c.data, t.data)
	return c
}

// Reshape returns a tensor viewing the same buffer with a new shape. The
// element count must be preserved.
func (t *Dense) Reshape(shape ...int) (*Dense, error) {
	n := 1
	for _, s := range shape {
		n *= s
	}
	if n != len(t.data) {
		return nil, fmt.Errorf("cannot reshape %v tensor to %v", t.shape, shape)
	}
	return &Dense{data: t.data, shape: append([]int(nil), shape...), dtype: t.dtype}, nil
}

// AsType converts the tensor to a new dtype, quantizing values as needed.
// Converting to the current dtype returns the receiver unchanged.
func (t *Dense) AsType(dtype DType) *Dense {
	if dtype == t.dtype {
		return t
	}
	c := New(dtype, t.shape...)
	for i, v := range t.data {
		c.data[i] = dtype.quantize(v)
	}
	return c
}

// SameShape reports whether two tensors have identical shapes.
func SameShape(a, b *Dense) bool {
	if len(a.shape) != len(b.shape) {
		return false
	}
	for i := range a.shape {
		if a.shape[i] != b.shape[i] {
			return false
		}
	}
	return true
}
