package volume

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"

	"voxelgrid/pkg/affine"
	"voxelgrid/pkg/tensor"
)

// Elementwise arithmetic accepts a scalar, a raw tensor, or another volume
// as the right-hand operand. Volumes are unwrapped to their tensors; every
// result is a new volume sharing the receiver's geometry.

// applyBinary resolves the operand and applies f elementwise, producing a
// new volume with the given result dtype.
func (v *Volume) applyBinary(other interface{}, dtype tensor.DType, f func(a, b float64) float64) (*Volume, error) {
	switch o := other.(type) {
	case *Volume:
		return v.applyBinaryTensor(o.data, dtype, f)
	case *tensor.Dense:
		return v.applyBinaryTensor(o, dtype, f)
	case float64:
		return &Volume{data: tensor.Map(v.data, dtype, func(a float64) float64 { return f(a, o) }), geometry: v.geometry}, nil
	case int:
		b := float64(o)
		return &Volume{data: tensor.Map(v.data, dtype, func(a float64) float64 { return f(a, b) }), geometry: v.geometry}, nil
	default:
		return nil, domainErrorf("unsupported operand type %T", other)
	}
}

func (v *Volume) applyBinaryTensor(o *tensor.Dense, dtype tensor.DType, f func(a, b float64) float64) (*Volume, error) {
	if !tensor.SameShape(v.data, o) {
		return nil, shapeErrorf("operand shape %v does not match volume shape %v", o.Shape(), v.data.Shape())
	}
	out, err := tensor.Map2(v.data, o, dtype, f)
	if err != nil {
		return nil, err
	}
	return &Volume{data: out, geometry: v.geometry}, nil
}

// Add returns v + other elementwise.
func (v *Volume) Add(other interface{}) (*Volume, error) {
	return v.applyBinary(other, v.DType(), func(a, b float64) float64 { return a + b })
}

// Sub returns v - other elementwise.
func (v *Volume) Sub(other interface{}) (*Volume, error) {
	return v.applyBinary(other, v.DType(), func(a, b float64) float64 { return a - b })
}

// Mul returns v * other elementwise.
func (v *Volume) Mul(other interface{}) (*Volume, error) {
	return v.applyBinary(other, v.DType(), func(a, b float64) float64 { return a * b })
}

// Div returns v / other elementwise as floating point values.
func (v *Volume) Div(other interface{}) (*Volume, error) {
	return v.applyBinary(other, tensor.Float64, func(a, b float64) float64 { return a / b })
}

// Pow returns v raised to other elementwise.
func (v *Volume) Pow(other interface{}) (*Volume, error) {
	return v.applyBinary(other, v.DType(), math.Pow)
}

// And returns the elementwise logical AND of nonzero values.
func (v *Volume) And(other interface{}) (*Volume, error) {
	return v.applyBinary(other, tensor.Bool, func(a, b float64) float64 {
		return boolToFloat(a != 0 && b != 0)
	})
}

// Or returns the elementwise logical OR of nonzero values.
func (v *Volume) Or(other interface{}) (*Volume, error) {
	return v.applyBinary(other, tensor.Bool, func(a, b float64) float64 {
		return boolToFloat(a != 0 || b != 0)
	})
}

// Xor returns the elementwise logical XOR of nonzero values.
func (v *Volume) Xor(other interface{}) (*Volume, error) {
	return v.applyBinary(other, tensor.Bool, func(a, b float64) float64 {
		return boolToFloat((a != 0) != (b != 0))
	})
}

// Comparison operators return boolean mask volumes.

// Eq returns the elementwise equality mask.
func (v *Volume) Eq(other interface{}) (*Volume, error) {
	return v.applyBinary(other, tensor.Bool, func(a, b float64) float64 { return boolToFloat(a == b) })
}

// Ne returns the elementwise inequality mask.
func (v *Volume) Ne(other interface{}) (*Volume, error) {
	return v.applyBinary(other, tensor.Bool, func(a, b float64) float64 { return boolToFloat(a != b) })
}

// Lt returns the elementwise less-than mask.
func (v *Volume) Lt(other interface{}) (*Volume, error) {
	return v.applyBinary(other, tensor.Bool, func(a, b float64) float64 { return boolToFloat(a < b) })
}

// Le returns the elementwise less-or-equal mask.
func (v *Volume) Le(other interface{}) (*Volume, error) {
	return v.applyBinary(other, tensor.Bool, func(a, b float64) float64 { return boolToFloat(a <= b) })
}

// Gt returns the elementwise greater-than mask.
func (v *Volume) Gt(other interface{}) (*Volume, error) {
	return v.applyBinary(other, tensor.Bool, func(a, b float64) float64 { return boolToFloat(a > b) })
}

// Ge returns the elementwise greater-or-equal mask.
func (v *Volume) Ge(other interface{}) (*Volume, error) {
	return v.applyBinary(other, tensor.Bool, func(a, b float64) float64 { return boolToFloat(a >= b) })
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

// In-place arithmetic mutates the receiver's buffer. The receiver must
// own its tensor exclusively; volumes derived through geometry-only
// operations share buffers and must not be mutated.

// MutateAdd adds other into the volume buffer in place.
func (v *Volume) MutateAdd(other interface{}) error {
	return v.mutate(other, func(a, b float64) float64 { return a + b })
}

// MutateSub subtracts other from the volume buffer in place.
func (v *Volume) MutateSub(other interface{}) error {
	return v.mutate(other, func(a, b float64) float64 { return a - b })
}

// MutateMul multiplies the volume buffer by other in place.
func (v *Volume) MutateMul(other interface{}) error {
	return v.mutate(other, func(a, b float64) float64 { return a * b })
}

// MutateDiv divides the volume buffer by other in place.
func (v *Volume) MutateDiv(other interface{}) error {
	return v.mutate(other, func(a, b float64) float64 { return a / b })
}

func (v *Volume) mutate(other interface{}, f func(a, b float64) float64) error {
	switch o := other.(type) {
	case *Volume:
		if err := v.data.Map2InPlace(o.data, f); err != nil {
			return shapeErrorf("in-place arithmetic: %v", err)
		}
		return nil
	case *tensor.Dense:
		if err := v.data.Map2InPlace(o, f); err != nil {
			return shapeErrorf("in-place arithmetic: %v", err)
		}
		return nil
	case float64:
		v.data.MapInPlace(func(a float64) float64 { return f(a, o) })
		return nil
	case int:
		b := float64(o)
		v.data.MapInPlace(func(a float64) float64 { return f(a, b) })
		return nil
	default:
		return domainErrorf("unsupported operand type %T", other)
	}
}

// Unary and pairwise elementwise helpers.

// Neg returns the elementwise negation.
func (v *Volume) Neg() *Volume {
	return &Volume{data: tensor.Map(v.data, v.DType(), func(a float64) float64 { return -a }), geometry: v.geometry}
}

// Abs returns elementwise absolute values.
func (v *Volume) Abs() *Volume {
	return &Volume{data: tensor.Map(v.data, v.DType(), math.Abs), geometry: v.geometry}
}

// Exp returns the elementwise exponential.
func (v *Volume) Exp() *Volume {
	return &Volume{data: tensor.Map(v.data, tensor.Float64, math.Exp), geometry: v.geometry}
}

// Floor returns elementwise floored values.
func (v *Volume) Floor() *Volume {
	return &Volume{data: tensor.Map(v.data, v.DType(), math.Floor), geometry: v.geometry}
}

// Ceil returns elementwise ceiled values.
func (v *Volume) Ceil() *Volume {
	return &Volume{data: tensor.Map(v.data, v.DType(), math.Ceil), geometry: v.geometry}
}

// IsNaN returns a boolean mask of NaN values.
func (v *Volume) IsNaN() *Volume {
	return &Volume{data: tensor.Map(v.data, tensor.Bool, func(a float64) float64 {
		return boolToFloat(math.IsNaN(a))
	}), geometry: v.geometry}
}

// Clamp limits values to [min, max]. Pass -Inf or +Inf to leave a side
// unbounded.
func (v *Volume) Clamp(min, max float64) *Volume {
	return &Volume{data: tensor.Map(v.data, v.DType(), func(a float64) float64 {
		if a < min {
			return min
		}
		if a > max {
			return max
		}
		return a
	}), geometry: v.geometry}
}

// Maximum computes the elementwise maximum with another volume.
func (v *Volume) Maximum(other *Volume) (*Volume, error) {
	return v.applyBinary(other, v.DType(), math.Max)
}

// Minimum computes the elementwise minimum with another volume.
func (v *Volume) Minimum(other *Volume) (*Volume, error) {
	return v.applyBinary(other, v.DType(), math.Min)
}

// Reductions. Reducing the channel axis yields a single-channel volume;
// reducing a spatial axis yields a raw tensor; reducing everything yields
// a scalar.

// Max returns the maximum voxel value.
func (v *Volume) Max() float64 { return v.data.Reduce(tensor.OpMax) }

// Min returns the minimum voxel value.
func (v *Volume) Min() float64 { return v.data.Reduce(tensor.OpMin) }

// Sum returns the sum of all voxel values.
func (v *Volume) Sum() float64 { return v.data.Reduce(tensor.OpSum) }

// ChannelMax reduces the channel axis with max, returning a
// single-channel volume over the same geometry.
func (v *Volume) ChannelMax() (*Volume, error) { return v.channelReduce(tensor.OpMax) }

// ChannelMin reduces the channel axis with min, returning a
// single-channel volume over the same geometry.
func (v *Volume) ChannelMin() (*Volume, error) { return v.channelReduce(tensor.OpMin) }

// ChannelSum reduces the channel axis with sum, returning a
// single-channel volume over the same geometry.
func (v *Volume) ChannelSum() (*Volume, error) { return v.channelReduce(tensor.OpSum) }

func (v *Volume) channelReduce(op tensor.ReduceOp) (*Volume, error) {
	reduced, err := v.data.ReduceDim(0, op)
	if err != nil {
		return nil, err
	}
	return New(reduced, v.geometry)
}

// MaxAlong reduces one spatial axis (1..3) with max, returning the raw
// reduced tensor.
func (v *Volume) MaxAlong(dim int) (*tensor.Dense, error) { return v.reduceAlong(dim, tensor.OpMax) }

// MinAlong reduces one spatial axis (1..3) with min, returning the raw
// reduced tensor.
func (v *Volume) MinAlong(dim int) (*tensor.Dense, error) { return v.reduceAlong(dim, tensor.OpMin) }

// SumAlong reduces one spatial axis (1..3) with sum, returning the raw
// reduced tensor.
func (v *Volume) SumAlong(dim int) (*tensor.Dense, error) { return v.reduceAlong(dim, tensor.OpSum) }

func (v *Volume) reduceAlong(dim int, op tensor.ReduceOp) (*tensor.Dense, error) {
	if dim < 1 || dim > 3 {
		return nil, domainErrorf("spatial reduction axis must be 1..3, got %d", dim)
	}
	return v.data.ReduceDim(dim, op)
}

// Mean returns the mean voxel value.
func (v *Volume) Mean() float64 {
	return stat.Mean(v.data.Data(), nil)
}

// StdDev returns the sample standard deviation of the voxel values.
func (v *Volume) StdDev() float64 {
	return stat.StdDev(v.data.Data(), nil)
}

// Quantile computes the q-th quantile of the voxel data for q in [0, 1].
// The endpoints return the exact minimum and maximum. Interior quantiles
// select a single sorted value: index floor(n*q) counting from the bottom
// for q <= 0.5, and the mirrored index from the top above that.
func (v *Volume) Quantile(q float64) (float64, error) {
	if q < 0 || q > 1 {
		return 0, domainErrorf("quantile must be between 0 and 1, got %v", q)
	}
	if q == 0 {
		return v.Min(), nil
	}
	if q == 1 {
		return v.Max(), nil
	}
	values := append([]float64(nil), v.data.Data()...)
	sort.Float64s(values)
	n := len(values)
	var idx int
	if q <= 0.5 {
		idx = int(float64(n) * q)
	} else {
		idx = n - 1 - int(float64(n)*(1-q))
	}
	return values[idx], nil
}

// Unique returns the sorted unique voxel values.
func (v *Volume) Unique() []float64 {
	values := append([]float64(nil), v.data.Data()...)
	sort.Float64s(values)
	out := values[:0]
	for i, x := range values {
		if i == 0 || x != values[i-1] {
			out = append(out, x)
		}
	}
	return append([]float64(nil), out...)
}

// IsIn returns a boolean mask that is true where a voxel value is one of
// the given elements.
func (v *Volume) IsIn(elements []float64) *Volume {
	set := make(map[float64]struct{}, len(elements))
	for _, e := range elements {
		set[e] = struct{}{}
	}
	return &Volume{data: tensor.Map(v.data, tensor.Bool, func(a float64) float64 {
		_, ok := set[a]
		return boolToFloat(ok)
	}), geometry: v.geometry}
}

// Centroids computes the center of mass of each channel, in voxel or
// world coordinates. Negative values are clamped to zero before
// weighting.
func (v *Volume) Centroids(space affine.Space) [][3]float64 {
	base := v.Baseshape()
	channels := v.Channels()
	out := make([][3]float64, channels)
	for ch := 0; ch < channels; ch++ {
		for axis := 0; axis < 3; axis++ {
			// marginal mass profile along this axis
			profile := make([]float64, base[axis])
			for x := 0; x < base[0]; x++ {
				for y := 0; y < base[1]; y++ {
					for z := 0; z < base[2]; z++ {
						val := v.data.At(ch, x, y, z)
						if val < 0 {
							val = 0
						}
						profile[[3]int{x, y, z}[axis]] += val
					}
				}
			}
			var weighted, total float64
			n := float64(len(v.data.Data()) / channels / base[axis])
			for i, w := range profile {
				weighted += w / n * float64(i)
				total += w / n
			}
			out[ch][axis] = weighted / (total + 1e-6)
		}
	}
	if space == affine.World {
		out = v.geometry.Transform(out)
	}
	return out
}
