// Package volume implements a multi-channel volumetric (3D) image with a
// world-space affine geometry, and the spatial operations that keep voxel
// data and world coordinates consistent: crop, resample, reshape, pad,
// transform, and smooth.
//
// The volume grid has dimensions (C, W, H, D) where C is the number of
// feature channels and (W, H, D) is the spatial extent, called the
// baseshape. Every spatial operation produces a new Volume; data and
// geometry are treated as immutable once built, with in-place elementwise
// arithmetic as the only sanctioned mutation.
package volume

import (
	"math/rand"

	"voxelgrid/pkg/affine"
	"voxelgrid/pkg/tensor"
)

// Volume bundles a (C, W, H, D) feature tensor with the acquisition
// geometry mapping its voxel coordinates to world space.
type Volume struct {
	data     *tensor.Dense
	geometry *affine.Geometry
}

// New constructs a volume from a 3D or 4D tensor. A 3D tensor is promoted
// to a single channel. A nil geometry defaults to a centered identity in
// which the image volume is centered at the world origin. The geometry
// baseshape must match the spatial shape of the tensor.
func New(data *tensor.Dense, geometry *affine.Geometry) (*Volume, error) {
	switch data.Rank() {
	case 3:
		sh := data.Shape()
		reshaped, err := data.Reshape(1, sh[0], sh[1], sh[2])
		if err != nil {
			return nil, err
		}
		data = reshaped
	case 4:
	default:
		return nil, shapeErrorf("expected 3D or 4D features, got a %dD input", data.Rank())
	}
	base := [3]int{data.Dim(1), data.Dim(2), data.Dim(3)}
	if geometry == nil {
		geometry = affine.NewGeometry(base, nil)
	} else if geometry.Baseshape() != base {
		return nil, shapeErrorf("geometry shape %v must match the image base shape %v",
			geometry.Baseshape(), base)
	}
	return &Volume{data: data, geometry: geometry}, nil
}

// FromSlice constructs a volume around raw values with the given shape
// (3D or 4D) and a default centered geometry.
func FromSlice(dtype tensor.DType, values []float64, shape ...int) (*Volume, error) {
	t, err := tensor.FromSlice(dtype, values, shape...)
	if err != nil {
		return nil, shapeErrorf("building volume tensor: %v", err)
	}
	return New(t, nil)
}

// Derive constructs a new volume with the given tensor while preserving
// any unchanged properties of the original. A nil geometry propagates the
// current geometry, which then must still match the new tensor shape.
func (v *Volume) Derive(data *tensor.Dense, geometry *affine.Geometry) (*Volume, error) {
	if geometry == nil {
		geometry = v.geometry
	}
	return New(data, geometry)
}

// Data returns the feature tensor, always of shape (C, W, H, D).
func (v *Volume) Data() *tensor.Dense { return v.data }

// Geometry returns the acquisition geometry mapping voxel-center
// coordinates to world coordinates.
func (v *Volume) Geometry() *affine.Geometry { return v.geometry }

// Shape returns the full 4D (C, W, H, D) shape including channels.
func (v *Volume) Shape() [4]int {
	return [4]int{v.data.Dim(0), v.data.Dim(1), v.data.Dim(2), v.data.Dim(3)}
}

// Baseshape returns the spatial (W, H, D) shape, excluding channels.
func (v *Volume) Baseshape() [3]int {
	return [3]int{v.data.Dim(1), v.data.Dim(2), v.data.Dim(3)}
}

// Channels returns the number of feature channels.
func (v *Volume) Channels() int { return v.data.Dim(0) }

// DType returns the element type of the feature tensor.
func (v *Volume) DType() tensor.DType { return v.data.DType() }

// AsType converts the volume to the given dtype. Converting to the
// current dtype returns the receiver.
func (v *Volume) AsType(dtype tensor.DType) *Volume {
	if dtype == v.data.DType() {
		return v
	}
	return &Volume{data: v.data.AsType(dtype), geometry: v.geometry}
}

// Float converts the volume to float64 values.
func (v *Volume) Float() *Volume { return v.AsType(tensor.Float64) }

// Int converts the volume to int32 values, truncating toward zero.
func (v *Volume) Int() *Volume { return v.AsType(tensor.Int32) }

// Bool converts the volume to a boolean mask of nonzero values.
func (v *Volume) Bool() *Volume { return v.AsType(tensor.Bool) }

// ZerosLike creates a zero-filled volume with the same shape, dtype and
// geometry as the receiver.
func (v *Volume) ZerosLike() *Volume {
	return &Volume{data: tensor.New(v.data.DType(), v.data.Shape()...), geometry: v.geometry}
}

// OnesLike creates a one-filled volume with the same shape, dtype and
// geometry as the receiver.
func (v *Volume) OnesLike() *Volume {
	return v.FullLike(1)
}

// FullLike creates a volume filled with the given value, with the same
// shape, dtype and geometry as the receiver.
func (v *Volume) FullLike(fill float64) *Volume {
	return &Volume{data: tensor.Full(v.data.DType(), fill, v.data.Shape()...), geometry: v.geometry}
}

// RandLike creates a volume of uniform random values on [0, 1) with the
// same shape, dtype and geometry as the receiver.
func (v *Volume) RandLike(rng *rand.Rand) *Volume {
	return &Volume{data: tensor.Rand(v.data.DType(), rng, v.data.Shape()...), geometry: v.geometry}
}

// RandnLike creates a volume of normally distributed random values with
// the same shape, dtype and geometry as the receiver.
func (v *Volume) RandnLike(rng *rand.Rand) *Volume {
	return &Volume{data: tensor.Randn(v.data.DType(), rng, v.data.Shape()...), geometry: v.geometry}
}

// Stack concatenates volumes channel-wise. All volumes must share the
// same baseshape; the geometry of the first volume is propagated.
func Stack(vols ...*Volume) (*Volume, error) {
	if len(vols) == 0 {
		return nil, shapeErrorf("stack requires at least one volume")
	}
	if len(vols) == 1 {
		return vols[0], nil
	}
	first := vols[0]
	channels := 0
	for _, v := range vols {
		if v.Baseshape() != first.Baseshape() {
			return nil, shapeErrorf("cannot stack volumes with base shapes %v and %v",
				first.Baseshape(), v.Baseshape())
		}
		channels += v.Channels()
	}
	base := first.Baseshape()
	out := tensor.New(first.DType(), channels, base[0], base[1], base[2])
	data := out.Data()
	offset := 0
	for _, v := range vols {
		n := copy(data[offset:], v.data.AsType(first.DType()).Data())
		offset += n
	}
	return &Volume{data: out, geometry: first.geometry}, nil
}
