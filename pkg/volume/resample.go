package volume

import (
	"math"

	"gonum.org/v1/gonum/floats/scalar"

	"voxelgrid/pkg/affine"
	"voxelgrid/pkg/filter"
	"voxelgrid/pkg/sampler"
	"voxelgrid/pkg/tensor"
)

// ResampleLike resamples the volume features onto the grid of a target
// geometry.
//
// Before any interpolation, two fast paths are checked. If the source and
// target geometries match within tolerance the data is reused unchanged.
// If they differ only by an integer voxel shift, the result is computed
// by cropping and padding, which preserves the data bit-for-bit and skips
// the floating interpolation entirely. Only when neither applies is a
// sampling grid built and interpolated.
func (v *Volume) ResampleLike(target *affine.Geometry, mode sampler.Mode, padding sampler.Padding) (*Volume, error) {
	srcM := v.geometry.Matrix()
	tgtM := target.Matrix()

	if srcM.LinearApproxEqual(tgtM, affine.Tolerance) {
		// same rotation and scale: an exact match or a pure voxel shift
		// can skip interpolation
		if v.Baseshape() == target.Baseshape() && srcM.TranslationApproxEqual(tgtM, affine.Tolerance) {
			return &Volume{data: v.data, geometry: target}, nil
		}

		out, ok, err := v.resampleShifted(target, padding)
		if err != nil {
			return nil, err
		}
		if ok {
			return out, nil
		}
	}

	// full grid interpolation: collapse both geometries into a single
	// voxel-to-voxel transform and sample through it
	inverse, err := v.geometry.Inverse()
	if err != nil {
		return nil, err
	}
	base := v.Baseshape()
	grid, err := sampler.BuildGrid(target.Baseshape(), inverse.Compose(tgtM), base[:], sampler.DefaultConvention())
	if err != nil {
		return nil, err
	}
	resampled, err := sampler.Sample(v.data, grid, mode, padding)
	if err != nil {
		return nil, err
	}
	return New(resampled, target)
}

// resampleShifted detects a pure integer voxel shift between the source
// and target geometries and applies it as a crop plus pad. ok is false
// when the translation is not voxel-aligned or the grids do not overlap.
func (v *Volume) resampleShifted(target *affine.Geometry, padding sampler.Padding) (*Volume, bool, error) {
	inverse, err := v.geometry.Inverse()
	if err != nil {
		return nil, false, err
	}
	delta := inverse.Compose(target.Matrix()).TransformPoint([3]float64{})

	var lower [3]int
	for axis := 0; axis < 3; axis++ {
		rounded := math.Round(delta[axis])
		if !scalar.EqualWithinAbs(delta[axis], rounded, affine.Tolerance) {
			return nil, false, nil
		}
		lower[axis] = int(rounded)
	}

	src := v.Baseshape()
	tgt := target.Baseshape()
	var minc, maxc, before, after [3]int
	for axis := 0; axis < 3; axis++ {
		minc[axis] = clampInt(lower[axis], 0, src[axis])
		maxc[axis] = clampInt(lower[axis]+tgt[axis], 0, src[axis])
		before[axis] = clampInt(-lower[axis], 0, tgt[axis])
		after[axis] = tgt[axis] - before[axis] - (maxc[axis] - minc[axis])
		if maxc[axis] == minc[axis] {
			// disjoint grids: nothing to copy, leave it to interpolation
			return nil, false, nil
		}
	}

	resampled, err := v.data.Slice(
		[]int{0, minc[0], minc[1], minc[2]},
		[]int{v.Channels(), maxc[0], maxc[1], maxc[2]},
		[]int{1, 1, 1, 1})
	if err != nil {
		return nil, false, err
	}

	if before != [3]int{} || after != [3]int{} {
		padMode, err := padModeFor(padding)
		if err != nil {
			return nil, false, err
		}
		resampled, err = resampled.Pad(
			[]int{0, before[0], before[1], before[2]},
			[]int{0, after[0], after[1], after[2]},
			padMode, 0)
		if err != nil {
			return nil, false, err
		}
	}

	out, err := New(resampled, target)
	if err != nil {
		return nil, false, err
	}
	return out, true, nil
}

// padModeFor maps a sampling padding policy onto the tensor pad modes.
func padModeFor(padding sampler.Padding) (tensor.PadMode, error) {
	switch padding {
	case sampler.Zeros:
		return tensor.PadConstant, nil
	case sampler.Reflection:
		return tensor.PadReflect, nil
	case sampler.Border:
		return tensor.PadReplicate, nil
	default:
		return 0, domainErrorf("no padding mode equivalent for %v", padding)
	}
}

// Resample resamples the voxel features onto a new grid spacing, given in
// world units per voxel as a shared scalar or one value per axis. The new
// extent is rounded up so no content is cropped away.
func (v *Volume) Resample(spacing []float64, mode sampler.Mode, padding sampler.Padding) (*Volume, error) {
	target, err := expandVector(spacing)
	if err != nil {
		return nil, err
	}

	current := v.geometry.Spacing()
	base := v.Baseshape()
	var newshape [3]int
	var scale, shift [3]float64
	for axis := 0; axis < 3; axis++ {
		newshape[axis] = int(math.Ceil(current[axis] * float64(base[axis]) / target[axis]))
		scale[axis] = target[axis] / current[axis]
		shift[axis] = 0.5 * scale[axis] * (1 - float64(newshape[axis])/float64(base[axis]))
	}

	matrix := v.geometry.Shift(shift, affine.Voxel).Scale(scale, affine.Voxel)
	return v.ResampleLike(affine.NewGeometry(newshape, matrix), mode, padding)
}

// Reshape crops or pads around the image center to fit a target spatial
// shape. The operation is symmetric: reshaping back to the original shape
// always reproduces the original geometry.
func (v *Volume) Reshape(baseshape [3]int) (*Volume, error) {
	for axis, s := range baseshape {
		if s <= 0 {
			return nil, shapeErrorf("target shape %v must be positive on axis %d", baseshape, axis)
		}
	}
	base := v.Baseshape()
	var shift [3]float64
	for axis := 0; axis < 3; axis++ {
		shift[axis] = float64(floorDiv(base[axis]-baseshape[axis], 2))
	}
	target := affine.NewGeometry(baseshape, v.geometry.Shift(shift, affine.Voxel))
	return v.ResampleLike(target, sampler.Nearest, sampler.Zeros)
}

// Pad grows the spatial extent by a world-unit delta on each axis,
// re-centering the image. A negative delta crops instead.
func (v *Volume) Pad(delta []float64) (*Volume, error) {
	expanded, err := expandVector(delta)
	if err != nil {
		return nil, err
	}
	spacing := v.geometry.Spacing()
	base := v.Baseshape()
	var newshape [3]int
	for axis := 0; axis < 3; axis++ {
		newshape[axis] = base[axis] + int(math.Round(expanded[axis]/spacing[axis]))
		if newshape[axis] <= 0 {
			return nil, shapeErrorf("padding delta %v collapses axis %d", delta, axis)
		}
	}
	return v.Reshape(newshape)
}

// TransformOptions controls Volume.Transform. The zero value applies a
// geometry-only update with linear interpolation defaults.
type TransformOptions struct {
	// Resample interpolates the voxel data through the transform instead
	// of only updating the geometry.
	Resample bool

	// Negate composes the inverse transform back into the geometry so the
	// image content moves in voxel space but stays anchored to the same
	// world location. Valid only when resampling.
	Negate bool

	// Mode is the interpolation mode used when resampling.
	Mode sampler.Mode

	// Padding is the out-of-bounds policy used when resampling.
	Padding sampler.Padding
}

// Transform applies a world-space affine transform to the volume. By
// default only the geometry is updated and the data tensor is untouched;
// with Resample enabled the content is warped in voxel space instead.
func (v *Volume) Transform(transform *affine.Matrix, opts TransformOptions) (*Volume, error) {
	if !opts.Resample {
		if opts.Negate {
			return nil, preconditionErrorf("cannot negate transform when resampling is disabled")
		}
		geometry := affine.NewGeometry(v.Baseshape(), transform.Compose(v.geometry.Matrix()))
		return &Volume{data: v.data, geometry: geometry}, nil
	}

	// convert the world transform into a voxel-to-voxel mapping and
	// sample through its inverse
	inverse, err := v.geometry.Inverse()
	if err != nil {
		return nil, err
	}
	voxelTransform := inverse.Compose(transform).Compose(v.geometry.Matrix())
	inverted, err := voxelTransform.Inverse()
	if err != nil {
		return nil, err
	}

	base := v.Baseshape()
	grid, err := sampler.BuildGrid(base, inverted, base[:], sampler.DefaultConvention())
	if err != nil {
		return nil, err
	}
	interpolated, err := sampler.Sample(v.data, grid, opts.Mode, opts.Padding)
	if err != nil {
		return nil, err
	}

	geometry := v.geometry
	if opts.Negate {
		// cancel the world-space move by back-correcting the geometry
		transformInverse, err := transform.Inverse()
		if err != nil {
			return nil, err
		}
		geometry = affine.NewGeometry(base, transformInverse.Compose(v.geometry.Matrix()))
	}
	return New(interpolated, geometry)
}

// Smooth applies Gaussian smoothing with a world-space sigma, given as a
// shared scalar or one value per axis. The kernel extends truncate
// standard deviations before cutting off.
func (v *Volume) Smooth(sigma []float64, truncate float64) (*Volume, error) {
	expanded, err := expandVector(sigma)
	if err != nil {
		return nil, err
	}
	spacing := v.geometry.Spacing()
	scaled := make([]float64, 3)
	for axis := 0; axis < 3; axis++ {
		scaled[axis] = expanded[axis] / spacing[axis]
	}
	blurred, err := filter.GaussianBlur(v.data, scaled, truncate)
	if err != nil {
		return nil, shapeErrorf("smoothing volume: %v", err)
	}
	return New(blurred, v.geometry)
}

func clampInt(x, lo, hi int) int {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}

// floorDiv divides rounding toward negative infinity, matching the
// centered-shift arithmetic that keeps Reshape symmetric.
func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}
