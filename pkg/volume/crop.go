package volume

import (
	"math"

	"voxelgrid/pkg/affine"
	"voxelgrid/pkg/mesh"
	"voxelgrid/pkg/slicing"
)

// Region selects an explicit per-axis crop in (C, W, H, D) order. A
// partial region is expanded with full-axis selections.
type Region []slicing.Range

// PointSet crops to the axis-aligned voxel bounding box of a set of
// world-space points.
type PointSet [][3]float64

// Crop crops the volume to some bounding, defined either by a voxel
// slicing region or by a world-space bounding mesh or point set. A
// non-nil margin (in world units, one shared value or one per axis)
// expands the cropping boundary; the boundary is clipped to the volume
// extent. Cropping may narrow the channel axis but must always retain
// all three spatial axes.
func (v *Volume) Crop(cropping interface{}, margin []float64) (*Volume, error) {
	marginVox, err := v.marginToVoxels(margin)
	if err != nil {
		return nil, err
	}

	var minc, maxc [3]int // inclusive spatial corner coordinates
	var stride [3]int
	chmin, chmax := 0, v.Channels() // channel window, exclusive max

	switch c := cropping.(type) {
	case *mesh.Mesh:
		minc, maxc, err = v.pointsToCorners(c.Vertices, marginVox)
		stride = [3]int{1, 1, 1}
	case PointSet:
		minc, maxc, err = v.pointsToCorners(c, marginVox)
		stride = [3]int{1, 1, 1}
	case Region:
		chmin, chmax, minc, maxc, stride, err = v.regionToCorners(c, marginVox)
	case []slicing.Range:
		chmin, chmax, minc, maxc, stride, err = v.regionToCorners(Region(c), marginVox)
	case slicing.Range:
		chmin, chmax, minc, maxc, stride, err = v.regionToCorners(Region{c}, marginVox)
	default:
		return nil, domainErrorf("unknown cropping item type %T", cropping)
	}
	if err != nil {
		return nil, err
	}

	for axis := 0; axis < 3; axis++ {
		if maxc[axis] < minc[axis] {
			return nil, invalidCropErrorf("empty crop region on axis %d", axis)
		}
	}

	// shift (and scale, when strided) the geometry to the new grid origin
	matrix := v.geometry.Matrix()
	if minc != [3]int{} {
		matrix = matrix.Shift([3]float64{float64(minc[0]), float64(minc[1]), float64(minc[2])}, affine.Voxel)
	}
	if stride != [3]int{1, 1, 1} {
		matrix = matrix.Scale([3]float64{float64(stride[0]), float64(stride[1]), float64(stride[2])}, affine.Voxel)
	}

	cropped, err := v.data.Slice(
		[]int{chmin, minc[0], minc[1], minc[2]},
		[]int{chmax, maxc[0] + 1, maxc[1] + 1, maxc[2] + 1},
		[]int{1, stride[0], stride[1], stride[2]})
	if err != nil {
		return nil, invalidCropErrorf("cropping volume: %v", err)
	}
	geometry := affine.NewGeometry([3]int{cropped.Dim(1), cropped.Dim(2), cropped.Dim(3)}, matrix)
	return New(cropped, geometry)
}

// CropToNonzero crops the volume to the bounding box around its nonzero
// voxels, including the channel axis. The margin behaves as in Crop.
func (v *Volume) CropToNonzero(margin []float64) (*Volume, error) {
	min, max, ok := v.data.NonzeroBounds()
	if !ok {
		return nil, invalidCropErrorf("cannot compute nonzero bounds on an empty volume")
	}
	return v.Crop(Region(slicing.FromCoordinates(min, max, nil)), margin)
}

// Bounds computes a world-space box mesh enclosing the volume grid or,
// when nonzero is set, the nonzero voxels. A margin in world units
// expands (or, if negative, shrinks) the box.
func (v *Volume) Bounds(nonzero bool, margin []float64) (*mesh.Mesh, error) {
	base := v.Baseshape()
	var minp, maxp [3]float64
	if nonzero {
		collapsed := v
		if v.Channels() > 1 {
			summed, err := v.ChannelSum()
			if err != nil {
				return nil, err
			}
			collapsed = summed
		}
		min, max, ok := collapsed.data.NonzeroBounds()
		if !ok {
			return nil, invalidCropErrorf("cannot compute nonzero bounds on an empty volume")
		}
		for axis := 0; axis < 3; axis++ {
			minp[axis] = float64(min[axis+1])
			maxp[axis] = float64(max[axis+1])
		}
	} else {
		for axis := 0; axis < 3; axis++ {
			maxp[axis] = float64(base[axis] - 1)
		}
	}

	if margin != nil {
		expanded, err := expandVector(margin)
		if err != nil {
			return nil, err
		}
		spacing := v.geometry.Spacing()
		for axis := 0; axis < 3; axis++ {
			minp[axis] -= expanded[axis] / spacing[axis]
			maxp[axis] += expanded[axis] / spacing[axis]
		}
	}

	return mesh.Box(minp, maxp).Transform(v.geometry.Matrix()), nil
}

// marginToVoxels converts a world-unit margin to rounded voxel counts.
func (v *Volume) marginToVoxels(margin []float64) (*[3]int, error) {
	if margin == nil {
		return nil, nil
	}
	expanded, err := expandVector(margin)
	if err != nil {
		return nil, err
	}
	spacing := v.geometry.Spacing()
	var out [3]int
	for axis := 0; axis < 3; axis++ {
		out[axis] = int(math.Round(expanded[axis] / spacing[axis]))
	}
	return &out, nil
}

// expandVector broadcasts a one-element vector to the spatial rank.
func expandVector(vec []float64) ([3]float64, error) {
	switch len(vec) {
	case 1:
		return [3]float64{vec[0], vec[0], vec[0]}, nil
	case 3:
		return [3]float64{vec[0], vec[1], vec[2]}, nil
	default:
		return [3]float64{}, shapeErrorf("expected 1 or 3 vector entries, got %d", len(vec))
	}
}

// pointsToCorners inverse-transforms world points into voxel space and
// returns the clamped inclusive bounding corners.
func (v *Volume) pointsToCorners(points [][3]float64, margin *[3]int) (minc, maxc [3]int, err error) {
	world2voxel, err := v.geometry.Inverse()
	if err != nil {
		return minc, maxc, err
	}
	voxels := world2voxel.Transform(points)
	if len(voxels) == 0 {
		return minc, maxc, invalidCropErrorf("cannot crop to an empty point set")
	}

	lo := voxels[0]
	hi := voxels[0]
	for _, p := range voxels[1:] {
		for axis := 0; axis < 3; axis++ {
			lo[axis] = math.Min(lo[axis], p[axis])
			hi[axis] = math.Max(hi[axis], p[axis])
		}
	}

	base := v.Baseshape()
	for axis := 0; axis < 3; axis++ {
		minc[axis] = int(math.Ceil(lo[axis]))
		maxc[axis] = int(math.Floor(hi[axis]))
		if margin != nil {
			minc[axis] -= margin[axis]
			maxc[axis] += margin[axis]
		}
		if minc[axis] < 0 {
			minc[axis] = 0
		}
		if maxc[axis] > base[axis]-1 {
			maxc[axis] = base[axis] - 1
		}
	}
	return minc, maxc, nil
}

// regionToCorners expands a slicing region to full rank and resolves it
// into channel and spatial windows. Collapsing a spatial axis is
// forbidden.
func (v *Volume) regionToCorners(region Region, margin *[3]int) (chmin, chmax int, minc, maxc, stride [3]int, err error) {
	full, err := slicing.Expand(region, 4)
	if err != nil {
		return 0, 0, minc, maxc, stride, domainErrorf("cropping region: %v", err)
	}
	for axis, r := range full[1:] {
		if r.Scalar {
			return 0, 0, minc, maxc, stride,
				invalidCropErrorf("cannot remove spatial dimension %d when cropping a volume", axis)
		}
	}

	base := v.Baseshape()
	shape := []int{v.Channels(), base[0], base[1], base[2]}
	min4, max4, step4, err := slicing.ToCoordinates(full, shape)
	if err != nil {
		return 0, 0, minc, maxc, stride, domainErrorf("cropping region: %v", err)
	}

	chmin, chmax = min4[0], max4[0]+1
	for axis := 0; axis < 3; axis++ {
		minc[axis] = min4[axis+1]
		maxc[axis] = max4[axis+1]
		stride[axis] = step4[axis+1]
		if margin != nil {
			minc[axis] -= margin[axis]
			maxc[axis] += margin[axis]
			if minc[axis] < 0 {
				minc[axis] = 0
			}
			if maxc[axis] > base[axis]-1 {
				maxc[axis] = base[axis] - 1
			}
		}
	}
	return chmin, chmax, minc, maxc, stride, nil
}
