// Package sampler builds coordinate grids over target volume shapes and
// interpolates image tensors at those coordinates. It is the continuous
// half of the resampling engine: callers that cannot reuse voxel data via
// index arithmetic regenerate it here through grid sampling.
package sampler

import (
	"fmt"

	"voxelgrid/pkg/affine"
)

// Convention captures the coordinate conventions a grid is normalized
// under, so that they can be audited and tested rather than assumed.
type Convention struct {
	// AlignCorners places the coordinate origin at the center of voxel
	// (0, 0, 0), so -1 and +1 map to the centers of the corner voxels.
	AlignCorners bool

	// ReverseAxes stores normalized coordinates in (z, y, x) order, the
	// ordering expected by grid-sample style interpolation.
	ReverseAxes bool
}

// DefaultConvention returns the convention used throughout this module:
// align-corners normalization with reversed axis order.
func DefaultConvention() Convention {
	return Convention{AlignCorners: true, ReverseAxes: true}
}

// Grid is a dense field of per-voxel sampling coordinates over a target
// shape. Points are stored row-major as (W, H, D, 3). Grids are transient:
// they are built on demand for one interpolation and never persisted.
type Grid struct {
	shape      [3]int
	points     []float64
	normalized bool
	source     [3]int
	conv       Convention
}

// BuildGrid generates the identity index grid over a 3D shape. If
// transform is non-nil each coordinate is mapped through it. If normalize
// is non-nil it must hold the source grid shape; coordinates are then
// rescaled into [-1, 1] per axis and reordered according to the
// convention. NaN or Inf coordinates are allowed and later sample as
// out-of-bounds.
func BuildGrid(shape [3]int, transform *affine.Matrix, normalize []int, conv Convention) (*Grid, error) {
	if normalize != nil && len(normalize) != 3 {
		return nil, fmt.Errorf("normalization shape must be 3-dimensional, got %d", len(normalize))
	}
	for i, s := range shape {
		if s <= 0 {
			return nil, fmt.Errorf("grid shape must be positive, got %d on axis %d", s, i)
		}
	}

	g := &Grid{
		shape:      shape,
		points:     make([]float64, shape[0]*shape[1]*shape[2]*3),
		normalized: normalize != nil,
		conv:       conv,
	}
	if g.normalized {
		copy(g.source[:], normalize)
	}

	i := 0
	for x := 0; x < shape[0]; x++ {
		for y := 0; y < shape[1]; y++ {
			for z := 0; z < shape[2]; z++ {
				p := [3]float64{float64(x), float64(y), float64(z)}
				if transform != nil {
					p = transform.TransformPoint(p)
				}
				if g.normalized {
					for a := 0; a < 3; a++ {
						p[a] = normalizeCoord(p[a], g.source[a], conv.AlignCorners)
					}
					if conv.ReverseAxes {
						p[0], p[2] = p[2], p[0]
					}
				}
				g.points[i] = p[0]
				g.points[i+1] = p[1]
				g.points[i+2] = p[2]
				i += 3
			}
		}
	}
	return g, nil
}

// Shape returns the target shape the grid spans.
func (g *Grid) Shape() [3]int { return g.shape }

// Normalized reports whether the grid coordinates are in [-1, 1] form.
func (g *Grid) Normalized() bool { return g.normalized }

// At returns the stored coordinate triple for a grid position.
func (g *Grid) At(x, y, z int) [3]float64 {
	i := ((x*g.shape[1]+y)*g.shape[2] + z) * 3
	return [3]float64{g.points[i], g.points[i+1], g.points[i+2]}
}

// normalizeCoord rescales a voxel coordinate into [-1, 1] over an axis of
// the given size.
func normalizeCoord(c float64, size int, alignCorners bool) float64 {
	if alignCorners {
		if size <= 1 {
			return -1
		}
		return c/float64(size-1)*2 - 1
	}
	return (2*c+1)/float64(size) - 1
}

// denormalizeCoord inverts normalizeCoord back to voxel units.
func denormalizeCoord(c float64, size int, alignCorners bool) float64 {
	if alignCorners {
		return (c + 1) / 2 * float64(size-1)
	}
	return ((c+1)*float64(size) - 1) / 2
}
