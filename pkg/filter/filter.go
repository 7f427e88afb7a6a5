// Package filter implements separable Gaussian smoothing over the spatial
// axes of a (C, W, H, D) image tensor.
package filter

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"

	"voxelgrid/pkg/tensor"
)

// Kernel1D generates a normalized 1D Gaussian kernel with the given
// standard deviation in element (voxel) units. The kernel radius is
// truncate standard deviations, so the length is 2*int(truncate*sigma+0.5)+1.
func Kernel1D(sigma, truncate float64) []float64 {
	r := int(truncate*sigma + 0.5)
	if sigma < 1e-5 {
		sigma = 1e-5
	}
	inv2 := 1 / (sigma * sigma)
	kernel := make([]float64, 2*r+1)
	for i := range kernel {
		x := float64(i - r)
		kernel[i] = math.Exp(-0.5 * x * x * inv2)
	}
	floats.Scale(1/floats.Sum(kernel), kernel)
	return kernel
}

// GaussianBlur convolves each spatial axis of a (C, W, H, D) tensor with a
// Gaussian kernel, preserving the channel count. Sigma is given per
// spatial axis in voxel units; the result is always a float tensor. The
// convolution zero-pads outside the grid.
func GaussianBlur(t *tensor.Dense, sigma []float64, truncate float64) (*tensor.Dense, error) {
	if t.Rank() != 4 {
		return nil, fmt.Errorf("expected a 4D image tensor, got rank %d", t.Rank())
	}
	if len(sigma) != 3 {
		return nil, fmt.Errorf("sigma must have 3 entries, got %d", len(sigma))
	}

	blurred := t.AsType(tensor.Float64)

	var kernel []float64
	for dim := 0; dim < 3; dim++ {
		// reuse the previous kernel when sigma repeats
		if dim == 0 || sigma[dim] != sigma[dim-1] {
			kernel = Kernel1D(sigma[dim], truncate)
		}
		// a length-one kernel is normalized to identity
		if len(kernel) == 1 {
			continue
		}
		blurred = convolveAxis(blurred, dim+1, kernel)
	}
	return blurred, nil
}

// convolveAxis applies a zero-padded same-size 1D convolution along one
// dimension of the tensor.
func convolveAxis(t *tensor.Dense, dim int, kernel []float64) *tensor.Dense {
	shape := t.Shape()
	strides := t.Strides()
	out := tensor.New(tensor.Float64, shape...)

	src := t.Data()
	dst := out.Data()
	radius := len(kernel) / 2
	size := shape[dim]
	stride := strides[dim]

	outer := 1
	for _, s := range shape[:dim] {
		outer *= s
	}
	inner := stride

	for o := 0; o < outer; o++ {
		base := o * stride * size
		for in := 0; in < inner; in++ {
			for i := 0; i < size; i++ {
				var acc float64
				for k, w := range kernel {
					j := i + k - radius
					if j < 0 || j >= size {
						continue
					}
					acc += w * src[base+j*stride+in]
				}
				dst[base+i*stride+in] = acc
			}
		}
	}
	return out
}
