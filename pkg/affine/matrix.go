// Package affine provides voxel-to-world affine transforms and the
// acquisition geometry that anchors them to a voxel grid. A Matrix is a
// 4x4 homogeneous affine (3x3 rotation/scale block plus translation) and
// a Geometry pairs a Matrix with the spatial shape it is defined over.
package affine

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats/scalar"
	"gonum.org/v1/gonum/mat"
)

// Tolerance is the absolute tolerance used for all geometry equivalence
// checks (matrix comparison and integer-shift detection). Comparisons use
// zero relative tolerance, so callers must not rely on exact binary
// equality of transformed geometries. Note this is a fixed absolute value
// regardless of coordinate magnitude.
const Tolerance = 1e-4

// Space identifies the coordinate space a shift or scale operates in.
type Space string

const (
	// Voxel space: discrete grid index coordinates.
	Voxel Space = "voxel"

	// World space: continuous scanner/world coordinates.
	World Space = "world"
)

// Matrix is a 4x4 homogeneous affine transform mapping voxel-center
// coordinates to world coordinates. The bottom row is always (0, 0, 0, 1).
type Matrix struct {
	m *mat.Dense
}

// Identity returns the identity transform.
func Identity() *Matrix {
	m := mat.NewDense(4, 4, nil)
	for i := 0; i < 4; i++ {
		m.Set(i, i, 1)
	}
	return &Matrix{m: m}
}

// Translation returns a transform that translates points by delta.
func Translation(delta [3]float64) *Matrix {
	t := Identity()
	for i, d := range delta {
		t.m.Set(i, 3, d)
	}
	return t
}

// Scaling returns a transform that scales each axis by the given factors.
func Scaling(factor [3]float64) *Matrix {
	s := Identity()
	for i, f := range factor {
		s.m.Set(i, i, f)
	}
	return s
}

// New builds a transform from an explicit rotation/scale block and a
// translation vector.
func New(linear [3][3]float64, translation [3]float64) *Matrix {
	a := Identity()
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			a.m.Set(i, j, linear[i][j])
		}
		a.m.Set(i, 3, translation[i])
	}
	return a
}

// At returns the matrix entry at row i, column j.
func (a *Matrix) At(i, j int) float64 {
	return a.m.At(i, j)
}

// Translation returns the translation column of the transform.
func (a *Matrix) Translation() [3]float64 {
	return [3]float64{a.m.At(0, 3), a.m.At(1, 3), a.m.At(2, 3)}
}

// Clone returns a deep copy of the transform.
func (a *Matrix) Clone() *Matrix {
	c := mat.NewDense(4, 4, nil)
	c.Copy(a.m)
	return &Matrix{m: c}
}

// Compose returns the composition a ∘ b, the transform that applies b
// first and then a.
func (a *Matrix) Compose(b *Matrix) *Matrix {
	var out mat.Dense
	out.Mul(a.m, b.m)
	return &Matrix{m: &out}
}

// Inverse returns the inverse transform. An error is returned if the
// matrix is singular, which for a well-formed affine means a zero scale
// on some axis.
func (a *Matrix) Inverse() (*Matrix, error) {
	var inv mat.Dense
	if err := inv.Inverse(a.m); err != nil {
		return nil, fmt.Errorf("affine matrix is not invertible: %w", err)
	}
	return &Matrix{m: &inv}, nil
}

// TransformPoint maps a single point through the transform.
func (a *Matrix) TransformPoint(p [3]float64) [3]float64 {
	var out [3]float64
	for i := 0; i < 3; i++ {
		out[i] = a.m.At(i, 0)*p[0] + a.m.At(i, 1)*p[1] + a.m.At(i, 2)*p[2] + a.m.At(i, 3)
	}
	return out
}

// Transform maps a set of points through the transform, returning a new
// point set.
func (a *Matrix) Transform(points [][3]float64) [][3]float64 {
	out := make([][3]float64, len(points))
	for i, p := range points {
		out[i] = a.TransformPoint(p)
	}
	return out
}

// Shift returns a copy of the transform translated by delta in the given
// space. A voxel-space shift offsets grid indices before the transform is
// applied; a world-space shift offsets the output coordinates.
func (a *Matrix) Shift(delta [3]float64, space Space) *Matrix {
	if space == Voxel {
		return a.Compose(Translation(delta))
	}
	return Translation(delta).Compose(a)
}

// Scale returns a copy of the transform scaled by the given per-axis
// factors in the given space. A voxel-space scale stretches grid indices
// before the transform is applied; a world-space scale stretches the
// output coordinates.
func (a *Matrix) Scale(factor [3]float64, space Space) *Matrix {
	if space == Voxel {
		return a.Compose(Scaling(factor))
	}
	return Scaling(factor).Compose(a)
}

// Spacing returns the per-axis world units covered by one voxel step,
// computed as the column norms of the rotation/scale block.
func (a *Matrix) Spacing() [3]float64 {
	var spacing [3]float64
	for j := 0; j < 3; j++ {
		var sum float64
		for i := 0; i < 3; i++ {
			v := a.m.At(i, j)
			sum += v * v
		}
		spacing[j] = math.Sqrt(sum)
	}
	return spacing
}

// ApproxEqual reports whether two transforms match entrywise within the
// given absolute tolerance.
func (a *Matrix) ApproxEqual(b *Matrix, tol float64) bool {
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			if !scalar.EqualWithinAbs(a.m.At(i, j), b.m.At(i, j), tol) {
				return false
			}
		}
	}
	return true
}

// LinearApproxEqual reports whether the rotation/scale blocks of two
// transforms match within the given absolute tolerance, ignoring the
// translation column.
func (a *Matrix) LinearApproxEqual(b *Matrix, tol float64) bool {
	for i := 0; i < 4; i++ {
		for j := 0; j < 3; j++ {
			if !scalar.EqualWithinAbs(a.m.At(i, j), b.m.At(i, j), tol) {
				return false
			}
		}
	}
	return true
}

// TranslationApproxEqual reports whether the translation columns of two
// transforms match within the given absolute tolerance.
func (a *Matrix) TranslationApproxEqual(b *Matrix, tol float64) bool {
	for i := 0; i < 3; i++ {
		if !scalar.EqualWithinAbs(a.m.At(i, 3), b.m.At(i, 3), tol) {
			return false
		}
	}
	return true
}

// String renders the matrix for debugging output.
func (a *Matrix) String() string {
	return fmt.Sprintf("%.6v", mat.Formatted(a.m))
}
