package affine

// Geometry is an acquisition geometry: a voxel-to-world transform anchored
// to the spatial shape of the grid it is defined over. Geometries are
// read-only after construction and can be freely shared across volumes;
// derived grids always get a freshly constructed Geometry.
type Geometry struct {
	matrix    *Matrix
	baseshape [3]int
}

// NewGeometry builds a geometry over the given spatial shape. A nil matrix
// defaults to a centered identity in which the grid is centered at the
// world origin.
func NewGeometry(baseshape [3]int, matrix *Matrix) *Geometry {
	if matrix == nil {
		matrix = Centered(baseshape)
	}
	return &Geometry{matrix: matrix.Clone(), baseshape: baseshape}
}

// Centered returns the identity transform shifted so that the center of a
// grid with the given shape maps to the world origin.
func Centered(baseshape [3]int) *Matrix {
	var delta [3]float64
	for i, s := range baseshape {
		delta[i] = -float64(s-1) / 2
	}
	return Translation(delta)
}

// Matrix returns the voxel-to-world transform of the geometry.
func (g *Geometry) Matrix() *Matrix {
	return g.matrix
}

// Baseshape returns the spatial (W, H, D) shape the geometry is anchored to.
func (g *Geometry) Baseshape() [3]int {
	return g.baseshape
}

// Spacing returns the per-axis world units per voxel.
func (g *Geometry) Spacing() [3]float64 {
	return g.matrix.Spacing()
}

// Inverse returns the world-to-voxel transform.
func (g *Geometry) Inverse() (*Matrix, error) {
	return g.matrix.Inverse()
}

// Shift returns the geometry transform translated by delta in the given
// space. The result is a bare matrix: callers anchor it to a new shape
// when constructing the derived geometry.
func (g *Geometry) Shift(delta [3]float64, space Space) *Matrix {
	return g.matrix.Shift(delta, space)
}

// Scale returns the geometry transform scaled by the given per-axis
// factors in the given space.
func (g *Geometry) Scale(factor [3]float64, space Space) *Matrix {
	return g.matrix.Scale(factor, space)
}

// Transform maps a point set through the voxel-to-world transform.
func (g *Geometry) Transform(points [][3]float64) [][3]float64 {
	return g.matrix.Transform(points)
}

// ApproxEqual reports whether two geometries share a baseshape and a
// transform equal within the given absolute tolerance.
func (g *Geometry) ApproxEqual(other *Geometry, tol float64) bool {
	return g.baseshape == other.baseshape && g.matrix.ApproxEqual(other.matrix, tol)
}
