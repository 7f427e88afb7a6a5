// Package mesh provides the minimal triangle-mesh support the volume
// operations consume: axis-aligned box construction and affine transforms
// of vertex sets.
package mesh

import (
	"voxelgrid/pkg/affine"
)

// Mesh is a triangle mesh with shared vertices.
type Mesh struct {
	Vertices [][3]float64
	Faces    [][3]int
}

// boxFaces indexes the 8 corners of a box into 12 triangles, two per side.
var boxFaces = [][3]int{
	{0, 1, 3}, {0, 3, 2}, // x min
	{4, 7, 5}, {4, 6, 7}, // x max
	{0, 4, 5}, {0, 5, 1}, // y min
	{2, 3, 7}, {2, 7, 6}, // y max
	{0, 2, 6}, {0, 6, 4}, // z min
	{1, 5, 7}, {1, 7, 3}, // z max
}

// Box constructs an axis-aligned box mesh spanning the given corners.
func Box(min, max [3]float64) *Mesh {
	vertices := make([][3]float64, 8)
	for i := 0; i < 8; i++ {
		v := min
		if i&4 != 0 {
			v[0] = max[0]
		}
		if i&2 != 0 {
			v[1] = max[1]
		}
		if i&1 != 0 {
			v[2] = max[2]
		}
		vertices[i] = v
	}
	faces := make([][3]int, len(boxFaces))
	copy(faces, boxFaces)
	return &Mesh{Vertices: vertices, Faces: faces}
}

// Transform returns a new mesh with all vertices mapped through the given
// affine transform. Faces are shared with the source mesh.
func (m *Mesh) Transform(a *affine.Matrix) *Mesh {
	return &Mesh{Vertices: a.Transform(m.Vertices), Faces: m.Faces}
}

// Bounds returns the axis-aligned bounding corners of the mesh vertices.
func (m *Mesh) Bounds() (min, max [3]float64) {
	if len(m.Vertices) == 0 {
		return min, max
	}
	min = m.Vertices[0]
	max = m.Vertices[0]
	for _, v := range m.Vertices[1:] {
		for i := 0; i < 3; i++ {
			if v[i] < min[i] {
				min[i] = v[i]
			}
			if v[i] > max[i] {
				max[i] = v[i]
			}
		}
	}
	return min, max
}
