package affine

import (
	"math"
	"testing"
)

// TestCenteredGeometry verifies that the default geometry maps the grid
// center to the world origin
func TestCenteredGeometry(t *testing.T) {
	g := NewGeometry([3]int{5, 9, 3}, nil)

	center := g.Transform([][3]float64{{2, 4, 1}})[0]
	for i := 0; i < 3; i++ {
		if math.Abs(center[i]) > Tolerance {
			t.Errorf("Expected grid center at the world origin, got %v", center)
			break
		}
	}

	// For even extents the center falls between voxels
	g = NewGeometry([3]int{4, 4, 4}, nil)
	corner := g.Transform([][3]float64{{0, 0, 0}})[0]
	for i := 0; i < 3; i++ {
		if math.Abs(corner[i]+1.5) > Tolerance {
			t.Errorf("Expected first voxel at (-1.5, -1.5, -1.5), got %v", corner)
			break
		}
	}
}

// TestGeometryCloneIsolation verifies that a geometry holds its own copy of
// the transform
func TestGeometryCloneIsolation(t *testing.T) {
	matrix := Identity()
	g := NewGeometry([3]int{2, 2, 2}, matrix)

	// Mutating the source matrix must not leak into the geometry
	matrix.m.Set(0, 3, 100)
	if g.Matrix().At(0, 3) != 0 {
		t.Error("Expected the geometry to hold an isolated copy of the matrix")
	}
}

// TestGeometryInverse verifies the world-to-voxel transform
func TestGeometryInverse(t *testing.T) {
	g := NewGeometry([3]int{5, 5, 5}, Scaling([3]float64{2, 2, 2}))

	inv, err := g.Inverse()
	if err != nil {
		t.Fatalf("Inverse failed: %v", err)
	}
	got := inv.TransformPoint([3]float64{4, 4, 4})
	if got != [3]float64{2, 2, 2} {
		t.Errorf("Expected world point (4, 4, 4) at voxel (2, 2, 2), got %v", got)
	}
}

// TestGeometryApproxEqual verifies that shape and transform both matter
func TestGeometryApproxEqual(t *testing.T) {
	a := NewGeometry([3]int{4, 4, 4}, nil)
	b := NewGeometry([3]int{4, 4, 4}, nil)
	c := NewGeometry([3]int{5, 4, 4}, nil)

	if !a.ApproxEqual(b, Tolerance) {
		t.Error("Expected identical geometries to compare equal")
	}
	if a.ApproxEqual(c, Tolerance) {
		t.Error("Expected geometries over different shapes to compare unequal")
	}
}
