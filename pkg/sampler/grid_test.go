package sampler

import (
	"math"
	"testing"

	"voxelgrid/pkg/affine"
)

// TestBuildGridIdentity verifies the raw index grid
func TestBuildGridIdentity(t *testing.T) {
	grid, err := BuildGrid([3]int{2, 3, 4}, nil, nil, DefaultConvention())
	if err != nil {
		t.Fatalf("BuildGrid failed: %v", err)
	}
	if grid.Shape() != [3]int{2, 3, 4} {
		t.Errorf("Expected grid shape (2, 3, 4), got %v", grid.Shape())
	}
	if grid.Normalized() {
		t.Error("Expected a raw index grid without normalization")
	}

	if got := grid.At(1, 2, 3); got != [3]float64{1, 2, 3} {
		t.Errorf("Expected identity coordinates (1, 2, 3), got %v", got)
	}
}

// TestBuildGridTransform verifies that coordinates pass through the
// transform
func TestBuildGridTransform(t *testing.T) {
	shift := affine.Translation([3]float64{10, 20, 30})
	grid, err := BuildGrid([3]int{2, 2, 2}, shift, nil, DefaultConvention())
	if err != nil {
		t.Fatalf("BuildGrid failed: %v", err)
	}
	if got := grid.At(1, 1, 1); got != [3]float64{11, 21, 31} {
		t.Errorf("Expected shifted coordinates (11, 21, 31), got %v", got)
	}
}

// TestBuildGridNormalized verifies align-corners normalization and axis
// reversal
func TestBuildGridNormalized(t *testing.T) {
	grid, err := BuildGrid([3]int{3, 3, 3}, nil, []int{3, 3, 3}, DefaultConvention())
	if err != nil {
		t.Fatalf("BuildGrid failed: %v", err)
	}
	if !grid.Normalized() {
		t.Fatal("Expected a normalized grid")
	}

	// Corner voxel centers map to -1 and +1
	if got := grid.At(0, 0, 0); got != [3]float64{-1, -1, -1} {
		t.Errorf("Expected the first corner at (-1, -1, -1), got %v", got)
	}
	if got := grid.At(2, 2, 2); got != [3]float64{1, 1, 1} {
		t.Errorf("Expected the last corner at (1, 1, 1), got %v", got)
	}

	// The grid center sits at the normalized origin
	if got := grid.At(1, 1, 1); got != [3]float64{0, 0, 0} {
		t.Errorf("Expected the center at the origin, got %v", got)
	}

	// Axis reversal stores (z, y, x): moving along x changes the last entry
	got := grid.At(2, 0, 0)
	if got[2] != 1 || got[0] != -1 {
		t.Errorf("Expected reversed axis order, got %v", got)
	}
}

// TestBuildGridValidation verifies the shape checks
func TestBuildGridValidation(t *testing.T) {
	if _, err := BuildGrid([3]int{0, 2, 2}, nil, nil, DefaultConvention()); err == nil {
		t.Error("Expected an error for a non-positive grid shape")
	}
	if _, err := BuildGrid([3]int{2, 2, 2}, nil, []int{2, 2}, DefaultConvention()); err == nil {
		t.Error("Expected an error for a short normalization shape")
	}
}

// TestCoordNormalizationRoundTrip verifies normalize and denormalize are
// inverse under both conventions
func TestCoordNormalizationRoundTrip(t *testing.T) {
	for _, alignCorners := range []bool{true, false} {
		for _, c := range []float64{0, 1, 2.5, 6} {
			n := normalizeCoord(c, 7, alignCorners)
			back := denormalizeCoord(n, 7, alignCorners)
			if math.Abs(back-c) > 1e-12 {
				t.Errorf("Expected round trip of %f (alignCorners=%t), got %f", c, alignCorners, back)
			}
		}
	}

	// Under align-corners, voxel 0 and size-1 are exactly the ends
	if normalizeCoord(0, 5, true) != -1 || normalizeCoord(4, 5, true) != 1 {
		t.Error("Expected align-corners ends at -1 and 1")
	}
}
