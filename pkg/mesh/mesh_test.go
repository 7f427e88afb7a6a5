package mesh

import (
	"bytes"
	"math"
	"testing"

	"voxelgrid/pkg/affine"
)

// TestBox verifies box construction from corner coordinates
func TestBox(t *testing.T) {
	min := [3]float64{-1, 0, 2}
	max := [3]float64{1, 3, 5}
	box := Box(min, max)

	if len(box.Vertices) != 8 {
		t.Fatalf("Expected 8 vertices, got %d", len(box.Vertices))
	}
	if len(box.Faces) != 12 {
		t.Fatalf("Expected 12 triangles, got %d", len(box.Faces))
	}

	gotMin, gotMax := box.Bounds()
	if gotMin != min || gotMax != max {
		t.Errorf("Expected bounds [%v %v], got [%v %v]", min, max, gotMin, gotMax)
	}

	// Every vertex coordinate is either the min or max corner value
	for _, v := range box.Vertices {
		for i := 0; i < 3; i++ {
			if v[i] != min[i] && v[i] != max[i] {
				t.Errorf("Expected corner coordinates, got vertex %v", v)
			}
		}
	}
}

// TestTransform verifies that transforms map vertices and preserve faces
func TestTransform(t *testing.T) {
	box := Box([3]float64{0, 0, 0}, [3]float64{1, 1, 1})
	moved := box.Transform(affine.Translation([3]float64{10, 0, 0}))

	min, max := moved.Bounds()
	if min != [3]float64{10, 0, 0} || max != [3]float64{11, 1, 1} {
		t.Errorf("Expected translated bounds, got [%v %v]", min, max)
	}
	if len(moved.Faces) != len(box.Faces) {
		t.Errorf("Expected faces to carry over, got %d", len(moved.Faces))
	}

	// The source mesh is untouched
	min, _ = box.Bounds()
	if min != [3]float64{0, 0, 0} {
		t.Error("Expected the source mesh to be unchanged")
	}
}

// TestFaceNormal verifies normal computation and the degenerate case
func TestFaceNormal(t *testing.T) {
	// Counter-clockwise triangle in the xy plane points along +z
	n := faceNormal([3]float64{0, 0, 0}, [3]float64{1, 0, 0}, [3]float64{0, 1, 0})
	if math.Abs(n[0]) > 1e-12 || math.Abs(n[1]) > 1e-12 || math.Abs(n[2]-1) > 1e-12 {
		t.Errorf("Expected normal (0, 0, 1), got %v", n)
	}

	// A degenerate triangle has no normal
	n = faceNormal([3]float64{0, 0, 0}, [3]float64{1, 1, 1}, [3]float64{2, 2, 2})
	if n != [3]float64{} {
		t.Errorf("Expected zero normal for a degenerate triangle, got %v", n)
	}
}

// TestWriteSTL verifies the binary STL layout
func TestWriteSTL(t *testing.T) {
	box := Box([3]float64{0, 0, 0}, [3]float64{1, 1, 1})

	var buf bytes.Buffer
	if err := box.WriteSTL(&buf); err != nil {
		t.Fatalf("WriteSTL failed: %v", err)
	}

	// 80-byte header + uint32 count + 12 triangles of 50 bytes each
	wantSize := 80 + 4 + 12*50
	if buf.Len() != wantSize {
		t.Errorf("Expected %d bytes of STL output, got %d", wantSize, buf.Len())
	}

	// Triangle count sits directly after the header, little endian
	raw := buf.Bytes()
	count := uint32(raw[80]) | uint32(raw[81])<<8 | uint32(raw[82])<<16 | uint32(raw[83])<<24
	if count != 12 {
		t.Errorf("Expected a triangle count of 12, got %d", count)
	}
}
