package mesh

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
)

// WriteSTL writes the mesh to w in binary STL format. Face normals are
// computed from the triangle winding.
func (m *Mesh) WriteSTL(w io.Writer) error {
	var header [80]byte
	copy(header[:], "voxelgrid bounding mesh")
	if _, err := w.Write(header[:]); err != nil {
		return fmt.Errorf("failed to write STL header: %w", err)
	}
	if err := binary.Write(w, binary.LittleEndian, uint32(len(m.Faces))); err != nil {
		return fmt.Errorf("failed to write STL triangle count: %w", err)
	}

	for _, face := range m.Faces {
		a := m.Vertices[face[0]]
		b := m.Vertices[face[1]]
		c := m.Vertices[face[2]]

		var record [12]float32
		n := faceNormal(a, b, c)
		for i := 0; i < 3; i++ {
			record[i] = float32(n[i])
			record[3+i] = float32(a[i])
			record[6+i] = float32(b[i])
			record[9+i] = float32(c[i])
		}
		if err := binary.Write(w, binary.LittleEndian, record); err != nil {
			return fmt.Errorf("failed to write STL triangle: %w", err)
		}
		if err := binary.Write(w, binary.LittleEndian, uint16(0)); err != nil {
			return fmt.Errorf("failed to write STL attribute bytes: %w", err)
		}
	}
	return nil
}

// WriteSTLFile writes the mesh to a binary STL file.
func (m *Mesh) WriteSTLFile(path string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create STL file: %w", err)
	}
	defer file.Close()
	if err := m.WriteSTL(file); err != nil {
		return err
	}
	return file.Close()
}

// faceNormal returns the unit normal of the triangle (a, b, c), or the zero
// vector for a degenerate triangle.
func faceNormal(a, b, c [3]float64) [3]float64 {
	var u, v, n [3]float64
	for i := 0; i < 3; i++ {
		u[i] = b[i] - a[i]
		v[i] = c[i] - a[i]
	}
	n[0] = u[1]*v[2] - u[2]*v[1]
	n[1] = u[2]*v[0] - u[0]*v[2]
	n[2] = u[0]*v[1] - u[1]*v[0]

	length := math.Sqrt(n[0]*n[0] + n[1]*n[1] + n[2]*n[2])
	if length == 0 {
		return [3]float64{}
	}
	for i := 0; i < 3; i++ {
		n[i] /= length
	}
	return n
}
