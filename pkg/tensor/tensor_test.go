package tensor

import (
	"testing"
)

// TestNewAndIndexing verifies allocation, strides and multi-index access
func TestNewAndIndexing(t *testing.T) {
	a := New(Float64, 2, 3, 4)

	if a.Rank() != 3 {
		t.Errorf("Expected rank 3, got %d", a.Rank())
	}
	if a.Len() != 24 {
		t.Errorf("Expected 24 elements, got %d", a.Len())
	}

	strides := a.Strides()
	want := []int{12, 4, 1}
	for i := range want {
		if strides[i] != want[i] {
			t.Errorf("Expected strides %v, got %v", want, strides)
			break
		}
	}

	// Row-major layout: index (1, 2, 3) is the last element
	if a.Index(1, 2, 3) != 23 {
		t.Errorf("Expected flat index 23, got %d", a.Index(1, 2, 3))
	}

	a.Set(7.5, 1, 0, 2)
	if a.At(1, 0, 2) != 7.5 {
		t.Errorf("Expected 7.5 at (1, 0, 2), got %f", a.At(1, 0, 2))
	}
}

// TestFromSlice verifies construction around existing values and the
// element-count check
func TestFromSlice(t *testing.T) {
	values := []float64{1, 2, 3, 4, 5, 6}
	a, err := FromSlice(Float64, values, 2, 3)
	if err != nil {
		t.Fatalf("FromSlice failed: %v", err)
	}
	if a.At(1, 2) != 6 {
		t.Errorf("Expected 6 at (1, 2), got %f", a.At(1, 2))
	}

	if _, err := FromSlice(Float64, values, 2, 2); err == nil {
		t.Error("Expected an error for a mismatched element count")
	}
}

// TestQuantization verifies the dtype value models
func TestQuantization(t *testing.T) {
	tests := []struct {
		dtype DType
		in    float64
		want  float64
	}{
		{Float64, 1.75, 1.75},
		{Int32, 1.75, 1},
		{Int32, -1.75, -1}, // truncation toward zero
		{Int16, 2.5, 2},
		{Uint8, -3, 0},
		{Uint8, 300, 255},
		{Uint8, 12.9, 12},
		{Bool, 0.25, 1},
		{Bool, 0, 0},
		{Bool, -2, 1},
	}
	for _, tc := range tests {
		a := New(tc.dtype, 1)
		a.Set(tc.in, 0)
		if a.At(0) != tc.want {
			t.Errorf("Expected %s to store %f as %f, got %f", tc.dtype, tc.in, tc.want, a.At(0))
		}
	}
}

// TestFull verifies that the fill value is quantized
func TestFull(t *testing.T) {
	a := Full(Int32, 2.9, 2, 2)
	for i := 0; i < a.Len(); i++ {
		if a.Data()[i] != 2 {
			t.Errorf("Expected quantized fill 2, got %f", a.Data()[i])
			break
		}
	}
}

// TestReshapeSharesBuffer verifies that reshaping is a view, not a copy
func TestReshapeSharesBuffer(t *testing.T) {
	a := New(Float64, 2, 6)
	b, err := a.Reshape(3, 4)
	if err != nil {
		t.Fatalf("Reshape failed: %v", err)
	}

	a.Set(5, 0, 0)
	if b.At(0, 0) != 5 {
		t.Error("Expected reshaped tensor to share the buffer")
	}

	if _, err := a.Reshape(5, 5); err == nil {
		t.Error("Expected an error reshaping to a different element count")
	}
}

// TestAsType verifies dtype conversion and the same-dtype shortcut
func TestAsType(t *testing.T) {
	a, _ := FromSlice(Float64, []float64{-1.5, 0, 2.7}, 3)

	b := a.AsType(Int32)
	want := []float64{-1, 0, 2}
	for i := range want {
		if b.Data()[i] != want[i] {
			t.Errorf("Expected int32 values %v, got %v", want, b.Data())
			break
		}
	}

	// Same dtype returns the receiver
	if a.AsType(Float64) != a {
		t.Error("Expected AsType to the same dtype to return the receiver")
	}
}

// TestCloneIsolation verifies that clones do not share storage
func TestCloneIsolation(t *testing.T) {
	a := Full(Float64, 1, 2, 2)
	b := a.Clone()
	b.Set(9, 0, 0)
	if a.At(0, 0) != 1 {
		t.Error("Expected the clone to have isolated storage")
	}
}
