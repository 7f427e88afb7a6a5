package slicing

import (
	"testing"
)

// TestConstructors verifies the range constructor forms
func TestConstructors(t *testing.T) {
	all := All()
	if all.Start != 0 || all.Stop != ToEnd || all.Step != 1 || all.Scalar {
		t.Errorf("Expected a full-axis range, got %+v", all)
	}

	span := Span(2, 7)
	if span.Start != 2 || span.Stop != 7 || span.Step != 1 {
		t.Errorf("Expected span [2, 7), got %+v", span)
	}

	strided := Strided(1, 9, 3)
	if strided.Step != 3 {
		t.Errorf("Expected step 3, got %+v", strided)
	}

	idx := Index(4)
	if !idx.Scalar || idx.Start != 4 || idx.Stop != 5 {
		t.Errorf("Expected scalar selection at 4, got %+v", idx)
	}
}

// TestExpand verifies padding partial range lists to full rank
func TestExpand(t *testing.T) {
	out, err := Expand([]Range{Span(1, 3)}, 4)
	if err != nil {
		t.Fatalf("Expand failed: %v", err)
	}
	if len(out) != 4 {
		t.Fatalf("Expected 4 ranges, got %d", len(out))
	}
	if out[0] != Span(1, 3) {
		t.Errorf("Expected the given range first, got %+v", out[0])
	}
	for i := 1; i < 4; i++ {
		if out[i] != All() {
			t.Errorf("Expected full-axis fill at %d, got %+v", i, out[i])
		}
	}

	if _, err := Expand(make([]Range, 5), 4); err == nil {
		t.Error("Expected an error for more ranges than axes")
	}
}

// TestToCoordinates verifies range resolution and clamping
func TestToCoordinates(t *testing.T) {
	ranges := []Range{Span(1, 3), All(), Span(-2, 100)}
	shape := []int{5, 6, 7}

	min, max, step, err := ToCoordinates(ranges, shape)
	if err != nil {
		t.Fatalf("ToCoordinates failed: %v", err)
	}

	wantMin := []int{1, 0, 0}
	wantMax := []int{2, 5, 6}
	for i := range shape {
		if min[i] != wantMin[i] || max[i] != wantMax[i] || step[i] != 1 {
			t.Errorf("Expected bounds [%v %v], got [%v %v]", wantMin, wantMax, min, max)
			break
		}
	}

	if _, _, _, err := ToCoordinates(ranges, []int{5, 6}); err == nil {
		t.Error("Expected an error for a rank mismatch")
	}
}

// TestCoordinateRoundTrip verifies that range and coordinate forms convert
// back and forth
func TestCoordinateRoundTrip(t *testing.T) {
	min := []int{1, 0, 2}
	max := []int{3, 4, 2}

	ranges := FromCoordinates(min, max, nil)
	gotMin, gotMax, gotStep, err := ToCoordinates(ranges, []int{10, 10, 10})
	if err != nil {
		t.Fatalf("ToCoordinates failed: %v", err)
	}
	for i := range min {
		if gotMin[i] != min[i] || gotMax[i] != max[i] || gotStep[i] != 1 {
			t.Errorf("Expected round trip of [%v %v], got [%v %v] step %v", min, max, gotMin, gotMax, gotStep)
			break
		}
	}
}
