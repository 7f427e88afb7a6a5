package sampler

import (
	"fmt"
	"math"
	"runtime"
	"sync"
	"sync/atomic"

	"voxelgrid/pkg/tensor"
)

var workerCount int64

// SetWorkers sets the goroutine fan-out used by Sample. Zero or a
// negative count restores the default of one worker per CPU.
func SetWorkers(n int) {
	atomic.StoreInt64(&workerCount, int64(n))
}

// Workers returns the configured sampling fan-out.
func Workers() int {
	if n := atomic.LoadInt64(&workerCount); n > 0 {
		return int(n)
	}
	return runtime.NumCPU()
}

// Mode selects the interpolation kernel.
type Mode int

const (
	// Linear is trilinear interpolation over the 8 neighboring voxels.
	Linear Mode = iota
	// Nearest snaps to the closest voxel center.
	Nearest
)

// String returns the mode name.
func (m Mode) String() string {
	switch m {
	case Linear:
		return "linear"
	case Nearest:
		return "nearest"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

// ParseMode resolves an interpolation mode name.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "linear":
		return Linear, nil
	case "nearest":
		return Nearest, nil
	}
	return 0, fmt.Errorf("unknown interpolation mode %q", s)
}

// Padding selects how coordinates outside the source grid are resolved.
type Padding int

const (
	// Zeros fills out-of-bounds samples with zero.
	Zeros Padding = iota
	// Reflection mirrors coordinates around the grid edges.
	Reflection
	// Border clamps coordinates to the nearest edge voxel.
	Border
)

// String returns the padding policy name.
func (p Padding) String() string {
	switch p {
	case Zeros:
		return "zeros"
	case Reflection:
		return "reflection"
	case Border:
		return "border"
	default:
		return fmt.Sprintf("padding(%d)", int(p))
	}
}

// ParsePadding resolves a padding policy name.
func ParsePadding(s string) (Padding, error) {
	switch s {
	case "zeros":
		return Zeros, nil
	case "reflection":
		return Reflection, nil
	case "border":
		return Border, nil
	}
	return 0, fmt.Errorf("unknown padding mode %q", s)
}

// Sample interpolates a (C, W, H, D) tensor at the coordinates of a grid,
// producing a tensor of shape (C, *grid shape). Interpolation runs in
// float; nearest mode restores the input dtype afterward. Non-finite
// coordinates sample as out-of-bounds under the padding policy. The work
// is fanned out over Workers() goroutines along the leading spatial axis.
func Sample(data *tensor.Dense, grid *Grid, mode Mode, padding Padding) (*tensor.Dense, error) {
	if data.Rank() != 4 {
		return nil, fmt.Errorf("expected a 4D image tensor, got rank %d", data.Rank())
	}
	src := [3]int{data.Dim(1), data.Dim(2), data.Dim(3)}
	if grid.normalized && grid.source != src {
		return nil, fmt.Errorf("grid was normalized for shape %v but data has shape %v", grid.source, src)
	}

	channels := data.Dim(0)
	out := tensor.New(tensor.Float64, channels, grid.shape[0], grid.shape[1], grid.shape[2])

	workers := Workers()
	if workers > grid.shape[0] {
		workers = grid.shape[0]
	}
	chunk := (grid.shape[0] + workers - 1) / workers

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		start := w * chunk
		end := start + chunk
		if end > grid.shape[0] {
			end = grid.shape[0]
		}
		if start >= end {
			break
		}
		wg.Add(1)
		go func(x0, x1 int) {
			defer wg.Done()
			sampleRange(data, grid, mode, padding, out, x0, x1)
		}(start, end)
	}
	wg.Wait()

	if mode == Nearest {
		out = out.AsType(data.DType())
	}
	return out, nil
}

// sampleRange fills output columns [x0, x1) of every channel.
func sampleRange(data *tensor.Dense, grid *Grid, mode Mode, padding Padding, out *tensor.Dense, x0, x1 int) {
	src := [3]int{data.Dim(1), data.Dim(2), data.Dim(3)}
	channels := data.Dim(0)
	for x := x0; x < x1; x++ {
		for y := 0; y < grid.shape[1]; y++ {
			for z := 0; z < grid.shape[2]; z++ {
				c := grid.coordinate(x, y, z, src)
				for ch := 0; ch < channels; ch++ {
					var v float64
					if mode == Nearest {
						v = sampleNearest(data, ch, c, src, padding)
					} else {
						v = sampleLinear(data, ch, c, src, padding)
					}
					out.Set(v, ch, x, y, z)
				}
			}
		}
	}
}

// coordinate resolves a grid entry back to source voxel units, undoing
// normalization and axis reversal when present.
func (g *Grid) coordinate(x, y, z int, src [3]int) [3]float64 {
	p := g.At(x, y, z)
	if !g.normalized {
		return p
	}
	if g.conv.ReverseAxes {
		p[0], p[2] = p[2], p[0]
	}
	for a := 0; a < 3; a++ {
		p[a] = denormalizeCoord(p[a], src[a], g.conv.AlignCorners)
	}
	return p
}

// fetch reads one voxel with the padding policy applied to out-of-bounds
// indices. NaN coordinates have already been rejected by the callers.
func fetch(data *tensor.Dense, ch, i, j, k int, src [3]int, padding Padding) float64 {
	idx := [3]int{i, j, k}
	for a := 0; a < 3; a++ {
		if idx[a] < 0 || idx[a] >= src[a] {
			switch padding {
			case Border:
				idx[a] = clampIndex(idx[a], src[a])
			case Reflection:
				idx[a] = reflectIndex(idx[a], src[a])
			default:
				return 0
			}
		}
	}
	return data.At(ch, idx[0], idx[1], idx[2])
}

func sampleNearest(data *tensor.Dense, ch int, c [3]float64, src [3]int, padding Padding) float64 {
	var idx [3]int
	for a := 0; a < 3; a++ {
		if math.IsNaN(c[a]) {
			return 0
		}
		idx[a] = int(math.Round(foldCoord(c[a], src[a], padding)))
	}
	return fetch(data, ch, idx[0], idx[1], idx[2], src, padding)
}

func sampleLinear(data *tensor.Dense, ch int, c [3]float64, src [3]int, padding Padding) float64 {
	var lo [3]int
	var frac [3]float64
	for a := 0; a < 3; a++ {
		if math.IsNaN(c[a]) {
			return 0
		}
		cc := foldCoord(c[a], src[a], padding)
		f := math.Floor(cc)
		lo[a] = int(f)
		frac[a] = cc - f
	}

	var acc float64
	for corner := 0; corner < 8; corner++ {
		w := 1.0
		var idx [3]int
		for a := 0; a < 3; a++ {
			if corner&(1<<a) != 0 {
				idx[a] = lo[a] + 1
				w *= frac[a]
			} else {
				idx[a] = lo[a]
				w *= 1 - frac[a]
			}
		}
		if w == 0 {
			continue
		}
		acc += w * fetch(data, ch, idx[0], idx[1], idx[2], src, padding)
	}
	return acc
}

// foldCoord brings a coordinate into indexable range for the padding
// policy. Reflection mirrors the coordinate itself around the edge voxel
// centers, so far out-of-range samples interpolate between the same
// voxels as their mirrored image; other policies only clamp.
func foldCoord(c float64, size int, padding Padding) float64 {
	if padding == Reflection && !math.IsInf(c, 0) {
		return reflectCoord(c, size)
	}
	return clampFinite(c, size)
}

// reflectCoord mirrors a finite coordinate around the edge voxel centers
// (period 2(size-1)), matching align-corners reflection in continuous
// coordinate space.
func reflectCoord(c float64, size int) float64 {
	if size == 1 {
		return 0
	}
	span := float64(2 * (size - 1))
	c = math.Mod(c, span)
	if c < 0 {
		c += span
	}
	if c > float64(size-1) {
		c = span - c
	}
	return c
}

// clampFinite folds infinite coordinates to just outside the grid so that
// index arithmetic stays in integer range while the padding policy still
// sees them as out-of-bounds.
func clampFinite(c float64, size int) float64 {
	if math.IsInf(c, 1) {
		return float64(size + 1)
	}
	if math.IsInf(c, -1) {
		return -2
	}
	// guard absurd but finite coordinates against int overflow
	limit := float64(size + 1)
	if c > limit {
		return limit
	}
	if c < -2 {
		return -2
	}
	return c
}

func clampIndex(i, n int) int {
	if i < 0 {
		return 0
	}
	if i >= n {
		return n - 1
	}
	return i
}

// reflectIndex mirrors an index around the edge voxel centers, matching
// align-corners reflection.
func reflectIndex(i, n int) int {
	if n == 1 {
		return 0
	}
	period := 2 * (n - 1)
	i = ((i % period) + period) % period
	if i >= n {
		i = period - i
	}
	return i
}
