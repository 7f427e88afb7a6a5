package cli

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	charmlog "github.com/charmbracelet/log"

	"voxelgrid/pkg/config"
	"voxelgrid/pkg/sampler"
	"voxelgrid/pkg/tensor"
	"voxelgrid/pkg/volume"
)

// TestLoggerContext verifies attaching and retrieving the logger
func TestLoggerContext(t *testing.T) {
	var buf bytes.Buffer
	logger := newLogger(&buf, charmlog.DebugLevel)

	ctx := withLogger(context.Background(), logger)
	if loggerFromContext(ctx) != logger {
		t.Error("Expected the attached logger back from the context")
	}

	// A bare context falls back to the default logger
	if loggerFromContext(context.Background()) == nil {
		t.Error("Expected a fallback logger for a bare context")
	}
}

// TestRegionFromPairs verifies crop region parsing
func TestRegionFromPairs(t *testing.T) {
	region, err := regionFromPairs([]int{1, 3, 0, 4})
	if err != nil {
		t.Fatalf("regionFromPairs failed: %v", err)
	}
	// Channel selector plus two spatial spans
	if len(region) != 3 {
		t.Fatalf("Expected 3 ranges, got %d", len(region))
	}
	if region[1].Start != 1 || region[1].Stop != 3 {
		t.Errorf("Expected span [1, 3), got %+v", region[1])
	}

	if _, err := regionFromPairs([]int{1, 2, 3}); err == nil {
		t.Error("Expected an error for an odd number of values")
	}
	if _, err := regionFromPairs(make([]int, 8)); err == nil {
		t.Error("Expected an error for more than 3 pairs")
	}
}

// TestSaveVolumeDType verifies the output dtype conversion
func TestSaveVolumeDType(t *testing.T) {
	v, err := volume.FromSlice(tensor.Float64, []float64{0.5, 1.5, 2.5, 3.5, 0, 0, 0, 0}, 2, 2, 2)
	if err != nil {
		t.Fatalf("FromSlice failed: %v", err)
	}

	path := filepath.Join(t.TempDir(), "out.vxgr")
	if err := saveVolume(v, path, "int32"); err != nil {
		t.Fatalf("saveVolume failed: %v", err)
	}

	loaded, err := volume.LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if loaded.DType() != tensor.Int32 {
		t.Errorf("Expected int32 output, got %s", loaded.DType())
	}
	if got := loaded.Data().At(0, 0, 0, 1); got != 1 {
		t.Errorf("Expected 1.5 truncated to 1, got %f", got)
	}

	if err := saveVolume(v, path, "complex"); err == nil {
		t.Error("Expected an error for an unknown dtype")
	}
}

// TestRunResampleEndToEnd verifies the resample command pipeline on disk
func TestRunResampleEndToEnd(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "in.vxgr")
	output := filepath.Join(dir, "out.vxgr")

	v, err := volume.FromSlice(tensor.Float64, onesSlice(4*4*4), 4, 4, 4)
	if err != nil {
		t.Fatalf("FromSlice failed: %v", err)
	}
	if err := v.SaveFile(input); err != nil {
		t.Fatalf("SaveFile failed: %v", err)
	}

	cfg := config.DefaultConfig()
	cfg.Processing.Spacing = []float64{2}
	if err := runResample(context.Background(), input, output, cfg, ""); err != nil {
		t.Fatalf("runResample failed: %v", err)
	}

	resampled, err := volume.LoadFile(output)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if resampled.Baseshape() != [3]int{2, 2, 2} {
		t.Errorf("Expected a downsampled (2, 2, 2) grid, got %v", resampled.Baseshape())
	}
}

// TestCropCommandConfigDefaults verifies that cropping and output settings
// flow in from the configuration file when no flags are given
func TestCropCommandConfigDefaults(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "in.vxgr")
	output := filepath.Join(dir, "out.vxgr")
	cfgPath := filepath.Join(dir, "config.yaml")

	cfg := config.DefaultConfig()
	cfg.Cropping.ToNonzero = true
	cfg.Output.DType = "int16"
	if err := config.SaveConfig(cfg, cfgPath); err != nil {
		t.Fatalf("SaveConfig failed: %v", err)
	}

	values := make([]float64, 4*4*4)
	values[21] = 5 // voxel (1, 1, 1)
	v, err := volume.FromSlice(tensor.Float64, values, 4, 4, 4)
	if err != nil {
		t.Fatalf("FromSlice failed: %v", err)
	}
	if err := v.SaveFile(input); err != nil {
		t.Fatalf("SaveFile failed: %v", err)
	}

	cmd := newCropCmd()
	cmd.SetArgs([]string{input, output, "--config", cfgPath})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("crop command failed: %v", err)
	}

	cropped, err := volume.LoadFile(output)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if cropped.Shape() != [4]int{1, 1, 1, 1} {
		t.Errorf("Expected the configured nonzero crop, got shape %v", cropped.Shape())
	}
	if cropped.DType() != tensor.Int16 {
		t.Errorf("Expected the configured int16 output, got %s", cropped.DType())
	}
}

// TestResampleCommandConfigDefaults verifies that the worker count and
// output dtype flow in from the configuration file
func TestResampleCommandConfigDefaults(t *testing.T) {
	defer sampler.SetWorkers(0)

	dir := t.TempDir()
	input := filepath.Join(dir, "in.vxgr")
	output := filepath.Join(dir, "out.vxgr")
	cfgPath := filepath.Join(dir, "config.yaml")

	cfg := config.DefaultConfig()
	cfg.Processing.Spacing = []float64{2}
	cfg.Processing.NumWorkers = 2
	if err := config.SaveConfig(cfg, cfgPath); err != nil {
		t.Fatalf("SaveConfig failed: %v", err)
	}

	v, err := volume.FromSlice(tensor.Float64, onesSlice(4*4*4), 4, 4, 4)
	if err != nil {
		t.Fatalf("FromSlice failed: %v", err)
	}
	if err := v.SaveFile(input); err != nil {
		t.Fatalf("SaveFile failed: %v", err)
	}

	cmd := newResampleCmd()
	cmd.SetArgs([]string{input, output, "--config", cfgPath})
	if err := cmd.Execute(); err != nil {
		t.Fatalf("resample command failed: %v", err)
	}

	if sampler.Workers() != 2 {
		t.Errorf("Expected the configured worker count 2, got %d", sampler.Workers())
	}

	resampled, err := volume.LoadFile(output)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if resampled.Baseshape() != [3]int{2, 2, 2} {
		t.Errorf("Expected a downsampled (2, 2, 2) grid, got %v", resampled.Baseshape())
	}
	// The default output dtype comes from the configuration
	if resampled.DType() != tensor.Float32 {
		t.Errorf("Expected the configured float32 output, got %s", resampled.DType())
	}
}

func onesSlice(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = 1
	}
	return out
}
