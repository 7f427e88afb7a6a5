package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"voxelgrid/pkg/config"
	"voxelgrid/pkg/slicing"
	"voxelgrid/pkg/volume"
)

// cropOpts holds the command-line flags for the crop command.
type cropOpts struct {
	configPath string    // optional YAML config file
	nonzero    bool      // crop to the nonzero bounding box
	region     []int     // explicit start/stop pairs per spatial axis
	margin     []float64 // world-unit margin around the cropping boundary
	dtype      string
}

// newCropCmd creates the crop command.
func newCropCmd() *cobra.Command {
	var opts cropOpts

	cmd := &cobra.Command{
		Use:   "crop [input] [output]",
		Short: "Crop a volume to its nonzero content or an explicit region",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(opts.configPath)
			if err != nil {
				return err
			}
			if !cmd.Flags().Changed("nonzero") {
				opts.nonzero = cfg.Cropping.ToNonzero
			}
			if !cmd.Flags().Changed("margin") {
				opts.margin = cfg.Cropping.Margin
			}
			if !cmd.Flags().Changed("dtype") {
				opts.dtype = cfg.Output.DType
			}
			if !opts.nonzero && len(opts.region) == 0 {
				return fmt.Errorf("either --nonzero or --region is required")
			}
			return runCrop(cmd.Context(), args[0], args[1], &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.configPath, "config", "c", "", "YAML configuration file")
	cmd.Flags().BoolVarP(&opts.nonzero, "nonzero", "n", false, "crop to the bounding box of nonzero voxels")
	cmd.Flags().IntSliceVarP(&opts.region, "region", "r", nil, "voxel region as start,stop pairs in W,H,D order")
	cmd.Flags().Float64SliceVarP(&opts.margin, "margin", "m", nil, "margin in world units, one shared value or one per axis")
	cmd.Flags().StringVarP(&opts.dtype, "dtype", "d", "", "output dtype, defaults to the configured output dtype")
	return cmd
}

func runCrop(ctx context.Context, input, output string, opts *cropOpts) error {
	logger := loggerFromContext(ctx)

	v, err := volume.LoadFile(input)
	if err != nil {
		return err
	}
	before := v.Shape()

	prog := newProgress(logger)
	var cropped *volume.Volume
	if opts.nonzero {
		cropped, err = v.CropToNonzero(opts.margin)
	} else {
		var region volume.Region
		region, err = regionFromPairs(opts.region)
		if err != nil {
			return err
		}
		cropped, err = v.Crop(region, opts.margin)
	}
	if err != nil {
		return err
	}
	prog.done(fmt.Sprintf("cropped %v to %v", before, cropped.Shape()))

	return saveVolume(cropped, output, opts.dtype)
}

// regionFromPairs converts flat start,stop pairs in spatial order into a
// cropping region that retains all channels.
func regionFromPairs(pairs []int) (volume.Region, error) {
	if len(pairs)%2 != 0 || len(pairs) > 6 {
		return nil, fmt.Errorf("region wants up to 3 start,stop pairs, got %d values", len(pairs))
	}
	region := volume.Region{slicing.All()}
	for i := 0; i+1 < len(pairs); i += 2 {
		region = append(region, slicing.Span(pairs[i], pairs[i+1]))
	}
	return region, nil
}
