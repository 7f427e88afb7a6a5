package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"voxelgrid/pkg/volume"
)

// boundsOpts holds the command-line flags for the bounds command.
type boundsOpts struct {
	nonzero bool      // bound the nonzero voxels instead of the full grid
	margin  []float64 // world-unit margin around the box
}

// newBoundsCmd creates the bounds command for exporting a world-space
// bounding box mesh as binary STL.
func newBoundsCmd() *cobra.Command {
	var opts boundsOpts

	cmd := &cobra.Command{
		Use:   "bounds [input] [output.stl]",
		Short: "Export the world-space bounding box of a volume as STL",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBounds(cmd.Context(), args[0], args[1], &opts)
		},
	}

	cmd.Flags().BoolVarP(&opts.nonzero, "nonzero", "n", false, "bound the nonzero voxels instead of the full grid")
	cmd.Flags().Float64SliceVarP(&opts.margin, "margin", "m", nil, "margin in world units, one shared value or one per axis")
	return cmd
}

func runBounds(ctx context.Context, input, output string, opts *boundsOpts) error {
	logger := loggerFromContext(ctx)

	v, err := volume.LoadFile(input)
	if err != nil {
		return err
	}

	box, err := v.Bounds(opts.nonzero, opts.margin)
	if err != nil {
		return err
	}
	min, max := box.Bounds()
	logger.Infof("bounding box spans (%.4f, %.4f, %.4f) to (%.4f, %.4f, %.4f)",
		min[0], min[1], min[2], max[0], max[1], max[2])

	if err := box.WriteSTLFile(output); err != nil {
		return err
	}
	fmt.Printf("Bounding mesh saved to: %s\n", output)
	return nil
}
