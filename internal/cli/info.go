package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"voxelgrid/pkg/volume"
)

// newInfoCmd creates the info command for inspecting a volume file.
func newInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info [file]",
		Short: "Print the shape, geometry and intensity statistics of a volume",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInfo(cmd.Context(), args[0])
		},
	}
}

func runInfo(ctx context.Context, path string) error {
	logger := loggerFromContext(ctx)
	logger.Debugf("loading %s", path)

	v, err := volume.LoadFile(path)
	if err != nil {
		return err
	}

	shape := v.Shape()
	spacing := v.Geometry().Spacing()
	origin := v.Geometry().Transform([][3]float64{{0, 0, 0}})[0]

	fmt.Printf("file:     %s\n", path)
	fmt.Printf("dtype:    %s\n", v.DType())
	fmt.Printf("channels: %d\n", shape[0])
	fmt.Printf("shape:    %d x %d x %d\n", shape[1], shape[2], shape[3])
	fmt.Printf("spacing:  %.4f x %.4f x %.4f\n", spacing[0], spacing[1], spacing[2])
	fmt.Printf("origin:   (%.4f, %.4f, %.4f)\n", origin[0], origin[1], origin[2])
	fmt.Printf("min:      %g\n", v.Min())
	fmt.Printf("max:      %g\n", v.Max())
	fmt.Printf("mean:     %g\n", v.Mean())
	fmt.Printf("stddev:   %g\n", v.StdDev())
	return nil
}
