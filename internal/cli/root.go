package cli

import (
	"context"
	"fmt"
	"os"

	charmlog "github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

var (
	version string // semantic version (e.g., "v1.2.3")
	commit  string // git commit SHA
	date    string // build timestamp
)

// SetVersion sets the version information displayed by --version. It is
// called by the main package with values injected via ldflags at build
// time.
func SetVersion(v, c, d string) {
	version = v
	commit = c
	date = d
}

// Execute runs the voxelgrid CLI and returns an error if any command
// fails. Logging defaults to info level on stderr; --verbose (-v) raises
// it to debug. The logger is attached to the command context and
// accessible to all commands via loggerFromContext.
func Execute() error {
	var verbose bool

	root := &cobra.Command{
		Use:          "voxelgrid",
		Short:        "voxelgrid resamples and crops volumetric images",
		Long:         `voxelgrid operates on multi-channel 3D volumes anchored to world space by an affine geometry: it inspects, resamples, smooths and crops them while keeping voxel data and world coordinates consistent.`,
		Version:      version,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := charmlog.InfoLevel
			if verbose {
				level = charmlog.DebugLevel
			}
			ctx := withLogger(cmd.Context(), newLogger(os.Stderr, level))
			cmd.SetContext(ctx)
		},
	}

	root.SetVersionTemplate(fmt.Sprintf("voxelgrid %s\ncommit: %s\nbuilt: %s\n", version, commit, date))
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")

	root.AddCommand(newInfoCmd())
	root.AddCommand(newResampleCmd())
	root.AddCommand(newSmoothCmd())
	root.AddCommand(newCropCmd())
	root.AddCommand(newBoundsCmd())
	root.AddCommand(newConfigCmd())

	return root.ExecuteContext(context.Background())
}
