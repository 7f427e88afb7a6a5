package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"voxelgrid/pkg/config"
)

// newConfigCmd creates the config command group.
func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage voxelgrid configuration files",
	}
	cmd.AddCommand(newConfigInitCmd())
	cmd.AddCommand(newConfigShowCmd())
	return cmd
}

// newConfigInitCmd creates the config init command, which writes the
// default configuration to a YAML file.
func newConfigInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init [file]",
		Short: "Write the default configuration to a YAML file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.SaveConfig(config.DefaultConfig(), args[0]); err != nil {
				return err
			}
			fmt.Printf("Default configuration saved to: %s\n", args[0])
			return nil
		},
	}
}

// newConfigShowCmd creates the config show command, which prints the
// effective configuration after applying a YAML file over the defaults.
func newConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show [file]",
		Short: "Print the effective configuration",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) == 1 {
				path = args[0]
			}
			cfg, err := config.LoadConfig(path)
			if err != nil {
				return err
			}
			fmt.Printf("workers:       %d\n", cfg.Processing.NumWorkers)
			fmt.Printf("spacing:       %v\n", cfg.Processing.Spacing)
			fmt.Printf("interpolation: %s\n", cfg.Processing.Interpolation)
			fmt.Printf("padding:       %s\n", cfg.Processing.Padding)
			fmt.Printf("sigma:         %v\n", cfg.Smoothing.Sigma)
			fmt.Printf("truncate:      %g\n", cfg.Smoothing.Truncate)
			fmt.Printf("crop nonzero:  %t\n", cfg.Cropping.ToNonzero)
			fmt.Printf("crop margin:   %v\n", cfg.Cropping.Margin)
			fmt.Printf("output dtype:  %s\n", cfg.Output.DType)
			return nil
		},
	}
}
