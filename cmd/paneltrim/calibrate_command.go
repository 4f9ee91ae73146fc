package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"paneltrim/internal/vision"
)

func newCalibrateCommand(ctx *commandContext) *cobra.Command {
	var outputFlag string

	cmd := &cobra.Command{
		Use:   "calibrate <reference-image>",
		Short: "Derive a panel detection profile from a reference screenshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			output := strings.TrimSpace(outputFlag)
			if output == "" {
				output = cfg.ProfilePath()
			}

			profile, err := vision.CalibrateFile(args[0])
			if err != nil {
				return err
			}
			if err := profile.Save(output); err != nil {
				return err
			}

			box := profile.Box
			fmt.Fprintf(cmd.OutOrStdout(), "Profile written to %s\n", output)
			fmt.Fprintf(cmd.OutOrStdout(), "Panel region: x=%.3f y=%.3f w=%.3f h=%.3f (aspect %.2f)\n",
				box.X, box.Y, box.W, box.H, profile.AspectRatio)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputFlag, "output", "o", "", "Profile output path (default: data dir)")
	return cmd
}
