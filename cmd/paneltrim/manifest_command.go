package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"paneltrim/internal/config"
	"paneltrim/internal/manifest"
	"paneltrim/internal/queue"
)

func newManifestCommand(ctx *commandContext) *cobra.Command {
	var outputFlag string

	cmd := &cobra.Command{
		Use:   "manifest",
		Short: "Export scan results for completed items as a JSON manifest",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(_ *config.Config, store *queue.Store) error {
				records, err := manifest.Build(cmd.Context(), store)
				if err != nil {
					return err
				}
				output := strings.TrimSpace(outputFlag)
				if output == "" {
					return manifest.Write(cmd.OutOrStdout(), records)
				}
				if err := manifest.WriteFile(output, records); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d record(s) to %s\n", len(records), output)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&outputFlag, "output", "o", "", "Manifest file path (default: stdout)")
	return cmd
}
