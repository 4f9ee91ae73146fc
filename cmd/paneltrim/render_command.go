package main

import (
	"fmt"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"paneltrim/internal/config"
	"paneltrim/internal/queue"
	"paneltrim/internal/transcoder"
)

func newRenderCommand(ctx *commandContext) *cobra.Command {
	var outputFlag string

	cmd := &cobra.Command{
		Use:   "render <item-id>",
		Short: "Render a completed item down to its keep ranges",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid item id %q", args[0])
			}
			return ctx.withStore(func(cfg *config.Config, store *queue.Store) error {
				item, err := store.GetByID(cmd.Context(), id)
				if err != nil {
					return err
				}
				if item == nil {
					return fmt.Errorf("item %d not found", id)
				}
				if item.Status != queue.StatusCompleted {
					return fmt.Errorf("item %d is %s; only completed items can be rendered", id, item.Status)
				}
				keeps, err := item.KeepRanges()
				if err != nil {
					return err
				}

				output := strings.TrimSpace(outputFlag)
				if output == "" {
					output = defaultRenderOutput(item.SourcePath)
				}

				plan, err := transcoder.NewPlan(cfg.Paths.WorkDir, item.SourcePath, output, keeps)
				if err != nil {
					return err
				}

				signalCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
				defer cancel()

				runner := transcoder.NewRunner(cfg, ctx.newLogger(cfg))
				if err := runner.Render(signalCtx, plan); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Rendered %d segment(s) to %s\n", len(plan.Segments), output)
				return nil
			})
		},
	}

	cmd.Flags().StringVarP(&outputFlag, "output", "o", "", "Output file (default: <source>.trimmed.<ext>)")
	return cmd
}

func defaultRenderOutput(source string) string {
	ext := filepath.Ext(source)
	base := strings.TrimSuffix(source, ext)
	if ext == "" {
		ext = ".mkv"
	}
	return base + ".trimmed" + ext
}
