package main

import (
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"paneltrim/internal/config"
	"paneltrim/internal/logging"
	"paneltrim/internal/queue"
	"paneltrim/internal/workflow"
)

func newScanCommand(ctx *commandContext) *cobra.Command {
	var profileFlag string

	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Scan every pending queue item for the calibrated panel",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *queue.Store) error {
				scanner, err := ctx.loadScanner(cfg, profileFlag)
				if err != nil {
					return fmt.Errorf("load calibration profile (run `paneltrim calibrate` first): %w", err)
				}

				lock := flock.New(cfg.LockFilePath())
				ok, err := lock.TryLock()
				if err != nil {
					return fmt.Errorf("acquire scan lock: %w", err)
				}
				if !ok {
					return errors.New("another paneltrim scan is already running")
				}
				defer lock.Unlock()

				logger := ctx.newLogger(cfg)

				signalCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
				defer cancel()

				// A previous scan may have died mid-item; those rows would
				// otherwise stay processing forever.
				reset, err := store.ResetStuckProcessing(signalCtx)
				if err != nil {
					return err
				}
				if reset > 0 {
					logger.Info("reset stuck processing items", logging.Int64("count", reset))
				}

				manager := workflow.NewManager(cfg, store, scanner, logger)
				if err := manager.ProcessQueue(signalCtx); err != nil {
					return err
				}

				stats, err := store.Stats(signalCtx)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Scan finished: %d completed, %d failed\n",
					stats[queue.StatusCompleted], stats[queue.StatusFailed])
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&profileFlag, "profile", "", "Calibration profile path (default: data dir)")
	return cmd
}
