package main

import (
	"errors"
	"fmt"

	"browser-journey/internal/di"

	"github.com/spf13/cobra"
)

var errJourneysFailed = errors.New("one or more journeys failed")

func newRunCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "run [names...]",
		Short: "Run the named journeys, or all of them",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load(cmd)
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			container, err := di.NewContainer(ctx, cfg)
			if err != nil {
				return fmt.Errorf("init: %w", err)
			}
			defer container.Close()

			names := args
			if len(names) == 0 {
				names = container.Runner.Names()
			}

			failed := 0
			for _, name := range names {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				res, err := container.Runner.Run(ctx, name)
				if err != nil {
					failed++
					container.Logger.Error("Journey failed", "journey", name, "error", err)
					continue
				}
				container.Logger.Info("Journey passed",
					"journey", name,
					"duration", res.Duration(),
					"diagnostics", len(res.Diagnostics),
				)
			}

			if failed > 0 {
				return fmt.Errorf("%w: %d of %d", errJourneysFailed, failed, len(names))
			}
			return nil
		},
	}
}
