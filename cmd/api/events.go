package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

// eventsCmd tails the appointment event channel, one JSON document per line.
func eventsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "events",
		Short: "Inspect appointment events",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "watch",
		Short: "Print appointment events as they are published",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			lg := setupLogger(cfg)
			if cfg.Redis.URL == "" {
				return errors.New("redis.url is not configured")
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			broker, err := openBroker(ctx, cfg, lg)
			if err != nil {
				return err
			}
			defer broker.Close()

			messages, err := broker.Subscribe(ctx, cfg.Redis.Channel)
			if err != nil {
				return err
			}
			for msg := range messages {
				fmt.Fprintln(cmd.OutOrStdout(), string(msg))
			}
			if errors.Is(ctx.Err(), context.Canceled) {
				return nil
			}
			return ctx.Err()
		},
	})

	return cmd
}
