package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jcmexdev/storefront/internal/config"
	"github.com/jcmexdev/storefront/internal/pkg/telemetry"
	"github.com/jcmexdev/storefront/internal/storefront/core/domain/entity"
	"github.com/jcmexdev/storefront/internal/storefront/infra/events"
)

// newEventsCmd tails the order topic, one JSON event per line.
func newEventsCmd(root *rootOptions) *cobra.Command {
	var group string
	cmd := &cobra.Command{
		Use:   "events",
		Short: "Print order events from Kafka",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.LoadConfig(root.configPath)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			telemetry.InitLogger(cfg.Telemetry.LogLevel)

			client := events.NewClient(cfg.Kafka.Brokers)
			if !client.Enabled() {
				return events.ErrDisabled
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			enc := json.NewEncoder(cmd.OutOrStdout())
			return events.Consume(ctx, client.NewReader(cfg.Kafka.Topic, group),
				func(_ context.Context, e entity.OrderEvent) error { return enc.Encode(e) })
		},
	}
	cmd.Flags().StringVar(&group, "group", "storefront-events-cli", "consumer group id")
	return cmd
}
