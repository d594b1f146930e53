package cli

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/spf13/cobra"

	"github.com/bibbank/fraudml/pkg/events"
	pkgkafka "github.com/bibbank/fraudml/pkg/kafka"
)

func (a *app) eventsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "events",
		Short: "Inspect pipeline domain events",
	}
	cmd.AddCommand(a.eventsTailCmd())
	return cmd
}

func (a *app) eventsTailCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tail",
		Short: "Print pipeline events from Kafka as they arrive",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if len(a.cfg.KafkaBrokers) == 0 {
				return errors.New("KAFKA_BROKER is not set")
			}
			fromBeginning, _ := cmd.Flags().GetBool("from-beginning")
			group, _ := cmd.Flags().GetString("group")
			limit, _ := cmd.Flags().GetInt("limit")

			ctx, cancel := context.WithCancel(cmd.Context())
			defer cancel()

			var seen atomic.Int64
			handler := func(_ context.Context, msg pkgkafka.Message) error {
				env, err := events.Unmarshal(msg.Value)
				if err != nil {
					return err
				}
				fmt.Fprintf(a.out(cmd), "%s  %-32s  %s  %s\n",
					env.OccurredAt.Format("2006-01-02T15:04:05Z07:00"),
					env.Type,
					env.AggregateID,
					string(env.Data),
				)
				if limit > 0 && seen.Add(1) >= int64(limit) {
					cancel()
				}
				return nil
			}

			kafkaCfg := a.cfg.Kafka()
			kafkaCfg.ConsumerGroup = group
			kafkaCfg.FromBeginning = fromBeginning
			consumer, err := pkgkafka.NewConsumer(kafkaCfg, a.cfg.KafkaTopic, handler, a.logger)
			if err != nil {
				return fmt.Errorf("failed to create kafka consumer: %w", err)
			}
			defer func() {
				if err := consumer.Close(); err != nil {
					a.logger.Error("failed to close kafka consumer", "error", err)
				}
			}()

			return consumer.Start(ctx)
		},
	}

	cmd.Flags().Bool("from-beginning", false, "read the topic from the earliest offset")
	cmd.Flags().String("group", "", "consumer group (offsets are committed only within a group)")
	cmd.Flags().Int("limit", 0, "stop after this many events (0 runs until interrupted)")

	return cmd
}
