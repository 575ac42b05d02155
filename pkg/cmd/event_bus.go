package cmd

import (
	"fmt"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/tradewind-io/tradewind/pkg/channels/gochannel"
	"github.com/tradewind-io/tradewind/pkg/channels/kafka"
	"github.com/tradewind-io/tradewind/pkg/eventbus"
)

// NewEventBus creates an event bus backed by the named provider. "kafka"
// requires KAFKA_BROKERS; everything else falls back to an in-process
// channel.
func NewEventBus(provider string, logger *slog.Logger) eventbus.EventBus {
	switch provider {
	case "kafka":
		pub, sub, err := kafka.CreateChannel(watermill.NewSlogLogger(logger), "tradewind")
		if err != nil {
			panic(fmt.Errorf("failed to create Kafka pub/sub: %w", err))
		}

		return eventbus.NewWatermillEventBus(pub, sub)
	default:
		pub, sub, err := gochannel.CreateChannel(watermill.NewSlogLogger(logger))
		if err != nil {
			panic(fmt.Errorf("failed to create in-process pub/sub: %w", err))
		}

		return eventbus.NewWatermillEventBus(pub, sub)
	}
}
