// Package kafka consumes route telemetry and feeds it into route adjustment.
package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"tripplanner/internal/core/application/usecases/commands"
	"tripplanner/internal/core/domain/model/kernel"
	"tripplanner/internal/core/domain/model/route"
	"tripplanner/internal/core/domain/model/trip"
	"tripplanner/internal/core/domain/services"
	"tripplanner/internal/pkg/errs"

	"github.com/IBM/sarama"
)

const defaultMaxConflictRetries = 3

// RouteAdjuster runs one route adjustment.
type RouteAdjuster interface {
	Handle(ctx context.Context, cmd commands.AdjustRouteCommand) (*route.Route, error)
}

// telemetryMessage is the JSON body of a telemetry message. Map keys are order ids.
type telemetryMessage struct {
	RouteID string             `json:"route_id"`
	Delays  map[string]float64 `json:"delays"`
	Traffic map[string]float64 `json:"traffic"`
}

// TelemetryConsumer reads delay and traffic signals from a consumer group and
// adjusts the referenced route. Optimistic-concurrency conflicts are retried
// against the freshly stored route; other failures are logged and the message is
// committed so one bad message cannot block the partition.
type TelemetryConsumer struct {
	group      sarama.ConsumerGroup
	topic      string
	adjuster   RouteAdjuster
	params     func() trip.OptimizationParameters
	maxRetries int
	logger     *slog.Logger
}

// NewTelemetryConsumer joins groupID on brokers.
func NewTelemetryConsumer(
	brokers []string,
	groupID string,
	topic string,
	adjuster RouteAdjuster,
	params func() trip.OptimizationParameters,
	logger *slog.Logger,
) (*TelemetryConsumer, error) {
	config := sarama.NewConfig()
	config.Consumer.Offsets.Initial = sarama.OffsetNewest
	config.Consumer.Group.Session.Timeout = 45 * time.Second
	config.Consumer.Group.Rebalance.GroupStrategies = []sarama.BalanceStrategy{sarama.NewBalanceStrategyRoundRobin()}

	group, err := sarama.NewConsumerGroup(brokers, groupID, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create telemetry consumer group: %w", err)
	}

	return NewTelemetryConsumerWithGroup(group, topic, adjuster, params, logger), nil
}

// NewTelemetryConsumerWithGroup wraps an existing consumer group.
func NewTelemetryConsumerWithGroup(
	group sarama.ConsumerGroup,
	topic string,
	adjuster RouteAdjuster,
	params func() trip.OptimizationParameters,
	logger *slog.Logger,
) *TelemetryConsumer {
	return &TelemetryConsumer{
		group:      group,
		topic:      topic,
		adjuster:   adjuster,
		params:     params,
		maxRetries: defaultMaxConflictRetries,
		logger:     logger.With("component", "telemetry_consumer"),
	}
}

// Run consumes until ctx is cancelled or the group is closed.
func (c *TelemetryConsumer) Run(ctx context.Context) error {
	c.logger.InfoContext(ctx, "telemetry consumer started", "topic", c.topic)

	for {
		if err := c.group.Consume(ctx, []string{c.topic}, c); err != nil {
			if errors.Is(err, sarama.ErrClosedConsumerGroup) {
				return nil
			}
			return err
		}
		if ctx.Err() != nil {
			c.logger.Info("telemetry consumer stopped")
			return nil
		}
	}
}

// Close leaves the consumer group.
func (c *TelemetryConsumer) Close() error {
	return c.group.Close()
}

// Setup is part of sarama.ConsumerGroupHandler.
func (c *TelemetryConsumer) Setup(sarama.ConsumerGroupSession) error { return nil }

// Cleanup is part of sarama.ConsumerGroupHandler.
func (c *TelemetryConsumer) Cleanup(sarama.ConsumerGroupSession) error { return nil }

// ConsumeClaim is part of sarama.ConsumerGroupHandler.
func (c *TelemetryConsumer) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for {
		select {
		case msg, ok := <-claim.Messages():
			if !ok {
				return nil
			}
			if err := c.HandleMessage(session.Context(), msg.Value); err != nil {
				c.logger.WarnContext(session.Context(), "telemetry message dropped",
					"partition", msg.Partition,
					"offset", msg.Offset,
					"error", err)
			}
			session.MarkMessage(msg, "")
		case <-session.Context().Done():
			return nil
		}
	}
}

// HandleMessage decodes one telemetry payload and adjusts its route.
func (c *TelemetryConsumer) HandleMessage(ctx context.Context, payload []byte) error {
	cmd, err := c.decode(payload)
	if err != nil {
		return err
	}

	for attempt := 1; ; attempt++ {
		adjusted, adjErr := c.adjuster.Handle(ctx, cmd)
		if adjErr == nil {
			c.logger.DebugContext(ctx, "route adjusted from telemetry",
				"route_id", adjusted.ID().String(),
				"version", adjusted.Version())
			return nil
		}
		if !errors.Is(adjErr, errs.ErrVersionIsInvalid) || attempt > c.maxRetries {
			return adjErr
		}
		c.logger.DebugContext(ctx, "route changed concurrently, retrying",
			"route_id", cmd.RouteID().String(),
			"attempt", attempt)
	}
}

func (c *TelemetryConsumer) decode(payload []byte) (commands.AdjustRouteCommand, error) {
	var msg telemetryMessage
	if err := json.Unmarshal(payload, &msg); err != nil {
		return commands.AdjustRouteCommand{}, errs.NewValueIsInvalidErrorWithCause("telemetry", err)
	}

	routeID, err := kernel.UUIDFromString(msg.RouteID)
	if err != nil {
		return commands.AdjustRouteCommand{}, errs.NewValueIsInvalidErrorWithCause("route_id", err)
	}

	delays, err := signals[services.DelaySignals](msg.Delays)
	if err != nil {
		return commands.AdjustRouteCommand{}, err
	}
	traffic, err := signals[services.TrafficSignals](msg.Traffic)
	if err != nil {
		return commands.AdjustRouteCommand{}, err
	}

	return commands.NewAdjustRouteCommand(routeID, delays, traffic, nil, c.params())
}

func signals[M ~map[kernel.UUID]float64](raw map[string]float64) (M, error) {
	out := make(M, len(raw))
	for key, v := range raw {
		id, err := kernel.UUIDFromString(key)
		if err != nil {
			return nil, errs.NewValueIsInvalidErrorWithCause("order_id", err)
		}
		out[id] = v
	}
	return out, nil
}
