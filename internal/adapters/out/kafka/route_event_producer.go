// Package kafka publishes route events to a Kafka topic.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"tripplanner/internal/core/ports"

	"github.com/IBM/sarama"
)

// routeEventMessage is the JSON body of a message on the route events topic.
type routeEventMessage struct {
	Type       string    `json:"type"`
	RouteID    string    `json:"route_id"`
	Version    int64     `json:"version"`
	OrderID    *string   `json:"order_id,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// RouteEventProducer implements ports.RouteEventPublisher on a sarama SyncProducer.
// Messages are keyed by route id so every event of a route lands on one partition.
type RouteEventProducer struct {
	producer sarama.SyncProducer
	topic    string
}

// NewRouteEventProducer connects a synchronous producer to brokers.
func NewRouteEventProducer(brokers []string, topic string) (*RouteEventProducer, error) {
	config := sarama.NewConfig()
	config.Producer.RequiredAcks = sarama.WaitForAll
	config.Producer.Retry.Max = 5
	config.Producer.Retry.Backoff = 100 * time.Millisecond
	config.Producer.Return.Successes = true
	config.Net.DialTimeout = 30 * time.Second
	config.Net.ReadTimeout = 30 * time.Second
	config.Net.WriteTimeout = 30 * time.Second

	producer, err := sarama.NewSyncProducer(brokers, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create route event producer: %w", err)
	}

	return NewRouteEventProducerWithClient(producer, topic), nil
}

// NewRouteEventProducerWithClient wraps an existing producer.
func NewRouteEventProducerWithClient(producer sarama.SyncProducer, topic string) *RouteEventProducer {
	return &RouteEventProducer{producer: producer, topic: topic}
}

// Publish sends event and waits for the broker acknowledgement.
func (p *RouteEventProducer) Publish(ctx context.Context, event ports.RouteEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := routeEventMessage{
		Type:       string(event.Type),
		RouteID:    event.RouteID.String(),
		Version:    event.Version,
		OccurredAt: event.OccurredAt.UTC(),
	}
	if event.OrderID != nil {
		id := event.OrderID.String()
		msg.OrderID = &id
	}

	body, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	_, _, err = p.producer.SendMessage(&sarama.ProducerMessage{
		Topic: p.topic,
		Key:   sarama.StringEncoder(msg.RouteID),
		Value: sarama.ByteEncoder(body),
	})
	if err != nil {
		return fmt.Errorf("failed to send %s for route %s: %w", msg.Type, msg.RouteID, err)
	}

	return nil
}

// Close flushes and closes the underlying producer.
func (p *RouteEventProducer) Close() error {
	return p.producer.Close()
}
