// Package events streams store mutations to kafka for anything downstream
// (analytics, audit). The feed is optional and best effort.
package events

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/zerone-labs/storefront/internal/store"
)

type Producer struct {
	writer *kafka.Writer
	log    *slog.Logger
}

func NewProducer(address, topic string, log *slog.Logger) *Producer {
	w := &kafka.Writer{
		Addr:         kafka.TCP(address),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		BatchTimeout: 50 * time.Millisecond,
		RequiredAcks: kafka.RequireOne,
	}
	return &Producer{writer: w, log: log}
}

// Publish writes the event keyed by entity id so per-entity ordering
// survives partitioning. Errors are logged, never propagated: a dead
// broker must not block a checkout.
func (p *Producer) Publish(ctx context.Context, ev store.Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		p.log.Error("event marshal failed", "type", ev.Type, "error", err)
		return
	}

	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()

	msg := kafka.Message{Key: []byte(ev.ID), Value: data}
	if err := p.writer.WriteMessages(writeCtx, msg); err != nil {
		p.log.Error("event publish failed", "type", ev.Type, "id", ev.ID, "error", err)
	}
}

func (p *Producer) Close() error {
	return p.writer.Close()
}
