// Package kafka publica los eventos de stock en Kafka con segmentio/kafka-go.
package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/jhoicas/stock-ledger-api/internal/application/inventory"
)

var _ inventory.EventPublisher = (*Publisher)(nil)

// messageWriter lo implementa *kafka.Writer.
type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// PublishObserver recibe el resultado de cada publicación (métricas).
type PublishObserver interface {
	ObservePublish(outcome string)
}

// Publisher escribe un mensaje por evento, con clave = product_id para conservar el orden
// de los ajustes de un mismo producto dentro de la partición.
type Publisher struct {
	writer   messageWriter
	observer PublishObserver
	timeout  time.Duration
}

// NewPublisher crea el writer síncrono sobre los brokers y el tópico dados.
func NewPublisher(brokers []string, topic string, observer PublishObserver) *Publisher {
	w := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		BatchTimeout: 10 * time.Millisecond,
		RequiredAcks: kafka.RequireOne,
		Async:        false,
	}
	return newPublisher(w, observer)
}

func newPublisher(w messageWriter, observer PublishObserver) *Publisher {
	return &Publisher{writer: w, observer: observer, timeout: 5 * time.Second}
}

// PublishStockAdjusted serializa el evento en JSON y lo escribe.
func (p *Publisher) PublishStockAdjusted(ctx context.Context, ev inventory.StockAdjustedEvent) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("serializar evento: %w", err)
	}
	msg := kafka.Message{
		Key:   []byte(ev.ProductID),
		Value: data,
		Headers: []kafka.Header{
			{Key: "event-type", Value: []byte(ev.Type)},
			{Key: "event-id", Value: []byte(ev.AdjustmentID)},
			{Key: "content-type", Value: []byte("application/json")},
		},
		Time: ev.OccurredAt,
	}

	writeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.timeout)
	defer cancel()
	if err := p.writer.WriteMessages(writeCtx, msg); err != nil {
		p.observe("error")
		return fmt.Errorf("publicar %s: %w", ev.Type, err)
	}
	p.observe("ok")
	return nil
}

func (p *Publisher) observe(outcome string) {
	if p.observer != nil {
		p.observer.ObservePublish(outcome)
	}
}

// Close cierra el writer.
func (p *Publisher) Close() error {
	return p.writer.Close()
}
