// Package producer enqueues notification jobs to Kafka for cmd/worker to deliver.
package producer

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/segmentio/kafka-go"

	"payment-alerts/backend/internal/notify"
	"payment-alerts/backend/internal/payment/domain"
)

// KafkaQueue implements notify.Sender by writing delivery jobs to a Kafka
// topic instead of sending inline. Decouples webhook latency from provider
// latency; the worker owns actual delivery.
type KafkaQueue struct {
	writer *kafka.Writer
	topic  string
}

// NewKafkaQueue creates a queueing sender for the given brokers and topic.
// Returns nil when brokers or topic are empty. Call Close when shutting down.
func NewKafkaQueue(brokers []string, topic string) *KafkaQueue {
	if len(brokers) == 0 || topic == "" {
		return nil
	}
	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.LeastBytes{},
		BatchTimeout: 50 * time.Millisecond,
	}
	return &KafkaQueue{writer: writer, topic: topic}
}

// Send serializes the job and writes it to the topic. The payment id is the
// message key so retries for one record stay ordered within a partition.
func (q *KafkaQueue) Send(ctx context.Context, p domain.Payment, customMessage string) (notify.DeliveryResult, error) {
	job := notify.Job{Payment: p, CustomMessage: customMessage, EnqueuedAt: domain.NowISO()}
	payload, err := json.Marshal(job)
	if err != nil {
		return notify.DeliveryResult{Success: false, Error: err.Error(), Timestamp: domain.NowISO()}, err
	}
	writeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	err = q.writer.WriteMessages(writeCtx, kafka.Message{
		Key:   []byte(p.PaymentID),
		Value: payload,
	})
	if err != nil {
		log.Printf("notify: kafka enqueue failed for %s: %v", p.PaymentID, err)
		return notify.DeliveryResult{Success: false, Error: err.Error(), Timestamp: domain.NowISO()}, err
	}
	return notify.DeliveryResult{
		Success:   true,
		Queued:    true,
		Message:   "notification queued for delivery",
		Timestamp: domain.NowISO(),
	}, nil
}

// Close closes the Kafka writer. Safe to call on a nil queue.
func (q *KafkaQueue) Close() error {
	if q == nil || q.writer == nil {
		return nil
	}
	return q.writer.Close()
}
