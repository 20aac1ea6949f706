// Package redpanda publishes completed evaluation records to Redpanda/Kafka
// for the downstream fine-tuning pipeline. Delivery is best-effort: the
// evaluation flow never blocks or fails on the sink.
package redpanda

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/twmb/franz-go/pkg/kgo"

	"github.com/fairyhunter13/ai-interview-evaluator/internal/domain"
)

// Producer wraps a Kafka producer and implements domain.TrainingSink.
type Producer struct {
	client *kgo.Client
	topic  string
}

// NewProducer constructs a Producer for the given brokers and topic.
func NewProducer(brokers []string, topic string) (*Producer, error) {
	if len(brokers) == 0 {
		return nil, fmt.Errorf("op=redpanda.new: no seed brokers provided")
	}
	if topic == "" {
		return nil, fmt.Errorf("op=redpanda.new: topic is empty")
	}
	client, err := kgo.NewClient(
		kgo.SeedBrokers(brokers...),
		kgo.RequestRetries(5),
		kgo.ProducerBatchMaxBytes(1000000),
	)
	if err != nil {
		return nil, fmt.Errorf("op=redpanda.new: %w", err)
	}
	slog.Info("redpanda producer created", slog.Any("brokers", brokers), slog.String("topic", topic))
	return &Producer{client: client, topic: topic}, nil
}

// PublishEvaluation emits one training record keyed by session id so
// records for a session land on one partition in order.
func (p *Producer) PublishEvaluation(ctx domain.Context, rec domain.TrainingRecord) error {
	payload, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("op=redpanda.publish: marshal: %w", err)
	}
	record := &kgo.Record{
		Topic: p.topic,
		Key:   []byte(rec.SessionID),
		Value: payload,
	}
	if err := p.client.ProduceSync(ctx, record).FirstErr(); err != nil {
		return fmt.Errorf("op=redpanda.publish topic=%s: %w", p.topic, err)
	}
	return nil
}

// Close flushes and releases the underlying client.
func (p *Producer) Close() { p.client.Close() }
