//go:build kafka

package publish

import (
	"context"
	"fmt"
	"time"

	"github.com/confluentinc/confluent-kafka-go/v2/kafka"
	"github.com/huangsam/roadsurvey/internal/contract"
	"github.com/huangsam/roadsurvey/schema"
	"go.uber.org/zap"
)

const flushTimeout = 15 * time.Second

// KafkaPublisher writes one message per survey and waits for its delivery report.
type KafkaPublisher struct {
	producer *kafka.Producer
	topic    string
	logger   *zap.Logger
}

var _ contract.Publisher = &KafkaPublisher{} // Compile-time check

// NewKafkaPublisher connects a producer to brokers, a comma separated list.
func NewKafkaPublisher(brokers, topic string, logger *zap.Logger) (*KafkaPublisher, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	p, err := kafka.NewProducer(&kafka.ConfigMap{
		"bootstrap.servers":   brokers,
		"acks":                "all",
		"enable.idempotence":  true,
		"compression.type":    "snappy",
		"delivery.timeout.ms": 60000,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create kafka producer: %w", err)
	}
	return &KafkaPublisher{producer: p, topic: topic, logger: logger}, nil
}

// Publish sends the survey roll-up keyed by run ID.
func (k *KafkaPublisher) Publish(ctx context.Context, result *schema.SurveyResult) error {
	key, value, headers, err := Encode(result, time.Now())
	if err != nil {
		return err
	}
	msg := &kafka.Message{
		TopicPartition: kafka.TopicPartition{Topic: &k.topic, Partition: kafka.PartitionAny},
		Key:            key,
		Value:          value,
	}
	for name, v := range headers {
		msg.Headers = append(msg.Headers, kafka.Header{Key: name, Value: []byte(v)})
	}

	delivery := make(chan kafka.Event, 1)
	if err := k.producer.Produce(msg, delivery); err != nil {
		return fmt.Errorf("failed to produce survey %s: %w", result.RunID, err)
	}

	select {
	case <-ctx.Done():
		return ctx.Err()
	case e := <-delivery:
		m, ok := e.(*kafka.Message)
		if !ok {
			return fmt.Errorf("unexpected delivery event %v", e)
		}
		if m.TopicPartition.Error != nil {
			return fmt.Errorf("delivery of survey %s failed: %w", result.RunID, m.TopicPartition.Error)
		}
		k.logger.Info("survey published",
			zap.String("run_id", result.RunID),
			zap.String("topic", k.topic),
			zap.Int32("partition", m.TopicPartition.Partition),
			zap.String("offset", m.TopicPartition.Offset.String()),
		)
		return nil
	}
}

// Close flushes pending messages and releases the producer.
func (k *KafkaPublisher) Close() error {
	remaining := k.producer.Flush(int(flushTimeout.Milliseconds()))
	k.producer.Close()
	if remaining > 0 {
		return fmt.Errorf("%d messages still queued after flush", remaining)
	}
	return nil
}
