package notify

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/festy23/kurukatsu/internal/config"
)

// MessageWriter is the subset of *kafka.Writer used by KafkaDispatcher.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// NewKafkaWriter builds a writer for the notification topic.
func NewKafkaWriter(cfg config.KafkaConfig) *kafka.Writer {
	return &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Topic:                  cfg.NotifyTopic,
		Balancer:               &kafka.Hash{},
		WriteTimeout:           cfg.WriteTimeout,
		RequiredAcks:           kafka.RequireOne,
		AllowAutoTopicCreation: true,
	}
}

// KafkaDispatcher publishes notifications as JSON keyed by user id, so all
// messages for one user land on the same partition.
type KafkaDispatcher struct {
	writer MessageWriter
	logger *zap.SugaredLogger
}

// NewKafkaDispatcher creates a KafkaDispatcher.
func NewKafkaDispatcher(writer MessageWriter, logger *zap.SugaredLogger) *KafkaDispatcher {
	return &KafkaDispatcher{writer: writer, logger: logger}
}

// Dispatch writes n to the topic.
func (d *KafkaDispatcher) Dispatch(ctx context.Context, n Notification) error {
	payload, err := json.Marshal(n)
	if err != nil {
		return fmt.Errorf("failed to encode notification: %w", err)
	}

	if err := d.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(n.UserID),
		Value: payload,
	}); err != nil {
		return fmt.Errorf("failed to write notification: %w", err)
	}

	d.logger.Debugw("Dispatch completed", "user_id", n.UserID, "kind", n.Kind)
	return nil
}

// Close closes the underlying writer.
func (d *KafkaDispatcher) Close() error {
	return d.writer.Close()
}
