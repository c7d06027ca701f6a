package services

import (
	"context"
	"encoding/json"
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/fastygo/taskboard/domain"
)

// MessageWriter is the subset of *kafka.Writer the relay needs.
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// RelayedEvent is the JSON payload written for each task change.
type RelayedEvent struct {
	Kind       domain.ChangeKind `json:"kind"`
	UserID     string            `json:"user_id"`
	OccurredAt time.Time         `json:"occurred_at"`
	Task       *domain.Task      `json:"task"`
}

// EventRelay is a bus observer that forwards every change event to Kafka,
// keyed by task id.
type EventRelay struct {
	writer MessageWriter
	logger *zap.Logger
}

func NewEventRelay(writer MessageWriter, logger *zap.Logger) *EventRelay {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EventRelay{writer: writer, logger: logger}
}

func (r *EventRelay) HandleTaskChange(ctx context.Context, ev domain.ChangeEvent) error {
	if r == nil || r.writer == nil || ev.Task == nil {
		return nil
	}
	payload, err := json.Marshal(RelayedEvent{
		Kind:       ev.Kind,
		UserID:     ev.UserID(),
		OccurredAt: ev.OccurredAt,
		Task:       ev.Task,
	})
	if err != nil {
		return err
	}
	return r.writer.WriteMessages(ctx, kafkago.Message{
		Key:   []byte(ev.Task.ID),
		Value: payload,
		Time:  ev.OccurredAt,
		Headers: []kafkago.Header{
			{Key: "kind", Value: []byte(ev.Kind)},
		},
	})
}

// Close flushes and closes the writer.
func (r *EventRelay) Close(ctx context.Context) error {
	if r == nil || r.writer == nil {
		return nil
	}
	err := r.writer.Close()
	r.logger.Info("event relay stopped")
	return err
}
