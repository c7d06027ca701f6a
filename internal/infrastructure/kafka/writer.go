package kafka

import (
	"time"

	kafkago "github.com/segmentio/kafka-go"
	"go.uber.org/zap"

	"github.com/fastygo/taskboard/internal/config"
)

// NewWriter builds an async producer for the task event topic. Messages are
// hashed by key so events of one task stay on one partition in order.
func NewWriter(cfg config.KafkaConfig, logger *zap.Logger) *kafkago.Writer {
	if logger == nil {
		logger = zap.NewNop()
	}
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafkago.Hash{},
		BatchSize:    100,
		BatchTimeout: 10 * time.Millisecond,
		Async:        true,
		RequiredAcks: kafkago.RequireOne,
		Completion: func(messages []kafkago.Message, err error) {
			if err != nil {
				logger.Warn("kafka delivery failed", zap.Int("messages", len(messages)), zap.Error(err))
			}
		},
	}
	logger.Info("kafka producer initialized", zap.String("topic", cfg.Topic), zap.Strings("brokers", cfg.Brokers))
	return w
}
