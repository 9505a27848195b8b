// shared/kafka/consumer.go
package kafka

import (
	"context"
	"log/slog"
	"time"

	skafka "github.com/segmentio/kafka-go"
)

// Reader is the subset of segmentio kafka.Reader the consumer loop needs.
type Reader interface {
	FetchMessage(ctx context.Context) (skafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...skafka.Message) error
	Close() error
}

// Handler processes one message. Returning an error makes the consumer retry
// the same message; later offsets are not fetched until it succeeds.
type Handler func(ctx context.Context, key []byte, value []byte) error

// Consumer runs a fetch → handle → commit loop for one consumer group.
type Consumer struct {
	reader         Reader
	logger         *slog.Logger
	handlerTimeout time.Duration
	retryDelay     time.Duration
	maxRetryDelay  time.Duration
}

// NewConsumer joins groupID on topic. Several replicas with the same group split partitions.
func NewConsumer(brokers []string, topic, groupID string, logger *slog.Logger) *Consumer {
	r := skafka.NewReader(skafka.ReaderConfig{
		Brokers:  brokers,
		Topic:    topic,
		GroupID:  groupID,
		MinBytes: 1,
		MaxBytes: 10e6,
	})
	return NewConsumerWithReader(r, logger.With("topic", topic, "group", groupID))
}

// NewConsumerWithReader allows injecting a test reader.
func NewConsumerWithReader(r Reader, logger *slog.Logger) *Consumer {
	return &Consumer{
		reader:         r,
		logger:         logger,
		handlerTimeout: 10 * time.Second,
		retryDelay:     time.Second,
		maxRetryDelay:  30 * time.Second,
	}
}

// Start blocks until ctx is cancelled.
func (c *Consumer) Start(ctx context.Context, handler Handler) {
	c.logger.Info("kafka consumer started")
	for {
		if ctx.Err() != nil {
			return
		}

		m, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			c.logger.Warn("kafka fetch failed", "err", err)
			select {
			case <-ctx.Done():
				return
			case <-time.After(c.retryDelay):
			}
			continue
		}

		if !c.process(ctx, handler, m) {
			return
		}

		if err := c.reader.CommitMessages(ctx, m); err != nil {
			c.logger.Error("kafka commit failed", "offset", m.Offset, "err", err)
		}
	}
}

// process runs handler on m until it succeeds. Commits are cumulative per
// partition, so moving on after a failure would skip m for good. It returns
// false only when ctx ends first.
func (c *Consumer) process(ctx context.Context, handler Handler, m skafka.Message) bool {
	delay := c.retryDelay
	for attempt := 1; ; attempt++ {
		processCtx, cancel := context.WithTimeout(ctx, c.handlerTimeout)
		err := handler(processCtx, m.Key, m.Value)
		cancel()
		if err == nil {
			return true
		}
		c.logger.Error("kafka message processing failed",
			"partition", m.Partition, "offset", m.Offset, "attempt", attempt, "retry_in", delay, "err", err)

		select {
		case <-ctx.Done():
			return false
		case <-time.After(delay):
		}
		if delay *= 2; delay > c.maxRetryDelay {
			delay = c.maxRetryDelay
		}
	}
}

// Close disconnects from the brokers.
func (c *Consumer) Close() error {
	return c.reader.Close()
}
