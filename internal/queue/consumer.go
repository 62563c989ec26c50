package queue

import (
	"context"
	"encoding/json"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// Handler processes one ingestion job. A returned error sends the message
// through the retry queue until the retry ceiling, then to the DLQ.
type Handler func(ctx context.Context, job IngestJob) error

type Consumer struct {
	conn       *amqp.Connection
	ch         *amqp.Channel
	queue      string
	maxRetries int
	logger     *zap.Logger
}

func NewConsumer(url, queue string, maxRetries int, retryDelay time.Duration, logger *zap.Logger) (*Consumer, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, err
	}

	if err := declareTopology(ch, queue, retryDelay); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, err
	}

	// One unacked message at a time: ingestion is heavy.
	if err := ch.Qos(1, 0, false); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, err
	}

	return &Consumer{conn: conn, ch: ch, queue: queue, maxRetries: maxRetries, logger: logger}, nil
}

func (c *Consumer) Close() error {
	if c.ch != nil {
		_ = c.ch.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}

// Run consumes until the context is cancelled or the channel closes.
func (c *Consumer) Run(ctx context.Context, handler Handler) error {
	deliveries, err := c.ch.Consume(c.queue, "", false, false, false, false, nil)
	if err != nil {
		return err
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-deliveries:
			if !ok {
				return amqp.ErrClosed
			}
			c.handle(ctx, d, handler)
		}
	}
}

func (c *Consumer) handle(ctx context.Context, d amqp.Delivery, handler Handler) {
	var job IngestJob
	if err := json.Unmarshal(d.Body, &job); err != nil {
		c.logger.Error("dropping malformed job", zap.Error(err))
		_ = d.Nack(false, false) // straight to DLQ
		return
	}

	if err := handler(ctx, job); err != nil {
		attempts := deathCount(d.Headers)
		if attempts >= int64(c.maxRetries) {
			c.logger.Error("job exhausted retries, dead-lettering",
				zap.String("document_id", job.DocumentID),
				zap.Int64("attempts", attempts),
				zap.Error(err))
			_ = d.Nack(false, false)
			return
		}

		c.logger.Warn("job failed, scheduling retry",
			zap.String("document_id", job.DocumentID),
			zap.Int64("attempts", attempts),
			zap.Error(err))
		if pubErr := c.publishRetry(ctx, d.Body); pubErr != nil {
			c.logger.Error("retry publish failed", zap.Error(pubErr))
			_ = d.Nack(false, false)
			return
		}
		_ = d.Ack(false)
		return
	}

	_ = d.Ack(false)
}

func (c *Consumer) publishRetry(ctx context.Context, body []byte) error {
	cctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	return c.ch.PublishWithContext(cctx, "", c.queue+".retry", false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Body:         body,
		Timestamp:    time.Now(),
	})
}

// deathCount reads how many times the broker has dead-lettered this
// message back through the retry queue.
func deathCount(headers amqp.Table) int64 {
	deaths, ok := headers["x-death"].([]interface{})
	if !ok || len(deaths) == 0 {
		return 0
	}
	entry, ok := deaths[0].(amqp.Table)
	if !ok {
		return 0
	}
	count, _ := entry["count"].(int64)
	return count
}
