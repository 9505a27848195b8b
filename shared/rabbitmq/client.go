// shared/rabbitmq/client.go
package rabbitmq

import (
	"context"
	"errors"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
)

// RabbitmqClient owns one TCP connection and one channel (a logical session inside it).
type RabbitmqClient struct {
	conn *amqp.Connection
	chn  *amqp.Channel
}

func NewClient(url string) (*RabbitmqClient, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("rabbitmq: dial: %w", err)
	}
	chn, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("rabbitmq: open channel: %w", err)
	}
	return &RabbitmqClient{conn: conn, chn: chn}, nil
}

// Close closes the channel first, then the connection.
func (r *RabbitmqClient) Close() error {
	if err := r.chn.Close(); err != nil {
		return err
	}
	return r.conn.Close()
}

// CreateQueue declares a durable queue so jobs survive a broker restart.
func (r *RabbitmqClient) CreateQueue(queueName string) error {
	_, err := r.chn.QueueDeclare(
		queueName, // name
		true,      // durable
		false,     // delete when unused
		false,     // exclusive
		false,     // no-wait
		nil,       // arguments
	)
	return err
}

// SetPrefetch caps unacknowledged deliveries per consumer.
func (r *RabbitmqClient) SetPrefetch(count int) error {
	return r.chn.Qos(count, 0, false)
}

// Publish sends a persistent JSON message to a queue through the default exchange.
func (r *RabbitmqClient) Publish(ctx context.Context, queueName string, body []byte) error {
	return r.chn.PublishWithContext(
		ctx,
		"",        // exchange
		queueName, // routing key (queue name)
		false,     // mandatory
		false,     // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Body:         body,
		},
	)
}

// Consume returns a read-only channel delivering messages with manual ack.
func (r *RabbitmqClient) Consume(queueName, consumerTag string) (<-chan amqp.Delivery, error) {
	return r.chn.Consume(
		queueName,   // queue
		consumerTag, // consumer
		false,       // auto-ack
		false,       // exclusive
		false,       // no-local
		false,       // no-wait
		nil,         // args
	)
}

// Healthy reports an error once the broker connection is gone.
func (r *RabbitmqClient) Healthy() error {
	if r.conn.IsClosed() {
		return errors.New("rabbitmq: connection closed")
	}
	return nil
}
