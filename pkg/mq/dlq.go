package mq

import (
	"context"
	"fmt"

	"github.com/rabbitmq/amqp091-go"
)

// DLQExchangeName 死信交换机名称
func DLQExchangeName(exchange string) string {
	return exchangeOrDefault(exchange) + ".dlq"
}

// DeclareDLQExchange declares the dead letter exchange.
func DeclareDLQExchange(ch *amqp091.Channel, exchange string) error {
	return ch.ExchangeDeclare(
		DLQExchangeName(exchange),
		"topic",
		true,  // durable
		false, // auto-deleted
		false, // internal
		false, // no-wait
		nil,
	)
}

// DeclareDLQQueue declares a dead letter queue for a specific routing key.
func DeclareDLQQueue(ch *amqp091.Channel, exchange, routingKey string) (amqp091.Queue, error) {
	queueName := fmt.Sprintf("%s.dlq", routingKey)

	q, err := ch.QueueDeclare(
		queueName,
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,
	)
	if err != nil {
		return amqp091.Queue{}, fmt.Errorf("failed to declare DLQ queue: %w", err)
	}

	if err := ch.QueueBind(q.Name, routingKey, DLQExchangeName(exchange), false, nil); err != nil {
		return amqp091.Queue{}, fmt.Errorf("failed to bind DLQ queue: %w", err)
	}
	return q, nil
}

// publishToDLQ 原样转发到死信交换机，附带失败原因
func publishToDLQ(ctx context.Context, ch *amqp091.Channel, exchange, consumer string, msg amqp091.Delivery, reason string) error {
	headers := amqp091.Table{}
	for k, v := range msg.Headers {
		headers[k] = v
	}
	headers[HeaderOriginalError] = reason
	headers[HeaderFailedAt] = consumer

	return ch.PublishWithContext(ctx,
		DLQExchangeName(exchange),
		msg.RoutingKey,
		false,
		false,
		amqp091.Publishing{
			ContentType:  msg.ContentType,
			Body:         msg.Body,
			DeliveryMode: amqp091.Persistent,
			MessageId:    msg.MessageId,
			Headers:      headers,
		},
	)
}
