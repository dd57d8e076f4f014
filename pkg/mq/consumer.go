package mq

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"sitelog/pkg/metrics"
	"sitelog/pkg/otel"
	"sitelog/pkg/trace"
)

type MessageHandler func(ctx context.Context, data json.RawMessage) error

// ErrorClassifier 判断错误是否可重试，返回错误类型用于日志
type ErrorClassifier func(err error) (retryable bool, errorType string)

// RetryTracker 记录单条消息的重试次数（通常由 Redis 实现）
type RetryTracker interface {
	IncrementAndGet(ctx context.Context, key string) (int64, error)
	Reset(ctx context.Context, key string) error
}

// Decision 处理失败后的动作
type Decision int

const (
	DecisionAck Decision = iota
	DecisionRequeue
	DecisionDeadLetter
)

type Consumer struct {
	channel    *amqp091.Channel
	queue      amqp091.Queue
	exchange   string
	routingKey string
	handler    MessageHandler
	conn       *amqp091.Connection
	logger     *zap.Logger

	classify   ErrorClassifier
	retries    RetryTracker
	maxRetries int64
	done       chan struct{}
}

// NewConsumer creates a consumer for a specific routing key.
func NewConsumer(url, exchange, queueName, routingKey string, logger *zap.Logger) (*Consumer, error) {
	conn, err := NewConnection(url)
	if err != nil {
		return nil, err
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to open channel: %w", err)
	}

	exchange = exchangeOrDefault(exchange)
	fail := func(format string, err error) (*Consumer, error) {
		ch.Close()
		conn.Close()
		return nil, fmt.Errorf(format, err)
	}

	if err := DeclareExchange(ch, exchange); err != nil {
		return fail("failed to declare exchange: %w", err)
	}
	if err := DeclareDLQExchange(ch, exchange); err != nil {
		return fail("failed to declare dlq exchange: %w", err)
	}
	if _, err := DeclareDLQQueue(ch, exchange, routingKey); err != nil {
		return fail("failed to declare dlq queue: %w", err)
	}

	q, err := ch.QueueDeclare(queueName, true, false, false, false, nil)
	if err != nil {
		return fail("failed to declare queue: %w", err)
	}
	if err := ch.QueueBind(q.Name, routingKey, exchange, false, nil); err != nil {
		return fail("failed to bind queue: %w", err)
	}
	if err := ch.Qos(10, 0, false); err != nil {
		return fail("failed to set qos: %w", err)
	}

	logger.Info("Consumer initialized",
		zap.String("routing_key", routingKey),
		zap.String("queue", queueName),
		zap.String("exchange", exchange),
	)

	return &Consumer{
		conn:       conn,
		channel:    ch,
		queue:      q,
		exchange:   exchange,
		routingKey: routingKey,
		logger:     logger,
		maxRetries: 3,
		done:       make(chan struct{}),
	}, nil
}

func (c *Consumer) SetHandler(h MessageHandler) {
	c.handler = h
}

// SetRetryPolicy 设置错误分类与重试计数；未设置时所有错误都重新入队
func (c *Consumer) SetRetryPolicy(classify ErrorClassifier, retries RetryTracker, maxRetries int64) {
	c.classify = classify
	c.retries = retries
	if maxRetries > 0 {
		c.maxRetries = maxRetries
	}
}

// IsConnected 用于 readiness 检查
func (c *Consumer) IsConnected() bool {
	return c.conn != nil && !c.conn.IsClosed()
}

// Stop 停止消费并关闭连接
func (c *Consumer) Stop() {
	select {
	case <-c.done:
	default:
		close(c.done)
	}
	c.Close()
}

func (c *Consumer) Close() {
	if c.channel != nil {
		_ = c.channel.Close()
	}
	if c.conn != nil {
		_ = c.conn.Close()
	}
}

// StartConsuming starts consuming messages. This method blocks and should be called in a goroutine.
func (c *Consumer) StartConsuming() error {
	if c.handler == nil {
		return fmt.Errorf("consumer handler not set")
	}

	deliveries, err := c.channel.Consume(
		c.queue.Name,
		"",
		false, // 手动ack
		false,
		false,
		false,
		nil,
	)
	if err != nil {
		return fmt.Errorf("failed to register consumer: %w", err)
	}

	c.logger.Info("Consumer started consuming messages",
		zap.String("routing_key", c.routingKey),
		zap.String("queue", c.queue.Name),
	)

	for {
		select {
		case <-c.done:
			return nil
		case msg, ok := <-deliveries:
			if !ok {
				return nil
			}
			c.process(msg)
		}
	}
}

// process 保证每条消息都会被 ack、nack 或转入死信
func (c *Consumer) process(msg amqp091.Delivery) {
	start := time.Now()
	ctx := c.messageContext(msg)
	ctx, span := otel.MQConsumeSpan(ctx, c.routingKey, c.queue.Name)
	defer span.End()

	log := c.logger.With(
		zap.String("routing_key", c.routingKey),
		zap.String("queue", c.queue.Name),
		zap.String("message_id", msg.MessageId),
		zap.String("trace_id", trace.FromContext(ctx)),
	)

	defer func() {
		if r := recover(); r != nil {
			log.Error("Handler panic recovered", zap.Any("panic", r))
			c.settle(ctx, log, msg, DecisionDeadLetter, fmt.Sprintf("panic: %v", r))
			metrics.RecordMQConsumeLatency(c.routingKey, "panic", time.Since(start))
		}
	}()

	err := c.handler(ctx, msg.Body)
	if err == nil {
		c.resetRetries(ctx, msg)
		c.settle(ctx, log, msg, DecisionAck, "")
		metrics.RecordMQConsumeLatency(c.routingKey, "ok", time.Since(start))
		return
	}

	span.RecordError(err)
	decision := c.decide(ctx, msg, err)
	log.Error("Handler error", zap.Error(err), zap.Int("decision", int(decision)))
	c.settle(ctx, log, msg, decision, err.Error())
	metrics.RecordMQConsumeLatency(c.routingKey, "error", time.Since(start))
}

func (c *Consumer) decide(ctx context.Context, msg amqp091.Delivery, err error) Decision {
	if c.classify == nil {
		return DecisionRequeue
	}
	retryable, errType := c.classify(err)
	if !retryable {
		c.logger.Warn("Non-retryable error, dead-lettering",
			zap.String("routing_key", c.routingKey),
			zap.String("error_type", errType),
		)
		return DecisionDeadLetter
	}
	if c.retries == nil || msg.MessageId == "" {
		return DecisionRequeue
	}

	count, rerr := c.retries.IncrementAndGet(ctx, c.retryKey(msg))
	if rerr != nil {
		// 计数失败时退化为直接重试
		return DecisionRequeue
	}
	if count > c.maxRetries {
		return DecisionDeadLetter
	}
	return DecisionRequeue
}

func (c *Consumer) settle(ctx context.Context, log *zap.Logger, msg amqp091.Delivery, decision Decision, reason string) {
	switch decision {
	case DecisionAck:
		if err := msg.Ack(false); err != nil {
			log.Error("Failed to ack message", zap.Error(err))
		}
	case DecisionRequeue:
		if err := msg.Nack(false, true); err != nil {
			log.Error("Failed to nack message", zap.Error(err))
		}
	case DecisionDeadLetter:
		if err := publishToDLQ(ctx, c.channel, c.exchange, c.queue.Name, msg, reason); err != nil {
			log.Error("Failed to publish to DLQ, requeueing", zap.Error(err))
			_ = msg.Nack(false, true)
			return
		}
		c.resetRetries(ctx, msg)
		if err := msg.Ack(false); err != nil {
			log.Error("Failed to ack dead-lettered message", zap.Error(err))
		}
	}
}

func (c *Consumer) retryKey(msg amqp091.Delivery) string {
	return fmt.Sprintf("retry:%s:%s", c.queue.Name, msg.MessageId)
}

func (c *Consumer) resetRetries(ctx context.Context, msg amqp091.Delivery) {
	if c.retries == nil || msg.MessageId == "" {
		return
	}
	_ = c.retries.Reset(ctx, c.retryKey(msg))
}

// messageContext 从消息头恢复 trace_id 与 otel trace context
func (c *Consumer) messageContext(msg amqp091.Delivery) context.Context {
	ctx := otel.GetTextMapPropagator().Extract(context.Background(), otel.NewMQHeaderCarrier(msg.Headers))
	if id, ok := msg.Headers[HeaderTraceID].(string); ok && id != "" {
		return trace.WithContext(ctx, id)
	}
	ctx, _ = trace.Ensure(ctx)
	return ctx
}
