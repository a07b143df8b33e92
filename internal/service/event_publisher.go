package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/danLeBrown/tripple-t-backend-sub000/internal/domain"
	"github.com/danLeBrown/tripple-t-backend-sub000/pkg/kafka"
	"github.com/danLeBrown/tripple-t-backend-sub000/pkg/logger"
	"github.com/danLeBrown/tripple-t-backend-sub000/pkg/retry"
)

// EventPublisher emits user lifecycle events for the role-sync consumer.
type EventPublisher interface {
	PublishUserEvent(ctx context.Context, event *domain.UserEvent) error
	Close()
}

// KafkaEventPublisher publishes user events to a Kafka topic, keyed by user
// id so one user's events stay ordered within a partition.
type KafkaEventPublisher struct {
	producer *kafka.Producer
	topic    string
	retrier  *retry.Retrier
	log      *logger.Logger
}

// NewKafkaEventPublisher creates a publisher on an existing producer.
func NewKafkaEventPublisher(producer *kafka.Producer, topic string, log *logger.Logger) *KafkaEventPublisher {
	return &KafkaEventPublisher{
		producer: producer,
		topic:    topic,
		retrier: retry.New(&retry.Config{
			MaxRetries:      3,
			InitialInterval: 200 * time.Millisecond,
		}),
		log: log,
	}
}

func (p *KafkaEventPublisher) PublishUserEvent(ctx context.Context, event *domain.UserEvent) error {
	headers := map[string]string{"event_type": string(event.Type)}
	err := p.retrier.Do(ctx, func(ctx context.Context) error {
		return p.producer.ProduceJSON(ctx, p.topic, event.Key(), event, headers)
	})
	if err != nil {
		p.log.Error("failed to publish user event",
			zap.String("event_id", event.EventID),
			zap.String("event_type", string(event.Type)),
			zap.String("user_id", event.User.ID),
			zap.Error(err),
		)
		return err
	}
	p.log.Info("published user event",
		zap.String("event_id", event.EventID),
		zap.String("event_type", string(event.Type)),
		zap.String("user_id", event.User.ID),
	)
	return nil
}

func (p *KafkaEventPublisher) Close() {
	p.producer.Close()
}

var errBusClosed = errors.New("event bus is closed")

// ChannelEventBus is an in-process publisher backed by a buffered channel.
// It serves deployments without a broker and keeps the same at-least-once,
// eventually-consistent contract: publish succeeds once the event is queued.
type ChannelEventBus struct {
	ch     chan *domain.UserEvent
	mu     sync.Mutex
	closed bool
}

// NewChannelEventBus creates a bus with the given buffer size.
func NewChannelEventBus(buffer int) *ChannelEventBus {
	if buffer <= 0 {
		buffer = 256
	}
	return &ChannelEventBus{ch: make(chan *domain.UserEvent, buffer)}
}

func (b *ChannelEventBus) PublishUserEvent(ctx context.Context, event *domain.UserEvent) error {
	// The lock is held across the send so Close cannot close the channel
	// between the closed check and the send.
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return errBusClosed
	}

	select {
	case b.ch <- event:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Events exposes the receive side for the in-process consumer.
func (b *ChannelEventBus) Events() <-chan *domain.UserEvent {
	return b.ch
}

func (b *ChannelEventBus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.closed {
		b.closed = true
		close(b.ch)
	}
}

// NoOpEventPublisher drops events. Used when the event bridge is disabled.
type NoOpEventPublisher struct{}

func (NoOpEventPublisher) PublishUserEvent(ctx context.Context, event *domain.UserEvent) error {
	return nil
}

func (NoOpEventPublisher) Close() {}
