package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/danLeBrown/tripple-t-backend-sub000/internal/domain"
	"github.com/danLeBrown/tripple-t-backend-sub000/internal/service"
	"github.com/danLeBrown/tripple-t-backend-sub000/pkg/kafka"
	"github.com/danLeBrown/tripple-t-backend-sub000/pkg/logger"
)

// roleSyncer is the slice of RoleService the consumer needs.
type roleSyncer interface {
	AssignUserRole(ctx context.Context, userID, roleID string) (*domain.UserRole, error)
}

// UserEventConsumer applies user.created and user.updated events to the
// role assignment table. Failures are logged and dropped; the user row is
// already committed and a later event for the same user converges the state.
type UserEventConsumer struct {
	consumer *kafka.Consumer
	roles    roleSyncer
	log      *logger.Logger
	workers  int

	stopCh chan struct{}
	wg     sync.WaitGroup
}

// NewUserEventConsumer creates a consumer draining the user events topic.
func NewUserEventConsumer(consumer *kafka.Consumer, roles roleSyncer, workers int, log *logger.Logger) *UserEventConsumer {
	if workers <= 0 {
		workers = 4
	}
	return &UserEventConsumer{
		consumer: consumer,
		roles:    roles,
		log:      log,
		workers:  workers,
		stopCh:   make(chan struct{}),
	}
}

// Start launches the poll loop. It returns immediately; call Stop to drain.
func (c *UserEventConsumer) Start(ctx context.Context) {
	c.wg.Add(1)
	go c.pollLoop(ctx)
}

// Stop signals the poll loop and waits for in-flight events to finish.
func (c *UserEventConsumer) Stop() {
	close(c.stopCh)
	c.wg.Wait()
	c.consumer.Close()
}

func (c *UserEventConsumer) pollLoop(ctx context.Context) {
	defer c.wg.Done()

	for {
		select {
		case <-c.stopCh:
			return
		case <-ctx.Done():
			return
		default:
		}

		pollCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		messages, err := c.consumer.Poll(pollCtx)
		cancel()
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			// An empty poll window is not a failure.
			if errors.Is(err, context.DeadlineExceeded) {
				continue
			}
			c.log.Error("failed to poll user events", zap.Error(err))
			time.Sleep(time.Second)
			continue
		}
		if len(messages) == 0 {
			continue
		}

		c.dispatch(ctx, messages)

		if err := c.consumer.Commit(ctx); err != nil {
			c.log.Error("failed to commit offsets", zap.Error(err))
		}
	}
}

// dispatch fans a batch out to the worker pool and waits for it to finish
// before offsets are committed.
func (c *UserEventConsumer) dispatch(ctx context.Context, messages []*kafka.Message) {
	jobs := make(chan *kafka.Message)

	var wg sync.WaitGroup
	for i := 0; i < c.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for msg := range jobs {
				c.handle(ctx, msg)
			}
		}()
	}

	for _, msg := range messages {
		jobs <- msg
	}
	close(jobs)
	wg.Wait()
}

func (c *UserEventConsumer) handle(ctx context.Context, msg *kafka.Message) {
	var event domain.UserEvent
	if err := json.Unmarshal(msg.Value, &event); err != nil {
		c.log.Error("failed to decode user event",
			zap.ByteString("key", msg.Key),
			zap.Error(err),
		)
		return
	}
	applyUserEvent(ctx, c.roles, c.log, &event)
}

// applyUserEvent is shared by the Kafka and in-process consumers.
func applyUserEvent(ctx context.Context, roles roleSyncer, log *logger.Logger, event *domain.UserEvent) {
	if event.User == nil || event.RoleID == "" {
		log.Warn("skipping user event without role",
			zap.String("event_id", event.EventID),
			zap.String("event_type", string(event.Type)),
		)
		return
	}

	_, err := roles.AssignUserRole(ctx, event.User.ID, event.RoleID)
	if err != nil {
		log.Error("failed to sync role from user event",
			zap.String("event_id", event.EventID),
			zap.String("event_type", string(event.Type)),
			zap.String("user_id", event.User.ID),
			zap.String("role_id", event.RoleID),
			zap.Error(err),
		)
		return
	}

	log.Info("role synced from user event",
		zap.String("event_id", event.EventID),
		zap.String("event_type", string(event.Type)),
		zap.String("user_id", event.User.ID),
		zap.String("role_id", event.RoleID),
	)
}

// ChannelUserEventConsumer drains an in-process event bus with the same
// semantics as the Kafka consumer.
type ChannelUserEventConsumer struct {
	bus     *service.ChannelEventBus
	roles   roleSyncer
	log     *logger.Logger
	workers int

	wg sync.WaitGroup
}

// NewChannelUserEventConsumer creates an in-process consumer.
func NewChannelUserEventConsumer(bus *service.ChannelEventBus, roles roleSyncer, workers int, log *logger.Logger) *ChannelUserEventConsumer {
	if workers <= 0 {
		workers = 4
	}
	return &ChannelUserEventConsumer{
		bus:     bus,
		roles:   roles,
		log:     log,
		workers: workers,
	}
}

// Start launches the worker pool. Workers exit when the bus closes.
func (c *ChannelUserEventConsumer) Start(ctx context.Context) {
	for i := 0; i < c.workers; i++ {
		c.wg.Add(1)
		go func() {
			defer c.wg.Done()
			for event := range c.bus.Events() {
				applyUserEvent(ctx, c.roles, c.log, event)
			}
		}()
	}
}

// Stop waits for workers to drain the closed bus.
func (c *ChannelUserEventConsumer) Stop() {
	c.wg.Wait()
}
