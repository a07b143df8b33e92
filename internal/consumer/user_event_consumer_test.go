package consumer

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/danLeBrown/tripple-t-backend-sub000/internal/domain"
	"github.com/danLeBrown/tripple-t-backend-sub000/internal/service"
	"github.com/danLeBrown/tripple-t-backend-sub000/pkg/logger"
)

// mockRoleSyncer records role assignments.
type mockRoleSyncer struct {
	mu      sync.Mutex
	applied map[string]string // userID -> roleID
	err     error
}

func newMockRoleSyncer() *mockRoleSyncer {
	return &mockRoleSyncer{applied: make(map[string]string)}
}

func (m *mockRoleSyncer) AssignUserRole(ctx context.Context, userID, roleID string) (*domain.UserRole, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	m.applied[userID] = roleID
	return &domain.UserRole{UserID: userID, RoleID: roleID}, nil
}

func (m *mockRoleSyncer) roleFor(userID string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.applied[userID]
}

func TestChannelUserEventConsumer(t *testing.T) {
	bus := service.NewChannelEventBus(8)
	syncer := newMockRoleSyncer()

	cons := NewChannelUserEventConsumer(bus, syncer, 2, logger.NewNop())
	cons.Start(context.Background())

	events := []*domain.UserEvent{
		{
			EventID:   "e1",
			Type:      domain.UserEventCreated,
			User:      &domain.User{ID: "user-1", IsAdmin: true},
			RoleID:    "role-1",
			Timestamp: time.Now(),
		},
		{
			EventID:   "e2",
			Type:      domain.UserEventUpdated,
			User:      &domain.User{ID: "user-2", IsAdmin: true},
			RoleID:    "role-2",
			Timestamp: time.Now(),
		},
		// No role id: the consumer must skip it without calling the syncer.
		{
			EventID:   "e3",
			Type:      domain.UserEventUpdated,
			User:      &domain.User{ID: "user-3", IsAdmin: true},
			Timestamp: time.Now(),
		},
	}
	for _, e := range events {
		if err := bus.PublishUserEvent(context.Background(), e); err != nil {
			t.Fatalf("PublishUserEvent() error = %v", err)
		}
	}

	bus.Close()
	cons.Stop()

	if got := syncer.roleFor("user-1"); got != "role-1" {
		t.Errorf("user-1 role = %q, want role-1", got)
	}
	if got := syncer.roleFor("user-2"); got != "role-2" {
		t.Errorf("user-2 role = %q, want role-2", got)
	}
	if got := syncer.roleFor("user-3"); got != "" {
		t.Errorf("user-3 role = %q, want unassigned", got)
	}
}

func TestChannelUserEventConsumer_SyncFailureIsDropped(t *testing.T) {
	bus := service.NewChannelEventBus(8)
	syncer := newMockRoleSyncer()
	syncer.err = domain.ErrUserNotAdmin

	cons := NewChannelUserEventConsumer(bus, syncer, 1, logger.NewNop())
	cons.Start(context.Background())

	err := bus.PublishUserEvent(context.Background(), &domain.UserEvent{
		EventID:   "e1",
		Type:      domain.UserEventCreated,
		User:      &domain.User{ID: "user-1"},
		RoleID:    "role-1",
		Timestamp: time.Now(),
	})
	if err != nil {
		t.Fatalf("PublishUserEvent() error = %v", err)
	}

	// Stop must return even though every event failed to apply.
	bus.Close()
	cons.Stop()

	if got := syncer.roleFor("user-1"); got != "" {
		t.Errorf("user-1 role = %q, want unassigned", got)
	}
}

func TestChannelEventBus_PublishAfterClose(t *testing.T) {
	bus := service.NewChannelEventBus(1)
	bus.Close()

	err := bus.PublishUserEvent(context.Background(), &domain.UserEvent{
		EventID: "e1",
		User:    &domain.User{ID: "user-1"},
		RoleID:  "role-1",
	})
	if err == nil {
		t.Error("PublishUserEvent() after Close returned nil, want error")
	}
}
