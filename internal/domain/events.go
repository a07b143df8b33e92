package domain

import "time"

// UserEventType names the lifecycle events the role-sync consumer reacts to.
type UserEventType string

const (
	UserEventCreated UserEventType = "user.created"
	UserEventUpdated UserEventType = "user.updated"
)

// UserEvent is emitted after a user row commits. RoleID is the role requested
// on the create/update call; role assignment happens asynchronously in the
// consumer, so a failed assignment never rolls back the user write.
type UserEvent struct {
	EventID   string        `json:"event_id"`
	Type      UserEventType `json:"event_type"`
	User      *User         `json:"user"`
	RoleID    string        `json:"role_id,omitempty"`
	Timestamp time.Time     `json:"timestamp"`
}

// Key returns the partition key, keeping one user's events ordered.
func (e *UserEvent) Key() string {
	return e.User.ID
}
