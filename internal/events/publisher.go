package events

import (
	"encoding/json"
	"time"

	"github.com/accounts-service/internal/models"
	"github.com/accounts-service/pkg/logger"
	"github.com/nats-io/nats.go"
)

// Subjects for account lifecycle events
const (
	SubjectUserCreated = "accounts.user.created"
	SubjectUserUpdated = "accounts.user.updated"
	SubjectUserDeleted = "accounts.user.deleted"
)

// UserEvent is the payload published for account lifecycle events
type UserEvent struct {
	UserID     uint      `json:"user_id"`
	Username   string    `json:"username,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Publisher emits account lifecycle events to NATS. Publishing is
// best-effort: failures are logged and never fail the request. A nil
// Publisher is a no-op, so callers need no guard when eventing is disabled.
type Publisher struct {
	conn *nats.Conn
	log  *logger.Logger
}

// Connect dials NATS and returns a Publisher
func Connect(url string, log *logger.Logger) (*Publisher, error) {
	conn, err := nats.Connect(url, nats.Name("accounts-service"))
	if err != nil {
		return nil, err
	}
	return &Publisher{conn: conn, log: log}, nil
}

// UserCreated publishes an accounts.user.created event
func (p *Publisher) UserCreated(user *models.User) {
	p.publish(SubjectUserCreated, UserEvent{
		UserID:     user.ID,
		Username:   user.Username,
		OccurredAt: time.Now().UTC(),
	})
}

// UserUpdated publishes an accounts.user.updated event
func (p *Publisher) UserUpdated(user *models.User) {
	p.publish(SubjectUserUpdated, UserEvent{
		UserID:     user.ID,
		Username:   user.Username,
		OccurredAt: time.Now().UTC(),
	})
}

// UserDeleted publishes an accounts.user.deleted event
func (p *Publisher) UserDeleted(userID uint) {
	p.publish(SubjectUserDeleted, UserEvent{
		UserID:     userID,
		OccurredAt: time.Now().UTC(),
	})
}

// Close drains the underlying connection
func (p *Publisher) Close() {
	if p == nil || p.conn == nil {
		return
	}
	if err := p.conn.Drain(); err != nil {
		p.log.Error("failed to drain NATS connection: %v", err)
	}
}

func (p *Publisher) publish(subject string, event UserEvent) {
	if p == nil || p.conn == nil {
		return
	}
	data, err := json.Marshal(event)
	if err != nil {
		p.log.Error("failed to encode %s event: %v", subject, err)
		return
	}
	if err := p.conn.Publish(subject, data); err != nil {
		p.log.Error("failed to publish %s event: %v", subject, err)
	}
}
