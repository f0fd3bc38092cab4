package entity

import (
	"encoding/json"
	"time"

	"github.com/gofrs/uuid"
)

type OutboxStatus string

const (
	OutboxNew    OutboxStatus = "NEW"
	OutboxSent   OutboxStatus = "SENT"
	OutboxFailed OutboxStatus = "FAILED"
	OutboxGaveUp OutboxStatus = "GAVE_UP"
)

type OutboxAggregate string

const (
	AggregateEvent       OutboxAggregate = "event"
	AggregateProfile     OutboxAggregate = "profile"
	AggregatePreferences OutboxAggregate = "preferences"
)

type OutboxEventType string

const (
	EventCreated       OutboxEventType = "event_created"
	AccountDeleted     OutboxEventType = "account_deleted"
	PreferencesUpdated OutboxEventType = "preferences_updated"
	Unsubscribed       OutboxEventType = "unsubscribed"
)

type OutboxEvent struct {
	ID            int             `db:"id"`
	AggregateID   uuid.UUID       `db:"aggregate_id"`
	AggregateType OutboxAggregate `db:"aggregate_type"` // event | profile | preferences
	EventType     OutboxEventType `db:"event_type"`
	Payload       json.RawMessage `db:"payload"` // JSONB для Kafka
	Status        OutboxStatus    `db:"status"`  // NEW | SENT | FAILED | GAVE_UP
	Attempts      int             `db:"attempts"`
	NextAttemptAt time.Time       `db:"next_attempt_at"`
	CreatedAt     time.Time       `db:"created_at"`
}
