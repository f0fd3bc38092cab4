package entity

import (
	"time"

	"github.com/gofrs/uuid"
)

// Event - событие сообщества (встреча, митап), даты в запросах строками RFC3339
type Event struct {
	ID          uuid.UUID `json:"id" validate:"required"`
	Title       string    `json:"title" validate:"required,min=1,max=200"`
	Description string    `json:"description" validate:"omitempty,max=2000"`
	Location    string    `json:"location" validate:"omitempty,max=300"`
	StartsAt    string    `json:"startsAt" validate:"required,rfc3339"`
	EndsAt      string    `json:"endsAt" validate:"required,rfc3339"`
	GroupID     string    `json:"groupId" validate:"omitempty,max=100"`
	CreatedBy   string    `json:"createdBy" validate:"omitempty,max=100"`
}

// EventResponse - событие из БД, даты уже типизированы
type EventResponse struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Location    string    `json:"location"`
	StartsAt    time.Time `json:"startsAt"`
	EndsAt      time.Time `json:"endsAt"`
	GroupID     string    `json:"groupId"`
	CreatedBy   string    `json:"createdBy"`
	CreatedAt   time.Time `json:"createdAt"`
}
