package entity

import (
	"time"

	"github.com/gofrs/uuid"
)

// EmailPreferences - подписки получателя, ключом служит opaque-токен из письма
type EmailPreferences struct {
	Token         uuid.UUID `json:"-"`
	Email         string    `json:"email"`
	Subscriptions Subscriptions `json:"subscriptions"`
	UpdatedAt     time.Time `json:"updatedAt"`
	ExpiresAt     time.Time `json:"-"`
}

// Subscriptions - три категории рассылок
type Subscriptions struct {
	Newsletters   bool `json:"newsletters"`
	Events        bool `json:"events"`
	Announcements bool `json:"announcements"`
}

// ManagePreferencesRequest - тело POST /api/email/manage/{token}.
// Либо unsubscribeAll, либо точечное обновление категорий.
type ManagePreferencesRequest struct {
	Subscriptions  *Subscriptions `json:"subscriptions"`
	UnsubscribeAll bool           `json:"unsubscribeAll"`
}

// Apply возвращает подписки после применения запроса.
// unsubscribeAll сбрасывает все три флага; иначе берём флаги из запроса как есть.
func (r ManagePreferencesRequest) Apply(current Subscriptions) Subscriptions {
	if r.UnsubscribeAll {
		return Subscriptions{}
	}
	if r.Subscriptions != nil {
		return *r.Subscriptions
	}
	return current
}

// BouncedEmail - сообщение из топика почтового сервиса о невалидном адресе
type BouncedEmail struct {
	Email  string `json:"email"`
	Reason string `json:"reason,omitempty"`
}
