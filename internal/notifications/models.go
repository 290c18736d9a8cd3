package notifications

import (
	"time"

	"github.com/google/uuid"
)

// Notification is a localized inbox entry as returned to the client
type Notification struct {
	ID        uuid.UUID `json:"id"`
	Type      string    `json:"type"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	IsRead    bool      `json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
}

// entry is what the inbox keeps. Text is rendered at read time so each
// reader sees it in their own language.
type entry struct {
	id        uuid.UUID
	notifType string
	titleKey  string
	bodyKey   string
	args      []interface{}
	read      bool
	createdAt time.Time
}
