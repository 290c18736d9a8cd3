package notifications

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/richxcame/secureverify/pkg/common"
	"github.com/richxcame/secureverify/pkg/i18n"
	"github.com/richxcame/secureverify/pkg/logger"
	"github.com/richxcame/secureverify/pkg/pagination"
	"go.uber.org/zap"
)

// DefaultInboxSize bounds each user's inbox when no size is configured
const DefaultInboxSize = 50

// Service keeps a bounded, newest-first inbox per user
type Service struct {
	mu        sync.RWMutex
	inboxes   map[uuid.UUID][]*entry
	inboxSize int
	now       func() time.Time
}

// NewService creates a notification service
func NewService(inboxSize int) *Service {
	if inboxSize <= 0 {
		inboxSize = DefaultInboxSize
	}
	return &Service{
		inboxes:   make(map[uuid.UUID][]*entry),
		inboxSize: inboxSize,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// Notify adds a notification to userID's inbox. titleKey and bodyKey are
// translation keys; args fill the body's format verbs.
func (s *Service) Notify(ctx context.Context, userID uuid.UUID, notifType, titleKey, bodyKey string, args ...interface{}) uuid.UUID {
	e := &entry{
		id:        uuid.New(),
		notifType: notifType,
		titleKey:  titleKey,
		bodyKey:   bodyKey,
		args:      args,
		createdAt: s.now(),
	}

	s.mu.Lock()
	inbox := append([]*entry{e}, s.inboxes[userID]...)
	if len(inbox) > s.inboxSize {
		inbox = inbox[:s.inboxSize]
	}
	s.inboxes[userID] = inbox
	s.mu.Unlock()

	logger.WithContext(ctx).Debug("notification queued",
		zap.String("user_id", userID.String()),
		zap.String("type", notifType))
	return e.id
}

// GetUserNotifications returns a page of userID's inbox rendered in lang
func (s *Service) GetUserNotifications(ctx context.Context, userID uuid.UUID, lang string, limit, offset int) ([]*Notification, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	inbox := s.inboxes[userID]
	start, end := pagination.Window(len(inbox), limit, offset)

	out := make([]*Notification, 0, end-start)
	for _, e := range inbox[start:end] {
		out = append(out, render(e, lang))
	}
	return out, int64(len(inbox)), nil
}

// GetUnreadCount gets count of unread notifications
func (s *Service) GetUnreadCount(ctx context.Context, userID uuid.UUID) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, e := range s.inboxes[userID] {
		if !e.read {
			count++
		}
	}
	return count, nil
}

// MarkAsRead marks one of userID's notifications as read
func (s *Service) MarkAsRead(ctx context.Context, userID, notificationID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, e := range s.inboxes[userID] {
		if e.id == notificationID {
			e.read = true
			return nil
		}
	}
	return common.NewNotFoundError("notification not found", nil)
}

func render(e *entry, lang string) *Notification {
	return &Notification{
		ID:        e.id,
		Type:      e.notifType,
		Title:     i18n.Translate(e.titleKey, lang),
		Body:      i18n.Translate(e.bodyKey, lang, e.args...),
		IsRead:    e.read,
		CreatedAt: e.createdAt,
	}
}
