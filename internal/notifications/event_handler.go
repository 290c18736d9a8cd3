package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/richxcame/secureverify/internal/verification"
	"github.com/richxcame/secureverify/pkg/eventbus"
	"github.com/richxcame/secureverify/pkg/logger"
	"go.uber.org/zap"
)

// EventHandler turns verification events from the bus into inbox entries.
type EventHandler struct {
	service *Service
}

// NewEventHandler creates an event handler backed by the notification service.
func NewEventHandler(service *Service) *EventHandler {
	return &EventHandler{service: service}
}

// RegisterSubscriptions subscribes to verification lifecycle events on the bus.
func (h *EventHandler) RegisterSubscriptions(ctx context.Context, bus *eventbus.Bus) error {
	if err := bus.Subscribe(ctx, "verification.>", "notifications-verification", h.handleVerificationEvent); err != nil {
		return fmt.Errorf("subscribe to verification events: %w", err)
	}
	logger.Info("notifications: subscribed to verification lifecycle events")
	return nil
}

func (h *EventHandler) handleVerificationEvent(ctx context.Context, event *eventbus.Event) error {
	var data verification.EventData
	if err := json.Unmarshal(event.Data, &data); err != nil {
		return fmt.Errorf("unmarshal %s: %w", event.Type, err)
	}

	var args []interface{}
	switch event.Type {
	case verification.EventPersonalInfoSubmitted,
		verification.EventApproved,
		verification.EventReset:
	case verification.EventDocumentSubmitted:
		args = append(args, string(data.DocumentType))
	case verification.EventBiometricSubmitted:
		args = append(args, data.VerificationID)
	case verification.EventRejected:
		args = append(args, data.RejectionReason)
	default:
		logger.Debug("notifications: ignoring unknown event type", zap.String("type", event.Type))
		return nil
	}

	notifType := strings.TrimPrefix(event.Type, "verification.")
	key := "notification.verification." + notifType
	h.service.Notify(ctx, data.UserID, notifType, key+".title", key+".body", args...)
	return nil
}
