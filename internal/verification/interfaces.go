package verification

import (
	"context"

	"github.com/google/uuid"
	"github.com/richxcame/secureverify/pkg/eventbus"
)

// SessionStore persists serialized records between sessions
type SessionStore interface {
	Load(ctx context.Context, userID uuid.UUID) ([]byte, error)
	Save(ctx context.Context, userID uuid.UUID, blob []byte) error
	Delete(ctx context.Context, userID uuid.UUID) error
	List(ctx context.Context) (map[uuid.UUID][]byte, error)
}

// EventPublisher announces verification transitions
type EventPublisher interface {
	Publish(ctx context.Context, subject string, event *eventbus.Event) error
}
