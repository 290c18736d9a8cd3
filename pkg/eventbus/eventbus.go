package eventbus

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/richxcame/secureverify/pkg/logger"
	"go.uber.org/zap"
)

// Event is the envelope carried on every subject
type Event struct {
	ID        string          `json:"id"`
	Type      string          `json:"type"`
	Source    string          `json:"source"`
	Timestamp time.Time       `json:"timestamp"`
	Data      json.RawMessage `json:"data"`
}

// Handler processes a single event
type Handler func(ctx context.Context, event *Event) error

// NewEvent builds an envelope with a fresh id around data
func NewEvent(eventType, source string, data interface{}) (*Event, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("marshal %s payload: %w", eventType, err)
	}
	return &Event{
		ID:        uuid.New().String(),
		Type:      eventType,
		Source:    source,
		Timestamp: time.Now().UTC(),
		Data:      raw,
	}, nil
}

type localSub struct {
	pattern string
	group   string
	handler Handler
}

// Bus publishes events over NATS core, or in-process when no connection is configured
type Bus struct {
	conn   *nats.Conn
	source string

	mu      sync.RWMutex
	subs    []*nats.Subscription
	local   []localSub
	closed  bool
	handled sync.WaitGroup
}

// Connect dials NATS at url
func Connect(url, source string) (*Bus, error) {
	conn, err := nats.Connect(url,
		nats.Name(source),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("eventbus: disconnected from NATS", zap.Error(err))
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("eventbus: reconnected to NATS", zap.String("url", nc.ConnectedUrl()))
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to nats: %w", err)
	}
	logger.Info("eventbus: connected to NATS", zap.String("url", conn.ConnectedUrl()))
	return &Bus{conn: conn, source: source}, nil
}

// NewLocal returns a bus that delivers events synchronously inside the process
func NewLocal(source string) *Bus {
	return &Bus{source: source}
}

// New connects to NATS when url is set and falls back to a local bus otherwise
func New(url, source string) (*Bus, error) {
	if url == "" {
		logger.Info("eventbus: NATS_URL not set, using in-process bus")
		return NewLocal(source), nil
	}
	return Connect(url, source)
}

// Source is the name stamped on published events
func (b *Bus) Source() string {
	return b.source
}

// Conn returns the underlying NATS connection, nil for a local bus
func (b *Bus) Conn() *nats.Conn {
	return b.conn
}

// Publish sends the event on subject
func (b *Bus) Publish(ctx context.Context, subject string, event *Event) error {
	b.mu.RLock()
	closed := b.closed
	b.mu.RUnlock()
	if closed {
		return fmt.Errorf("publish %s: bus closed", subject)
	}

	if b.conn == nil {
		return b.deliverLocal(ctx, subject, event)
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	if err := b.conn.Publish(subject, payload); err != nil {
		return fmt.Errorf("publish %s: %w", subject, err)
	}
	return nil
}

// Subscribe registers handler for subject, which may contain * and > wildcards.
// Subscribers sharing a group receive each message once.
func (b *Bus) Subscribe(ctx context.Context, subject, group string, handler Handler) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return fmt.Errorf("subscribe %s: bus closed", subject)
	}

	if b.conn == nil {
		b.local = append(b.local, localSub{pattern: subject, group: group, handler: handler})
		return nil
	}

	sub, err := b.conn.QueueSubscribe(subject, group, func(msg *nats.Msg) {
		b.handled.Add(1)
		defer b.handled.Done()

		var event Event
		if err := json.Unmarshal(msg.Data, &event); err != nil {
			logger.Warn("eventbus: dropping malformed event",
				zap.String("subject", msg.Subject), zap.Error(err))
			return
		}
		if err := handler(ctx, &event); err != nil {
			logger.Error("eventbus: handler failed",
				zap.String("subject", msg.Subject),
				zap.String("type", event.Type),
				zap.Error(err))
		}
	})
	if err != nil {
		return fmt.Errorf("subscribe %s: %w", subject, err)
	}
	b.subs = append(b.subs, sub)
	return nil
}

func (b *Bus) deliverLocal(ctx context.Context, subject string, event *Event) error {
	b.mu.RLock()
	seen := make(map[string]bool)
	var targets []Handler
	for _, s := range b.local {
		if !MatchSubject(s.pattern, subject) {
			continue
		}
		if s.group != "" {
			key := s.pattern + "|" + s.group
			if seen[key] {
				continue
			}
			seen[key] = true
		}
		targets = append(targets, s.handler)
	}
	b.mu.RUnlock()

	for _, h := range targets {
		if err := h(ctx, event); err != nil {
			logger.Error("eventbus: handler failed",
				zap.String("subject", subject),
				zap.String("type", event.Type),
				zap.Error(err))
		}
	}
	return nil
}

// IsConnected reports whether the bus can deliver events
func (b *Bus) IsConnected() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return false
	}
	return b.conn == nil || b.conn.IsConnected()
}

// Close unsubscribes everything and drains the connection
func (b *Bus) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	subs := b.subs
	b.subs = nil
	b.local = nil
	b.mu.Unlock()

	for _, sub := range subs {
		if err := sub.Unsubscribe(); err != nil {
			logger.Warn("eventbus: unsubscribe failed", zap.String("subject", sub.Subject), zap.Error(err))
		}
	}
	if b.conn != nil {
		if err := b.conn.Drain(); err != nil {
			return fmt.Errorf("drain nats: %w", err)
		}
	}
	b.handled.Wait()
	return nil
}

// MatchSubject reports whether subject matches a NATS-style pattern
func MatchSubject(pattern, subject string) bool {
	pt := strings.Split(pattern, ".")
	st := strings.Split(subject, ".")
	for i, tok := range pt {
		if tok == ">" {
			return len(st) > i
		}
		if i >= len(st) {
			return false
		}
		if tok != "*" && tok != st[i] {
			return false
		}
	}
	return len(pt) == len(st)
}
