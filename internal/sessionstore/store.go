// Package sessionstore persists serialized verification records keyed by user id.
package sessionstore

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// DefaultKeyPrefix prefixes every stored key
const DefaultKeyPrefix = "verification_state_"

// ErrNotFound is returned when no record is stored for a user
var ErrNotFound = errors.New("sessionstore: record not found")

// Store is a key-value store of opaque record blobs
type Store interface {
	Load(ctx context.Context, userID uuid.UUID) ([]byte, error)
	Save(ctx context.Context, userID uuid.UUID, blob []byte) error
	Delete(ctx context.Context, userID uuid.UUID) error
	List(ctx context.Context) (map[uuid.UUID][]byte, error)
}

// keyer builds and parses storage keys
type keyer struct {
	prefix string
}

func newKeyer(prefix string) keyer {
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}
	return keyer{prefix: prefix}
}

func (k keyer) key(userID uuid.UUID) string {
	return k.prefix + userID.String()
}

func (k keyer) parse(key string) (uuid.UUID, bool) {
	raw, ok := strings.CutPrefix(key, k.prefix)
	if !ok {
		return uuid.Nil, false
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

func (k keyer) pattern() string {
	return k.prefix + "*"
}

func copyBlob(blob []byte) []byte {
	out := make([]byte, len(blob))
	copy(out, blob)
	return out
}

func wrap(op string, userID uuid.UUID, err error) error {
	return fmt.Errorf("sessionstore %s %s: %w", op, userID, err)
}
