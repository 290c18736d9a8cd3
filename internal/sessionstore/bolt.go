package sessionstore

import (
	"context"
	"fmt"
	"time"

	"github.com/boltdb/bolt"
	"github.com/google/uuid"
)

// BucketVerificationState holds one key per user
const BucketVerificationState = "verification_state"

// BoltStore keeps blobs in a single-file bolt database
type BoltStore struct {
	db   *bolt.DB
	keys keyer
}

// OpenBolt opens (or creates) the bolt file at path and ensures the bucket exists
func OpenBolt(path string) (*bolt.DB, error) {
	db, err := bolt.Open(path, 0600, &bolt.Options{Timeout: 2 * time.Second})
	if err != nil {
		return nil, fmt.Errorf("open bolt %s: %w", path, err)
	}
	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(BucketVerificationState))
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("create bucket: %w", err)
	}
	return db, nil
}

// NewBoltStore creates a store over an opened bolt database
func NewBoltStore(db *bolt.DB, prefix string) *BoltStore {
	return &BoltStore{db: db, keys: newKeyer(prefix)}
}

func (s *BoltStore) Load(_ context.Context, userID uuid.UUID) ([]byte, error) {
	var out []byte
	err := s.db.View(func(tx *bolt.Tx) error {
		bkt := tx.Bucket([]byte(BucketVerificationState))
		if bkt == nil {
			return ErrNotFound
		}
		val := bkt.Get([]byte(s.keys.key(userID)))
		if val == nil {
			return ErrNotFound
		}
		// bolt values are only valid inside the transaction
		out = copyBlob(val)
		return nil
	})
	if err == ErrNotFound {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, wrap("load", userID, err)
	}
	return out, nil
}

func (s *BoltStore) Save(_ context.Context, userID uuid.UUID, blob []byte) error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		bkt, err := tx.CreateBucketIfNotExists([]byte(BucketVerificationState))
		if err != nil {
			return err
		}
		return bkt.Put([]byte(s.keys.key(userID)), blob)
	})
	if err != nil {
		return wrap("save", userID, err)
	}
	return nil
}

func (s *BoltStore) Delete(_ context.Context, userID uuid.UUID) error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		bkt := tx.Bucket([]byte(BucketVerificationState))
		if bkt == nil {
			return nil
		}
		return bkt.Delete([]byte(s.keys.key(userID)))
	})
	if err != nil {
		return wrap("delete", userID, err)
	}
	return nil
}

func (s *BoltStore) List(_ context.Context) (map[uuid.UUID][]byte, error) {
	out := make(map[uuid.UUID][]byte)
	err := s.db.View(func(tx *bolt.Tx) error {
		bkt := tx.Bucket([]byte(BucketVerificationState))
		if bkt == nil {
			return nil
		}
		return bkt.ForEach(func(k, v []byte) error {
			if id, ok := s.keys.parse(string(k)); ok {
				out[id] = copyBlob(v)
			}
			return nil
		})
	})
	if err != nil {
		return nil, fmt.Errorf("sessionstore list: %w", err)
	}
	return out, nil
}
