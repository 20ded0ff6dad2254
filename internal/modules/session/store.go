// README: Session store backed by Redis (one JSON document per phone).
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// Store is the persistence contract the bot engine depends on; the
// Redis implementation below is the production one, memory.go backs
// the tests.
type Store interface {
	GetOrCreate(ctx context.Context, phone string) (*Session, error)
	Save(ctx context.Context, s *Session) error
}

type RedisStore struct {
	rdb *redis.Client
}

func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb}
}

func sessionKey(phone string) string {
	return "session:" + phone
}

func (s *RedisStore) GetOrCreate(ctx context.Context, phone string) (*Session, error) {
	raw, err := s.rdb.Get(ctx, sessionKey(phone)).Bytes()
	if errors.Is(err, redis.Nil) {
		sess := &Session{Phone: phone, State: StateStart, Cart: Cart{}}
		return sess, nil
	}
	if err != nil {
		return nil, fmt.Errorf("session get: %w", err)
	}

	var sess Session
	if err := json.Unmarshal(raw, &sess); err != nil {
		// A corrupt document is unrecoverable; start the
		// conversation over instead of failing every message.
		sess = Session{Phone: phone, State: StateStart, Cart: Cart{}}
	}
	sess.Phone = phone
	sess.Normalize()
	return &sess, nil
}

func (s *RedisStore) Save(ctx context.Context, sess *Session) error {
	raw, err := json.Marshal(sess)
	if err != nil {
		return err
	}
	if err := s.rdb.Set(ctx, sessionKey(sess.Phone), raw, 0).Err(); err != nil {
		return fmt.Errorf("session save: %w", err)
	}
	return nil
}
