package redis_session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/priyanshu2307/Newschat/session/session_models"
	"github.com/redis/go-redis/v9"
)

// Concurrent appends to one session retry on WATCH conflicts this many
// times before giving up.
const maxAppendRetries = 50

// Store keeps sessions in redis. Expiry rides on redis key TTLs, refreshed
// on every append, so eviction happens at the storage layer instead of a
// lazy in-process sweep.
type Store struct {
	client *redis.Client
	ttl    time.Duration
}

type sessionRecord struct {
	CreatedAt time.Time                `json:"created_at"`
	Messages  []session_models.Message `json:"messages"`
}

// NewStore creates a redis-backed session store.
func NewStore(addr, password string, db int, ttl time.Duration) *Store {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	return &Store{client: rdb, ttl: ttl}
}

// Ping verifies connectivity; called once at startup.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis connection failed: %w", err)
	}
	return nil
}

func key(id string) string { return "session:" + id }

func (s *Store) Create() (string, error) {
	ctx := context.Background()
	id := uuid.NewString()
	rec := sessionRecord{CreatedAt: time.Now()}
	data, err := json.Marshal(rec)
	if err != nil {
		return "", err
	}
	if err := s.client.Set(ctx, key(id), data, s.ttl).Err(); err != nil {
		return "", fmt.Errorf("creating session: %w", err)
	}
	return id, nil
}

func (s *Store) Exists(id string) bool {
	n, err := s.client.Exists(context.Background(), key(id)).Result()
	return err == nil && n == 1
}

func (s *Store) History(id string) ([]session_models.Message, error) {
	rec, err := s.load(id)
	if err != nil {
		return nil, err
	}
	return rec.Messages, nil
}

// Append adds a message under an optimistic WATCH transaction so two
// interleaved turns on the same session cannot both read N messages and
// write back N+1, losing one.
func (s *Store) Append(id string, msg session_models.Message) error {
	ctx := context.Background()
	txf := func(tx *redis.Tx) error {
		val, err := tx.Get(ctx, key(id)).Result()
		if err == redis.Nil {
			return session_models.ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("loading session: %w", err)
		}
		var rec sessionRecord
		if err := json.Unmarshal([]byte(val), &rec); err != nil {
			return fmt.Errorf("decoding session: %w", err)
		}
		rec.Messages = append(rec.Messages, msg)
		data, err := json.Marshal(rec)
		if err != nil {
			return err
		}
		// Rewriting the key refreshes the TTL: the expiry window slides
		// with activity, matching the in-memory store.
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key(id), data, s.ttl)
			return nil
		})
		return err
	}

	for i := 0; i < maxAppendRetries; i++ {
		err := s.client.Watch(ctx, txf, key(id))
		if err == redis.TxFailedErr {
			continue
		}
		if errors.Is(err, session_models.ErrNotFound) {
			return session_models.ErrNotFound
		}
		if err != nil {
			return fmt.Errorf("appending message: %w", err)
		}
		return nil
	}
	return fmt.Errorf("appending message: session %s kept changing under us", id)
}

func (s *Store) Delete(id string) error {
	if err := s.client.Del(context.Background(), key(id)).Err(); err != nil {
		return fmt.Errorf("deleting session: %w", err)
	}
	return nil
}

func (s *Store) load(id string) (*sessionRecord, error) {
	val, err := s.client.Get(context.Background(), key(id)).Result()
	if err == redis.Nil {
		return nil, session_models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading session: %w", err)
	}
	var rec sessionRecord
	if err := json.Unmarshal([]byte(val), &rec); err != nil {
		return nil, fmt.Errorf("decoding session: %w", err)
	}
	return &rec, nil
}
