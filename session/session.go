package session

import (
	"fmt"
	"time"

	"github.com/priyanshu2307/Newschat/session/inmemory"
	redis_session "github.com/priyanshu2307/Newschat/session/redis"
	"github.com/priyanshu2307/Newschat/session/session_models"
)

// Store owns sessions and their message sequences. Expired sessions behave
// exactly like absent ones on every operation.
type Store interface {
	Create() (string, error)
	Exists(id string) bool
	History(id string) ([]session_models.Message, error)
	Append(id string, msg session_models.Message) error
	Delete(id string) error
}

type StoreType string

const (
	InMemoryStore StoreType = "inmemory"
	RedisStore    StoreType = "redis"
)

// RedisOptions carries connection settings for the redis store.
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// NewStore builds a session store of the requested type. expiry applies to
// the in-memory store; the redis store uses its own key TTL.
func NewStore(storeType StoreType, expiry time.Duration, redisOpts RedisOptions) (Store, error) {
	switch storeType {
	case InMemoryStore:
		return inmemory.NewStore(expiry), nil
	case RedisStore:
		ttl := redisOpts.TTL
		if ttl <= 0 {
			ttl = expiry
		}
		return redis_session.NewStore(redisOpts.Addr, redisOpts.Password, redisOpts.DB, ttl), nil
	default:
		return nil, fmt.Errorf("unsupported session store type: %s", storeType)
	}
}
