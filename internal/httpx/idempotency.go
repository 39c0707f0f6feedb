package httpx

import (
	"context"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

const IdempotencyHeader = "Idempotency-Key"

// IdempotencyStore claims request keys. Seen reports whether key was already
// claimed; Forget releases it so the request can be retried.
type IdempotencyStore interface {
	Seen(ctx context.Context, key string) (bool, error)
	Forget(ctx context.Context, key string) error
}

type RedisIdempotency struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewRedisIdempotency(rdb *redis.Client, ttl time.Duration) *RedisIdempotency {
	return &RedisIdempotency{rdb: rdb, ttl: ttl}
}

func (s *RedisIdempotency) Seen(ctx context.Context, key string) (bool, error) {
	ok, err := s.rdb.SetNX(ctx, key, "1", s.ttl).Result()
	if err != nil {
		return false, err
	}
	return !ok, nil
}

func (s *RedisIdempotency) Forget(ctx context.Context, key string) error {
	return s.rdb.Del(ctx, key).Err()
}

// MemoryIdempotency keeps keys in process. Used when no Redis is configured.
type MemoryIdempotency struct {
	mu   sync.Mutex
	ttl  time.Duration
	keys map[string]time.Time
	now  func() time.Time
}

func NewMemoryIdempotency(ttl time.Duration) *MemoryIdempotency {
	return &MemoryIdempotency{ttl: ttl, keys: map[string]time.Time{}, now: time.Now}
}

func (s *MemoryIdempotency) Seen(_ context.Context, key string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if exp, ok := s.keys[key]; ok && now.Before(exp) {
		return true, nil
	}
	s.keys[key] = now.Add(s.ttl)
	return false, nil
}

func (s *MemoryIdempotency) Forget(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.keys, key)
	return nil
}

// Idempotency rejects a repeated Idempotency-Key with 409. Keys are scoped
// to the staff member and route; a failed request releases its key.
// Requests without the header pass through.
func Idempotency(store IdempotencyStore, log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		k := c.GetHeader(IdempotencyHeader)
		if k == "" {
			c.Next()
			return
		}
		owner := ""
		if st := CurrentStaff(c); st != nil {
			owner = st.ID
		}
		key := "idem:" + owner + ":" + c.Request.Method + ":" + c.Request.URL.Path + ":" + k

		seen, err := store.Seen(c.Request.Context(), key)
		if err != nil {
			// store down: serve the request rather than refuse it
			log.Warn("idempotency store unavailable", "err", err)
			c.Next()
			return
		}
		if seen {
			Fail(c, http.StatusConflict, "duplicate request")
			return
		}

		c.Next()

		if c.Writer.Status() >= 400 {
			if err := store.Forget(context.WithoutCancel(c.Request.Context()), key); err != nil {
				log.Warn("idempotency forget failed", "err", err)
			}
		}
	}
}
