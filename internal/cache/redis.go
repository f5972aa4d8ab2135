// internal/cache/redis.go
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/walejandromt/KicksEmu/internal/models"
)

// DefaultQueueName is the list finished-match records are pushed to.
const DefaultQueueName = "kicks_matches"

// Event window keys. A window is open while its key exists.
const (
	GoldenTimeKey = "events:golden_time"
	ClubTimeKey   = "events:club_time"
)

// Connect creates a client for addr and verifies the connection.
func Connect(ctx context.Context, addr string, db int) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", addr, err)
	}
	return rdb, nil
}

// MatchQueue is the Redis list between the game server and the historian.
type MatchQueue struct {
	rdb  *redis.Client
	name string
}

// NewMatchQueue returns a queue on the list name, or DefaultQueueName if empty.
func NewMatchQueue(rdb *redis.Client, name string) *MatchQueue {
	if name == "" {
		name = DefaultQueueName
	}
	return &MatchQueue{rdb: rdb, name: name}
}

// Name returns the list name.
func (q *MatchQueue) Name() string { return q.name }

// PublishMatch pushes the record to the tail of the queue.
func (q *MatchQueue) PublishMatch(ctx context.Context, rec models.MatchRecord) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal match record: %w", err)
	}
	if err := q.rdb.RPush(ctx, q.name, data).Err(); err != nil {
		return fmt.Errorf("failed to push match record to %s: %w", q.name, err)
	}
	return nil
}

// Pop blocks up to timeout for the next record. It returns ok=false when the wait
// times out without a record.
func (q *MatchQueue) Pop(ctx context.Context, timeout time.Duration) (rec models.MatchRecord, ok bool, err error) {
	res, err := q.rdb.BLPop(ctx, timeout, q.name).Result()
	if errors.Is(err, redis.Nil) {
		return rec, false, nil
	}
	if err != nil {
		return rec, false, fmt.Errorf("failed to pop from %s: %w", q.name, err)
	}
	// res[0] is the list name, res[1] the payload.
	if len(res) < 2 {
		return rec, false, nil
	}
	if err := json.Unmarshal([]byte(res[1]), &rec); err != nil {
		return rec, false, fmt.Errorf("invalid match record: %w", err)
	}
	return rec, true, nil
}

// Len returns the number of records waiting.
func (q *MatchQueue) Len(ctx context.Context) (int64, error) {
	return q.rdb.LLen(ctx, q.name).Result()
}

// Events reads the server-wide bonus windows.
type Events struct {
	rdb *redis.Client
}

func NewEvents(rdb *redis.Client) *Events {
	return &Events{rdb: rdb}
}

// IsGoldenTime reports whether a golden time window is open. Redis failures read as closed.
func (e *Events) IsGoldenTime(ctx context.Context) bool {
	return e.isOpen(ctx, GoldenTimeKey)
}

// IsClubTime reports whether a club time window is open.
func (e *Events) IsClubTime(ctx context.Context) bool {
	return e.isOpen(ctx, ClubTimeKey)
}

// Open opens the window key for ttl.
func (e *Events) Open(ctx context.Context, key string, ttl time.Duration) error {
	if err := e.rdb.Set(ctx, key, 1, ttl).Err(); err != nil {
		return fmt.Errorf("failed to open %s: %w", key, err)
	}
	return nil
}

// Close closes the window key.
func (e *Events) Close(ctx context.Context, key string) error {
	return e.rdb.Del(ctx, key).Err()
}

func (e *Events) isOpen(ctx context.Context, key string) bool {
	n, err := e.rdb.Exists(ctx, key).Result()
	return err == nil && n > 0
}
