package tracking

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// VisitLedger remembers the last calendar day a visitor was counted for a
// site, backing the at-most-once-per-day unique_visitor rule. Dates are ISO
// calendar dates (2006-01-02).
type VisitLedger interface {
	LastVisit(ctx context.Context, siteID, visitorID string) (string, error)
	SetLastVisit(ctx context.Context, siteID, visitorID, date string) error
}

// MemoryLedger is the in-process VisitLedger, used when redis is not
// configured. Entries are never evicted; acceptable because each value is a
// short date string and the process restarts daily in practice.
type MemoryLedger struct {
	mu     sync.Mutex
	visits map[string]string
}

func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{visits: make(map[string]string)}
}

func (l *MemoryLedger) LastVisit(ctx context.Context, siteID, visitorID string) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.visits[siteID+":"+visitorID], nil
}

func (l *MemoryLedger) SetLastVisit(ctx context.Context, siteID, visitorID, date string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.visits[siteID+":"+visitorID] = date
	return nil
}

// RedisLedger persists last-visit dates in redis so uniqueness survives
// restarts and is shared across instances.
type RedisLedger struct {
	rdb *redis.Client
}

func NewRedisLedger(rdb *redis.Client) *RedisLedger {
	return &RedisLedger{rdb: rdb}
}

func ledgerKey(siteID, visitorID string) string {
	return "visits:" + siteID + ":" + visitorID
}

func (l *RedisLedger) LastVisit(ctx context.Context, siteID, visitorID string) (string, error) {
	date, err := l.rdb.Get(ctx, ledgerKey(siteID, visitorID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	return date, err
}

func (l *RedisLedger) SetLastVisit(ctx context.Context, siteID, visitorID, date string) error {
	// Keys only need to live until the date rolls over; 48h covers timezone
	// skew between visitors.
	return l.rdb.Set(ctx, ledgerKey(siteID, visitorID), date, 48*time.Hour).Err()
}
