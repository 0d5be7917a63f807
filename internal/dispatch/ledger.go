// internal/dispatch/ledger.go
package dispatch

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"smarttender-engine/internal/common/database"
	"smarttender-engine/internal/models"

	"github.com/redis/go-redis/v9"
)

// Ledger records dispatch outcomes per candidate within one session.
// Consulted before every send, it is what turns the original
// fire-again-freely behavior into at-most-once per candidate.
type Ledger interface {
	Get(ctx context.Context, sessionID, candidateID string) (*models.DispatchRecord, error)
	Put(ctx context.Context, sessionID string, record models.DispatchRecord) error
	Clear(ctx context.Context, sessionID string) error
}

func ledgerKey(sessionID string) string {
	return fmt.Sprintf("dispatch:ledger:%s", sessionID)
}

// RedisLedger keeps records in one hash per session, field = candidate
// id, with a TTL so abandoned sessions expire on their own.
type RedisLedger struct {
	client *database.RedisClient
	ttl    time.Duration
}

func NewRedisLedger(client *database.RedisClient, ttl time.Duration) *RedisLedger {
	return &RedisLedger{client: client, ttl: ttl}
}

func (l *RedisLedger) Get(ctx context.Context, sessionID, candidateID string) (*models.DispatchRecord, error) {
	val, err := l.client.GetClient().HGet(ctx, ledgerKey(sessionID), candidateID).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var record models.DispatchRecord
	if err := json.Unmarshal([]byte(val), &record); err != nil {
		return nil, err
	}
	return &record, nil
}

func (l *RedisLedger) Put(ctx context.Context, sessionID string, record models.DispatchRecord) error {
	data, err := json.Marshal(record)
	if err != nil {
		return err
	}

	key := ledgerKey(sessionID)
	if err := l.client.GetClient().HSet(ctx, key, record.CandidateID, data).Err(); err != nil {
		return err
	}
	return l.client.GetClient().Expire(ctx, key, l.ttl).Err()
}

func (l *RedisLedger) Clear(ctx context.Context, sessionID string) error {
	return l.client.Del(ctx, ledgerKey(sessionID))
}

// MemoryLedger is the in-process fallback used when no Redis is
// configured (and in tests that don't care about the store).
type MemoryLedger struct {
	mu      sync.Mutex
	records map[string]map[string]models.DispatchRecord
}

func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{records: make(map[string]map[string]models.DispatchRecord)}
}

func (l *MemoryLedger) Get(_ context.Context, sessionID, candidateID string) (*models.DispatchRecord, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	session, ok := l.records[sessionID]
	if !ok {
		return nil, nil
	}
	record, ok := session[candidateID]
	if !ok {
		return nil, nil
	}
	return &record, nil
}

func (l *MemoryLedger) Put(_ context.Context, sessionID string, record models.DispatchRecord) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	session, ok := l.records[sessionID]
	if !ok {
		session = make(map[string]models.DispatchRecord)
		l.records[sessionID] = session
	}
	session[record.CandidateID] = record
	return nil
}

func (l *MemoryLedger) Clear(_ context.Context, sessionID string) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.records, sessionID)
	return nil
}
