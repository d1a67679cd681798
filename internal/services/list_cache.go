package services

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/complaintdesk/portal/internal/config"
	"github.com/complaintdesk/portal/internal/models"
	"github.com/complaintdesk/portal/pkg/logger"
	"github.com/redis/go-redis/v9"
)

const defaultListTTL = 15 * time.Second

// ListCache holds the last complaint list fetched from the persistence API.
// A zero TTL disables caching.
type ListCache interface {
	Get(ctx context.Context) ([]models.Complaint, bool)
	Set(ctx context.Context, list []models.Complaint)
	Invalidate(ctx context.Context)
	Backend() string
}

// NewListCache uses Redis when enabled and reachable, memory otherwise.
func NewListCache(cfg *config.Config) ListCache {
	ttl := cfg.Cache.ListTTL()
	if !cfg.Redis.Enabled {
		logger.Infof("[ListCache] In-memory cache (Redis disabled), ttl=%s", ttl)
		return NewMemoryListCache(ttl)
	}

	cache, err := NewRedisListCache(&cfg.Redis, ttl)
	if err != nil {
		logger.Warnf("[ListCache] Redis unavailable, falling back to memory: %v", err)
		return NewMemoryListCache(ttl)
	}
	logger.Infof("[ListCache] Redis cache at %s, ttl=%s", cfg.Redis.Addr, ttl)
	return cache
}

type MemoryListCache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	items   []models.Complaint
	expires time.Time
	now     func() time.Time
}

func NewMemoryListCache(ttl time.Duration) *MemoryListCache {
	return &MemoryListCache{ttl: ttl, now: time.Now}
}

func (m *MemoryListCache) Get(_ context.Context) ([]models.Complaint, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.items == nil || !m.now().Before(m.expires) {
		return nil, false
	}
	out := make([]models.Complaint, len(m.items))
	copy(out, m.items)
	return out, true
}

func (m *MemoryListCache) Set(_ context.Context, list []models.Complaint) {
	if m.ttl <= 0 {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items = make([]models.Complaint, len(list))
	copy(m.items, list)
	m.expires = m.now().Add(m.ttl)
}

func (m *MemoryListCache) Invalidate(_ context.Context) {
	m.mu.Lock()
	m.items = nil
	m.mu.Unlock()
}

func (m *MemoryListCache) Backend() string { return "memory" }

// RedisListCache shares the list between portal replicas.
type RedisListCache struct {
	client *redis.Client
	key    string
	ttl    time.Duration
}

func NewRedisListCache(cfg *config.RedisConfig, ttl time.Duration) (*RedisListCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:        cfg.Addr,
		Password:    cfg.Password,
		DB:          cfg.DB,
		DialTimeout: 2 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, err
	}

	return &RedisListCache{client: client, key: cfg.KeyPrefix + "complaints:list", ttl: ttl}, nil
}

func (r *RedisListCache) Get(ctx context.Context) ([]models.Complaint, bool) {
	data, err := r.client.Get(ctx, r.key).Bytes()
	if err != nil {
		if err != redis.Nil {
			logger.Warn().Err(err).Msg("[ListCache] redis get failed")
		}
		return nil, false
	}
	var list []models.Complaint
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, false
	}
	return list, true
}

func (r *RedisListCache) Set(ctx context.Context, list []models.Complaint) {
	if r.ttl <= 0 {
		return
	}
	data, err := json.Marshal(list)
	if err != nil {
		return
	}
	if err := r.client.Set(ctx, r.key, data, r.ttl).Err(); err != nil {
		logger.Warn().Err(err).Msg("[ListCache] redis set failed")
	}
}

func (r *RedisListCache) Invalidate(ctx context.Context) {
	if err := r.client.Del(ctx, r.key).Err(); err != nil {
		logger.Warn().Err(err).Msg("[ListCache] redis del failed")
	}
}

func (r *RedisListCache) Backend() string { return "redis" }

func (r *RedisListCache) Close() error {
	return r.client.Close()
}
