package services

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/pkg/errors"

	"immofox-http-service/internal/infrastructure/config"
)

// ErrCacheMiss is returned by Get when the key does not exist
var ErrCacheMiss = errors.New("cache miss")

// InterfaceRedisService is the key value store used for token revocation and caching
type InterfaceRedisService interface {
	Set(key string, value interface{}, expiration time.Duration) error
	Get(key string, dest interface{}) error
	Delete(keys ...string) error
	RevokeToken(tokenID string, ttl time.Duration) error
	IsTokenRevoked(tokenID string) (bool, error)
	Ping() error
	Backend() string
}

const revokedTokenPrefix = "revoked_token:"

// RedisService stores values in Redis as JSON
type RedisService struct {
	Client *redis.Client
	Ctx    context.Context
}

// NewRedisService creates a Redis backed store
func NewRedisService(cfg *config.Config) *RedisService {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.GetRedisAddr(),
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	return &RedisService{
		Client: client,
		Ctx:    context.Background(),
	}
}

// 1 Set stores value as JSON with expiration
func (s *RedisService) Set(key string, value interface{}, expiration time.Duration) error {
	jsonValue, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return s.Client.Set(s.Ctx, key, jsonValue, expiration).Err()
}

// 2 Get decodes the JSON value of key into dest
func (s *RedisService) Get(key string, dest interface{}) error {
	val, err := s.Client.Get(s.Ctx, key).Bytes()
	if err == redis.Nil {
		return ErrCacheMiss
	}
	if err != nil {
		return err
	}
	return json.Unmarshal(val, dest)
}

// 3 Delete removes keys
func (s *RedisService) Delete(keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return s.Client.Del(s.Ctx, keys...).Err()
}

// 4 RevokeToken blocks a token id until ttl expires
func (s *RedisService) RevokeToken(tokenID string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	return s.Client.Set(s.Ctx, revokedTokenPrefix+tokenID, 1, ttl).Err()
}

// 5 IsTokenRevoked checks the revocation list
func (s *RedisService) IsTokenRevoked(tokenID string) (bool, error) {
	n, err := s.Client.Exists(s.Ctx, revokedTokenPrefix+tokenID).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// 6 Ping checks the connection
func (s *RedisService) Ping() error {
	ctx, cancel := context.WithTimeout(s.Ctx, 2*time.Second)
	defer cancel()
	return s.Client.Ping(ctx).Err()
}

func (s *RedisService) Backend() string { return "redis" }

type memoryEntry struct {
	value      []byte
	expiration time.Time
}

// MemoryStore is the in-process fallback used when Redis is disabled or unreachable
type MemoryStore struct {
	mu    sync.RWMutex
	items map[string]memoryEntry
	now   func() time.Time
}

// NewMemoryStore creates an empty store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{items: make(map[string]memoryEntry), now: time.Now}
}

func (m *MemoryStore) Set(key string, value interface{}, expiration time.Duration) error {
	b, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	entry := memoryEntry{value: b}
	if expiration > 0 {
		entry.expiration = m.now().Add(expiration)
	}
	m.items[key] = entry
	m.sweepLocked()
	return nil
}

func (m *MemoryStore) Get(key string, dest interface{}) error {
	m.mu.RLock()
	entry, ok := m.items[key]
	m.mu.RUnlock()
	if !ok || m.expired(entry) {
		return ErrCacheMiss
	}
	return json.Unmarshal(entry.value, dest)
}

func (m *MemoryStore) Delete(keys ...string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.items, k)
	}
	return nil
}

func (m *MemoryStore) RevokeToken(tokenID string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	return m.Set(revokedTokenPrefix+tokenID, 1, ttl)
}

func (m *MemoryStore) IsTokenRevoked(tokenID string) (bool, error) {
	var v int
	err := m.Get(revokedTokenPrefix+tokenID, &v)
	if err == ErrCacheMiss {
		return false, nil
	}
	return err == nil, err
}

func (m *MemoryStore) Ping() error { return nil }

func (m *MemoryStore) Backend() string { return "memory" }

func (m *MemoryStore) expired(e memoryEntry) bool {
	return !e.expiration.IsZero() && m.now().After(e.expiration)
}

// sweepLocked drops expired entries once the map grows; caller holds mu.
func (m *MemoryStore) sweepLocked() {
	if len(m.items) < 1024 {
		return
	}
	for k, e := range m.items {
		if m.expired(e) {
			delete(m.items, k)
		}
	}
}
