package session

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/accounts-service/pkg/token"
	"github.com/redis/go-redis/v9"
)

// ErrSessionNotFound indicates the token resolves to no live session
var ErrSessionNotFound = errors.New("session not found")

const keyPrefix = "session:"

// Store persists session tokens and their owning user
type Store interface {
	Save(ctx context.Context, token string, userID uint, ttl time.Duration) error
	Lookup(ctx context.Context, token string) (uint, error)
	Delete(ctx context.Context, token string) error
}

// Manager issues, resolves and destroys web sessions
type Manager struct {
	store Store
	ttl   time.Duration
}

// NewManager creates a session Manager with the given backing store and TTL
func NewManager(store Store, ttl time.Duration) *Manager {
	return &Manager{store: store, ttl: ttl}
}

// Create opens a new session for the user and returns its opaque token
func (m *Manager) Create(ctx context.Context, userID uint) (string, error) {
	tok, err := token.NewSessionToken()
	if err != nil {
		return "", err
	}
	if err := m.store.Save(ctx, tok, userID, m.ttl); err != nil {
		return "", err
	}
	return tok, nil
}

// Resolve returns the user ID owning the session token
func (m *Manager) Resolve(ctx context.Context, token string) (uint, error) {
	return m.store.Lookup(ctx, token)
}

// Destroy removes the session
func (m *Manager) Destroy(ctx context.Context, token string) error {
	return m.store.Delete(ctx, token)
}

// Ensure both stores satisfy the Store interface at compile time
var (
	_ Store = (*RedisStore)(nil)
	_ Store = (*MemoryStore)(nil)
)

// RedisStore keeps sessions in Redis with a per-key TTL
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore creates a RedisStore
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

// Save stores the session with the given TTL
func (s *RedisStore) Save(ctx context.Context, token string, userID uint, ttl time.Duration) error {
	return s.client.Set(ctx, keyPrefix+token, uint64(userID), ttl).Err()
}

// Lookup resolves the session token to a user ID
func (s *RedisStore) Lookup(ctx context.Context, token string) (uint, error) {
	val, err := s.client.Get(ctx, keyPrefix+token).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, ErrSessionNotFound
		}
		return 0, err
	}
	userID, err := strconv.ParseUint(val, 10, 64)
	if err != nil {
		return 0, ErrSessionNotFound
	}
	return uint(userID), nil
}

// Delete removes the session
func (s *RedisStore) Delete(ctx context.Context, token string) error {
	return s.client.Del(ctx, keyPrefix+token).Err()
}

type memorySession struct {
	userID    uint
	expiresAt time.Time
}

// MemoryStore keeps sessions in process memory. It backs deployments without
// Redis; expired entries are skipped on lookup and reaped by the session
// worker.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]memorySession
}

// NewMemoryStore creates an empty MemoryStore
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]memorySession)}
}

// Save stores the session with the given TTL
func (s *MemoryStore) Save(ctx context.Context, token string, userID uint, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[token] = memorySession{userID: userID, expiresAt: time.Now().Add(ttl)}
	return nil
}

// Lookup resolves the session token to a user ID
func (s *MemoryStore) Lookup(ctx context.Context, token string) (uint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[token]
	if !ok || time.Now().After(sess.expiresAt) {
		return 0, ErrSessionNotFound
	}
	return sess.userID, nil
}

// Delete removes the session
func (s *MemoryStore) Delete(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, token)
	return nil
}

// Purge removes expired sessions and returns how many were dropped
func (s *MemoryStore) Purge(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for token, sess := range s.sessions {
		if now.After(sess.expiresAt) {
			delete(s.sessions, token)
			removed++
		}
	}
	return removed
}
