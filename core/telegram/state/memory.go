package state

import (
	"context"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"github.com/m3rciful/moodprompt/core/logger"
)

// MemoryOptions configures the in-memory store.
type MemoryOptions struct {
	// TTL bounds how long an untouched session lives. Zero keeps sessions forever.
	TTL time.Duration
	// CleanupInterval is how often expired sessions are purged. Zero disables the janitor.
	CleanupInterval time.Duration
	// Now overrides the clock (tests).
	Now func() time.Time
}

type memoryStore struct {
	mu    sync.Mutex
	items *cache.Cache
	ttl   time.Duration
	now   func() time.Time
}

// NewMemoryStore returns a Store backed by an expiring in-process cache.
func NewMemoryStore(opts MemoryOptions) Store {
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = cache.NoExpiration
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	s := &memoryStore{
		items: cache.New(ttl, opts.CleanupInterval),
		ttl:   ttl,
		now:   now,
	}
	s.items.OnEvicted(func(key string, v interface{}) {
		sess, ok := v.(Session)
		if !ok || !s.expired(sess) {
			return
		}
		userID, _ := strconv.ParseInt(key, 10, 64)
		logger.LogEvent(context.Background(), logger.Session, slog.LevelInfo, "session.expired",
			slog.Int64("user_id", userID),
			slog.String("session_id", sess.ID),
			slog.String("step", string(sess.Step)),
			slog.Duration("age", s.now().Sub(sess.StartedAt)),
		)
	})
	return s
}

// expired reports whether sess outlived the TTL. go-cache runs the eviction
// hook for explicit deletes too, so the hook filters on age.
func (s *memoryStore) expired(sess Session) bool {
	return s.ttl > 0 && s.now().Sub(sess.UpdatedAt) >= s.ttl
}

func key(userID int64) string {
	return strconv.FormatInt(userID, 10)
}

func (s *memoryStore) Get(userID int64) (Session, bool) {
	v, ok := s.items.Get(key(userID))
	if !ok {
		return Session{}, false
	}
	sess, ok := v.(Session)
	return sess, ok
}

func (s *memoryStore) Start(userID int64) Session {
	now := s.now()
	sess := Session{
		ID:        uuid.NewString(),
		Step:      StepChoosingMood,
		StartedAt: now,
		UpdatedAt: now,
	}
	s.mu.Lock()
	s.items.Set(key(userID), sess, s.ttl)
	s.mu.Unlock()
	return sess
}

func (s *memoryStore) Update(userID int64, fn func(*Session)) (Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := key(userID)
	v, ok := s.items.Get(k)
	if !ok {
		return Session{}, false
	}
	sess, ok := v.(Session)
	if !ok {
		return Session{}, false
	}
	fn(&sess)
	sess.UpdatedAt = s.now()
	s.items.Set(k, sess, s.ttl)
	return sess, true
}

func (s *memoryStore) Finish(userID int64, sessionID string) (Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	k := key(userID)
	v, ok := s.items.Get(k)
	if !ok {
		return Session{}, false
	}
	sess, ok := v.(Session)
	if !ok || sess.ID != sessionID || sess.Step != StepWaitingForDescription {
		return Session{}, false
	}
	s.items.Delete(k)
	return sess, true
}

func (s *memoryStore) Clear(userID int64) {
	s.mu.Lock()
	s.items.Delete(key(userID))
	s.mu.Unlock()
}

func (s *memoryStore) Len() int {
	return s.items.ItemCount()
}
