package server

import (
	"time"

	"github.com/patrickmn/go-cache"

	"lesson_prep_assistant/generator"
)

// sessionStore 保存页面会话；过期自动清理，不做持久化。
type sessionStore struct {
	c *cache.Cache
}

func newStore(ttl time.Duration) *sessionStore {
	cleanup := ttl / 2
	if cleanup < time.Minute {
		cleanup = time.Minute
	}
	return &sessionStore{c: cache.New(ttl, cleanup)}
}

func (s *sessionStore) set(id string, sess *generator.Session) {
	s.c.Set(id, sess, cache.DefaultExpiration)
}

// get refreshes the TTL on every hit.
func (s *sessionStore) get(id string) (*generator.Session, bool) {
	v, ok := s.c.Get(id)
	if !ok {
		return nil, false
	}
	sess, ok := v.(*generator.Session)
	if !ok {
		return nil, false
	}
	s.c.Set(id, sess, cache.DefaultExpiration)
	return sess, true
}

func (s *sessionStore) count() int {
	return s.c.ItemCount()
}
