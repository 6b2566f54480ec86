// Package caching wraps the in-memory store that holds per-session UI state.
package caching

import (
	"errors"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
)

type Cache struct {
	memoryCache *cache.Cache
	ttl         time.Duration
}

// NewCache returns a store whose entries expire ttl after their last use.
func NewCache(ttl time.Duration) *Cache {
	return &Cache{ttl: ttl}
}

func (s *Cache) Init() error {
	if s.ttl <= 0 {
		return errors.New("cache ttl must be positive")
	}
	cleanup := s.ttl
	if cleanup > 10*time.Minute {
		cleanup = 10 * time.Minute
	}
	s.memoryCache = cache.New(s.ttl, cleanup)
	return nil
}

// Touch returns the value under key and renews its expiry.
func (s *Cache) Touch(key string) (any, bool) {
	v, ok := s.memoryCache.Get(key)
	if ok {
		s.memoryCache.Set(key, v, cache.DefaultExpiration)
	}
	return v, ok
}

// GetOrAdd returns the value under key, storing create() first when absent.
func (s *Cache) GetOrAdd(key string, create func() any) any {
	if v, ok := s.Touch(key); ok {
		return v
	}
	v := create()
	if err := s.memoryCache.Add(key, v, cache.DefaultExpiration); err != nil {
		// lost the race to a concurrent Add
		if existing, ok := s.Touch(key); ok {
			return existing
		}
		s.memoryCache.Set(key, v, cache.DefaultExpiration)
	}
	return v
}

// DeletePrefix removes every entry whose key starts with prefix.
func (s *Cache) DeletePrefix(prefix string) int {
	n := 0
	for k := range s.memoryCache.Items() {
		if strings.HasPrefix(k, prefix) {
			s.memoryCache.Delete(k)
			n++
		}
	}
	return n
}

func (s *Cache) Len() int {
	return s.memoryCache.ItemCount()
}

func (s *Cache) Flush() error {
	if s.memoryCache != nil {
		s.memoryCache.Flush()
	}
	return nil
}
