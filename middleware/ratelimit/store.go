package ratelimit

import (
	"sync"
	"time"
)

type Store interface {
	// Increment bumps the counter for key inside the current window and
	// returns the new count and the window's reset time.
	Increment(key string, period time.Duration) (count int, resetTime time.Time)
	Reset(key string)
}

type MemoryStore struct {
	mu      sync.Mutex
	windows map[string]*window
}

type window struct {
	count     int
	resetTime time.Time
}

func NewMemoryStore() *MemoryStore {
	store := &MemoryStore{
		windows: make(map[string]*window),
	}

	go store.sweep()

	return store
}

func (s *MemoryStore) Increment(key string, period time.Duration) (int, time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	if w, ok := s.windows[key]; ok && now.Before(w.resetTime) {
		w.count++
		return w.count, w.resetTime
	}

	w := &window{count: 1, resetTime: now.Add(period)}
	s.windows[key] = w
	return w.count, w.resetTime
}

func (s *MemoryStore) Reset(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.windows, key)
}

func (s *MemoryStore) sweep() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		s.mu.Lock()
		now := time.Now()
		for key, w := range s.windows {
			if now.After(w.resetTime) {
				delete(s.windows, key)
			}
		}
		s.mu.Unlock()
	}
}
