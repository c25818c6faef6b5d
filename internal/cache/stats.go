package cache

import (
	"sync"
	"sync/atomic"
	"time"
)

// Statistics tracks cache performance counters. Counters are atomic;
// the per-source refresh map has its own lock.
type Statistics struct {
	hits      int64
	misses    int64
	sets      int64
	evictions int64

	mu          sync.RWMutex
	currentSize int64
	lastRefresh map[string]time.Time
}

func NewStatistics() *Statistics {
	return &Statistics{
		lastRefresh: make(map[string]time.Time),
	}
}

func (s *Statistics) Hit()      { atomic.AddInt64(&s.hits, 1) }
func (s *Statistics) Miss()     { atomic.AddInt64(&s.misses, 1) }
func (s *Statistics) Set()      { atomic.AddInt64(&s.sets, 1) }
func (s *Statistics) Eviction() { atomic.AddInt64(&s.evictions, 1) }

func (s *Statistics) UpdateSize(size int64) {
	s.mu.Lock()
	s.currentSize = size
	s.mu.Unlock()
}

func (s *Statistics) MarkRefreshed(source string) {
	s.mu.Lock()
	s.lastRefresh[source] = time.Now()
	s.mu.Unlock()
}

// Snapshot is a point-in-time copy of the counters, safe to serialize.
type Snapshot struct {
	Hits        int64                `json:"hits"`
	Misses      int64                `json:"misses"`
	Sets        int64                `json:"sets"`
	Evictions   int64                `json:"evictions"`
	Entries     int64                `json:"entries"`
	LastRefresh map[string]time.Time `json:"last_refresh"`
}

func (s *Statistics) Snapshot() Snapshot {
	snap := Snapshot{
		Hits:      atomic.LoadInt64(&s.hits),
		Misses:    atomic.LoadInt64(&s.misses),
		Sets:      atomic.LoadInt64(&s.sets),
		Evictions: atomic.LoadInt64(&s.evictions),
	}

	s.mu.RLock()
	snap.Entries = s.currentSize
	snap.LastRefresh = make(map[string]time.Time, len(s.lastRefresh))
	for k, v := range s.lastRefresh {
		snap.LastRefresh[k] = v
	}
	s.mu.RUnlock()

	return snap
}
