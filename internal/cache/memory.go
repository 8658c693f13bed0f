package cache

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/Freeeeeet/mentorship_scheduler/internal/model"
)

type memoryEntry struct {
	slots     []model.ConcreteSlot
	expiresAt time.Time
}

// MemoryCache кэш проекций в памяти процесса, для одного инстанса и тестов
type MemoryCache struct {
	mu          sync.Mutex
	ttl         time.Duration
	now         func() time.Time
	generations map[int64]int64
	entries     map[string]memoryEntry
	lastSweep   time.Time
}

// NewMemoryCache создаёт кэш. ttl <= 0 - записи не истекают.
func NewMemoryCache(ttl time.Duration) *MemoryCache {
	return &MemoryCache{
		ttl:         ttl,
		now:         time.Now,
		generations: make(map[int64]int64),
		entries:     make(map[string]memoryEntry),
	}
}

func (c *MemoryCache) Generation(_ context.Context, mentorID int64) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.generations[mentorID], nil
}

func (c *MemoryCache) Get(_ context.Context, mentorID, generation int64, key string) ([]model.ConcreteSlot, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	k := entryKey(mentorID, generation, key)
	e, ok := c.entries[k]
	if !ok {
		return nil, false, nil
	}
	if !e.expiresAt.IsZero() && !c.now().Before(e.expiresAt) {
		delete(c.entries, k)
		return nil, false, nil
	}
	return append([]model.ConcreteSlot(nil), e.slots...), true, nil
}

func (c *MemoryCache) Set(_ context.Context, mentorID, generation int64, key string, slots []model.ConcreteSlot) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	// устаревшее поколение в памяти не храним
	if generation != c.generations[mentorID] {
		return nil
	}

	now := c.now()
	c.sweep(now)

	e := memoryEntry{slots: append([]model.ConcreteSlot(nil), slots...)}
	if c.ttl > 0 {
		e.expiresAt = now.Add(c.ttl)
	}
	c.entries[entryKey(mentorID, generation, key)] = e
	return nil
}

// sweep удаляет истёкшие записи, не чаще раза за ttl.
// Ключи с прошедшим часом больше не читаются, Get их не удалит.
func (c *MemoryCache) sweep(now time.Time) {
	if c.ttl <= 0 || now.Sub(c.lastSweep) < c.ttl {
		return
	}
	c.lastSweep = now

	for k, e := range c.entries {
		if !now.Before(e.expiresAt) {
			delete(c.entries, k)
		}
	}
}

func (c *MemoryCache) InvalidateMentor(_ context.Context, mentorID int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.generations[mentorID]++
	prefix := fmt.Sprintf("projection:%d:", mentorID)
	// в памяти устаревшие записи удаляем сразу
	for k := range c.entries {
		if strings.HasPrefix(k, prefix) {
			delete(c.entries, k)
		}
	}
	return nil
}
