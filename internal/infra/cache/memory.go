package cache

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"sync"
	"time"

	domai "github.com/bryanwahyu/medreport-ai/internal/domain/ai"
)

const (
	DefaultMaxEntries = 200
	DefaultTTL        = 12 * time.Hour
)

type entry struct {
	narrative  string
	insertedAt time.Time
}

// Memory is the process-local bounded TTL cache for narrative results.
// The mutex guards the map only; concurrent identical misses may both call
// the generator, which is accepted duplicate work.
type Memory struct {
	mu         sync.Mutex
	entries    map[string]entry
	maxEntries int
	ttl        time.Duration
	hits       uint64
	misses     uint64

	// now is swappable for tests
	now func() time.Time
}

func NewMemory(maxEntries int, ttl time.Duration) *Memory {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Memory{
		entries:    make(map[string]entry),
		maxEntries: maxEntries,
		ttl:        ttl,
		now:        time.Now,
	}
}

// key hashes a canonical JSON encoding of the lookup components. The full
// historical text is excluded to keep keys bounded; presence and date are the
// discriminators.
func key(kind string, input map[string]any, history *domai.HistorySnapshot) (string, bool) {
	keyData := map[string]any{
		"type":        kind,
		"data":        input,
		"has_history": history != nil,
	}
	if history != nil {
		keyData["history_date"] = history.ReportDate
	}
	raw, err := json.Marshal(keyData)
	if err != nil {
		return "", false
	}
	sum := sha1.Sum(raw)
	return hex.EncodeToString(sum[:]), true
}

func (m *Memory) Get(kind string, input map[string]any, history *domai.HistorySnapshot) (string, bool) {
	k, ok := key(kind, input, history)
	if !ok {
		return "", false
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	e, ok := m.entries[k]
	if !ok {
		m.misses++
		return "", false
	}
	if m.now().Sub(e.insertedAt) >= m.ttl {
		delete(m.entries, k)
		m.misses++
		return "", false
	}
	m.hits++
	return e.narrative, true
}

func (m *Memory) Put(kind string, input map[string]any, history *domai.HistorySnapshot, narrative string) {
	k, ok := key(kind, input, history)
	if !ok {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.entries[k]; !exists && len(m.entries) >= m.maxEntries {
		m.evictOldestLocked()
	}
	m.entries[k] = entry{narrative: narrative, insertedAt: m.now()}
}

// evictOldestLocked removes the single entry with the oldest insertion time.
func (m *Memory) evictOldestLocked() {
	var oldestKey string
	var oldestAt time.Time
	first := true
	for k, e := range m.entries {
		if first || e.insertedAt.Before(oldestAt) {
			oldestKey = k
			oldestAt = e.insertedAt
			first = false
		}
	}
	if oldestKey != "" {
		delete(m.entries, oldestKey)
	}
}

// PurgeExpired removes all entries past the TTL and reports how many went.
func (m *Memory) PurgeExpired() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	removed := 0
	for k, e := range m.entries {
		if now.Sub(e.insertedAt) >= m.ttl {
			delete(m.entries, k)
			removed++
		}
	}
	return removed
}

func (m *Memory) Stats() domai.CacheStats {
	m.mu.Lock()
	defer m.mu.Unlock()
	return domai.CacheStats{
		Entries:    len(m.entries),
		MaxEntries: m.maxEntries,
		TTL:        m.ttl,
		Hits:       m.hits,
		Misses:     m.misses,
	}
}
