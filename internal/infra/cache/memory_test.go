package cache

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domai "github.com/bryanwahyu/medreport-ai/internal/domain/ai"
)

func testInput(card string) map[string]any {
	return map[string]any{"cardNo": card, "resultList": []any{"WBC 6.2"}}
}

func TestMemoryRoundtrip(t *testing.T) {
	m := NewMemory(10, time.Hour)

	_, ok := m.Get("routineLab", testInput("C1"), nil)
	assert.False(t, ok)

	m.Put("routineLab", testInput("C1"), nil, "all values within range")

	got, ok := m.Get("routineLab", testInput("C1"), nil)
	require.True(t, ok)
	assert.Equal(t, "all values within range", got)
}

func TestMemoryKeyDiscriminators(t *testing.T) {
	m := NewMemory(10, time.Hour)
	m.Put("routineLab", testInput("C1"), nil, "no history narrative")

	// same input with history present is a different entry
	hist := &domai.HistorySnapshot{ReportDate: "20250101", Content: "prior labs"}
	_, ok := m.Get("routineLab", testInput("C1"), hist)
	assert.False(t, ok)

	m.Put("routineLab", testInput("C1"), hist, "comparative narrative")

	// a different history date misses too
	_, ok = m.Get("routineLab", testInput("C1"), &domai.HistorySnapshot{ReportDate: "20250201", Content: "prior labs"})
	assert.False(t, ok)

	// the history text itself is not part of the key
	got, ok := m.Get("routineLab", testInput("C1"), &domai.HistorySnapshot{ReportDate: "20250101", Content: "different text"})
	require.True(t, ok)
	assert.Equal(t, "comparative narrative", got)
}

func TestMemoryTTLExpiry(t *testing.T) {
	m := NewMemory(10, time.Hour)
	current := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return current }

	m.Put("routineLab", testInput("C1"), nil, "fresh")

	current = current.Add(59 * time.Minute)
	_, ok := m.Get("routineLab", testInput("C1"), nil)
	assert.True(t, ok)

	current = current.Add(2 * time.Minute)
	_, ok = m.Get("routineLab", testInput("C1"), nil)
	assert.False(t, ok)

	stats := m.Stats()
	assert.Equal(t, 0, stats.Entries)
}

func TestMemoryEvictsOldestAtCapacity(t *testing.T) {
	m := NewMemory(3, time.Hour)
	current := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return current }

	for i := 0; i < 3; i++ {
		m.Put("routineLab", testInput(fmt.Sprintf("C%d", i)), nil, fmt.Sprintf("narrative %d", i))
		current = current.Add(time.Minute)
	}

	// refresh the first entry's value, insertion time moves forward
	m.Put("routineLab", testInput("C0"), nil, "narrative 0 updated")
	current = current.Add(time.Minute)

	// capacity reached: inserting a fourth key evicts the oldest (C1)
	m.Put("routineLab", testInput("C3"), nil, "narrative 3")

	_, ok := m.Get("routineLab", testInput("C1"), nil)
	assert.False(t, ok, "oldest entry should be evicted")

	for _, card := range []string{"C0", "C2", "C3"} {
		_, ok := m.Get("routineLab", testInput(card), nil)
		assert.True(t, ok, "entry %s should survive", card)
	}

	assert.Equal(t, 3, m.Stats().Entries)
}

func TestMemoryPurgeExpired(t *testing.T) {
	m := NewMemory(10, time.Hour)
	current := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return current }

	m.Put("routineLab", testInput("C1"), nil, "old")
	current = current.Add(90 * time.Minute)
	m.Put("routineLab", testInput("C2"), nil, "new")

	assert.Equal(t, 1, m.PurgeExpired())
	assert.Equal(t, 1, m.Stats().Entries)
}

func TestMemoryStatsCounters(t *testing.T) {
	m := NewMemory(10, time.Hour)

	m.Get("routineLab", testInput("C1"), nil)
	m.Put("routineLab", testInput("C1"), nil, "text")
	m.Get("routineLab", testInput("C1"), nil)
	m.Get("routineLab", testInput("C2"), nil)

	stats := m.Stats()
	assert.Equal(t, uint64(1), stats.Hits)
	assert.Equal(t, uint64(2), stats.Misses)
	assert.Equal(t, 10, stats.MaxEntries)
	assert.Equal(t, time.Hour, stats.TTL)
}
