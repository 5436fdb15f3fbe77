package ai

import (
	"fmt"
	"math"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/conorfennell/timeline/internal/domain"
)

// DefaultMemoryCapacity bounds the number of buckets an opponent remembers.
const DefaultMemoryCapacity = 4096

// UnknownDecade is the bucket decade for cards with a malformed date.
const UnknownDecade = math.MinInt32

// Key is the bucket a card's outcome is remembered under.
type Key struct {
	Category   string
	Decade     int
	Difficulty int
}

// KeyFor returns the memory bucket of card.
func KeyFor(card domain.Card) Key {
	decade, ok := card.Decade()
	if !ok {
		decade = UnknownDecade
	}
	return Key{Category: card.Category, Decade: decade, Difficulty: card.Difficulty}
}

func (k Key) String() string {
	if k.Decade == UnknownDecade {
		return fmt.Sprintf("%s_NaN_%d", k.Category, k.Difficulty)
	}
	return fmt.Sprintf("%s_%d_%d", k.Category, k.Decade, k.Difficulty)
}

// Entry is what an opponent has learned about one bucket.
type Entry struct {
	Attempts  int
	Successes int
	Accuracy  float64 // [0.1, 1] once recorded
}

// Record pairs a bucket with its entry for persistence.
type Record struct {
	Key   Key
	Entry Entry
}

// Memory is an opponent's learned accuracy table. When full, the bucket
// used least recently is forgotten. Memory is not safe for concurrent use.
type Memory struct {
	cache *lru.Cache[Key, Entry]
}

// NewMemory returns an empty table holding at most capacity buckets.
// A capacity below 1 selects DefaultMemoryCapacity.
func NewMemory(capacity int) (*Memory, error) {
	if capacity < 1 {
		capacity = DefaultMemoryCapacity
	}
	cache, err := lru.New[Key, Entry](capacity)
	if err != nil {
		return nil, fmt.Errorf("failed to create memory: %w", err)
	}
	return &Memory{cache: cache}, nil
}

// Lookup returns the entry for key and marks it recently used.
func (m *Memory) Lookup(key Key) (Entry, bool) {
	return m.cache.Get(key)
}

// Observe folds one outcome into the bucket and returns the updated entry.
// Accuracy is the observed success ratio nudged up by learningRate*0.1 on
// success, or down by learningRate*0.05 on failure, within [0.1, 1].
func (m *Memory) Observe(key Key, wasCorrect bool, learningRate float64) Entry {
	e, _ := m.cache.Get(key)
	e.Attempts++
	if wasCorrect {
		e.Successes++
	}
	e.Accuracy = float64(e.Successes) / float64(e.Attempts)
	if wasCorrect {
		e.Accuracy = math.Min(1, e.Accuracy+learningRate*0.1)
	} else {
		e.Accuracy = math.Max(0.1, e.Accuracy-learningRate*0.05)
	}
	m.cache.Add(key, e)
	return e
}

// Len returns the number of remembered buckets.
func (m *Memory) Len() int {
	return m.cache.Len()
}

// Snapshot returns every bucket from least to most recently used.
func (m *Memory) Snapshot() []Record {
	keys := m.cache.Keys()
	out := make([]Record, 0, len(keys))
	for _, k := range keys {
		if e, ok := m.cache.Peek(k); ok {
			out = append(out, Record{Key: k, Entry: e})
		}
	}
	return out
}

// Restore loads records in order, so the last record ends up most recent.
// Existing buckets with the same key are replaced.
func (m *Memory) Restore(records []Record) {
	for _, r := range records {
		m.cache.Add(r.Key, r.Entry)
	}
}
