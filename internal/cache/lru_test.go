package cache

import (
	"bytes"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"charity/internal/log"
)

// fakeClock lets expiry tests run without sleeping.
type fakeClock struct{ t time.Time }

func (f *fakeClock) now() time.Time          { return f.t }
func (f *fakeClock) advance(d time.Duration) { f.t = f.t.Add(d) }

func newClockedCache[T any](maxSize int, ttl time.Duration) (*LRUCache[T], *fakeClock) {
	clock := &fakeClock{t: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	c := NewLRUCache[T](maxSize, ttl)
	c.now = clock.now
	return c, clock
}

func TestLRUCacheEviction(t *testing.T) {
	c := NewLRUCache[string](3, time.Hour)

	c.Set("key1", "value1")
	c.Set("key2", "value2")
	c.Set("key3", "value3")
	c.Set("key4", "value4") // evicts key1

	if _, found := c.Get("key1"); found {
		t.Error("key1 should have been evicted")
	}
	for _, key := range []string{"key2", "key3", "key4"} {
		if _, found := c.Get(key); !found {
			t.Errorf("%s should still exist", key)
		}
	}
}

func TestLRUCacheRecencyProtectsEntries(t *testing.T) {
	c := NewLRUCache[string](2, time.Hour)
	c.Set("a", "1")
	c.Set("b", "2")
	c.Get("a")
	c.Set("c", "3") // evicts b, a was used more recently

	if _, found := c.Get("b"); found {
		t.Error("b should have been evicted")
	}
	if v, found := c.Get("a"); !found || v != "1" {
		t.Errorf("a = %q, %v", v, found)
	}
}

func TestLRUCacheTTLExpiration(t *testing.T) {
	c, clock := newClockedCache[string](100, 50*time.Millisecond)

	c.Set("key1", "value1")
	if _, found := c.Get("key1"); !found {
		t.Error("key1 should exist immediately")
	}

	clock.advance(60 * time.Millisecond)
	if _, found := c.Get("key1"); found {
		t.Error("key1 should have expired")
	}
	if c.Size() != 0 {
		t.Errorf("expired entry should be removed on read, size %d", c.Size())
	}
}

func TestLRUCacheCleanExpired(t *testing.T) {
	c, clock := newClockedCache[string](100, 50*time.Millisecond)

	c.Set("key1", "value1")
	c.Set("key2", "value2")
	clock.advance(30 * time.Millisecond)
	c.Set("key3", "value3")
	clock.advance(30 * time.Millisecond)

	if removed := c.CleanExpired(); removed != 2 {
		t.Errorf("Expected 2 items cleaned, got %d", removed)
	}
	if _, found := c.Get("key3"); !found {
		t.Error("key3 has not expired yet")
	}
}

func TestLRUCacheStatsAndPurge(t *testing.T) {
	c := NewLRUCache[[]byte](4, time.Hour)
	c.Set(Key(1, "amount", ""), []byte("<div>grid</div>"))

	c.Get(Key(1, "amount", ""))
	c.Get(Key(2, "amount", ""))

	st := c.Stats()
	if st.Hits != 1 || st.Misses != 1 || st.Size != 1 {
		t.Fatalf("stats = %+v", st)
	}

	c.Purge()
	if c.Size() != 0 {
		t.Errorf("size after purge = %d", c.Size())
	}
}

func TestKey(t *testing.T) {
	if got := Key(7, "recent", "ali"); got != "7|recent|ali" {
		t.Errorf("Key() = %q", got)
	}
	if Key(1, "", "") == Key(2, "", "") {
		t.Error("keys from different generations must differ")
	}
}

func TestManagerCleanNow(t *testing.T) {
	m := NewManager(log.New(log.Config{Level: slog.LevelError, Output: &bytes.Buffer{}}))
	defer m.Stop()

	c, clock := newClockedCache[string](10, time.Second)
	m.Register(c)
	for i := 0; i < 3; i++ {
		c.Set(fmt.Sprintf("k%d", i), "v")
	}
	clock.advance(2 * time.Second)

	if removed := m.CleanNow(); removed != 3 {
		t.Errorf("CleanNow() = %d, want 3", removed)
	}
}

func TestManagerStopWithoutStart(t *testing.T) {
	m := NewManager(nil)
	m.Stop()
	m.Stop()
}

func TestManagerStartStop(t *testing.T) {
	m := NewManager(log.New(log.Config{Level: slog.LevelError, Output: &bytes.Buffer{}}))
	m.StartCleanup(time.Millisecond)
	m.StartCleanup(time.Millisecond)
	m.Stop()
}

func BenchmarkLRUCache(b *testing.B) {
	c := NewLRUCache[[]byte](1000, time.Hour)
	partial := []byte("<section class=\"grid\"></section>")

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		key := Key(1, "amount", "")
		if i%10 == 0 {
			c.Set(key, partial)
		} else {
			c.Get(key)
		}
	}
}
