package pagecache

import (
	"time"

	cmap "github.com/orcaman/concurrent-map/v2"
)

type memoryEntry struct {
	value   []byte
	expires time.Time
}

// MemoryStore keeps pages in process memory. Expired entries are dropped
// lazily on the next Get.
type MemoryStore struct {
	ttl   time.Duration
	pages cmap.ConcurrentMap[string, memoryEntry]
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		ttl:   ttl,
		pages: cmap.New[memoryEntry](),
	}
}

func (s *MemoryStore) Get(key string) ([]byte, bool) {
	entry, ok := s.pages.Get(key)
	if !ok {
		return nil, false
	}
	if time.Now().After(entry.expires) {
		s.pages.Remove(key)
		return nil, false
	}
	return entry.value, true
}

func (s *MemoryStore) Set(key string, value []byte) {
	s.pages.Set(key, memoryEntry{value: value, expires: time.Now().Add(s.ttl)})
}

func (s *MemoryStore) Clear() {
	s.pages.Clear()
}
