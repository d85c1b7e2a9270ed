package kvstore

import (
	"context"
	"errors"
	"sort"
	"sync"
)

type memoryScope struct {
	mu          sync.RWMutex
	items       map[string]string
	unavailable bool

	watchMu  sync.Mutex
	nextId   uint64
	watchers map[uint64]memoryWatcher
}

type memoryWatcher struct {
	owner *MemoryStorage
	fn    func(Change)
}

// MemoryStorage keeps items in process memory. Handles obtained through Sibling share
// the same items, and each one observes the writes of the others through Watch.
type MemoryStorage struct {
	scope *memoryScope
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{scope: &memoryScope{
		items:    map[string]string{},
		watchers: map[uint64]memoryWatcher{},
	}}
}

// Sibling returns a new handle on the same items.
func (m *MemoryStorage) Sibling() *MemoryStorage {
	return &MemoryStorage{scope: m.scope}
}

// SetUnavailable makes every subsequent call fail with ErrUnavailable until reset.
func (m *MemoryStorage) SetUnavailable(unavailable bool) {
	m.scope.mu.Lock()
	defer m.scope.mu.Unlock()
	m.scope.unavailable = unavailable
}

var errMemoryDisabled = errors.New("memory storage disabled")

func (m *MemoryStorage) GetItem(ctx context.Context, key string) (string, bool, error) {
	m.scope.mu.RLock()
	defer m.scope.mu.RUnlock()
	if m.scope.unavailable {
		return "", false, unavailable("get "+key, errMemoryDisabled)
	}
	value, found := m.scope.items[key]
	return value, found, nil
}

func (m *MemoryStorage) SetItem(ctx context.Context, key string, value string) error {
	m.scope.mu.Lock()
	if m.scope.unavailable {
		m.scope.mu.Unlock()
		return unavailable("set "+key, errMemoryDisabled)
	}
	m.scope.items[key] = value
	m.scope.mu.Unlock()

	m.notify(key)
	return nil
}

func (m *MemoryStorage) RemoveItem(ctx context.Context, key string) error {
	m.scope.mu.Lock()
	if m.scope.unavailable {
		m.scope.mu.Unlock()
		return unavailable("remove "+key, errMemoryDisabled)
	}
	_, existed := m.scope.items[key]
	delete(m.scope.items, key)
	m.scope.mu.Unlock()

	if existed {
		m.notify(key)
	}
	return nil
}

func (m *MemoryStorage) Keys(ctx context.Context) ([]string, error) {
	m.scope.mu.RLock()
	defer m.scope.mu.RUnlock()
	if m.scope.unavailable {
		return nil, unavailable("keys", errMemoryDisabled)
	}
	keys := make([]string, 0, len(m.scope.items))
	for k := range m.scope.items {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys, nil
}

func (m *MemoryStorage) Watch(ctx context.Context, fn func(Change)) error {
	m.scope.watchMu.Lock()
	m.scope.nextId++
	id := m.scope.nextId
	m.scope.watchers[id] = memoryWatcher{owner: m, fn: fn}
	m.scope.watchMu.Unlock()

	go func() {
		<-ctx.Done()
		m.scope.watchMu.Lock()
		delete(m.scope.watchers, id)
		m.scope.watchMu.Unlock()
	}()
	return nil
}

// notify runs the watchers of every other handle synchronously on the writer's goroutine.
func (m *MemoryStorage) notify(key string) {
	m.scope.watchMu.Lock()
	var fns []func(Change)
	ids := make([]uint64, 0, len(m.scope.watchers))
	for id := range m.scope.watchers {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids {
		w := m.scope.watchers[id]
		if w.owner != m {
			fns = append(fns, w.fn)
		}
	}
	m.scope.watchMu.Unlock()

	for _, fn := range fns {
		fn(Change{Key: key})
	}
}
