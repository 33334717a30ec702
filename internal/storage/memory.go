package storage

import (
	"errors"
	"sort"
	"sync"

	"minigolf/internal/course"
)

// MemoryStore keeps snapshots in a map. Contents are lost on restart.
type MemoryStore struct {
	mu      sync.RWMutex
	courses map[string]course.Snapshot
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{courses: make(map[string]course.Snapshot)}
}

func (m *MemoryStore) Save(snapshot course.Snapshot) error {
	if snapshot.ID == "" {
		return errors.New("snapshot has no id")
	}
	m.mu.Lock()
	m.courses[snapshot.ID] = snapshot
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Load(id string) (course.Snapshot, bool, error) {
	m.mu.RLock()
	snapshot, ok := m.courses[id]
	m.mu.RUnlock()
	return snapshot, ok, nil
}

func (m *MemoryStore) Delete(id string) error {
	m.mu.Lock()
	delete(m.courses, id)
	m.mu.Unlock()
	return nil
}

// ForEach visits snapshots in id order.
func (m *MemoryStore) ForEach(fn func(snapshot course.Snapshot) bool) error {
	m.mu.RLock()
	ids := make([]string, 0, len(m.courses))
	for id := range m.courses {
		ids = append(ids, id)
	}
	m.mu.RUnlock()
	sort.Strings(ids)

	for _, id := range ids {
		snapshot, ok, _ := m.Load(id)
		if !ok {
			continue
		}
		if !fn(snapshot) {
			break
		}
	}
	return nil
}

func (m *MemoryStore) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.courses)
}

func (m *MemoryStore) Close() error {
	return nil
}
