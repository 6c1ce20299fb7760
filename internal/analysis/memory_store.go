package analysis

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/Krimson/sportscan/pkg/models"
)

type memoryEntry struct {
	data      []byte
	expiresAt time.Time
}

// MemoryStore - SlotStore в памяти процесса для локального запуска и тестов.
// Просроченные слоты удаляются при обращении
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	ttl     time.Duration
	now     func() time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]memoryEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

func (m *MemoryStore) Set(ctx context.Context, session *models.AnalysisSession) error {
	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	entry := memoryEntry{data: data}
	if m.ttl > 0 {
		entry.expiresAt = m.now().Add(m.ttl)
	}

	m.mu.Lock()
	m.entries[slotKey(session.SessionID)] = entry
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Get(ctx context.Context, sessionID string) (*models.AnalysisSession, error) {
	key := slotKey(sessionID)

	m.mu.RLock()
	entry, exists := m.entries[key]
	m.mu.RUnlock()

	if !exists || m.expired(entry) {
		if exists {
			m.mu.Lock()
			delete(m.entries, key)
			m.mu.Unlock()
		}
		return nil, fmt.Errorf("%w: session %s", models.ErrNotFound, sessionID)
	}

	var session models.AnalysisSession
	if err := json.Unmarshal(entry.data, &session); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}
	return &session, nil
}

func (m *MemoryStore) Delete(ctx context.Context, sessionID string) error {
	key := slotKey(sessionID)

	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.entries[key]
	if !exists || m.expired(entry) {
		delete(m.entries, key)
		return fmt.Errorf("%w: session %s", models.ErrNotFound, sessionID)
	}
	delete(m.entries, key)
	return nil
}

func (m *MemoryStore) Ping(ctx context.Context) error {
	return nil
}

// Stats - дополнительный метод для отладки
func (m *MemoryStore) Stats(ctx context.Context) map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	keys := make([]string, 0, len(m.entries))
	for key, entry := range m.entries {
		if !m.expired(entry) {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)

	return map[string]interface{}{
		"backend":         "memory",
		"active_sessions": len(keys),
		"keys":            keys,
	}
}

func (m *MemoryStore) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = make(map[string]memoryEntry)
	return nil
}

func (m *MemoryStore) expired(entry memoryEntry) bool {
	return !entry.expiresAt.IsZero() && !m.now().Before(entry.expiresAt)
}
