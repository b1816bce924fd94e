package cli

import (
	"sort"
	"sync"
)

// memoryConfig is an in-memory driven.ConfigStore.
type memoryConfig struct {
	mu   sync.Mutex
	data map[string]any
}

func newMemoryConfig() *memoryConfig {
	return &memoryConfig{data: make(map[string]any)}
}

func (m *memoryConfig) Get(key string) (any, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	return v, ok
}

func (m *memoryConfig) GetString(key string) string {
	v, _ := m.Get(key)
	s, _ := v.(string)
	return s
}

func (m *memoryConfig) GetInt(key string) int {
	v, _ := m.Get(key)
	n, _ := v.(int)
	return n
}

func (m *memoryConfig) GetFloat(key string) float64 {
	v, _ := m.Get(key)
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	}
	return 0
}

func (m *memoryConfig) GetBool(key string) bool {
	v, _ := m.Get(key)
	b, _ := v.(bool)
	return b
}

func (m *memoryConfig) GetStringSlice(key string) []string {
	v, _ := m.Get(key)
	s, _ := v.([]string)
	return s
}

func (m *memoryConfig) Set(key string, value any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *memoryConfig) Keys() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	keys := make([]string, 0, len(m.data))
	for k := range m.data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (m *memoryConfig) Save() error  { return nil }
func (m *memoryConfig) Load() error  { return nil }
func (m *memoryConfig) Path() string { return "memory://config.toml" }
