package store

import (
	"sync"
)

// Memory is a Store that lives only as long as the process.
type Memory struct {
	lock sync.Mutex
	data map[string][]byte
}

func NewMemory() *Memory {
	return &Memory{data: map[string][]byte{}}
}

func (m *Memory) Put(key string, data []byte) error {
	cp := make([]byte, len(data))
	copy(cp, data)

	m.lock.Lock()
	defer m.lock.Unlock()
	m.data[key] = cp
	return nil
}

func (m *Memory) Get(key string) ([]byte, error) {
	m.lock.Lock()
	defer m.lock.Unlock()

	data, ok := m.data[key]
	if !ok {
		return nil, ErrNoKey
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	return cp, nil
}
