package docstore

import (
	"context"
	"sync"
)

// MemoryBackend keeps documents in process memory.
type MemoryBackend struct {
	mu   sync.RWMutex
	docs map[string][]byte
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{docs: make(map[string][]byte)}
}

func (b *MemoryBackend) Document(name string) Store {
	return &memoryDoc{backend: b, name: name}
}

func (b *MemoryBackend) Close() error { return nil }

type memoryDoc struct {
	backend *MemoryBackend
	name    string
}

func (d *memoryDoc) Load(_ context.Context) ([]byte, error) {
	d.backend.mu.RLock()
	defer d.backend.mu.RUnlock()
	data, ok := d.backend.docs[d.name]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), data...), nil
}

func (d *memoryDoc) Save(_ context.Context, data []byte) error {
	d.backend.mu.Lock()
	defer d.backend.mu.Unlock()
	d.backend.docs[d.name] = append([]byte(nil), data...)
	return nil
}
