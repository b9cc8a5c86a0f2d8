package tables

import (
	"context"
	"strings"
	"sync"
)

type InMemoryRepository struct {
	mu     sync.RWMutex
	tables map[string]string
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{tables: make(map[string]string)}
}

func (r *InMemoryRepository) Get(_ context.Context, deviceID string) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.tables[deviceID], nil
}

func (r *InMemoryRepository) Save(_ context.Context, deviceID, table string) error {
	deviceID = strings.TrimSpace(deviceID)
	table = strings.TrimSpace(table)
	if deviceID == "" || table == "" {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tables[deviceID] = table
	return nil
}
