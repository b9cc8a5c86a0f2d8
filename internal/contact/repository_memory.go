package contact

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

type InMemoryRepository struct {
	mu       sync.Mutex
	messages []Message
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{}
}

func (r *InMemoryRepository) Save(_ context.Context, m *Message) error {
	if m.ID == "" {
		m.ID = uuid.New().String()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.messages = append(r.messages, *m)
	return nil
}

// All returns the stored messages, oldest first.
func (r *InMemoryRepository) All() []Message {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Message, len(r.messages))
	copy(out, r.messages)
	return out
}
