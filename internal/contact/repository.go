package contact

import "context"

// Repository stores contact messages. Service depends only on this interface.
type Repository interface {
	Save(ctx context.Context, m *Message) error
}
