package contact

import (
	"context"
	"errors"
	"strings"
	"time"

	"bukka/internal/checkout"
)

const maxMessageLength = 2000

var (
	ErrMissingFields  = errors.New("name, email and message are required")
	ErrInvalidEmail   = errors.New("please enter a valid email address")
	ErrMessageTooLong  = errors.New("message is too long")
)

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// Submit validates and stores a message.
func (s *Service) Submit(ctx context.Context, name, email, message string) (*Message, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	message = strings.TrimSpace(message)

	if name == "" || email == "" || message == "" {
		return nil, ErrMissingFields
	}
	if !checkout.IsEmail(email) {
		return nil, ErrInvalidEmail
	}
	if len([]rune(message)) > maxMessageLength {
		return nil, ErrMessageTooLong
	}

	m := &Message{
		Name:      name,
		Email:     email,
		Message:   message,
		CreatedAt: s.now().UTC(),
	}
	if err := s.repo.Save(ctx, m); err != nil {
		return nil, err
	}
	return m, nil
}
