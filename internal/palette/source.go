package palette

import (
	"context"
	"strings"
	"sync"
)

// ImageSource fetches encoded images by key.
type ImageSource interface {
	Download(ctx context.Context, key string) ([]byte, error)
}

// Service resolves and caches colours per image key.
type Service struct {
	source ImageSource

	mu    sync.RWMutex
	cache map[string]string
}

func NewService(source ImageSource) *Service {
	return &Service{source: source, cache: make(map[string]string)}
}

func (s *Service) Color(ctx context.Context, key string) (string, error) {
	key = strings.TrimPrefix(key, "/")

	s.mu.RLock()
	color, ok := s.cache[key]
	s.mu.RUnlock()
	if ok {
		return color, nil
	}

	data, err := s.source.Download(ctx, key)
	if err != nil {
		return "", err
	}
	color, err = Representative(data)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	s.cache[key] = color
	s.mu.Unlock()
	return color, nil
}
