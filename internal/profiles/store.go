// Package profiles holds user search profiles keyed by user id. The
// feed core only sees the Store interface and never assumes a backing
// implementation.
package profiles

import (
	"sync"

	"github.com/david/govfeed/internal/models"
)

// Store is the injected profile key-value collaborator.
type Store interface {
	Get(userID string) models.UserProfile
	Set(userID string, profile models.UserProfile)
}

// DefaultProfile is returned for unknown users so the feed always has
// something to rank against.
var DefaultProfile = models.UserProfile{
	Keywords: "defense technology, AI, autonomous systems",
	Focus:    "Defense technology and government contracts",
	Agencies: []string{},
}

// MemoryStore is the in-process Store implementation.
type MemoryStore struct {
	mu       sync.RWMutex
	profiles map[string]models.UserProfile
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{profiles: make(map[string]models.UserProfile)}
}

func (s *MemoryStore) Get(userID string) models.UserProfile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if p, ok := s.profiles[userID]; ok {
		return p
	}
	return DefaultProfile
}

func (s *MemoryStore) Set(userID string, profile models.UserProfile) {
	s.mu.Lock()
	s.profiles[userID] = profile
	s.mu.Unlock()
}
