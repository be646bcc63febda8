package scoring

import (
	"context"
	"sync"
)

// ConfigStore is the persistence contract for scoring configurations.
//
// Get returns the stored configuration for a type, falling back to the
// built-in default when nothing is stored; ErrConfigNotFound only when
// neither exists. Save validates before persisting. Reset restores the
// built-in defaults and is idempotent. The store never touches workflow
// state.
type ConfigStore interface {
	Get(ctx context.Context, t ConfigType) (Configuration, error)
	Save(ctx context.Context, cfg Configuration) error
	Reset(ctx context.Context) error
}

// MemoryStore is an in-memory ConfigStore seeded with the defaults.
type MemoryStore struct {
	mu      sync.RWMutex
	configs map[ConfigType]Configuration
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{configs: Defaults()}
}

func (s *MemoryStore) Get(ctx context.Context, t ConfigType) (Configuration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	// Clone on the way out: the only write path into stored state is Save,
	// which validates.
	if cfg, ok := s.configs[t]; ok {
		return cfg.clone(), nil
	}
	if cfg, ok := Defaults()[t]; ok {
		return cfg.clone(), nil
	}
	return Configuration{}, ErrConfigNotFound
}

func (s *MemoryStore) Save(ctx context.Context, cfg Configuration) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if prev, ok := s.configs[cfg.Type]; ok {
		cfg.Version = prev.Version + 1
	} else {
		cfg.Version = 1
	}
	s.configs[cfg.Type] = cfg.clone()
	return nil
}

func (s *MemoryStore) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.configs = Defaults()
	return nil
}
