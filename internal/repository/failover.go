package repository

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"soloschedule/internal/domain"
	"soloschedule/internal/metrics"

	"github.com/rs/zerolog"
)

const (
	recoveryInterval = time.Minute
	healthKey        = "health"
)

// FailoverStore reads and writes through a primary store and switches to the
// fallback when the primary fails. Keys written while the primary is down are
// replayed to it on recovery.
type FailoverStore struct {
	primary  domain.KeyValueStore
	fallback domain.KeyValueStore
	logger   *zerolog.Logger
	isDown   atomic.Bool
	now      func() time.Time

	mu        sync.Mutex
	lastCheck time.Time
	dirty     map[string]struct{}
}

func NewFailoverStore(primary, fallback domain.KeyValueStore, logger *zerolog.Logger) *FailoverStore {
	return &FailoverStore{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
		now:      time.Now,
		dirty:    make(map[string]struct{}),
	}
}

func (s *FailoverStore) markDown(err error) {
	s.logger.Error().Err(err).Msg("Primary store failed, falling back to memory")
	s.isDown.Store(true)
	metrics.IncStoreFailover()
	s.mu.Lock()
	s.lastCheck = s.now()
	s.mu.Unlock()
}

// tryRecover replays dirty keys once the primary answers again.
func (s *FailoverStore) tryRecover(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.now().Sub(s.lastCheck) <= recoveryInterval {
		return
	}
	s.lastCheck = s.now()

	for key := range s.dirty {
		val, ok, err := s.fallback.Get(ctx, key)
		if err != nil {
			return
		}
		if ok {
			err = s.primary.Set(ctx, key, val)
		} else {
			err = s.primary.Delete(ctx, key)
		}
		if err != nil {
			s.logger.Warn().Err(err).Msg("Primary store still unavailable")
			return
		}
		delete(s.dirty, key)
	}
	if _, _, err := s.primary.Get(ctx, healthKey); err != nil {
		return
	}
	s.isDown.Store(false)
	s.logger.Info().Msg("Primary store recovered")
}

func (s *FailoverStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if s.isDown.Load() {
		s.tryRecover(ctx)
	}
	if !s.isDown.Load() {
		val, ok, err := s.primary.Get(ctx, key)
		if err == nil {
			s.mirror(ctx, key, val, ok)
			return val, ok, nil
		}
		s.markDown(err)
	}
	return s.fallback.Get(ctx, key)
}

func (s *FailoverStore) Set(ctx context.Context, key string, value []byte) error {
	if s.isDown.Load() {
		s.tryRecover(ctx)
	}
	if !s.isDown.Load() {
		err := s.primary.Set(ctx, key, value)
		if err == nil {
			s.mirror(ctx, key, value, true)
			return nil
		}
		s.markDown(err)
	}
	s.markDirty(key)
	return s.fallback.Set(ctx, key, value)
}

func (s *FailoverStore) Delete(ctx context.Context, key string) error {
	if s.isDown.Load() {
		s.tryRecover(ctx)
	}
	if !s.isDown.Load() {
		err := s.primary.Delete(ctx, key)
		if err == nil {
			s.mirror(ctx, key, nil, false)
			return nil
		}
		s.markDown(err)
	}
	s.markDirty(key)
	return s.fallback.Delete(ctx, key)
}

func (s *FailoverStore) markDirty(key string) {
	s.mu.Lock()
	s.dirty[key] = struct{}{}
	s.mu.Unlock()
}

// mirror keeps the fallback warm so a failover serves the last seen data.
func (s *FailoverStore) mirror(ctx context.Context, key string, value []byte, present bool) {
	var err error
	if present {
		err = s.fallback.Set(ctx, key, value)
	} else {
		err = s.fallback.Delete(ctx, key)
	}
	if err != nil {
		s.logger.Warn().Err(err).Str("key", key).Msg("Failed to mirror value into fallback store")
	}
}
