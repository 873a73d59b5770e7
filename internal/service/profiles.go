package service

import (
	"context"
	"sync"
	"time"

	"github.com/easysholi/listsync/internal/adapter"
	"github.com/easysholi/listsync/internal/logger"
	"github.com/easysholi/listsync/models"
)

const profileCacheTTL = 5 * time.Minute

type profileService struct {
	remote adapter.RemoteStore
	logger *logger.Logger

	mu        sync.Mutex
	cached    []models.Profile
	fetchedAt time.Time
}

func NewProfileService(remote adapter.RemoteStore, log *logger.Logger) ProfileService {
	return &profileService{
		remote: remote,
		logger: log,
	}
}

// List returns the known profiles, served from cache for up to five
// minutes. On a remote failure a stale cache is used when present.
func (s *profileService) List(ctx context.Context) ([]models.Profile, error) {
	s.mu.Lock()
	if s.cached != nil && time.Since(s.fetchedAt) < profileCacheTTL {
		profiles := append([]models.Profile(nil), s.cached...)
		s.mu.Unlock()
		return profiles, nil
	}
	s.mu.Unlock()

	profiles, err := s.remote.FetchProfiles(ctx)
	if err != nil {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.cached != nil {
			s.logger.Warn().
				Str("func", "profileService.List").
				Err(err).
				Msg("remote fetch failed, serving stale cache")
			return append([]models.Profile(nil), s.cached...), nil
		}
		return nil, err
	}

	s.mu.Lock()
	s.cached = profiles
	s.fetchedAt = time.Now()
	s.mu.Unlock()

	return profiles, nil
}

func (s *profileService) Get(ctx context.Context, id string) (models.Profile, error) {
	s.mu.Lock()
	for _, profile := range s.cached {
		if profile.ID == id {
			s.mu.Unlock()
			return profile, nil
		}
	}
	s.mu.Unlock()

	return s.remote.FetchProfile(ctx, id)
}

func (s *profileService) Create(ctx context.Context, name string) (models.Profile, error) {
	profile, err := s.remote.CreateProfile(ctx, name)
	if err != nil {
		return models.Profile{}, err
	}

	s.Invalidate()

	return profile, nil
}

// Invalidate drops the cache so the next List hits the remote store.
func (s *profileService) Invalidate() {
	s.mu.Lock()
	s.cached = nil
	s.fetchedAt = time.Time{}
	s.mu.Unlock()
}
