package application

import (
	"context"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/lostudea/lostudea-api/internal/domain/entity"
	"github.com/lostudea/lostudea-api/internal/domain/repository"
)

const msgUserLoadFailed = "Error al cargar la información del usuario"

// UserStore caches the authenticated user's profile and keeps it synced
// through the users change feed, mirroring the item store's snapshot
// model: reads are cache-only, refreshes arrive only via deliveries.
type UserStore struct {
	repo   repository.UserRepository
	feed   repository.ChangeFeed
	logger *logrus.Logger

	mu      sync.RWMutex
	current *entity.User
	loading bool
	errMsg  string
}

func NewUserStore(repo repository.UserRepository, feed repository.ChangeFeed, logger *logrus.Logger) *UserStore {
	return &UserStore{repo: repo, feed: feed, logger: logger}
}

// Initialize loads the profile and subscribes to the users collection so
// profile edits from any session are reflected here. The returned teardown
// closes the subscription.
func (s *UserStore) Initialize(ctx context.Context, userID string) (func(), error) {
	s.mu.Lock()
	s.loading = true
	s.mu.Unlock()

	ticks, cancel, err := s.feed.Subscribe(ctx, repository.CollectionUsers)
	if err != nil {
		s.setErr(msgUserLoadFailed)
		return nil, fmt.Errorf("subscribing to %s: %w", repository.CollectionUsers, err)
	}

	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		s.reload(ctx, userID)
		for {
			select {
			case <-done:
				return
			case <-ctx.Done():
				return
			case _, ok := <-ticks:
				if !ok {
					return
				}
				s.reload(ctx, userID)
			}
		}
	}()

	var once sync.Once
	teardown := func() {
		once.Do(func() {
			close(done)
			cancel()
			wg.Wait()
		})
	}
	return teardown, nil
}

func (s *UserStore) reload(ctx context.Context, userID string) {
	u, err := s.repo.GetByID(ctx, userID)

	s.mu.Lock()
	s.loading = false
	if err != nil {
		s.errMsg = msgUserLoadFailed
	} else {
		s.current = u
		s.errMsg = ""
	}
	s.mu.Unlock()

	if err != nil && s.logger != nil {
		s.logger.WithError(err).WithField("user_id", userID).Error("user profile reload failed")
	}
}

// CurrentUser returns a copy of the cached profile, or nil before the
// first delivery.
func (s *UserStore) CurrentUser() *entity.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.current == nil {
		return nil
	}
	u := *s.current
	return &u
}

// SetUser primes the cache, used right after login before the first
// delivery lands.
func (s *UserStore) SetUser(u *entity.User) {
	s.mu.Lock()
	s.current = u
	s.loading = false
	s.mu.Unlock()
}

func (s *UserStore) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loading
}

func (s *UserStore) Err() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.errMsg
}

func (s *UserStore) setErr(msg string) {
	s.mu.Lock()
	s.errMsg = msg
	s.mu.Unlock()
}
